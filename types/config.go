// Package types holds configuration types for endpoints.yaml.
package types

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Endpoint type discriminators.
const (
	TypeCopilot = "copilot"
)

// Defaults applied to copilot endpoints.
const (
	DefaultWeight           = 1
	DefaultDirectLineSecret = "<direct line secret>"
	DefaultDirectLineURL    = "https://directline.botframework.com/v3/directline"
)

// EndpointsConfig represents the top-level endpoints.yaml configuration.
type EndpointsConfig struct {
	Endpoints []EndpointConfig `yaml:"endpoints"`
}

// EndpointConfig configures one generation backend.
type EndpointConfig struct {
	Name             string `yaml:"name,omitempty"`
	Weight           int    `yaml:"weight,omitempty"`
	Type             string `yaml:"type"`
	DirectLineSecret string `yaml:"directLineSecret,omitempty"`
	URL              string `yaml:"url,omitempty"`
	PollInterval     string `yaml:"pollInterval,omitempty"` // Go duration, e.g. "500ms"
	MaxPolls         int    `yaml:"maxPolls,omitempty"`
	TimeoutSecs      int    `yaml:"timeoutSecs,omitempty"`
}

// ApplyDefaults fills unset fields. index is the endpoint's position and is
// used to derive a name when none is given.
func (e *EndpointConfig) ApplyDefaults(index int) {
	if e.Name == "" {
		e.Name = fmt.Sprintf("%s-%d", e.Type, index)
	}
	if e.Weight == 0 {
		e.Weight = DefaultWeight
	}
	if e.DirectLineSecret == "" {
		e.DirectLineSecret = DefaultDirectLineSecret
	}
	if e.URL == "" {
		e.URL = DefaultDirectLineURL
	}
}

// PollEvery parses PollInterval. An empty value returns zero.
func (e *EndpointConfig) PollEvery() (time.Duration, error) {
	if e.PollInterval == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(e.PollInterval)
	if err != nil {
		return 0, fmt.Errorf("endpoint %s: pollInterval: %w", e.Name, err)
	}
	return d, nil
}

// DecodeEndpointsConfig parses raw YAML bytes into an EndpointsConfig.
// Defaults are not applied and field values are not validated; see
// ApplyDefaults and package validate.
func DecodeEndpointsConfig(data []byte) (*EndpointsConfig, error) {
	var cfg EndpointsConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing endpoints config: %w", err)
	}
	if len(cfg.Endpoints) == 0 {
		return nil, fmt.Errorf("endpoints config: at least one endpoint is required")
	}
	return &cfg, nil
}

// ApplyDefaults fills unset fields of every endpoint.
func (c *EndpointsConfig) ApplyDefaults() {
	for i := range c.Endpoints {
		c.Endpoints[i].ApplyDefaults(i)
	}
}

// RawEndpoints decodes the endpoints list into generic maps, preserving
// exactly the keys the user wrote. Schema validation runs on these.
func RawEndpoints(data []byte) ([]map[string]any, error) {
	var raw struct {
		Endpoints []map[string]any `yaml:"endpoints"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing endpoints config: %w", err)
	}
	return raw.Endpoints, nil
}
