// Package config loads endpoints.yaml from disk.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/initializ/copilot-relay/runtime"
	"github.com/initializ/copilot-relay/types"
	"github.com/initializ/copilot-relay/validate"
)

// expandedKeys are the endpoint fields that may hold ${NAME} references.
var expandedKeys = []string{"directLineSecret", "url"}

// LoadEndpointsConfig reads endpoints.yaml from path, expands ${NAME}
// references in directLineSecret and url from env, schema-validates every
// entry and returns the parsed config with defaults and environment
// overrides applied. Expansion runs on parsed values, never on YAML text.
func LoadEndpointsConfig(path string, env map[string]string) (*types.EndpointsConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading endpoints config %s: %w", path, err)
	}

	raw, err := types.RawEndpoints(data)
	if err != nil {
		return nil, err
	}
	for _, entry := range raw {
		for _, k := range expandedKeys {
			s, ok := entry[k].(string)
			if !ok {
				continue
			}
			// An unset variable leaves the field to its default.
			if s = runtime.ExpandEnv(s, env); s == "" {
				delete(entry, k)
			} else {
				entry[k] = s
			}
		}
	}
	errs, err := validate.ValidateRawEndpoints(raw)
	if err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("endpoints config %s: %s", path, strings.Join(errs, "; "))
	}

	cfg, err := types.DecodeEndpointsConfig(data)
	if err != nil {
		return nil, err
	}
	for i := range cfg.Endpoints {
		runtime.ExpandEndpoint(&cfg.Endpoints[i], env)
	}
	cfg.ApplyDefaults()
	runtime.ResolveEndpoints(cfg, env)
	return cfg, nil
}
