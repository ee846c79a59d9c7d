package providers

import (
	"fmt"

	"github.com/initializ/copilot-relay/llm"
	"github.com/initializ/copilot-relay/types"
	"github.com/initializ/copilot-relay/validate"
)

// NewClient creates a client for the specified endpoint type.
// Supported types: "copilot".
func NewClient(provider string, cfg llm.ClientConfig, opts ...Option) (llm.Client, error) {
	switch provider {
	case types.TypeCopilot:
		return NewDirectLineClient(cfg, opts...), nil
	default:
		return nil, fmt.Errorf("unknown endpoint type: %q", provider)
	}
}

// NewFromEndpoint validates ep and creates its client. Unset fields take
// their defaults first.
func NewFromEndpoint(ep types.EndpointConfig, opts ...Option) (llm.Client, error) {
	ep.ApplyDefaults(0)

	r := validate.ValidateEndpointConfig(&ep)
	if err := r.Err(); err != nil {
		return nil, err
	}

	interval, err := ep.PollEvery()
	if err != nil {
		return nil, err
	}

	return NewClient(ep.Type, llm.ClientConfig{
		APIKey:       ep.DirectLineSecret,
		BaseURL:      ep.URL,
		TimeoutSecs:  ep.TimeoutSecs,
		PollInterval: interval,
		MaxPolls:     ep.MaxPolls,
	}, opts...)
}
