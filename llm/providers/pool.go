package providers

import (
	"fmt"
	"math/rand/v2"

	"github.com/initializ/copilot-relay/llm"
	"github.com/initializ/copilot-relay/types"
)

// Backend is one configured endpoint and its client.
type Backend struct {
	Name     string
	Weight   int
	Endpoint types.EndpointConfig
	Client   llm.Client
}

// Pool selects among configured backends in proportion to their weight.
type Pool struct {
	backends []Backend
	total    int
	intN     func(n int) int
}

// NewPool constructs a client for every endpoint in cfg.
func NewPool(cfg *types.EndpointsConfig, opts ...Option) (*Pool, error) {
	if len(cfg.Endpoints) == 0 {
		return nil, fmt.Errorf("no endpoints configured")
	}

	p := &Pool{intN: rand.IntN}
	for i, ep := range cfg.Endpoints {
		ep.ApplyDefaults(i)
		client, err := NewFromEndpoint(ep, opts...)
		if err != nil {
			return nil, fmt.Errorf("endpoints[%d]: %w", i, err)
		}
		p.backends = append(p.backends, Backend{
			Name:     ep.Name,
			Weight:   ep.Weight,
			Endpoint: ep,
			Client:   client,
		})
		p.total += ep.Weight
	}
	return p, nil
}

// Pick returns a backend chosen at random, weighted by Weight.
func (p *Pool) Pick() Backend {
	n := p.intN(p.total)
	for _, b := range p.backends {
		if n < b.Weight {
			return b
		}
		n -= b.Weight
	}
	return p.backends[len(p.backends)-1]
}

// Get returns the backend with the given name.
func (p *Pool) Get(name string) (Backend, bool) {
	for _, b := range p.backends {
		if b.Name == name {
			return b, true
		}
	}
	return Backend{}, false
}

// Backends returns the backends in configuration order.
func (p *Pool) Backends() []Backend {
	return p.backends
}

// Share returns the fraction of picks the named backend receives.
func (p *Pool) Share(name string) float64 {
	b, ok := p.Get(name)
	if !ok || p.total == 0 {
		return 0
	}
	return float64(b.Weight) / float64(p.total)
}
