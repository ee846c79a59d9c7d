package llm

import (
	"context"
	"iter"
	"time"
)

// Client is the interface for interacting with a text-generation backend.
type Client interface {
	// Chat sends a request and returns the aggregated response.
	Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error)
	// ChatStream sends a streaming request and returns a channel of deltas.
	ChatStream(ctx context.Context, req *ChatRequest) (<-chan StreamDelta, error)
	// ModelID returns the backend identifier this client is configured for.
	ModelID() string
}

// Generator produces a lazy, single-pass sequence of output units.
// Iteration stops after the final unit or at the first error.
type Generator interface {
	Generate(ctx context.Context, req *ChatRequest) iter.Seq2[StreamOutput, error]
}

// ClientConfig holds configuration for creating a client.
type ClientConfig struct {
	APIKey       string
	BaseURL      string
	TimeoutSecs  int
	PollInterval time.Duration
	// MaxPolls bounds reply polling. Zero selects the default; negative
	// means unbounded.
	MaxPolls int
}
