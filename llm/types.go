// Package llm provides canonical types for chat text generation.
// These types are backend-agnostic; each provider translates to/from
// its native API format.
package llm

// Role constants for chat messages.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage represents a single message in a chat conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content,omitempty"`
}

// ChatRequest is a provider-agnostic generation request.
type ChatRequest struct {
	Messages []ChatMessage `json:"messages"`
	// Preprompt is the system preprompt configured by the chat application.
	Preprompt string `json:"preprompt,omitempty"`
	// ContinueMessage asks the backend to continue the last assistant message
	// instead of answering a new turn.
	ContinueMessage bool `json:"continue_message,omitempty"`
}

// ChatResponse is a provider-agnostic non-streaming response.
type ChatResponse struct {
	ID           string      `json:"id"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

// StreamDelta represents a single chunk in a channel-based streaming response.
type StreamDelta struct {
	Content      string `json:"content,omitempty"`
	FinishReason string `json:"finish_reason,omitempty"`
	Done         bool   `json:"done,omitempty"`
	Err          error  `json:"-"`
}

// Token is one generated fragment of a stream.
type Token struct {
	ID      int     `json:"id"`
	Text    string  `json:"text"`
	Logprob float64 `json:"logprob"`
	Special bool    `json:"special"`
}

// StreamOutput is one incremental unit of generation output. Exactly one
// unit per stream is final; it carries the full text in GeneratedText.
type StreamOutput struct {
	Token         Token   `json:"token"`
	GeneratedText *string `json:"generated_text"`
}

// Final reports whether o is the terminal unit of its stream.
func (o StreamOutput) Final() bool { return o.Token.Special }
