package providers

import (
	"errors"
	"fmt"
)

// Direct Line failure kinds. Every kind is fatal for the invocation and is
// never retried; match with errors.Is.
var (
	ErrTokenGeneration   = errors.New("failed to generate direct line token")
	ErrConversationStart = errors.New("failed to start a conversation with copilot studio")
	ErrSendActivity      = errors.New("failed to send message to copilot studio")
	ErrRetrieveMessages  = errors.New("failed to retrieve messages from copilot studio")
	ErrPollLimit         = errors.New("no reply from copilot studio before poll limit")
)

// StatusError reports a non-2xx response from the remote service.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("status %d", e.StatusCode)
	}
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Body)
}
