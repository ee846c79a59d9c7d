// Package providers implements generation backends for the relay.
package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/initializ/copilot-relay/llm"
	"github.com/initializ/copilot-relay/runtime"
	"github.com/initializ/copilot-relay/types"
)

const (
	defaultPollInterval = time.Second
	defaultMaxPolls     = 60

	// userID is the origin id the relay posts under; every activity from
	// another origin counts as a bot reply.
	userID = "user"

	maxErrorBody = 4 << 10
)

// DirectLineClient adapts a Copilot Studio bot, reached over the Direct Line
// v3 API, to the llm.Client and llm.Generator interfaces.
//
// Each invocation exchanges the secret for a short-lived token, opens a
// fresh conversation, posts the prompt as a single user activity and polls
// the activity list until the bot answers. Nothing is shared between
// invocations, so one client may serve concurrent calls.
type DirectLineClient struct {
	secret       string
	baseURL      string
	pollInterval time.Duration
	maxPolls     int
	client       *http.Client
	logger       runtime.Logger
}

// Option configures a DirectLineClient.
type Option func(*DirectLineClient)

// WithLogger sets the logger used for phase and poll events.
func WithLogger(l runtime.Logger) Option {
	return func(c *DirectLineClient) { c.logger = l }
}

// WithHTTPClient replaces the HTTP client. Its timeout applies per request.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *DirectLineClient) { c.client = hc }
}

// NewDirectLineClient creates a new Direct Line client. cfg.APIKey holds the
// Direct Line secret.
func NewDirectLineClient(cfg llm.ClientConfig, opts ...Option) *DirectLineClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = types.DefaultDirectLineURL
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	interval := cfg.PollInterval
	if interval == 0 {
		interval = defaultPollInterval
	}
	maxPolls := cfg.MaxPolls
	if maxPolls == 0 {
		maxPolls = defaultMaxPolls
	}

	c := &DirectLineClient{
		secret:       cfg.APIKey,
		baseURL:      strings.TrimRight(baseURL, "/"),
		pollInterval: interval,
		maxPolls:     maxPolls,
		client:       &http.Client{Timeout: timeout},
		logger:       runtime.NopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *DirectLineClient) ModelID() string { return types.TypeCopilot }

// conversation is the per-invocation session state.
type conversation struct {
	id    string
	token string
	log   runtime.Logger
}

// Generate runs one invocation and yields its output units lazily. Nothing
// is sent until iteration starts, and the next poll is only issued after
// the consumer has taken the previous unit. Breaking out of the loop stops
// polling.
func (c *DirectLineClient) Generate(ctx context.Context, req *llm.ChatRequest) iter.Seq2[llm.StreamOutput, error] {
	return func(yield func(llm.StreamOutput, error) bool) {
		conv, err := c.open(ctx, req)
		if err != nil {
			yield(llm.StreamOutput{}, err)
			return
		}
		c.replies(ctx, conv, yield)
	}
}

// ChatStream opens the conversation synchronously, so token, conversation
// and send failures are returned directly. Replies are delivered on an
// unbuffered channel; a polling failure arrives as a Done delta with Err set.
func (c *DirectLineClient) ChatStream(ctx context.Context, req *llm.ChatRequest) (<-chan llm.StreamDelta, error) {
	conv, err := c.open(ctx, req)
	if err != nil {
		return nil, err
	}

	ch := make(chan llm.StreamDelta)
	go func() {
		defer close(ch)
		c.replies(ctx, conv, func(out llm.StreamOutput, err error) bool {
			var d llm.StreamDelta
			switch {
			case err != nil:
				d = llm.StreamDelta{Done: true, FinishReason: "error", Err: err}
			case out.Final():
				d = llm.StreamDelta{Done: true, FinishReason: "stop"}
			default:
				d = llm.StreamDelta{Content: out.Token.Text}
			}
			select {
			case ch <- d:
				return true
			case <-ctx.Done():
				return false
			}
		})
	}()

	return ch, nil
}

// Chat runs one invocation and returns the aggregated reply.
func (c *DirectLineClient) Chat(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	conv, err := c.open(ctx, req)
	if err != nil {
		return nil, err
	}

	text, _, err := llm.Collect(func(yield func(llm.StreamOutput, error) bool) {
		c.replies(ctx, conv, yield)
	})
	if err != nil {
		return nil, err
	}

	return &llm.ChatResponse{
		ID:           conv.id,
		Message:      llm.ChatMessage{Role: llm.RoleAssistant, Content: text},
		FinishReason: "stop",
	}, nil
}

// open runs the three setup phases: token exchange, conversation start and
// turn submission.
func (c *DirectLineClient) open(ctx context.Context, req *llm.ChatRequest) (*conversation, error) {
	log := runtime.With(c.logger, map[string]any{"run_id": uuid.NewString()})

	if req.Preprompt != "" || req.ContinueMessage {
		log.Debug("preprompt and continue_message are not forwarded to direct line", map[string]any{
			"has_preprompt":    req.Preprompt != "",
			"continue_message": req.ContinueMessage,
		})
	}

	token, err := c.generateToken(ctx)
	if err != nil {
		log.Error("token generation failed", map[string]any{"error": err.Error()})
		return nil, err
	}

	convID, err := c.startConversation(ctx, token)
	if err != nil {
		log.Error("conversation start failed", map[string]any{"error": err.Error()})
		return nil, err
	}

	conv := &conversation{
		id:    convID,
		token: token,
		log:   runtime.With(log, map[string]any{"conversation_id": convID}),
	}

	prompt := buildPrompt(req.Messages)
	if err := c.sendMessage(ctx, conv, prompt); err != nil {
		conv.log.Error("send message failed", map[string]any{"error": err.Error()})
		return nil, err
	}
	conv.log.Info("conversation started", map[string]any{
		"messages":     len(req.Messages),
		"prompt_chars": len(prompt),
	})

	return conv, nil
}

// replies polls the activity list until at least one bot activity appears,
// yields each bot activity as a unit, then yields the final unit.
func (c *DirectLineClient) replies(ctx context.Context, conv *conversation, yield func(llm.StreamOutput, error) bool) {
	var (
		generated strings.Builder
		tokenID   int
	)

	for attempt := 1; c.maxPolls < 0 || attempt <= c.maxPolls; attempt++ {
		if attempt > 1 {
			if err := sleep(ctx, c.pollInterval); err != nil {
				yield(llm.StreamOutput{}, err)
				return
			}
		}

		activities, err := c.listActivities(ctx, conv)
		if err != nil {
			conv.log.Error("retrieve messages failed", map[string]any{"attempt": attempt, "error": err.Error()})
			yield(llm.StreamOutput{}, err)
			return
		}

		bot := botMessages(activities)
		conv.log.Debug("polled activities", map[string]any{
			"attempt":    attempt,
			"activities": len(activities),
			"bot":        len(bot),
		})
		if len(bot) == 0 {
			continue
		}

		for _, a := range bot {
			generated.WriteString(a.Text)
			if !yield(llm.TextOutput(tokenID, a.Text), nil) {
				return
			}
			tokenID++
		}

		conv.log.Info("reply received", map[string]any{
			"attempts":  attempt,
			"fragments": len(bot),
		})
		yield(llm.FinalOutput(tokenID, generated.String()), nil)
		return
	}

	conv.log.Warn("poll limit reached", map[string]any{"max_polls": c.maxPolls})
	yield(llm.StreamOutput{}, fmt.Errorf("%w (%d polls)", ErrPollLimit, c.maxPolls))
}

// Direct Line wire types.

type tokenResponse struct {
	Token string `json:"token"`
}

type conversationResponse struct {
	ConversationID string `json:"conversationId"`
}

type channelAccount struct {
	ID string `json:"id"`
}

type activity struct {
	Type string         `json:"type,omitempty"`
	From channelAccount `json:"from"`
	Text string         `json:"text,omitempty"`
}

type activitySet struct {
	Activities []activity `json:"activities"`
}

func (c *DirectLineClient) generateToken(ctx context.Context) (string, error) {
	var resp tokenResponse
	if err := c.call(ctx, http.MethodPost, "/tokens/generate", c.secret, nil, &resp); err != nil {
		return "", fmt.Errorf("%w: %w", ErrTokenGeneration, err)
	}
	if resp.Token == "" {
		return "", fmt.Errorf("%w: response has no token", ErrTokenGeneration)
	}
	return resp.Token, nil
}

func (c *DirectLineClient) startConversation(ctx context.Context, token string) (string, error) {
	var resp conversationResponse
	if err := c.call(ctx, http.MethodPost, "/conversations", token, nil, &resp); err != nil {
		return "", fmt.Errorf("%w: %w", ErrConversationStart, err)
	}
	if resp.ConversationID == "" {
		return "", fmt.Errorf("%w: response has no conversationId", ErrConversationStart)
	}
	return resp.ConversationID, nil
}

func (c *DirectLineClient) sendMessage(ctx context.Context, conv *conversation, text string) error {
	body := activity{
		Type: "message",
		From: channelAccount{ID: userID},
		Text: text,
	}
	if err := c.call(ctx, http.MethodPost, activitiesPath(conv.id), conv.token, body, nil); err != nil {
		return fmt.Errorf("%w: %w", ErrSendActivity, err)
	}
	return nil
}

func (c *DirectLineClient) listActivities(ctx context.Context, conv *conversation) ([]activity, error) {
	var set activitySet
	if err := c.call(ctx, http.MethodGet, activitiesPath(conv.id), conv.token, nil, &set); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRetrieveMessages, err)
	}
	return set.Activities, nil
}

// call issues one authenticated JSON request. Non-2xx responses return a
// *StatusError. out may be nil when the response body is not needed.
func (c *DirectLineClient) call(ctx context.Context, method, path, bearer string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshalling request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	httpReq.Header.Set("Authorization", "Bearer "+bearer)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func activitiesPath(conversationID string) string {
	return "/conversations/" + url.PathEscape(conversationID) + "/activities"
}

func buildPrompt(messages []llm.ChatMessage) string {
	parts := make([]string, len(messages))
	for i, m := range messages {
		parts[i] = m.Content
	}
	return strings.Join(parts, "\n")
}

func botMessages(activities []activity) []activity {
	var bot []activity
	for _, a := range activities {
		if a.From.ID != userID {
			bot = append(bot, a)
		}
	}
	return bot
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
