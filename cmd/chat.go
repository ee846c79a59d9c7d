package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/initializ/copilot-relay/internal/tui"
	"github.com/initializ/copilot-relay/llm"
	"github.com/initializ/copilot-relay/llm/providers"
	"github.com/initializ/copilot-relay/runtime"
	"github.com/initializ/copilot-relay/validate"
	"github.com/spf13/cobra"
)

var (
	chatEndpoint  string
	chatPreprompt string
	chatContinue  bool
	chatJSON      bool
)

var chatCmd = &cobra.Command{
	Use:   "chat <message>...",
	Short: "Send messages to a Copilot Studio bot and stream the reply",
	Long:  "Each argument is one prior message. They are joined with newlines and sent as a single turn.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runChat,
}

func init() {
	chatCmd.Flags().StringVar(&chatEndpoint, "endpoint", "", "endpoint name (default: weighted random choice)")
	chatCmd.Flags().StringVar(&chatPreprompt, "preprompt", "", "system preprompt (accepted, not sent to Direct Line)")
	chatCmd.Flags().BoolVar(&chatContinue, "continue", false, "continue the last message (accepted, not sent to Direct Line)")
	chatCmd.Flags().BoolVar(&chatJSON, "json", false, "print one JSON output unit per line")
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := loadEndpoints()
	if err != nil {
		return err
	}
	if result := validate.ValidateEndpointsConfig(cfg); !result.IsValid() {
		return result.Err()
	}

	var logger runtime.Logger = runtime.NopLogger{}
	if verbose {
		logger = runtime.NewJSONLogger(cmd.ErrOrStderr(), true)
	}

	pool, err := providers.NewPool(cfg, providers.WithLogger(logger))
	if err != nil {
		return err
	}

	backend := pool.Pick()
	if chatEndpoint != "" {
		b, ok := pool.Get(chatEndpoint)
		if !ok {
			return fmt.Errorf("unknown endpoint %q", chatEndpoint)
		}
		backend = b
	}

	gen, ok := backend.Client.(llm.Generator)
	if !ok {
		return fmt.Errorf("endpoint %q does not support streaming generation", backend.Name)
	}

	req := &llm.ChatRequest{
		Preprompt:       chatPreprompt,
		ContinueMessage: chatContinue,
	}
	for _, a := range args {
		req.Messages = append(req.Messages, llm.ChatMessage{Role: llm.RoleUser, Content: a})
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	r := &streamRenderer{w: out, json: chatJSON}
	if isTerminal(out) {
		r.styles = stylesFor(out)
	}
	for unit, err := range gen.Generate(ctx, req) {
		if err != nil {
			r.abort()
			return fmt.Errorf("chat with %s: %w", backend.Name, err)
		}
		if err := r.write(unit); err != nil {
			return err
		}
	}
	return nil
}

// streamRenderer prints output units as they arrive. Fragments are written
// verbatim when styles is nil.
type streamRenderer struct {
	w       io.Writer
	json    bool
	styles  *tui.StyleSet
	written bool
}

func (r *streamRenderer) write(unit llm.StreamOutput) error {
	if r.json {
		return json.NewEncoder(r.w).Encode(unit)
	}
	if unit.Final() {
		_, err := fmt.Fprintln(r.w)
		return err
	}
	r.written = true
	text := unit.Token.Text
	if r.styles != nil {
		text = r.styles.Reply.Render(text)
	}
	_, err := fmt.Fprint(r.w, text)
	return err
}

// abort terminates a partially printed reply line.
func (r *streamRenderer) abort() {
	if !r.json && r.written {
		fmt.Fprintln(r.w) //nolint:errcheck
	}
}
