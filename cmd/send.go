package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zhubert/parley/internal/app"
	"github.com/zhubert/parley/internal/backend"
	"github.com/zhubert/parley/internal/chat"
	"github.com/zhubert/parley/internal/config"
	"github.com/zhubert/parley/internal/session"
	"github.com/zhubert/parley/internal/store"
)

var (
	sendFile       string
	sendSessionID  string
	sendNewSession bool
)

var sendCmd = &cobra.Command{
	Use:   "send [message]",
	Short: "Send one message and print the reply",
	Long: `Sends a single message to the assistant without starting the TUI.

By default the message goes to the most recent session, the same one the TUI
would open. Use --session to pick another one or --new to start a fresh chat.
The session id is printed to stderr so a script can continue the conversation.`,
	Example: `  parley send "What are your opening hours?"
  parley send --file ./invoice.pdf
  parley send --session abc123 --lang fr "Merci"`,
	RunE: runSend,
}

func init() {
	sendCmd.Flags().StringVarP(&sendFile, "file", "f", "", "Send a file instead of text")
	sendCmd.Flags().StringVarP(&sendSessionID, "session", "s", "", "Send to this session id")
	sendCmd.Flags().BoolVarP(&sendNewSession, "new", "n", false, "Start a new session first")
	sendCmd.MarkFlagsMutuallyExclusive("session", "new")
	rootCmd.AddCommand(sendCmd)
}

// sendOptions holds what the send command was asked to do.
type sendOptions struct {
	Text       string
	File       string
	SessionID  string
	NewSession bool
}

func runSend(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	opts := sendOptions{
		Text:       strings.Join(args, " "),
		File:       sendFile,
		SessionID:  sendSessionID,
		NewSession: sendNewSession,
	}
	return runSendWith(cmd.Context(), cfg, gatewayFactory(cfg), opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// runSendWith allows injecting the gateway and output streams for testing
func runSendWith(ctx context.Context, cfg *config.Config, gw backend.Gateway, opts sendOptions, out, errOut io.Writer) error {
	outgoing, err := buildOutgoing(opts)
	if err != nil {
		return err
	}

	st := store.New(cfg.GetMode(), cfg.GetLanguage())
	lifecycle := session.NewLifecycle(gw, st)
	dispatcher := session.NewDispatcher(lifecycle)

	if _, err := lifecycle.Initialize(ctx); err != nil {
		printNotices(errOut, st)
		return fmt.Errorf("no session available: %w", err)
	}

	switch {
	case opts.NewSession:
		if _, err := lifecycle.CreateSession(ctx); err != nil {
			return fmt.Errorf("error creating session: %w", err)
		}
	case opts.SessionID != "" && opts.SessionID != st.ActiveSessionID():
		if _, err := lifecycle.LoadSession(ctx, opts.SessionID); err != nil {
			return fmt.Errorf("error loading session %s: %w", opts.SessionID, err)
		}
	}

	printNotices(errOut, st)

	reply, err := dispatcher.Send(ctx, outgoing)
	if err != nil {
		return err
	}

	fmt.Fprintf(errOut, "session: %s\n", st.ActiveSessionID())
	fmt.Fprintln(out, reply.Text)
	return nil
}

func buildOutgoing(opts sendOptions) (chat.Outgoing, error) {
	text := strings.TrimSpace(opts.Text)
	if opts.File != "" {
		if text != "" {
			return chat.Outgoing{}, fmt.Errorf("send either a message or --file, not both")
		}
		file, err := app.LoadAttachment(opts.File)
		if err != nil {
			return chat.Outgoing{}, err
		}
		return chat.FileMessage(file), nil
	}
	if text == "" {
		return chat.Outgoing{}, fmt.Errorf("nothing to send: pass a message or --file")
	}
	return chat.TextMessage(text), nil
}

// lifecycleNotices are the transcript lines worth repeating on stderr.
var lifecycleNotices = map[string]bool{
	session.NoticeSessionNotFound: true,
	session.NoticeLoadFailed:      true,
	session.NoticeMissingID:       true,
	session.NoticeCreateFailed:    true,
}

// printNotices writes the lifecycle notices in the transcript, such as a
// replaced session.
func printNotices(w io.Writer, st *store.Store) {
	for _, msg := range st.Messages() {
		if msg.Sender == chat.SenderSystem && lifecycleNotices[msg.Text] {
			fmt.Fprintln(w, msg.Text)
		}
	}
}
