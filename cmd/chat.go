package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/askcampus/askcampus/internal/app"
	"github.com/askcampus/askcampus/internal/assistant"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	RunE:  runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := app.Setup(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	asst, err := a.NewAssistant(ctx)
	if err != nil {
		return err
	}

	userID := resolveUser(a)
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "askcampus chat (user: %s, mode: %s, language: %s)\n",
		userID, cfg.Mode, cfg.Language)
	if !a.Recorder.MirrorAvailable() {
		fmt.Fprintln(out, "note: history is stored locally only (no database configured)")
	}
	fmt.Fprintln(out, "Type your question, or 'exit' to quit.")
	fmt.Fprintln(out)

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 64*1024), 64*1024)

	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if question == "exit" || question == "quit" {
			break
		}

		if err := answerOnce(ctx, a, asst, userID, question, out); err != nil {
			if ctx.Err() != nil {
				break
			}
			fmt.Fprintf(out, "error: %v\n\n", err)
		}
	}

	if err := scanner.Err(); err != nil && err != io.EOF {
		return fmt.Errorf("reading input: %w", err)
	}

	fmt.Fprintln(out, "Goodbye!")
	return nil
}

// answerOnce asks one question, prints the answer, and records the
// exchange.
func answerOnce(ctx context.Context, a *app.App, asst *assistant.Assistant, userID, question string, out io.Writer) error {
	past, err := a.Recorder.History(ctx, userID)
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}

	rec, err := asst.Ask(ctx, assistant.Request{
		UserID:   userID,
		Question: question,
		Mode:     a.Config.Mode,
		Language: a.Config.Language,
		History:  past,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "\n%s\n\n", rec.Response)

	return a.Recorder.Record(ctx, userID, rec)
}

// resolveUser picks the acting user: --user flag first, then the
// signed-in user, then guest.
func resolveUser(a *app.App) string {
	if flagUser != "" {
		return flagUser
	}
	return a.Identity.Current()
}
