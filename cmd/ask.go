package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/askcampus/askcampus/internal/app"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a single question and exit",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	a, err := app.Setup(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	asst, err := a.NewAssistant(ctx)
	if err != nil {
		return err
	}

	question := strings.Join(args, " ")
	userID := resolveUser(a)

	if err := answerOnce(ctx, a, asst, userID, question, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("answering question: %w", err)
	}
	return nil
}
