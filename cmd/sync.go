package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/askcampus/askcampus/internal/app"
	"github.com/askcampus/askcampus/internal/history"
	"github.com/askcampus/askcampus/internal/identity"
)

var syncCmd = &cobra.Command{
	Use:   "sync [user-id]",
	Short: "Rebuild local history from the database mirror",
	Long: `Pull a user's conversation records from the mirror database and rewrite
the local history file to match. Without an argument, syncs the
signed-in user.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
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

	userID := resolveUser(a)
	if len(args) == 1 {
		userID = args[0]
	}
	if err := history.ValidateUserID(userID); err != nil {
		return err
	}
	if userID == identity.Guest {
		return fmt.Errorf("guest history is local-only and cannot be synced")
	}

	n, err := a.Recorder.Restore(ctx, userID)
	if err != nil {
		return fmt.Errorf("syncing history: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "synced %d records for %s\n", n, userID)
	return nil
}
