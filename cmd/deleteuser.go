package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/askcampus/askcampus/internal/app"
	"github.com/askcampus/askcampus/internal/history"
)

var flagDeleteYes bool

var deleteUserCmd = &cobra.Command{
	Use:   "delete-user <user-id>",
	Short: "Delete all of a user's conversation data",
	Long: `Delete a user's conversation history from the local store and, when a
database is configured, from the mirror as well. This cannot be undone.`,
	Args: cobra.ExactArgs(1),
	RunE: runDeleteUser,
}

func init() {
	deleteUserCmd.Flags().BoolVarP(&flagDeleteYes, "yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(deleteUserCmd)
}

func runDeleteUser(cmd *cobra.Command, args []string) error {
	userID := args[0]
	if err := history.ValidateUserID(userID); err != nil {
		return err
	}

	if !flagDeleteYes {
		fmt.Fprintf(cmd.OutOrStdout(), "Delete all data for %q? [y/N] ", userID)
		var answer string
		if _, err := fmt.Fscanln(cmd.InOrStdin(), &answer); err != nil || (answer != "y" && answer != "Y") {
			fmt.Fprintln(cmd.OutOrStdout(), "aborted")
			return nil
		}
	}

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

	if err := a.Recorder.DeleteUser(ctx, userID); err != nil {
		return fmt.Errorf("deleting user data: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "deleted all data for %s\n", userID)
	return nil
}
