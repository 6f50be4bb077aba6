package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/askcampus/askcampus/internal/identity"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Show or change the signed-in user",
	RunE:  runUserShow,
}

var userSetCmd = &cobra.Command{
	Use:   "set <user-id>",
	Short: "Sign in as a user",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserSet,
}

var userClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Sign out (subsequent commands run as guest)",
	RunE:  runUserClear,
}

func init() {
	userCmd.AddCommand(userSetCmd)
	userCmd.AddCommand(userClearCmd)
	rootCmd.AddCommand(userCmd)
}

func identityManager() (*identity.Manager, error) {
	dir, err := identity.DefaultDir()
	if err != nil {
		return nil, err
	}
	return identity.New(dir), nil
}

func runUserShow(cmd *cobra.Command, _ []string) error {
	m, err := identityManager()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), m.Current())
	return nil
}

func runUserSet(cmd *cobra.Command, args []string) error {
	m, err := identityManager()
	if err != nil {
		return err
	}
	if err := m.SetCurrent(args[0]); err != nil {
		return fmt.Errorf("setting current user: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "signed in as %s\n", args[0])
	return nil
}

func runUserClear(cmd *cobra.Command, _ []string) error {
	m, err := identityManager()
	if err != nil {
		return err
	}
	if err := m.Clear(); err != nil {
		return fmt.Errorf("clearing current user: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "signed out, running as guest")
	return nil
}
