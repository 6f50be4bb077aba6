// Package cmd implements the askcampus CLI.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/askcampus/askcampus/internal/config"
	"github.com/askcampus/askcampus/internal/log"
)

var (
	flagUser     string
	flagMode     string
	flagLanguage string
	flagDebug    bool
)

var rootCmd = &cobra.Command{
	Use:   "askcampus",
	Short: "askcampus - campus assistant with per-user conversation history",
	Long: `askcampus answers campus questions with a Gemini model and keeps a
per-user conversation history, stored locally and mirrored to
PostgreSQL when one is configured.

Running askcampus without a subcommand starts an interactive chat.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd, args)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagUser, "user", "", "user ID (default: current signed-in user, or guest)")
	rootCmd.PersistentFlags().StringVar(&flagMode, "mode", "", "assistant mode: chat, qa, analysis")
	rootCmd.PersistentFlags().StringVar(&flagLanguage, "language", "", "response language code, e.g. en, zh-TW")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
}

// loadConfig loads configuration and installs the global logger.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading configuration: %w", err)
	}

	level := slog.LevelInfo
	if flagDebug || os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	logger := log.New(log.Config{Level: level})
	slog.SetDefault(logger)

	if flagMode != "" {
		cfg.Mode = flagMode
	}
	if flagLanguage != "" {
		cfg.Language = flagLanguage
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("validating configuration: %w", err)
	}

	return cfg, logger, nil
}
