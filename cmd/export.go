package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/askcampus/askcampus/internal/app"
	"github.com/askcampus/askcampus/internal/export"
)

var (
	flagExportOut       string
	flagExportHistories bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write an analytics snapshot to a JSON file",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&flagExportOut, "out", "o", "", "output file (default: askcampus_stats_<timestamp>.json)")
	exportCmd.Flags().BoolVar(&flagExportHistories, "include-histories", false, "embed full conversation histories in the snapshot")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
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

	histories, err := a.Recorder.AllHistories(ctx)
	if err != nil {
		return fmt.Errorf("loading histories: %w", err)
	}

	snapshot := export.New(histories, flagExportHistories)

	path := flagExportOut
	if path == "" {
		path = export.DefaultFilename(time.Now())
	}
	if err := snapshot.Write(path); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d users, %d conversations)\n",
		path, snapshot.Statistics.TotalUsers, snapshot.Statistics.TotalConversations)
	return nil
}
