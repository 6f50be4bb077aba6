package cmd

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/askcampus/askcampus/internal/app"
	"github.com/askcampus/askcampus/internal/stats"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate usage statistics",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
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

	s := stats.Compute(histories)
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "Usage statistics")
	fmt.Fprintf(out, "  Users:               %d\n", s.TotalUsers)
	fmt.Fprintf(out, "  Conversations:       %d\n", s.TotalConversations)
	fmt.Fprintf(out, "  Messages:            %d\n", s.TotalMessages)
	fmt.Fprintf(out, "  Active (last 24h):   %d\n", s.ActiveToday)
	fmt.Fprintf(out, "  Avg response length: %d chars\n", s.AvgResponseLength)

	printDistribution(out, "Languages", s.LanguageDistribution)
	printDistribution(out, "Modes", s.ModeDistribution)

	if !a.Recorder.MirrorAvailable() {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "note: local histories only (no database configured)")
	}
	return nil
}

func printDistribution(out io.Writer, title string, dist map[string]int) {
	if len(dist) == 0 {
		return
	}

	keys := make([]string, 0, len(dist))
	for k := range dist {
		keys = append(keys, k)
	}
	// Highest count first, ties alphabetically.
	sort.Slice(keys, func(i, j int) bool {
		if dist[keys[i]] != dist[keys[j]] {
			return dist[keys[i]] > dist[keys[j]]
		}
		return keys[i] < keys[j]
	})

	fmt.Fprintf(out, "  %s:\n", title)
	for _, k := range keys {
		fmt.Fprintf(out, "    %-12s %d\n", k, dist[k])
	}
}
