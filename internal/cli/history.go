package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/khanglvm/tool-hub-search/internal/config"
	"github.com/khanglvm/tool-hub-search/internal/storage"
)

// NewHistoryCmd creates the 'history' command group.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect local search history",
		Long: `Inspect the local search history database.

Only a SHA256 hash of each query is stored, together with the mode, the
number of results and the latency.`,
	}

	cmd.AddCommand(newHistoryRecentCmd())
	cmd.AddCommand(newHistorySummaryCmd())
	cmd.AddCommand(newHistoryCleanupCmd())

	return cmd
}

// withHistoryStore opens the history database for the duration of fn.
func withHistoryStore(fn func(cfg *config.Config, store *storage.SQLiteStorage) error) error {
	cfg, err := globals.loadConfig()
	if err != nil {
		return err
	}
	if !cfg.History.Enabled {
		return fmt.Errorf("search history is disabled (history.enabled = false)")
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	path, err := config.ExpandPath(cfg.History.Path)
	if err != nil {
		return err
	}
	store := storage.NewStorage(path, logger)
	if err := store.Init(); err != nil {
		return fmt.Errorf("failed to open search history: %w", err)
	}
	defer store.Close()

	return fn(cfg, store)
}

func newHistoryRecentCmd() *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "recent",
		Short:   "Show the most recent searches",
		Example: `  tool-hub-search history recent --limit 20`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistoryStore(func(_ *config.Config, store *storage.SQLiteStorage) error {
				records, err := store.RecentSearches(limit)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd.OutOrStdout(), records)
				}
				printRecent(cmd.OutOrStdout(), records)
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of searches to show")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

func printRecent(out io.Writer, records []storage.SearchRecord) {
	if len(records) == 0 {
		fmt.Fprintln(out, "No searches recorded.")
		return
	}
	fmt.Fprintf(out, "Recent searches (%d):\n\n", len(records))
	for _, r := range records {
		fmt.Fprintf(out, "  %s  %-6s  %3d results  %8s  %s\n",
			r.Timestamp.Local().Format("2006-01-02 15:04:05"),
			r.Mode,
			r.ResultsCount,
			time.Duration(r.DurationUs)*time.Microsecond,
			shortHash(r.QueryHash),
		)
	}
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

func newHistorySummaryCmd() *cobra.Command {
	var since time.Duration
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "summary",
		Short:   "Summarize searches per mode",
		Example: `  tool-hub-search history summary --since 24h`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistoryStore(func(_ *config.Config, store *storage.SQLiteStorage) error {
				summary, err := store.Summary(time.Now().Add(-since))
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd.OutOrStdout(), summary)
				}
				printSummary(cmd.OutOrStdout(), summary)
				return nil
			})
		},
	}

	cmd.Flags().DurationVar(&since, "since", 7*24*time.Hour, "Look back this far")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

func printSummary(out io.Writer, s storage.Summary) {
	fmt.Fprintf(out, "Searches since %s: %d (%d with no results)\n",
		s.Since.Local().Format("2006-01-02 15:04"), s.TotalSearches, s.EmptySearches)
	if len(s.ByMode) == 0 {
		return
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %-8s %8s %8s %12s %12s\n", "MODE", "SEARCHES", "EMPTY", "AVG RESULTS", "AVG LATENCY")
	for _, m := range s.ByMode {
		fmt.Fprintf(out, "  %-8s %8d %8d %12.1f %12s\n",
			m.Mode, m.Searches, m.EmptySearches, m.AvgResults,
			time.Duration(m.AvgDurationUs)*time.Microsecond)
	}
}

func newHistoryCleanupCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete searches older than the retention period",
		Example: `  tool-hub-search history cleanup
  tool-hub-search history cleanup --days 7`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistoryStore(func(cfg *config.Config, store *storage.SQLiteStorage) error {
				retention := cfg.Retention()
				if cmd.Flags().Changed("days") {
					retention = time.Duration(days) * 24 * time.Hour
				}
				if retention <= 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Retention is unlimited; nothing to clean up.")
					return nil
				}
				if err := store.Cleanup(retention); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed searches older than %d days\n", int(retention.Hours()/24))
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&days, "days", 0, "Override history.retentionDays")

	return cmd
}
