package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/khanglvm/tool-hub-search/internal/catalog"
	"github.com/khanglvm/tool-hub-search/internal/search"
)

// NewStatsCmd creates the 'stats' command.
func NewStatsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize the tool catalog",
		Long:  `Show tool counts by source and category, deferred and always-loaded counts, and index size.`,
		Example: `  tool-hub-search stats
  tool-hub-search stats --catalog ./tools.yaml --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := globals.loadConfig()
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			engine, err := openEngine(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			stats, err := engine.Stats()
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), stats)
			}
			printStats(cmd.OutOrStdout(), stats)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

func printStats(out io.Writer, stats search.CatalogStats) {
	fmt.Fprintf(out, "Catalog %s\n\n", orDash(stats.Version))
	fmt.Fprintf(out, "  Tools:          %d\n", stats.TotalTools)
	fmt.Fprintf(out, "  Always loaded:  %d\n", stats.AlwaysLoadedCount)
	fmt.Fprintf(out, "  Deferred:       %d\n", stats.DeferredCount)
	fmt.Fprintf(out, "  Indexed terms:  %d\n", stats.Terms)
	fmt.Fprintf(out, "  Avg doc length: %.1f\n", stats.AvgDocLength)

	fmt.Fprintln(out, "\nBy source:")
	for _, src := range catalog.Sources {
		if n := stats.BySource[src]; n > 0 {
			fmt.Fprintf(out, "  %-12s %d\n", src, n)
		}
	}

	categories := make([]string, 0, len(stats.ByCategory))
	for c := range stats.ByCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	fmt.Fprintln(out, "\nBy category:")
	for _, c := range categories {
		fmt.Fprintf(out, "  %-16s %d\n", orDash(c), stats.ByCategory[c])
	}
}
