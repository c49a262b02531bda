package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/khanglvm/tool-hub-search/internal/benchmark"
	"github.com/khanglvm/tool-hub-search/internal/mcp"
)

// NewBenchmarkCmd creates the 'benchmark' command for token efficiency testing.
func NewBenchmarkCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "benchmark",
		Short: "Compare token consumption: full catalog vs tool-hub-search",
		Long: `Run a token efficiency benchmark comparing:

FULL CATALOG:
  Every catalog tool definition is exposed to the AI client up front.

TOOL-HUB-SEARCH:
  Only the meta-tools and the tools that are never deferred are exposed;
  deferred tools are found on demand via search_tools.

The benchmark measures the definitions of your loaded catalog.`,
		Example: `  # Run benchmark with current config
  tool-hub-search benchmark

  # Output as JSON
  tool-hub-search benchmark --json`,
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

			cat, err := loadCatalog(cfg)
			if err != nil {
				return fmt.Errorf("failed to load catalog: %w", err)
			}
			engine := newEngine(cfg, logger)
			if _, err := engine.Rebuild(cmd.Context(), cat); err != nil {
				return err
			}

			metaTools := mcp.NewServer(engine).ToolDefinitions()
			result := benchmark.RunTokenBenchmark(cat, metaTools)

			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			fmt.Fprintln(cmd.OutOrStdout())
			fmt.Fprint(cmd.OutOrStdout(), benchmark.FormatTokenResult(result))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

// NewSpeedBenchmarkCmd creates the 'benchmark speed' command for latency testing.
func NewSpeedBenchmarkCmd() *cobra.Command {
	var iterations int
	var queries []string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "speed",
		Short: "Measure query latency per search mode",
		Long: `Run a query set through every search mode (hybrid, bm25, regex) and
report average, p50, p95 and max latency against the loaded catalog.`,
		Example: `  # Run speed benchmark with the built-in queries
  tool-hub-search benchmark speed

  # Custom queries, more iterations
  tool-hub-search benchmark speed -q "create issue" -q "read file" --iterations 500`,
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

			result, err := benchmark.RunLatency(cmd.Context(), engine, queries, iterations)
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			fmt.Fprintln(cmd.OutOrStdout())
			fmt.Fprint(cmd.OutOrStdout(), benchmark.FormatLatencyResult(result))
			return nil
		},
	}

	cmd.Flags().IntVarP(&iterations, "iterations", "n", 100, "Number of iterations per query and mode")
	cmd.Flags().StringArrayVarP(&queries, "query", "q", nil, "Query to run (repeatable; default built-in set)")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}
