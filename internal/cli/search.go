package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/khanglvm/tool-hub-search/internal/history"
	"github.com/khanglvm/tool-hub-search/internal/jsonx"
	"github.com/khanglvm/tool-hub-search/internal/search"
)

// searchFlags are the options of the 'search' command.
type searchFlags struct {
	mode       search.Mode
	source     sourceFlag
	category   string
	limit      int
	jsonOutput bool
}

// NewSearchCmd creates the 'search' command.
func NewSearchCmd() *cobra.Command {
	var flags searchFlags

	cmd := &cobra.Command{
		Use:   "search <query...>",
		Short: "Search the tool catalog",
		Long: `Rank catalog tools for a query.

MODES:
  hybrid  normalized BM25 (70%) plus a regex hit (30%) (default)
  bm25    keyword relevance over name, description, category and server
  regex   case-insensitive pattern over the name, then the description

The query words are joined with single spaces.`,
		Example: `  tool-hub-search search create issue
  tool-hub-search search --mode regex '^github_'
  tool-hub-search search read file --source builtin --limit 3
  tool-hub-search search metrics --category monitoring --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, strings.Join(args, " "), &flags)
		},
	}

	cmd.Flags().VarP(&flags.mode, "mode", "m", "Ranking mode: hybrid, bm25 or regex")
	cmd.Flags().Var(&flags.source, "source", "Only tools from this source: mcp, rust_crate, subagent, builtin")
	cmd.Flags().StringVar(&flags.category, "category", "", "Only tools in this category")
	cmd.Flags().IntVarP(&flags.limit, "limit", "n", search.DefaultLimit, fmt.Sprintf("Maximum results (max %d)", search.MaxLimit))
	cmd.Flags().BoolVarP(&flags.jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

func runSearch(cmd *cobra.Command, query string, flags *searchFlags) error {
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

	hist, err := openHistory(cfg, logger)
	if err != nil {
		return err
	}
	defer hist.Close()

	opts := search.NewSearchOptions(
		search.WithMode(flags.mode),
		search.WithCategory(flags.category),
		search.WithSource(flags.source.source),
		search.WithLimit(flags.limit),
	)

	start := time.Now()
	results, err := engine.SearchWith(query, opts)
	if err != nil {
		return err
	}
	hist.Recorder().Record(history.NewSearchEvent(query, flags.mode.String(), len(results), time.Since(start)))

	out := cmd.OutOrStdout()
	if flags.jsonOutput {
		return writeJSON(out, results)
	}
	printResults(out, query, flags.mode, results)
	return nil
}

func printResults(out io.Writer, query string, mode search.Mode, results []search.SearchResult) {
	if len(results) == 0 {
		fmt.Fprintf(out, "No tools found for %q (%s).\n", query, mode)
		return
	}

	fmt.Fprintf(out, "Results for %q (%s, %d):\n\n", query, mode, len(results))
	for i, r := range results {
		fmt.Fprintf(out, "  %d. %s  [%s]  score %.3f\n", i+1, r.Tool.Name, r.Tool.Server, r.Score)
		if r.Tool.Description != "" {
			fmt.Fprintf(out, "     %s\n", r.Tool.Description)
		}
		fmt.Fprintf(out, "     Source: %s  Category: %s  Matched: %s\n",
			r.Tool.Source, orDash(r.Tool.Category), strings.Join(r.MatchedFields, ", "))
		if r.Tool.DeferLoading {
			fmt.Fprintln(out, "     Deferred: yes")
		}
		fmt.Fprintln(out)
	}
}

// writeJSON writes v as indented JSON.
func writeJSON(out io.Writer, v interface{}) error {
	enc := jsonx.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
