/*
Package cli implements the tool-hub-search command line.

Every command reads the same configuration (see package config); the
persistent --config, --catalog, --env-file and --log-level flags override
it per invocation.
*/
package cli

import (
	"github.com/spf13/cobra"

	"github.com/khanglvm/tool-hub-search/internal/version"
)

// globals holds the persistent flags of the current root command.
var globals globalFlags

// NewRootCmd assembles the full command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tool-hub-search",
		Short: "Find the right tool in a large tool catalog",
		Long: `tool-hub-search indexes a catalog of tools (MCP tools, Rust crates,
subagents, builtins) and ranks them for a query with BM25 keyword relevance,
case-insensitive regex matching, or a hybrid of both.

AI clients use it through the MCP server (serve), which exposes 7 meta-tools
instead of every tool definition, so deferred tools cost no context tokens
until they are found.`,
		Version:       version.GetVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	globals = globalFlags{}
	globals.register(rootCmd.PersistentFlags())

	rootCmd.AddCommand(NewServeCmd())
	rootCmd.AddCommand(NewSearchCmd())
	rootCmd.AddCommand(NewSuggestCmd())
	rootCmd.AddCommand(NewStatsCmd())
	rootCmd.AddCommand(NewListCmd())
	rootCmd.AddCommand(NewExportCmd())
	rootCmd.AddCommand(NewHistoryCmd())
	rootCmd.AddCommand(NewConfigCmd())
	rootCmd.AddCommand(NewVersionCmd())

	// Benchmark command with speed subcommand
	benchmarkCmd := NewBenchmarkCmd()
	benchmarkCmd.AddCommand(NewSpeedBenchmarkCmd())
	rootCmd.AddCommand(benchmarkCmd)

	return rootCmd
}
