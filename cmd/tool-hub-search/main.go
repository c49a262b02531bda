/*
Package main is the entry point for tool-hub-search CLI.

tool-hub-search indexes a catalog of tools and ranks them for a query with
BM25, regex or a hybrid of both. Its MCP server lets AI clients discover
deferred tools on demand instead of loading every definition up front.

Usage:
  tool-hub-search [command]

Available Commands:
  serve       Run the MCP server (stdio transport)
  search      Search the tool catalog
  suggest     Complete a partial query from the catalog vocabulary
  stats       Summarize the tool catalog
  list        List catalog tools by category, server or load policy
  export      Export the tool catalog as a single snapshot file
  history     Inspect local search history
  benchmark   Compare token consumption and measure latency
  config      Create and inspect configuration
  version     Show version information

Examples:
  # Write a default config
  tool-hub-search config init

  # Search from the terminal
  tool-hub-search search create issue

  # Run as MCP server
  tool-hub-search serve
*/
package main

import (
	"fmt"
	"os"

	"github.com/khanglvm/tool-hub-search/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
