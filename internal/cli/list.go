package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/khanglvm/tool-hub-search/internal/catalog"
	"github.com/khanglvm/tool-hub-search/internal/search"
)

// listFlags select which tools 'list' shows. At most one filter is set.
type listFlags struct {
	category     string
	server       string
	alwaysLoaded bool
	jsonOutput   bool
}

// NewListCmd creates the 'list' command for browsing the catalog.
func NewListCmd() *cobra.Command {
	var flags listFlags

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List catalog tools by category, server or load policy",
		Long:    `Display catalog tools grouped by server, or only one category, one server, or the tools that are never deferred (in catalog order).`,
		Example: `  tool-hub-search list
  tool-hub-search ls --category filesystem
  tool-hub-search list --server github
  tool-hub-search list --always-loaded --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, &flags)
		},
	}

	cmd.Flags().StringVar(&flags.category, "category", "", "Only tools in this category")
	cmd.Flags().StringVar(&flags.server, "server", "", "Only tools from this server")
	cmd.Flags().BoolVar(&flags.alwaysLoaded, "always-loaded", false, "Only tools that are not deferred")
	cmd.Flags().BoolVarP(&flags.jsonOutput, "json", "j", false, "Output as JSON")
	cmd.MarkFlagsMutuallyExclusive("category", "server", "always-loaded")

	return cmd
}

// runList displays the selected tools.
func runList(cmd *cobra.Command, flags *listFlags) error {
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

	tools, title, err := selectTools(engine, flags, cmd.Flags().Changed("category"))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if flags.jsonOutput {
		return writeJSON(out, tools)
	}
	printTools(out, title, tools)
	return nil
}

// selectTools applies the single active filter. categorySet distinguishes
// "--category ''" (uncategorized tools) from no filter.
func selectTools(engine *search.Engine, flags *listFlags, categorySet bool) ([]catalog.ToolRecord, string, error) {
	switch {
	case categorySet:
		tools, err := engine.ByCategory(flags.category)
		return tools, fmt.Sprintf("Tools in category %q", flags.category), err
	case flags.server != "":
		tools, err := engine.ByServer(flags.server)
		return tools, fmt.Sprintf("Tools from server %q", flags.server), err
	case flags.alwaysLoaded:
		tools, err := engine.AlwaysLoaded()
		return tools, "Always-loaded tools", err
	}

	idx, err := engine.Snapshot()
	if err != nil {
		return nil, "", err
	}
	var tools []catalog.ToolRecord
	for _, server := range idx.Servers() {
		tools = append(tools, idx.ByServer(server)...)
	}
	return tools, "All tools", nil
}

func printTools(out io.Writer, title string, tools []catalog.ToolRecord) {
	if len(tools) == 0 {
		fmt.Fprintf(out, "%s: none.\n", title)
		return
	}

	fmt.Fprintf(out, "%s (%d):\n\n", title, len(tools))
	for _, t := range tools {
		fmt.Fprintf(out, "  %s\n", t.Name)
		fmt.Fprintf(out, "    Server:   %s\n", t.Server)
		fmt.Fprintf(out, "    Source:   %s\n", t.Source)
		fmt.Fprintf(out, "    Category: %s\n", orDash(t.Category))
		if t.DeferLoading {
			fmt.Fprintln(out, "    Deferred: yes")
		}
		fmt.Fprintln(out)
	}
}
