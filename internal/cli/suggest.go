package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/khanglvm/tool-hub-search/internal/search"
)

// NewSuggestCmd creates the 'suggest' command.
func NewSuggestCmd() *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "suggest <partial>",
		Short: "Complete a partial query from the catalog vocabulary",
		Long: `Complete the last word of a partial query with indexed terms and tool
names, most common first.`,
		Example: `  tool-hub-search suggest git
  tool-hub-search suggest "create iss" --limit 3`,
		Args: cobra.MinimumNArgs(1),
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

			suggestions, err := engine.Suggest(strings.Join(args, " "), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				return writeJSON(out, suggestions)
			}
			for _, s := range suggestions {
				fmt.Fprintln(out, s)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", search.DefaultLimit, "Maximum suggestions")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}
