package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/khanglvm/tool-hub-search/internal/logging"
)

// Validate checks value ranges. All problems are reported together in one
// *InvalidConfigError.
func (c *Config) Validate() error {
	var problems []string

	if c.Catalog.Pattern != "" && !doublestar.ValidatePattern(c.Catalog.Pattern) {
		problems = append(problems, fmt.Sprintf("catalog.pattern %q is not a valid glob", c.Catalog.Pattern))
	}
	if c.Catalog.WatchDebounceMs < 0 {
		problems = append(problems, "catalog.watchDebounceMs must be >= 0")
	}

	if c.Search.BM25Weight < 0 || c.Search.RegexWeight < 0 {
		problems = append(problems, "search weights must be >= 0")
	} else if c.Search.BM25Weight+c.Search.RegexWeight == 0 {
		problems = append(problems, "search.bm25Weight and search.regexWeight must not both be 0")
	}

	if c.History.RetentionDays < 0 {
		problems = append(problems, "history.retentionDays must be >= 0")
	}
	if c.History.Enabled && c.History.Path == "" {
		problems = append(problems, "history.path is required when history is enabled")
	}

	if !slices.Contains(logging.Levels, strings.ToLower(c.Log.Level)) {
		problems = append(problems, fmt.Sprintf("log.level %q must be one of %s", c.Log.Level, strings.Join(logging.Levels, ", ")))
	}
	if !slices.Contains(logging.Encodings, c.Log.Encoding) {
		problems = append(problems, fmt.Sprintf("log.encoding %q must be one of %s", c.Log.Encoding, strings.Join(logging.Encodings, ", ")))
	}

	if len(problems) == 0 {
		return nil
	}
	return &InvalidConfigError{
		Message: strings.Join(problems, "\n"),
		Hint:    "Fix the listed fields or run 'tool-hub-search config init --force'",
	}
}
