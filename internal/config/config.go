// Package config handles loading, saving, and validating tool-hub-search
// configuration.
//
// Configuration lives in ~/.tool-hub-search.json by default. The file may also
// be JSONC (comments and trailing commas), TOML or YAML, chosen by extension.
// Every field can be overridden from the environment (TOOL_HUB_SEARCH_*).
//
// Schema:
//   {
//     "catalog": {
//       "path": "~/.tool-hub-search/catalog.json",
//       "pattern": "**/*.json",
//       "watch": true,
//       "watchDebounceMs": 250
//     },
//     "search": {
//       "stopWords": true,
//       "stemming": false,
//       "bm25Weight": 0.7,
//       "regexWeight": 0.3
//     },
//     "history": {
//       "enabled": true,
//       "path": "~/.tool-hub-search/history.db",
//       "retentionDays": 30
//     },
//     "log": {"level": "info", "encoding": "console"}
//   }
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config represents the root configuration structure.
type Config struct {
	Catalog CatalogConfig `json:"catalog" yaml:"catalog" toml:"catalog"`
	Search  SearchConfig  `json:"search" yaml:"search" toml:"search"`
	History HistoryConfig `json:"history" yaml:"history" toml:"history"`
	Log     LogConfig     `json:"log" yaml:"log" toml:"log"`
}

// CatalogConfig says where the tool catalog comes from.
type CatalogConfig struct {
	// Path is a catalog snapshot file, or a directory scanned with Pattern.
	Path string `json:"path" yaml:"path" toml:"path"`

	// Pattern is the doublestar glob used when Path is a directory.
	Pattern string `json:"pattern,omitempty" yaml:"pattern,omitempty" toml:"pattern,omitempty"`

	// Watch reloads the catalog when the file changes (serve only).
	Watch bool `json:"watch" yaml:"watch" toml:"watch"`

	// WatchDebounceMs coalesces bursts of file events.
	WatchDebounceMs int `json:"watchDebounceMs" yaml:"watchDebounceMs" toml:"watchDebounceMs"`
}

// SearchConfig tunes tokenization and hybrid fusion.
type SearchConfig struct {
	StopWords   bool    `json:"stopWords" yaml:"stopWords" toml:"stopWords"`
	Stemming    bool    `json:"stemming" yaml:"stemming" toml:"stemming"`
	BM25Weight  float64 `json:"bm25Weight" yaml:"bm25Weight" toml:"bm25Weight"`
	RegexWeight float64 `json:"regexWeight" yaml:"regexWeight" toml:"regexWeight"`
}

// HistoryConfig controls the local search history database.
type HistoryConfig struct {
	Enabled       bool   `json:"enabled" yaml:"enabled" toml:"enabled"`
	Path          string `json:"path" yaml:"path" toml:"path"`
	RetentionDays int    `json:"retentionDays" yaml:"retentionDays" toml:"retentionDays"`
}

// LogConfig selects the log level and encoder.
type LogConfig struct {
	Level    string `json:"level" yaml:"level" toml:"level"`
	Encoding string `json:"encoding" yaml:"encoding" toml:"encoding"`
}

// NewConfig creates a configuration populated with defaults.
func NewConfig() *Config {
	return &Config{
		Catalog: CatalogConfig{
			Path:            "~/.tool-hub-search/catalog.json",
			Pattern:         "**/*.json",
			Watch:           true,
			WatchDebounceMs: 250,
		},
		Search: SearchConfig{
			StopWords:   true,
			Stemming:    false,
			BM25Weight:  0.7,
			RegexWeight: 0.3,
		},
		History: HistoryConfig{
			Enabled:       true,
			Path:          "~/.tool-hub-search/history.db",
			RetentionDays: 30,
		},
		Log: LogConfig{
			Level:    "info",
			Encoding: "console",
		},
	}
}

// WatchDebounce returns the debounce interval as a duration.
func (c *Config) WatchDebounce() time.Duration {
	return time.Duration(c.Catalog.WatchDebounceMs) * time.Millisecond
}

// Retention returns the history retention as a duration. Zero keeps
// history forever.
func (c *Config) Retention() time.Duration {
	return time.Duration(c.History.RetentionDays) * 24 * time.Hour
}

// GetDefaultConfigPath returns the path to ~/.tool-hub-search.json
func GetDefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".tool-hub-search.json"), nil
}

// ExpandPath replaces a leading "~" with the user's home directory.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// Load reads the configuration from the default path.
func Load() (*Config, error) {
	configPath, err := GetDefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(configPath)
}
