package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TOOL_HUB_SEARCH_"

// Lookup resolves one environment variable.
type Lookup func(key string) (string, bool)

// LookupEnv reads the process environment.
func LookupEnv(key string) (string, bool) { return os.LookupEnv(key) }

// LookupWithEnvFile reads the process environment first and falls back to
// the variables in a dotenv file.
func LookupWithEnvFile(path string) (Lookup, error) {
	vars, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read env file %s: %w", path, err)
	}
	return func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := vars[key]
		return v, ok
	}, nil
}

type envBinding struct {
	key   string
	apply func(cfg *Config, raw string) error
}

func stringBinding(key string, field func(*Config) *string) envBinding {
	return envBinding{key: key, apply: func(cfg *Config, raw string) error {
		*field(cfg) = raw
		return nil
	}}
}

func boolBinding(key string, field func(*Config) *bool) envBinding {
	return envBinding{key: key, apply: func(cfg *Config, raw string) error {
		v, err := cast.ToBoolE(raw)
		if err != nil {
			return err
		}
		*field(cfg) = v
		return nil
	}}
}

func intBinding(key string, field func(*Config) *int) envBinding {
	return envBinding{key: key, apply: func(cfg *Config, raw string) error {
		v, err := cast.ToIntE(raw)
		if err != nil {
			return err
		}
		*field(cfg) = v
		return nil
	}}
}

func floatBinding(key string, field func(*Config) *float64) envBinding {
	return envBinding{key: key, apply: func(cfg *Config, raw string) error {
		v, err := cast.ToFloat64E(raw)
		if err != nil {
			return err
		}
		*field(cfg) = v
		return nil
	}}
}

var envBindings = []envBinding{
	stringBinding("CATALOG_PATH", func(c *Config) *string { return &c.Catalog.Path }),
	stringBinding("CATALOG_PATTERN", func(c *Config) *string { return &c.Catalog.Pattern }),
	boolBinding("CATALOG_WATCH", func(c *Config) *bool { return &c.Catalog.Watch }),
	intBinding("WATCH_DEBOUNCE_MS", func(c *Config) *int { return &c.Catalog.WatchDebounceMs }),
	boolBinding("STOP_WORDS", func(c *Config) *bool { return &c.Search.StopWords }),
	boolBinding("STEMMING", func(c *Config) *bool { return &c.Search.Stemming }),
	floatBinding("BM25_WEIGHT", func(c *Config) *float64 { return &c.Search.BM25Weight }),
	floatBinding("REGEX_WEIGHT", func(c *Config) *float64 { return &c.Search.RegexWeight }),
	boolBinding("HISTORY_ENABLED", func(c *Config) *bool { return &c.History.Enabled }),
	stringBinding("HISTORY_PATH", func(c *Config) *string { return &c.History.Path }),
	intBinding("HISTORY_RETENTION_DAYS", func(c *Config) *int { return &c.History.RetentionDays }),
	stringBinding("LOG_LEVEL", func(c *Config) *string { return &c.Log.Level }),
	stringBinding("LOG_ENCODING", func(c *Config) *string { return &c.Log.Encoding }),
}

// EnvKeys lists every recognized override variable.
func EnvKeys() []string {
	keys := make([]string, len(envBindings))
	for i, b := range envBindings {
		keys[i] = EnvPrefix + b.key
	}
	return keys
}

// ApplyEnv overwrites cfg fields from TOOL_HUB_SEARCH_* variables. Empty
// values are ignored.
func ApplyEnv(cfg *Config, lookup Lookup) error {
	for _, b := range envBindings {
		key := EnvPrefix + b.key
		raw, ok := lookup(key)
		if !ok || raw == "" {
			continue
		}
		if err := b.apply(cfg, raw); err != nil {
			return &InvalidConfigError{
				Message: fmt.Sprintf("environment variable %s=%q: %v", key, raw, err),
				Hint:    "Unset the variable or fix its value",
			}
		}
	}
	return nil
}
