package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func mapLookup(m map[string]string) Lookup {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := NewConfig()
	err := ApplyEnv(cfg, mapLookup(map[string]string{
		"TOOL_HUB_SEARCH_CATALOG_PATH":           "/tmp/catalog.yaml",
		"TOOL_HUB_SEARCH_CATALOG_WATCH":          "false",
		"TOOL_HUB_SEARCH_WATCH_DEBOUNCE_MS":      "500",
		"TOOL_HUB_SEARCH_BM25_WEIGHT":            "0.5",
		"TOOL_HUB_SEARCH_REGEX_WEIGHT":           "0.5",
		"TOOL_HUB_SEARCH_HISTORY_RETENTION_DAYS": "1",
		"TOOL_HUB_SEARCH_LOG_ENCODING":           "json",
		"TOOL_HUB_SEARCH_STOP_WORDS":             "", // ignored
	}))
	if err != nil {
		t.Fatalf("ApplyEnv failed: %v", err)
	}

	if cfg.Catalog.Path != "/tmp/catalog.yaml" || cfg.Catalog.Watch || cfg.Catalog.WatchDebounceMs != 500 {
		t.Errorf("catalog overrides not applied: %+v", cfg.Catalog)
	}
	if cfg.Search.BM25Weight != 0.5 || cfg.Search.RegexWeight != 0.5 || !cfg.Search.StopWords {
		t.Errorf("search overrides not applied: %+v", cfg.Search)
	}
	if cfg.History.RetentionDays != 1 || cfg.Log.Encoding != "json" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
}

func TestApplyEnvRejectsBadValues(t *testing.T) {
	cfg := NewConfig()
	err := ApplyEnv(cfg, mapLookup(map[string]string{
		"TOOL_HUB_SEARCH_WATCH_DEBOUNCE_MS": "soon",
	}))

	var invalid *InvalidConfigError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidConfigError, got %v", err)
	}
	if !strings.Contains(err.Error(), "TOOL_HUB_SEARCH_WATCH_DEBOUNCE_MS") {
		t.Errorf("error should name the variable, got: %v", err)
	}
}

func TestLookupWithEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "TOOL_HUB_SEARCH_LOG_LEVEL=warn\nTOOL_HUB_SEARCH_STEMMING=true\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TOOL_HUB_SEARCH_LOG_LEVEL", "error")

	lookup, err := LookupWithEnvFile(path)
	if err != nil {
		t.Fatalf("LookupWithEnvFile failed: %v", err)
	}

	cfg := NewConfig()
	if err := ApplyEnv(cfg, lookup); err != nil {
		t.Fatalf("ApplyEnv failed: %v", err)
	}
	// process environment wins over the file
	if cfg.Log.Level != "error" {
		t.Errorf("level = %q, want error", cfg.Log.Level)
	}
	if !cfg.Search.Stemming {
		t.Error("stemming from env file not applied")
	}

	if _, err := LookupWithEnvFile(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Error("expected error for missing env file")
	}
}

func TestEnvKeys(t *testing.T) {
	keys := EnvKeys()
	if len(keys) != len(envBindings) {
		t.Fatalf("got %d keys", len(keys))
	}
	for _, k := range keys {
		if !strings.HasPrefix(k, EnvPrefix) {
			t.Errorf("key %s lacks prefix", k)
		}
	}
}
