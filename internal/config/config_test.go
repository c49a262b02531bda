package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewConfig(t *testing.T) {
	cfg := NewConfig()

	if !cfg.Search.StopWords {
		t.Error("Default StopWords should be true")
	}
	if cfg.Search.Stemming {
		t.Error("Default Stemming should be false")
	}
	if cfg.Search.BM25Weight != 0.7 || cfg.Search.RegexWeight != 0.3 {
		t.Errorf("Default weights should be 0.7/0.3, got %v/%v", cfg.Search.BM25Weight, cfg.Search.RegexWeight)
	}
	if cfg.History.RetentionDays != 30 {
		t.Errorf("Default RetentionDays should be 30, got %d", cfg.History.RetentionDays)
	}
	if cfg.Catalog.Pattern != "**/*.json" {
		t.Errorf("Default Pattern should be **/*.json, got %q", cfg.Catalog.Pattern)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestDurations(t *testing.T) {
	cfg := NewConfig()
	if cfg.WatchDebounce() != 250*time.Millisecond {
		t.Errorf("WatchDebounce = %v", cfg.WatchDebounce())
	}
	if cfg.Retention() != 30*24*time.Hour {
		t.Errorf("Retention = %v", cfg.Retention())
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	tests := map[string]string{
		"~":                 home,
		"~/catalog.json":    filepath.Join(home, "catalog.json"),
		"/abs/catalog.json": "/abs/catalog.json",
		"rel/catalog.json":  "rel/catalog.json",
		"~other/file":       "~other/file",
	}
	for in, want := range tests {
		got, err := ExpandPath(in)
		if err != nil {
			t.Fatalf("ExpandPath(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("ExpandPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGetDefaultConfigPath(t *testing.T) {
	path, err := GetDefaultConfigPath()
	if err != nil {
		t.Fatalf("GetDefaultConfigPath failed: %v", err)
	}
	if filepath.Base(path) != ".tool-hub-search.json" {
		t.Errorf("unexpected default path %s", path)
	}
}

func TestSaveAndLoad(t *testing.T) {
	for _, name := range []string{"config.json", "config.toml", "config.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)

			cfg := NewConfig()
			cfg.Catalog.Path = "/srv/catalog"
			cfg.Catalog.Watch = false
			cfg.Search.Stemming = true
			cfg.Search.BM25Weight = 0.6
			cfg.Search.RegexWeight = 0.4
			cfg.History.RetentionDays = 7
			cfg.Log.Level = "debug"
			cfg.Log.Encoding = "json"

			if err := Save(cfg, path); err != nil {
				t.Fatalf("Save failed: %v", err)
			}

			loaded, err := LoadFrom(path)
			if err != nil {
				t.Fatalf("LoadFrom failed: %v", err)
			}

			if *loaded != *cfg {
				t.Errorf("round trip mismatch:\n got  %+v\n want %+v", *loaded, *cfg)
			}
		})
	}
}
