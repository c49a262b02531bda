package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/khanglvm/tool-hub-search/internal/catalog"
	"github.com/khanglvm/tool-hub-search/internal/config"
	"github.com/khanglvm/tool-hub-search/internal/history"
	"github.com/khanglvm/tool-hub-search/internal/logging"
	"github.com/khanglvm/tool-hub-search/internal/search"
	"github.com/khanglvm/tool-hub-search/internal/storage"
)

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configPath  string
	catalogPath string
	envFile     string
	logLevel    string
}

func (g *globalFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&g.configPath, "config", "c", "", "Config file (default ~/.tool-hub-search.json)")
	fs.StringVar(&g.catalogPath, "catalog", "", "Catalog file or directory (overrides catalog.path)")
	fs.StringVar(&g.envFile, "env-file", "", "Dotenv file with TOOL_HUB_SEARCH_* overrides")
	fs.StringVar(&g.logLevel, "log-level", "", "Log level: debug, info, warn, error")
}

// resolveConfigPath returns the config file to use and whether the user
// named it explicitly.
func (g *globalFlags) resolveConfigPath() (string, bool, error) {
	if g.configPath == "" {
		path, err := config.GetDefaultConfigPath()
		return path, false, err
	}
	path, err := config.ExpandPath(g.configPath)
	return path, true, err
}

// loadConfig reads the config file (defaults when the default file is
// missing) and applies flag overrides on top.
func (g *globalFlags) loadConfig() (*config.Config, error) {
	path, explicit, err := g.resolveConfigPath()
	if err != nil {
		return nil, err
	}

	var cfg *config.Config
	if explicit {
		cfg, err = config.LoadFrom(path)
	} else {
		cfg, err = config.LoadOrDefault(path)
	}
	if err != nil {
		return nil, err
	}

	if g.envFile != "" {
		lookup, err := config.LookupWithEnvFile(g.envFile)
		if err != nil {
			return nil, err
		}
		if err := config.ApplyEnv(cfg, lookup); err != nil {
			return nil, err
		}
	}
	if g.catalogPath != "" {
		cfg.Catalog.Path = g.catalogPath
	}
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the process logger. Logs always go to stderr so they
// never mix with command output or the MCP stream.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	return logging.New(cfg.Log.Level, cfg.Log.Encoding)
}

// newEngine creates an engine configured from cfg. It has no catalog yet.
func newEngine(cfg *config.Config, logger *zap.Logger) *search.Engine {
	tok := search.NewTokenizer(
		search.WithStopWords(cfg.Search.StopWords),
		search.WithStemming(cfg.Search.Stemming),
	)
	return search.NewEngine(
		search.WithLogger(logger),
		search.WithTokenizer(tok),
		search.WithFusion(search.FusionConfig{
			BM25Weight:  cfg.Search.BM25Weight,
			RegexWeight: cfg.Search.RegexWeight,
		}),
	)
}

// catalogPath returns the expanded catalog location.
func catalogPath(cfg *config.Config) (string, error) {
	return config.ExpandPath(cfg.Catalog.Path)
}

// loadCatalog reads the catalog named by cfg. A directory is scanned with
// the configured pattern.
func loadCatalog(cfg *config.Config) (*catalog.ToolCatalog, error) {
	path, err := catalogPath(cfg)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("catalog not found at %s\n💡 Set catalog.path in the config or pass --catalog", path)
		}
		return nil, fmt.Errorf("failed to access catalog: %w", err)
	}

	if info.IsDir() {
		return catalog.LoadDir(path, cfg.Catalog.Pattern)
	}
	return catalog.Load(path)
}

// openEngine loads the catalog and returns a ready engine.
func openEngine(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*search.Engine, error) {
	cat, err := loadCatalog(cfg)
	if err != nil {
		return nil, err
	}
	engine := newEngine(cfg, logger)
	if _, err := engine.Rebuild(ctx, cat); err != nil {
		return nil, err
	}
	return engine, nil
}

// historyHandle bundles the history database and its recorder.
type historyHandle struct {
	store    *storage.SQLiteStorage
	recorder *history.Recorder
}

// openHistory opens search history when enabled. A nil handle (and nil
// recorder) means history is off; recording on it is a no-op.
func openHistory(cfg *config.Config, logger *zap.Logger) (*historyHandle, error) {
	if !cfg.History.Enabled {
		return nil, nil
	}
	path, err := config.ExpandPath(cfg.History.Path)
	if err != nil {
		return nil, err
	}
	store := storage.NewStorage(path, logger)
	return &historyHandle{
		store:    store,
		recorder: history.NewRecorder(store, logger),
	}, nil
}

// Recorder returns the recorder, or nil when history is off.
func (h *historyHandle) Recorder() *history.Recorder {
	if h == nil {
		return nil
	}
	return h.recorder
}

// Close flushes pending events and closes the database.
func (h *historyHandle) Close() error {
	if h == nil {
		return nil
	}
	h.recorder.Stop()
	return h.store.Close()
}

// sourceFlag adapts catalog.Source to pflag.Value. The zero value means
// "any source".
type sourceFlag struct {
	source catalog.Source
}

func (f *sourceFlag) String() string { return string(f.source) }

func (f *sourceFlag) Set(s string) error {
	src, err := catalog.ParseSource(s)
	if err != nil {
		return err
	}
	f.source = src
	return nil
}

func (f *sourceFlag) Type() string { return "source" }

var _ pflag.Value = (*sourceFlag)(nil)
