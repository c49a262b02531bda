package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/khanglvm/tool-hub-search/internal/catalog"
	"github.com/khanglvm/tool-hub-search/internal/config"
	"github.com/khanglvm/tool-hub-search/internal/mcp"
	"github.com/khanglvm/tool-hub-search/internal/search"
	"github.com/khanglvm/tool-hub-search/internal/watch"
)

// NewServeCmd creates the 'serve' command for running the MCP server.
//
// This is the main command that exposes the meta-tools via stdio transport.
func NewServeCmd() *cobra.Command {
	var noWatch bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server (stdio transport)",
		Long: `Start the tool-hub-search MCP server using stdio transport.

This server exposes 7 meta-tools to AI clients:
  • search_tools       - Rank catalog tools for a query
  • suggest_tools      - Complete a partial query
  • catalog_stats      - Summarize the loaded catalog
  • list_by_category   - List the tools of a category
  • list_by_server     - List the tools of a server
  • list_always_loaded - List the tools that are never deferred
  • rebuild_catalog    - Reload the catalog and swap the index

The catalog file is watched and re-indexed on change; searches keep
serving the previous index while a rebuild runs.`,
		Example: `  # Run directly
  tool-hub-search serve

  # Add to Claude Code
  claude mcp add tool-hub-search -- tool-hub-search serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(noWatch)
		},
	}

	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "Do not reload the catalog when it changes")

	return cmd
}

// runServe starts the MCP server with stdio transport and signal handling.
// Implements graceful shutdown on SIGINT/SIGTERM/SIGQUIT.
func runServe(noWatch bool) error {
	cfg, err := globals.loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	engine := newEngine(cfg, logger)
	source := func(context.Context) (*catalog.ToolCatalog, error) {
		return loadCatalog(cfg)
	}

	// A missing catalog is not fatal: queries report "not ready" until
	// rebuild_catalog or the watcher loads one.
	if err := reloadCatalog(ctx, engine, source); err != nil {
		logger.Warn("catalog not loaded", zap.Error(err))
	}

	hist, err := openHistory(cfg, logger)
	if err != nil {
		return err
	}
	defer hist.Close()
	if hist != nil && cfg.Retention() > 0 {
		if err := hist.store.Cleanup(cfg.Retention()); err != nil {
			logger.Warn("search history cleanup failed", zap.Error(err))
		}
	}
	logger.Info("search history", zap.Bool("enabled", hist.Recorder().IsEnabled()))

	if cfg.Catalog.Watch && !noWatch {
		watcher, err := startWatcher(cfg, engine, source, logger)
		if err != nil {
			logger.Warn("catalog watcher disabled", zap.Error(err))
		} else {
			defer watcher.Stop() //nolint:errcheck
		}
	}

	server := mcp.NewServer(engine,
		mcp.WithRecorder(hist.Recorder()),
		mcp.WithCatalogSource(source),
		mcp.WithLogger(logger),
	)

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer signal.Stop(sigChan)

	// Run server in separate goroutine
	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Run(ctx)
	}()

	// Wait for either signal or server error
	select {
	case sig := <-sigChan:
		logger.Info("received signal, shutting down gracefully", zap.Stringer("signal", sig))
		cancel()
		return nil

	case err := <-errChan:
		// stdin closed or read error
		if err != nil && err != context.Canceled {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}
}

// reloadCatalog loads a fresh catalog and swaps it into engine.
func reloadCatalog(ctx context.Context, engine *search.Engine, source mcp.CatalogSource) error {
	cat, err := source(ctx)
	if err != nil {
		return err
	}
	_, err = engine.Rebuild(ctx, cat)
	return err
}

// startWatcher re-indexes the catalog whenever its file (or a matching file
// under its directory) changes.
func startWatcher(cfg *config.Config, engine *search.Engine, source mcp.CatalogSource, logger *zap.Logger) (*watch.Watcher, error) {
	path, err := catalogPath(cfg)
	if err != nil {
		return nil, err
	}

	reload := func(ctx context.Context) error {
		return reloadCatalog(ctx, engine, source)
	}

	w, err := watch.New(path, reload,
		watch.WithPattern(cfg.Catalog.Pattern),
		watch.WithDebounce(cfg.WatchDebounce()),
		watch.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	if err := w.Start(); err != nil {
		w.Stop() //nolint:errcheck
		return nil, err
	}
	return w, nil
}
