package search

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/khanglvm/tool-hub-search/internal/catalog"
)

// Engine is the search facade. It owns the current Index behind an atomic
// pointer: queries load the pointer once and run against that snapshot,
// rebuilds build a new Index off to the side and then swap it in. Readers
// never block and never observe a partially built index.
type Engine struct {
	current atomic.Pointer[Index]

	// rebuildSlot serializes rebuilds; holding the single token means a
	// rebuild is running.
	rebuildSlot chan struct{}

	tokenizer *Tokenizer
	fusion    FusionConfig
	logger    *zap.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the logger used for rebuild events.
func WithLogger(logger *zap.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithTokenizer sets the tokenizer used by subsequent rebuilds.
func WithTokenizer(t *Tokenizer) EngineOption {
	return func(e *Engine) {
		if t != nil {
			e.tokenizer = t
		}
	}
}

// WithFusion overrides the hybrid fusion weights.
func WithFusion(c FusionConfig) EngineOption {
	return func(e *Engine) { e.fusion = c }
}

// NewEngine returns an engine with no catalog loaded. Queries fail with
// ErrEngineNotReady until the first successful Rebuild.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		rebuildSlot: make(chan struct{}, 1),
		tokenizer:   defaultTokenizer,
		fusion:      DefaultFusionConfig,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Ready reports whether a catalog has been loaded.
func (e *Engine) Ready() bool {
	return e.current.Load() != nil
}

// Snapshot returns the current index.
func (e *Engine) Snapshot() (*Index, error) {
	idx := e.current.Load()
	if idx == nil {
		return nil, ErrEngineNotReady
	}
	return idx, nil
}

// Rebuild indexes c and atomically replaces the current snapshot. A
// rebuild that arrives while another is running waits for it; ctx bounds
// only that wait.
func (e *Engine) Rebuild(ctx context.Context, c *catalog.ToolCatalog) (RebuildSummary, error) {
	select {
	case e.rebuildSlot <- struct{}{}:
	case <-ctx.Done():
		return RebuildSummary{}, ctx.Err()
	}
	defer func() { <-e.rebuildSlot }()

	return e.rebuild(c), nil
}

// TryRebuild is like Rebuild but fails with ErrRebuildInProgress instead
// of waiting.
func (e *Engine) TryRebuild(c *catalog.ToolCatalog) (RebuildSummary, error) {
	select {
	case e.rebuildSlot <- struct{}{}:
	default:
		return RebuildSummary{}, ErrRebuildInProgress
	}
	defer func() { <-e.rebuildSlot }()

	return e.rebuild(c), nil
}

func (e *Engine) rebuild(c *catalog.ToolCatalog) RebuildSummary {
	start := time.Now()
	idx := BuildIndex(c, e.tokenizer)
	e.current.Store(idx)
	elapsed := time.Since(start)

	e.logger.Info("catalog index rebuilt",
		zap.String("version", idx.Version()),
		zap.Int("tools", idx.TotalDocs()),
		zap.Int("terms", idx.Terms()),
		zap.Duration("elapsed", elapsed),
	)

	return RebuildSummary{
		TotalTools: idx.TotalDocs(),
		Version:    idx.Version(),
		Terms:      idx.Terms(),
		DurationMs: elapsed.Milliseconds(),
	}
}

// Search ranks tools for query. With no options it runs a hybrid search
// returning at most DefaultLimit results.
func (e *Engine) Search(query string, opts ...Option) ([]SearchResult, error) {
	return e.SearchWith(query, NewSearchOptions(opts...))
}

// SearchWith ranks tools using fully resolved options.
func (e *Engine) SearchWith(query string, opts SearchOptions) ([]SearchResult, error) {
	idx, err := e.Snapshot()
	if err != nil {
		return nil, err
	}
	return rank(idx, query, opts, e.fusion)
}

// Stats summarizes the current snapshot.
func (e *Engine) Stats() (CatalogStats, error) {
	idx, err := e.Snapshot()
	if err != nil {
		return CatalogStats{}, err
	}
	return idx.Stats(), nil
}

// ByCategory lists the tools of a category in catalog order.
func (e *Engine) ByCategory(category string) ([]catalog.ToolRecord, error) {
	idx, err := e.Snapshot()
	if err != nil {
		return nil, err
	}
	return idx.ByCategory(category), nil
}

// ByServer lists the tools of a server in catalog order.
func (e *Engine) ByServer(server string) ([]catalog.ToolRecord, error) {
	idx, err := e.Snapshot()
	if err != nil {
		return nil, err
	}
	return idx.ByServer(server), nil
}

// AlwaysLoaded lists the tools that are not deferred.
func (e *Engine) AlwaysLoaded() ([]catalog.ToolRecord, error) {
	idx, err := e.Snapshot()
	if err != nil {
		return nil, err
	}
	return idx.AlwaysLoaded(), nil
}

// Suggest returns completions for a partial query.
func (e *Engine) Suggest(partial string, limit int) ([]string, error) {
	idx, err := e.Snapshot()
	if err != nil {
		return nil, err
	}
	return idx.Suggest(partial, limit), nil
}
