// Package watch reloads the tool catalog when its files change.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is used when a non-positive debounce is configured.
const DefaultDebounce = 250 * time.Millisecond

// ReloadFunc reloads the catalog. It runs on the watcher goroutine, one
// call at a time.
type ReloadFunc func(ctx context.Context) error

// Stats counts reload attempts.
type Stats struct {
	Events   int64
	Reloads  int64
	Failures int64
}

// Watcher watches a catalog file, or a directory of catalog files matching
// a doublestar pattern, and calls a ReloadFunc once a burst of changes has
// settled.
type Watcher struct {
	watcher  *fsnotify.Watcher
	target   string
	isDir    bool
	pattern  string
	debounce time.Duration
	reload   ReloadFunc
	logger   *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	stopOnce sync.Once

	events   atomic.Int64
	reloads  atomic.Int64
	failures atomic.Int64
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithPattern sets the glob used to select files under a watched directory.
func WithPattern(pattern string) Option {
	return func(w *Watcher) { w.pattern = pattern }
}

// WithDebounce sets how long the watcher waits for events to settle.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// New creates a watcher for path. It does not watch anything until Start.
func New(path string, reload ReloadFunc, opts ...Option) (*Watcher, error) {
	if reload == nil {
		return nil, errors.New("watch: reload func is required")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", abs, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		watcher:  fsw,
		target:   abs,
		isDir:    info.IsDir(),
		pattern:  "**/*.json",
		debounce: DefaultDebounce,
		reload:   reload,
		logger:   zap.NewNop(),
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start adds the watches and begins processing events.
func (w *Watcher) Start() error {
	if w.isDir {
		if err := w.addTree(w.target); err != nil {
			return fmt.Errorf("failed to add watches starting from %s: %w", w.target, err)
		}
	} else {
		// Editors replace files by rename, so watch the parent directory.
		if err := w.watcher.Add(filepath.Dir(w.target)); err != nil {
			return fmt.Errorf("failed to watch %s: %w", filepath.Dir(w.target), err)
		}
	}

	w.wg.Add(1)
	go w.processEvents()

	w.logger.Info("catalog watcher started",
		zap.String("path", w.target),
		zap.Bool("directory", w.isDir),
		zap.Duration("debounce", w.debounce),
	)
	return nil
}

// Stop stops the watcher. Pending debounced changes are discarded.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		w.cancel()
		err = w.watcher.Close()
		w.wg.Wait()
		w.logger.Info("catalog watcher stopped")
	})
	return err
}

// Stats returns event and reload counters.
func (w *Watcher) Stats() Stats {
	return Stats{
		Events:   w.events.Load(),
		Reloads:  w.reloads.Load(),
		Failures: w.failures.Load(),
	}
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Skip unreadable entries
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("failed to add watch", zap.String("path", path), zap.Error(err))
		}
		return nil
	})
}

func (w *Watcher) processEvents() {
	defer w.wg.Done()

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			w.events.Add(1)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.runReload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", zap.Error(err))
		}
	}
}

// relevant reports whether event touches the catalog. New directories under
// a watched tree are added as a side effect.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}

	path := filepath.Clean(event.Name)
	if !w.isDir {
		return path == w.target
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if err := w.addTree(path); err != nil {
				w.logger.Warn("failed to watch new directory", zap.String("path", path), zap.Error(err))
			}
			// files created before the watch was added are picked up on reload
			return true
		}
	}

	rel, err := filepath.Rel(w.target, path)
	if err != nil {
		return false
	}
	matched, err := doublestar.Match(w.pattern, filepath.ToSlash(rel))
	return err == nil && matched
}

func (w *Watcher) runReload() {
	start := time.Now()
	if err := w.reload(w.ctx); err != nil {
		w.failures.Add(1)
		w.logger.Warn("catalog reload failed, keeping previous snapshot",
			zap.String("path", w.target),
			zap.Error(err),
		)
		return
	}
	w.reloads.Add(1)
	w.logger.Info("catalog reloaded",
		zap.String("path", w.target),
		zap.Duration("elapsed", time.Since(start)),
	)
}
