package search

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/sync/errgroup"

	"github.com/khanglvm/tool-hub-search/internal/catalog"
)

func readyEngine(t *testing.T) *Engine {
	t.Helper()
	e := NewEngine(WithLogger(zaptest.NewLogger(t)))
	_, err := e.Rebuild(context.Background(), fixtureCatalog(t))
	require.NoError(t, err)
	return e
}

func TestEngineNotReady(t *testing.T) {
	e := NewEngine()
	assert.False(t, e.Ready())

	_, err := e.Search("file")
	assert.ErrorIs(t, err, ErrEngineNotReady)
	_, err = e.Stats()
	assert.ErrorIs(t, err, ErrEngineNotReady)
	_, err = e.Suggest("git", 5)
	assert.ErrorIs(t, err, ErrEngineNotReady)
	_, err = e.ByCategory("filesystem")
	assert.ErrorIs(t, err, ErrEngineNotReady)
	_, err = e.ByServer("fs")
	assert.ErrorIs(t, err, ErrEngineNotReady)
	_, err = e.AlwaysLoaded()
	assert.ErrorIs(t, err, ErrEngineNotReady)
}

func TestEngineRebuildSummary(t *testing.T) {
	e := NewEngine(WithLogger(zaptest.NewLogger(t)))

	summary, err := e.Rebuild(context.Background(), fixtureCatalog(t))
	require.NoError(t, err)
	assert.True(t, e.Ready())
	assert.Equal(t, 11, summary.TotalTools)
	assert.Equal(t, "fixture-1", summary.Version)
	assert.Positive(t, summary.Terms)
}

func TestEngineSearch(t *testing.T) {
	e := readyEngine(t)

	results, err := e.Search("create github issue", WithMode(ModeBM25))
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "github_create_issue", results[0].Tool.Name)

	results, err = e.Search("github_.*_issue", WithMode(ModeRegex))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, []string{FieldName}, results[0].MatchedFields)

	results, err = e.Search("zzz_nonexistent_term", WithLimit(5))
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = e.Search("issue", WithCategory("monitoring"))
	require.NoError(t, err)
	assert.Empty(t, results)

	_, err = e.Search("github(")
	assert.ErrorIs(t, err, ErrInvalidPattern)
}

func TestEngineFacets(t *testing.T) {
	e := readyEngine(t)

	suggestions, err := e.Suggest("git", 5)
	require.NoError(t, err)
	assert.Equal(t, "github", suggestions[0])

	tools, err := e.ByServer("prom")
	require.NoError(t, err)
	assert.Len(t, tools, 2)

	tools, err = e.ByCategory("development")
	require.NoError(t, err)
	assert.Len(t, tools, 3)

	tools, err = e.AlwaysLoaded()
	require.NoError(t, err)
	assert.Len(t, tools, 9)
}

func TestEngineRebuildEmptyCatalog(t *testing.T) {
	e := readyEngine(t)

	summary, err := e.Rebuild(context.Background(), catalog.Empty())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.TotalTools)

	for _, mode := range Modes {
		results, err := e.Search("file", WithMode(mode))
		require.NoError(t, err)
		assert.NotNil(t, results)
		assert.Empty(t, results)
	}

	stats, err := e.Stats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalTools)
}

func TestEngineTryRebuildInProgress(t *testing.T) {
	e := readyEngine(t)

	// hold the slot as a running rebuild would
	e.rebuildSlot <- struct{}{}

	_, err := e.TryRebuild(catalog.Empty())
	assert.ErrorIs(t, err, ErrRebuildInProgress)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.Rebuild(ctx, catalog.Empty())
	assert.ErrorIs(t, err, context.Canceled)

	// the old snapshot is still served
	stats, err := e.Stats()
	require.NoError(t, err)
	assert.Equal(t, 11, stats.TotalTools)

	<-e.rebuildSlot
	summary, err := e.TryRebuild(catalog.Empty())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.TotalTools)
}

func TestEngineConcurrentRebuildAndSearch(t *testing.T) {
	e := readyEngine(t)

	small, err := catalog.New("small", fixtureRecords()[:3])
	require.NoError(t, err)
	full := fixtureCatalog(t)

	var g errgroup.Group
	for i := 0; i < 4; i++ {
		g.Go(func() error {
			for j := 0; j < 25; j++ {
				c := full
				if (i+j)%2 == 0 {
					c = small
				}
				if _, err := e.Rebuild(context.Background(), c); err != nil {
					return err
				}
			}
			return nil
		})
	}
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			for j := 0; j < 50; j++ {
				idx, err := e.Snapshot()
				if err != nil {
					return err
				}
				results, err := rank(idx, ".", NewSearchOptions(WithMode(ModeRegex), WithLimit(MaxLimit)), DefaultFusionConfig)
				if err != nil {
					return err
				}
				want := min(idx.TotalDocs(), MaxLimit)
				if len(results) != want {
					return fmt.Errorf("snapshot %s: got %d results, want %d", idx.Version(), len(results), want)
				}
				if n := idx.TotalDocs(); n != 3 && n != 11 {
					return errors.New("observed a partially built index")
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}
