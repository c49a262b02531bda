package history

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/khanglvm/tool-hub-search/internal/storage"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// mockStorage is an in-memory storage.Storage.
type mockStorage struct {
	mu       sync.Mutex
	records  []storage.SearchRecord
	batches  int
	initErr  error
	recordFn func([]storage.SearchRecord) error
}

func (m *mockStorage) Init() error { return m.initErr }

func (m *mockStorage) RecordSearch(r storage.SearchRecord) error {
	return m.RecordSearches([]storage.SearchRecord{r})
}

func (m *mockStorage) RecordSearches(rs []storage.SearchRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.recordFn != nil {
		if err := m.recordFn(rs); err != nil {
			return err
		}
	}
	m.records = append(m.records, rs...)
	m.batches++
	return nil
}

func (m *mockStorage) RecentSearches(limit int) ([]storage.SearchRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]storage.SearchRecord, 0, len(m.records))
	for i := len(m.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.records[i])
	}
	return out, nil
}

func (m *mockStorage) Summary(since time.Time) (storage.Summary, error) {
	return storage.Summary{Since: since}, nil
}

func (m *mockStorage) Cleanup(time.Duration) error { return nil }
func (m *mockStorage) Close() error                { return nil }

func (m *mockStorage) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

func TestNewSearchEvent(t *testing.T) {
	e := NewSearchEvent("create issue", "hybrid", 3, 1500*time.Microsecond)

	assert.Len(t, e.SearchID, 36)
	assert.Equal(t, storage.HashQuery("create issue"), e.QueryHash)
	assert.NotContains(t, e.QueryHash, "issue")

	rec := e.ToStorage()
	assert.Equal(t, e.SearchID, rec.SearchID)
	assert.Equal(t, "hybrid", rec.Mode)
	assert.Equal(t, 3, rec.ResultsCount)
	assert.Equal(t, int64(1500), rec.DurationUs)

	other := NewSearchEvent("create issue", "hybrid", 3, 0)
	assert.NotEqual(t, e.SearchID, other.SearchID)
}

func TestRecorderRecords(t *testing.T) {
	store := &mockStorage{}
	r := NewRecorder(store, zaptest.NewLogger(t))
	defer r.Stop()

	require.True(t, r.IsEnabled())
	r.Record(NewSearchEvent("q", "bm25", 1, time.Millisecond))

	assert.Eventually(t, func() bool { return store.count() == 1 }, time.Second, 10*time.Millisecond)
}

func TestRecorderBatches(t *testing.T) {
	store := &mockStorage{}
	r := NewRecorder(store, zaptest.NewLogger(t))

	for i := 0; i < 25; i++ {
		r.Record(NewSearchEvent("q", "regex", i, 0))
	}
	r.Stop()

	assert.Equal(t, 25, store.count())
	assert.Less(t, store.batches, 25, "events should be written in batches")
}

func TestRecorderStopFlushes(t *testing.T) {
	store := &mockStorage{}
	r := NewRecorder(store, zaptest.NewLogger(t))

	for i := 0; i < 3; i++ {
		r.Record(NewSearchEvent("q", "hybrid", i, 0))
	}
	r.Stop()
	r.Stop() // idempotent

	assert.Equal(t, 3, store.count())
}

func TestRecorderInitFailure(t *testing.T) {
	store := &mockStorage{initErr: errors.New("disk full")}
	r := NewRecorder(store, zaptest.NewLogger(t))

	assert.False(t, r.IsEnabled())
	r.Record(NewSearchEvent("q", "hybrid", 1, 0))
	r.Stop()
	assert.Equal(t, 0, store.count())
}

func TestRecorderNilStorage(t *testing.T) {
	r := NewRecorder(nil, nil)
	defer r.Stop()

	assert.False(t, r.IsEnabled())
	r.Record(NewSearchEvent("q", "hybrid", 1, 0))

	var nilRecorder *Recorder
	assert.False(t, nilRecorder.IsEnabled())
	nilRecorder.Record(NewSearchEvent("q", "hybrid", 1, 0))
}

func TestRecorderStorageErrorIsLogged(t *testing.T) {
	store := &mockStorage{recordFn: func([]storage.SearchRecord) error { return errors.New("locked") }}
	r := NewRecorder(store, zaptest.NewLogger(t))

	r.Record(NewSearchEvent("q", "hybrid", 1, 0))
	r.Stop()
	assert.Equal(t, 0, store.count())
}

func TestRecorderWithSQLite(t *testing.T) {
	store := storage.NewStorage(filepath.Join(t.TempDir(), "history.db"), zaptest.NewLogger(t))
	r := NewRecorder(store, zaptest.NewLogger(t))

	for i := 0; i < 12; i++ {
		r.Record(NewSearchEvent("q", "bm25", i, time.Millisecond))
	}
	r.Stop()
	defer store.Close()

	recent, err := store.RecentSearches(100)
	require.NoError(t, err)
	assert.Len(t, recent, 12)
}
