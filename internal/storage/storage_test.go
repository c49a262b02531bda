/*
Package storage provides tests for the storage layer.
*/
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	storage := NewStorage(filepath.Join(t.TempDir(), "test.db"), zaptest.NewLogger(t))
	if err := storage.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { storage.Close() })
	return storage
}

func record(id, mode string, results int, ts time.Time) SearchRecord {
	return SearchRecord{
		SearchID:     id,
		QueryHash:    HashQuery("query " + id),
		Mode:         mode,
		ResultsCount: results,
		DurationUs:   int64(100 * (results + 1)),
		Timestamp:    ts,
	}
}

// TestNewStorageDefaultPath verifies the default database location.
func TestNewStorageDefaultPath(t *testing.T) {
	storage := NewStorage("", nil)
	if storage == nil {
		t.Fatal("NewStorage returned nil")
	}
	if storage.Path() != "" && filepath.Base(storage.Path()) != "history.db" {
		t.Errorf("unexpected default path %s", storage.Path())
	}
}

// TestInit verifies database initialization and schema creation.
func TestInit(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "test.db")
	storage := NewStorage(dbPath, zaptest.NewLogger(t))

	if err := storage.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer storage.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file not created")
	}
	if !storage.Enabled() {
		t.Error("storage should be enabled")
	}

	version, err := storage.getCurrentMigrationVersion()
	if err != nil {
		t.Fatalf("failed to read migration version: %v", err)
	}
	if version != 1 {
		t.Errorf("expected migration version 1, got %d", version)
	}
}

// TestInitReopen verifies migrations are not re-applied.
func TestInitReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	first := NewStorage(dbPath, zaptest.NewLogger(t))
	if err := first.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	first.RecordSearch(record("a", "bm25", 1, time.Now()))
	first.Close()

	second := NewStorage(dbPath, zaptest.NewLogger(t))
	if err := second.Init(); err != nil {
		t.Fatalf("reopen Init failed: %v", err)
	}
	defer second.Close()

	recent, err := second.RecentSearches(10)
	if err != nil {
		t.Fatalf("RecentSearches failed: %v", err)
	}
	if len(recent) != 1 {
		t.Errorf("expected 1 search after reopen, got %d", len(recent))
	}
}

// TestRecordAndRecentSearches verifies recording and newest-first retrieval.
func TestRecordAndRecentSearches(t *testing.T) {
	storage := newTestStorage(t)
	now := time.Now()

	for i := 0; i < 5; i++ {
		r := record(fmt.Sprintf("s%d", i), "hybrid", i, now.Add(time.Duration(i)*time.Second))
		if err := storage.RecordSearch(r); err != nil {
			t.Fatalf("RecordSearch failed: %v", err)
		}
	}

	recent, err := storage.RecentSearches(3)
	if err != nil {
		t.Fatalf("RecentSearches failed: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("expected 3 searches, got %d", len(recent))
	}
	for i, want := range []string{"s4", "s3", "s2"} {
		if recent[i].SearchID != want {
			t.Errorf("recent[%d] = %s, want %s", i, recent[i].SearchID, want)
		}
	}

	got := recent[0]
	if got.Mode != "hybrid" || got.ResultsCount != 4 || got.DurationUs != 500 {
		t.Errorf("unexpected record: %+v", got)
	}
	if got.Timestamp.Sub(now.Add(4*time.Second)).Abs() > time.Millisecond {
		t.Errorf("timestamp not preserved: %v", got.Timestamp)
	}
}

// TestRecordSearchesBatch verifies batch inserts are atomic.
func TestRecordSearchesBatch(t *testing.T) {
	storage := newTestStorage(t)
	now := time.Now()

	batch := []SearchRecord{
		record("a", "bm25", 1, now),
		record("b", "regex", 0, now),
	}
	if err := storage.RecordSearches(batch); err != nil {
		t.Fatalf("RecordSearches failed: %v", err)
	}

	// duplicate search_id rolls the whole batch back
	dup := []SearchRecord{record("c", "bm25", 1, now), record("a", "bm25", 1, now)}
	if err := storage.RecordSearches(dup); err != nil {
		t.Fatalf("RecordSearches should log, not fail: %v", err)
	}

	recent, err := storage.RecentSearches(10)
	if err != nil {
		t.Fatalf("RecentSearches failed: %v", err)
	}
	if len(recent) != 2 {
		t.Errorf("expected 2 searches, got %d", len(recent))
	}
}

// TestSummary verifies per-mode aggregation.
func TestSummary(t *testing.T) {
	storage := newTestStorage(t)
	now := time.Now()

	storage.RecordSearches([]SearchRecord{
		record("old", "bm25", 3, now.Add(-48*time.Hour)),
		record("b1", "bm25", 2, now),
		record("b2", "bm25", 0, now),
		record("h1", "hybrid", 5, now),
	})

	summary, err := storage.Summary(now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}

	if summary.TotalSearches != 3 {
		t.Errorf("expected 3 searches, got %d", summary.TotalSearches)
	}
	if summary.EmptySearches != 1 {
		t.Errorf("expected 1 empty search, got %d", summary.EmptySearches)
	}
	if len(summary.ByMode) != 2 {
		t.Fatalf("expected 2 modes, got %+v", summary.ByMode)
	}

	bm25 := summary.ByMode[0]
	if bm25.Mode != "bm25" || bm25.Searches != 2 || bm25.AvgResults != 1 {
		t.Errorf("unexpected bm25 summary: %+v", bm25)
	}
	if summary.ByMode[1].Mode != "hybrid" {
		t.Errorf("modes should be sorted, got %+v", summary.ByMode)
	}
}

// TestCleanup verifies retention.
func TestCleanup(t *testing.T) {
	storage := newTestStorage(t)
	now := time.Now()

	storage.RecordSearches([]SearchRecord{
		record("old", "bm25", 1, now.Add(-10*24*time.Hour)),
		record("new", "bm25", 1, now),
	})

	if err := storage.Cleanup(0); err != nil {
		t.Fatalf("Cleanup(0) failed: %v", err)
	}
	if recent, _ := storage.RecentSearches(10); len(recent) != 2 {
		t.Fatalf("zero retention should keep everything, got %d", len(recent))
	}

	if err := storage.Cleanup(7 * 24 * time.Hour); err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
	recent, err := storage.RecentSearches(10)
	if err != nil {
		t.Fatalf("RecentSearches failed: %v", err)
	}
	if len(recent) != 1 || recent[0].SearchID != "new" {
		t.Errorf("expected only the new search, got %+v", recent)
	}
}

// TestHashQuery verifies query hashing consistency.
func TestHashQuery(t *testing.T) {
	query := "test query for hashing"

	hash1 := HashQuery(query)
	hash2 := HashQuery(query)

	if hash1 != hash2 {
		t.Error("HashQuery produced inconsistent results")
	}

	if len(hash1) != 64 { // SHA256 hex = 64 chars
		t.Errorf("Expected hash length 64, got %d", len(hash1))
	}

	if HashQuery("other") == hash1 {
		t.Error("different queries should hash differently")
	}
}

// TestGracefulDegradation verifies behavior when DB is unavailable.
func TestGracefulDegradation(t *testing.T) {
	// A regular file where the directory should be makes MkdirAll fail
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatal(err)
	}
	storage := NewStorage(filepath.Join(blocker, "sub", "test.db"), zaptest.NewLogger(t))

	if err := storage.Init(); err == nil {
		t.Error("Init should report the failure")
	}
	if storage.Enabled() {
		t.Error("storage should be disabled")
	}

	// Operations should not panic or fail
	if err := storage.RecordSearch(record("x", "bm25", 1, time.Now())); err != nil {
		t.Errorf("RecordSearch should return nil on disabled storage, got: %v", err)
	}

	recent, err := storage.RecentSearches(10)
	if err != nil {
		t.Errorf("RecentSearches should not error on disabled storage, got: %v", err)
	}
	if len(recent) != 0 {
		t.Errorf("Expected empty history on disabled storage, got %d", len(recent))
	}

	if _, err := storage.Summary(time.Now()); err != nil {
		t.Errorf("Summary should not error on disabled storage, got: %v", err)
	}
	if err := storage.Cleanup(time.Hour); err != nil {
		t.Errorf("Cleanup should not error on disabled storage, got: %v", err)
	}
	if err := storage.Close(); err != nil {
		t.Errorf("Close should not error on disabled storage, got: %v", err)
	}
}
