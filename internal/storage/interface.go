/*
Package storage implements persistent search history.

This package provides SQLite-based storage for search history with graceful
degradation if the database is unavailable: writes become no-ops and reads
return nothing.

The database defaults to ~/.tool-hub-search/history.db and uses
modernc.org/sqlite (a pure Go, CGo-free implementation).
*/
package storage

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Storage defines the interface for persistent storage operations.
type Storage interface {
	// Init initializes the database and runs migrations.
	Init() error

	// RecordSearch records one search.
	RecordSearch(search SearchRecord) error

	// RecordSearches records a batch of searches in one transaction.
	RecordSearches(searches []SearchRecord) error

	// RecentSearches returns the newest searches first.
	RecentSearches(limit int) ([]SearchRecord, error)

	// Summary aggregates searches since a given time, per mode.
	Summary(since time.Time) (Summary, error)

	// Cleanup removes old records based on retention policy.
	Cleanup(retention time.Duration) error

	// Close closes the database connection.
	Close() error
}

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db       *sql.DB
	dbPath   string
	enabled  bool
	logger   *zap.Logger
	mu       sync.Mutex
	initOnce sync.Once
}

// NewStorage creates a SQLite storage instance backed by dbPath.
//
// An empty dbPath selects ~/.tool-hub-search/history.db. The directory is
// created on Init. If the database cannot be opened, the storage is
// disabled but operations do not fail.
func NewStorage(dbPath string, logger *zap.Logger) *SQLiteStorage {
	if logger == nil {
		logger = zap.NewNop()
	}

	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			logger.Warn("failed to get home directory, search history disabled", zap.Error(err))
			return &SQLiteStorage{enabled: false, logger: logger}
		}
		dbPath = filepath.Join(home, ".tool-hub-search", "history.db")
	}

	return &SQLiteStorage{
		dbPath:  dbPath,
		enabled: true,
		logger:  logger,
	}
}

// Enabled reports whether the database is usable.
func (s *SQLiteStorage) Enabled() bool {
	return s.enabled && s.db != nil
}

// Path returns the database file path.
func (s *SQLiteStorage) Path() string { return s.dbPath }

// Init initializes the database and runs migrations.
//
// If initialization fails, storage is disabled and subsequent operations
// become no-ops (graceful degradation).
func (s *SQLiteStorage) Init() error {
	if !s.enabled {
		return nil
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}

	var initErr error
	s.initOnce.Do(func() {
		fail := func(err error) {
			initErr = err
			s.enabled = false
			if s.db != nil {
				s.db.Close()
				s.db = nil
			}
			s.logger.Warn("search history disabled", zap.String("path", s.dbPath), zap.Error(err))
		}

		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(s.dbPath), 0755); err != nil {
			fail(fmt.Errorf("failed to create db directory: %w", err))
			return
		}

		db, err := sql.Open("sqlite", s.dbPath)
		if err != nil {
			fail(fmt.Errorf("failed to open database: %w", err))
			return
		}
		// database/sql pools connections; sqlite allows one writer.
		db.SetMaxOpenConns(1)
		s.db = db

		// Test connection
		if err := db.Ping(); err != nil {
			fail(fmt.Errorf("failed to ping database: %w", err))
			return
		}

		if err := s.runMigrations(); err != nil {
			fail(fmt.Errorf("failed to run migrations: %w", err))
			return
		}
	})

	return initErr
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	s.db = nil
	return nil
}

// HashQuery creates a SHA256 hash of a query string for privacy.
func HashQuery(query string) string {
	hash := sha256.Sum256([]byte(query))
	return hex.EncodeToString(hash[:])
}
