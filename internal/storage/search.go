package storage

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

const insertSearch = `
	INSERT INTO search_history (search_id, query_hash, mode, results_count, duration_us, timestamp)
	VALUES (?, ?, ?, ?, ?, ?)
`

// RecordSearch records one search. Failures are logged, not returned.
func (s *SQLiteStorage) RecordSearch(search SearchRecord) error {
	return s.RecordSearches([]SearchRecord{search})
}

// RecordSearches records a batch of searches in one transaction. Failures
// are logged, not returned.
func (s *SQLiteStorage) RecordSearches(searches []SearchRecord) error {
	if len(searches) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled || s.db == nil {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		s.logger.Warn("failed to begin search history transaction", zap.Error(err))
		return nil
	}

	stmt, err := tx.Prepare(insertSearch)
	if err != nil {
		tx.Rollback()
		s.logger.Warn("failed to prepare search insert", zap.Error(err))
		return nil
	}
	defer stmt.Close()

	for _, r := range searches {
		if _, err := stmt.Exec(
			r.SearchID,
			r.QueryHash,
			r.Mode,
			r.ResultsCount,
			r.DurationUs,
			formatTime(r.Timestamp),
		); err != nil {
			tx.Rollback()
			s.logger.Warn("failed to record search", zap.String("search_id", r.SearchID), zap.Error(err))
			return nil
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Warn("failed to commit search history", zap.Int("searches", len(searches)), zap.Error(err))
	}
	return nil
}

// RecentSearches returns up to limit searches, newest first.
func (s *SQLiteStorage) RecentSearches(limit int) ([]SearchRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled || s.db == nil || limit <= 0 {
		return []SearchRecord{}, nil
	}

	rows, err := s.db.Query(`
		SELECT search_id, query_hash, mode, results_count, duration_us, timestamp
		FROM search_history
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query search history: %w", err)
	}
	defer rows.Close()

	records := []SearchRecord{}
	for rows.Next() {
		var r SearchRecord
		var ts string
		if err := rows.Scan(&r.SearchID, &r.QueryHash, &r.Mode, &r.ResultsCount, &r.DurationUs, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan search row: %w", err)
		}
		if r.Timestamp, err = parseTime(ts); err != nil {
			s.logger.Warn("skipping search with bad timestamp", zap.String("search_id", r.SearchID), zap.Error(err))
			continue
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read search history: %w", err)
	}

	return records, nil
}

// Summary aggregates searches recorded at or after since, per mode.
func (s *SQLiteStorage) Summary(since time.Time) (Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	summary := Summary{Since: since, ByMode: []ModeSummary{}}
	if !s.enabled || s.db == nil {
		return summary, nil
	}

	rows, err := s.db.Query(`
		SELECT mode,
		       COUNT(*),
		       SUM(CASE WHEN results_count = 0 THEN 1 ELSE 0 END),
		       AVG(results_count),
		       AVG(duration_us)
		FROM search_history
		WHERE timestamp >= ?
		GROUP BY mode
		ORDER BY mode
	`, formatTime(since))
	if err != nil {
		return summary, fmt.Errorf("failed to summarize search history: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m ModeSummary
		if err := rows.Scan(&m.Mode, &m.Searches, &m.EmptySearches, &m.AvgResults, &m.AvgDurationUs); err != nil {
			return summary, fmt.Errorf("failed to scan summary row: %w", err)
		}
		summary.TotalSearches += m.Searches
		summary.EmptySearches += m.EmptySearches
		summary.ByMode = append(summary.ByMode, m)
	}
	if err := rows.Err(); err != nil {
		return summary, fmt.Errorf("failed to read summary: %w", err)
	}

	return summary, nil
}

// Cleanup removes records older than retention. A zero retention keeps
// everything.
func (s *SQLiteStorage) Cleanup(retention time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled || s.db == nil || retention <= 0 {
		return nil
	}

	cutoff := formatTime(time.Now().Add(-retention))

	res, err := s.db.Exec("DELETE FROM search_history WHERE timestamp < ?", cutoff)
	if err != nil {
		s.logger.Warn("failed to cleanup search_history", zap.Error(err))
		return nil
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		s.logger.Info("search history cleaned up", zap.Int64("removed", n))
	}

	// Vacuum to reclaim space
	if _, err := s.db.Exec("VACUUM"); err != nil {
		s.logger.Warn("failed to vacuum database", zap.Error(err))
	}

	return nil
}
