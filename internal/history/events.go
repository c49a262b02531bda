/*
Package history records executed searches in the background.

Searches are queued without blocking the caller and flushed to storage in
batches. Only a SHA256 hash of each query is persisted.
*/
package history

import (
	"time"

	"github.com/google/uuid"

	"github.com/khanglvm/tool-hub-search/internal/storage"
)

// SearchEvent is one executed search.
type SearchEvent struct {
	// SearchID identifies the search (UUID). Callers may return it to
	// clients for correlation.
	SearchID string

	// QueryHash is the SHA256 hash of the query.
	QueryHash string

	Mode         string
	ResultsCount int
	Duration     time.Duration
	Timestamp    time.Time
}

// NewSearchEvent creates an event with a fresh search ID.
func NewSearchEvent(query, mode string, resultsCount int, duration time.Duration) SearchEvent {
	return SearchEvent{
		SearchID:     uuid.NewString(),
		QueryHash:    storage.HashQuery(query),
		Mode:         mode,
		ResultsCount: resultsCount,
		Duration:     duration,
		Timestamp:    time.Now(),
	}
}

// ToStorage converts the event to its storage model.
func (e SearchEvent) ToStorage() storage.SearchRecord {
	return storage.SearchRecord{
		SearchID:     e.SearchID,
		QueryHash:    e.QueryHash,
		Mode:         e.Mode,
		ResultsCount: e.ResultsCount,
		DurationUs:   e.Duration.Microseconds(),
		Timestamp:    e.Timestamp,
	}
}
