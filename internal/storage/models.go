package storage

import "time"

// SearchRecord is one executed search. Only a hash of the query is kept.
type SearchRecord struct {
	// SearchID is a unique identifier for this search (UUID).
	SearchID string `json:"search_id"`

	// QueryHash is the SHA256 hash of the search query for privacy.
	QueryHash string `json:"query_hash"`

	// Mode is the ranking mode name ("bm25", "regex" or "hybrid").
	Mode string `json:"mode"`

	// ResultsCount is the number of results returned.
	ResultsCount int `json:"results_count"`

	// DurationUs is the search latency in microseconds.
	DurationUs int64 `json:"duration_us"`

	// Timestamp is when the search was performed.
	Timestamp time.Time `json:"timestamp"`
}

// ModeSummary aggregates the searches of one mode.
type ModeSummary struct {
	Mode          string  `json:"mode"`
	Searches      int     `json:"searches"`
	EmptySearches int     `json:"empty_searches"`
	AvgResults    float64 `json:"avg_results"`
	AvgDurationUs float64 `json:"avg_duration_us"`
}

// Summary aggregates search history since a point in time.
type Summary struct {
	Since         time.Time     `json:"since"`
	TotalSearches int           `json:"total_searches"`
	EmptySearches int           `json:"empty_searches"`
	ByMode        []ModeSummary `json:"by_mode"`
}
