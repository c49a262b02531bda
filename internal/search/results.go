/*
Package search implements tool discovery over a catalog snapshot.

It builds an immutable inverted index from a catalog.ToolCatalog and ranks
tools with BM25, case-insensitive regex matching, or a weighted fusion of
both. The Engine type owns the current index and swaps it atomically on
rebuild, so any number of queries can run concurrently with a rebuild.
*/
package search

import "github.com/khanglvm/tool-hub-search/internal/catalog"

// Searchable field names reported in SearchResult.MatchedFields.
const (
	FieldName        = "name"
	FieldDescription = "description"
	FieldCategory    = "category"
	FieldServer      = "server"
)

// fieldOrder is the canonical order of matched fields.
var fieldOrder = [...]string{FieldName, FieldDescription, FieldCategory, FieldServer}

// SearchResult represents a single ranked hit.
type SearchResult struct {
	Tool          catalog.ToolRecord `json:"tool"`
	Score         float64            `json:"score"`
	MatchedFields []string           `json:"matchedFields"`
}

// RebuildSummary describes a completed rebuild.
type RebuildSummary struct {
	TotalTools int    `json:"totalTools"`
	Version    string `json:"version"`
	Terms      int    `json:"terms"`
	DurationMs int64  `json:"durationMs"`
}

// CatalogStats aggregates the current snapshot.
type CatalogStats struct {
	TotalTools        int                    `json:"totalTools"`
	BySource          map[catalog.Source]int `json:"bySource"`
	ByCategory        map[string]int         `json:"byCategory"`
	DeferredCount     int                    `json:"deferredCount"`
	AlwaysLoadedCount int                    `json:"alwaysLoadedCount"`
	Version           string                 `json:"version"`
	Terms             int                    `json:"terms"`
	AvgDocLength      float64                `json:"avgDocLength"`
}
