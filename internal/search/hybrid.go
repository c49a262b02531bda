package search

import (
	"fmt"
	"sort"
)

// FusionConfig defines weights for hybrid score fusion.
type FusionConfig struct {
	BM25Weight  float64
	RegexWeight float64
}

// DefaultFusionConfig weights normalized BM25 at 70% and a regex hit at 30%.
var DefaultFusionConfig = FusionConfig{
	BM25Weight:  0.7,
	RegexWeight: 0.3,
}

// Validate rejects negative weights and an all-zero configuration.
func (c FusionConfig) Validate() error {
	if c.BM25Weight < 0 || c.RegexWeight < 0 {
		return fmt.Errorf("fusion weights must be non-negative (bm25=%g, regex=%g)", c.BM25Weight, c.RegexWeight)
	}
	if c.BM25Weight+c.RegexWeight == 0 {
		return fmt.Errorf("fusion weights must not both be zero")
	}
	return nil
}

// candidate accumulates both halves of a hybrid score for one document.
type candidate struct {
	bm25   float64
	regex  float64
	fields []string
}

// rank runs one query against idx. It is a fresh computation per call and
// never mutates idx.
func rank(idx *Index, query string, opts SearchOptions, fusion FusionConfig) ([]SearchResult, error) {
	var pattern *Pattern
	if opts.Mode == ModeRegex || opts.Mode == ModeHybrid {
		p, err := CompilePattern(query)
		if err != nil {
			return nil, err
		}
		pattern = p
	}

	limit := opts.EffectiveLimit()
	if limit == 0 {
		return []SearchResult{}, nil
	}

	accept := func(doc int) bool { return opts.accepts(idx.docs[doc].tool) }

	var results []SearchResult
	switch opts.Mode {
	case ModeBM25:
		results = searchBM25(idx, query, accept)
	case ModeRegex:
		results = searchRegex(idx, pattern, accept)
	case ModeHybrid:
		results = searchHybrid(idx, query, pattern, accept, fusion)
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownMode, opts.Mode)
	}

	if results == nil {
		return []SearchResult{}, nil
	}

	sortResults(results)
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func searchBM25(idx *Index, query string, accept func(int) bool) []SearchResult {
	terms := uniqueTerms(idx.Tokenize(query))
	scores := idx.scoreAll(terms, accept)

	results := make([]SearchResult, 0, len(scores))
	for doc, score := range scores {
		results = append(results, SearchResult{
			Tool:          idx.docs[doc].tool,
			Score:         score,
			MatchedFields: idx.matchedTermFields(doc, terms),
		})
	}
	return results
}

func searchRegex(idx *Index, pattern *Pattern, accept func(int) bool) []SearchResult {
	var results []SearchResult
	for doc := range idx.docs {
		if !accept(doc) {
			continue
		}
		m := pattern.Match(idx.docs[doc].tool)
		if !m.Matched {
			continue
		}
		results = append(results, SearchResult{
			Tool:          idx.docs[doc].tool,
			Score:         1.0,
			MatchedFields: m.Fields,
		})
	}
	return results
}

// searchHybrid fuses both paths: normalizedBM25*BM25Weight + match*RegexWeight,
// where normalizedBM25 divides by the best BM25 score among the candidates.
func searchHybrid(idx *Index, query string, pattern *Pattern, accept func(int) bool, fusion FusionConfig) []SearchResult {
	terms := uniqueTerms(idx.Tokenize(query))
	candidates := make(map[int]*candidate)

	maxBM25 := 0.0
	for doc, score := range idx.scoreAll(terms, accept) {
		candidates[doc] = &candidate{bm25: score, fields: idx.matchedTermFields(doc, terms)}
		if score > maxBM25 {
			maxBM25 = score
		}
	}

	for doc := range idx.docs {
		if !accept(doc) {
			continue
		}
		m := pattern.Match(idx.docs[doc].tool)
		if !m.Matched {
			continue
		}
		c, ok := candidates[doc]
		if !ok {
			c = &candidate{}
			candidates[doc] = c
		}
		c.regex = 1.0
		c.fields = unionFields(c.fields, m.Fields)
	}

	results := make([]SearchResult, 0, len(candidates))
	for doc, c := range candidates {
		normalized := 0.0
		if maxBM25 > 0 {
			normalized = c.bm25 / maxBM25
		}
		results = append(results, SearchResult{
			Tool:          idx.docs[doc].tool,
			Score:         normalized*fusion.BM25Weight + c.regex*fusion.RegexWeight,
			MatchedFields: c.fields,
		})
	}
	return results
}

// unionFields merges two field lists and returns them in canonical order.
func unionFields(a, b []string) []string {
	present := make(map[string]bool, len(a)+len(b))
	for _, f := range a {
		present[f] = true
	}
	for _, f := range b {
		present[f] = true
	}
	out := make([]string, 0, len(present))
	for _, f := range fieldOrder {
		if present[f] {
			out = append(out, f)
		}
	}
	return out
}

// sortResults orders by score descending, then name ascending, then server
// ascending, so identical inputs always produce identical output.
func sortResults(results []SearchResult) {
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Tool.Name != b.Tool.Name {
			return a.Tool.Name < b.Tool.Name
		}
		return a.Tool.Server < b.Tool.Server
	})
}
