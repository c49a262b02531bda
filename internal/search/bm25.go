package search

import "math"

// BM25 constants. Fixed, not caller-tunable.
const (
	bm25K1 = 1.2
	bm25B  = 0.75
)

// idf returns ln((N - df + 0.5) / (df + 0.5) + 1), which is always positive.
func idf(totalDocs, df int) float64 {
	n := float64(totalDocs)
	d := float64(df)
	return math.Log((n-d+0.5)/(d+0.5) + 1)
}

// termScore is the BM25 contribution of one term occurring tf times in a
// document of docLen terms.
func (idx *Index) termScore(term string, tf, docLen int) float64 {
	if tf == 0 || idx.avgDocLength == 0 {
		return 0
	}
	f := float64(tf)
	norm := 1 - bm25B + bm25B*float64(docLen)/idx.avgDocLength
	return idf(len(idx.docs), idx.docFreq[term]) * (f * (bm25K1 + 1)) / (f + bm25K1*norm)
}

// ScoreBM25 scores one tool (by "server/name" key) against query terms.
// Terms absent from the tool contribute nothing; an unknown tool scores 0.
func (idx *Index) ScoreBM25(queryTerms []string, key string) float64 {
	i, ok := idx.byKey[key]
	if !ok {
		return 0
	}
	d := &idx.docs[i]

	score := 0.0
	for _, term := range uniqueTerms(queryTerms) {
		score += idx.termScore(term, d.tf[term], d.length)
	}
	return score
}

// scoreAll walks the posting lists of the query terms and returns the
// positive BM25 score of every accepted document.
func (idx *Index) scoreAll(queryTerms []string, accept func(doc int) bool) map[int]float64 {
	scores := make(map[int]float64)
	for _, term := range uniqueTerms(queryTerms) {
		for _, p := range idx.postings[term] {
			if !accept(p.doc) {
				continue
			}
			scores[p.doc] += idx.termScore(term, p.tf, idx.docs[p.doc].length)
		}
	}
	for doc, s := range scores {
		if s <= 0 {
			delete(scores, doc)
		}
	}
	return scores
}

// uniqueTerms drops repeated terms, keeping first occurrences in order.
func uniqueTerms(terms []string) []string {
	seen := make(map[string]struct{}, len(terms))
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
