package search

import (
	"sort"
	"strings"

	"github.com/khanglvm/tool-hub-search/internal/catalog"
)

// ByCategory returns the tools in category, in catalog order. An unknown
// category yields an empty slice.
func (idx *Index) ByCategory(category string) []catalog.ToolRecord {
	return idx.collect(idx.byCategory[category])
}

// ByServer returns the tools from server, in catalog order.
func (idx *Index) ByServer(server string) []catalog.ToolRecord {
	return idx.collect(idx.byServer[server])
}

// AlwaysLoaded returns the tools that are not deferred, in catalog order.
func (idx *Index) AlwaysLoaded() []catalog.ToolRecord {
	out := []catalog.ToolRecord{}
	for _, d := range idx.docs {
		if !d.tool.DeferLoading {
			out = append(out, d.tool)
		}
	}
	return out
}

// Categories returns the distinct categories, sorted.
func (idx *Index) Categories() []string { return sortedKeys(idx.byCategory) }

// Servers returns the distinct servers, sorted.
func (idx *Index) Servers() []string { return sortedKeys(idx.byServer) }

func (idx *Index) collect(docs []int) []catalog.ToolRecord {
	out := make([]catalog.ToolRecord, 0, len(docs))
	for _, i := range docs {
		out = append(out, idx.docs[i].tool)
	}
	return out
}

func sortedKeys(m map[string][]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// suggestion is a candidate completion with its ranking weight.
type suggestion struct {
	text   string
	weight int
}

// Suggest completes the last token of partial. Candidates are catalog words
// starting with that token (weighted by the document frequency of their
// indexed term) and tool names with a name token starting with it (weighted
// by the highest document frequency among those tokens). Words are offered
// as written, never as stems. Results are ordered by weight
// descending, then text ascending, and truncated to limit.
func (idx *Index) Suggest(partial string, limit int) []string {
	prefix := prefixToken(partial)
	if prefix == "" || limit <= 0 {
		return []string{}
	}

	weights := make(map[string]int)

	// words is sorted, so matching words form one contiguous run.
	start := sort.SearchStrings(idx.words, prefix)
	for _, word := range idx.words[start:] {
		if !strings.HasPrefix(word, prefix) {
			break
		}
		weights[word] = idx.wordFreq(word)
	}

	for _, d := range idx.docs {
		best := -1
		for _, tok := range Split(d.tool.Name) {
			if !strings.HasPrefix(tok, prefix) {
				continue
			}
			if df := idx.wordFreq(tok); df > best {
				best = df
			}
		}
		if best < 0 {
			continue
		}
		if w, ok := weights[d.tool.Name]; !ok || best > w {
			weights[d.tool.Name] = best
		}
	}

	ranked := make([]suggestion, 0, len(weights))
	for text, w := range weights {
		ranked = append(ranked, suggestion{text: text, weight: w})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].weight != ranked[j].weight {
			return ranked[i].weight > ranked[j].weight
		}
		return ranked[i].text < ranked[j].text
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	out := make([]string, len(ranked))
	for i, s := range ranked {
		out[i] = s.text
	}
	return out
}

// wordFreq is the document frequency of the term word is indexed under, or 0
// for a stop word.
func (idx *Index) wordFreq(word string) int {
	term, ok := idx.surfaces[word]
	if !ok {
		return 0
	}
	return idx.docFreq[term]
}

// Stats aggregates the index in a single pass over its documents.
func (idx *Index) Stats() CatalogStats {
	stats := CatalogStats{
		TotalTools:   len(idx.docs),
		BySource:     make(map[catalog.Source]int),
		ByCategory:   make(map[string]int),
		Version:      idx.version,
		Terms:        len(idx.vocabulary),
		AvgDocLength: idx.avgDocLength,
	}
	for _, d := range idx.docs {
		stats.BySource[d.tool.Source]++
		stats.ByCategory[d.tool.Category]++
		if d.tool.DeferLoading {
			stats.DeferredCount++
		} else {
			stats.AlwaysLoadedCount++
		}
	}
	return stats
}
