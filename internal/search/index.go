package search

import (
	"sort"

	"github.com/khanglvm/tool-hub-search/internal/catalog"
)

// nameRepeat is how many times a tool's name appears in its composite text.
// Repeating the name biases term frequency toward name matches.
const nameRepeat = 2

// posting is one (document, term frequency) pair of a term's posting list.
type posting struct {
	doc int
	tf  int
}

// document is the indexed form of one tool.
type document struct {
	tool   catalog.ToolRecord
	tf     map[string]int
	length int

	// fields holds the term set of each searchable field, in fieldOrder.
	fields [len(fieldOrder)]map[string]struct{}
}

// Index is an immutable inverted index over one catalog snapshot. All
// methods are safe for concurrent use.
type Index struct {
	version   string
	tokenizer *Tokenizer

	docs         []document
	byKey        map[string]int
	postings     map[string][]posting
	docFreq      map[string]int
	avgDocLength float64

	// vocabulary is every indexed term, sorted.
	vocabulary []string

	// surfaces maps each word as written in the catalog to its indexed
	// term; words holds its keys, sorted. They differ from vocabulary only
	// when stemming is on.
	surfaces map[string]string
	words    []string

	byCategory map[string][]int
	byServer   map[string][]int
}

// BuildIndex tokenizes every tool of c and returns a new index. It never
// touches any other index. A nil tokenizer selects the default one.
func BuildIndex(c *catalog.ToolCatalog, tok *Tokenizer) *Index {
	if tok == nil {
		tok = defaultTokenizer
	}
	if c == nil {
		c = catalog.Empty()
	}

	tools := c.Tools()
	idx := &Index{
		version:    c.Version(),
		tokenizer:  tok,
		docs:       make([]document, len(tools)),
		byKey:      make(map[string]int, len(tools)),
		postings:   make(map[string][]posting),
		docFreq:    make(map[string]int),
		byCategory: make(map[string][]int),
		byServer:   make(map[string][]int),
		surfaces:   make(map[string]string),
	}

	totalLength := 0
	for i, tool := range tools {
		doc := buildDocument(tool, tok)
		idx.docs[i] = doc
		idx.byKey[tool.Key()] = i
		idx.byCategory[tool.Category] = append(idx.byCategory[tool.Category], i)
		idx.byServer[tool.Server] = append(idx.byServer[tool.Server], i)
		totalLength += doc.length

		for _, text := range [...]string{tool.Name, tool.Description, tool.Category, tool.Server} {
			for _, word := range Split(text) {
				if term, ok := tok.normalize(word); ok {
					idx.surfaces[word] = term
				}
			}
		}

		for term, tf := range doc.tf {
			idx.postings[term] = append(idx.postings[term], posting{doc: i, tf: tf})
			idx.docFreq[term]++
		}
	}

	if len(tools) > 0 {
		idx.avgDocLength = float64(totalLength) / float64(len(tools))
	}

	idx.vocabulary = make([]string, 0, len(idx.docFreq))
	for term := range idx.docFreq {
		idx.vocabulary = append(idx.vocabulary, term)
	}
	sort.Strings(idx.vocabulary)

	idx.words = make([]string, 0, len(idx.surfaces))
	for word := range idx.surfaces {
		idx.words = append(idx.words, word)
	}
	sort.Strings(idx.words)

	return idx
}

func buildDocument(tool catalog.ToolRecord, tok *Tokenizer) document {
	doc := document{tool: tool, tf: make(map[string]int)}

	texts := [len(fieldOrder)]string{tool.Name, tool.Description, tool.Category, tool.Server}
	for f, text := range texts {
		terms := tok.Tokenize(text)
		set := make(map[string]struct{}, len(terms))
		for _, term := range terms {
			set[term] = struct{}{}
		}
		doc.fields[f] = set

		repeat := 1
		if fieldOrder[f] == FieldName {
			repeat = nameRepeat
		}
		for r := 0; r < repeat; r++ {
			for _, term := range terms {
				doc.tf[term]++
				doc.length++
			}
		}
	}

	return doc
}

// Version returns the catalog version the index was built from.
func (idx *Index) Version() string { return idx.version }

// TotalDocs returns the number of indexed tools.
func (idx *Index) TotalDocs() int { return len(idx.docs) }

// AvgDocLength returns the mean composite-text length in terms.
func (idx *Index) AvgDocLength() float64 { return idx.avgDocLength }

// Terms returns the vocabulary size.
func (idx *Index) Terms() int { return len(idx.vocabulary) }

// DocumentFrequency returns the number of tools containing term.
func (idx *Index) DocumentFrequency(term string) int { return idx.docFreq[term] }

// Tool looks a tool up by its "server/name" key.
func (idx *Index) Tool(key string) (catalog.ToolRecord, bool) {
	i, ok := idx.byKey[key]
	if !ok {
		return catalog.ToolRecord{}, false
	}
	return idx.docs[i].tool, true
}

// DocLength returns the composite-text length of a tool, or 0 if unknown.
func (idx *Index) DocLength(key string) int {
	i, ok := idx.byKey[key]
	if !ok {
		return 0
	}
	return idx.docs[i].length
}

// TermFrequency returns how often term occurs in a tool's composite text.
func (idx *Index) TermFrequency(term, key string) int {
	i, ok := idx.byKey[key]
	if !ok {
		return 0
	}
	return idx.docs[i].tf[term]
}

// Tokenize tokenizes text with the tokenizer the index was built with.
func (idx *Index) Tokenize(text string) []string {
	return idx.tokenizer.Tokenize(text)
}

// matchedTermFields returns, in canonical order, the fields of doc that
// contain at least one of terms.
func (idx *Index) matchedTermFields(doc int, terms []string) []string {
	d := &idx.docs[doc]
	var fields []string
	for f, set := range d.fields {
		for _, term := range terms {
			if _, ok := set[term]; ok {
				fields = append(fields, fieldOrder[f])
				break
			}
		}
	}
	return fields
}
