package search

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/surgebase/porter2"
)

// englishStopWords is bleve's Snowball English stop list.
var englishStopWords = loadStopWords()

func loadStopWords() analysis.TokenMap {
	words := analysis.NewTokenMap()
	if err := words.LoadBytes(en.EnglishStopWords); err != nil {
		panic(fmt.Sprintf("search: loading english stop words: %v", err))
	}
	return words
}

// Tokenizer turns free text into normalized terms. A Tokenizer holds only
// configuration and is safe for concurrent use.
type Tokenizer struct {
	stopWords bool
	stemming  bool
}

// TokenizerOption configures a Tokenizer.
type TokenizerOption func(*Tokenizer)

// WithStopWords toggles English stop-word removal (on by default).
func WithStopWords(enabled bool) TokenizerOption {
	return func(t *Tokenizer) { t.stopWords = enabled }
}

// WithStemming toggles porter2 stemming (off by default).
func WithStemming(enabled bool) TokenizerOption {
	return func(t *Tokenizer) { t.stemming = enabled }
}

// NewTokenizer returns a tokenizer with stop-word removal on and stemming off.
func NewTokenizer(opts ...TokenizerOption) *Tokenizer {
	t := &Tokenizer{stopWords: true}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

var defaultTokenizer = NewTokenizer()

// Tokenize runs the default tokenizer.
func Tokenize(text string) []string {
	return defaultTokenizer.Tokenize(text)
}

// Tokenize lower-cases text, splits it on runs of non-alphanumeric runes and
// drops stop words. Empty input yields an empty slice.
func (t *Tokenizer) Tokenize(text string) []string {
	tokens := Split(text)
	out := tokens[:0]
	for _, tok := range tokens {
		if term, ok := t.normalize(tok); ok {
			out = append(out, term)
		}
	}
	return out
}

// normalize maps one split token to its indexed term. It reports false for
// stop words.
func (t *Tokenizer) normalize(tok string) (string, bool) {
	if t.stopWords && englishStopWords[tok] {
		return "", false
	}
	if t.stemming {
		return porter2.Stem(tok), true
	}
	return tok, true
}

// Split lower-cases text and splits it on runs of non-letter, non-digit
// runes without any filtering.
func Split(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if fields == nil {
		return []string{}
	}
	return fields
}

// prefixToken returns the token a partial query completes: the last split
// token, or "" when there is none.
func prefixToken(partial string) string {
	tokens := Split(partial)
	if len(tokens) == 0 {
		return ""
	}
	return tokens[len(tokens)-1]
}
