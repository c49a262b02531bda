package search

import (
	"regexp"

	"github.com/khanglvm/tool-hub-search/internal/catalog"
)

// Pattern is a compiled, case-insensitive tool pattern.
type Pattern struct {
	source string
	re     *regexp.Regexp
}

// PatternMatch is the outcome of matching one tool.
type PatternMatch struct {
	Matched bool
	Fields  []string
}

// CompilePattern compiles pattern case-insensitively. A pattern that does
// not compile yields an *InvalidPatternError; it is never retried as a
// literal string.
func CompilePattern(pattern string) (*Pattern, error) {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, &InvalidPatternError{Pattern: pattern, Err: err}
	}
	return &Pattern{source: pattern, re: re}, nil
}

func (p *Pattern) String() string { return p.source }

// Match tests the tool's name and, only when the name does not match, its
// description.
func (p *Pattern) Match(tool catalog.ToolRecord) PatternMatch {
	if p.re.MatchString(tool.Name) {
		return PatternMatch{Matched: true, Fields: []string{FieldName}}
	}
	if p.re.MatchString(tool.Description) {
		return PatternMatch{Matched: true, Fields: []string{FieldDescription}}
	}
	return PatternMatch{}
}
