package search

import (
	"errors"
	"reflect"
	"testing"

	"github.com/khanglvm/tool-hub-search/internal/catalog"
)

func TestCompilePatternInvalid(t *testing.T) {
	_, err := CompilePattern("github(")
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, ErrInvalidPattern) {
		t.Errorf("expected ErrInvalidPattern, got %v", err)
	}
	var ipe *InvalidPatternError
	if !errors.As(err, &ipe) || ipe.Pattern != "github(" {
		t.Errorf("expected InvalidPatternError for pattern, got %#v", err)
	}
}

func TestPatternMatch(t *testing.T) {
	tool := catalog.ToolRecord{
		Name:        "github_create_issue",
		Server:      "vcs",
		Description: "Create an issue on a repository",
		Source:      catalog.SourceMCP,
	}

	tests := []struct {
		pattern string
		want    PatternMatch
	}{
		{"github_.*_issue", PatternMatch{Matched: true, Fields: []string{FieldName}}},
		{"GITHUB", PatternMatch{Matched: true, Fields: []string{FieldName}}},
		{"issue", PatternMatch{Matched: true, Fields: []string{FieldName}}},
		{"repository", PatternMatch{Matched: true, Fields: []string{FieldDescription}}},
		{"^Create an", PatternMatch{Matched: true, Fields: []string{FieldDescription}}},
		{"vcs", PatternMatch{}},
		{"gitlab", PatternMatch{}},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			p, err := CompilePattern(tt.pattern)
			if err != nil {
				t.Fatalf("compile: %v", err)
			}
			if got := p.Match(tool); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Match = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPatternEmptyDescription(t *testing.T) {
	p, err := CompilePattern("^$")
	if err != nil {
		t.Fatal(err)
	}
	m := p.Match(catalog.ToolRecord{Name: "x", Server: "s", Source: catalog.SourceBuiltin})
	if !m.Matched || m.Fields[0] != FieldDescription {
		t.Errorf("expected description match on empty description, got %+v", m)
	}
}
