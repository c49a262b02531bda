/*
Package catalog defines the tool catalog consumed by the search engine.

A ToolCatalog is an ordered, immutable snapshot of ToolRecords plus a
version marker. Catalogs are built once (from a file, a directory of files,
or in memory) and replaced wholesale; there are no partial updates.
*/
package catalog

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Source identifies where a tool comes from.
type Source string

const (
	SourceMCP       Source = "mcp"
	SourceRustCrate Source = "rust_crate"
	SourceSubagent  Source = "subagent"
	SourceBuiltin   Source = "builtin"
)

// Sources lists every valid Source in a stable order.
var Sources = []Source{SourceMCP, SourceRustCrate, SourceSubagent, SourceBuiltin}

var (
	ErrInvalidTool   = errors.New("invalid tool")
	ErrDuplicateTool = errors.New("duplicate tool")
	ErrInvalidSource = errors.New("invalid source")
)

// ParseSource converts a string to a Source, rejecting unknown values.
func ParseSource(s string) (Source, error) {
	src := Source(s)
	if !src.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidSource, s)
	}
	return src, nil
}

// Valid reports whether s is one of the known sources.
func (s Source) Valid() bool {
	switch s {
	case SourceMCP, SourceRustCrate, SourceSubagent, SourceBuiltin:
		return true
	}
	return false
}

func (s Source) String() string { return string(s) }

// ToolRecord is one entry in the catalog.
type ToolRecord struct {
	// Name identifies the tool within its server.
	Name string `json:"name" yaml:"name"`

	// Server is the originating component name.
	Server string `json:"server" yaml:"server"`

	// Description is free text explaining the tool. May be empty.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Category is a label from an open set (e.g. "development").
	Category string `json:"category,omitempty" yaml:"category,omitempty"`

	// Source is the kind of component exposing the tool.
	Source Source `json:"source" yaml:"source"`

	// DeferLoading is true when the tool is loaded on demand.
	DeferLoading bool `json:"deferLoading" yaml:"deferLoading"`
}

// Key returns the "server/name" identity of the record.
func (r ToolRecord) Key() string {
	return r.Server + "/" + r.Name
}

// Validate checks the record's own fields.
func (r ToolRecord) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("%w: empty name (server %q)", ErrInvalidTool, r.Server)
	}
	if !r.Source.Valid() {
		return fmt.Errorf("%w: tool %s: %w %q", ErrInvalidTool, r.Key(), ErrInvalidSource, r.Source)
	}
	return nil
}

// ToolCatalog is an immutable, ordered collection of tools.
type ToolCatalog struct {
	version string
	tools   []ToolRecord
}

// New validates records and returns a catalog holding its own copy of them.
// An empty version is replaced by the records' fingerprint.
func New(version string, records []ToolRecord) (*ToolCatalog, error) {
	seen := make(map[string]int, len(records))
	tools := make([]ToolRecord, len(records))
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if prev, dup := seen[r.Key()]; dup {
			return nil, fmt.Errorf("%w: %s (records %d and %d)", ErrDuplicateTool, r.Key(), prev, i)
		}
		seen[r.Key()] = i
		tools[i] = r
	}

	if version == "" {
		version = Fingerprint(tools)
	}

	return &ToolCatalog{version: version, tools: tools}, nil
}

// Empty returns a valid catalog with no tools.
func Empty() *ToolCatalog {
	return &ToolCatalog{version: Fingerprint(nil)}
}

// Version returns the build/version marker.
func (c *ToolCatalog) Version() string { return c.version }

// Len returns the number of tools.
func (c *ToolCatalog) Len() int { return len(c.tools) }

// Tools returns a copy of the records in catalog order.
func (c *ToolCatalog) Tools() []ToolRecord {
	out := make([]ToolRecord, len(c.tools))
	copy(out, c.tools)
	return out
}

// Fingerprint hashes the records in order with xxhash64. Equal record
// sequences always produce equal fingerprints.
func Fingerprint(records []ToolRecord) string {
	d := xxhash.New()
	for _, r := range records {
		d.WriteString(r.Server)
		d.WriteString("\x00")
		d.WriteString(r.Name)
		d.WriteString("\x00")
		d.WriteString(r.Description)
		d.WriteString("\x00")
		d.WriteString(r.Category)
		d.WriteString("\x00")
		d.WriteString(string(r.Source))
		if r.DeferLoading {
			d.WriteString("\x01")
		} else {
			d.WriteString("\x02")
		}
	}
	return "xxh64:" + strconv.FormatUint(d.Sum64(), 16)
}
