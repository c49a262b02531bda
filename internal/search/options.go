package search

import (
	"fmt"
	"strings"

	"github.com/khanglvm/tool-hub-search/internal/catalog"
)

const (
	// DefaultLimit is the number of results returned when no limit is given.
	DefaultLimit = 5

	// MaxLimit is the hard ceiling; larger limits are clamped.
	MaxLimit = 10
)

// Mode selects the ranking strategy.
type Mode int

const (
	ModeHybrid Mode = iota
	ModeBM25
	ModeRegex
)

// Modes lists every mode in a stable order.
var Modes = []Mode{ModeHybrid, ModeBM25, ModeRegex}

func (m Mode) String() string {
	switch m {
	case ModeHybrid:
		return "hybrid"
	case ModeBM25:
		return "bm25"
	case ModeRegex:
		return "regex"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// ParseMode converts a mode name. The empty string selects hybrid.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "hybrid":
		return ModeHybrid, nil
	case "bm25":
		return ModeBM25, nil
	case "regex":
		return ModeRegex, nil
	}
	return 0, fmt.Errorf("%w: %q (want bm25, regex or hybrid)", ErrUnknownMode, s)
}

// Set implements pflag.Value.
func (m *Mode) Set(s string) error {
	parsed, err := ParseMode(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Type implements pflag.Value.
func (m *Mode) Type() string { return "mode" }

func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Mode) UnmarshalText(text []byte) error { return m.Set(string(text)) }

// SearchOptions configures one query. Build it with NewSearchOptions so
// unset fields take their defaults.
type SearchOptions struct {
	Mode     Mode
	Category string
	Source   catalog.Source
	Limit    int
}

// Option customizes SearchOptions.
type Option func(*SearchOptions)

// NewSearchOptions returns hybrid mode, no filters and DefaultLimit, with
// opts applied in order.
func NewSearchOptions(opts ...Option) SearchOptions {
	o := SearchOptions{Mode: ModeHybrid, Limit: DefaultLimit}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithMode selects the ranking mode. The default is ModeHybrid.
func WithMode(m Mode) Option { return func(o *SearchOptions) { o.Mode = m } }

// WithCategory keeps only tools whose category equals c.
func WithCategory(c string) Option { return func(o *SearchOptions) { o.Category = c } }

// WithSource keeps only tools from source s.
func WithSource(s catalog.Source) Option { return func(o *SearchOptions) { o.Source = s } }

// WithLimit sets the result limit. Values above MaxLimit are clamped and
// values <= 0 produce an empty result.
func WithLimit(n int) Option { return func(o *SearchOptions) { o.Limit = n } }

// EffectiveLimit returns the limit after clamping to [0, MaxLimit].
func (o SearchOptions) EffectiveLimit() int {
	switch {
	case o.Limit <= 0:
		return 0
	case o.Limit > MaxLimit:
		return MaxLimit
	}
	return o.Limit
}

func (o SearchOptions) accepts(r catalog.ToolRecord) bool {
	if o.Category != "" && r.Category != o.Category {
		return false
	}
	if o.Source != "" && r.Source != o.Source {
		return false
	}
	return true
}
