package search

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPattern is matched by every *InvalidPatternError.
	ErrInvalidPattern = errors.New("invalid pattern")

	// ErrEngineNotReady is returned by queries issued before the first rebuild.
	ErrEngineNotReady = errors.New("search engine not ready: no catalog loaded")

	// ErrRebuildInProgress is returned by TryRebuild while another rebuild runs.
	ErrRebuildInProgress = errors.New("catalog rebuild already in progress")

	// ErrUnknownMode is returned for a Mode outside Modes.
	ErrUnknownMode = errors.New("unknown search mode")
)

// InvalidPatternError reports a caller-supplied regex that does not compile.
type InvalidPatternError struct {
	Pattern string
	Err     error
}

func (e *InvalidPatternError) Error() string {
	return fmt.Sprintf("invalid pattern %q: %v", e.Pattern, e.Err)
}

func (e *InvalidPatternError) Unwrap() error { return e.Err }

func (e *InvalidPatternError) Is(target error) bool { return target == ErrInvalidPattern }
