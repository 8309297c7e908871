// Package apperr defines the error taxonomy shared across the engine.
package apperr

import (
	"errors"
	"fmt"
)

// ErrNotFound signals that a requested document does not exist. Callers
// treat this as an expected condition, not a failure.
var ErrNotFound = errors.New("not found")

// ParseError reports a single content file rejected during load. The rest
// of the corpus is unaffected.
type ParseError struct {
	Path   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %s", e.Path, e.Reason)
}

// LoadError reports a reload attempt that failed wholesale, typically an
// unreadable content root.
type LoadError struct {
	Root string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Root, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
