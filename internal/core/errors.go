package core

import (
	"errors"
	"fmt"
)

// Error kinds returned by the engine. Callers match them with errors.Is.
var (
	// ErrParse marks malformed input files. Ingestion stores nothing on this path.
	ErrParse = errors.New("parse error")

	// ErrNotFound is returned when a layer id does not resolve in the store.
	ErrNotFound = errors.New("layer not found")

	// ErrIndexOutOfRange is returned for sort column or feature indexes outside the table.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrInvalidArgument is returned for malformed request arguments such as a sort direction.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrSort signals a numeric column holding a value that does not parse at sort time.
	// This is an invariant breach in ingestion, not a user error.
	ErrSort = errors.New("sort invariant violated")

	// ErrFileTooLarge is returned when an import exceeds the configured size limit.
	ErrFileTooLarge = errors.New("file too large")
)

// ParseError describes why an input file was rejected.
// Line is 1-indexed; zero means the error is not tied to a line.
type ParseError struct {
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse error: line %d: %s", e.Line, e.Reason)
	}
	return "parse error: " + e.Reason
}

// Unwrap lets errors.Is(err, ErrParse) match.
func (e *ParseError) Unwrap() error {
	return ErrParse
}

func parseErrorf(line int, format string, args ...any) *ParseError {
	return &ParseError{Line: line, Reason: fmt.Sprintf(format, args...)}
}

// SortError reports a value in a numeric column that could not be compared numerically.
type SortError struct {
	LayerID string
	Column  string
	Value   string
	Err     error
}

func (e *SortError) Error() string {
	return fmt.Sprintf("sort invariant violated: layer %s column %q value %q is not an unsigned integer: %v",
		e.LayerID, e.Column, e.Value, e.Err)
}

// Is lets errors.Is(err, ErrSort) match.
func (e *SortError) Is(target error) bool {
	return target == ErrSort
}

func (e *SortError) Unwrap() error {
	return e.Err
}

func notFound(id string) error {
	return fmt.Errorf("%w: %q", ErrNotFound, id)
}

func indexOutOfRange(what string, index, length int) error {
	return fmt.Errorf("%w: %s %d not in [0, %d)", ErrIndexOutOfRange, what, index, length)
}

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
