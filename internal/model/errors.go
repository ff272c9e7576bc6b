package model

import (
	"errors"
	"fmt"
)

// Sentinel errors matched by the typed errors below.
var (
	// ErrRange indicates a position outside the valid bounds of a node.
	ErrRange = errors.New("position out of range")

	// ErrReplace indicates a replace that cannot be performed.
	ErrReplace = errors.New("invalid replace")

	// ErrContentMatch indicates children that do not satisfy a content expression.
	ErrContentMatch = errors.New("invalid content")

	// ErrSchemaValidation indicates malformed schema or document input.
	ErrSchemaValidation = errors.New("schema validation failed")
)

// RangeError reports a position argument outside valid bounds.
type RangeError struct {
	Pos  int
	Size int
	Msg  string
}

func (e *RangeError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("position %d: %s", e.Pos, e.Msg)
	}
	return fmt.Sprintf("position %d out of range [0, %d]", e.Pos, e.Size)
}

// Is reports whether target is ErrRange.
func (e *RangeError) Is(target error) bool {
	return target == ErrRange
}

// ReplaceError reports a replace that could not be performed.
type ReplaceError struct {
	Msg string
	Err error
}

func newReplaceError(format string, args ...any) *ReplaceError {
	return &ReplaceError{Msg: fmt.Sprintf(format, args...)}
}

func (e *ReplaceError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

// Unwrap returns the underlying cause, if any.
func (e *ReplaceError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrReplace.
func (e *ReplaceError) Is(target error) bool {
	return target == ErrReplace
}

// ContentMatchError reports content that does not satisfy a node type.
type ContentMatchError struct {
	Type string
	Msg  string
}

func (e *ContentMatchError) Error() string {
	return fmt.Sprintf("invalid content for node %s: %s", e.Type, e.Msg)
}

// Is reports whether target is ErrContentMatch.
func (e *ContentMatchError) Is(target error) bool {
	return target == ErrContentMatch
}

// SchemaValidationError reports malformed schema or document input.
// Path locates the offending value, e.g. "$.content[1].marks[0]".
type SchemaValidationError struct {
	Path string
	Msg  string
	Err  error
}

func (e *SchemaValidationError) Error() string {
	msg := e.Msg
	if e.Path != "" {
		msg = e.Path + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause, if any.
func (e *SchemaValidationError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrSchemaValidation.
func (e *SchemaValidationError) Is(target error) bool {
	return target == ErrSchemaValidation
}
