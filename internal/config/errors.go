package config

import (
	"errors"
	"fmt"
)

// Errors returned by configuration operations.
var (
	// ErrTypeMismatch indicates the value type doesn't match the expected type.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrValidationFailed indicates a setting holds an unusable value.
	ErrValidationFailed = errors.New("validation failed")
)

// TypeError reports a setting of the wrong type.
type TypeError struct {
	Path string
	Got  string
	Want string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("%s: got %s, want %s", e.Path, e.Got, e.Want)
}

// Is reports whether target is ErrTypeMismatch.
func (e *TypeError) Is(target error) bool {
	return target == ErrTypeMismatch
}

// ValidationError reports a setting with an unusable value.
type ValidationError struct {
	Path    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Is reports whether target is ErrValidationFailed.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}
