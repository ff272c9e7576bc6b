package app

import (
	"errors"
	"fmt"
)

// Application errors.
var (
	// ErrNoDocuments indicates the run was given no document files.
	ErrNoDocuments = errors.New("no documents given")

	// ErrDocumentsFailed indicates at least one document could not be
	// processed.
	ErrDocumentsFailed = errors.New("documents failed")

	// ErrStepFailed indicates a step could not be applied to a document.
	ErrStepFailed = errors.New("step failed")

	// ErrOutputConflict indicates results that would overwrite each other
	// or an input file.
	ErrOutputConflict = errors.New("conflicting output paths")
)

// OperationError represents an error that occurred during a specific operation.
type OperationError struct {
	Op     string // Operation name (e.g., "read", "decode", "apply")
	Target string // Target of the operation (e.g., a document path)
	Err    error  // Underlying error
}

// NewOperationError creates a new OperationError.
func NewOperationError(op, target string, err error) *OperationError {
	return &OperationError{Op: op, Target: target, Err: err}
}

func (e *OperationError) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Op
	if e.Target != "" {
		msg = fmt.Sprintf("%s %s", e.Op, e.Target)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// StepError reports the step that failed on a document.
type StepError struct {
	Index    int
	StepType string
	Reason   string
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %s", e.Index, e.StepType, e.Reason)
}

// Is reports whether target is ErrStepFailed.
func (e *StepError) Is(target error) bool {
	return target == ErrStepFailed
}

// ErrorList collects multiple errors.
// NOTE: ErrorList is NOT safe for concurrent use.
type ErrorList struct {
	errors []error
}

// Add adds an error to the list. Nil errors are ignored.
func (e *ErrorList) Add(err error) {
	if err != nil {
		e.errors = append(e.errors, err)
	}
}

// Len returns the number of errors.
func (e *ErrorList) Len() int {
	return len(e.errors)
}

// Error returns a combined error message.
func (e *ErrorList) Error() string {
	switch len(e.errors) {
	case 0:
		return ""
	case 1:
		return e.errors[0].Error()
	}
	return fmt.Sprintf("%d errors: first: %v", len(e.errors), e.errors[0])
}

// Unwrap returns the collected errors.
func (e *ErrorList) Unwrap() []error {
	return e.errors
}

// AsError returns nil if there are no errors, otherwise returns the ErrorList.
func (e *ErrorList) AsError() error {
	if len(e.errors) == 0 {
		return nil
	}
	return e
}
