package transform

import "errors"

// Sentinel errors returned when decoding steps.
var (
	// ErrUnknownStepType indicates a stepType with no registered decoder.
	ErrUnknownStepType = errors.New("unknown step type")

	// ErrInvalidStep indicates a step object with missing or malformed fields.
	ErrInvalidStep = errors.New("invalid step")
)
