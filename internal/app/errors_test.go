package app

import (
	"errors"
	"io/fs"
	"testing"
)

func TestOperationError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *OperationError
		expected string
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: "",
		},
		{
			name:     "op only",
			err:      &OperationError{Op: "decode"},
			expected: "decode",
		},
		{
			name:     "op and target",
			err:      &OperationError{Op: "read", Target: "docs/a.json"},
			expected: "read docs/a.json",
		},
		{
			name:     "full error chain",
			err:      &OperationError{Op: "read", Target: "docs/a.json", Err: errors.New("io error")},
			expected: "read docs/a.json: io error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.err.Error()
			if result != tt.expected {
				t.Errorf("Error() = '%s', expected '%s'", result, tt.expected)
			}
		})
	}
}

func TestOperationError_Unwrap(t *testing.T) {
	err := NewOperationError("read", "a.json", fs.ErrNotExist)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Error("expected errors.Is to find the wrapped error")
	}

	var nilErr *OperationError
	if nilErr.Unwrap() != nil {
		t.Error("nil OperationError should unwrap to nil")
	}
}

func TestStepError(t *testing.T) {
	err := NewOperationError("apply", "a.json", &StepError{Index: 2, StepType: "replace", Reason: "invalid content"})
	if !errors.Is(err, ErrStepFailed) {
		t.Error("expected errors.Is(err, ErrStepFailed)")
	}
	want := "apply a.json: step 2 (replace): invalid content"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	var stepErr *StepError
	if !errors.As(err, &stepErr) || stepErr.Index != 2 {
		t.Errorf("errors.As gave %+v", stepErr)
	}
}

func TestErrorList(t *testing.T) {
	var list ErrorList
	if list.AsError() != nil {
		t.Error("empty list should be nil error")
	}

	list.Add(nil)
	list.Add(&StepError{Index: 0, StepType: "addMark", Reason: "bad"})
	if list.Len() != 1 {
		t.Errorf("Len() = %d, want 1", list.Len())
	}
	if list.Error() != "step 0 (addMark): bad" {
		t.Errorf("Error() = %q", list.Error())
	}

	list.Add(fs.ErrNotExist)
	if list.Error() != "2 errors: first: step 0 (addMark): bad" {
		t.Errorf("Error() = %q", list.Error())
	}
	err := list.AsError()
	if !errors.Is(err, ErrStepFailed) || !errors.Is(err, fs.ErrNotExist) {
		t.Error("errors.Is should see every collected error")
	}
}
