package form

import (
	"errors"
	"fmt"
)

var (
	// ErrNilRender is returned by Render when no render function is given.
	ErrNilRender = errors.New("render function must not be nil")

	// ErrNilSubmit is returned by Submit when no submit function is given.
	ErrNilSubmit = errors.New("submit function must not be nil")

	// ErrInvalid is returned by HandleSubmit when the form has errors.
	ErrInvalid = errors.New("form has validation errors")

	ErrCheckpointNotFound = errors.New("checkpoint not found")
	ErrNoCheckpointStore  = errors.New("no checkpoint store configured")
)

// SubmissionError is the error a submit function returns to reject a
// submission with field-level detail. Errors is keyed by field path; a value
// under FormErrorKey becomes the form error.
//
//	return form.NewSubmissionError(map[string]any{
//	    form.FormErrorKey: "signup failed",
//	    "email":           "already registered",
//	})
type SubmissionError struct {
	Errors map[string]any
}

func NewSubmissionError(errs map[string]any) *SubmissionError {
	return &SubmissionError{Errors: errs}
}

func (e *SubmissionError) Error() string {
	if msg, ok := e.Errors[FormErrorKey]; ok && msg != nil {
		return fmt.Sprintf("submission failed: %v", msg)
	}
	return fmt.Sprintf("submission failed: %d field error(s)", len(e.Errors))
}
