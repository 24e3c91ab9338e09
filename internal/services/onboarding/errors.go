package onboarding

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrSubmissionInFlight = errors.New("onboarding: submission already in progress")
	ErrNotFinalStep       = errors.New("onboarding: submission is only allowed on the final step")
	ErrCompleted          = errors.New("onboarding: wizard already completed")
	ErrUnknownField       = errors.New("onboarding: unknown field")
	ErrInvalidValue       = errors.New("onboarding: invalid field value")
)

// ValidationError is returned when a gate refuses the draft.
type ValidationError struct {
	Step   Step
	Errors FieldErrors
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Errors))
	for f := range e.Errors {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fmt.Sprintf("onboarding: step %s invalid: %s", e.Step, strings.Join(fields, ", "))
}

// FieldError names the field of a batch that could not be applied.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string { return e.Err.Error() }

func (e *FieldError) Unwrap() error { return e.Err }

// SubmissionError wraps a gateway failure. The draft is kept so the candidate
// can retry by submitting again.
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string {
	return "onboarding: submission failed: " + e.Err.Error()
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// Detail is the gateway's own error text, shown in the page banner.
func (e *SubmissionError) Detail() string {
	return e.Err.Error()
}
