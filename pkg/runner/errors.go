package runner

import (
	"errors"
	"fmt"
)

// Failure kinds. Every step error wraps exactly one of these.
var (
	// ErrNavigation covers unreachable pages and load conditions that never resolved
	ErrNavigation = errors.New("navigation failed")

	// ErrElement covers required elements that were missing or could not be used
	ErrElement = errors.New("element interaction failed")

	// ErrAssertion covers URL and content expectations that did not hold
	ErrAssertion = errors.New("assertion failed")

	// ErrCapture covers screenshots that could not be written
	ErrCapture = errors.New("capture failed")

	// ErrAborted marks a run stopped by cancellation or the run deadline
	ErrAborted = errors.New("run aborted")
)

// StepError records the first failing step of a run.
type StepError struct {
	// Index is the 1-based position of the step in the scenario
	Index int

	// Step describes the failing step
	Step string

	Err error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Index, e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// kindError tags err with a failure kind while keeping the original chain.
func kindError(kind, err error) error {
	return fmt.Errorf("%w: %w", kind, err)
}
