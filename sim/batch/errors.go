package batch

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrRunExecution matches every RunError: a single run failed and was skipped.
	ErrRunExecution = errors.New("run execution failed")
	// ErrAllRunsFailed is returned when no run of a batch completed.
	ErrAllRunsFailed = errors.New("all simulation runs failed")
)

// RunError records why one run of a batch was skipped.
// errors.Is(err, ErrRunExecution) holds for every RunError, and the
// underlying cause (for example scenario.ErrInvalidParameter) stays reachable.
type RunError struct {
	RunIndex int
	Attempts int
	Err      error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("run %d failed after %d attempt(s): %v", e.RunIndex, e.Attempts, e.Err)
}

func (e *RunError) Unwrap() error { return e.Err }

// Is reports ErrRunExecution as a match.
func (e *RunError) Is(target error) bool { return target == ErrRunExecution }

// BatchError is returned when every run failed. It matches ErrAllRunsFailed.
type BatchError struct {
	Failures []*RunError
}

func (e *BatchError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%v (%d runs)", ErrAllRunsFailed, len(e.Failures))
	if len(e.Failures) > 0 {
		fmt.Fprintf(&sb, ": first: %v", e.Failures[0])
	}
	return sb.String()
}

// Is reports ErrAllRunsFailed as a match.
func (e *BatchError) Is(target error) bool { return target == ErrAllRunsFailed }

// Unwrap exposes every run failure to errors.Is and errors.As.
func (e *BatchError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f
	}
	return errs
}
