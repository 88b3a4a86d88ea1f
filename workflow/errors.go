package workflow

import (
	"errors"
	"fmt"
)

var (
	// ErrNoRouteMatched indicates no route condition was satisfied and the
	// router has no default route.
	ErrNoRouteMatched = errors.New("workflow: no route matched")

	// ErrMaxIterationsExceeded indicates a loop terminated without its exit
	// condition becoming true.
	ErrMaxIterationsExceeded = errors.New("workflow: max iterations exceeded")
)

// StepError wraps errors from step execution.
type StepError struct {
	StepName string
	Err      error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("workflow: step %q failed: %v", e.StepName, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
