package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrStructural indicates a quadtree that breaks its own invariants. It is
	// a construction bug and aborts the step.
	ErrStructural = errors.New("dynamo: quadtree invariant violated")

	// ErrInvalidBody indicates a body with non-finite state or non-positive mass.
	ErrInvalidBody = errors.New("dynamo: invalid body")

	// ErrInvalidState indicates the simulation produced NaN or Inf.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrInvalidConfig indicates a configuration value outside its valid range.
	ErrInvalidConfig = errors.New("dynamo: invalid configuration")
)

// StepError wraps an error with the step it aborted.
type StepError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.4g): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
