package pricing

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned when a pricing precondition is violated.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoConvergence is returned when an iterative solver gives up.
	ErrNoConvergence = errors.New("no convergence")
)

// InputError names the offending field. It matches ErrInvalidInput under errors.Is.
type InputError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid input: %s=%g %s", e.Field, e.Value, e.Reason)
}

// Is makes every InputError match ErrInvalidInput.
func (e *InputError) Is(target error) bool {
	return target == ErrInvalidInput
}
