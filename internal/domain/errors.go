package domain

import (
	"errors"
	"fmt"
)

// ErrUnreachable marks a leg for which no route exists between two points.
// Providers wrap it; the engine treats it as infinite cost, never as fatal.
var ErrUnreachable = errors.New("no route between points")

// ValidationError rejects malformed Task/Driver input before any assignment
// work starts. It is the only error surfaced as a hard failure to the caller.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Reason)
}

// RouteBuildError reports that materializing geometry for an otherwise
// feasible sequence failed. The engine recovers with one bounded retry
// excluding the offending task.
type RouteBuildError struct {
	DriverID string
	TaskID   string
	Err      error
}

func (e *RouteBuildError) Error() string {
	return fmt.Sprintf("build route for driver %s: leg for task %s: %v", e.DriverID, e.TaskID, e.Err)
}

func (e *RouteBuildError) Unwrap() error { return e.Err }
