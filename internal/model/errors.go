package model

import (
	"errors"
	"fmt"
)

// Error categories. Concrete errors below match these with errors.Is.
var (
	// ErrValidation marks rejected user input. Recoverable: re-prompt.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks a reference to a stale id.
	ErrNotFound = errors.New("not found")
	// ErrInvalidState marks a state-machine precondition violation, i.e. a caller bug.
	ErrInvalidState = errors.New("invalid state")
)

// ValidationError describes invalid input for a single field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// Is matches ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NotFoundError reports a missing player, team or entrant.
type NotFoundError struct {
	Kind string
	ID   ID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// Is matches ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// InvalidStateError reports an operation attempted in the wrong state.
type InvalidStateError struct {
	Op    string
	State string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s not allowed in state %s", e.Op, e.State)
}

// Is matches ErrInvalidState.
func (e *InvalidStateError) Is(target error) bool {
	return target == ErrInvalidState
}
