package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when a write would violate a uniqueness constraint.
	ErrDuplicate = errors.New("entity already exists")

	// ErrCheckViolation is returned when a write fails a check constraint,
	// such as the email format check on users.
	ErrCheckViolation = errors.New("check constraint violated")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for specific validation details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrUserNotFound indicates that the requested user does not exist in the store.
	ErrUserNotFound = fmt.Errorf("%w: user", ErrNotFound)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflictError reports whether err is a uniqueness or check conflict.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrDuplicate) || errors.Is(err, ErrCheckViolation)
}

// ConflictError is returned when the database rejects a write because of a
// constraint. Kind is ErrDuplicate or ErrCheckViolation.
type ConflictError struct {
	Kind       error
	Code       string // SQLSTATE, e.g. 23505
	Constraint string // Constraint name reported by the database
	Column     string // Column inferred from the constraint, if known
	Detail     string
}

// NewConflictError creates a ConflictError of the given kind.
func NewConflictError(kind error, code, constraint, column, detail string) *ConflictError {
	return &ConflictError{
		Kind:       kind,
		Code:       code,
		Constraint: constraint,
		Column:     column,
		Detail:     detail,
	}
}

func (e *ConflictError) Error() string {
	if e.Constraint != "" {
		return fmt.Sprintf("%v (constraint %s, code %s)", e.Kind, e.Constraint, e.Code)
	}
	return fmt.Sprintf("%v (code %s)", e.Kind, e.Code)
}

// Unwrap returns the conflict kind so errors.Is(err, ErrDuplicate) works.
func (e *ConflictError) Unwrap() error {
	return e.Kind
}
