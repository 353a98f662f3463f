package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means a referenced entity id does not resolve.
	ErrNotFound = errors.New("not found")

	// ErrConstraintViolation means a write referenced an entity it may not,
	// e.g. a region belonging to a different location than the item, or
	// deleting a location that children or items still point at.
	ErrConstraintViolation = errors.New("constraint violation")

	// ErrCycleDetected means a parent-pointer walk exceeded its bound, or a
	// write would have made a location its own ancestor.
	ErrCycleDetected = errors.New("location cycle detected")
)

// ValidationError reports a malformed or missing field. Its message is safe
// to show to the caller.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
