package models

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks a missing or malformed required field.
	ErrValidation = errors.New("validation failed")
	// ErrDuplicateUsername is returned when the username uniqueness invariant would be violated.
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrNotFound is returned when a record does not exist or its id cannot be parsed.
	ErrNotFound = errors.New("record not found")
	// ErrAuthInvalid covers a missing, malformed or wrongly signed token.
	ErrAuthInvalid = errors.New("invalid or missing token")
	// ErrForbidden is returned when the caller does not own the task.
	ErrForbidden = errors.New("caller does not own the task")
	// ErrBadCredentials is returned on an unknown username or a wrong password.
	ErrBadCredentials = errors.New("bad credentials")
	// ErrStoreUnavailable wraps persistence-layer failures.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// ValidationError names the offending field
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Invalid builds a ValidationError for field
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
