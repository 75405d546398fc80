package domain

import (
	"errors"
	"strings"
)

var (
	ErrNotFound           = errors.New("resource not found")
	ErrAlreadyExists      = errors.New("resource already exists")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidSession     = errors.New("invalid session")
)

// ValidationError carries per-field messages for a rejected payload.
// It matches ErrInvalidInput with errors.Is.
type ValidationError struct {
	Details []string
}

func NewValidationError(details ...string) *ValidationError {
	return &ValidationError{Details: details}
}

func (e *ValidationError) Error() string {
	if len(e.Details) == 0 {
		return ErrInvalidInput.Error()
	}
	return ErrInvalidInput.Error() + ": " + strings.Join(e.Details, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}
