package domain

import (
	"errors"
	"fmt"
)

// Common errors surfaced by services and repositories
var (
	// ErrNotFound indicates the requested entity does not exist or is not
	// visible to the requesting user.
	ErrNotFound = errors.New("resource not found")

	// ErrIncomeUnknown indicates a deduction threshold was requested but no
	// net income is on file for the tax year. Callers should prompt for the
	// missing income rather than render a figure computed against zero.
	ErrIncomeUnknown = errors.New("net income unknown for tax year")
)

// ValidationError describes a rejected input field
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// NewValidationError creates a ValidationError for a field
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
