package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// Entity-specific errors wrap it so callers can match on the category.
	ErrValidation = errors.New("validation failed")
)

var (
	// ErrInvalidEmail is returned when an email address is malformed.
	ErrInvalidEmail = NewValidationError("email", "invalid email format")

	// ErrInvalidDateRange is returned when an end date precedes its start date.
	ErrInvalidDateRange = NewValidationError("end_date", "must not be before start date")
)

// ValidationError describes a single invalid field.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Unwrap returns ErrValidation so errors.Is(err, ErrValidation) matches.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// IsValidationError reports whether err is any kind of domain validation failure.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}
