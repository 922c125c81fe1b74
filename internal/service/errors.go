package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/studytrack-api/internal/domain"
)

// Service errors. Expected conditions are returned as these sentinels (or
// the store and domain sentinels they sit next to) so the API layer can map
// them with errors.Is. Unexpected failures are wrapped in a ServiceError.
var (
	// ErrRelationshipInvalid indicates the referenced category, subject and
	// topic do not form an owned chain.
	ErrRelationshipInvalid = errors.New("invalid relationship between category, subject and topic")

	// ErrInvalidTransition re-exports the session state machine error.
	ErrInvalidTransition = domain.ErrInvalidTransition

	// ErrInUse indicates a delete was refused because other rows still
	// reference the entity.
	ErrInUse = errors.New("resource is still referenced")
)

// ServiceError wraps an unexpected failure with the operation that hit it.
type ServiceError struct {
	Service   string
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s service %s failed: %s: %v", e.Service, e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s service %s failed: %s", e.Service, e.Operation, e.Message)
}

// Unwrap supports errors.Is and errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a ServiceError.
func NewServiceError(service, operation, message string, err error) *ServiceError {
	return &ServiceError{Service: service, Operation: operation, Message: message, Err: err}
}

// relationshipError reports which link of the chain failed.
func relationshipError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrRelationshipInvalid, fmt.Sprintf(format, args...))
}
