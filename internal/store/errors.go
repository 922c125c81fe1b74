package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist or is
	// owned by a different user.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would violate a uniqueness
	// constraint.
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when the database rejects a row because
	// of a check or not-null constraint.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrForeignKey is returned when a referenced row is missing, or when a
	// delete is blocked by rows that still reference the target.
	ErrForeignKey = errors.New("foreign key violation")

	// ErrTransactionFailed is returned when a transaction cannot begin or commit.
	ErrTransactionFailed = errors.New("transaction failed")
)

// Entity-specific "not found" errors.
var (
	ErrUserNotFound     = fmt.Errorf("%w: user", ErrNotFound)
	ErrCategoryNotFound = fmt.Errorf("%w: category", ErrNotFound)
	ErrSubjectNotFound  = fmt.Errorf("%w: subject", ErrNotFound)
	ErrTopicNotFound    = fmt.Errorf("%w: topic", ErrNotFound)
	ErrSessionNotFound  = fmt.Errorf("%w: study session", ErrNotFound)
	ErrPauseNotFound    = fmt.Errorf("%w: pause", ErrNotFound)
	ErrGoalNotFound     = fmt.Errorf("%w: goal", ErrNotFound)
	ErrNoteNotFound     = fmt.Errorf("%w: note", ErrNotFound)
)

// Entity-specific "duplicate" errors.
var (
	// ErrEmailExists indicates that a user with the given email already exists.
	ErrEmailExists = fmt.Errorf("%w: email", ErrDuplicate)

	// ErrOpenPauseExists indicates the session already has an open pause.
	ErrOpenPauseExists = fmt.Errorf("%w: open pause for session", ErrDuplicate)
)

// IsNotFoundError reports whether err is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError reports whether err is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// StoreError adds entity and operation context to a store failure.
type StoreError struct {
	Entity    string // e.g. "session", "pause"
	Operation string // e.g. "create", "close"
	Message   string
	Err       error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation on %s failed: %s: %v", e.Operation, e.Entity, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
