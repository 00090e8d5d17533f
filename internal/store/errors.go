package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would violate a uniqueness
	// constraint (username, email, slug).
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored, or references a row that does not exist.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrTransactionFailed is returned when a transaction fails to commit.
	ErrTransactionFailed = errors.New("transaction failed")

	// Entity-specific "not found" errors

	ErrUserNotFound    = fmt.Errorf("%w: user", ErrNotFound)
	ErrItemNotFound    = fmt.Errorf("%w: item", ErrNotFound)
	ErrCommentNotFound = fmt.Errorf("%w: comment", ErrNotFound)

	// Entity-specific "duplicate" errors

	ErrUsernameExists = fmt.Errorf("%w: username", ErrDuplicate)
	ErrEmailExists    = fmt.Errorf("%w: email", ErrDuplicate)
	ErrSlugExists     = fmt.Errorf("%w: slug", ErrDuplicate)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// StoreError carries the entity and operation that failed alongside the
// underlying error, for logs that need more context than a bare sentinel.
type StoreError struct {
	Entity    string
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface.
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

// NewStoreError creates a StoreError wrapping err.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{Entity: entity, Operation: operation, Message: message, Err: err}
}
