package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Wilcolab/Anythink-Market-fnscfx3q/internal/store"
)

// Error taxonomy exposed to callers. The API layer maps these onto HTTP
// status codes; messages never reveal which part of a check failed beyond
// the category itself.
var (
	// ErrValidation indicates malformed input. The wrapped error carries
	// field-level detail safe to return to the client.
	ErrValidation = errors.New("validation failed")

	// ErrConflict indicates a uniqueness violation (username, email, slug).
	ErrConflict = errors.New("resource already exists")

	// ErrUnauthorized indicates a missing or invalid caller identity.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates a valid identity with insufficient rights.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrUnavailable indicates a transient persistence failure. Callers may
	// retry.
	ErrUnavailable = errors.New("service temporarily unavailable")
)

// ServiceError carries the operation that failed alongside the underlying
// error, for logs that need more context than a bare sentinel.
type ServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// validationError wraps a field-level error into the validation category.
func validationError(err error) error {
	return fmt.Errorf("%w: %s", ErrValidation, err.Error())
}

// mapStoreError normalizes store errors into the service taxonomy.
// Not-found and duplicate sentinels keep their meaning; invalid-entity
// errors become validation failures; everything else is treated as a
// transient persistence problem.
func mapStoreError(err error) error {
	switch {
	case err == nil:
		return nil
	case store.IsNotFoundError(err):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case store.IsDuplicateError(err):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	case errors.Is(err, store.ErrInvalidEntity):
		return fmt.Errorf("%w: %v", ErrValidation, err)
	default:
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
}

// readRetries is the bounded internal retry count for idempotent reads.
// Writes are never retried here; slug regeneration is handled explicitly by
// the item service.
const readRetries = 2

// retryRead runs fn, retrying transient failures up to readRetries extra
// times. Only errors classified as ErrUnavailable are retried.
func retryRead[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	var result T
	var err error
	for attempt := 0; attempt <= readRetries; attempt++ {
		result, err = fn()
		if err == nil || !errors.Is(mapStoreError(err), ErrUnavailable) {
			return result, err
		}
		if ctx.Err() != nil {
			return result, err
		}
	}
	return result, err
}
