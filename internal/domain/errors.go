package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across all layers.
var (
	ErrValidation  = errors.New("validation error")
	ErrNotFound    = errors.New("not found")
	ErrPermission  = errors.New("permission denied")
	ErrRateLimited = errors.New("rate limited")
	ErrPersistence = errors.New("persistence error")
)

// ValidationError is a user-correctable rejection.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

type NotFoundError struct {
	Entity  string
	ID      string
	Message string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

func NewNotFoundError(entity, id, message string) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id, Message: message}
}

type PermissionError struct {
	Message string
}

func (e *PermissionError) Error() string {
	return "permission: " + e.Message
}

func (e *PermissionError) Unwrap() error { return ErrPermission }

func NewPermissionError(message string) *PermissionError {
	return &PermissionError{Message: message}
}

type RateLimitedError struct {
	Key     string
	Message string
}

func (e *RateLimitedError) Error() string {
	return "rate limited: " + e.Key
}

func (e *RateLimitedError) Unwrap() error { return ErrRateLimited }

func NewRateLimitedError(key, message string) *RateLimitedError {
	return &RateLimitedError{Key: key, Message: message}
}

// UserMessage extracts the human-readable reason carried by a domain error.
// ok is false for errors outside the taxonomy.
func UserMessage(err error) (msg string, ok bool) {
	var (
		validationErr *ValidationError
		notFoundErr   *NotFoundError
		permissionErr *PermissionError
		rateErr       *RateLimitedError
	)

	switch {
	case errors.As(err, &validationErr):
		return validationErr.Message, true
	case errors.As(err, &notFoundErr):
		return notFoundErr.Message, true
	case errors.As(err, &permissionErr):
		return permissionErr.Message, true
	case errors.As(err, &rateErr):
		return rateErr.Message, true
	default:
		return "", false
	}
}
