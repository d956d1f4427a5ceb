package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorKind classifies an AppError for transport-level mapping.
type ErrorKind string

const (
	KindValidation     ErrorKind = "validation"
	KindNotFound       ErrorKind = "not_found"
	KindConflict       ErrorKind = "conflict"
	KindInfrastructure ErrorKind = "infrastructure"
)

// AppError is the error type returned by domain and application code.
type AppError struct {
	Kind    ErrorKind
	Message string
	// Fields names the offending input fields of a validation error.
	Fields []string
	Err    error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *AppError) Unwrap() error { return e.Err }

// NewValidationError creates a validation error with a free-form message.
func NewValidationError(message string) *AppError {
	return &AppError{Kind: KindValidation, Message: message}
}

// NewFieldValidationError creates a validation error naming the given fields.
func NewFieldValidationError(reason string, fields ...string) *AppError {
	sorted := append([]string(nil), fields...)
	sort.Strings(sorted)
	return &AppError{
		Kind:    KindValidation,
		Message: fmt.Sprintf("%s: %s", reason, strings.Join(sorted, ", ")),
		Fields:  sorted,
	}
}

// NewNotFoundError creates a not-found error for the given entity and id.
func NewNotFoundError(entity, id string) *AppError {
	return &AppError{Kind: KindNotFound, Message: fmt.Sprintf("%s %s not found", entity, id)}
}

// NewConflictError creates a conflict error.
func NewConflictError(message string) *AppError {
	return &AppError{Kind: KindConflict, Message: message}
}

// NewInfrastructureError wraps a persistence or network failure.
func NewInfrastructureError(op string, err error) *AppError {
	return &AppError{Kind: KindInfrastructure, Message: op, Err: err}
}

// KindOf returns the kind of the first AppError in err's chain.
// Errors without an AppError are treated as infrastructure failures.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInfrastructure
}

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool { return err != nil && KindOf(err) == KindNotFound }

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool { return err != nil && KindOf(err) == KindValidation }
