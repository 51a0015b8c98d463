// Package apierror defines the error taxonomy shared by the ingestion,
// aggregation and report packages and mapped to HTTP statuses at the
// handler boundary.
package apierror

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks bad or missing input: malformed files, missing
	// columns, non-numeric metrics.
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks an unknown dataset, or one without any rows.
	ErrNotFound = errors.New("not found")
	// ErrAuth marks bad credentials, duplicate usernames and missing tokens.
	ErrAuth = errors.New("auth error")
)

// APIError carries a user-presentable message alongside the sentinel that
// classifies it.
type APIError struct {
	Message string
	Err     error
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

func NewValidationError(format string, args ...any) error {
	return &APIError{
		Message: fmt.Sprintf(format, args...),
		Err:     ErrValidation,
	}
}

// WrapValidationError keeps the underlying cause visible in the message
// while remaining matchable via errors.Is(err, ErrValidation).
func WrapValidationError(message string, cause error) error {
	return &APIError{
		Message: fmt.Sprintf("%s: %v", message, cause),
		Err:     fmt.Errorf("%w: %v", ErrValidation, cause),
	}
}

func NewNotFoundError(format string, args ...any) error {
	return &APIError{
		Message: fmt.Sprintf(format, args...),
		Err:     ErrNotFound,
	}
}

func NewAuthError(format string, args ...any) error {
	return &APIError{
		Message: fmt.Sprintf(format, args...),
		Err:     ErrAuth,
	}
}

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsAuth(err error) bool {
	return errors.Is(err, ErrAuth)
}
