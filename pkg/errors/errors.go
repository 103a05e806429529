package errors

import (
	"errors"
	"fmt"
)

// Domain error types for business logic

var (
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("resource not found")

	// ErrAlreadyExists indicates a resource already exists
	ErrAlreadyExists = errors.New("resource already exists")

	// ErrInvalidInput indicates invalid input parameters
	ErrInvalidInput = errors.New("invalid input")

	// ErrInternal indicates an internal server error
	ErrInternal = errors.New("internal error")

	// ErrTimeout indicates an operation timeout
	ErrTimeout = errors.New("operation timeout")

	// ErrUnavailable indicates a service is unavailable
	ErrUnavailable = errors.New("service unavailable")
)

// Inference-specific errors

var (
	// ErrModelUnavailable indicates the classifier artifact is missing or
	// failed to load; every prediction fails until a valid artifact is loaded
	ErrModelUnavailable = errors.New("classifier model unavailable")

	// ErrSchemaMismatch indicates the feature schema and the model artifact
	// disagree on version, feature count, or label set
	ErrSchemaMismatch = errors.New("feature schema and model artifact are incompatible")

	// ErrUnknownCategory indicates a categorical value outside the allowed set
	ErrUnknownCategory = errors.New("unknown categorical value")

	// ErrMissingField indicates a required observation field is absent
	ErrMissingField = errors.New("missing required field")

	// ErrWrongType indicates an observation value of the wrong type
	ErrWrongType = errors.New("wrong value type")
)

// ValidationError represents a validation error with field-specific details.
// It wraps one of the sentinel errors above so callers can branch with Is.
type ValidationError struct {
	Field   string
	Message string
	Value   interface{}
	Err     error
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: field '%s': %s (value: %v)", e.Field, e.Message, e.Value)
}

// Unwrap returns the wrapped sentinel
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string, value interface{}, sentinel error) *ValidationError {
	if sentinel == nil {
		sentinel = ErrInvalidInput
	}
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
		Err:     sentinel,
	}
}

// Helper functions

// Is checks if err is or wraps target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target type
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

func New(message string) error {
	return errors.New(message)
}

func Newf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
