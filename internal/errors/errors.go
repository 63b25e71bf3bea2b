package apperrors

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Application exit codes define the standard exit statuses for the application.
// These codes are used to signal the outcome of the program execution to the OS.
const (
	ExitSuccess       = 0   // Indicates successful execution.
	ExitErrorGeneric  = 1   // Indicates a generic error.
	ExitErrorTimeout  = 2   // Indicates the operation timed out.
	ExitErrorFitting  = 3   // Indicates that no viewport could be fitted for the map.
	ExitErrorConfig   = 4   // Indicates a configuration error.
	ExitErrorCanceled = 130 // Indicates the operation was canceled (e.g., SIGINT).
)

// ExitCoder is implemented by errors that carry their own exit status.
type ExitCoder interface {
	ExitCode() int
}

// ConfigError represents a user configuration error, such as invalid flags or
// values. It indicates that the application cannot proceed due to incorrect user input.
type ConfigError struct {
	// Message explains the specific configuration error.
	Message string
}

// Error returns the error message for a ConfigError.
//
// Returns:
//   - string: The error message string.
func (e ConfigError) Error() string { return e.Message }

// ExitCode implements ExitCoder.
func (e ConfigError) ExitCode() int { return ExitErrorConfig }

// NewConfigError creates a new ConfigError with a formatted message.
// It allows for the creation of configuration-specific errors with dynamic
// content.
//
// Parameters:
//   - format: A format string (see fmt.Sprintf).
//   - a: Arguments to be formatted into the string.
//
// Returns:
//   - error: A new ConfigError instance containing the formatted message.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// ClassificationError encapsulates a failure while classifying a parameter
// while preserving the original cause.
type ClassificationError struct {
	// Point is the parameter that was being classified.
	Point complex128
	// Cause is the underlying error that triggered this classification error.
	Cause error
}

// Error returns the error message from the underlying cause, prefixed with
// the parameter.
//
// Returns:
//   - string: The error message string.
func (e ClassificationError) Error() string {
	return fmt.Sprintf("classify %v: %v", e.Point, e.Cause)
}

// Unwrap returns the original wrapped error, allowing for error chain
// inspection (e.g., using errors.Is or errors.As).
//
// Returns:
//   - error: The underlying cause of the ClassificationError.
func (e ClassificationError) Unwrap() error { return e.Cause }

// FittingError reports that no viewport could be derived for the configured
// map. It wraps the cause produced by the fitting scan.
type FittingError struct {
	// Cause is the underlying fitting failure.
	Cause error
}

// Error returns the error message from the underlying cause.
func (e FittingError) Error() string { return e.Cause.Error() }

// Unwrap returns the underlying cause.
func (e FittingError) Unwrap() error { return e.Cause }

// ExitCode implements ExitCoder.
func (e FittingError) ExitCode() int { return ExitErrorFitting }

// TimeoutError represents an operation timeout. It captures the operation
// name and the duration limit that was exceeded.
type TimeoutError struct {
	// Operation is the name of the operation that timed out.
	Operation string
	// Limit is the duration after which the operation was considered timed out.
	Limit time.Duration
}

// Error returns a formatted message describing the timeout.
//
// Returns:
//   - string: The error message string.
func (e TimeoutError) Error() string {
	return fmt.Sprintf("operation %q timed out after %s", e.Operation, e.Limit)
}

// ExitCode implements ExitCoder.
func (e TimeoutError) ExitCode() int { return ExitErrorTimeout }

// ValidationError represents an input validation failure. It identifies which
// field failed validation and provides a human-readable explanation.
type ValidationError struct {
	// Field is the name of the field that failed validation.
	Field string
	// Message explains the validation failure.
	Message string
}

// Error returns a formatted message describing the validation failure.
//
// Returns:
//   - string: The error message string.
func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error for %q: %s", e.Field, e.Message)
}

// ExitCode implements ExitCoder.
func (e ValidationError) ExitCode() int { return ExitErrorConfig }

// LimitError reports a request that exceeds a configured ceiling, such as an
// iteration depth above the server limit.
type LimitError struct {
	// Name identifies the limited quantity.
	Name string
	// Requested is the value that was asked for.
	Requested int
	// Limit is the configured maximum.
	Limit int
}

// Error returns a formatted message describing the limit violation.
//
// Returns:
//   - string: The error message string.
func (e LimitError) Error() string {
	return fmt.Sprintf("%s %d exceeds limit %d", e.Name, e.Requested, e.Limit)
}

// WrapError wraps an error with additional context using fmt.Errorf and %w.
// This allows the wrapped error to be unwrapped with errors.Unwrap() and
// checked with errors.Is() and errors.As().
//
// Parameters:
//   - err: The error to wrap.
//   - format: A format string for the context message.
//   - args: Arguments for the format string.
//
// Returns:
//   - error: The wrapped error, or nil if err is nil.
func WrapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// IsContextError checks if the error is a context cancellation or deadline exceeded error.
//
// Parameters:
//   - err: The error to check.
//
// Returns:
//   - bool: true if the error is a context error.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// ExitCodeFor maps an error to the process exit status. Context errors take
// precedence over any ExitCoder found in the chain.
//
// Parameters:
//   - err: The error to map (nil means success).
//
// Returns:
//   - int: One of the Exit* constants.
func ExitCodeFor(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, context.Canceled):
		return ExitErrorCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return ExitErrorTimeout
	}
	var coder ExitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return ExitErrorGeneric
}
