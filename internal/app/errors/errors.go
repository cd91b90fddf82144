package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Common error types
var (
	// Transcript errors
	ErrMalformedToken = New("malformed token")

	// Transcription job errors
	ErrJobFailed   = New("transcription job failed")
	ErrPollTimeout = New("timed out waiting for transcription job")

	// Storage errors
	ErrObjectNotFound = New("object not found")
	ErrUnsupportedKey = New("unsupported object key")

	// Event errors
	ErrMalformedEvent = New("malformed event notification")

	// Configuration errors
	ErrInvalidConfig = New("invalid configuration")

	// Ledger errors
	ErrAlreadyProcessed = New("object already processed")
)

// Error represents a standardized error
type Error struct {
	message string
	cause   error
}

// New creates a new error
func New(message string) *Error {
	return &Error{message: message}
}

// Newf creates a new formatted error
func Newf(format string, args ...interface{}) *Error {
	return &Error{message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &Error{
		message: message,
		cause:   err,
	}
}

// Wrapf wraps an error with formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &Error{
		message: fmt.Sprintf(format, args...),
		cause:   err,
	}
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.cause
}

// Is checks if the error matches target
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.cause == nil && t.cause == nil && e.message == t.message
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

// RequiredField returns an error for missing required fields
func RequiredField(field string) error {
	return Wrapf(ErrInvalidConfig, "%s is required", field)
}

// InvalidField returns an error for invalid field values
func InvalidField(field string, reason string) error {
	return Wrapf(ErrInvalidConfig, "%s is invalid: %s", field, reason)
}

// OutOfRange returns an error for values outside acceptable range
func OutOfRange(field string, min, max interface{}) error {
	return Wrapf(ErrInvalidConfig, "%s out of range (must be between %v and %v)", field, min, max)
}

// NotFound returns an error for objects that were not found
func NotFound(bucket, key string) error {
	return Wrapf(ErrObjectNotFound, "s3://%s/%s", bucket, key)
}

// Timeout returns a timeout error
func Timeout(operation string, duration string) error {
	return Wrapf(ErrPollTimeout, "%s timeout after %s", operation, duration)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	if err == nil {
		return false
	}
	if Is(err, ErrInvalidConfig) || Is(err, ErrMalformedToken) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "required") ||
		strings.Contains(msg, "out of range")
}
