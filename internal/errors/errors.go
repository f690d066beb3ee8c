// Package errors defines the stable error taxonomy for cnav.
//
// Soft outcomes (element not found, no path within depth) are expressed
// as nil or empty returns by the packages that produce them; only hard
// failures surface as NavError values.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// StorageFailure indicates a database connection, query, or constraint failure
	StorageFailure ErrorCode = "STORAGE_FAILURE"
	// ValidationFailed indicates malformed input rejected at the engine boundary
	ValidationFailed ErrorCode = "VALIDATION_FAILED"
	// Timeout indicates a store or collaborator call exceeded its deadline
	Timeout ErrorCode = "TIMEOUT"
	// PoolExhausted indicates the connection pool could not supply a connection in time
	PoolExhausted ErrorCode = "POOL_EXHAUSTED"
	// InternalError indicates an unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// NavError is a coded error with an optional underlying cause.
type NavError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	cause   error
}

// New creates a NavError with the given code and message.
func New(code ErrorCode, message string) *NavError {
	return &NavError{Code: code, Message: message}
}

// Wrap creates a NavError wrapping an underlying cause.
func Wrap(code ErrorCode, message string, cause error) *NavError {
	return &NavError{Code: code, Message: message, cause: cause}
}

// NewStorage wraps a storage-layer failure.
func NewStorage(message string, cause error) *NavError {
	return Wrap(StorageFailure, message, cause)
}

// NewValidation reports malformed caller input.
func NewValidation(format string, args ...interface{}) *NavError {
	return New(ValidationFailed, fmt.Sprintf(format, args...))
}

// Error implements the error interface
func (e *NavError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *NavError) Unwrap() error {
	return e.cause
}

// WithDetails attaches structured details to the error.
func (e *NavError) WithDetails(details interface{}) *NavError {
	e.Details = details
	return e
}

// CodeOf extracts the error code from err, or InternalError when err
// is not a NavError.
func CodeOf(err error) ErrorCode {
	var navErr *NavError
	if stderrors.As(err, &navErr) {
		return navErr.Code
	}
	return InternalError
}

// IsStorage reports whether err is a storage failure.
func IsStorage(err error) bool {
	return CodeOf(err) == StorageFailure
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	return CodeOf(err) == ValidationFailed
}

// IsTimeout reports whether err is a timeout.
func IsTimeout(err error) bool {
	return CodeOf(err) == Timeout
}
