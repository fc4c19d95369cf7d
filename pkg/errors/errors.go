// Package errors provides structured error types for swapsort.
//
// This package defines error codes and types that enable:
//   - Consistent handling of the failure classes of a sorting run
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Classes
//
// Codes map onto three failure classes:
//   - Fatal preconditions (ODD_OPAQUE_COUNT, AGGREGATE_INVARIANT): the run
//     aborts immediately because the optimization state can no longer be trusted.
//   - I/O faults (IO_ERROR, FILE_NOT_FOUND): surfaced at startup or at a
//     checkpoint; never retried by the engine itself.
//   - Configuration faults (INVALID_*): rejected before the engine is built.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeOddOpaque, "%d opaque pixels", n)
//	if errors.Is(err, errors.ErrCodeOddOpaque) {
//	    // Handle precondition failure
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeIO, origErr, "save checkpoint %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidShape  Code = "INVALID_SHAPE"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Fatal precondition violations
	ErrCodeOddOpaque Code = "ODD_OPAQUE_COUNT"
	ErrCodeInvariant Code = "AGGREGATE_INVARIANT"

	// I/O errors
	ErrCodeIO           Code = "IO_ERROR"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsFatal reports whether err is a precondition or invariant violation.
// Fatal errors mean the canvas or aggregate state is no longer trustworthy.
func IsFatal(err error) bool {
	switch GetCode(err) {
	case ErrCodeOddOpaque, ErrCodeInvariant:
		return true
	}
	return false
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
