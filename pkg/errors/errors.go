// Package errors provides structured error types for districtviz.
//
// Every failure that crosses a package boundary carries a machine-readable
// [Code], so the CLI can print a friendly message and the HTTP server can map
// it to a status without string matching.
//
// # Error Codes
//
//   - INVALID_*: input validation failures (columns, formats, identifiers)
//   - NOT_FOUND: a district, column or artifact does not exist
//   - DATA_LOAD_FAILED: an asynchronous data source rejected
//   - NETWORK_ERROR / TIMEOUT: remote lookups (address search)
//   - INTERNAL_ERROR: everything unexpected
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidColumn, "unknown column %q", col)
//	if errors.Is(err, errors.ErrCodeInvalidColumn) {
//	    // Handle validation error
//	}
//
//	err := errors.Wrap(errors.ErrCodeDataLoadFailed, cause, "load %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

const (
	// Input validation errors
	ErrCodeInvalidInput      Code = "INVALID_INPUT"
	ErrCodeInvalidColumn     Code = "INVALID_COLUMN"
	ErrCodeInvalidFormat     Code = "INVALID_FORMAT"
	ErrCodeInvalidPattern    Code = "INVALID_PATTERN"
	ErrCodeInvalidIdentifier Code = "INVALID_IDENTIFIER"
	ErrCodeInvalidConfig     Code = "INVALID_CONFIG"

	// Resource errors
	ErrCodeNotFound       Code = "NOT_FOUND"
	ErrCodeDataLoadFailed Code = "DATA_LOAD_FAILED"

	// Network errors
	ErrCodeNetwork Code = "NETWORK_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

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

// Is reports whether the outermost *Error in err's chain has the given code.
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

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
