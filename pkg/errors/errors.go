// Package errors provides structured error types for reqdoc.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and the conversion library
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// The codes follow the conversion failure taxonomy:
//   - NOT_FOUND: a declared file or diagram is missing, or a rendered
//     diagram did not appear under its expected name
//   - SINK_ERROR: an output document cannot be opened, written or closed
//   - PROJECT_OVERRIDE: a project file fails to load or names a hook that
//     is not registered
//   - INVALID_*: malformed input or options
//   - TOOL_ERROR / NETWORK_ERROR: the external diagram tool failed
//
// A record type without any handler is not an error; the record is skipped.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeNotFound, "diagram %s not found", path)
//	if errors.Is(err, errors.ErrCodeNotFound) {
//	    // Handle missing diagram
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeSink, osErr, "open %s", path)
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
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidPath   Code = "INVALID_PATH"
	ErrCodeInvalidState  Code = "INVALID_STATE"

	// Resource not found errors
	ErrCodeNotFound Code = "NOT_FOUND"

	// Output errors
	ErrCodeSink Code = "SINK_ERROR"

	// Project override errors
	ErrCodeProjectOverride Code = "PROJECT_OVERRIDE"

	// External tool errors
	ErrCodeTool    Code = "TOOL_ERROR"
	ErrCodeNetwork Code = "NETWORK_ERROR"

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
// The outermost coded error decides; a NOT_FOUND wrapped into a
// SINK_ERROR reports SINK_ERROR.
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

// GetCodeOr returns the code carried by err, or def when it carries none.
// Error types with a Code() method, such as NotFoundError, are recognized.
func GetCodeOr(err error, def Code) Code {
	if c := GetCode(err); c != "" {
		return c
	}
	var coded interface{ Code() Code }
	if errors.As(err, &coded) {
		return coded.Code()
	}
	return def
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix, followed
// by the cause when there is one.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %v", e.Message, e.Cause)
		}
		return e.Message
	}
	return err.Error()
}

// NotFoundError carries the paths involved in a failed diagram or file
// lookup. Expected is set when a diagram tool ran but its artifact did not
// appear under the expected name.
type NotFoundError struct {
	Declared string // path as declared in the record
	Expected string // expected rendered artifact (optional)
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if e.Expected != "" {
		return fmt.Sprintf("%s rendered, but %s does not exist", e.Declared, e.Expected)
	}
	return fmt.Sprintf("%s not found", e.Declared)
}

// Code returns the error code for this error type.
func (e *NotFoundError) Code() Code {
	return ErrCodeNotFound
}
