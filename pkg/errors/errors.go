// Package errors provides structured error types for taskdag.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, HTTP API and TUI
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Graph errors are the ones the layout engine itself produces:
//   - DATA_INTEGRITY: a successor id references a task missing from the batch
//   - GRAPH_CYCLE: the successor relation of the batch is cyclic
//   - EDGE_REJECTED: a proposed dependency was refused by the cycle guard
//   - MALFORMED_PAYLOAD: an interaction payload has the wrong shape
//
// The remaining codes cover configuration, storage and transport failures.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeDataIntegrity, "task %d: unknown successor %d", from, to)
//	if errors.Is(err, errors.ErrCodeDataIntegrity) {
//	    // keep the last good render
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeStorage, origErr, "load tasks from %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Graph construction and editing errors
	ErrCodeDataIntegrity    Code = "DATA_INTEGRITY"
	ErrCodeGraphCycle       Code = "GRAPH_CYCLE"
	ErrCodeEdgeRejected     Code = "EDGE_REJECTED"
	ErrCodeMalformedPayload Code = "MALFORMED_PAYLOAD"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Storage errors
	ErrCodeStorage Code = "STORAGE_ERROR"

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

// IsGraphError reports whether err was produced while building the graph
// from a task batch. Callers that hold a previous render should keep it.
func IsGraphError(err error) bool {
	switch GetCode(err) {
	case ErrCodeDataIntegrity, ErrCodeGraphCycle:
		return true
	}
	return false
}
