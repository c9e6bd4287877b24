// Package errors provides machine-readable error codes for objgraph.
//
// The engine packages return plain Go errors (sentinels and structured
// types); every one of them also carries a [Code] so that CLI front-ends and
// embedding programs can classify failures without string matching.
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - *_NOT_FOUND: an identity, label or file does not exist
//   - INVALID_*: input validation failures (labels, serialized data, scripts)
//   - CYCLE_GUARD: a traversal exceeded its visit bound
//   - INTERNAL_*: corrupted invariants
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "unknown policy: %s", name)
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeStore, origErr, "save %s", key)
//
// Any error implementing [Coder] participates in [Is] and [GetCode], which is
// how the graph error types expose their codes.
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Lookup errors
	ErrCodeVertexNotFound Code = "VERTEX_NOT_FOUND"
	ErrCodeEdgeNotFound   Code = "EDGE_NOT_FOUND"
	ErrCodeBrokenPath     Code = "BROKEN_PATH"
	ErrCodeFileNotFound   Code = "FILE_NOT_FOUND"
	ErrCodeNotFound       Code = "NOT_FOUND"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidLabel  Code = "INVALID_LABEL"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidScript Code = "INVALID_SCRIPT"
	ErrCodeInvalidKey    Code = "INVALID_KEY"
	ErrCodeVertexExists  Code = "VERTEX_EXISTS"

	// Traversal errors
	ErrCodeCycleGuard Code = "CYCLE_GUARD"

	// Storage errors
	ErrCodeStore Code = "STORE_ERROR"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Coder is implemented by errors that carry their own code.
type Coder interface {
	Code() Code
}

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
// The outermost coded error in the chain decides.
func Is(err error, code Code) bool {
	c := GetCode(err)
	return c != "" && c == code
}

// GetCode extracts the error code from an error, if available.
// It walks the unwrap chain and returns the code of the first *Error or
// [Coder] it meets. Returns empty string if there is none.
func GetCode(err error) Code {
	for err != nil {
		switch e := err.(type) {
		case *Error:
			return e.Code
		case Coder:
			return e.Code()
		}
		err = errors.Unwrap(err)
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
