// Package apperr defines structured error types for taskpilot commands.
// Errors carry a machine-readable code, a human-readable message,
// and optional details for script consumption.
package apperr

import (
	"fmt"
	"strconv"
)

// Error code constants — uppercase, underscore-separated, stable across minor versions.
const (
	ValidationFailed  = "VALIDATION_FAILED"
	TaskNotFound      = "TASK_NOT_FOUND"
	CategoryNotFound  = "CATEGORY_NOT_FOUND"
	TagNotFound       = "TAG_NOT_FOUND"
	AmbiguousID       = "AMBIGUOUS_ID"
	InvalidPriority   = "INVALID_PRIORITY"
	InvalidRecurrence = "INVALID_RECURRENCE"
	InvalidDate       = "INVALID_DATE"
	InvalidInput      = "INVALID_INPUT"
	InvalidSortKey    = "INVALID_SORT_KEY"
	PersistenceFailed = "PERSISTENCE_FAILED"
	ConfirmationReq   = "CONFIRMATION_REQUIRED"
	ConfigError       = "CONFIG_ERROR"
	InternalError     = "INTERNAL_ERROR"
)

// Error represents a structured taskpilot error with a machine-readable code.
type Error struct {
	Code    string
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string { return e.Message }

// New creates an Error with the given code and message.
func New(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an Error with a formatted message.
func Newf(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error with the given code whose message preserves
// the underlying cause.
func Wrap(code string, err error) *Error {
	return &Error{Code: code, Message: err.Error(), Details: map[string]any{"cause": err.Error()}}
}

// WithDetails returns the error with the given details map attached.
func (e *Error) WithDetails(details map[string]any) *Error {
	e.Details = details
	return e
}

// ExitCode returns 2 for InternalError, 1 for all others.
func (e *Error) ExitCode() int {
	if e.Code == InternalError {
		return 2 //nolint:mnd // exit code 2 for internal errors
	}
	return 1
}

// SilentError signals an exit code without additional output.
// Used by batch operations where results are already written to stdout.
type SilentError struct {
	Code int
}

// Error implements the error interface.
func (e *SilentError) Error() string { return "exit " + strconv.Itoa(e.Code) }
