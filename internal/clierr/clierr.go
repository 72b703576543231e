// Package clierr defines the structured errors returned by agenda commands.
// Each error carries a stable code for scripts, a message for people and
// optional details rendered in JSON mode.
package clierr

import (
	"fmt"
	"strconv"
)

// Error codes. Uppercase, underscore-separated, stable across minor versions.
const (
	ConfigNotFound      = "CONFIG_NOT_FOUND"
	ConfigAlreadyExists = "CONFIG_ALREADY_EXISTS"
	InvalidConfig       = "INVALID_CONFIG"
	InvalidInput        = "INVALID_INPUT"
	InvalidDate         = "INVALID_DATE"
	InvalidFilter       = "INVALID_FILTER"
	InvalidGroupBy      = "INVALID_GROUP_BY"
	InvalidSort         = "INVALID_SORT"
	ViewNotFound        = "VIEW_NOT_FOUND"
	NoOrgFiles          = "NO_ORG_FILES"
	InternalError       = "INTERNAL_ERROR"
)

// Error is a CLI error with a machine-readable code.
type Error struct {
	Code    string
	Message string
	Details map[string]any
}

func (e *Error) Error() string { return e.Message }

// New creates an Error with the given code and message.
func New(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an Error with a formatted message.
func Newf(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithDetails attaches details and returns e.
func (e *Error) WithDetails(details map[string]any) *Error {
	e.Details = details
	return e
}

// ExitCode is 2 for internal errors and 1 otherwise.
func (e *Error) ExitCode() int {
	if e.Code == InternalError {
		return 2 //nolint:mnd // internal errors exit 2
	}
	return 1
}

// SilentError carries an exit code whose explanation has already been
// printed, e.g. a clock check that listed its findings on stdout.
type SilentError struct {
	Code int
}

func (e *SilentError) Error() string { return "exit " + strconv.Itoa(e.Code) }
