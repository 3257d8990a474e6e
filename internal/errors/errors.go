// Package errors provides structured error types for sycl-aspect-filter.
// All errors include a category, code, message, and optional cause so the
// CLI can emit a single consistent diagnostic line on any failure.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies errors by failure domain.
type ErrorCategory string

const (
	ErrCategoryArgument ErrorCategory = "ARGUMENT"
	ErrCategoryIO       ErrorCategory = "IO"
	ErrCategoryFormat   ErrorCategory = "FORMAT"
	ErrCategoryConfig   ErrorCategory = "CONFIG"
)

// Error codes for each category.
const (
	// Argument codes
	CodeMissingArgument = "MISSING_ARGUMENT"
	CodeInvalidArgument = "INVALID_ARGUMENT"

	// IO codes
	CodeFileNotFound = "FILE_NOT_FOUND"
	CodeReadFailed   = "READ_FAILED"
	CodeWriteFailed  = "WRITE_FAILED"

	// Format codes
	CodeMalformedHeader = "MALFORMED_HEADER"
	CodeColumnMismatch  = "COLUMN_MISMATCH"
	CodeMalformedBlob   = "MALFORMED_BLOB"
	CodeMalformedValue  = "MALFORMED_VALUE"

	// Config codes
	CodeUnknownTarget       = "UNKNOWN_TARGET"
	CodeInvalidDeviceConfig = "INVALID_DEVICE_CONFIG"
)

// FilterError is the structured error type used throughout the tool.
// Every failure is fatal: the CLI prints the message and exits 1, so
// there is no retryable classification.
type FilterError struct {
	Category ErrorCategory
	Code     string
	Message  string
	Cause    error
}

// Error returns a formatted error string.
func (e *FilterError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *FilterError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches this error's category and code.
func (e *FilterError) Is(target error) bool {
	var t *FilterError
	if errors.As(target, &t) {
		return e.Category == t.Category && e.Code == t.Code
	}
	return false
}

// New creates a new FilterError.
func New(category ErrorCategory, code, message string) *FilterError {
	return &FilterError{
		Category: category,
		Code:     code,
		Message:  message,
	}
}

// Newf creates a new FilterError with a formatted message.
func Newf(category ErrorCategory, code, format string, args ...interface{}) *FilterError {
	return New(category, code, fmt.Sprintf(format, args...))
}

// Wrap creates a new FilterError wrapping an existing error.
func Wrap(category ErrorCategory, code, message string, cause error) *FilterError {
	return &FilterError{
		Category: category,
		Code:     code,
		Message:  message,
		Cause:    cause,
	}
}

// CategoryOf returns the category of an error if it is (or wraps) a
// FilterError, or an empty category otherwise.
func CategoryOf(err error) ErrorCategory {
	var fe *FilterError
	if errors.As(err, &fe) {
		return fe.Category
	}
	return ""
}
