// Package errors provides a lightweight structured error type (BuildPrepError)
// for category-based classification across the pre-build pipeline and CLI.
package errors

import (
	"fmt"
)

// ErrorCategory represents the category of a buildprep error for classification
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// Pipeline stage errors
	CategoryProtoc     ErrorCategory = "protoc"
	CategoryManifest   ErrorCategory = "manifest"
	CategoryPublish    ErrorCategory = "publish"
	CategoryFileSystem ErrorCategory = "filesystem"

	// Everything else
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Aborts the build
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded output
)

// BuildPrepError is a structured error with category, severity, and context
type BuildPrepError struct {
	Category ErrorCategory `json:"category"`
	Severity ErrorSeverity `json:"severity"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
	Context  ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for BuildPrepError
type ContextFields map[string]any

// Error implements the error interface
func (e *BuildPrepError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *BuildPrepError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *BuildPrepError) WithContext(key string, value any) *BuildPrepError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new BuildPrepError
func New(category ErrorCategory, severity ErrorSeverity, message string) *BuildPrepError {
	return &BuildPrepError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new BuildPrepError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *BuildPrepError {
	return &BuildPrepError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}

// IsCategory checks if an error belongs to a specific category
func IsCategory(err error, category ErrorCategory) bool {
	if bpe, ok := err.(*BuildPrepError); ok {
		return bpe.Category == category
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal if not a BuildPrepError
func GetCategory(err error) ErrorCategory {
	if bpe, ok := err.(*BuildPrepError); ok {
		return bpe.Category
	}
	return CategoryInternal
}

// IsFatal reports whether an error carries fatal severity. Non-BuildPrepError
// values are treated as fatal so unknown failures never pass silently.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	if bpe, ok := err.(*BuildPrepError); ok {
		return bpe.Severity == SeverityFatal
	}
	return true
}
