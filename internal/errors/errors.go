package errors

import (
	stderrors "errors"
	"fmt"
)

// NativeError is the structured error type for nativecore.
// It provides rich context for error handling, logging, and user presentation.
type NativeError struct {
	// Code is the unique error code (e.g., "ERR_601_LIBRARY_NOT_FOUND").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, Load, IO, etc.).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs
	// (component, path, diagnostic).
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Retryable indicates an explicit retry may succeed once the
	// configuration has been corrected. Nothing retries automatically.
	Retryable bool

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *NativeError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *NativeError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with NativeError.
func (e *NativeError) Is(target error) bool {
	if t, ok := target.(*NativeError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *NativeError) WithDetail(key, value string) *NativeError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
// Returns the error for method chaining.
func (e *NativeError) WithSuggestion(suggestion string) *NativeError {
	e.Suggestion = suggestion
	return e
}

// Detail returns the named detail, or "" when absent.
func (e *NativeError) Detail(key string) string {
	return e.Details[key]
}

// New creates a new NativeError with the given code and message.
// Category, severity, and retryable flag are derived from the code.
func New(code string, message string, cause error) *NativeError {
	return &NativeError{
		Code:      code,
		Message:   message,
		Category:  categoryFromCode(code),
		Severity:  severityFromCode(code),
		Cause:     cause,
		Retryable: isRetryableCode(code),
	}
}

// Wrap creates a NativeError from an existing error.
// The error's message becomes the NativeError message.
func Wrap(code string, err error) *NativeError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// ConfigError creates a generic configuration error.
func ConfigError(message string, cause error) *NativeError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// ConfigurationError creates a configuration error with a specific code.
// The code must be in the 1XX range.
func ConfigurationError(code, message string, cause error) *NativeError {
	if categoryFromCode(code) != CategoryConfig {
		code = ErrCodeConfigInvalid
	}
	return New(code, message, cause)
}

// LoadError creates a load error for component at path. The loader
// diagnostic is kept verbatim in the message and in the "diagnostic" detail.
func LoadError(code, component, path, diagnostic string, cause error) *NativeError {
	if categoryFromCode(code) != CategoryLoad {
		code = ErrCodeLibraryInvalid
	}
	msg := fmt.Sprintf("failed to load component %q from %s", component, path)
	if diagnostic != "" {
		msg += ": " + diagnostic
	}
	return New(code, msg, cause).
		WithDetail("component", component).
		WithDetail("path", path).
		WithDetail("diagnostic", diagnostic)
}

// IOError creates an I/O-related error.
func IOError(message string, cause error) *NativeError {
	return New(ErrCodeFileNotFound, message, cause)
}

// ValidationError creates a validation-related error.
func ValidationError(message string, cause error) *NativeError {
	return New(ErrCodeInvalidInput, message, cause)
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *NativeError {
	return New(ErrCodeInternal, message, cause)
}

// As returns the first NativeError in err's chain.
func As(err error) (*NativeError, bool) {
	var ne *NativeError
	if stderrors.As(err, &ne) {
		return ne, true
	}
	return nil, false
}

// IsConfigurationError reports whether err is a configuration error.
func IsConfigurationError(err error) bool {
	return GetCategory(err) == CategoryConfig
}

// IsLoadError reports whether err is a native load error.
func IsLoadError(err error) bool {
	return GetCategory(err) == CategoryLoad
}

// IsRetryable checks if an error is retryable.
// Returns true if the error is a NativeError with Retryable flag set.
func IsRetryable(err error) bool {
	if ne, ok := As(err); ok {
		return ne.Retryable
	}
	return false
}

// IsFatal checks if an error has fatal severity.
func IsFatal(err error) bool {
	if ne, ok := As(err); ok {
		return ne.Severity == SeverityFatal
	}
	return false
}

// GetCode extracts the error code from a NativeError.
// Returns empty string if not a NativeError.
func GetCode(err error) string {
	if ne, ok := As(err); ok {
		return ne.Code
	}
	return ""
}

// GetCategory extracts the category from a NativeError.
// Returns empty string if not a NativeError.
func GetCategory(err error) Category {
	if ne, ok := As(err); ok {
		return ne.Category
	}
	return ""
}
