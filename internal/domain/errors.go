package domain

import (
	"errors"
	"fmt"
	"time"
)

// Error codes for categorization
const (
	// Lookup errors
	ErrCodeElementNotFound = "ELEMENT_NOT_FOUND"
	ErrCodeElementsCount   = "ELEMENTS_COUNT_MISMATCH"
	ErrCodeTimeout         = "TIMEOUT_ERROR"
	ErrCodeUnknownKind     = "UNKNOWN_ELEMENT_KIND"

	// Setup errors
	ErrCodeConfiguration = "CONFIGURATION_ERROR"
	ErrCodeApplication   = "APPLICATION_ERROR"
)

// AppError is the base error type for lookup and setup failures
type AppError struct {
	// Error code for programmatic handling
	Code string `json:"code"`

	// Human-readable message, localized when it describes a lookup
	Message string `json:"message"`

	// Original error (for error wrapping)
	Cause error `json:"-"`

	// Metadata for diagnostics (locator, element name, state, ...)
	Metadata map[string]interface{} `json:"metadata,omitempty"`

	// Timestamp when error occurred
	Timestamp time.Time `json:"timestamp"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for error comparison by code
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithCause adds the underlying cause
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

// WithMetadata adds metadata to the error
func (e *AppError) WithMetadata(key string, value interface{}) *AppError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// NewError creates a new AppError
func NewError(code, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Sentinels for errors.Is; any AppError with the same code matches
var (
	ErrElementNotFound    = &AppError{Code: ErrCodeElementNotFound, Message: "element not found"}
	ErrElementsCount      = &AppError{Code: ErrCodeElementsCount, Message: "elements count policy violated"}
	ErrTimeout            = &AppError{Code: ErrCodeTimeout, Message: "timed out"}
	ErrUnknownElementKind = &AppError{Code: ErrCodeUnknownKind, Message: "unknown element kind"}
	ErrConfiguration      = &AppError{Code: ErrCodeConfiguration, Message: "invalid configuration"}
)

// ElementNotFound reports a single-element lookup that timed out
func ElementNotFound(message, locator, name, state string, cause error) *AppError {
	return NewError(ErrCodeElementNotFound, message).
		WithCause(cause).
		WithMetadata("locator", locator).
		WithMetadata("name", name).
		WithMetadata("state", state)
}

// ElementsCountMismatch reports a collection lookup whose final count violates the policy
func ElementsCountMismatch(message, locator, count string, found int, cause error) *AppError {
	return NewError(ErrCodeElementsCount, message).
		WithCause(cause).
		WithMetadata("locator", locator).
		WithMetadata("count", count).
		WithMetadata("found", found)
}

// Timeout reports a condition that did not hold within the given bound
func Timeout(operation string, after time.Duration, cause error) *AppError {
	return NewError(ErrCodeTimeout, fmt.Sprintf("%s did not complete within %s", operation, after)).
		WithCause(cause).
		WithMetadata("timeout", after.String())
}

// UnknownElementKind reports a registry miss
func UnknownElementKind(kind string) *AppError {
	return NewError(ErrCodeUnknownKind, fmt.Sprintf("no element supplier registered for kind %q", kind)).
		WithMetadata("kind", kind)
}

// ConfigurationError wraps a failure to build configuration
func ConfigurationError(message string, err error) *AppError {
	return NewError(ErrCodeConfiguration, message).WithCause(err)
}

// ApplicationError wraps a failure to start or stop the application
func ApplicationError(message string, err error) *AppError {
	return NewError(ErrCodeApplication, message).WithCause(err)
}

// AsAppError extracts an AppError from an error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetErrorCode returns the code of the outermost AppError, or "" if none
func GetErrorCode(err error) string {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ""
}
