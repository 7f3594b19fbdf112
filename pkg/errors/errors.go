// Package errors defines the error taxonomy shared by every layer: AppError
// for internal failures with stack context, and DomainError for categorized
// conditions the HTTP envelope exposes to clients.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
)

// ErrorType classifies an AppError.
type ErrorType string

const (
	ErrorTypeValidation  ErrorType = "VALIDATION"
	ErrorTypeNotFound    ErrorType = "NOT_FOUND"
	ErrorTypeInternal    ErrorType = "INTERNAL"
	ErrorTypeTimeout     ErrorType = "TIMEOUT"
	ErrorTypeUnavailable ErrorType = "UNAVAILABLE"
	ErrorTypeExternal    ErrorType = "EXTERNAL"
)

// AppError carries a classification, an optional machine code and details,
// the wrapped cause, and the stack at construction time.
type AppError struct {
	Type       ErrorType              `json:"type"`
	Message    string                 `json:"message"`
	Code       string                 `json:"code,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	StackTrace string                 `json:"-"`
	HTTPStatus int                    `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the wrapped cause.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCode sets the machine-readable code.
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// WithDetails sets structured context.
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

// WithCause wraps an underlying error.
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

// newAppError builds an error of the given type. skip is the number of
// wrapper frames between the call site of interest and newAppError, so the
// captured trace starts at the code that constructed the error.
func newAppError(errType ErrorType, message string, status, skip int) *AppError {
	return &AppError{
		Type:       errType,
		Message:    message,
		HTTPStatus: status,
		StackTrace: stack(skip + 3),
	}
}

// stack renders the current call stack. skip follows the runtime.Callers
// convention.
func stack(skip int) string {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(skip, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	var b strings.Builder
	for {
		frame, more := frames.Next()
		fmt.Fprintf(&b, "%s:%d %s\n", frame.File, frame.Line, frame.Function)
		if !more {
			return b.String()
		}
	}
}

// NewValidationError reports invalid input.
func NewValidationError(message string) *AppError {
	return newAppError(ErrorTypeValidation, message, http.StatusBadRequest, 1)
}

// NewNotFoundError reports a missing entity by name.
func NewNotFoundError(resource string) *AppError {
	return newAppError(ErrorTypeNotFound, resource+" not found", http.StatusNotFound, 1)
}

// NewInternalError reports an unexpected failure.
func NewInternalError(message string) *AppError {
	return newAppError(ErrorTypeInternal, message, http.StatusInternalServerError, 1)
}

// NewTimeoutError reports an operation that exceeded its deadline.
func NewTimeoutError(operation string) *AppError {
	return newAppError(ErrorTypeTimeout,
		fmt.Sprintf("operation %q timed out", operation), http.StatusGatewayTimeout, 1)
}

// NewUnavailableError reports a dependency that refused service.
func NewUnavailableError(service string) *AppError {
	return newAppError(ErrorTypeUnavailable,
		fmt.Sprintf("service %q is unavailable", service), http.StatusServiceUnavailable, 1)
}

// NewExternalError reports a failure inside an external dependency.
func NewExternalError(service string, err error) *AppError {
	return newAppError(ErrorTypeExternal,
		fmt.Sprintf("external service %q error", service), http.StatusBadGateway, 1).
		WithCause(err)
}

// GetAppError extracts an AppError from anywhere in the chain, or nil.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsType reports whether the chain contains an AppError of the given type.
func IsType(err error, errType ErrorType) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == errType
}

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool { return IsType(err, ErrorTypeNotFound) }

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool { return IsType(err, ErrorTypeValidation) }

// IsTimeout reports whether err is a timeout error.
func IsTimeout(err error) bool { return IsType(err, ErrorTypeTimeout) }

// IsUnavailable reports whether err is an unavailable error.
func IsUnavailable(err error) bool { return IsType(err, ErrorTypeUnavailable) }

// Wrap prefixes an AppError's message in place, or converts a plain error
// into an internal AppError with the original as cause. A nil err stays nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr := GetAppError(err); appErr != nil {
		appErr.Message = message + ": " + appErr.Message
		return appErr
	}
	return newAppError(ErrorTypeInternal, message, http.StatusInternalServerError, 1).
		WithCause(err)
}

// Wrapf is Wrap with a formatted message.
func Wrapf(err error, format string, args ...interface{}) error {
	return Wrap(err, fmt.Sprintf(format, args...))
}
