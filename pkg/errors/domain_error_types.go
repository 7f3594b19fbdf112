package errors

import "fmt"

// DomainErrorType categorizes a domain error and drives its HTTP status.
type DomainErrorType string

const (
	DomainValidationError  DomainErrorType = "VALIDATION_ERROR"
	DomainNotFoundError    DomainErrorType = "NOT_FOUND"
	DomainConflictError    DomainErrorType = "CONFLICT"
	DomainUnavailableError DomainErrorType = "UNAVAILABLE_ERROR"
	DomainRateLimitError   DomainErrorType = "RATE_LIMIT_ERROR"
	DomainTimeoutError     DomainErrorType = "TIMEOUT_ERROR"
)

var domainStatus = map[DomainErrorType]int{
	DomainValidationError:  400,
	DomainNotFoundError:    404,
	DomainConflictError:    409,
	DomainUnavailableError: 503,
	DomainRateLimitError:   429,
	DomainTimeoutError:     504,
}

// DomainError is a categorized error carrying the stable code and details
// the HTTP envelope exposes to clients.
type DomainError struct {
	Type       DomainErrorType        `json:"type"`
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	Retryable  bool                   `json:"retryable"`
	StatusCode int                    `json:"status_code"`
}

// NewDomainError creates a domain error with the status implied by its type.
func NewDomainError(errorType DomainErrorType, code, message string) *DomainError {
	status, ok := domainStatus[errorType]
	if !ok {
		status = 500
	}
	return &DomainError{
		Type:       errorType,
		Code:       code,
		Message:    message,
		Details:    make(map[string]interface{}),
		StatusCode: status,
	}
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Type, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Type, e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is matches on type and code, so errors.Is works against the predefined
// Err* values regardless of per-request details.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

// Clone returns a copy whose details can be extended safely. The predefined
// Err* values are shared; callers that add request-specific details must
// clone first.
func (e *DomainError) Clone() *DomainError {
	details := make(map[string]interface{}, len(e.Details))
	for k, v := range e.Details {
		details[k] = v
	}
	clone := *e
	clone.Details = details
	return &clone
}

// WithCause attaches the underlying error.
func (e *DomainError) WithCause(cause error) *DomainError {
	e.Cause = cause
	return e
}

// WithDetail adds one detail entry.
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	e.Details[key] = value
	return e
}

// WithDetails merges several detail entries.
func (e *DomainError) WithDetails(details map[string]interface{}) *DomainError {
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithRetryable marks whether the client may retry the same request.
func (e *DomainError) WithRetryable(retryable bool) *DomainError {
	e.Retryable = retryable
	return e
}

// Predefined domain errors. Handlers clone these before adding
// request-specific details.
var (
	// Catalog lookups.
	ErrResourceNotFound = NewDomainError(DomainNotFoundError,
		"RESOURCE_NOT_FOUND", "Resource not found")
	ErrInvalidUUID = NewDomainError(DomainValidationError,
		"INVALID_UUID", "Invalid UUID format")
	ErrDuplicateResourceID = NewDomainError(DomainConflictError,
		"DUPLICATE_RESOURCE_ID", "A resource with this id already exists in the catalog")

	// Tag search input.
	ErrMissingTag = NewDomainError(DomainValidationError,
		"MISSING_TAG", "Tag parameter is required")
	ErrTagTooLong = NewDomainError(DomainValidationError,
		"TAG_TOO_LONG", "Tag exceeds maximum length of 100 characters").
		WithDetail("max_length", 100)

	// Natural-language search input.
	ErrMissingQuery = NewDomainError(DomainValidationError,
		"MISSING_QUERY", "Query parameter is required")
	ErrQueryTooLong = NewDomainError(DomainValidationError,
		"QUERY_TOO_LONG", "Query exceeds maximum length")
	ErrInvalidMaxTokens = NewDomainError(DomainValidationError,
		"INVALID_MAX_TOKENS", "max_tokens must be between 100 and 8192").
		WithDetail("min", 100).WithDetail("max", 8192)

	// Model runtime, as observed by the startup probe.
	ErrServiceUnavailable = NewDomainError(DomainUnavailableError,
		"SERVICE_UNAVAILABLE", "Semantic matching service is unavailable").
		WithRetryable(true)
	ErrOllamaDisconnected = NewDomainError(DomainUnavailableError,
		"OLLAMA_DISCONNECTED", "Ollama service is not reachable").
		WithRetryable(true)
	ErrModelNotRunning = NewDomainError(DomainUnavailableError,
		"MODEL_NOT_RUNNING", "Configured model is not running").
		WithRetryable(true)

	// Agent sessions.
	ErrAgentTimeout = NewDomainError(DomainTimeoutError,
		"AGENT_TIMEOUT", "Agent did not complete within the configured deadline").
		WithRetryable(true)
	ErrNoValidSources = NewDomainError(DomainNotFoundError,
		"NO_VALID_SOURCES", "All candidate resources failed link verification")

	// Request throttling.
	ErrRateLimitExceeded = NewDomainError(DomainRateLimitError,
		"RATE_LIMIT_EXCEEDED", "Too many requests, please try again later").
		WithRetryable(true)
)
