package llm

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// maxErrorBody bounds how much of a provider response body an error carries.
const maxErrorBody = 2000

// ProviderError represents a provider-neutral failure of a Complete call.
type ProviderError struct {
	Kind       ErrorKind
	Message    string
	StatusCode int    // HTTP status, 0 when not applicable
	Body       string // Response body excerpt
	Err        error  // Original provider-specific error
}

// ErrorKind represents the category of a ProviderError. The set is closed.
type ErrorKind string

const (
	ErrorKindAuthentication        ErrorKind = "authentication"
	ErrorKindContextLengthExceeded ErrorKind = "context_length_exceeded"
	ErrorKindServerError           ErrorKind = "server_error"
	ErrorKindRequestFailed         ErrorKind = "request_failed"
)

func (k ErrorKind) label() string {
	switch k {
	case ErrorKindAuthentication:
		return "Authentication error"
	case ErrorKindContextLengthExceeded:
		return "Context length exceeded"
	case ErrorKindServerError:
		return "Server error"
	default:
		return "Request failed"
	}
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	msg := e.Kind.label() + ": " + e.Message
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying provider error.
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Retryable reports whether resubmitting the same request may succeed.
func (e *ProviderError) Retryable() bool {
	return e.Kind == ErrorKindServerError
}

// AsProviderError extracts a ProviderError from an error chain.
func AsProviderError(err error) (*ProviderError, bool) {
	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr, true
	}
	return nil, false
}

func isKind(err error, kind ErrorKind) bool {
	providerErr, ok := AsProviderError(err)
	return ok && providerErr.Kind == kind
}

// IsAuthenticationError checks if an error is an authentication error.
func IsAuthenticationError(err error) bool {
	return isKind(err, ErrorKindAuthentication)
}

// IsContextLengthError checks if an error reports an exceeded context window.
func IsContextLengthError(err error) bool {
	return isKind(err, ErrorKindContextLengthExceeded)
}

// IsServerError checks if an error is a provider-side server error.
func IsServerError(err error) bool {
	return isKind(err, ErrorKindServerError)
}

// IsRetryableError checks if an error is retryable.
func IsRetryableError(err error) bool {
	providerErr, ok := AsProviderError(err)
	return ok && providerErr.Retryable()
}

// NewAuthenticationError creates a new authentication error.
func NewAuthenticationError(statusCode int, body string) *ProviderError {
	return &ProviderError{
		Kind: ErrorKindAuthentication,
		Message: fmt.Sprintf("Authentication failed. Please ensure your API keys are valid and have the required permissions. Status: %d. Response: %s",
			statusCode, truncate(body)),
		StatusCode: statusCode,
		Body:       truncate(body),
	}
}

// NewContextLengthError creates a new context length exceeded error.
func NewContextLengthError(message string, statusCode int, body string) *ProviderError {
	return &ProviderError{
		Kind:       ErrorKindContextLengthExceeded,
		Message:    message,
		StatusCode: statusCode,
		Body:       truncate(body),
	}
}

// NewServerError creates a new server error.
func NewServerError(statusCode int, body string) *ProviderError {
	return &ProviderError{
		Kind:       ErrorKindServerError,
		Message:    fmt.Sprintf("Server error occurred. Status: %d", statusCode),
		StatusCode: statusCode,
		Body:       truncate(body),
	}
}

// NewRequestFailedError creates a new request failed error.
func NewRequestFailedError(statusCode int, body string) *ProviderError {
	return &ProviderError{
		Kind:       ErrorKindRequestFailed,
		Message:    fmt.Sprintf("Request failed with status: %d. Payload: %s", statusCode, truncate(body)),
		StatusCode: statusCode,
		Body:       truncate(body),
	}
}

// NewProviderError creates an error of any kind, truncating the body excerpt.
func NewProviderError(kind ErrorKind, statusCode int, message, body string) *ProviderError {
	return &ProviderError{
		Kind:       kind,
		Message:    message,
		StatusCode: statusCode,
		Body:       truncate(body),
	}
}

// WrapProviderError wraps an SDK error that has no HTTP status into a request failure.
func WrapProviderError(message string, err error) *ProviderError {
	return &ProviderError{
		Kind:    ErrorKindRequestFailed,
		Message: message,
		Err:     err,
	}
}

// ToolError represents a failure tied to a single tool request or response.
// It is embedded in message content instead of failing the call.
type ToolError struct {
	Kind    ToolErrorKind
	Message string
}

// ToolErrorKind represents the category of a ToolError.
type ToolErrorKind string

const (
	ToolErrorKindNotFound          ToolErrorKind = "tool_not_found"
	ToolErrorKindInvalidParameters ToolErrorKind = "invalid_parameters"
	ToolErrorKindExecution         ToolErrorKind = "execution_failed"
	ToolErrorKindInternal          ToolErrorKind = "internal"
)

// Error implements the error interface.
func (e *ToolError) Error() string {
	switch e.Kind {
	case ToolErrorKindNotFound:
		return "Tool not found: " + e.Message
	case ToolErrorKindInvalidParameters:
		return "Invalid parameters: " + e.Message
	case ToolErrorKindExecution:
		return "Execution failed: " + e.Message
	default:
		return "Internal error: " + e.Message
	}
}

// NewToolNotFoundError creates a tool-not-found error.
func NewToolNotFoundError(message string) *ToolError {
	return &ToolError{Kind: ToolErrorKindNotFound, Message: message}
}

// NewInvalidParametersError creates an invalid-parameters error.
func NewInvalidParametersError(message string) *ToolError {
	return &ToolError{Kind: ToolErrorKindInvalidParameters, Message: message}
}

// NewExecutionError creates a tool execution error.
func NewExecutionError(message string) *ToolError {
	return &ToolError{Kind: ToolErrorKindExecution, Message: message}
}

// InvalidFunctionNameError builds the ToolNotFound error reported for a model-issued
// function name outside the accepted charset.
func InvalidFunctionNameError(name string) *ToolError {
	return NewToolNotFoundError(fmt.Sprintf(
		"The provided function name '%s' had invalid characters, it must match this regex [a-zA-Z0-9_-]+", name))
}

// truncate cuts s to at most maxErrorBody bytes on a rune boundary.
func truncate(s string) string {
	if len(s) <= maxErrorBody {
		return s
	}
	cut := maxErrorBody
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
