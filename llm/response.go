package llm

import (
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// ContextLengthPredicate reports whether a 400 response body describes an exceeded
// context window. Each provider supplies its own.
type ContextLengthPredicate func(body []byte) bool

// ClassifyStatus maps a non-success HTTP status to an error kind without inspecting the body.
// A 400 maps to ErrorKindRequestFailed; HandleResponse refines it with a predicate.
func ClassifyStatus(statusCode int) ErrorKind {
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrorKindAuthentication
	case http.StatusInternalServerError, http.StatusServiceUnavailable:
		return ErrorKindServerError
	default:
		return ErrorKindRequestFailed
	}
}

// HandleResponse turns an HTTP status and body into nil on success or a ProviderError.
// isContextLength may be nil for providers without a recognisable marker.
func HandleResponse(statusCode int, body []byte, isContextLength ContextLengthPredicate) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	if statusCode == http.StatusBadRequest && isContextLength != nil && isContextLength(body) {
		return NewContextLengthError(ErrorMessage(body), statusCode, string(body))
	}

	switch ClassifyStatus(statusCode) {
	case ErrorKindAuthentication:
		return NewAuthenticationError(statusCode, string(body))
	case ErrorKindServerError:
		return NewServerError(statusCode, string(body))
	default:
		return NewRequestFailedError(statusCode, string(body))
	}
}

// ErrorMessage extracts the human readable message of a provider error body,
// falling back to the raw body.
func ErrorMessage(body []byte) string {
	for _, path := range []string{"error.message", "message", "error"} {
		if result := gjson.GetBytes(body, path); result.Type == gjson.String && result.Str != "" {
			return result.Str
		}
	}
	return truncate(string(body))
}

// IsOpenAIContextLengthError recognises the OpenAI-compatible error envelope codes for
// an over-long prompt.
func IsOpenAIContextLengthError(body []byte) bool {
	switch gjson.GetBytes(body, "error.code").String() {
	case "context_length_exceeded", "string_above_max_length":
		return true
	default:
		return false
	}
}

// IsBedrockContextLengthError recognises the Bedrock proxy envelope reporting an
// over-long prompt from the upstream model.
func IsBedrockContextLengthError(body []byte) bool {
	for _, path := range []string{"error.external_model_message.message", "external_model_message.message"} {
		message := gjson.GetBytes(body, path)
		if message.Type == gjson.String && strings.Contains(strings.ToLower(message.Str), "too long") {
			return true
		}
	}
	return false
}

// GetModel returns the top-level model name of a provider response, or "Unknown".
func GetModel(body []byte) string {
	model := gjson.GetBytes(body, "model")
	if model.Type != gjson.String {
		return "Unknown"
	}
	return model.Str
}
