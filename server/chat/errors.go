package chat

import (
	"fmt"
)

// ErrorCode classifies pipeline failures for logging and transport mapping.
type ErrorCode string

const (
	// ErrCodeRoutingFailed is defensive; routing is a total function.
	ErrCodeRoutingFailed ErrorCode = "ROUTING_FAILED"
	// ErrCodeContextBuildFailed indicates history compaction failed,
	// usually because the summarization call failed.
	ErrCodeContextBuildFailed ErrorCode = "CONTEXT_BUILD_FAILED"
	// ErrCodeProviderFailed indicates a non-streaming provider failure.
	ErrCodeProviderFailed ErrorCode = "PROVIDER_FAILED"
	// ErrCodeProviderStreamFailed indicates a pre- or mid-stream failure.
	ErrCodeProviderStreamFailed ErrorCode = "PROVIDER_STREAM_FAILED"
	// ErrCodeNoResponse indicates the stream ended without its terminal event.
	ErrCodeNoResponse ErrorCode = "NO_RESPONSE"
)

// Error is a structured error for the chat pipeline.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Convenience constructors for common error types.

func ContextBuildFailed(cause error) *Error {
	return &Error{Code: ErrCodeContextBuildFailed, Message: "failed to build context window", Cause: cause}
}

func ProviderFailed(cause error) *Error {
	return &Error{Code: ErrCodeProviderFailed, Message: "provider request failed", Cause: cause}
}

func ProviderStreamFailed(cause error) *Error {
	return &Error{Code: ErrCodeProviderStreamFailed, Message: "provider stream failed", Cause: cause}
}

func NoResponse() *Error {
	return &Error{Code: ErrCodeNoResponse, Message: "stream ended without a terminal response"}
}

// IsCode checks if an error is of a specific code.
func IsCode(err error, code ErrorCode) bool {
	if chatErr, ok := err.(*Error); ok {
		return chatErr.Code == code
	}
	return false
}
