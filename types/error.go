package types

import "fmt"

// ErrorCode represents a unified error code across the framework.
type ErrorCode string

const (
	// ErrInvalidArgument marks caller misuse: a missing or empty required
	// argument. Raised immediately; never used for expected negative
	// outcomes such as an unknown conversation id.
	ErrInvalidArgument ErrorCode = "INVALID_ARGUMENT"

	// ErrConfiguration marks a missing or unusable credential, detected
	// before any network activity.
	ErrConfiguration ErrorCode = "CONFIGURATION"

	// ErrTransport marks a network failure, timeout, or non-success status
	// from the text-generation endpoint.
	ErrTransport ErrorCode = "TRANSPORT"

	// ErrProtocol marks a response that cannot be parsed into the expected
	// shape or that contains no candidate message.
	ErrProtocol ErrorCode = "PROTOCOL"

	// ErrContent marks a content-integrity diagnostic, such as a choice
	// pointing at a node that does not exist. These degrade gracefully and
	// are logged rather than raised.
	ErrContent ErrorCode = "CONTENT"
)

// Error represents a structured error with code, message, and metadata.
type Error struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	HTTPStatus int       `json:"http_status,omitempty"`
	Retryable  bool      `json:"retryable"`
	Cause      error     `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithHTTPStatus sets the HTTP status code.
func (e *Error) WithHTTPStatus(status int) *Error {
	e.HTTPStatus = status
	return e
}

// WithRetryable marks the error as retryable.
func (e *Error) WithRetryable(retryable bool) *Error {
	e.Retryable = retryable
	return e
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) ErrorCode {
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return ""
}

// IsCode reports whether err is an *Error carrying the given code.
func IsCode(err error, code ErrorCode) bool {
	return GetErrorCode(err) == code
}
