package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrorType represents the category of a client error.
type ErrorType int

// Error type constants categorize errors for proper handling by callers.
const (
	// ErrorTypeUnknown indicates an unclassified error.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeConfiguration indicates missing or invalid client configuration.
	// It is raised at construction and is fatal to that client instance.
	ErrorTypeConfiguration
	// ErrorTypeAuthentication indicates a failed token exchange, or an
	// authenticated call attempted without a token.
	ErrorTypeAuthentication
	// ErrorTypeTransport indicates the HTTP call failed or returned a non-2xx status.
	ErrorTypeTransport
	// ErrorTypeDecode indicates the response body did not parse or did not
	// satisfy the expected shape.
	ErrorTypeDecode
	// ErrorTypeAPI indicates HTTP succeeded but the embedded return code is nonzero.
	ErrorTypeAPI
	// ErrorTypeWebSocket indicates the websocket failed or closed unexpectedly.
	ErrorTypeWebSocket
)

// String returns the string representation of the error type.
func (t ErrorType) String() string {
	return [...]string{
		"UNKNOWN",
		"CONFIGURATION",
		"AUTHENTICATION",
		"TRANSPORT",
		"DECODE",
		"API",
		"WEBSOCKET",
	}[t]
}

// Sentinel errors for common error conditions.
var (
	// ErrClientClosed is returned when attempting to use a closed client.
	ErrClientClosed = errors.New("client is closed")
	// ErrNotAuthenticated is returned when an authenticated call is attempted without a token.
	ErrNotAuthenticated = errors.New("access token is not set")
	// ErrConnectionClosed is returned when the websocket connection is closed by the peer.
	ErrConnectionClosed = errors.New("connection closed")
)

// Error is the structured error produced by every layer of the client.
// It is never mutated after creation.
type Error struct {
	// Type categorizes the error for programmatic handling.
	Type ErrorType `json:"type"`
	// HTTPStatus is the HTTP status code, absent when no response was received.
	HTTPStatus Optional[int] `json:"http_status"`
	// APICode is the application return code, present only for API errors.
	APICode Optional[int] `json:"api_code"`
	// Message is the human-readable error description.
	Message string `json:"message"`
	// Field names the wire key that failed to decode.
	Field string `json:"field,omitempty"`
	// RawBody is the undecoded response body of a transport error.
	RawBody []byte `json:"-"`
	// Err is the underlying cause, if any.
	Err error `json:"-"`
	// Timestamp is when the error occurred.
	Timestamp time.Time `json:"timestamp"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("kiwoom: ")
	b.WriteString(e.Type.String())

	if code, ok := e.APICode.Get(); ok {
		fmt.Fprintf(&b, " [%d]", code)
	} else if status, ok := e.HTTPStatus.Get(); ok {
		fmt.Fprintf(&b, " (%d)", status)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, " %s", e.Field)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

func newError(errorType ErrorType, message string) *Error {
	return &Error{
		Type:      errorType,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// NewConfigurationError creates an error for invalid client configuration.
func NewConfigurationError(message string, cause error) *Error {
	e := newError(ErrorTypeConfiguration, message)
	e.Err = cause
	return e
}

// NewAuthenticationError creates an error for a failed or missing authentication.
func NewAuthenticationError(message string, cause error) *Error {
	e := newError(ErrorTypeAuthentication, message)
	e.Err = cause
	return e
}

// NewTransportError creates an error for a non-2xx HTTP response.
func NewTransportError(httpStatus int, message string, rawBody []byte) *Error {
	e := newError(ErrorTypeTransport, message)
	e.HTTPStatus = Some(httpStatus)
	e.RawBody = rawBody
	return e
}

// NewNetworkError creates a transport error for a call that produced no HTTP response.
func NewNetworkError(cause error) *Error {
	e := newError(ErrorTypeTransport, "request failed")
	e.Err = cause
	return e
}

// NewDecodeError creates an error naming the wire field that failed to decode.
// An empty field means the body as a whole was unusable.
func NewDecodeError(field, message string) *Error {
	e := newError(ErrorTypeDecode, message)
	e.Field = field
	return e
}

// NewAPIError creates an error for a nonzero application return code.
func NewAPIError(httpStatus, apiCode int, message string) *Error {
	e := newError(ErrorTypeAPI, message)
	e.HTTPStatus = Some(httpStatus)
	e.APICode = Some(apiCode)
	return e
}

// NewWebSocketError creates an error for a failed or closed websocket.
func NewWebSocketError(message string, cause error) *Error {
	e := newError(ErrorTypeWebSocket, message)
	e.Err = cause
	return e
}

// AsError extracts the *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func isType(err error, t ErrorType) bool {
	e, ok := AsError(err)
	return ok && e.Type == t
}

// IsConfigurationError returns true if the error is a configuration failure.
func IsConfigurationError(err error) bool {
	return isType(err, ErrorTypeConfiguration)
}

// IsAuthenticationError returns true if the error is an authentication failure.
// Authentication errors are recoverable by re-authenticating.
func IsAuthenticationError(err error) bool {
	return isType(err, ErrorTypeAuthentication)
}

// IsTransportError returns true if the error is a transport failure.
// The caller decides whether to retry.
func IsTransportError(err error) bool {
	return isType(err, ErrorTypeTransport)
}

// IsDecodeError returns true if the error is a schema mismatch.
// Decode errors are permanent for the call that produced them.
func IsDecodeError(err error) bool {
	return isType(err, ErrorTypeDecode)
}

// IsAPIError returns true if the error carries a nonzero application return code.
func IsAPIError(err error) bool {
	return isType(err, ErrorTypeAPI)
}

// IsWebSocketError returns true if the error is a websocket failure.
func IsWebSocketError(err error) bool {
	return isType(err, ErrorTypeWebSocket)
}
