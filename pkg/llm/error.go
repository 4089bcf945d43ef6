package llm

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind discriminates the categories of client errors. Callers
// branch on the kind via errors.As rather than on error strings.
type ErrorKind int

const (
	// KindValidation means caller-supplied arguments failed local checks.
	// No network call was made.
	KindValidation ErrorKind = iota
	// KindConnection means the transport could not reach the API
	// (DNS failure, connection refused, reset).
	KindConnection
	// KindTimeout means the configured timeout elapsed before a response
	// arrived.
	KindTimeout
	// KindAPI means the API returned an error status or an unusable body.
	KindAPI
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation error"
	case KindConnection:
		return "connection error"
	case KindTimeout:
		return "timeout"
	case KindAPI:
		return "api error"
	}
	return "unknown error"
}

// Error is the single error type surfaced by the client.
type Error struct {
	Kind       ErrorKind
	Message    string
	StatusCode int    // HTTP status, set for KindAPI
	Body       string // raw response body for KindAPI, when available
	Err        error  // wrapped cause, when any
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (status %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Transient reports whether retrying the identical request may succeed.
// Connection failures, timeouts, rate limits and server errors qualify;
// validation errors and other client errors do not.
func (e *Error) Transient() bool {
	switch e.Kind {
	case KindConnection, KindTimeout:
		return true
	case KindAPI:
		return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
	}
	return false
}

// NewValidationError creates a KindValidation error.
func NewValidationError(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// NewConnectionError creates a KindConnection error wrapping cause.
func NewConnectionError(msg string, cause error) *Error {
	return &Error{Kind: KindConnection, Message: msg, Err: cause}
}

// NewTimeoutError creates a KindTimeout error wrapping cause.
func NewTimeoutError(msg string, cause error) *Error {
	return &Error{Kind: KindTimeout, Message: msg, Err: cause}
}

// NewAPIError creates a KindAPI error carrying the HTTP status and the
// raw response body.
func NewAPIError(status int, msg, body string) *Error {
	return &Error{Kind: KindAPI, Message: msg, StatusCode: status, Body: body}
}

// IsTransient reports whether err is (or wraps) a transient client error.
func IsTransient(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Transient()
}
