package errors

import (
	"fmt"
	"net/http"

	"github.com/kbukum/errdispatch/errtype"
)

// HTTPErrorType is the hierarchy node of the built-in HTTP error convention.
var HTTPErrorType = errtype.New("HTTPError")

// HTTPError is an error that maps directly onto an HTTP response.
type HTTPError struct {
	// Status is the HTTP status code. Callers should supply a 4xx or 5xx
	// status; it is not validated.
	Status int
	// Detail is an optional human-readable or structured payload.
	Detail any
	// Code is an optional machine-readable error code.
	Code ErrorCode
	// Cause is the underlying error, never sent to clients.
	Cause error
}

var _ errtype.Typed = (*HTTPError)(nil)

// New creates an HTTPError with the given status and detail. The error code
// defaults to the one registered for the status.
func New(status int, detail any) *HTTPError {
	return &HTTPError{Status: status, Detail: detail, Code: CodeForStatus(status)}
}

// Error returns the string representation of the error.
func (e *HTTPError) Error() string {
	msg := fmt.Sprintf("%d %s", e.Status, e.Title())
	if e.HasDetail() {
		msg = fmt.Sprintf("%s: %v", msg, e.Detail)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s (cause: %v)", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause of the error.
func (e *HTTPError) Unwrap() error { return e.Cause }

// ErrorType implements errtype.Typed.
func (e *HTTPError) ErrorType() *errtype.Type { return HTTPErrorType }

// Title returns the standard reason phrase of the status code.
func (e *HTTPError) Title() string {
	if t := http.StatusText(e.Status); t != "" {
		return t
	}
	return "Unknown Error"
}

// HasDetail reports whether a non-empty detail is attached.
func (e *HTTPError) HasDetail() bool {
	switch d := e.Detail.(type) {
	case nil:
		return false
	case string:
		return d != ""
	default:
		return true
	}
}

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *HTTPError) WithCause(cause error) *HTTPError {
	e.Cause = cause
	return e
}

// WithCode sets the machine-readable error code and returns the receiver.
func (e *HTTPError) WithCode(code ErrorCode) *HTTPError {
	e.Code = code
	return e
}

// --- Common Error Constructors ---

// BadRequest creates a 400 HTTPError.
func BadRequest(detail any) *HTTPError { return New(http.StatusBadRequest, detail) }

// Unauthorized creates a 401 HTTPError.
func Unauthorized(detail any) *HTTPError { return New(http.StatusUnauthorized, detail) }

// Forbidden creates a 403 HTTPError.
func Forbidden(detail any) *HTTPError { return New(http.StatusForbidden, detail) }

// NotFound creates a 404 HTTPError.
func NotFound(detail any) *HTTPError { return New(http.StatusNotFound, detail) }

// MethodNotAllowed creates a 405 HTTPError.
func MethodNotAllowed(detail any) *HTTPError { return New(http.StatusMethodNotAllowed, detail) }

// Conflict creates a 409 HTTPError.
func Conflict(detail any) *HTTPError { return New(http.StatusConflict, detail) }

// TooManyRequests creates a 429 HTTPError.
func TooManyRequests(detail any) *HTTPError { return New(http.StatusTooManyRequests, detail) }

// Internal creates a 500 HTTPError wrapping cause. The cause is kept for
// logging and never rendered.
func Internal(cause error) *HTTPError {
	return New(http.StatusInternalServerError, nil).WithCause(cause)
}

// ServiceUnavailable creates a 503 HTTPError.
func ServiceUnavailable(detail any) *HTTPError {
	return New(http.StatusServiceUnavailable, detail)
}
