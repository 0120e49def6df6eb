package errors

import (
	stderrors "errors"
	"net/http"
)

// ErrorResponse is the structured media body of an HTTPError.
type ErrorResponse struct {
	Error  string    `json:"error"`
	Status int       `json:"status"`
	Code   ErrorCode `json:"code,omitempty"`
	Detail any       `json:"detail,omitempty"`
}

// ToResponse converts an HTTPError to an ErrorResponse for serialization.
func (e *HTTPError) ToResponse() ErrorResponse {
	resp := ErrorResponse{
		Error:  e.Title(),
		Status: e.Status,
		Code:   e.Code,
	}
	if e.HasDetail() {
		resp.Detail = e.Detail
	}
	return resp
}

// IsHTTPError checks if an error is, or wraps, an HTTPError.
func IsHTTPError(err error) bool {
	var httpErr *HTTPError
	return stderrors.As(err, &httpErr)
}

// AsHTTPError extracts the HTTPError from err's chain if present.
func AsHTTPError(err error) (*HTTPError, bool) {
	var httpErr *HTTPError
	if stderrors.As(err, &httpErr) {
		return httpErr, true
	}
	return nil, false
}

// StatusOf returns the status carried by err, or 500 when err carries none.
func StatusOf(err error) int {
	if httpErr, ok := AsHTTPError(err); ok {
		return httpErr.Status
	}
	return http.StatusInternalServerError
}
