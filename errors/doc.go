// Package errors provides the built-in HTTP error convention.
//
// An HTTPError carries a status code and a detail payload. The dispatch
// package pre-registers a handler for HTTPErrorType that writes the status
// and serializes the detail, so views can fail with
//
//	return errors.NotFound("no such game")
//
// and the client receives a 404 with body "no such game".
package errors
