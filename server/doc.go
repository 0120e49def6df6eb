// Package server provides the HTTP server for errdispatch applications: a
// Gin engine behind h2c, with error dispatch wired into every route.
//
// # Middleware
//
// Applied at the server level (server/middleware), outermost first:
//
//   - Recovery: catches panics that escaped dispatch, such as a failing error handler
//   - RequestID: X-Request-Id generation and propagation
//   - Tracing: one server span per request
//   - RequestLogger: request logging with status, duration and incident id
//
// The dispatcher's Gin middleware sits on the engine itself, so views report
// failures with c.Error or by panicking.
//
// # Lifecycle
//
// Start freezes the handler registry before the listener is bound.
package server
