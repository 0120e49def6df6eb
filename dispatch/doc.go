// Package dispatch resolves errors raised while handling a request to the
// handler registered for their type, and renders a fallback response when no
// handler applies.
//
// # Registration
//
// Handlers are bound to errtype.Type nodes during application setup:
//
//	reg := dispatch.NewRegistry()
//	reg.Register(ErrGame, gameOver)
//	reg.Register(ErrWin, youWin)
//	d := dispatch.NewDispatcher(dispatch.WithRegistry(reg))
//
// The most specific binding wins: an exact type beats any ancestor and a
// closer ancestor beats a farther one. Bindings at equal distance, including
// repeated registrations of one type, resolve to the most recent. A binding
// for errtype.Root is a catch-all and only applies when nothing else does.
//
// Every registry is seeded with the HTTP error convention handler for
// errors.HTTPErrorType, which applications override by registering their own
// handler for that type.
//
// # Lifecycle
//
// A registry is mutable until Freeze and immutable afterwards. Registering on
// a frozen registry panics. Frozen registries are read without locking and
// memoize resolutions per type, so they can be shared by any number of
// concurrent requests. The dispatcher freezes its registry on first use at
// the latest.
//
// # Outcomes
//
// Dispatch ends in exactly one of three ways:
//
//   - Handled: the handler's response is written and nil is returned.
//   - Unhandled: the fallback response is written and the original error is
//     returned so an outer layer can log it.
//   - Handler failure: the handler returned an error; nothing is written and
//     that error is returned unmodified. Handlers are trusted code and their
//     panics are not recovered here.
//
// The response is written at most once per dispatch.
//
// # Adapters
//
// Handle wraps a net/http view that returns its error, and Gin installs the
// same flow as Gin middleware for views that call c.Error. Both recover view
// panics, pass unhandled errors to the Reporter and re-panic with a handler
// failure so the server's recovery middleware answers the request.
package dispatch
