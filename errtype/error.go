package errtype

import (
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// StackTracer is implemented by errors that carry the call stack recorded
// where they were created.
type StackTracer interface {
	StackTrace() pkgerrors.StackTrace
}

// Error is a generic error value tagged with a Type. It records the call stack
// of its creation.
type Error struct {
	typ   *Type
	inner error
}

// New creates an error of type t with the given message.
func (t *Type) New(msg string) *Error {
	return &Error{typ: t, inner: pkgerrors.New(msg)}
}

// Errorf creates an error of type t with a formatted message. The %w verb
// wraps its operand.
func (t *Type) Errorf(format string, args ...any) *Error {
	return &Error{typ: t, inner: pkgerrors.WithStack(fmt.Errorf(format, args...))}
}

// Wrap creates an error of type t that annotates cause with msg. A nil cause
// behaves like New.
func (t *Type) Wrap(cause error, msg string) *Error {
	if cause == nil {
		return &Error{typ: t, inner: pkgerrors.New(msg)}
	}
	return &Error{typ: t, inner: pkgerrors.Wrap(cause, msg)}
}

// Error implements error.
func (e *Error) Error() string { return e.inner.Error() }

// ErrorType implements Typed.
func (e *Error) ErrorType() *Type { return e.typ }

// Unwrap exposes the wrapped cause chain to errors.Is and errors.As.
func (e *Error) Unwrap() error { return pkgerrors.Unwrap(e.inner) }

// StackTrace returns the frames recorded at creation, starting at the caller
// of the constructor.
func (e *Error) StackTrace() pkgerrors.StackTrace {
	st, ok := e.inner.(StackTracer)
	if !ok {
		return nil
	}
	frames := st.StackTrace()
	if len(frames) > 1 {
		return frames[1:]
	}
	return frames
}

// Format supports %+v to print the message followed by the stack.
func (e *Error) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			fmt.Fprintf(s, "%s: %s", e.typ.name, e.Error())
			fmt.Fprintf(s, "%+v", e.StackTrace())
			return
		}
		fallthrough
	case 's':
		fmt.Fprint(s, e.Error())
	case 'q':
		fmt.Fprintf(s, "%q", e.Error())
	}
}
