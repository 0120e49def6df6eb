package dispatch

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/kbukum/errdispatch/errtype"
	"github.com/kbukum/errdispatch/logger"
)

// HandlerFunc is a view that fails by returning an error.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Reporter receives errors re-raised by the HTTP adapter after the fallback
// response has been sent.
type Reporter interface {
	Report(r *http.Request, err error, errorID string)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(r *http.Request, err error, errorID string)

// Report implements Reporter.
func (f ReporterFunc) Report(r *http.Request, err error, errorID string) { f(r, err, errorID) }

// LogReporter logs re-raised errors at error level with their stack.
type LogReporter struct {
	log *logger.Logger
}

// NewLogReporter creates a LogReporter writing to l.
func NewLogReporter(l *logger.Logger) *LogReporter {
	return &LogReporter{log: l}
}

// Report implements Reporter.
func (lr *LogReporter) Report(r *http.Request, err error, errorID string) {
	fields := logger.ErrorFields(errtype.Of(err).Name(), err)
	if errorID != "" {
		fields[logger.FieldErrorID] = errorID
	}
	if stack := StackOf(err); stack != "" {
		fields[logger.FieldStack] = stack
	}
	lr.log.WithRequest(r).Error("unhandled error", fields)
}

// PanicError is the error dispatched for a panic recovered from a view. It
// unwraps to the panic value when that value is an error, so a view that
// panics with a typed error resolves like one that returns it.
type PanicError struct {
	Value any
	stack []byte
}

// NewPanicError wraps a recovered panic value with the current stack.
func NewPanicError(v any) *PanicError {
	return &PanicError{Value: v, stack: debug.Stack()}
}

// Error implements error.
func (e *PanicError) Error() string { return fmt.Sprintf("panic: %v", e.Value) }

// Unwrap returns the panic value if it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// Stack returns the stack captured at recovery.
func (e *PanicError) Stack() []byte { return e.stack }

// StackOf renders the best available stack for err: a recovered panic stack
// or the creation stack of a typed error. It is empty when err carries none.
func StackOf(err error) string {
	stack, _ := stackOf(err)
	return stack
}

// Handle adapts h to http.Handler. Errors returned by h, and panics raised
// by it, are dispatched. Re-raised errors go to the Reporter. A failing
// error handler panics with its error so the outer recovery middleware
// sees it.
func (d *Dispatcher) Handle(h HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tw := NewTrackingWriter(w)
		err := runView(h, tw, r)
		if err == nil {
			return
		}
		result := d.DispatchResult(tw, r, err)
		switch result.Outcome {
		case OutcomeUnhandled:
			d.reporter.Report(r, result.Err, result.ErrorID)
		case OutcomeHandlerFailed:
			panic(result.Err)
		}
	})
}

func runView(h HandlerFunc, w http.ResponseWriter, r *http.Request) (err error) {
	defer func() {
		if v := recover(); v != nil {
			if v == http.ErrAbortHandler {
				panic(v)
			}
			err = NewPanicError(v)
		}
	}()
	return h(w, r)
}
