package dispatch

import (
	"context"
	"net/http"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/kbukum/errdispatch/errtype"
	"github.com/kbukum/errdispatch/logger"
)

// HeaderErrorID carries the incident id of an unhandled error when
// Config.ExposeErrorID is set.
const HeaderErrorID = "X-Error-Id"

// Outcome is the terminal state of one dispatch.
type Outcome int

const (
	// OutcomeNone means there was nothing to dispatch.
	OutcomeNone Outcome = iota
	// OutcomeHandled means a handler produced the response; the error is swallowed.
	OutcomeHandled
	// OutcomeUnhandled means the fallback produced the response (or the
	// response was already committed); the error is re-raised.
	OutcomeUnhandled
	// OutcomeHandlerFailed means the resolved handler returned an error.
	OutcomeHandlerFailed
)

// String returns the outcome name used in logs and metrics.
func (o Outcome) String() string {
	switch o {
	case OutcomeHandled:
		return "handled"
	case OutcomeUnhandled:
		return "unhandled"
	case OutcomeHandlerFailed:
		return "handler_failed"
	default:
		return "none"
	}
}

// Result describes a completed dispatch.
type Result struct {
	Outcome Outcome
	// Err is what the caller must propagate: nil when handled, the original
	// error when unhandled, the handler's error on handler failure.
	Err error
	// Type is the resolved type of the dispatched error.
	Type *errtype.Type
	// Status is the status written to the client, 0 if nothing was written.
	Status int
	// ErrorID is the incident id of an unhandled error, if enabled.
	ErrorID string
}

// Event is reported to an Observer after every dispatch.
type Event struct {
	Outcome   Outcome
	ErrorType string
	Status    int
}

// Observer receives dispatch events, typically for metrics.
type Observer interface {
	ObserveDispatch(ctx context.Context, ev Event)
}

// Dispatcher resolves errors against a Registry and writes the response.
type Dispatcher struct {
	registry   *Registry
	convention Handler
	fallback   Fallback
	debug    atomic.Bool
	exposeID bool
	log      *logger.Logger
	observer Observer
	reporter Reporter
}

// Option configures a Dispatcher.
type Option func(*options)

type options struct {
	registry   *Registry
	fallback   Fallback
	convention Handler
	debug      bool
	exposeID   bool
	log        *logger.Logger
	observer   Observer
	reporter   Reporter
}

// WithRegistry sets the registry. Defaults to DefaultRegistry().
func WithRegistry(r *Registry) Option { return func(o *options) { o.registry = r } }

// WithFallback replaces the FallbackRenderer.
func WithFallback(f Fallback) Option { return func(o *options) { o.fallback = f } }

// WithConvention sets the handler this dispatcher uses in place of the
// registry's seeded HTTP error convention handler. The registry itself is not
// modified, so dispatchers sharing it can render differently.
func WithConvention(h Handler) Option { return func(o *options) { o.convention = h } }

// WithDebug sets the initial debug mode.
func WithDebug(debug bool) Option { return func(o *options) { o.debug = debug } }

// WithErrorID enables incident ids on unhandled errors.
func WithErrorID(enabled bool) Option { return func(o *options) { o.exposeID = enabled } }

// WithLogger sets the dispatcher logger.
func WithLogger(l *logger.Logger) Option { return func(o *options) { o.log = l } }

// WithObserver sets the dispatch observer.
func WithObserver(obs Observer) Option { return func(o *options) { o.observer = obs } }

// WithReporter sets the reporter used by the HTTP adapter for re-raised errors.
func WithReporter(r Reporter) Option { return func(o *options) { o.reporter = r } }

// NewDispatcher creates a Dispatcher.
func NewDispatcher(opts ...Option) *Dispatcher {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.registry == nil {
		o.registry = DefaultRegistry()
	}
	if o.fallback == nil {
		o.fallback = FallbackRenderer{}
	}
	if o.log == nil {
		o.log = logger.Get("dispatch")
	}
	if o.reporter == nil {
		o.reporter = NewLogReporter(o.log)
	}

	d := &Dispatcher{
		registry:   o.registry,
		convention: o.convention,
		fallback:   o.fallback,
		exposeID:   o.exposeID,
		log:        o.log,
		observer:   o.observer,
		reporter:   o.reporter,
	}
	d.debug.Store(o.debug)
	return d
}

// FromConfig creates a Dispatcher from configuration. Explicit options are
// applied after the configured ones.
func FromConfig(cfg Config, opts ...Option) (*Dispatcher, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	convention, err := ConventionHandler(cfg.Renderer)
	if err != nil {
		return nil, err
	}
	base := []Option{
		WithDebug(cfg.Debug),
		WithErrorID(cfg.ExposeErrorID),
		WithConvention(convention),
	}
	return NewDispatcher(append(base, opts...)...), nil
}

// Registry returns the dispatcher's registry.
func (d *Dispatcher) Registry() *Registry { return d.registry }

// Debug reports whether fallback responses include diagnostics.
func (d *Dispatcher) Debug() bool { return d.debug.Load() }

// SetDebug switches debug mode. It takes effect on the next dispatch.
func (d *Dispatcher) SetDebug(debug bool) { d.debug.Store(debug) }

// Resolve returns the binding that would handle err, with this dispatcher's
// convention handler in place of the seeded one.
func (d *Dispatcher) Resolve(err error) (Binding, bool) {
	b, ok := d.registry.Resolve(err)
	return d.bind(b), ok
}

func (d *Dispatcher) bind(b Binding) Binding {
	if b.Convention && d.convention != nil {
		b.Handler = d.convention
	}
	return b
}

// Dispatch handles err raised while serving r. It returns nil when a handler
// handled the error, the original err after writing the fallback response,
// or the handler's own error if the handler failed.
func (d *Dispatcher) Dispatch(w http.ResponseWriter, r *http.Request, err error) error {
	return d.DispatchResult(w, r, err).Err
}

// DispatchResult is Dispatch with the full Result.
func (d *Dispatcher) DispatchResult(w http.ResponseWriter, r *http.Request, err error) Result {
	if err == nil {
		return Result{Outcome: OutcomeNone}
	}
	d.registry.Freeze()

	typ := errtype.Of(err)
	log := d.log.WithRequest(r)
	result := Result{Type: typ}

	if binding, ok := d.registry.ResolveType(typ); ok {
		binding = d.bind(binding)
		res := NewResponse()
		if herr := binding.Handler(r, res, err); herr != nil {
			result.Outcome, result.Err = OutcomeHandlerFailed, herr
			log.Warn("error handler failed", logger.Fields(
				logger.FieldErrorType, typ.Name(),
				logger.FieldHandler, binding.Type.Name(),
				logger.FieldError, herr.Error(),
			))
			d.observe(r, result)
			return result
		}
		if d.send(w, res, log) {
			result.Outcome, result.Status = OutcomeHandled, res.Status
			if res.Status >= http.StatusInternalServerError {
				log.Error("error handled with server error status", logger.Fields(
					logger.FieldErrorType, typ.Name(),
					logger.FieldStatus, res.Status,
					logger.FieldError, err.Error(),
				))
			} else {
				log.Debug("error handled", logger.Fields(
					logger.FieldErrorType, typ.Name(),
					logger.FieldHandler, binding.Type.Name(),
					logger.FieldStatus, res.Status,
				))
			}
			d.observe(r, result)
			return result
		}
		result.Outcome, result.Err = OutcomeUnhandled, err
		d.observe(r, result)
		return result
	}

	res := d.fallback.Render(r, err, d.Debug())
	if d.exposeID {
		result.ErrorID = uuid.NewString()
		res.Header.Set(HeaderErrorID, result.ErrorID)
	}
	if d.send(w, res, log) {
		result.Status = res.Status
	}
	result.Outcome, result.Err = OutcomeUnhandled, err
	log.Debug("error unhandled, fallback rendered", logger.Fields(
		logger.FieldErrorType, typ.Name(),
		logger.FieldStatus, result.Status,
	))
	d.observe(r, result)
	return result
}

// committer is implemented by response writers that know whether the
// response has been started.
type committer interface {
	Written() bool
}

// send writes res unless w already carries a response.
func (d *Dispatcher) send(w http.ResponseWriter, res *Response, log *logger.Logger) bool {
	if c, ok := w.(committer); ok && c.Written() {
		log.Warn("response already committed, dispatch response dropped", logger.Fields(
			logger.FieldStatus, res.Status,
		))
		return false
	}
	if err := res.Send(w); err != nil {
		log.Warn("writing dispatch response failed", logger.Fields(logger.FieldError, err.Error()))
	}
	return true
}

func (d *Dispatcher) observe(r *http.Request, result Result) {
	if d.observer == nil {
		return
	}
	ctx := context.Background()
	if r != nil {
		ctx = r.Context()
	}
	d.observer.ObserveDispatch(ctx, Event{
		Outcome:   result.Outcome,
		ErrorType: result.Type.Name(),
		Status:    result.Status,
	})
}
