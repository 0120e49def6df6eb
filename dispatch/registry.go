package dispatch

import (
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/kbukum/errdispatch/errors"
	"github.com/kbukum/errdispatch/errtype"
)

// Handler reacts to an error by mutating res. A non-nil return is a handler
// failure: it is not recovered and propagates to the dispatcher's caller.
type Handler func(req *http.Request, res *Response, err error) error

// Binding pairs an error type with a handler. Seq increases strictly with
// every registration. Convention marks the seeded errors.HTTPErrorType
// binding, whose handler a Dispatcher may swap for its own renderer.
type Binding struct {
	Type       *errtype.Type
	Handler    Handler
	Seq        uint64
	Convention bool
}

// Registry stores handler bindings in insertion order. The zero value is an
// empty registry without the convention seed; use NewRegistry for a seeded
// one.
//
// Registration is meant for a single-threaded setup phase. Freeze ends that
// phase; afterwards the registry is immutable and safe to share between
// concurrent requests without locking.
type Registry struct {
	mu       sync.RWMutex
	bindings []Binding
	byType   map[*errtype.Type][]int
	frozen   atomic.Bool
	resolved sync.Map // *errtype.Type -> resolution, populated after Freeze
}

type resolution struct {
	binding Binding
	ok      bool
}

// NewRegistry creates a registry seeded with the text renderer of the HTTP
// error convention bound to errors.HTTPErrorType.
func NewRegistry() *Registry {
	r := &Registry{}
	r.SetConvention(ErrorToText)
	return r
}

// Register appends a binding of t to h. Registering a type again adds a new
// binding; the newest one wins at resolution time.
//
// Register panics if t or h is nil or if the registry is frozen.
func (r *Registry) Register(t *errtype.Type, h Handler) {
	if t == nil {
		panic("dispatch: Register with nil error type")
	}
	if h == nil {
		panic("dispatch: Register with nil handler for " + t.Name())
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen.Load() {
		panic("dispatch: Register on frozen registry for " + t.Name())
	}
	r.add(Binding{Type: t, Handler: h})
}

// add appends b under r.mu.
func (r *Registry) add(b Binding) {
	if r.byType == nil {
		r.byType = make(map[*errtype.Type][]int)
	}
	b.Seq = uint64(len(r.bindings)) + 1
	r.bindings = append(r.bindings, b)
	r.byType[b.Type] = append(r.byType[b.Type], len(r.bindings)-1)
}

// SetConvention replaces the seeded HTTP error convention handler in place,
// seeding it first on a registry that has none. Bindings registered by the
// application for errors.HTTPErrorType still take precedence since they are
// newer.
func (r *Registry) SetConvention(h Handler) {
	if h == nil {
		panic("dispatch: SetConvention with nil handler")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen.Load() {
		panic("dispatch: SetConvention on frozen registry")
	}
	for i := range r.bindings {
		if r.bindings[i].Convention {
			r.bindings[i].Handler = h
			return
		}
	}
	r.add(Binding{Type: errors.HTTPErrorType, Handler: h, Convention: true})
}

// Freeze ends the setup phase. It is idempotent.
func (r *Registry) Freeze() {
	if r.frozen.Load() {
		return
	}
	r.mu.Lock()
	r.frozen.Store(true)
	r.mu.Unlock()
}

// Frozen reports whether Freeze has been called.
func (r *Registry) Frozen() bool { return r.frozen.Load() }

// Bindings returns a copy of all bindings in registration order.
func (r *Registry) Bindings() []Binding {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Binding(nil), r.bindings...)
}

// Len returns the number of bindings.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bindings)
}

// --- Default registry ---

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the process-wide registry used by dispatchers
// created without WithRegistry.
func DefaultRegistry() *Registry { return defaultRegistry }

// Register binds t to h on the default registry.
func Register(t *errtype.Type, h Handler) { defaultRegistry.Register(t, h) }

// Freeze freezes the default registry.
func Freeze() { defaultRegistry.Freeze() }
