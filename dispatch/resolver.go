package dispatch

import (
	"github.com/kbukum/errdispatch/errtype"
)

// Resolve returns the binding that applies to err, if any.
func (r *Registry) Resolve(err error) (Binding, bool) {
	if err == nil {
		return Binding{}, false
	}
	return r.ResolveType(errtype.Of(err))
}

// ResolveType returns the binding that applies to errors of type t.
//
// Candidates are bindings of t or one of its ancestors. The closest ancestor
// wins; at equal distance the most recent registration wins. Root bindings
// are only used when no other candidate exists.
func (r *Registry) ResolveType(t *errtype.Type) (Binding, bool) {
	if t == nil {
		return Binding{}, false
	}
	if r.frozen.Load() {
		if cached, ok := r.resolved.Load(t); ok {
			res := cached.(resolution)
			return res.binding, res.ok
		}
		b, ok := r.resolve(t)
		r.resolved.Store(t, resolution{binding: b, ok: ok})
		return b, ok
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.resolve(t)
}

// resolve relies on Ancestors being ordered by non-decreasing distance.
func (r *Registry) resolve(t *errtype.Type) (Binding, bool) {
	var best Binding
	bestDist := -1
	for _, anc := range t.Ancestors() {
		if anc.Type.IsRoot() {
			continue
		}
		if bestDist >= 0 && anc.Distance > bestDist {
			break
		}
		b, ok := r.latest(anc.Type)
		if !ok {
			continue
		}
		if bestDist < 0 || b.Seq > best.Seq {
			best, bestDist = b, anc.Distance
		}
	}
	if bestDist >= 0 {
		return best, true
	}
	return r.latest(errtype.Root)
}

func (r *Registry) latest(t *errtype.Type) (Binding, bool) {
	idx := r.byType[t]
	if len(idx) == 0 {
		return Binding{}, false
	}
	return r.bindings[idx[len(idx)-1]], true
}
