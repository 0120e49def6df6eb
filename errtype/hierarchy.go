package errtype

import (
	stderrors "errors"
	"fmt"
)

// Type is a node in the error type hierarchy. Types are compared by pointer
// identity and are safe to use as map keys.
type Type struct {
	name      string
	parents   []*Type
	ancestors []Ancestor
	distance  map[*Type]int
}

// Ancestor pairs a type with its hop distance from a descendant.
type Ancestor struct {
	Type     *Type
	Distance int
}

// Root is the universal root error type. Every defined type descends from it,
// and errors that declare no type belong to it.
var Root = newType("error", nil)

// New defines a new error type. With no parents the type descends directly
// from Root. Parents are searched in declaration order when linearizing the
// ancestry, so the first parent wins ordering ties at equal distance.
//
// New panics on a nil parent; types are expected to be defined at package
// scope during program initialization.
func New(name string, parents ...*Type) *Type {
	if len(parents) == 0 {
		parents = []*Type{Root}
	}
	for i, p := range parents {
		if p == nil {
			panic(fmt.Sprintf("errtype: parent %d of %q is nil", i, name))
		}
	}
	return newType(name, parents)
}

func newType(name string, parents []*Type) *Type {
	t := &Type{
		name:    name,
		parents: append([]*Type(nil), parents...),
	}
	t.ancestors, t.distance = linearize(t)
	return t
}

// linearize walks parent links breadth-first. BFS visits each ancestor first
// at its minimal distance, which is the distance the resolver ranks by.
func linearize(t *Type) ([]Ancestor, map[*Type]int) {
	order := []Ancestor{{Type: t, Distance: 0}}
	distance := map[*Type]int{t: 0}
	for i := 0; i < len(order); i++ {
		cur := order[i]
		for _, p := range cur.Type.parents {
			if _, seen := distance[p]; seen {
				continue
			}
			distance[p] = cur.Distance + 1
			order = append(order, Ancestor{Type: p, Distance: cur.Distance + 1})
		}
	}
	return order, distance
}

// Name returns the type name given at definition.
func (t *Type) Name() string { return t.name }

// String implements fmt.Stringer.
func (t *Type) String() string { return t.name }

// IsRoot reports whether t is the universal root type.
func (t *Type) IsRoot() bool { return t == Root }

// Parents returns the direct supertypes of t.
func (t *Type) Parents() []*Type {
	return append([]*Type(nil), t.parents...)
}

// Ancestors returns t followed by all of its supertypes in linearization
// order, each with its minimal hop distance from t.
func (t *Type) Ancestors() []Ancestor {
	return append([]Ancestor(nil), t.ancestors...)
}

// IsSubtypeOf reports whether t is u or descends from u.
func (t *Type) IsSubtypeOf(u *Type) bool {
	_, ok := t.distance[u]
	return ok
}

// Distance returns the number of hierarchy hops from t up to u. It returns
// false when u is not an ancestor of t.
func (t *Type) Distance(u *Type) (int, bool) {
	d, ok := t.distance[u]
	return d, ok
}

// Typed is implemented by errors that declare their position in the hierarchy.
type Typed interface {
	ErrorType() *Type
}

// Of returns the type of err: the type declared by the first error in its
// chain that implements Typed, or Root when none does. Of returns nil for a
// nil error.
func Of(err error) *Type {
	if err == nil {
		return nil
	}
	var typed Typed
	if stderrors.As(err, &typed) {
		if t := typed.ErrorType(); t != nil {
			return t
		}
	}
	return Root
}
