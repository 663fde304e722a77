// Package transform defines the contract shared by every pipeline stage: a
// named forward/backward pair over field lists, reversal, flat pipeline
// composition, and optional rewriting of the upstream data request.
package transform

import (
	"fmt"

	"github.com/ecmwf/anemoi-transform-sub000/pkg/field"
)

// Transform is a named unit of behavior over a field list. Forward produces
// derived fields; Backward reconstructs the originals where mathematically
// possible and returns a NotReversibleError otherwise. A transform holds no
// mutable runtime state beyond its configuration; lazily computed per-call
// caches are allowed but must not change the declared contract.
type Transform interface {
	Name() string
	Forward(data field.List) (field.List, error)
	Backward(data field.List) (field.List, error)
}

// Reversed swaps a transform's directions: its Forward calls the wrapped
// transform's Backward and vice versa.
type Reversed struct {
	inner Transform
}

// Reverse returns the reversed form of t. Reversing a reversed transform
// returns the original, so double reversal is behaviorally equivalent to no
// reversal.
func Reverse(t Transform) Transform {
	if r, ok := t.(*Reversed); ok {
		return r.inner
	}
	return &Reversed{inner: t}
}

// Name identifies the wrapped transform with its direction swapped.
func (r *Reversed) Name() string {
	return fmt.Sprintf("reversed(%s)", r.inner.Name())
}

// Forward applies the wrapped transform's backward direction.
func (r *Reversed) Forward(data field.List) (field.List, error) {
	return r.inner.Backward(data)
}

// Backward applies the wrapped transform's forward direction.
func (r *Reversed) Backward(data field.List) (field.List, error) {
	return r.inner.Forward(data)
}

// PatchRequest delegates to the wrapped transform unchanged: the upstream
// request describes raw inputs regardless of direction.
func (r *Reversed) PatchRequest(req Request) Request {
	return PatchRequest(r.inner, req)
}
