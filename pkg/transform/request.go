package transform

import "slices"

// Request describes what should be fetched upstream: an opaque map of string
// keys to list-valued entries (for example param or levelist lists).
// Transforms that derive their outputs from different raw inputs rewrite the
// request so the source fetches what the pipeline actually consumes.
type Request map[string][]string

// RequestPatcher is implemented by transforms that rewrite the upstream data
// request. Transforms that do not implement it are pass-through.
type RequestPatcher interface {
	PatchRequest(req Request) Request
}

// PatchRequest applies t's request rewrite when it implements RequestPatcher
// and returns the request unchanged otherwise.
func PatchRequest(t Transform, req Request) Request {
	if p, ok := t.(RequestPatcher); ok {
		return p.PatchRequest(req)
	}
	return req
}

// Clone returns a deep copy of the request.
func (r Request) Clone() Request {
	if r == nil {
		return nil
	}
	out := make(Request, len(r))
	for k, v := range r {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// Has reports whether value is listed under key.
func (r Request) Has(key, value string) bool {
	return slices.Contains(r[key], value)
}

// Add appends the values not already listed under key.
func (r Request) Add(key string, values ...string) {
	for _, v := range values {
		if !slices.Contains(r[key], v) {
			r[key] = append(r[key], v)
		}
	}
}

// Remove drops the given values from the entry under key.
func (r Request) Remove(key string, values ...string) {
	current, ok := r[key]
	if !ok {
		return
	}
	kept := current[:0]
	for _, v := range current {
		if !slices.Contains(values, v) {
			kept = append(kept, v)
		}
	}
	r[key] = kept
}
