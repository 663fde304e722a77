// Package matching binds a transform's formal parameters to configured
// variable identifiers and drives the grouping engine, so transform functions
// receive exactly one field per declared role regardless of how the caller
// named the variables.
package matching

import (
	"fmt"

	"github.com/ecmwf/anemoi-transform-sub000/pkg/field"
	"github.com/ecmwf/anemoi-transform-sub000/pkg/grouping"
	"github.com/ecmwf/anemoi-transform-sub000/pkg/transform"
)

// UnknownFormalParameterError reports a binding or override that names a
// formal parameter the transform never declared. It is raised at
// construction time, before any data flows.
type UnknownFormalParameterError struct {
	Filter string
	Name   string
}

func (e *UnknownFormalParameterError) Error() string {
	return fmt.Sprintf("unknown formal parameter %q for filter %q", e.Name, e.Filter)
}

// Binding declares one formal parameter and the canonical variable identifier
// it defaults to, e.g. {Name: "temperature", Default: "t"}. An empty default
// makes a configuration override mandatory.
type Binding struct {
	Name    string
	Default string
}

// Spec is the static binding descriptor a matching transform registers:
// which metadata key carries the variable identifier, every bindable formal
// parameter with its default, and the ordered formal names participating in
// each direction.
type Spec struct {
	SelectKey string
	Params    []Binding
	Forward   []string
	Backward  []string
}

// TransformFunc is the numeric formula a binder wraps. It receives the
// matched fields by formal name and returns zero or more output fields; any
// error it returns propagates unchanged.
type TransformFunc func(args Args) (field.List, error)

// Args hands a matched tuple to a transform function by formal parameter
// name.
type Args struct {
	fields map[string]*field.Field
	binder *Binder
}

// Field returns the matched field bound to the formal parameter, or nil when
// the parameter is not part of the current direction.
func (a Args) Field(name string) *field.Field {
	return a.fields[name]
}

// Identifier returns the resolved variable identifier of any declared formal
// parameter, override included. Transform functions use it to label their
// output fields.
func (a Args) Identifier(name string) string {
	return a.binder.Identifier(name)
}

// SelectKey returns the metadata key carrying the variable identifier, so
// transform functions can label outputs under the same key they were grouped
// on.
func (a Args) SelectKey() string {
	return a.binder.SelectKey()
}

// Option configures a binder.
type Option func(*Binder)

// Partial forwards to the grouping engine: incomplete buckets are skipped
// instead of failing the call.
func Partial() Option {
	return func(b *Binder) { b.partial = true }
}

// resolved is one entry of a direction's binding table.
type resolved struct {
	formal     string
	identifier string
}

// Binder implements transform.Transform for a matching filter. The two
// binding tables and their groupers are built once at construction and are
// immutable afterwards.
type Binder struct {
	name        string
	selectKey   string
	identifiers map[string]string
	partial     bool

	forwardTable  []resolved
	backwardTable []resolved
	forwardG      *grouping.Grouper
	backwardG     *grouping.Grouper
	forwardFn     TransformFunc
	backwardFn    TransformFunc
}

// NewBinder resolves the spec's defaults against the configuration overrides
// and builds the per-direction binding tables. Formal parameters named by
// the spec's direction lists or by override keys must exist in Params; a
// backward function and a backward parameter list must be given together or
// not at all.
func NewBinder(name string, spec Spec, overrides map[string]string,
	forwardFn, backwardFn TransformFunc, opts ...Option) (*Binder, error) {

	if name == "" {
		return nil, fmt.Errorf("matching filter needs a name")
	}
	if forwardFn == nil {
		return nil, fmt.Errorf("filter %q: forward transform function is required", name)
	}
	if len(spec.Forward) == 0 {
		return nil, fmt.Errorf("filter %q: forward binding requires at least one formal parameter", name)
	}
	if (backwardFn == nil) != (len(spec.Backward) == 0) {
		return nil, fmt.Errorf("filter %q: backward function and backward parameters must be declared together", name)
	}

	b := &Binder{
		name:        name,
		selectKey:   spec.SelectKey,
		identifiers: make(map[string]string, len(spec.Params)),
		forwardFn:   forwardFn,
		backwardFn:  backwardFn,
	}
	if b.selectKey == "" {
		b.selectKey = "param"
	}
	for _, opt := range opts {
		opt(b)
	}

	declared := make(map[string]bool, len(spec.Params))
	for _, p := range spec.Params {
		if p.Name == "" {
			return nil, fmt.Errorf("filter %q: formal parameter with empty name", name)
		}
		if declared[p.Name] {
			return nil, fmt.Errorf("filter %q: formal parameter %q declared twice", name, p.Name)
		}
		declared[p.Name] = true
		b.identifiers[p.Name] = p.Default
	}
	for formal, ident := range overrides {
		if !declared[formal] {
			return nil, &UnknownFormalParameterError{Filter: name, Name: formal}
		}
		b.identifiers[formal] = ident
	}

	var err error
	if b.forwardTable, b.forwardG, err = b.buildDirection(name, spec.Forward, declared); err != nil {
		return nil, err
	}
	if len(spec.Backward) > 0 {
		if b.backwardTable, b.backwardG, err = b.buildDirection(name, spec.Backward, declared); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// buildDirection resolves one direction's ordered binding table and its
// grouper.
func (b *Binder) buildDirection(name string, formals []string, declared map[string]bool) ([]resolved, *grouping.Grouper, error) {
	table := make([]resolved, 0, len(formals))
	targets := make([]string, 0, len(formals))
	for _, formal := range formals {
		if !declared[formal] {
			return nil, nil, &UnknownFormalParameterError{Filter: name, Name: formal}
		}
		ident := b.identifiers[formal]
		if ident == "" {
			return nil, nil, fmt.Errorf("filter %q: formal parameter %q has no identifier (no default and no override)", name, formal)
		}
		table = append(table, resolved{formal: formal, identifier: ident})
		targets = append(targets, ident)
	}
	var opts []grouping.Option
	if b.partial {
		opts = append(opts, grouping.Partial())
	}
	g, err := grouping.New(b.selectKey, targets, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("filter %q: %w", name, err)
	}
	return table, g, nil
}

// Name returns the filter name.
func (b *Binder) Name() string {
	return b.name
}

// Identifier returns the resolved variable identifier for a declared formal
// parameter; unknown parameters yield the empty string.
func (b *Binder) Identifier(formal string) string {
	return b.identifiers[formal]
}

// SelectKey returns the metadata key carrying the variable identifier.
func (b *Binder) SelectKey() string {
	return b.selectKey
}

// Forward groups the input on the forward binding table and applies the
// forward transform function per tuple. Unmatched fields pass through first,
// in input order, followed by the transform outputs.
func (b *Binder) Forward(data field.List) (field.List, error) {
	return b.apply(data, b.forwardG, b.forwardTable, b.forwardFn)
}

// Backward is the symmetric direction over the backward binding table.
func (b *Binder) Backward(data field.List) (field.List, error) {
	if b.backwardFn == nil {
		return nil, transform.NotReversible(b.name)
	}
	return b.apply(data, b.backwardG, b.backwardTable, b.backwardFn)
}

func (b *Binder) apply(data field.List, g *grouping.Grouper, table []resolved, fn TransformFunc) (field.List, error) {
	var result field.List
	tuples, err := g.Iterate(data, func(f *field.Field) { result = append(result, f) })
	if err != nil {
		return nil, err
	}
	for _, tuple := range tuples {
		byName := make(map[string]*field.Field, len(table))
		for i, entry := range table {
			byName[entry.formal] = tuple[i]
		}
		out, err := fn(Args{fields: byName, binder: b})
		if err != nil {
			return nil, err
		}
		result = append(result, out...)
	}
	return result, nil
}
