// Package registry provides name-to-factory lookup for transforms with lazy,
// one-time discovery of builtin catalogs. A Registry is an ordinary value
// owned by the composition root and passed to whatever needs to create
// transforms by name; there is no package-level state.
package registry

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/ecmwf/anemoi-transform-sub000/pkg/transform"
)

// Factory builds a transform from its declarative configuration.
type Factory func(cfg map[string]any) (transform.Transform, error)

// Provider contributes (name, factory) pairs during the one-time discovery
// pass, typically a package's Register function.
type Provider func(*Registry) error

// UnknownNameError reports a create call for a name that is still absent
// after discovery has run.
type UnknownNameError struct {
	Name string
	Kind string
}

func (e *UnknownNameError) Error() string {
	return fmt.Sprintf("cannot load %q from the %s registry", e.Name, e.Kind)
}

// Registry maps names to transform factories. Lookup is lazy: the providers
// run exactly once, on the first miss, and never again even when a name
// stays missing afterwards.
type Registry struct {
	mu          sync.RWMutex
	kind        string
	factories   map[string]Factory
	providers   []Provider
	discovered  bool
	discoverErr error
}

// New builds a registry for one kind of transform (the kind only labels
// error messages and listings).
func New(kind string, providers ...Provider) *Registry {
	return &Registry{
		kind:      kind,
		factories: make(map[string]Factory),
		providers: providers,
	}
}

// Kind returns the registry's label.
func (r *Registry) Kind() string {
	return r.kind
}

// Register stores a factory under name. Registering the identical factory
// twice is a no-op, so independent providers may both claim a builtin;
// re-registration with a different factory is an error.
func (r *Registry) Register(name string, factory Factory) error {
	if name == "" {
		return fmt.Errorf("%s registry: name cannot be empty", r.kind)
	}
	if factory == nil {
		return fmt.Errorf("%s registry: factory for %q is nil", r.kind, name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.factories[name]; ok {
		if sameFactory(existing, factory) {
			return nil
		}
		return fmt.Errorf("%s registry: %q is already registered with a different factory", r.kind, name)
	}
	r.factories[name] = factory
	return nil
}

// Create looks the name up, running discovery first when the name is unknown
// and discovery has not happened yet, then invokes the factory with cfg.
func (r *Registry) Create(name string, cfg map[string]any) (transform.Transform, error) {
	if f, ok := r.lookup(name); ok {
		return f(cfg)
	}
	if err := r.discover(); err != nil {
		return nil, err
	}
	if f, ok := r.lookup(name); ok {
		return f(cfg)
	}
	return nil, &UnknownNameError{Name: name, Kind: r.kind}
}

// Names forces discovery and returns the registered names in sorted order.
func (r *Registry) Names() ([]string, error) {
	if err := r.discover(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (r *Registry) lookup(name string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[name]
	return f, ok
}

// discover runs every provider exactly once. The providers call Register
// themselves, so the lock is released while they run; the discovered flag is
// flipped first so a failing provider is still never re-run.
func (r *Registry) discover() error {
	r.mu.Lock()
	if r.discovered {
		err := r.discoverErr
		r.mu.Unlock()
		return err
	}
	r.discovered = true
	providers := r.providers
	r.mu.Unlock()

	var errs []error
	for _, p := range providers {
		if err := p(r); err != nil {
			errs = append(errs, err)
		}
	}
	err := errors.Join(errs...)

	r.mu.Lock()
	r.discoverErr = err
	r.mu.Unlock()
	return err
}

// sameFactory reports whether two factories are the same function.
func sameFactory(a, b Factory) bool {
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}
