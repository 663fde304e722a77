// Package source provides the transforms that originate field lists rather
// than reworking them. A source takes no input: handing it fields is an
// error, and running one backward is never possible. Sources live in their
// own registry so a workflow's head stage and its filter stages cannot be
// confused.
package source

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ecmwf/anemoi-transform-sub000/pkg/field"
	"github.com/ecmwf/anemoi-transform-sub000/pkg/registry"
	"github.com/ecmwf/anemoi-transform-sub000/pkg/transform"
)

// fetchFunc produces a source's fields.
type fetchFunc func() (field.List, error)

// Source adapts a fetch function to the transform contract. Forward refuses
// non-empty input, so a source can only sit at the head of a chain.
type Source struct {
	name  string
	fetch fetchFunc
}

func newSource(name string, fetch fetchFunc) *Source {
	return &Source{name: name, fetch: fetch}
}

// Name identifies the source.
func (s *Source) Name() string {
	return s.name
}

// Forward produces the source's fields. The input list must be empty.
func (s *Source) Forward(data field.List) (field.List, error) {
	if len(data) > 0 {
		return nil, fmt.Errorf("source %q takes no input fields, got %d", s.name, len(data))
	}
	return s.fetch()
}

// Backward always fails: a source has nothing to reconstruct.
func (s *Source) Backward(field.List) (field.List, error) {
	return nil, fmt.Errorf("source %q cannot run backward: %w", s.name, transform.ErrNotReversible)
}

var _ transform.Transform = (*Source)(nil)

// Register contributes the builtin sources to a registry. It is the provider
// the composition root hands to registry.New.
func Register(r *registry.Registry) error {
	builtins := []struct {
		name    string
		factory registry.Factory
	}{
		{"file", NewFile},
		{"list", NewList},
	}
	for _, b := range builtins {
		if err := r.Register(b.name, b.factory); err != nil {
			return err
		}
	}
	return nil
}

// checkInputs validates a source's configuration keys the same way the
// filter catalog does: every required input must be present and nothing
// outside the known set is accepted.
func checkInputs(source string, cfg map[string]any, required []string, optional ...string) error {
	var missing []string
	for _, k := range required {
		if _, ok := cfg[k]; !ok {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("source %q: missing required input(s): %s", source, strings.Join(missing, ", "))
	}

	allowed := make(map[string]bool, len(required)+len(optional))
	for _, k := range required {
		allowed[k] = true
	}
	for _, k := range optional {
		allowed[k] = true
	}
	var unknown []string
	for k := range cfg {
		if !allowed[k] {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("source %q: unknown input(s): %s", source, strings.Join(unknown, ", "))
	}
	return nil
}

// decodeFields turns a list of field documents into fields. Each document is
// a mapping whose "values" entry is the numeric payload; every other entry
// becomes metadata.
func decodeFields(docs []any) (field.List, error) {
	fields := make(field.List, 0, len(docs))
	for i, doc := range docs {
		entry, ok := doc.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("field %d: document must be a mapping", i)
		}
		raw, ok := entry["values"]
		if !ok {
			return nil, fmt.Errorf("field %d: missing values", i)
		}
		values, err := decodeValues(raw)
		if err != nil {
			return nil, fmt.Errorf("field %d: %w", i, err)
		}
		meta := make(map[string]any, len(entry)-1)
		for k, v := range entry {
			if k == "values" {
				continue
			}
			meta[k] = v
		}
		fields = append(fields, field.New(values, field.MetadataFromMap(meta)))
	}
	return fields, nil
}

func decodeValues(raw any) ([]float64, error) {
	switch list := raw.(type) {
	case []float64:
		return append([]float64(nil), list...), nil
	case []any:
		values := make([]float64, len(list))
		for i, v := range list {
			f, ok := toFloat(v)
			if !ok {
				return nil, fmt.Errorf("non-numeric value at index %d", i)
			}
			values[i] = f
		}
		return values, nil
	}
	return nil, fmt.Errorf("values must be a list of numbers")
}

// toFloat coerces the scalar types JSON and YAML decoders produce into a
// float64.
func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case int32:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint64:
		return float64(x), true
	case uint32:
		return float64(x), true
	}
	return 0, false
}
