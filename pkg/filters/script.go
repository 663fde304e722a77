package filters

import (
	"fmt"
	"strings"

	"github.com/dop251/goja"

	"github.com/ecmwf/anemoi-transform-sub000/pkg/field"
	"github.com/ecmwf/anemoi-transform-sub000/pkg/transform"
)

// MaxScriptLength is the maximum allowed script source length in bytes
// (100KB).
const MaxScriptLength = 100 * 1024

// scriptProgram is one compiled user script with its dedicated runtime. Goja
// runtimes are not goroutine-safe; each filter instance owns its own, which
// is sufficient under the single-threaded evaluation model.
type scriptProgram struct {
	runtime *goja.Runtime
	fn      goja.Callable
}

// NewScript builds the script filter: a user JavaScript source defining
// `function transform(values, metadata)` applied to each selected field's
// payload. An optional backward_source makes the filter reversible; param and
// levelist restrict which fields are transformed.
func NewScript(cfg map[string]any) (transform.Transform, error) {
	const name = "script"
	if err := checkInputs(name, cfg, []string{"source"}, "backward_source", "param", "levelist"); err != nil {
		return nil, err
	}
	source, err := requiredString(name, cfg, "source")
	if err != nil {
		return nil, err
	}
	forwardProg, err := compileScript(name, source)
	if err != nil {
		return nil, err
	}

	var backwardProg *scriptProgram
	backwardSource, err := stringOption(name, cfg, "backward_source", "")
	if err != nil {
		return nil, err
	}
	if backwardSource != "" {
		backwardProg, err = compileScript(name, backwardSource)
		if err != nil {
			return nil, err
		}
	}

	criteria := map[string]any{}
	if v, ok := cfg["param"]; ok && v != nil {
		criteria["param"] = v
	}
	if v, ok := cfg["levelist"]; ok && v != nil {
		criteria["levelist"] = v
	}
	selection, err := field.NewSelection(criteria)
	if err != nil {
		return nil, err
	}

	forward := func(f *field.Field) (*field.Field, error) {
		return forwardProg.apply(name, f)
	}
	var backward FieldFunc
	if backwardProg != nil {
		backward = func(f *field.Field) (*field.Field, error) {
			return backwardProg.apply(name, f)
		}
	}
	return NewSingleField(name, selection, selection, forward, backward)
}

// compileScript validates and compiles one script source, returning the
// runtime and its transform function.
func compileScript(name, source string) (*scriptProgram, error) {
	if strings.TrimSpace(source) == "" {
		return nil, fmt.Errorf("filter %q: script cannot be empty", name)
	}
	if len(source) > MaxScriptLength {
		return nil, fmt.Errorf("filter %q: script exceeds maximum length (%d bytes, maximum %d)", name, len(source), MaxScriptLength)
	}

	vm := goja.New()
	if _, err := vm.RunString(source); err != nil {
		return nil, fmt.Errorf("filter %q: script compilation failed: %w", name, err)
	}

	v := vm.Get("transform")
	if v == nil || goja.IsUndefined(v) {
		return nil, fmt.Errorf("filter %q: transform function not found in script", name)
	}
	fn, ok := goja.AssertFunction(v)
	if !ok {
		return nil, fmt.Errorf("filter %q: transform is not a function", name)
	}
	return &scriptProgram{runtime: vm, fn: fn}, nil
}

// apply runs the transform function on one field's payload and metadata and
// builds the resulting field from the returned values.
func (p *scriptProgram) apply(name string, f *field.Field) (*field.Field, error) {
	values := p.runtime.ToValue(f.Values())
	metadata := p.runtime.ToValue(f.Metadata().Map())

	out, err := p.fn(goja.Undefined(), values, metadata)
	if err != nil {
		return nil, fmt.Errorf("filter %q: script execution failed: %w", name, err)
	}
	result, err := exportFloats(name, out)
	if err != nil {
		return nil, err
	}
	return field.FromTemplate(f, result, nil), nil
}

// exportFloats converts a script return value into a payload. The transform
// function must return an array of numbers.
func exportFloats(name string, v goja.Value) ([]float64, error) {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil, fmt.Errorf("filter %q: script returned no values (transform must return an array of numbers)", name)
	}

	switch exported := v.Export().(type) {
	case []float64:
		return append([]float64(nil), exported...), nil
	case []any:
		out := make([]float64, len(exported))
		for i, item := range exported {
			n, ok := numeric(item)
			if !ok {
				return nil, fmt.Errorf("filter %q: script returned a non-numeric value at index %d (%T)", name, i, item)
			}
			out[i] = n
		}
		return out, nil
	default:
		return nil, fmt.Errorf("filter %q: script must return an array of numbers, got %T", name, exported)
	}
}
