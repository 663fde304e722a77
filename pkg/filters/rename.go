package filters

import (
	"fmt"

	"github.com/ecmwf/anemoi-transform-sub000/internal/template"
	"github.com/ecmwf/anemoi-transform-sub000/pkg/field"
	"github.com/ecmwf/anemoi-transform-sub000/pkg/transform"
)

// Rename rewrites the variable identifier of fields. In mapping mode only
// fields whose identifier appears in the rename map change; in pattern mode
// every field's identifier is rebuilt from a metadata pattern such as
// "{{param}}_{{levelist}}". Renaming is forward-only.
type Rename struct {
	renames   map[string]string
	pattern   string
	evaluator *template.Evaluator
}

// NewRename builds the rename filter from either a rename mapping or a
// pattern, not both.
func NewRename(cfg map[string]any) (transform.Transform, error) {
	const name = "rename"
	if err := checkInputs(name, cfg, nil, "rename", "pattern"); err != nil {
		return nil, err
	}
	renames, err := stringMap(name, cfg, "rename")
	if err != nil {
		return nil, err
	}
	pattern, err := stringOption(name, cfg, "pattern", "")
	if err != nil {
		return nil, err
	}

	if len(renames) > 0 && pattern != "" {
		return nil, fmt.Errorf("filter %q: 'rename' and 'pattern' are mutually exclusive", name)
	}
	if len(renames) == 0 && pattern == "" {
		return nil, fmt.Errorf("filter %q: either 'rename' or 'pattern' is required", name)
	}
	if pattern != "" {
		if err := template.ValidateSyntax(pattern); err != nil {
			return nil, fmt.Errorf("filter %q: %w", name, err)
		}
		if !template.HasVariables(pattern) {
			return nil, fmt.Errorf("filter %q: pattern %q has no metadata variables", name, pattern)
		}
	}

	return &Rename{
		renames:   renames,
		pattern:   pattern,
		evaluator: template.NewEvaluator(),
	}, nil
}

// Name returns the filter name.
func (r *Rename) Name() string {
	return "rename"
}

// Forward rewrites the param metadata of the affected fields; everything else
// passes through at its original position.
func (r *Rename) Forward(data field.List) (field.List, error) {
	result := make(field.List, 0, len(data))
	for _, f := range data {
		if r.pattern != "" {
			renamed := r.evaluator.Evaluate(r.pattern, f.Metadata())
			result = append(result, field.FromTemplate(f, nil, map[string]any{"param": renamed}))
			continue
		}
		param, ok := f.Metadata().String("param")
		if !ok {
			result = append(result, f)
			continue
		}
		if to, found := r.renames[param]; found {
			result = append(result, field.FromTemplate(f, nil, map[string]any{"param": to}))
		} else {
			result = append(result, f)
		}
	}
	return result, nil
}

// Backward reports the filter as non-reversible: the original identifiers are
// not recoverable in general.
func (r *Rename) Backward(data field.List) (field.List, error) {
	return nil, transform.NotReversible(r.Name())
}
