package filters

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/ecmwf/anemoi-transform-sub000/pkg/field"
	"github.com/ecmwf/anemoi-transform-sub000/pkg/matching"
	"github.com/ecmwf/anemoi-transform-sub000/pkg/transform"
)

// NewSum builds the sum filter: a formula mapping one output parameter to the
// component parameters summed into it, e.g. {"tp": ["cp", "lsp"]}. Summing is
// forward-only.
func NewSum(cfg map[string]any) (transform.Transform, error) {
	const name = "sum"
	if err := checkInputs(name, cfg, []string{"formula"}); err != nil {
		return nil, err
	}
	formula, ok := cfg["formula"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("filter %q: formula must map one output to its components, got %T", name, cfg["formula"])
	}
	if len(formula) != 1 {
		return nil, fmt.Errorf("filter %q: formula must name exactly one output, got %d", name, len(formula))
	}

	var output string
	var components []string
	for out, raw := range formula {
		output = out
		components, ok = toStringSlice(raw)
		if !ok {
			return nil, fmt.Errorf("filter %q: components of %q must be a list of strings", name, out)
		}
	}
	if output == "" {
		return nil, fmt.Errorf("filter %q: formula output name cannot be empty", name)
	}
	if len(components) == 0 {
		return nil, fmt.Errorf("filter %q: formula for %q needs at least one component", name, output)
	}

	params := make([]matching.Binding, 0, len(components))
	for _, c := range components {
		params = append(params, matching.Binding{Name: c, Default: c})
	}
	spec := matching.Spec{
		Params:  params,
		Forward: components,
	}
	forward := func(args matching.Args) (field.List, error) {
		template := args.Field(components[0])
		total := template.Values()
		for _, c := range components[1:] {
			f := args.Field(c)
			if f.Len() != len(total) {
				return nil, fmt.Errorf("filter %q: component %q has %d values, expected %d", name, c, f.Len(), len(total))
			}
			floats.Add(total, f.Values())
		}
		out := field.FromTemplate(template, total, map[string]any{args.SelectKey(): output})
		return field.List{out}, nil
	}
	return matching.NewBinder(name, spec, nil, forward, nil)
}

func toStringSlice(v any) ([]string, bool) {
	switch x := v.(type) {
	case []string:
		return append([]string(nil), x...), true
	case []any:
		out := make([]string, 0, len(x))
		for _, item := range x {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}
