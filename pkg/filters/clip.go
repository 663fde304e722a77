package filters

import (
	"fmt"
	"math"

	"github.com/ecmwf/anemoi-transform-sub000/pkg/field"
	"github.com/ecmwf/anemoi-transform-sub000/pkg/matching"
	"github.com/ecmwf/anemoi-transform-sub000/pkg/transform"
)

// NewClip builds the clip filter: values of one parameter clamped to
// [minimum, maximum]. At least one bound must be given. Clamping discards
// information, so the filter is forward-only.
func NewClip(cfg map[string]any) (transform.Transform, error) {
	const name = "clip"
	if err := checkInputs(name, cfg, []string{"param"}, "minimum", "maximum"); err != nil {
		return nil, err
	}
	param, err := requiredString(name, cfg, "param")
	if err != nil {
		return nil, err
	}
	minimum, hasMin, err := floatEntry(name, cfg, "minimum")
	if err != nil {
		return nil, err
	}
	maximum, hasMax, err := floatEntry(name, cfg, "maximum")
	if err != nil {
		return nil, err
	}
	if !hasMin && !hasMax {
		return nil, fmt.Errorf("filter %q: at least one of minimum and maximum must be specified", name)
	}
	if hasMin && hasMax && minimum > maximum {
		return nil, fmt.Errorf("filter %q: minimum %g exceeds maximum %g", name, minimum, maximum)
	}
	if !hasMin {
		minimum = math.Inf(-1)
	}
	if !hasMax {
		maximum = math.Inf(1)
	}

	spec := matching.Spec{
		Params:  []matching.Binding{{Name: "param", Default: param}},
		Forward: []string{"param"},
	}
	forward := func(args matching.Args) (field.List, error) {
		x := args.Field("param")
		values := x.Values()
		for i, v := range values {
			values[i] = math.Min(math.Max(v, minimum), maximum)
		}
		return field.List{field.FromTemplate(x, values, nil)}, nil
	}
	return matching.NewBinder(name, spec, nil, forward, nil)
}
