package filters

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/ecmwf/anemoi-transform-sub000/pkg/field"
	"github.com/ecmwf/anemoi-transform-sub000/pkg/matching"
	"github.com/ecmwf/anemoi-transform-sub000/pkg/transform"
)

// linear is one ax+b mapping.
type linear struct {
	scale  float64
	offset float64
}

// unitConversions are the linear unit mappings the convert filter knows,
// keyed "from->to".
var unitConversions = map[string]linear{
	"K->degC":       {1, -273.15},
	"degC->K":       {1, 273.15},
	"K->degF":       {1.8, -459.67},
	"degF->K":       {1.0 / 1.8, 255.3722222222222},
	"m->km":         {0.001, 0},
	"km->m":         {1000, 0},
	"m->mm":         {1000, 0},
	"mm->m":         {0.001, 0},
	"Pa->hPa":       {0.01, 0},
	"hPa->Pa":       {100, 0},
	"m s-1->km h-1": {3.6, 0},
	"km h-1->m s-1": {1.0 / 3.6, 0},
}

// NewRescale builds the rescale filter: values of one parameter mapped
// through scale*x + offset forward and (x - offset)/scale backward.
func NewRescale(cfg map[string]any) (transform.Transform, error) {
	const name = "rescale"
	if err := checkInputs(name, cfg, []string{"scale", "offset", "param"}); err != nil {
		return nil, err
	}
	scale, err := requiredFloat(name, cfg, "scale")
	if err != nil {
		return nil, err
	}
	offset, err := requiredFloat(name, cfg, "offset")
	if err != nil {
		return nil, err
	}
	param, err := requiredString(name, cfg, "param")
	if err != nil {
		return nil, err
	}
	return newLinearFilter(name, param, linear{scale: scale, offset: offset})
}

// NewConvert builds the convert filter: a named linear unit conversion on one
// parameter, e.g. unit_in "K" to unit_out "degC".
func NewConvert(cfg map[string]any) (transform.Transform, error) {
	const name = "convert"
	if err := checkInputs(name, cfg, []string{"unit_in", "unit_out", "param"}); err != nil {
		return nil, err
	}
	unitIn, err := requiredString(name, cfg, "unit_in")
	if err != nil {
		return nil, err
	}
	unitOut, err := requiredString(name, cfg, "unit_out")
	if err != nil {
		return nil, err
	}
	param, err := requiredString(name, cfg, "param")
	if err != nil {
		return nil, err
	}

	mapping := linear{scale: 1}
	if unitIn != unitOut {
		var ok bool
		mapping, ok = unitConversions[unitIn+"->"+unitOut]
		if !ok {
			return nil, fmt.Errorf("filter %q: unsupported unit conversion %q to %q", name, unitIn, unitOut)
		}
	}
	return newLinearFilter(name, param, mapping)
}

// newLinearFilter wraps a linear mapping of one parameter into a matching
// filter grouping on that parameter alone.
func newLinearFilter(name, param string, m linear) (transform.Transform, error) {
	if m.scale == 0 {
		return nil, fmt.Errorf("filter %q: scale cannot be zero", name)
	}

	spec := matching.Spec{
		Params:   []matching.Binding{{Name: "param", Default: param}},
		Forward:  []string{"param"},
		Backward: []string{"param"},
	}
	forward := func(args matching.Args) (field.List, error) {
		x := args.Field("param")
		values := x.Values()
		floats.Scale(m.scale, values)
		floats.AddConst(m.offset, values)
		return field.List{field.FromTemplate(x, values, nil)}, nil
	}
	backward := func(args matching.Args) (field.List, error) {
		x := args.Field("param")
		values := x.Values()
		floats.AddConst(-m.offset, values)
		floats.Scale(1/m.scale, values)
		return field.List{field.FromTemplate(x, values, nil)}, nil
	}
	return matching.NewBinder(name, spec, nil, forward, backward)
}
