package filters

import (
	"fmt"

	"github.com/ecmwf/anemoi-transform-sub000/pkg/field"
	"github.com/ecmwf/anemoi-transform-sub000/pkg/matching"
	"github.com/ecmwf/anemoi-transform-sub000/pkg/transform"
)

// standardGravity is the default gravitational acceleration in m/s².
const standardGravity = 9.80665

// NewOrography builds the orog_to_z filter: orography in metres to surface
// geopotential in m²/s². The derived field is emitted alongside the input,
// which is kept.
func NewOrography(cfg map[string]any) (transform.Transform, error) {
	const name = "orog_to_z"
	if err := checkInputs(name, cfg, nil, "orog", "z", "g"); err != nil {
		return nil, err
	}
	overrides, err := identifierOverrides(name, cfg, "orog", "z")
	if err != nil {
		return nil, err
	}
	g, ok, err := floatEntry(name, cfg, "g")
	if err != nil {
		return nil, err
	}
	if !ok {
		g = standardGravity
	}
	if g == 0 {
		return nil, fmt.Errorf("filter %q: g cannot be zero", name)
	}

	spec := matching.Spec{
		Params: []matching.Binding{
			{Name: "orog", Default: "orog"},
			{Name: "z", Default: "z"},
		},
		Forward:  []string{"orog"},
		Backward: []string{"z"},
	}
	forward := func(args matching.Args) (field.List, error) {
		orog := args.Field("orog")
		values := orog.Values()
		for i := range values {
			values[i] *= g
		}
		z := field.FromTemplate(orog, values, map[string]any{args.SelectKey(): args.Identifier("z")})
		return field.List{z, orog}, nil
	}
	backward := func(args matching.Args) (field.List, error) {
		z := args.Field("z")
		values := z.Values()
		for i := range values {
			values[i] /= g
		}
		orog := field.FromTemplate(z, values, map[string]any{args.SelectKey(): args.Identifier("orog")})
		return field.List{orog, z}, nil
	}
	return matching.NewBinder(name, spec, overrides, forward, backward)
}

// NewOrographyFromGeopotential builds the z_to_orog filter, the reversed form
// of orog_to_z.
func NewOrographyFromGeopotential(cfg map[string]any) (transform.Transform, error) {
	t, err := NewOrography(cfg)
	if err != nil {
		return nil, err
	}
	return transform.Reverse(t), nil
}
