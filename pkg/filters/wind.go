package filters

import (
	"fmt"
	"math"

	"github.com/ecmwf/anemoi-transform-sub000/pkg/field"
	"github.com/ecmwf/anemoi-transform-sub000/pkg/matching"
	"github.com/ecmwf/anemoi-transform-sub000/pkg/transform"
)

const degreesPerRadian = 180 / math.Pi

// WindComponents converts the u and v wind vector components into wind speed
// and meteorological wind direction (degrees clockwise from north, direction
// the wind blows from), and back.
type WindComponents struct {
	*matching.Binder
}

// NewWindComponents builds the uv_2_ddff filter.
func NewWindComponents(cfg map[string]any) (transform.Transform, error) {
	const name = "uv_2_ddff"
	formals := []string{"u_component", "v_component", "wind_speed", "wind_direction"}
	if err := checkInputs(name, cfg, nil, formals...); err != nil {
		return nil, err
	}
	overrides, err := identifierOverrides(name, cfg, formals...)
	if err != nil {
		return nil, err
	}

	spec := matching.Spec{
		Params: []matching.Binding{
			{Name: "u_component", Default: "u"},
			{Name: "v_component", Default: "v"},
			{Name: "wind_speed", Default: "ws"},
			{Name: "wind_direction", Default: "wdir"},
		},
		Forward:  []string{"u_component", "v_component"},
		Backward: []string{"wind_speed", "wind_direction"},
	}
	b, err := matching.NewBinder(name, spec, overrides, windForward, windBackward)
	if err != nil {
		return nil, err
	}
	return &WindComponents{Binder: b}, nil
}

// NewWindFromSpeedDirection builds the ddff_2_uv filter, the reversed form of
// uv_2_ddff.
func NewWindFromSpeedDirection(cfg map[string]any) (transform.Transform, error) {
	t, err := NewWindComponents(cfg)
	if err != nil {
		return nil, err
	}
	return transform.Reverse(t), nil
}

// PatchRequest rewrites an upstream data request: when speed or direction is
// requested, ask for the vector components instead.
func (w *WindComponents) PatchRequest(req transform.Request) transform.Request {
	speed := w.Identifier("wind_speed")
	direction := w.Identifier("wind_direction")
	if !req.Has("param", speed) && !req.Has("param", direction) {
		return req
	}
	out := req.Clone()
	out.Remove("param", speed, direction)
	out.Add("param", w.Identifier("u_component"), w.Identifier("v_component"))
	return out
}

func windForward(args matching.Args) (field.List, error) {
	u := args.Field("u_component")
	v := args.Field("v_component")
	if u.Len() != v.Len() {
		return nil, fmt.Errorf("wind components differ in length: u has %d values, v has %d", u.Len(), v.Len())
	}

	uv := u.Values()
	vv := v.Values()
	speed := make([]float64, len(uv))
	direction := make([]float64, len(uv))
	for i := range uv {
		speed[i] = math.Hypot(uv[i], vv[i])
		direction[i] = math.Mod(math.Atan2(uv[i], vv[i])*degreesPerRadian+180, 360)
	}

	key := args.SelectKey()
	return field.List{
		field.FromTemplate(u, speed, map[string]any{key: args.Identifier("wind_speed")}),
		field.FromTemplate(v, direction, map[string]any{key: args.Identifier("wind_direction")}),
	}, nil
}

func windBackward(args matching.Args) (field.List, error) {
	speed := args.Field("wind_speed")
	direction := args.Field("wind_direction")
	if speed.Len() != direction.Len() {
		return nil, fmt.Errorf("wind speed and direction differ in length: speed has %d values, direction %d", speed.Len(), direction.Len())
	}

	sv := speed.Values()
	dv := direction.Values()
	u := make([]float64, len(sv))
	v := make([]float64, len(sv))
	for i := range sv {
		rad := dv[i] / degreesPerRadian
		u[i] = -sv[i] * math.Sin(rad)
		v[i] = -sv[i] * math.Cos(rad)
	}

	key := args.SelectKey()
	return field.List{
		field.FromTemplate(speed, u, map[string]any{key: args.Identifier("u_component")}),
		field.FromTemplate(direction, v, map[string]any{key: args.Identifier("v_component")}),
	}, nil
}
