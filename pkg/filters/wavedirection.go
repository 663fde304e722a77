package filters

import (
	"fmt"
	"math"

	"github.com/ecmwf/anemoi-transform-sub000/pkg/field"
	"github.com/ecmwf/anemoi-transform-sub000/pkg/matching"
	"github.com/ecmwf/anemoi-transform-sub000/pkg/transform"
)

// CosSinWaveDirection converts the mean wave direction into its cosine and
// sine components, and back via atan2.
type CosSinWaveDirection struct {
	*matching.Binder
}

// NewCosSinWaveDirection builds the cos_sin_mean_wave_direction filter.
func NewCosSinWaveDirection(cfg map[string]any) (transform.Transform, error) {
	const name = "cos_sin_mean_wave_direction"
	formals := []string{"mean_wave_direction", "cos_mean_wave_direction", "sin_mean_wave_direction"}
	if err := checkInputs(name, cfg, nil, formals...); err != nil {
		return nil, err
	}
	overrides, err := identifierOverrides(name, cfg, formals...)
	if err != nil {
		return nil, err
	}

	spec := matching.Spec{
		Params: []matching.Binding{
			{Name: "mean_wave_direction", Default: "mwd"},
			{Name: "cos_mean_wave_direction", Default: "cos_mwd"},
			{Name: "sin_mean_wave_direction", Default: "sin_mwd"},
		},
		Forward:  []string{"mean_wave_direction"},
		Backward: []string{"cos_mean_wave_direction", "sin_mean_wave_direction"},
	}
	b, err := matching.NewBinder(name, spec, overrides, waveDirectionForward, waveDirectionBackward)
	if err != nil {
		return nil, err
	}
	return &CosSinWaveDirection{Binder: b}, nil
}

// PatchRequest rewrites an upstream data request: when the cosine or sine
// component is requested, ask for the mean wave direction instead.
func (c *CosSinWaveDirection) PatchRequest(req transform.Request) transform.Request {
	cos := c.Identifier("cos_mean_wave_direction")
	sin := c.Identifier("sin_mean_wave_direction")
	if !req.Has("param", cos) && !req.Has("param", sin) {
		return req
	}
	out := req.Clone()
	out.Remove("param", cos, sin)
	out.Add("param", c.Identifier("mean_wave_direction"))
	return out
}

func waveDirectionForward(args matching.Args) (field.List, error) {
	mwd := args.Field("mean_wave_direction")
	dv := mwd.Values()
	cos := make([]float64, len(dv))
	sin := make([]float64, len(dv))
	for i, deg := range dv {
		rad := deg / degreesPerRadian
		cos[i] = math.Cos(rad)
		sin[i] = math.Sin(rad)
	}

	key := args.SelectKey()
	return field.List{
		field.FromTemplate(mwd, cos, map[string]any{key: args.Identifier("cos_mean_wave_direction")}),
		field.FromTemplate(mwd, sin, map[string]any{key: args.Identifier("sin_mean_wave_direction")}),
	}, nil
}

func waveDirectionBackward(args matching.Args) (field.List, error) {
	cos := args.Field("cos_mean_wave_direction")
	sin := args.Field("sin_mean_wave_direction")
	if cos.Len() != sin.Len() {
		return nil, fmt.Errorf("wave direction components differ in length: cos has %d values, sin %d", cos.Len(), sin.Len())
	}
	cv := cos.Values()
	sv := sin.Values()
	mwd := make([]float64, len(cv))
	for i := range cv {
		deg := math.Atan2(sv[i], cv[i]) * degreesPerRadian
		switch {
		case deg >= 360:
			deg -= 360
		case deg < 0:
			deg += 360
		}
		mwd[i] = deg
	}

	out := field.FromTemplate(cos, mwd, map[string]any{args.SelectKey(): args.Identifier("mean_wave_direction")})
	return field.List{out}, nil
}
