package filters

import (
	"fmt"
	"math"

	"github.com/ecmwf/anemoi-transform-sub000/pkg/field"
	"github.com/ecmwf/anemoi-transform-sub000/pkg/matching"
	"github.com/ecmwf/anemoi-transform-sub000/pkg/transform"
)

// Thermodynamical constants: the gas-constant ratio and the IFS saturation
// vapour pressure formulation over water.
const (
	epsilon = 0.621981 // Rd / Rv

	svpA1 = 611.21 // Pa
	svpA3 = 17.502
	svpA4 = 32.19  // K
	svpT0 = 273.16 // K
)

// NewHumidityConversion builds the q_2_r filter: specific humidity to
// relative humidity on pressure levels, using the temperature grouped into
// the same tuple. The pressure comes from the levelist metadata key
// (hectopascals).
func NewHumidityConversion(cfg map[string]any) (transform.Transform, error) {
	const name = "q_2_r"
	formals := []string{"relative_humidity", "temperature", "humidity"}
	if err := checkInputs(name, cfg, nil, append(formals, "allow_partial")...); err != nil {
		return nil, err
	}
	overrides, err := identifierOverrides(name, cfg, formals...)
	if err != nil {
		return nil, err
	}
	allowPartial, err := boolOption(name, cfg, "allow_partial", false)
	if err != nil {
		return nil, err
	}

	spec := matching.Spec{
		Params: []matching.Binding{
			{Name: "relative_humidity", Default: "r"},
			{Name: "temperature", Default: "t"},
			{Name: "humidity", Default: "q"},
		},
		Forward:  []string{"temperature", "humidity"},
		Backward: []string{"relative_humidity", "temperature"},
	}
	var opts []matching.Option
	if allowPartial {
		opts = append(opts, matching.Partial())
	}
	return matching.NewBinder(name, spec, overrides, humidityForward, humidityBackward, opts...)
}

// NewHumidityFromRelative builds the r_2_q filter, the reversed form of
// q_2_r.
func NewHumidityFromRelative(cfg map[string]any) (transform.Transform, error) {
	t, err := NewHumidityConversion(cfg)
	if err != nil {
		return nil, err
	}
	return transform.Reverse(t), nil
}

func humidityForward(args matching.Args) (field.List, error) {
	temperature := args.Field("temperature")
	humidity := args.Field("humidity")
	if temperature.Len() != humidity.Len() {
		return nil, fmt.Errorf("temperature and humidity differ in length: %d and %d values", temperature.Len(), humidity.Len())
	}

	pressure, err := levelPressure(humidity)
	if err != nil {
		return nil, err
	}

	tv := temperature.Values()
	qv := humidity.Values()
	rh := make([]float64, len(qv))
	for i := range qv {
		e := vapourPressure(qv[i], pressure)
		rh[i] = 100 * e / saturationVapourPressure(tv[i])
	}

	out := field.FromTemplate(humidity, rh, map[string]any{args.SelectKey(): args.Identifier("relative_humidity")})
	return field.List{out, temperature, humidity}, nil
}

func humidityBackward(args matching.Args) (field.List, error) {
	relative := args.Field("relative_humidity")
	temperature := args.Field("temperature")
	if relative.Len() != temperature.Len() {
		return nil, fmt.Errorf("relative humidity and temperature differ in length: %d and %d values", relative.Len(), temperature.Len())
	}

	pressure, err := levelPressure(temperature)
	if err != nil {
		return nil, err
	}

	rv := relative.Values()
	tv := temperature.Values()
	q := make([]float64, len(rv))
	for i := range rv {
		e := rv[i] * saturationVapourPressure(tv[i]) / 100
		q[i] = epsilon * e / (pressure - (1-epsilon)*e)
	}

	out := field.FromTemplate(relative, q, map[string]any{args.SelectKey(): args.Identifier("humidity")})
	return field.List{out, temperature, relative}, nil
}

// levelPressure reads the field's pressure level (hectopascals) and converts
// it to pascals.
func levelPressure(f *field.Field) (float64, error) {
	level, ok := f.Metadata().Float("levelist")
	if !ok {
		return 0, fmt.Errorf("field %s has no levelist metadata (pressure level required)", f)
	}
	return 100 * level, nil
}

// saturationVapourPressure returns the saturation vapour pressure over water
// in pascals for a temperature in kelvin.
func saturationVapourPressure(t float64) float64 {
	return svpA1 * math.Exp(svpA3*(t-svpT0)/(t-svpA4))
}

// vapourPressure returns the vapour pressure in pascals from specific
// humidity (kg/kg) and pressure (Pa).
func vapourPressure(q, p float64) float64 {
	return p * q / (epsilon + (1-epsilon)*q)
}
