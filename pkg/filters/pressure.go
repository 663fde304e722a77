package filters

import (
	"math"

	"github.com/ecmwf/anemoi-transform-sub000/pkg/field"
	"github.com/ecmwf/anemoi-transform-sub000/pkg/transform"
)

// NewLnspToSp builds the lnsp_to_sp filter: the natural log of surface
// pressure to surface pressure. The forward direction clears the level
// metadata, since lnsp is archived on a model level while sp is a surface
// parameter.
func NewLnspToSp(cfg map[string]any) (transform.Transform, error) {
	const name = "lnsp_to_sp"
	if err := checkInputs(name, cfg, nil, "lnsp", "sp"); err != nil {
		return nil, err
	}
	lnsp, err := stringOption(name, cfg, "lnsp", "lnsp")
	if err != nil {
		return nil, err
	}
	sp, err := stringOption(name, cfg, "sp", "sp")
	if err != nil {
		return nil, err
	}

	forwardSelect, err := field.NewSelection(map[string]any{"param": lnsp})
	if err != nil {
		return nil, err
	}
	backwardSelect, err := field.NewSelection(map[string]any{"param": sp})
	if err != nil {
		return nil, err
	}

	forward := func(f *field.Field) (*field.Field, error) {
		values := f.Values()
		for i := range values {
			values[i] = math.Exp(values[i])
		}
		return field.FromTemplate(f, values, map[string]any{"param": sp, "levelist": nil, "level": nil}), nil
	}
	backward := func(f *field.Field) (*field.Field, error) {
		values := f.Values()
		for i := range values {
			values[i] = math.Log(values[i])
		}
		return field.FromTemplate(f, values, map[string]any{"param": lnsp}), nil
	}
	return NewSingleField(name, forwardSelect, backwardSelect, forward, backward)
}

// NewSpFromLnsp builds the sp_to_lnsp filter, the reversed form of
// lnsp_to_sp.
func NewSpFromLnsp(cfg map[string]any) (transform.Transform, error) {
	t, err := NewLnspToSp(cfg)
	if err != nil {
		return nil, err
	}
	return transform.Reverse(t), nil
}
