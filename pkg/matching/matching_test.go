package matching

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecmwf/anemoi-transform-sub000/pkg/field"
	"github.com/ecmwf/anemoi-transform-sub000/pkg/grouping"
	"github.com/ecmwf/anemoi-transform-sub000/pkg/transform"
)

func mkField(param string, level int, values ...float64) *field.Field {
	return field.New(values, field.MetadataFromMap(map[string]any{
		"param":    param,
		"levelist": level,
	}))
}

// humiditySpec declares one input role with a canonical identifier and one
// output role, the usual shape of a single-parameter matching filter.
var humiditySpec = Spec{
	Params: []Binding{
		{Name: "humidity", Default: "q"},
		{Name: "scaled", Default: "q2"},
	},
	Forward: []string{"humidity"},
}

// doubling emits one field with doubled values labeled with the scaled
// identifier.
func doubling(args Args) (field.List, error) {
	in := args.Field("humidity")
	values := in.Values()
	for i := range values {
		values[i] *= 2
	}
	out := field.FromTemplate(in, values, map[string]any{"param": args.Identifier("scaled")})
	return field.List{out}, nil
}

func TestBinderUsesDeclaredDefault(t *testing.T) {
	b, err := NewBinder("double", humiditySpec, nil, doubling, nil)
	require.NoError(t, err)
	assert.Equal(t, "q", b.Identifier("humidity"))
	assert.Equal(t, "param", b.SelectKey())

	out, err := b.Forward(field.List{mkField("q", 850, 1, 2)})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, []float64{2, 4}, out[0].Values())

	param, _ := out[0].Metadata().String("param")
	assert.Equal(t, "q2", param)
	level, _ := out[0].Metadata().String("levelist")
	assert.Equal(t, "850", level, "template metadata preserved")
}

func TestBinderOverrideRebindsTarget(t *testing.T) {
	overrides := map[string]string{"humidity": "specific_humidity"}
	b, err := NewBinder("double", humiditySpec, overrides, doubling, nil)
	require.NoError(t, err)
	assert.Equal(t, "specific_humidity", b.Identifier("humidity"))

	data := field.List{
		mkField("q", 850, 1),                 // no longer matched
		mkField("specific_humidity", 850, 3), // grouped instead
	}
	out, err := b.Forward(data)
	require.NoError(t, err)
	require.Len(t, out, 2)

	param, _ := out[0].Metadata().String("param")
	assert.Equal(t, "q", param, "unmatched field overflows first")
	assert.Equal(t, []float64{6}, out[1].Values())
}

func TestBinderOverflowPrecedesOutputs(t *testing.T) {
	b, err := NewBinder("double", humiditySpec, nil, doubling, nil)
	require.NoError(t, err)

	data := field.List{
		mkField("t", 500, 10),
		mkField("q", 500, 1),
		mkField("z", 500, 11),
	}
	out, err := b.Forward(data)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, []string{"t", "z", "q2"}, out.Identifiers("param"))
}

func TestBinderUnknownOverrideKey(t *testing.T) {
	_, err := NewBinder("double", humiditySpec, map[string]string{"moisture": "q"}, doubling, nil)
	require.Error(t, err)

	var unknown *UnknownFormalParameterError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "moisture", unknown.Name)
	assert.Equal(t, "double", unknown.Filter)
}

func TestBinderUnknownDirectionEntry(t *testing.T) {
	spec := humiditySpec
	spec.Forward = []string{"pressure"}

	_, err := NewBinder("double", spec, nil, doubling, nil)
	var unknown *UnknownFormalParameterError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "pressure", unknown.Name)
}

func TestBinderRequiresIdentifier(t *testing.T) {
	spec := Spec{
		Params:  []Binding{{Name: "input"}},
		Forward: []string{"input"},
	}

	_, err := NewBinder("scale", spec, nil, doubling, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"input" has no identifier`)

	_, err = NewBinder("scale", spec, map[string]string{"input": "2t"}, doubling, nil)
	require.NoError(t, err)
}

func TestBinderBackwardWithoutFunction(t *testing.T) {
	b, err := NewBinder("double", humiditySpec, nil, doubling, nil)
	require.NoError(t, err)

	_, err = b.Backward(field.List{mkField("q2", 850, 2)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, transform.ErrNotReversible))

	var nr *transform.NotReversibleError
	require.True(t, errors.As(err, &nr))
	assert.Equal(t, "double", nr.Filter)
}

func TestBinderBackwardDeclarationMismatch(t *testing.T) {
	spec := humiditySpec
	spec.Backward = []string{"scaled"}

	_, err := NewBinder("double", spec, nil, doubling, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "declared together")

	_, err = NewBinder("double", humiditySpec, nil, doubling, doubling)
	require.Error(t, err)
}

func TestBinderBackwardUsesOwnTable(t *testing.T) {
	spec := Spec{
		Params: []Binding{
			{Name: "humidity", Default: "q"},
			{Name: "scaled", Default: "q2"},
		},
		Forward:  []string{"humidity"},
		Backward: []string{"scaled"},
	}
	halving := func(args Args) (field.List, error) {
		in := args.Field("scaled")
		values := in.Values()
		for i := range values {
			values[i] /= 2
		}
		return field.List{field.FromTemplate(in, values, map[string]any{"param": args.Identifier("humidity")})}, nil
	}

	b, err := NewBinder("double", spec, nil, doubling, halving)
	require.NoError(t, err)

	forward, err := b.Forward(field.List{mkField("q", 850, 3)})
	require.NoError(t, err)

	back, err := b.Backward(forward)
	require.NoError(t, err)
	require.Len(t, back, 1)
	assert.Equal(t, []float64{3}, back[0].Values())
	param, _ := back[0].Metadata().String("param")
	assert.Equal(t, "q", param)
}

func TestBinderPropagatesFormulaErrors(t *testing.T) {
	boom := errors.New("negative humidity")
	failing := func(args Args) (field.List, error) { return nil, boom }

	b, err := NewBinder("double", humiditySpec, nil, failing, nil)
	require.NoError(t, err)

	_, err = b.Forward(field.List{mkField("q", 850, 1)})
	assert.True(t, errors.Is(err, boom), "formula errors propagate unchanged")
}

func TestBinderPropagatesGroupingErrors(t *testing.T) {
	spec := Spec{
		Params: []Binding{
			{Name: "u_component", Default: "u"},
			{Name: "v_component", Default: "v"},
		},
		Forward: []string{"u_component", "v_component"},
	}
	pair := func(args Args) (field.List, error) {
		return field.List{args.Field("u_component")}, nil
	}

	b, err := NewBinder("wind", spec, nil, pair, nil)
	require.NoError(t, err)

	_, err = b.Forward(field.List{mkField("u", 500, 1)})
	var missing *grouping.MissingComponentError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{"v"}, missing.Missing)
}

func TestBinderPartialOption(t *testing.T) {
	spec := Spec{
		Params: []Binding{
			{Name: "u_component", Default: "u"},
			{Name: "v_component", Default: "v"},
		},
		Forward: []string{"u_component", "v_component"},
	}
	pair := func(args Args) (field.List, error) {
		return field.List{args.Field("u_component")}, nil
	}

	b, err := NewBinder("wind", spec, nil, pair, nil, Partial())
	require.NoError(t, err)

	out, err := b.Forward(field.List{mkField("u", 500, 1)})
	require.NoError(t, err)
	assert.Empty(t, out, "incomplete bucket skipped in partial mode")
}

func TestBinderDuplicateFormalDeclaration(t *testing.T) {
	spec := Spec{
		Params:  []Binding{{Name: "x", Default: "a"}, {Name: "x", Default: "b"}},
		Forward: []string{"x"},
	}
	_, err := NewBinder("dup", spec, nil, doubling, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `declared twice`)
}
