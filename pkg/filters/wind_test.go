package filters

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/ecmwf/anemoi-transform-sub000/pkg/field"
	"github.com/ecmwf/anemoi-transform-sub000/pkg/grouping"
	"github.com/ecmwf/anemoi-transform-sub000/pkg/transform"
)

func TestWindComponents_Forward(t *testing.T) {
	f, err := NewWindComponents(nil)
	if err != nil {
		t.Fatalf("NewWindComponents() error: %v", err)
	}

	data := field.List{
		testField([]float64{3}, map[string]any{"param": "u", "levelist": 500}),
		testField([]float64{4}, map[string]any{"param": "v", "levelist": 500}),
	}
	out, err := f.Forward(data)
	if err != nil {
		t.Fatalf("Forward() error: %v", err)
	}

	if len(out) != 2 {
		t.Fatalf("expected exactly 2 fields, got %d", len(out))
	}
	if got := identifiers(out); got != "ws wdir" {
		t.Errorf("expected identifiers \"ws wdir\", got %q", got)
	}
	assertValues(t, out[0], []float64{5})
	assertValues(t, out[1], []float64{216.86989764584402})
	for _, o := range out {
		if lev, ok := o.Metadata().Float("levelist"); !ok || lev != 500 {
			t.Errorf("levelist 500 should be preserved on %s", o)
		}
	}
}

func TestWindComponents_RoundTrip(t *testing.T) {
	f, err := NewWindComponents(nil)
	if err != nil {
		t.Fatalf("NewWindComponents() error: %v", err)
	}

	u := []float64{3, -2, 0}
	v := []float64{4, 1, -7}
	data := field.List{
		testField(u, map[string]any{"param": "u", "levelist": 850}),
		testField(v, map[string]any{"param": "v", "levelist": 850}),
	}

	forward, err := f.Forward(data)
	if err != nil {
		t.Fatalf("Forward() error: %v", err)
	}
	backward, err := f.Backward(forward)
	if err != nil {
		t.Fatalf("Backward() error: %v", err)
	}

	if got := identifiers(backward); got != "u v" {
		t.Fatalf("expected identifiers \"u v\", got %q", got)
	}
	assertValues(t, backward[0], u)
	assertValues(t, backward[1], v)
}

func TestWindComponents_UnmatchedFieldsPassThroughFirst(t *testing.T) {
	f, err := NewWindComponents(nil)
	if err != nil {
		t.Fatalf("NewWindComponents() error: %v", err)
	}

	temperature := testField([]float64{280}, map[string]any{"param": "t", "levelist": 500})
	data := field.List{
		temperature,
		testField([]float64{3}, map[string]any{"param": "u", "levelist": 500}),
		testField([]float64{4}, map[string]any{"param": "v", "levelist": 500}),
	}
	out, err := f.Forward(data)
	if err != nil {
		t.Fatalf("Forward() error: %v", err)
	}

	if got := identifiers(out); got != "t ws wdir" {
		t.Errorf("expected identifiers \"t ws wdir\", got %q", got)
	}
	if out[0] != temperature {
		t.Error("unmatched field should pass through untouched")
	}
}

func TestWindComponents_GroupsPerFingerprint(t *testing.T) {
	f, err := NewWindComponents(nil)
	if err != nil {
		t.Fatalf("NewWindComponents() error: %v", err)
	}

	data := field.List{
		testField([]float64{3}, map[string]any{"param": "u", "levelist": 500}),
		testField([]float64{4}, map[string]any{"param": "v", "levelist": 500}),
		testField([]float64{1}, map[string]any{"param": "u", "levelist": 850}),
		testField([]float64{2}, map[string]any{"param": "v", "levelist": 850}),
	}
	out, err := f.Forward(data)
	if err != nil {
		t.Fatalf("Forward() error: %v", err)
	}
	if len(out) != 4 {
		t.Fatalf("expected 4 fields, got %d", len(out))
	}

	byLevel := map[float64][]string{}
	for _, o := range out {
		lev, ok := o.Metadata().Float("levelist")
		if !ok {
			t.Fatalf("field %s lost its levelist", o)
		}
		p, _ := o.Metadata().String("param")
		byLevel[lev] = append(byLevel[lev], p)
	}
	for _, lev := range []float64{500, 850} {
		if got := strings.Join(byLevel[lev], " "); got != "ws wdir" {
			t.Errorf("level %v: expected \"ws wdir\", got %q", lev, got)
		}
	}
}

func TestWindComponents_MissingComponentFails(t *testing.T) {
	f, err := NewWindComponents(nil)
	if err != nil {
		t.Fatalf("NewWindComponents() error: %v", err)
	}

	data := field.List{
		testField([]float64{3}, map[string]any{"param": "u", "levelist": 500}),
	}
	_, err = f.Forward(data)

	var missing *grouping.MissingComponentError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingComponentError, got %v", err)
	}
	if len(missing.Missing) != 1 || missing.Missing[0] != "v" {
		t.Errorf("expected missing component [v], got %v", missing.Missing)
	}
}

func TestWindComponents_DuplicateComponentFails(t *testing.T) {
	f, err := NewWindComponents(nil)
	if err != nil {
		t.Fatalf("NewWindComponents() error: %v", err)
	}

	data := field.List{
		testField([]float64{3}, map[string]any{"param": "u", "levelist": 500}),
		testField([]float64{5}, map[string]any{"param": "u", "levelist": 500}),
	}
	_, err = f.Forward(data)

	var duplicate *grouping.DuplicateComponentError
	if !errors.As(err, &duplicate) {
		t.Fatalf("expected DuplicateComponentError, got %v", err)
	}
	if duplicate.Identifier != "u" {
		t.Errorf("expected duplicate identifier u, got %q", duplicate.Identifier)
	}
}

func TestWindComponents_IdentifierOverrides(t *testing.T) {
	f, err := NewWindComponents(map[string]any{
		"u_component":    "10u",
		"v_component":    "10v",
		"wind_speed":     "10si",
		"wind_direction": "10wdir",
	})
	if err != nil {
		t.Fatalf("NewWindComponents() error: %v", err)
	}

	data := field.List{
		testField([]float64{3}, map[string]any{"param": "u"}),
		testField([]float64{4}, map[string]any{"param": "v"}),
		testField([]float64{6}, map[string]any{"param": "10u"}),
		testField([]float64{8}, map[string]any{"param": "10v"}),
	}
	out, err := f.Forward(data)
	if err != nil {
		t.Fatalf("Forward() error: %v", err)
	}

	if got := identifiers(out); got != "u v 10si 10wdir" {
		t.Errorf("expected identifiers \"u v 10si 10wdir\", got %q", got)
	}
	assertValues(t, out[2], []float64{10})
}

func TestNewWindComponents_ConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		config  map[string]any
		wantErr bool
		errMsg  string
	}{
		{
			name:    "empty config uses defaults",
			config:  nil,
			wantErr: false,
		},
		{
			name:    "unknown option",
			config:  map[string]any{"speed": "ws"},
			wantErr: true,
			errMsg:  "unknown input(s): speed",
		},
		{
			name:    "non-string identifier",
			config:  map[string]any{"u_component": 5},
			wantErr: true,
			errMsg:  `identifier "u_component" must be a string`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewWindComponents(tt.config)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error containing %q, got nil", tt.errMsg)
				} else if tt.errMsg != "" && !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("expected error containing %q, got %q", tt.errMsg, err.Error())
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestWindComponents_PatchRequest(t *testing.T) {
	f, err := NewWindComponents(nil)
	if err != nil {
		t.Fatalf("NewWindComponents() error: %v", err)
	}

	req := transform.Request{"param": {"ws", "wdir", "t"}}
	got := transform.PatchRequest(f, req)
	if !reflect.DeepEqual(got["param"], []string{"t", "u", "v"}) {
		t.Errorf("expected param request [t u v], got %v", got["param"])
	}
	if !reflect.DeepEqual(req["param"], []string{"ws", "wdir", "t"}) {
		t.Errorf("original request should be untouched, got %v", req["param"])
	}

	unrelated := transform.Request{"param": {"t"}}
	if got := transform.PatchRequest(f, unrelated); !reflect.DeepEqual(got["param"], []string{"t"}) {
		t.Errorf("request without speed or direction should be unchanged, got %v", got["param"])
	}
}

func TestWindFromSpeedDirection_Reversed(t *testing.T) {
	f, err := NewWindFromSpeedDirection(nil)
	if err != nil {
		t.Fatalf("NewWindFromSpeedDirection() error: %v", err)
	}
	if f.Name() != "reversed(uv_2_ddff)" {
		t.Errorf("unexpected name %q", f.Name())
	}

	data := field.List{
		testField([]float64{5}, map[string]any{"param": "ws", "levelist": 500}),
		testField([]float64{216.86989764584402}, map[string]any{"param": "wdir", "levelist": 500}),
	}
	out, err := f.Forward(data)
	if err != nil {
		t.Fatalf("Forward() error: %v", err)
	}
	if got := identifiers(out); got != "u v" {
		t.Fatalf("expected identifiers \"u v\", got %q", got)
	}
	assertValues(t, out[0], []float64{3})
	assertValues(t, out[1], []float64{4})

	req := transform.Request{"param": {"ws", "wdir"}}
	patched := transform.PatchRequest(f, req)
	if !reflect.DeepEqual(patched["param"], []string{"u", "v"}) {
		t.Errorf("reversed filter should delegate request patching, got %v", patched["param"])
	}
}
