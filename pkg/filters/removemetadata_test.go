package filters

import (
	"errors"
	"strings"
	"testing"

	"github.com/ecmwf/anemoi-transform-sub000/pkg/field"
	"github.com/ecmwf/anemoi-transform-sub000/pkg/transform"
)

func TestRemoveMetadata_ClearsKeys(t *testing.T) {
	f, err := NewRemoveMetadata(map[string]any{"keys": []any{"expver", "class"}})
	if err != nil {
		t.Fatalf("NewRemoveMetadata() error: %v", err)
	}

	in := testField([]float64{1, 2}, map[string]any{"param": "t", "expver": "0001", "class": "od"})
	out, err := f.Forward(field.List{in})
	if err != nil {
		t.Fatalf("Forward() error: %v", err)
	}

	md := out[0].Metadata()
	if _, ok := md.Get("expver"); ok {
		t.Error("expver should be removed")
	}
	if _, ok := md.Get("class"); ok {
		t.Error("class should be removed")
	}
	if p, ok := md.String("param"); !ok || p != "t" {
		t.Errorf("param should survive, got %q", p)
	}
	assertValues(t, out[0], []float64{1, 2})

	// The input field is untouched; the output is a derived copy.
	if _, ok := in.Metadata().Get("expver"); !ok {
		t.Error("input field should keep its metadata")
	}
}

func TestRemoveMetadata_ScopedToParam(t *testing.T) {
	f, err := NewRemoveMetadata(map[string]any{"keys": "expver", "param": "t"})
	if err != nil {
		t.Fatalf("NewRemoveMetadata() error: %v", err)
	}

	humidity := testField([]float64{0.005}, map[string]any{"param": "q", "expver": "0001"})
	data := field.List{
		testField([]float64{280}, map[string]any{"param": "t", "expver": "0001"}),
		humidity,
	}
	out, err := f.Forward(data)
	if err != nil {
		t.Fatalf("Forward() error: %v", err)
	}

	if _, ok := out[0].Metadata().Get("expver"); ok {
		t.Error("expver should be removed from the selected parameter")
	}
	if out[1] != humidity {
		t.Error("fields outside the selection should pass through untouched")
	}
}

func TestNewRemoveMetadata_ConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		config  map[string]any
		wantErr bool
		errMsg  string
	}{
		{
			name:    "missing keys",
			config:  map[string]any{},
			wantErr: true,
			errMsg:  "missing required input(s): keys",
		},
		{
			name:    "empty key list",
			config:  map[string]any{"keys": []any{}},
			wantErr: true,
			errMsg:  "keys cannot be empty",
		},
		{
			name:    "non-string key",
			config:  map[string]any{"keys": []any{1}},
			wantErr: true,
			errMsg:  `option "keys" must hold strings`,
		},
		{
			name:    "unknown option",
			config:  map[string]any{"keys": "expver", "scope": "x"},
			wantErr: true,
			errMsg:  "unknown input(s): scope",
		},
		{
			name:    "single string key",
			config:  map[string]any{"keys": "expver"},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRemoveMetadata(tt.config)
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

func TestRemoveMetadata_BackwardNotReversible(t *testing.T) {
	f, err := NewRemoveMetadata(map[string]any{"keys": "expver"})
	if err != nil {
		t.Fatalf("NewRemoveMetadata() error: %v", err)
	}

	_, err = f.Backward(field.List{testField([]float64{1}, map[string]any{"param": "t"})})
	if !errors.Is(err, transform.ErrNotReversible) {
		t.Fatalf("expected a not-reversible error, got %v", err)
	}
}
