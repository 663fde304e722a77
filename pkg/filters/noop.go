package filters

import (
	"github.com/ecmwf/anemoi-transform-sub000/pkg/field"
	"github.com/ecmwf/anemoi-transform-sub000/pkg/transform"
)

// NoOp passes the collection through unchanged in both directions.
type NoOp struct{}

// NewNoOp builds the noop filter. Any configuration is accepted and ignored.
func NewNoOp(cfg map[string]any) (transform.Transform, error) {
	return NoOp{}, nil
}

// Name returns the filter name.
func (NoOp) Name() string {
	return "noop"
}

// Forward returns the input unchanged.
func (NoOp) Forward(data field.List) (field.List, error) {
	return data, nil
}

// Backward returns the input unchanged.
func (NoOp) Backward(data field.List) (field.List, error) {
	return data, nil
}
