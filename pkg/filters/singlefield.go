package filters

import (
	"fmt"

	"github.com/ecmwf/anemoi-transform-sub000/pkg/field"
	"github.com/ecmwf/anemoi-transform-sub000/pkg/transform"
)

// FieldFunc transforms one selected field into its replacement.
type FieldFunc func(f *field.Field) (*field.Field, error)

// SingleField applies a per-field transform to the fields matching a
// selection. Non-matching fields pass through unchanged at their original
// position, so the collection order is preserved. Each direction has its own
// selection because a forward transform may rewrite the metadata the backward
// direction selects on.
type SingleField struct {
	name           string
	forwardSelect  field.Selection
	backwardSelect field.Selection
	forwardFn      FieldFunc
	backwardFn     FieldFunc
}

// NewSingleField builds a single-field filter. A nil backward function makes
// the filter non-reversible.
func NewSingleField(name string, forwardSelect, backwardSelect field.Selection, forwardFn, backwardFn FieldFunc) (*SingleField, error) {
	if name == "" {
		return nil, fmt.Errorf("single-field filter needs a name")
	}
	if forwardFn == nil {
		return nil, fmt.Errorf("filter %q: forward field function is required", name)
	}
	return &SingleField{
		name:           name,
		forwardSelect:  forwardSelect,
		backwardSelect: backwardSelect,
		forwardFn:      forwardFn,
		backwardFn:     backwardFn,
	}, nil
}

// Name returns the filter name.
func (s *SingleField) Name() string {
	return s.name
}

// Forward transforms the fields matching the forward selection in place.
func (s *SingleField) Forward(data field.List) (field.List, error) {
	return applyEach(data, s.forwardSelect, s.forwardFn)
}

// Backward transforms the fields matching the backward selection in place.
func (s *SingleField) Backward(data field.List) (field.List, error) {
	if s.backwardFn == nil {
		return nil, transform.NotReversible(s.name)
	}
	return applyEach(data, s.backwardSelect, s.backwardFn)
}

func applyEach(data field.List, sel field.Selection, fn FieldFunc) (field.List, error) {
	result := make(field.List, 0, len(data))
	for _, f := range data {
		if !sel.Matches(f) {
			result = append(result, f)
			continue
		}
		out, err := fn(f)
		if err != nil {
			return nil, err
		}
		result = append(result, out)
	}
	return result, nil
}
