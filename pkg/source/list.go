package source

import (
	"fmt"

	"github.com/ecmwf/anemoi-transform-sub000/pkg/field"
	"github.com/ecmwf/anemoi-transform-sub000/pkg/transform"
)

// NewList builds the inline source: fields declared directly in the stage
// configuration under "fields". Documents decode at construction, so a bad
// declaration fails the build rather than the run.
func NewList(cfg map[string]any) (transform.Transform, error) {
	if err := checkInputs("list", cfg, []string{"fields"}); err != nil {
		return nil, err
	}
	docs, ok := cfg["fields"].([]any)
	if !ok {
		return nil, fmt.Errorf(`source "list": option "fields" must be a list of field documents`)
	}
	fields, err := decodeFields(docs)
	if err != nil {
		return nil, fmt.Errorf(`source "list": %w`, err)
	}
	return newSource("list", func() (field.List, error) {
		return append(field.List(nil), fields...), nil
	}), nil
}
