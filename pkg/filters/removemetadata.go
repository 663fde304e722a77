package filters

import (
	"fmt"

	"github.com/ecmwf/anemoi-transform-sub000/pkg/field"
	"github.com/ecmwf/anemoi-transform-sub000/pkg/transform"
)

// NewRemoveMetadata builds the remove_metadata filter: the listed metadata
// keys are cleared from every field, or only from the fields of one parameter
// when param is given. Dropped metadata is not recoverable, so the filter is
// forward-only.
func NewRemoveMetadata(cfg map[string]any) (transform.Transform, error) {
	const name = "remove_metadata"
	if err := checkInputs(name, cfg, []string{"keys"}, "param"); err != nil {
		return nil, err
	}
	keys, err := stringList(name, cfg, "keys")
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("filter %q: keys cannot be empty", name)
	}
	param, err := stringOption(name, cfg, "param", "")
	if err != nil {
		return nil, err
	}

	criteria := map[string]any{}
	if param != "" {
		criteria["param"] = param
	}
	selection, err := field.NewSelection(criteria)
	if err != nil {
		return nil, err
	}

	overrides := make(map[string]any, len(keys))
	for _, k := range keys {
		overrides[k] = nil
	}
	forward := func(f *field.Field) (*field.Field, error) {
		return field.FromTemplate(f, nil, overrides), nil
	}
	return NewSingleField(name, selection, selection, forward, nil)
}
