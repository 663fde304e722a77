package field

import (
	"fmt"
	"sort"
	"strings"
)

// allowedSelectionKeys lists the metadata keys a selection may match on,
// mirroring the keys upstream data requests understand.
var allowedSelectionKeys = map[string]bool{
	"param":    true,
	"levelist": true,
}

// Selection matches fields by exact metadata values. An empty selection
// matches every field.
type Selection map[string]any

// NewSelection validates the criteria keys and returns a selection.
func NewSelection(criteria map[string]any) (Selection, error) {
	for k := range criteria {
		if !allowedSelectionKeys[k] {
			return nil, fmt.Errorf("invalid selection key %q (allowed: %s)", k, allowedKeyList())
		}
	}
	s := make(Selection, len(criteria))
	for k, v := range criteria {
		s[k] = v
	}
	return s, nil
}

// Matches reports whether every selection entry equals the field's
// corresponding metadata value. Values are compared in their canonical
// string form.
func (s Selection) Matches(f *Field) bool {
	for k, want := range s {
		got, ok := f.Metadata().String(k)
		if !ok || got != formatScalar(want) {
			return false
		}
	}
	return true
}

func allowedKeyList() string {
	keys := make([]string, 0, len(allowedSelectionKeys))
	for k := range allowedSelectionKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, ", ")
}
