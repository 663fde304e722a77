// Package field defines the data model moved through transform pipelines:
// fields (a numeric payload plus descriptive metadata), ordered field lists,
// and metadata-based selections.
package field

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Item is one metadata entry.
type Item struct {
	Key   string
	Value any
}

// Metadata is an ordered key/value map describing a field. A metadata map may
// reference a parent: lookups fall back to the parent when a key is not set
// locally, so a field derived from a template sees the template's metadata
// underneath its own overrides. Setting a key to nil clears it, masking any
// parent value.
//
// Metadata is not safe for concurrent mutation; pipelines evaluate
// single-threaded and derived fields get their own child maps.
type Metadata struct {
	keys   []string
	values map[string]any
	parent *Metadata
}

// NewMetadata returns an empty metadata map.
func NewMetadata() *Metadata {
	return &Metadata{values: make(map[string]any)}
}

// MetadataFromMap builds a metadata map from an unordered Go map. Keys are
// inserted in sorted order so that two calls with equal maps produce
// identical iteration order.
func MetadataFromMap(values map[string]any) *Metadata {
	m := NewMetadata()
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		m.Set(k, values[k])
	}
	return m
}

// Set stores a value under key. An existing key keeps its position in the
// iteration order. A nil value clears the key.
func (m *Metadata) Set(key string, value any) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Derive returns a child metadata map whose lookups fall back to m. The
// overrides map is applied to the child in sorted key order; nil override
// values clear the corresponding keys.
func (m *Metadata) Derive(overrides map[string]any) *Metadata {
	child := NewMetadata()
	child.parent = m
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		child.Set(k, overrides[k])
	}
	return child
}

// Get returns the value stored under key, consulting the parent chain when
// the key is not set locally. A key cleared with a nil value reports
// (nil, false).
func (m *Metadata) Get(key string) (any, bool) {
	if m == nil {
		return nil, false
	}
	if v, ok := m.values[key]; ok {
		if v == nil {
			return nil, false
		}
		return v, true
	}
	if m.parent != nil {
		return m.parent.Get(key)
	}
	return nil, false
}

// String returns the value under key formatted as a string. Numeric values
// are normalized so that 500 and 500.0 read identically.
func (m *Metadata) String(key string) (string, bool) {
	v, ok := m.Get(key)
	if !ok {
		return "", false
	}
	return formatScalar(v), true
}

// Float returns the value under key as a float64 when it holds any numeric
// type.
func (m *Metadata) Float(key string) (float64, bool) {
	v, ok := m.Get(key)
	if !ok {
		return 0, false
	}
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint64:
		return float64(x), true
	}
	return 0, false
}

// Items returns the effective ordered entries: parent entries first in parent
// order with local overrides applied in place, then local additions in
// insertion order. Cleared keys are omitted.
func (m *Metadata) Items() []Item {
	if m == nil {
		return nil
	}
	var items []Item
	seen := make(map[string]bool)
	if m.parent != nil {
		for _, it := range m.parent.Items() {
			if v, ok := m.values[it.Key]; ok {
				seen[it.Key] = true
				if v == nil {
					continue
				}
				items = append(items, Item{Key: it.Key, Value: v})
				continue
			}
			items = append(items, it)
		}
	}
	for _, k := range m.keys {
		if seen[k] {
			continue
		}
		v := m.values[k]
		if v == nil {
			continue
		}
		items = append(items, Item{Key: k, Value: v})
	}
	return items
}

// Map returns the effective entries as a plain map.
func (m *Metadata) Map() map[string]any {
	items := m.Items()
	out := make(map[string]any, len(items))
	for _, it := range items {
		out[it.Key] = it.Value
	}
	return out
}

// Len reports the number of effective entries.
func (m *Metadata) Len() int {
	return len(m.Items())
}

// Fingerprint canonicalizes the effective metadata with the given key
// removed. Entries are formatted as key=value pairs and joined in sorted key
// order, so fingerprint equality does not depend on insertion order. Two
// fields share a fingerprint iff all metadata other than the excluded key
// agree.
func (m *Metadata) Fingerprint(exclude string) string {
	items := m.Items()
	parts := make([]string, 0, len(items))
	for _, it := range items {
		if it.Key == exclude {
			continue
		}
		parts = append(parts, it.Key+"="+formatScalar(it.Value))
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}

// formatScalar converts a metadata value to its canonical string form.
// Integer-valued floats are formatted without a decimal point so that values
// decoded from JSON (always float64) and YAML (int) compare equal.
func formatScalar(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		if x == float64(int64(x)) {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'g', -1, 64)
	case float32:
		return formatScalar(float64(x))
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case time.Time:
		return x.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", x)
	}
}
