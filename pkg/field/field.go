package field

import (
	"fmt"
	"strings"
)

// Field is one labeled numeric payload: a flat array of values, optional
// shape information and a metadata map. Fields are immutable once
// constructed; transforms derive new fields from a template with FromTemplate
// instead of mutating in place. A field owns its payload and metadata, and
// lists hold fields by shared immutable reference.
type Field struct {
	values []float64
	shape  []int
	meta   *Metadata
}

// List is an ordered sequence of fields. Order is significant for
// reproducibility, not for correctness.
type List []*Field

// New builds a one-dimensional field from values and metadata. The values
// slice is copied. A nil metadata map is treated as empty.
func New(values []float64, meta *Metadata) *Field {
	if meta == nil {
		meta = NewMetadata()
	}
	return &Field{
		values: append([]float64(nil), values...),
		shape:  []int{len(values)},
		meta:   meta,
	}
}

// NewShaped builds a field with explicit shape information. The shape's
// element count must match the number of values.
func NewShaped(values []float64, shape []int, meta *Metadata) (*Field, error) {
	n := 1
	for _, d := range shape {
		if d < 0 {
			return nil, fmt.Errorf("invalid shape dimension %d", d)
		}
		n *= d
	}
	if len(shape) == 0 {
		n = 0
	}
	if n != len(values) {
		return nil, fmt.Errorf("shape %v holds %d values, got %d", shape, n, len(values))
	}
	f := New(values, meta)
	f.shape = append([]int(nil), shape...)
	return f, nil
}

// FromTemplate derives a new field from a template. The payload is replaced
// by values when non-nil (otherwise the template's payload is shared, which
// is safe because fields are immutable), and the metadata becomes a child of
// the template's metadata with the given overrides applied. A nil override
// value clears the key. The template's shape is kept when the payload length
// is unchanged.
func FromTemplate(template *Field, values []float64, overrides map[string]any) *Field {
	f := &Field{meta: template.meta.Derive(overrides)}
	if values == nil {
		f.values = template.values
		f.shape = template.shape
		return f
	}
	f.values = append([]float64(nil), values...)
	if len(values) == len(template.values) {
		f.shape = template.shape
	} else {
		f.shape = []int{len(values)}
	}
	return f
}

// Values returns a copy of the payload.
func (f *Field) Values() []float64 {
	return append([]float64(nil), f.values...)
}

// Len reports the number of payload values.
func (f *Field) Len() int {
	return len(f.values)
}

// Shape returns a copy of the shape information.
func (f *Field) Shape() []int {
	return append([]int(nil), f.shape...)
}

// Metadata returns the field's metadata map.
func (f *Field) Metadata() *Metadata {
	return f.meta
}

// String renders a short description used in logs and error messages.
func (f *Field) String() string {
	items := f.meta.Items()
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, it.Key+"="+formatScalar(it.Value))
	}
	return fmt.Sprintf("Field(%s, n=%d)", strings.Join(parts, ","), len(f.values))
}

// Find returns the first field whose metadata value under key formats to
// want, or nil when absent.
func (l List) Find(key, want string) *Field {
	for _, f := range l {
		if got, ok := f.Metadata().String(key); ok && got == want {
			return f
		}
	}
	return nil
}

// Identifiers collects the formatted metadata values under key in list
// order, skipping fields without the key.
func (l List) Identifiers(key string) []string {
	out := make([]string, 0, len(l))
	for _, f := range l {
		if v, ok := f.Metadata().String(key); ok {
			out = append(out, v)
		}
	}
	return out
}
