// Package grouping partitions field lists into tuples of sibling fields that
// share a metadata fingerprint and differ only in a designated identifier
// key. It is the matching machinery multi-field transforms rely on to receive
// exactly one field per role.
package grouping

import (
	"fmt"
	"strings"

	"github.com/ecmwf/anemoi-transform-sub000/pkg/field"
)

// DuplicateComponentError reports two fields carrying the same identifier for
// the same fingerprint within one grouping pass.
type DuplicateComponentError struct {
	Identifier  string
	Fingerprint string
}

func (e *DuplicateComponentError) Error() string {
	return fmt.Sprintf("duplicate component %q for fingerprint %q", e.Identifier, e.Fingerprint)
}

// MissingComponentError reports a fingerprint bucket that ended the pass
// without every target identifier.
type MissingComponentError struct {
	Missing     []string
	Fingerprint string
}

func (e *MissingComponentError) Error() string {
	return fmt.Sprintf("missing component(s) %s for fingerprint %q",
		strings.Join(e.Missing, ", "), e.Fingerprint)
}

// Option configures a grouper.
type Option func(*Grouper)

// Partial makes incomplete buckets be skipped at the end of the pass instead
// of failing the call. Duplicates remain fatal. Partial grouping is always an
// explicit caller decision, never a default.
func Partial() Option {
	return func(g *Grouper) { g.partial = true }
}

// Grouper partitions field lists by metadata fingerprint against a fixed,
// ordered set of target identifiers.
type Grouper struct {
	key     string
	targets []string
	indexOf map[string]int
	partial bool
}

// New builds a grouper reading identifiers from the metadata value under key.
// The target order is load-bearing: emitted tuples place fields in this
// order, and transform functions take their arguments positionally by role.
func New(key string, targets []string, opts ...Option) (*Grouper, error) {
	if key == "" {
		return nil, fmt.Errorf("grouping key cannot be empty")
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("grouping requires at least one target identifier")
	}
	g := &Grouper{
		key:     key,
		targets: append([]string(nil), targets...),
		indexOf: make(map[string]int, len(targets)),
	}
	for i, t := range targets {
		if t == "" {
			return nil, fmt.Errorf("target identifier %d is empty", i)
		}
		if _, dup := g.indexOf[t]; dup {
			return nil, fmt.Errorf("target identifier %q listed twice", t)
		}
		g.indexOf[t] = i
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Targets returns the configured identifier order.
func (g *Grouper) Targets() []string {
	return append([]string(nil), g.targets...)
}

// bucket collects the fields of one fingerprint, one slot per target.
type bucket struct {
	fingerprint string
	fields      field.List
	count       int
}

// Iterate consumes the whole input once and returns one tuple per complete
// fingerprint bucket, fields ordered to match the target identifier order.
// Fields whose identifier is absent or outside the target set are handed to
// the overflow callback in input order before any tuple is returned. Tuples
// are emitted in first-seen fingerprint order, but callers must not rely on
// tuple-to-tuple order; only overflow order and within-tuple order are
// contractual.
func (g *Grouper) Iterate(data field.List, overflow func(*field.Field)) ([]field.List, error) {
	buckets := make(map[string]*bucket)
	var order []*bucket

	for _, f := range data {
		ident, ok := f.Metadata().String(g.key)
		if !ok {
			if overflow != nil {
				overflow(f)
			}
			continue
		}
		idx, ok := g.indexOf[ident]
		if !ok {
			if overflow != nil {
				overflow(f)
			}
			continue
		}
		fp := f.Metadata().Fingerprint(g.key)
		b := buckets[fp]
		if b == nil {
			b = &bucket{fingerprint: fp, fields: make(field.List, len(g.targets))}
			buckets[fp] = b
			order = append(order, b)
		}
		if b.fields[idx] != nil {
			return nil, &DuplicateComponentError{Identifier: ident, Fingerprint: fp}
		}
		b.fields[idx] = f
		b.count++
	}

	tuples := make([]field.List, 0, len(order))
	for _, b := range order {
		if b.count != len(g.targets) {
			if g.partial {
				continue
			}
			return nil, &MissingComponentError{Missing: g.missing(b), Fingerprint: b.fingerprint}
		}
		tuples = append(tuples, b.fields)
	}
	return tuples, nil
}

// missing lists the target identifiers a bucket lacks, in target order.
func (g *Grouper) missing(b *bucket) []string {
	var out []string
	for i, t := range g.targets {
		if b.fields[i] == nil {
			out = append(out, t)
		}
	}
	return out
}
