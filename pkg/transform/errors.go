package transform

import (
	"errors"
	"fmt"
)

// ErrNotReversible matches any not-reversible failure via errors.Is.
var ErrNotReversible = errors.New("transform is not reversible")

// NotReversibleError reports a backward call on a transform that does not
// support one, naming the offending transform.
type NotReversibleError struct {
	Filter string
}

func (e *NotReversibleError) Error() string {
	return fmt.Sprintf("filter %q is not reversible", e.Filter)
}

func (e *NotReversibleError) Unwrap() error {
	return ErrNotReversible
}

// NotReversible builds the error a transform returns from an unsupported
// Backward call.
func NotReversible(name string) error {
	return &NotReversibleError{Filter: name}
}
