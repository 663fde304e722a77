package filters

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/ecmwf/anemoi-transform-sub000/pkg/field"
	"github.com/ecmwf/anemoi-transform-sub000/pkg/transform"
)

// Where keeps the fields whose metadata satisfies a boolean expression, e.g.
// `param == "q" and levelist >= 500`. Metadata keys appear as variables;
// missing keys evaluate as nil. Dropping fields is forward-only.
type Where struct {
	expression string
	program    *vm.Program
}

// NewWhere builds the where filter, compiling the expression once.
func NewWhere(cfg map[string]any) (transform.Transform, error) {
	const name = "where"
	if err := checkInputs(name, cfg, []string{"expression"}); err != nil {
		return nil, err
	}
	expression, err := requiredString(name, cfg, "expression")
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(expression) == "" {
		return nil, fmt.Errorf("filter %q: expression cannot be empty", name)
	}

	program, err := expr.Compile(expression, expr.AllowUndefinedVariables(), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("filter %q: invalid expression: %w", name, err)
	}
	return &Where{expression: expression, program: program}, nil
}

// Name returns the filter name.
func (w *Where) Name() string {
	return "where"
}

// Forward evaluates the predicate against each field's metadata and keeps the
// fields for which it is true, in input order.
func (w *Where) Forward(data field.List) (field.List, error) {
	result := make(field.List, 0, len(data))
	for _, f := range data {
		out, err := expr.Run(w.program, f.Metadata().Map())
		if err != nil {
			return nil, fmt.Errorf("filter %q: expression %q failed for %s: %w", w.Name(), w.expression, f, err)
		}
		if keep, ok := out.(bool); ok && keep {
			result = append(result, f)
		}
	}
	return result, nil
}

// Backward reports the filter as non-reversible: dropped fields cannot be
// restored.
func (w *Where) Backward(data field.List) (field.List, error) {
	return nil, transform.NotReversible(w.Name())
}
