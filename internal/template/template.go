// Package template evaluates metadata substitution patterns used for dynamic
// field naming. Patterns reference metadata keys with {{key}} syntax and
// support optional default values.
package template

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/ecmwf/anemoi-transform-sub000/internal/logger"
	"github.com/ecmwf/anemoi-transform-sub000/pkg/field"
)

// Template syntax constants.
const (
	// Prefix is the opening delimiter for pattern variables.
	Prefix = "{{"
	// Suffix is the closing delimiter for pattern variables.
	Suffix = "}}"
)

// Error messages for pattern validation.
const (
	ErrMsgInvalidSyntax     = "invalid pattern syntax"
	ErrMsgEmptyVariableName = "empty variable name"
)

// variableRegex matches pattern variables like {{levelist}} or
// {{levelist | default: "sfc"}}.
// Group 1: the metadata key. Group 2: the optional default clause.
// Group 3: the default value itself (may be empty).
var variableRegex = regexp.MustCompile(`\{\{\s*([^|}]+?)(\s*\|\s*default:\s*"([^"]*)")?\s*\}\}`)

// Variable is one parsed pattern variable.
type Variable struct {
	// FullMatch is the matched text including the braces.
	FullMatch string
	// Key is the metadata key to look up. A leading "metadata." qualifier
	// is accepted and stripped.
	Key string
	// DefaultValue substitutes when the key is absent.
	DefaultValue string
	// HasDefault reports whether a default clause was given.
	HasDefault bool
}

// Evaluator substitutes metadata values into patterns. Parsed patterns are
// cached per evaluator; the cache grows with the number of distinct patterns
// and is owned by one filter instance, never shared.
type Evaluator struct {
	cache map[string][]Variable
}

// NewEvaluator creates a pattern evaluator.
func NewEvaluator() *Evaluator {
	return &Evaluator{cache: make(map[string][]Variable)}
}

// HasVariables reports whether a pattern contains substitution variables.
func HasVariables(pattern string) bool {
	return strings.Contains(pattern, Prefix) && strings.Contains(pattern, Suffix)
}

// ParseVariables extracts the pattern's variables, consulting the cache
// first.
func (e *Evaluator) ParseVariables(pattern string) []Variable {
	if cached, ok := e.cache[pattern]; ok {
		return cached
	}

	matches := variableRegex.FindAllStringSubmatch(pattern, -1)
	variables := make([]Variable, 0, len(matches))
	for _, match := range matches {
		v := Variable{
			FullMatch: match[0],
			Key:       strings.TrimPrefix(strings.TrimSpace(match[1]), "metadata."),
		}
		if match[2] != "" {
			v.DefaultValue = match[3]
			v.HasDefault = true
		}
		variables = append(variables, v)
	}

	e.cache[pattern] = variables
	return variables
}

// Evaluate substitutes the metadata values into the pattern. Values are
// rendered in their canonical string form. A missing key substitutes its
// default when one was given and the empty string otherwise.
func (e *Evaluator) Evaluate(pattern string, meta *field.Metadata) string {
	if !HasVariables(pattern) {
		return pattern
	}

	result := pattern
	for _, v := range e.ParseVariables(pattern) {
		value, ok := meta.String(v.Key)
		if !ok {
			if v.HasDefault {
				value = v.DefaultValue
			} else {
				logger.Warn("pattern variable missing, using empty string",
					slog.String("key", v.Key),
					slog.String("pattern", pattern),
				)
				value = ""
			}
		}
		result = strings.Replace(result, v.FullMatch, value, 1)
	}
	return result
}

// ValidateSyntax checks that a pattern's delimiters form valid {{...}}
// expressions with non-empty variable names.
func ValidateSyntax(pattern string) error {
	if pattern == "" {
		return nil
	}

	openCount := strings.Count(pattern, Prefix)
	closeCount := strings.Count(pattern, Suffix)
	if openCount != closeCount {
		return fmt.Errorf("%s: unmatched delimiters (found %d %q and %d %q)",
			ErrMsgInvalidSyntax, openCount, Prefix, closeCount, Suffix)
	}
	if openCount == 0 {
		return nil
	}

	if regexp.MustCompile(`\{\{\s*\}\}`).MatchString(pattern) {
		return fmt.Errorf("%s: %s", ErrMsgInvalidSyntax, ErrMsgEmptyVariableName)
	}
	for _, match := range variableRegex.FindAllStringSubmatch(pattern, -1) {
		if strings.TrimSpace(match[1]) == "" {
			return fmt.Errorf("%s: %s", ErrMsgInvalidSyntax, ErrMsgEmptyVariableName)
		}
	}

	// Balanced counts with invalid pairing, e.g. "}}{{", leave stray
	// delimiters behind once valid expressions are stripped.
	remainder := variableRegex.ReplaceAllString(pattern, "")
	if strings.Contains(remainder, Prefix) || strings.Contains(remainder, Suffix) {
		return fmt.Errorf("%s: delimiters must form valid {{...}} expressions", ErrMsgInvalidSyntax)
	}
	return nil
}
