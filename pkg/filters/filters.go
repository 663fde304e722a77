// Package filters provides the builtin filter catalog: single-field and
// matching transforms for derived meteorological variables, unit handling,
// metadata surgery and user scripts. Every filter is constructed from a
// declarative configuration map via its factory and registered through
// Register.
package filters

import (
	"fmt"
	"sort"
	"strings"
)

// checkInputs validates a filter's configuration keys: every required input
// must be present and nothing outside the known set is accepted.
func checkInputs(filter string, cfg map[string]any, required []string, optional ...string) error {
	var missing []string
	for _, k := range required {
		if _, ok := cfg[k]; !ok {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("filter %q: missing required input(s): %s", filter, strings.Join(missing, ", "))
	}

	allowed := make(map[string]bool, len(required)+len(optional))
	for _, k := range required {
		allowed[k] = true
	}
	for _, k := range optional {
		allowed[k] = true
	}
	var unknown []string
	for k := range cfg {
		if !allowed[k] {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("filter %q: unknown input(s): %s", filter, strings.Join(unknown, ", "))
	}
	return nil
}

// numeric coerces the scalar types JSON and YAML decoders produce into a
// float64.
func numeric(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case int32:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint64:
		return float64(x), true
	case uint32:
		return float64(x), true
	}
	return 0, false
}

// stringOption reads an optional string entry, returning fallback when the
// key is absent.
func stringOption(filter string, cfg map[string]any, key, fallback string) (string, error) {
	v, ok := cfg[key]
	if !ok || v == nil {
		return fallback, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("filter %q: option %q must be a string, got %T", filter, key, v)
	}
	return s, nil
}

// requiredString reads a mandatory string entry.
func requiredString(filter string, cfg map[string]any, key string) (string, error) {
	s, err := stringOption(filter, cfg, key, "")
	if err != nil {
		return "", err
	}
	if s == "" {
		return "", fmt.Errorf("filter %q: option %q cannot be empty", filter, key)
	}
	return s, nil
}

// floatEntry reads an optional numeric entry, reporting whether it was
// present.
func floatEntry(filter string, cfg map[string]any, key string) (float64, bool, error) {
	v, ok := cfg[key]
	if !ok || v == nil {
		return 0, false, nil
	}
	f, ok := numeric(v)
	if !ok {
		return 0, false, fmt.Errorf("filter %q: option %q must be a number, got %T", filter, key, v)
	}
	return f, true, nil
}

// requiredFloat reads a mandatory numeric entry.
func requiredFloat(filter string, cfg map[string]any, key string) (float64, error) {
	f, ok, err := floatEntry(filter, cfg, key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("filter %q: option %q must be a number", filter, key)
	}
	return f, nil
}

// boolOption reads an optional boolean entry.
func boolOption(filter string, cfg map[string]any, key string, fallback bool) (bool, error) {
	v, ok := cfg[key]
	if !ok || v == nil {
		return fallback, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("filter %q: option %q must be a boolean, got %T", filter, key, v)
	}
	return b, nil
}

// stringList reads an entry that may be a single string or a list of strings.
func stringList(filter string, cfg map[string]any, key string) ([]string, error) {
	v, ok := cfg[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch x := v.(type) {
	case string:
		return []string{x}, nil
	case []string:
		return append([]string(nil), x...), nil
	case []any:
		out := make([]string, 0, len(x))
		for i, item := range x {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("filter %q: option %q must hold strings, got %T at index %d", filter, key, item, i)
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, fmt.Errorf("filter %q: option %q must be a string or a list of strings, got %T", filter, key, v)
}

// stringMap reads an entry holding a string-to-string mapping.
func stringMap(filter string, cfg map[string]any, key string) (map[string]string, error) {
	v, ok := cfg[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch x := v.(type) {
	case map[string]string:
		out := make(map[string]string, len(x))
		for k, s := range x {
			out[k] = s
		}
		return out, nil
	case map[string]any:
		out := make(map[string]string, len(x))
		for k, item := range x {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("filter %q: option %q must map strings to strings, got %T for %q", filter, key, item, k)
			}
			out[k] = s
		}
		return out, nil
	}
	return nil, fmt.Errorf("filter %q: option %q must be a mapping, got %T", filter, key, v)
}

// identifierOverrides extracts the formal-parameter identifier overrides
// present in the configuration. Keys not listed in formals are left for the
// caller's other options.
func identifierOverrides(filter string, cfg map[string]any, formals ...string) (map[string]string, error) {
	overrides := make(map[string]string)
	for _, name := range formals {
		v, ok := cfg[name]
		if !ok || v == nil {
			continue
		}
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("filter %q: identifier %q must be a string, got %T", filter, name, v)
		}
		overrides[name] = s
	}
	return overrides, nil
}
