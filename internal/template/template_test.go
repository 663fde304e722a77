package template

import (
	"strings"
	"testing"

	"github.com/ecmwf/anemoi-transform-sub000/pkg/field"
)

func testMetadata(t *testing.T) *field.Metadata {
	t.Helper()
	return field.MetadataFromMap(map[string]any{
		"param":    "q",
		"levelist": 500,
		"units":    "kg kg-1",
	})
}

func TestHasVariables(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		want    bool
	}{
		{name: "plain string", pattern: "2t", want: false},
		{name: "single variable", pattern: "{{param}}", want: true},
		{name: "variable with text", pattern: "{{param}}_{{levelist}}", want: true},
		{name: "only prefix", pattern: "{{param", want: false},
		{name: "only suffix", pattern: "param}}", want: false},
		{name: "empty", pattern: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasVariables(tt.pattern); got != tt.want {
				t.Errorf("HasVariables(%q) = %v, want %v", tt.pattern, got, tt.want)
			}
		})
	}
}

func TestParseVariables(t *testing.T) {
	e := NewEvaluator()

	vars := e.ParseVariables(`{{param}}_{{levelist | default: "sfc"}}`)
	if len(vars) != 2 {
		t.Fatalf("expected 2 variables, got %d", len(vars))
	}
	if vars[0].Key != "param" || vars[0].HasDefault {
		t.Errorf("first variable = %+v, want key param without default", vars[0])
	}
	if vars[1].Key != "levelist" || !vars[1].HasDefault || vars[1].DefaultValue != "sfc" {
		t.Errorf("second variable = %+v, want key levelist with default sfc", vars[1])
	}
}

func TestParseVariablesMetadataPrefix(t *testing.T) {
	e := NewEvaluator()

	vars := e.ParseVariables("{{metadata.param}}")
	if len(vars) != 1 {
		t.Fatalf("expected 1 variable, got %d", len(vars))
	}
	if vars[0].Key != "param" {
		t.Errorf("key = %q, want %q (qualifier stripped)", vars[0].Key, "param")
	}
}

func TestParseVariablesCaching(t *testing.T) {
	e := NewEvaluator()
	pattern := "{{param}}_{{levelist}}"

	first := e.ParseVariables(pattern)
	second := e.ParseVariables(pattern)

	if len(e.cache) != 1 {
		t.Errorf("cache size = %d, want 1", len(e.cache))
	}
	if len(first) != len(second) {
		t.Errorf("cached parse differs: %d vs %d variables", len(first), len(second))
	}
}

func TestEvaluate(t *testing.T) {
	meta := testMetadata(t)

	tests := []struct {
		name    string
		pattern string
		want    string
	}{
		{name: "no variables", pattern: "2t", want: "2t"},
		{name: "single variable", pattern: "{{param}}", want: "q"},
		{name: "numeric value", pattern: "{{param}}_{{levelist}}", want: "q_500"},
		{name: "qualified key", pattern: "{{metadata.param}}", want: "q"},
		{name: "whitespace tolerant", pattern: "{{ param }}", want: "q"},
		{name: "default unused", pattern: `{{param | default: "t"}}`, want: "q"},
		{name: "default used", pattern: `{{number | default: "0"}}`, want: "0"},
		{name: "missing without default", pattern: "{{number}}", want: ""},
		{name: "missing inside text", pattern: "pre_{{number}}_post", want: "pre__post"},
	}

	e := NewEvaluator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.Evaluate(tt.pattern, meta); got != tt.want {
				t.Errorf("Evaluate(%q) = %q, want %q", tt.pattern, got, tt.want)
			}
		})
	}
}

func TestEvaluateRepeatedVariable(t *testing.T) {
	meta := testMetadata(t)
	e := NewEvaluator()

	got := e.Evaluate("{{param}}/{{param}}", meta)
	if got != "q/q" {
		t.Errorf("Evaluate = %q, want %q", got, "q/q")
	}
}

func TestValidateSyntax(t *testing.T) {
	tests := []struct {
		name        string
		pattern     string
		wantErr     bool
		errContains string
	}{
		{name: "empty pattern", pattern: "", wantErr: false},
		{name: "plain string", pattern: "2t", wantErr: false},
		{name: "valid variable", pattern: "{{param}}", wantErr: false},
		{name: "valid with default", pattern: `{{levelist | default: "sfc"}}`, wantErr: false},
		{name: "multiple variables", pattern: "{{param}}_{{levelist}}", wantErr: false},
		{name: "unmatched open", pattern: "{{param", wantErr: true, errContains: "unmatched"},
		{name: "unmatched close", pattern: "param}}", wantErr: true, errContains: "unmatched"},
		{name: "empty variable", pattern: "{{}}", wantErr: true, errContains: ErrMsgEmptyVariableName},
		{name: "whitespace only variable", pattern: "{{   }}", wantErr: true, errContains: ErrMsgEmptyVariableName},
		{name: "reversed delimiters", pattern: "}}param{{", wantErr: true, errContains: "valid {{...}} expressions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSyntax(tt.pattern)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ValidateSyntax(%q) expected error, got nil", tt.pattern)
				}
				if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("error %q does not contain %q", err.Error(), tt.errContains)
				}
				return
			}
			if err != nil {
				t.Errorf("ValidateSyntax(%q) unexpected error: %v", tt.pattern, err)
			}
		})
	}
}
