package config

import (
	"reflect"
	"strings"
	"testing"

	"github.com/ecmwf/anemoi-transform-sub000/pkg/transform"
)

func TestConvertToWorkflow_FullDocument(t *testing.T) {
	result := ParseFile("testdata/valid-workflow.yaml")
	if !result.IsValid() {
		t.Fatalf("failed to parse document: %v", result.AllErrors())
	}

	wf, err := ConvertToWorkflow(result.Data)
	if err != nil {
		t.Fatalf("ConvertToWorkflow() returned error: %v", err)
	}

	if wf.Name != "wind-derivation" {
		t.Errorf("expected name 'wind-derivation', got %q", wf.Name)
	}
	if !strings.Contains(wf.Description, "wind speed") {
		t.Errorf("unexpected description: %q", wf.Description)
	}
	if wf.Source == nil || wf.Source.Type != "list" {
		t.Fatalf("expected list source, got %+v", wf.Source)
	}
	if _, ok := wf.Source.Config["fields"]; !ok {
		t.Error("expected source config to carry the fields list")
	}
	if len(wf.Filters) != 1 || wf.Filters[0].Type != "uv_2_ddff" {
		t.Fatalf("expected one uv_2_ddff filter, got %+v", wf.Filters)
	}

	wantRequest := transform.Request{
		"param":    {"ws", "wdir"},
		"levelist": {"500"},
	}
	if !reflect.DeepEqual(wf.Request, wantRequest) {
		t.Errorf("expected request %v, got %v", wantRequest, wf.Request)
	}
}

func TestConvertToWorkflow_StageConfigKeepsEverythingButType(t *testing.T) {
	result := ParseFile("testdata/valid-workflow.json")
	if !result.IsValid() {
		t.Fatalf("failed to parse document: %v", result.AllErrors())
	}

	wf, err := ConvertToWorkflow(result.Data)
	if err != nil {
		t.Fatalf("ConvertToWorkflow() returned error: %v", err)
	}

	if wf.Source.Type != "file" {
		t.Errorf("expected file source, got %q", wf.Source.Type)
	}
	if path, _ := wf.Source.Config["path"].(string); path != "fields.yaml" {
		t.Errorf("expected path 'fields.yaml' in source config, got %v", wf.Source.Config["path"])
	}
	if _, ok := wf.Source.Config["type"]; ok {
		t.Error("stage config must not carry the type key")
	}

	if len(wf.Filters) != 2 {
		t.Fatalf("expected two filters, got %d", len(wf.Filters))
	}
	convert := wf.Filters[1]
	if convert.Type != "convert" {
		t.Fatalf("expected convert filter, got %q", convert.Type)
	}
	want := map[string]any{"param": "sp", "unit_in": "Pa", "unit_out": "hPa"}
	if !reflect.DeepEqual(convert.Config, want) {
		t.Errorf("expected convert config %v, got %v", want, convert.Config)
	}
}

func TestConvertToWorkflow_Errors(t *testing.T) {
	tests := []struct {
		name   string
		doc    string
		errMsg string
	}{
		{
			name:   "missing workflow section",
			doc:    `{"schemaVersion": "1.0.0"}`,
			errMsg: "missing or invalid 'workflow' section",
		},
		{
			name:   "missing name",
			doc:    `{"workflow": {"source": {"type": "list"}}}`,
			errMsg: "missing required field 'workflow.name'",
		},
		{
			name:   "missing source",
			doc:    `{"workflow": {"name": "t"}}`,
			errMsg: "missing or invalid 'workflow.source' section",
		},
		{
			name:   "source without type",
			doc:    `{"workflow": {"name": "t", "source": {"fields": []}}}`,
			errMsg: "invalid source: missing required field 'type'",
		},
		{
			name:   "filter not a mapping",
			doc:    `{"workflow": {"name": "t", "source": {"type": "list"}, "filters": [42]}}`,
			errMsg: "invalid filter at index 0",
		},
		{
			name:   "filter without type",
			doc:    `{"workflow": {"name": "t", "source": {"type": "list"}, "filters": [{"param": "q"}]}}`,
			errMsg: "invalid filter at index 0: missing required field 'type'",
		},
		{
			name:   "request entry not a list",
			doc:    `{"workflow": {"name": "t", "source": {"type": "list"}, "request": {"param": "ws"}}}`,
			errMsg: `invalid request: entry "param" must be a list`,
		},
		{
			name:   "request value wrong type",
			doc:    `{"workflow": {"name": "t", "source": {"type": "list"}, "request": {"param": [true]}}}`,
			errMsg: "expected string or number, got bool",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed := ParseJSONString(tt.doc)
			if !parsed.IsValid() {
				t.Fatalf("failed to parse document: %v", parsed.Errors)
			}
			_, err := ConvertToWorkflow(parsed.Data)
			if err == nil {
				t.Fatal("ConvertToWorkflow() succeeded, expected error")
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("expected error containing %q, got %q", tt.errMsg, err.Error())
			}
		})
	}
}

func TestConvertToWorkflow_NilData(t *testing.T) {
	if _, err := ConvertToWorkflow(nil); err == nil {
		t.Error("expected error for nil data")
	}
}

func TestConvertToWorkflow_NumericRequestValues(t *testing.T) {
	parsed := ParseYAMLString(`
workflow:
  name: t
  source:
    type: list
    fields: []
  request:
    levelist: [500, 850.5]
`)
	if !parsed.IsValid() {
		t.Fatalf("failed to parse document: %v", parsed.Errors)
	}

	wf, err := ConvertToWorkflow(parsed.Data)
	if err != nil {
		t.Fatalf("ConvertToWorkflow() returned error: %v", err)
	}
	want := []string{"500", "850.5"}
	if !reflect.DeepEqual(wf.Request["levelist"], want) {
		t.Errorf("expected levelist %v, got %v", want, wf.Request["levelist"])
	}
}
