package config

import (
	"fmt"
	"strconv"

	"github.com/ecmwf/anemoi-transform-sub000/pkg/transform"
	"github.com/ecmwf/anemoi-transform-sub000/pkg/workflow"
)

// ConvertToWorkflow converts a decoded document into a typed workflow. The
// document should already have passed schema validation; conversion still
// guards every assertion so programmatic callers get errors instead of
// panics.
//
// The expected document shape:
//
//	schemaVersion: "1.0.0"
//	workflow:
//	  name: wind-derivation
//	  source: {type: list, fields: [...]}
//	  filters: [{type: uv_2_ddff}, ...]
//	  request: {param: [ws, wdir]}
func ConvertToWorkflow(data map[string]any) (*workflow.Workflow, error) {
	if data == nil {
		return nil, fmt.Errorf("document is nil")
	}

	section, ok := data["workflow"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("missing or invalid 'workflow' section")
	}

	wf := &workflow.Workflow{}

	name, ok := section["name"].(string)
	if !ok {
		return nil, fmt.Errorf("missing required field 'workflow.name'")
	}
	wf.Name = name

	if description, ok := section["description"].(string); ok {
		wf.Description = description
	}

	sourceData, ok := section["source"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("missing or invalid 'workflow.source' section")
	}
	sourceStage, err := convertStage(sourceData)
	if err != nil {
		return nil, fmt.Errorf("invalid source: %w", err)
	}
	wf.Source = sourceStage

	if filtersData, ok := section["filters"].([]any); ok {
		for i, raw := range filtersData {
			stageMap, isMap := raw.(map[string]any)
			if !isMap {
				return nil, fmt.Errorf("invalid filter at index %d", i)
			}
			stage, err := convertStage(stageMap)
			if err != nil {
				return nil, fmt.Errorf("invalid filter at index %d: %w", i, err)
			}
			wf.Filters = append(wf.Filters, *stage)
		}
	}

	if requestData, ok := section["request"].(map[string]any); ok {
		request, err := convertRequest(requestData)
		if err != nil {
			return nil, fmt.Errorf("invalid request: %w", err)
		}
		wf.Request = request
	}

	return wf, nil
}

// convertStage turns a flat stage mapping into a Stage: the "type" entry
// names the implementation and every other entry becomes configuration.
func convertStage(data map[string]any) (*workflow.Stage, error) {
	stageType, ok := data["type"].(string)
	if !ok {
		return nil, fmt.Errorf("missing required field 'type'")
	}
	stage := &workflow.Stage{
		Type:   stageType,
		Config: make(map[string]any),
	}
	for key, value := range data {
		if key != "type" {
			stage.Config[key] = value
		}
	}
	return stage, nil
}

// convertRequest coerces the request mapping into list-of-string entries.
// Documents may hold numbers (levelist: [500]); those format the same way
// metadata scalars do.
func convertRequest(data map[string]any) (transform.Request, error) {
	request := make(transform.Request, len(data))
	for key, raw := range data {
		list, ok := raw.([]any)
		if !ok {
			return nil, fmt.Errorf("entry %q must be a list", key)
		}
		values := make([]string, 0, len(list))
		for i, v := range list {
			s, err := requestValue(v)
			if err != nil {
				return nil, fmt.Errorf("entry %q, index %d: %w", key, i, err)
			}
			values = append(values, s)
		}
		request[key] = values
	}
	return request, nil
}

func requestValue(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	}
	return "", fmt.Errorf("expected string or number, got %T", v)
}
