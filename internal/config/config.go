package config

import (
	"github.com/ecmwf/anemoi-transform-sub000/internal/pathutil"
	"github.com/ecmwf/anemoi-transform-sub000/pkg/workflow"
)

// Load parses and validates a workflow configuration file, then converts it
// into a typed workflow. The Result always reports what parsing and
// validation found; the workflow is non-nil only when every check passed.
func Load(path string) (*workflow.Workflow, *Result) {
	if err := pathutil.Validate(path); err != nil {
		return nil, &Result{
			FilePath: path,
			ParseErrors: []ParseError{{
				Path:    path,
				Message: err.Error(),
				Type:    ErrorTypeIO,
			}},
		}
	}

	result := ParseFile(path)
	if !result.IsValid() {
		return nil, result
	}

	wf, err := ConvertToWorkflow(result.Data)
	if err != nil {
		result.ValidationErrors = append(result.ValidationErrors, ValidationError{
			Path:    "/workflow",
			Type:    "conversion",
			Message: err.Error(),
		})
		return nil, result
	}
	if err := wf.Validate(); err != nil {
		result.ValidationErrors = append(result.ValidationErrors, ValidationError{
			Path:    "/workflow",
			Type:    "validation",
			Message: err.Error(),
		})
		return nil, result
	}
	return wf, result
}
