package engine

import (
	"github.com/ecmwf/anemoi-transform-sub000/pkg/workflow"
)

// Error codes reported in execution results.
const (
	// ErrCodeInvalidWorkflow marks a workflow that failed structural validation.
	ErrCodeInvalidWorkflow = "INVALID_WORKFLOW"
	// ErrCodeBuildFailed marks a stage that could not be constructed.
	ErrCodeBuildFailed = "BUILD_FAILED"
	// ErrCodeSourceFailed marks a source stage that failed to produce fields.
	ErrCodeSourceFailed = "SOURCE_FAILED"
	// ErrCodeFilterFailed marks a filter stage that failed during the run.
	ErrCodeFilterFailed = "FILTER_FAILED"
	// ErrCodeCanceled marks a run interrupted by its context.
	ErrCodeCanceled = "CANCELED"
)

// errorInfo builds the error details attached to a failed execution result.
func errorInfo(code, stage string, err error) *workflow.ErrorInfo {
	return &workflow.ErrorInfo{
		Code:    code,
		Message: err.Error(),
		Stage:   stage,
	}
}
