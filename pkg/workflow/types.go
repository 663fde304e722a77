// Package workflow provides the public types describing a field transform
// workflow: a declarative source, an ordered filter chain, and the upstream
// data request the chain starts from. Configuration files parse into these
// types and the execution engine consumes them.
package workflow

import (
	"errors"
	"fmt"
	"time"

	"github.com/ecmwf/anemoi-transform-sub000/pkg/transform"
)

// Workflow represents a complete workflow configuration. It names the
// source that produces fields and the filters that rework them, in order.
type Workflow struct {
	// Name is the human-readable name of the workflow
	Name string `json:"name"`

	// Description provides additional context about the workflow
	Description string `json:"description,omitempty"`

	// Source declares where the input fields come from
	Source *Stage `json:"source"`

	// Filters is an ordered list of transformations applied to the fields
	Filters []Stage `json:"filters,omitempty"`

	// Request describes what should be fetched upstream, before any filter
	// rewrites it
	Request transform.Request `json:"request,omitempty"`
}

// Stage represents the configuration for one workflow stage, either the
// source or a single filter.
type Stage struct {
	// Type identifies the stage implementation (e.g. "list", "uv_2_ddff")
	Type string `json:"type"`

	// Config contains the stage-specific configuration
	Config map[string]any `json:"config,omitempty"`
}

// Common validation errors
var (
	// ErrNilWorkflow is returned when the workflow is nil
	ErrNilWorkflow = errors.New("workflow is nil")

	// ErrMissingName is returned when the workflow has no name
	ErrMissingName = errors.New("workflow name is required")

	// ErrMissingSource is returned when the workflow has no source stage
	ErrMissingSource = errors.New("workflow source is required")
)

// Validate checks the structural rules a workflow must satisfy before the
// engine can build it. Schema validation catches most of these earlier;
// Validate guards workflows constructed in code.
func (w *Workflow) Validate() error {
	if w == nil {
		return ErrNilWorkflow
	}
	if w.Name == "" {
		return ErrMissingName
	}
	if w.Source == nil {
		return ErrMissingSource
	}
	if w.Source.Type == "" {
		return errors.New("workflow source type is required")
	}
	for i, f := range w.Filters {
		if f.Type == "" {
			return fmt.Errorf("filter %d: type is required", i)
		}
	}
	return nil
}

// Execution status values
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Stage kinds reported in execution results
const (
	KindSource = "source"
	KindFilter = "filter"
)

// ExecutionResult represents the result of a workflow run.
type ExecutionResult struct {
	// RunID uniquely identifies this run
	RunID string `json:"runId"`

	// WorkflowName is the name of the executed workflow
	WorkflowName string `json:"workflowName"`

	// Status is the execution status ("success", "error")
	Status string `json:"status"`

	// Reversed indicates the filter chain ran backward instead of forward
	Reversed bool `json:"reversed,omitempty"`

	// DryRun indicates the run only planned the work without moving fields
	DryRun bool `json:"dryRun,omitempty"`

	// FieldsIn is the number of fields the source produced
	FieldsIn int `json:"fieldsIn"`

	// FieldsOut is the number of fields left after the last filter
	FieldsOut int `json:"fieldsOut"`

	// StartedAt is when execution started
	StartedAt time.Time `json:"startedAt"`

	// CompletedAt is when execution completed
	CompletedAt time.Time `json:"completedAt"`

	// Stages holds per-stage timings and field counts in execution order
	Stages []StageTiming `json:"stages,omitempty"`

	// PatchedRequest is the upstream request after folding every filter's
	// rewrite into the declared one (only set in dry-run mode)
	PatchedRequest transform.Request `json:"patchedRequest,omitempty"`

	// PlannedStages lists the stage names that would run in order (only set
	// in dry-run mode)
	PlannedStages []string `json:"plannedStages,omitempty"`

	// Error contains error details if execution failed
	Error *ErrorInfo `json:"error,omitempty"`
}

// StageTiming records the outcome of one executed stage.
type StageTiming struct {
	// Name is the stage's transform name
	Name string `json:"name"`

	// Kind is "source" or "filter"
	Kind string `json:"kind"`

	// FieldsOut is the number of fields the stage produced
	FieldsOut int `json:"fieldsOut"`

	// Duration is how long the stage took
	Duration time.Duration `json:"duration"`
}

// ErrorInfo contains details about an execution failure.
type ErrorInfo struct {
	// Code is the error code
	Code string `json:"code"`

	// Message is the human-readable error message
	Message string `json:"message"`

	// Stage is the name of the stage where the error occurred
	Stage string `json:"stage,omitempty"`
}
