// Package engine executes workflows: it builds the source and filter chain
// from the registries, pulls the field collection through it forward or
// backward, and reports per-stage timings, field counts, and structured
// errors. The engine owns the cancellation checks between stages; individual
// transforms stay synchronous and context-free.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ecmwf/anemoi-transform-sub000/internal/logger"
	"github.com/ecmwf/anemoi-transform-sub000/pkg/field"
	"github.com/ecmwf/anemoi-transform-sub000/pkg/registry"
	"github.com/ecmwf/anemoi-transform-sub000/pkg/transform"
	"github.com/ecmwf/anemoi-transform-sub000/pkg/workflow"
)

// Options selects the execution mode for one run.
type Options struct {
	// DryRun builds the chain and reports the patched upstream request and
	// planned stages without moving any fields.
	DryRun bool

	// Reverse runs the filter chain backward over the source output instead
	// of forward.
	Reverse bool
}

// Executor runs workflows against a pair of registries. The registries are
// owned by the composition root and passed in; the executor never creates
// global state.
type Executor struct {
	sources *registry.Registry
	filters *registry.Registry
	metrics *executorMetrics
}

// New builds an executor around the given source and filter registries.
func New(sources, filters *registry.Registry) *Executor {
	return &Executor{
		sources: sources,
		filters: filters,
		metrics: newExecutorMetrics(),
	}
}

// MetricsGatherer exposes the executor's Prometheus registry so an embedding
// host can serve or push the metrics.
func (e *Executor) MetricsGatherer() prometheus.Gatherer {
	return e.metrics.registry
}

// Execute runs one workflow. It always returns a populated result; the field
// list is the final collection on success and nil otherwise. The context is
// checked between stages only, so a single transform is never interrupted
// mid-flight.
func (e *Executor) Execute(ctx context.Context, wf *workflow.Workflow, opts Options) (*workflow.ExecutionResult, field.List, error) {
	startedAt := time.Now()
	result := &workflow.ExecutionResult{
		RunID:     uuid.NewString(),
		Status:    workflow.StatusError,
		Reversed:  opts.Reverse,
		DryRun:    opts.DryRun,
		StartedAt: startedAt,
	}

	if err := wf.Validate(); err != nil {
		result.CompletedAt = time.Now()
		result.Error = errorInfo(ErrCodeInvalidWorkflow, "", err)
		return result, nil, fmt.Errorf("invalid workflow: %w", err)
	}
	result.WorkflowName = wf.Name

	execCtx := logger.ExecutionContext{
		RunID:      result.RunID,
		Workflow:   wf.Name,
		StageIndex: -1,
		DryRun:     opts.DryRun,
	}
	logger.LogExecutionStart(execCtx)

	chain, err := e.Build(wf)
	if err != nil {
		e.finish(result, execCtx, errorInfo(ErrCodeBuildFailed, "", err))
		return result, nil, err
	}

	if opts.DryRun {
		e.plan(result, wf, chain, opts)
		e.finish(result, execCtx, nil)
		return result, nil, nil
	}

	data, err := e.runSource(ctx, result, execCtx, chain.Source)
	if err != nil {
		e.finish(result, execCtx, result.Error)
		return result, nil, err
	}
	result.FieldsIn = len(data)

	data, err = e.runFilters(ctx, result, execCtx, chain.Filters, data, opts.Reverse)
	if err != nil {
		e.finish(result, execCtx, result.Error)
		return result, nil, err
	}
	result.FieldsOut = len(data)

	e.finish(result, execCtx, nil)
	return result, data, nil
}

// plan fills the dry-run report: the upstream request after every filter's
// rewrite, and the stage names in the order they would run.
func (e *Executor) plan(result *workflow.ExecutionResult, wf *workflow.Workflow, chain *Chain, opts Options) {
	req := wf.Request.Clone()
	if req == nil {
		req = transform.Request{}
	}
	result.PatchedRequest = chain.Filters.PatchRequest(req)

	stages := chain.Filters.Stages()
	names := make([]string, 0, len(stages)+1)
	names = append(names, chain.Source.Name())
	if opts.Reverse {
		for i := len(stages) - 1; i >= 0; i-- {
			names = append(names, stages[i].Name())
		}
	} else {
		for _, s := range stages {
			names = append(names, s.Name())
		}
	}
	result.PlannedStages = names
}

// runSource drives the source with no input and records its stage outcome.
func (e *Executor) runSource(ctx context.Context, result *workflow.ExecutionResult, execCtx logger.ExecutionContext, src transform.Transform) (field.List, error) {
	stageCtx := execCtx
	stageCtx.Stage = src.Name()
	stageCtx.StageKind = workflow.KindSource
	stageCtx.StageIndex = 0

	if err := ctx.Err(); err != nil {
		result.Error = errorInfo(ErrCodeCanceled, src.Name(), err)
		return nil, err
	}

	logger.LogStageStart(stageCtx, 0)
	start := time.Now()
	data, err := src.Forward(nil)
	duration := time.Since(start)
	logger.LogStageEnd(stageCtx, len(data), duration, err)

	if err != nil {
		result.Error = errorInfo(ErrCodeSourceFailed, src.Name(), err)
		return nil, fmt.Errorf("source %q: %w", src.Name(), err)
	}

	e.metrics.observeStage(src.Name(), workflow.KindSource, len(data), duration.Seconds())
	result.Stages = append(result.Stages, workflow.StageTiming{
		Name:      src.Name(),
		Kind:      workflow.KindSource,
		FieldsOut: len(data),
		Duration:  duration,
	})
	return data, nil
}

// runFilters folds the data through the pipeline one stage at a time, so each
// stage gets its own timing, metrics, and cancellation check. Reverse runs
// iterate the stages backward and call Backward, matching the pipeline's own
// backward order.
func (e *Executor) runFilters(ctx context.Context, result *workflow.ExecutionResult, execCtx logger.ExecutionContext, p *transform.Pipeline, data field.List, reverse bool) (field.List, error) {
	stages := p.Stages()
	for i := range stages {
		s := stages[i]
		if reverse {
			s = stages[len(stages)-1-i]
		}

		stageCtx := execCtx
		stageCtx.Stage = s.Name()
		stageCtx.StageKind = workflow.KindFilter
		stageCtx.StageIndex = i + 1

		if err := ctx.Err(); err != nil {
			result.Error = errorInfo(ErrCodeCanceled, s.Name(), err)
			return nil, err
		}

		logger.LogStageStart(stageCtx, len(data))
		start := time.Now()
		var err error
		if reverse {
			data, err = s.Backward(data)
		} else {
			data, err = s.Forward(data)
		}
		duration := time.Since(start)
		logger.LogStageEnd(stageCtx, len(data), duration, err)

		if err != nil {
			result.Error = errorInfo(ErrCodeFilterFailed, s.Name(), err)
			return nil, fmt.Errorf("filter %q: %w", s.Name(), err)
		}

		e.metrics.observeStage(s.Name(), workflow.KindFilter, len(data), duration.Seconds())
		result.Stages = append(result.Stages, workflow.StageTiming{
			Name:      s.Name(),
			Kind:      workflow.KindFilter,
			FieldsOut: len(data),
			Duration:  duration,
		})
	}
	return data, nil
}

// finish stamps the result's final status and logs the execution end.
func (e *Executor) finish(result *workflow.ExecutionResult, execCtx logger.ExecutionContext, errInfo *workflow.ErrorInfo) {
	result.CompletedAt = time.Now()
	if errInfo != nil {
		result.Status = workflow.StatusError
		result.Error = errInfo
	} else {
		result.Status = workflow.StatusSuccess
		result.Error = nil
	}
	if result.WorkflowName != "" {
		e.metrics.observeRun(result.WorkflowName, result.Status)
	}
	logger.LogExecutionEnd(execCtx, result.Status, result.FieldsOut, result.CompletedAt.Sub(result.StartedAt))
}
