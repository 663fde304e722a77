package engine

import (
	"fmt"

	"github.com/ecmwf/anemoi-transform-sub000/pkg/transform"
	"github.com/ecmwf/anemoi-transform-sub000/pkg/workflow"
)

// Chain is a built workflow: the source transform plus the flat filter
// pipeline behind it.
type Chain struct {
	// Source produces the initial field list when driven with no input.
	Source transform.Transform

	// Filters is the flat pipeline the source output folds through.
	Filters *transform.Pipeline
}

// StageNames lists the chain's stage names in forward execution order.
func (c *Chain) StageNames() []string {
	stages := c.Filters.Stages()
	names := make([]string, 0, len(stages)+1)
	names = append(names, c.Source.Name())
	for _, s := range stages {
		names = append(names, s.Name())
	}
	return names
}

// Build constructs the transform chain a workflow describes, creating the
// source and every filter through the executor's registries. Construction
// errors (unknown names, bad stage configuration) surface here, before any
// data flows.
func (e *Executor) Build(wf *workflow.Workflow) (*Chain, error) {
	src, err := e.sources.Create(wf.Source.Type, wf.Source.Config)
	if err != nil {
		return nil, fmt.Errorf("building source %q: %w", wf.Source.Type, err)
	}

	members := make([]transform.Transform, 0, len(wf.Filters))
	for i, stage := range wf.Filters {
		t, err := e.filters.Create(stage.Type, stage.Config)
		if err != nil {
			return nil, fmt.Errorf("building filter %d (%q): %w", i, stage.Type, err)
		}
		members = append(members, t)
	}

	return &Chain{Source: src, Filters: transform.Pipe(members...)}, nil
}
