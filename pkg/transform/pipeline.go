package transform

import (
	"fmt"
	"strings"

	"github.com/ecmwf/anemoi-transform-sub000/pkg/field"
)

// Pipeline is an ordered sequence of transforms applied as one compound
// transform. A pipeline owns its members.
type Pipeline struct {
	stages []Transform
}

// Pipe composes transforms into a pipeline. Arguments that are themselves
// pipelines contribute their stages in place, so composition always yields
// one flat pipeline rather than a pipeline of pipelines. Flattening keeps
// the backward traversal order predictable.
func Pipe(stages ...Transform) *Pipeline {
	p := &Pipeline{stages: make([]Transform, 0, len(stages))}
	for _, s := range stages {
		if sub, ok := s.(*Pipeline); ok {
			p.stages = append(p.stages, sub.stages...)
			continue
		}
		p.stages = append(p.stages, s)
	}
	return p
}

// Stages returns the flat member list.
func (p *Pipeline) Stages() []Transform {
	return append([]Transform(nil), p.stages...)
}

// Name joins the member names in declared order.
func (p *Pipeline) Name() string {
	if len(p.stages) == 0 {
		return "pipeline()"
	}
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name()
	}
	return strings.Join(names, " | ")
}

// Forward folds the data through each member's Forward in declared order.
// An empty pipeline passes the data through unchanged.
func (p *Pipeline) Forward(data field.List) (field.List, error) {
	var err error
	for _, s := range p.stages {
		data, err = s.Forward(data)
		if err != nil {
			return nil, fmt.Errorf("stage %q: %w", s.Name(), err)
		}
	}
	return data, nil
}

// Backward folds the data through each member's Backward in reverse declared
// order, so the last transform applied forward is the first undone. A single
// non-reversible member fails the call with an error identifying it.
func (p *Pipeline) Backward(data field.List) (field.List, error) {
	var err error
	for i := len(p.stages) - 1; i >= 0; i-- {
		s := p.stages[i]
		data, err = s.Backward(data)
		if err != nil {
			return nil, fmt.Errorf("stage %q: %w", s.Name(), err)
		}
	}
	return data, nil
}

// PatchRequest folds the upstream request through the members in declared
// order; members that are not request patchers leave it unchanged.
func (p *Pipeline) PatchRequest(req Request) Request {
	for _, s := range p.stages {
		req = PatchRequest(s, req)
	}
	return req
}
