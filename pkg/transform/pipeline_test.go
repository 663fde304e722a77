package transform

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecmwf/anemoi-transform-sub000/pkg/field"
)

// stub records the order of forward/backward invocations.
type stub struct {
	name       string
	calls      *[]string
	reversible bool
}

func (s *stub) Name() string { return s.name }

func (s *stub) Forward(data field.List) (field.List, error) {
	*s.calls = append(*s.calls, s.name+".forward")
	return data, nil
}

func (s *stub) Backward(data field.List) (field.List, error) {
	if !s.reversible {
		return nil, NotReversible(s.name)
	}
	*s.calls = append(*s.calls, s.name+".backward")
	return data, nil
}

// patchingStub additionally rewrites the upstream request.
type patchingStub struct {
	stub
	add string
}

func (s *patchingStub) PatchRequest(req Request) Request {
	req.Add("param", s.add)
	return req
}

func newStubs(reversible bool) (*stub, *stub, *stub, *[]string) {
	calls := &[]string{}
	a := &stub{name: "a", calls: calls, reversible: reversible}
	b := &stub{name: "b", calls: calls, reversible: reversible}
	c := &stub{name: "c", calls: calls, reversible: reversible}
	return a, b, c, calls
}

func TestPipeFlattens(t *testing.T) {
	a, b, c, _ := newStubs(true)

	left := Pipe(Pipe(a, b), c)
	right := Pipe(a, Pipe(b, c))

	assert.Len(t, left.Stages(), 3)
	assert.Len(t, right.Stages(), 3)
	for _, s := range left.Stages() {
		_, nested := s.(*Pipeline)
		assert.False(t, nested, "no pipeline-of-pipelines")
	}
	assert.Equal(t, "a | b | c", left.Name())
	assert.Equal(t, left.Name(), right.Name())
}

func TestPipelineForwardOrder(t *testing.T) {
	a, b, c, calls := newStubs(true)
	p := Pipe(a, b, c)

	_, err := p.Forward(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.forward", "b.forward", "c.forward"}, *calls)
}

func TestPipelineBackwardReversesOrder(t *testing.T) {
	a, b, c, calls := newStubs(true)
	p := Pipe(a, b, c)

	_, err := p.Backward(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"c.backward", "b.backward", "a.backward"}, *calls)
}

func TestPipelineBackwardNamesNonReversibleMember(t *testing.T) {
	a, b, c, _ := newStubs(true)
	b.reversible = false
	p := Pipe(a, b, c)

	_, err := p.Backward(nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotReversible))

	var nr *NotReversibleError
	require.True(t, errors.As(err, &nr))
	assert.Equal(t, "b", nr.Filter)
}

func TestEmptyPipelinePassesThrough(t *testing.T) {
	data := field.List{field.New([]float64{1}, nil)}
	p := Pipe()

	out, err := p.Forward(data)
	require.NoError(t, err)
	assert.Equal(t, data, out)

	out, err = p.Backward(data)
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestReverseSwapsDirections(t *testing.T) {
	calls := &[]string{}
	s := &stub{name: "a", calls: calls, reversible: true}

	r := Reverse(s)
	assert.Equal(t, "reversed(a)", r.Name())

	_, err := r.Forward(nil)
	require.NoError(t, err)
	_, err = r.Backward(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.backward", "a.forward"}, *calls)
}

func TestReverseTwiceReturnsOriginal(t *testing.T) {
	calls := &[]string{}
	s := &stub{name: "a", calls: calls, reversible: true}

	assert.Same(t, Transform(s), Reverse(Reverse(s)))
}

func TestReverseOfNonReversible(t *testing.T) {
	calls := &[]string{}
	s := &stub{name: "a", calls: calls, reversible: false}

	_, err := Reverse(s).Forward(nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotReversible))
}

func TestPipelinePatchRequest(t *testing.T) {
	calls := &[]string{}
	a := &patchingStub{stub: stub{name: "a", calls: calls, reversible: true}, add: "u"}
	b := &stub{name: "b", calls: calls, reversible: true}
	p := Pipe(a, b)

	req := Request{"param": {"2t"}}
	got := p.PatchRequest(req)
	assert.Equal(t, []string{"2t", "u"}, got["param"])
}

func TestReversedDelegatesPatchRequest(t *testing.T) {
	calls := &[]string{}
	a := &patchingStub{stub: stub{name: "a", calls: calls, reversible: true}, add: "v"}

	req := Reverse(a).(*Reversed).PatchRequest(Request{})
	assert.Equal(t, []string{"v"}, req["param"])
}

func TestRequestHelpers(t *testing.T) {
	req := Request{"param": {"u", "v"}, "levelist": {"500"}}

	clone := req.Clone()
	clone.Add("param", "t", "u")
	clone.Remove("levelist", "500")

	assert.Equal(t, []string{"u", "v", "t"}, clone["param"], "Add skips duplicates")
	assert.Empty(t, clone["levelist"])

	assert.Equal(t, []string{"u", "v"}, req["param"], "clone does not alias")
	assert.True(t, req.Has("levelist", "500"))
	assert.False(t, req.Has("param", "t"))

	assert.Nil(t, Request(nil).Clone())
}
