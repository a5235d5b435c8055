package program

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext(t *testing.T) *ProgramContext {
	t.Helper()
	ctx := NewContext()
	require.NoError(t, ctx.RegisterParameter(Parameter{ID: "mode", Default: 0}))
	require.NoError(t, ctx.RegisterParameter(Parameter{ID: "p-on", Default: 10}))
	require.NoError(t, ctx.RegisterParameter(Parameter{ID: "p-off", Default: 20}))
	require.NoError(t, ctx.RegisterParameter(Parameter{ID: "shadow", Default: 99}))
	return ctx
}

func TestTraverse_ChooseSelectsMatchingBranch(t *testing.T) {
	ctx := newTestContext(t)
	env := NewEnvironment(ctx)
	env.Set("mode", 1)

	tree := []Node{{
		Choose: &ChooseNode{
			Ref: "mode",
			Branches: []WhenBranch{
				{Test: 0, Body: []Node{{ParameterRefRef: &ParameterRefRefNode{Ref: "p-off"}}}},
				{Test: 1, Body: []Node{{ParameterRefRef: &ParameterRefRefNode{Ref: "p-on"}}}},
			},
		},
	}}

	active := Traverse(tree, env)
	require.Len(t, active, 1)
	assert.Equal(t, ParameterID("p-on"), active[0])
}

func TestTraverse_NonMatchingBranchLeavesDefault(t *testing.T) {
	ctx := newTestContext(t)
	env := NewEnvironment(ctx)
	env.Set("mode", 0)

	tree := []Node{{
		Choose: &ChooseNode{
			Ref: "mode",
			Branches: []WhenBranch{
				{Test: 0, Body: []Node{{ParameterRefRef: &ParameterRefRefNode{Ref: "p-off"}}}},
				{Test: 1, Body: []Node{
					{ParameterRefRef: &ParameterRefRefNode{Ref: "p-on"}},
					{Assign: &AssignNode{Target: "p-on", Literal: 777}},
				}},
			},
		},
	}}

	active := Traverse(tree, env)
	require.Len(t, active, 1)
	assert.Equal(t, ParameterID("p-off"), active[0])
	// p-on's branch was never taken, so its Assign never ran.
	assert.Equal(t, int64(10), env.Get("p-on"))
}

func TestTraverse_AssignAppliedAfterWalk(t *testing.T) {
	ctx := newTestContext(t)
	env := NewEnvironment(ctx)

	source := ParameterID("p-on")
	tree := []Node{
		{ParameterRefRef: &ParameterRefRefNode{Ref: "shadow"}},
		{Assign: &AssignNode{Target: "shadow", Source: &source}},
	}

	active := Traverse(tree, env)
	require.Len(t, active, 1)
	assert.Equal(t, ParameterID("shadow"), active[0])
	// The Assign ran after the walk, so it doesn't retroactively change
	// which branch the walk took, but it does update env for next time.
	assert.Equal(t, int64(10), env.Get("shadow"))
}

func TestTraverse_ParameterBlockVisitsAllChildren(t *testing.T) {
	ctx := newTestContext(t)
	env := NewEnvironment(ctx)

	tree := []Node{{
		ParameterBlock: &ParameterBlockNode{
			Children: []Node{
				{ParameterRefRef: &ParameterRefRefNode{Ref: "p-on"}},
				{ParameterRefRef: &ParameterRefRefNode{Ref: "p-off"}},
			},
		},
	}}

	active := Traverse(tree, env)
	assert.ElementsMatch(t, []ParameterID{"p-on", "p-off"}, active)
}

func TestTraverse_LiteralAssign(t *testing.T) {
	ctx := newTestContext(t)
	env := NewEnvironment(ctx)

	tree := []Node{{Assign: &AssignNode{Target: "mode", Literal: 42}}}
	Traverse(tree, env)
	assert.Equal(t, int64(42), env.Get("mode"))
}
