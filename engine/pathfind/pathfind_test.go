package pathfind

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathoo/moodgrid/engine/grid"
	"github.com/nathoo/moodgrid/types"
)

func TestFindPath_OpenGridTieBreak(t *testing.T) {
	g := grid.Open(8, 8)
	path, ok := FindPath(g, types.Vec{X: 5, Y: 5}, types.Vec{X: 3, Y: 3})
	require.True(t, ok)

	assert.Len(t, path, 4, "open grid path length is the Manhattan distance")
	assert.Equal(t, types.Vec{X: 4, Y: 5}, path[0], "x axis is explored before y on ties")
	assert.Equal(t, types.Vec{X: 3, Y: 3}, path[len(path)-1])
}

func TestFindPath_Deterministic(t *testing.T) {
	g := grid.FromRows([][]bool{
		{true, true, true, true, true},
		{true, false, true, false, true},
		{true, true, true, true, true},
		{true, false, true, false, true},
		{true, true, true, true, true},
	})
	start, goal := types.Vec{X: 0, Y: 0}, types.Vec{X: 4, Y: 4}

	first, ok := FindPath(g, start, goal)
	require.True(t, ok)
	for i := 0; i < 20; i++ {
		again, ok := FindPath(g, start, goal)
		require.True(t, ok)
		assert.Equal(t, first, again)
	}
}

func TestFindPath_RoutesAroundWalls(t *testing.T) {
	// y=0: . # .
	// y=1: . # .
	// y=2: . . .
	g := grid.FromRows([][]bool{
		{true, false, true},
		{true, false, true},
		{true, true, true},
	})
	path, ok := FindPath(g, types.Vec{X: 0, Y: 0}, types.Vec{X: 2, Y: 0})
	require.True(t, ok)
	assert.Len(t, path, 6)
	for _, p := range path {
		assert.True(t, g.Walkable(p), "path crosses wall at %v", p)
	}
}

func TestFindPath_Unreachable(t *testing.T) {
	g := grid.FromRows([][]bool{
		{true, false, true},
	})
	path, ok := FindPath(g, types.Vec{X: 0, Y: 0}, types.Vec{X: 2, Y: 0})
	assert.False(t, ok)
	assert.Nil(t, path)

	_, ok = NextStep(g, types.Vec{X: 0, Y: 0}, types.Vec{X: 2, Y: 0})
	assert.False(t, ok, "unreachable goal must not yield a default step")
}

func TestFindPath_GoalNotWalkable(t *testing.T) {
	g := grid.FromRows([][]bool{{true, true, false}})
	_, ok := FindPath(g, types.Vec{X: 0, Y: 0}, types.Vec{X: 2, Y: 0})
	assert.False(t, ok)
}

func TestFindPath_StartEqualsGoal(t *testing.T) {
	g := grid.Open(2, 2)
	_, ok := FindPath(g, types.Vec{X: 1, Y: 1}, types.Vec{X: 1, Y: 1})
	assert.False(t, ok)
}

func TestNextStep(t *testing.T) {
	g := grid.Open(3, 1)
	step, ok := NextStep(g, types.Vec{X: 0, Y: 0}, types.Vec{X: 2, Y: 0})
	require.True(t, ok)
	assert.Equal(t, types.Vec{X: 1, Y: 0}, step)
}
