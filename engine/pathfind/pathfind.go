// Package pathfind implements 4-neighbour A* over a walkable grid with a
// Manhattan heuristic. Results are deterministic: the open set is ordered by
// (f, h, discovery order) and neighbours are expanded +x, -x, +y, -y.
package pathfind

import (
	"container/heap"

	"github.com/nathoo/moodgrid/engine/grid"
	"github.com/nathoo/moodgrid/types"
)

// neighbours is the fixed expansion order that makes tie-breaks stable.
var neighbours = [...]types.Vec{
	{X: 1, Y: 0},
	{X: -1, Y: 0},
	{X: 0, Y: 1},
	{X: 0, Y: -1},
}

type node struct {
	pos    types.Vec
	g      int
	h      int
	seq    int
	index  int
	parent *node
}

type openSet []*node

func (pq openSet) Len() int { return len(pq) }

func (pq openSet) Less(i, j int) bool {
	a, b := pq[i], pq[j]
	if fa, fb := a.g+a.h, b.g+b.h; fa != fb {
		return fa < fb
	}
	if a.h != b.h {
		return a.h < b.h
	}
	return a.seq < b.seq
}

func (pq openSet) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *openSet) Push(x any) {
	n := x.(*node)
	n.index = len(*pq)
	*pq = append(*pq, n)
}

func (pq *openSet) Pop() any {
	old := *pq
	last := len(old) - 1
	n := old[last]
	old[last] = nil
	n.index = -1
	*pq = old[:last]
	return n
}

// FindPath returns the cells from start (exclusive) to goal (inclusive).
// The start cell need not be walkable; the goal must be. When no path
// exists, or start == goal, it returns nil and false.
func FindPath(g *grid.Grid, start, goal types.Vec) ([]types.Vec, bool) {
	if start == goal || !g.Walkable(goal) {
		return nil, false
	}

	open := &openSet{}
	heap.Init(open)
	seq := 0
	heap.Push(open, &node{pos: start, h: grid.Manhattan(start, goal), seq: seq})
	best := map[types.Vec]int{start: 0}
	closed := map[types.Vec]bool{}

	for open.Len() > 0 {
		cur := heap.Pop(open).(*node)
		if closed[cur.pos] {
			continue
		}
		closed[cur.pos] = true
		if cur.pos == goal {
			return reconstruct(cur), true
		}

		for _, d := range neighbours {
			next := grid.Add(cur.pos, d)
			if !g.Walkable(next) || closed[next] {
				continue
			}
			cost := cur.g + 1
			if prev, ok := best[next]; ok && cost >= prev {
				continue
			}
			best[next] = cost
			seq++
			heap.Push(open, &node{
				pos:    next,
				g:      cost,
				h:      grid.Manhattan(next, goal),
				seq:    seq,
				parent: cur,
			})
		}
	}
	return nil, false
}

// NextStep returns only the first cell of the path toward goal.
func NextStep(g *grid.Grid, start, goal types.Vec) (types.Vec, bool) {
	path, ok := FindPath(g, start, goal)
	if !ok {
		return types.Vec{}, false
	}
	return path[0], true
}

func reconstruct(end *node) []types.Vec {
	var path []types.Vec
	for n := end; n.parent != nil; n = n.parent {
		path = append(path, n.pos)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
