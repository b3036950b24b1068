// Package grid holds the per-level walkability table derived from the ground
// tile layer. The table is built once per level and never mutated.
package grid

import "github.com/nathoo/moodgrid/types"

// Grid answers "is cell (x,y) traversable" and "is there a tile at (x,y)".
// A tile that is not walkable is a wall; a cell with no tile is a hole.
type Grid struct {
	width    int
	height   int
	walkable []bool
	hasTile  []bool
}

// Build derives the walkable table from a tile layer. A cell is walkable
// when a tile exists there and its collider is not None.
func Build(layer types.TileLayer) *Grid {
	n := layer.Width * layer.Height
	g := &Grid{
		width:    layer.Width,
		height:   layer.Height,
		walkable: make([]bool, n),
		hasTile:  make([]bool, n),
	}
	for i, t := range layer.Tiles {
		if i >= n {
			break
		}
		g.hasTile[i] = t.Exists
		g.walkable[i] = t.Exists && t.Collider != types.ColliderNone
	}
	return g
}

// FromRows builds a grid from booleans indexed [y][x]. Used by tests and
// tools that have no tile layer. A false cell has no tile.
func FromRows(rows [][]bool) *Grid {
	h := len(rows)
	w := 0
	for _, r := range rows {
		if len(r) > w {
			w = len(r)
		}
	}
	g := &Grid{width: w, height: h, walkable: make([]bool, w*h), hasTile: make([]bool, w*h)}
	for y, r := range rows {
		for x, ok := range r {
			g.walkable[y*w+x] = ok
			g.hasTile[y*w+x] = ok
		}
	}
	return g
}

// Open returns a fully walkable w×h grid.
func Open(w, h int) *Grid {
	g := &Grid{width: w, height: h, walkable: make([]bool, w*h), hasTile: make([]bool, w*h)}
	for i := range g.walkable {
		g.walkable[i] = true
		g.hasTile[i] = true
	}
	return g
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.height }

// InBounds reports whether p lies inside the authored bounds.
func (g *Grid) InBounds(p types.Vec) bool {
	return g != nil && p.X >= 0 && p.Y >= 0 && p.X < g.width && p.Y < g.height
}

// Walkable reports whether p can be stood on. Out of bounds is never walkable.
func (g *Grid) Walkable(p types.Vec) bool {
	if !g.InBounds(p) {
		return false
	}
	return g.walkable[p.Y*g.width+p.X]
}

// HasTile reports whether a ground tile exists at p, walkable or not.
func (g *Grid) HasTile(p types.Vec) bool {
	if !g.InBounds(p) {
		return false
	}
	return g.hasTile[p.Y*g.width+p.X]
}

// IsWall reports whether p holds a tile that cannot be stood on.
func (g *Grid) IsWall(p types.Vec) bool {
	return g.HasTile(p) && !g.Walkable(p)
}

// Add returns a+b.
func Add(a, b types.Vec) types.Vec {
	return types.Vec{X: a.X + b.X, Y: a.Y + b.Y}
}

// Sub returns a-b.
func Sub(a, b types.Vec) types.Vec {
	return types.Vec{X: a.X - b.X, Y: a.Y - b.Y}
}

// Manhattan returns |a.X-b.X| + |a.Y-b.Y|.
func Manhattan(a, b types.Vec) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

// Unit clamps each axis of v to -1, 0 or 1.
func Unit(v types.Vec) types.Vec {
	return types.Vec{X: sign(v.X), Y: sign(v.Y)}
}

// IsZero reports whether v is the zero vector.
func IsZero(v types.Vec) bool {
	return v.X == 0 && v.Y == 0
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	if x > 0 {
		return 1
	}
	if x < 0 {
		return -1
	}
	return 0
}
