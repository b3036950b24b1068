// Package view turns game state into plain text. The line runner prints it
// directly; the full-screen UI styles the same cells.
package view

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nathoo/moodgrid/engine/state"
	"github.com/nathoo/moodgrid/types"
)

// Kind classifies a cell for styling.
type Kind int

const (
	KindVoid Kind = iota
	KindWall
	KindFloor
	KindPlayer
	KindChaser
	KindKey
	KindExit
	KindHazard
	KindCracked
	KindPush
	KindTotem
	KindOther
)

// Cell is one rendered grid position.
type Cell struct {
	Glyph  rune
	Kind   Kind
	Angry  bool
	Active bool
}

// Cells lays the level out with the top row (highest y) first. It returns
// nil when no level is loaded.
func Cells(s *state.State) [][]Cell {
	if s == nil || s.Grid == nil || s.Level == nil || s.Entities == nil {
		return nil
	}
	w, h := s.Grid.Width(), s.Grid.Height()
	rows := make([][]Cell, h)
	for row := range rows {
		rows[row] = make([]Cell, w)
		for x := 0; x < w; x++ {
			rows[row][x] = groundCell(s.Level.Ground, x, h-1-row)
		}
	}

	// Later entries overwrite earlier ones: triggers, then other entities,
	// then the player.
	ents := make([]*types.Entity, 0, s.Entities.Len())
	for _, e := range s.Entities.All() {
		if !e.Dead && s.Grid.InBounds(e.Pos) {
			ents = append(ents, e)
		}
	}
	sort.SliceStable(ents, func(i, j int) bool { return layer(ents[i]) < layer(ents[j]) })
	for _, e := range ents {
		rows[h-1-e.Pos.Y][e.Pos.X] = entityCell(e)
	}
	return rows
}

func layer(e *types.Entity) int {
	switch {
	case e.ControlledByPlayer:
		return 2
	case e.Trigger:
		return 0
	}
	return 1
}

func groundCell(l types.TileLayer, x, y int) Cell {
	i := y*l.Width + x
	if i < 0 || i >= len(l.Tiles) || !l.Tiles[i].Exists {
		return Cell{Glyph: ' ', Kind: KindVoid}
	}
	if l.Tiles[i].Collider == types.ColliderNone {
		return Cell{Glyph: '#', Kind: KindWall}
	}
	return Cell{Glyph: '.', Kind: KindFloor}
}

func entityCell(e *types.Entity) Cell {
	c := Cell{Angry: e.Mood == types.MoodAngry, Active: e.Activated}
	switch {
	case e.ControlledByPlayer:
		c.Glyph, c.Kind = '@', KindPlayer
	case e.MoveTowardsPlayer:
		c.Glyph, c.Kind = 'G', KindChaser
	case e.Trigger:
		c.Glyph, c.Kind = triggerGlyph(e)
	case e.Action == types.ActionBreak:
		// A broken floor is a hole that blocks.
		c.Glyph, c.Kind = ' ', KindVoid
	default:
		c.Glyph, c.Kind = 'o', KindOther
	}
	return c
}

func triggerGlyph(e *types.Entity) (rune, Kind) {
	switch e.Action {
	case types.ActionKey:
		return 'k', KindKey
	case types.ActionExit:
		if e.CanBeActivated && !e.Activated {
			return 'e', KindExit
		}
		return 'E', KindExit
	case types.ActionBreak:
		if e.BreakProgress > 0 {
			return '~', KindCracked
		}
		return '=', KindCracked
	case types.ActionFall:
		return 'O', KindHazard
	case types.ActionBurn:
		return '^', KindHazard
	case types.ActionActivateBurn:
		return '%', KindHazard
	case types.ActionPush:
		return 'B', KindPush
	case types.ActionIncreaseMood:
		return '+', KindTotem
	}
	return '?', KindOther
}

// Lines renders Cells as strings.
func Lines(s *state.State) []string {
	cells := Cells(s)
	out := make([]string, 0, len(cells))
	for _, row := range cells {
		var b strings.Builder
		for _, c := range row {
			b.WriteRune(c.Glyph)
		}
		out = append(out, b.String())
	}
	return out
}

// Meter draws a mood counter as [###.].
func Meter(value, limit int) string {
	limit = max(limit, 0)
	value = min(max(value, 0), limit)
	return "[" + strings.Repeat("#", value) + strings.Repeat(".", limit-value) + "]"
}

// Legend lists the glyphs for help screens.
func Legend() []string {
	return []string{
		"@ you        G chaser     k key        E exit (e: sealed)",
		"# wall       . floor      = crumbling  ~ cracked",
		"O pit        ^ fire       % dormant fire",
		"B pushable   + mood totem",
	}
}

func entityName(s *state.State, id int) (string, bool) {
	if s == nil || s.Entities == nil {
		return fmt.Sprintf("#%d", id), false
	}
	e := s.Entities.Get(id)
	if e == nil {
		return fmt.Sprintf("#%d", id), false
	}
	return e.Name, e.ControlledByPlayer
}
