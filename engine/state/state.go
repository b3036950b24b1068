// Package state owns the per-level game state and builds it from the
// immutable definitions produced by the loader.
package state

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/nathoo/moodgrid/engine/grid"
	"github.com/nathoo/moodgrid/engine/registry"
	"github.com/nathoo/moodgrid/types"
)

// DefaultMoodMax is used when neither the level nor the template sets one.
const DefaultMoodMax = 3

// Defs holds the immutable game definitions loaded from Lua.
type Defs struct {
	Game      types.GameDef
	Templates map[string]types.EntityDef
	Levels    map[string]types.LevelDef
}

// LevelCount returns the number of levels in play order.
func (d *Defs) LevelCount() int {
	return len(d.Game.Levels)
}

// LevelAt returns the level at the given play-order index.
func (d *Defs) LevelAt(index int) (types.LevelDef, bool) {
	if index < 0 || index >= len(d.Game.Levels) {
		return types.LevelDef{}, false
	}
	lvl, ok := d.Levels[d.Game.Levels[index]]
	return lvl, ok
}

// State is the mutable state of the level being played. It is owned by the
// active Gameplay state and rebuilt on every load.
type State struct {
	LevelIndex    int
	Level         *types.LevelDef
	Grid          *grid.Grid
	Entities      *registry.Registry
	KeysCollected int
	KeysRequired  int
	Running       bool
	Paused        bool
	TurnCount     int
}

// NewLevel builds a fresh state for the level at index. Spawns naming an
// unknown template are logged and skipped.
func NewLevel(defs *Defs, index int, log logrus.FieldLogger) (*State, error) {
	lvl, ok := defs.LevelAt(index)
	if !ok {
		return nil, fmt.Errorf("level index %d out of range (%d levels)", index, defs.LevelCount())
	}
	return FromLevel(&lvl, defs.Templates, index, log)
}

// FromLevel builds a state from a level definition and a template table.
func FromLevel(lvl *types.LevelDef, templates map[string]types.EntityDef, index int, log logrus.FieldLogger) (*State, error) {
	s := &State{
		LevelIndex: index,
		Level:      lvl,
		Grid:       grid.Build(lvl.Ground),
		Entities:   registry.New(len(lvl.Spawns)),
	}

	for _, sp := range lvl.Spawns {
		tmpl, ok := templates[sp.Template]
		if !ok {
			log.WithFields(logrus.Fields{
				"level":    lvl.ID,
				"template": sp.Template,
				"x":        sp.Pos.X,
				"y":        sp.Pos.Y,
			}).Warn("spawn references unknown template, skipped")
			continue
		}
		s.Entities.Add(Instantiate(tmpl, sp.Pos, lvl))
	}

	if s.Entities.Player() == nil {
		return nil, fmt.Errorf("level %q has no player-controlled entity", lvl.ID)
	}

	s.KeysRequired = s.Entities.Count(func(e *types.Entity) bool {
		return e.Action == types.ActionKey
	})
	return s, nil
}

// Instantiate creates an entity from a template at pos, applying the level's
// mood configuration.
func Instantiate(tmpl types.EntityDef, pos types.Vec, lvl *types.LevelDef) *types.Entity {
	e := &types.Entity{
		Name:                    tmpl.Name,
		Pos:                     pos,
		Facing:                  types.Down,
		ControlledByPlayer:      tmpl.ControlledByPlayer,
		MoveTowardsPlayer:       tmpl.MoveTowardsPlayer,
		AffectedByMood:          tmpl.AffectedByMood,
		CanBeActivated:          tmpl.CanBeActivated,
		Activated:               tmpl.Activated,
		ActivatesInSpecificMood: tmpl.ActivatesInSpecificMood,
		ActivatesWhenKeyInLevel: tmpl.ActivatesWhenKeyInLevel,
		ActivatesWhenLevelStart: tmpl.ActivatesWhenLevelStart,
		Mood:                    tmpl.Mood,
		Trigger:                 tmpl.Trigger,
		Action:                  tmpl.Action,
		TriggerState:            tmpl.TriggerState,
		BreakThreshold:          tmpl.BreakThreshold,
		PushAmount:              tmpl.PushAmount,
		IncreaseAmount:          tmpl.IncreaseAmount,
	}

	e.MoodMax = tmpl.MoodMax
	if e.MoodMax <= 0 {
		e.MoodMax = lvl.MoodMax
	}
	if e.MoodMax <= 0 {
		e.MoodMax = DefaultMoodMax
	}
	e.MoodValue = tmpl.MoodValue
	if e.MoodValue <= 0 || e.MoodValue > e.MoodMax {
		e.MoodValue = e.MoodMax
	}

	if e.ControlledByPlayer && lvl.StartMood != types.MoodNone {
		e.Mood = lvl.StartMood
	}
	if e.AffectedByMood && e.Mood == types.MoodNone {
		e.Mood = types.MoodCalm
	}
	if e.Action == types.ActionBreak && e.BreakThreshold <= 0 {
		e.BreakThreshold = 1
	}
	if e.Action == types.ActionPush && e.PushAmount <= 0 {
		e.PushAmount = 1
	}
	return e
}

// Teardown clears everything a level owns so nothing leaks into the next.
func (s *State) Teardown() {
	if s == nil {
		return
	}
	if s.Entities != nil {
		s.Entities.Clear()
	}
	s.Grid = nil
	s.Level = nil
	s.KeysCollected = 0
	s.KeysRequired = 0
	s.Running = false
	s.Paused = false
	s.TurnCount = 0
}

// Player returns the player entity.
func (s *State) Player() *types.Entity {
	if s == nil || s.Entities == nil {
		return nil
	}
	return s.Entities.Player()
}

// KeysSatisfied reports whether the key gate is open: no keys in the level,
// or all of them collected.
func (s *State) KeysSatisfied() bool {
	return s.KeysRequired == 0 || s.KeysCollected >= s.KeysRequired
}
