// Package engine provides the Step() orchestrator that wires together
// movement, triggers, effects, AI chase, mood and activation into a single
// turn.
package engine

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/nathoo/moodgrid/engine/effects"
	"github.com/nathoo/moodgrid/engine/events"
	"github.com/nathoo/moodgrid/engine/grid"
	"github.com/nathoo/moodgrid/engine/mood"
	"github.com/nathoo/moodgrid/engine/pathfind"
	"github.com/nathoo/moodgrid/engine/rules"
	"github.com/nathoo/moodgrid/engine/state"
	"github.com/nathoo/moodgrid/engine/trigger"
	"github.com/nathoo/moodgrid/types"
)

// Engine resolves turns for one level. It owns the level state for as long
// as the level is played.
type Engine struct {
	State *state.State
	Rules rules.Rules
	Bus   *events.Bus
	Log   logrus.FieldLogger

	turn sync.Mutex
}

// Option configures an Engine.
type Option func(*Engine)

// WithRules overrides the default rule set.
func WithRules(r rules.Rules) Option {
	return func(e *Engine) { e.Rules = r }
}

// WithBus publishes turn events on b.
func WithBus(b *events.Bus) Option {
	return func(e *Engine) { e.Bus = b }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(e *Engine) { e.Log = l }
}

// New creates an engine for the given level state.
func New(s *state.State, opts ...Option) *Engine {
	e := &Engine{
		State: s,
		Rules: rules.Default(),
		Bus:   events.NewBus(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.Log == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		e.Log = l
	}
	return e
}

// Start applies level-start activation, marks the level running and
// publishes level_started.
func (e *Engine) Start(ctx context.Context) error {
	e.turn.Lock()
	defer e.turn.Unlock()

	s := e.State
	player := s.Player()
	evts := []types.Event{{Type: events.LevelStarted, Entity: player.ID, To: player.Pos}}
	for _, ent := range s.Entities.All() {
		if rules.ActivatesAtStart(ent, player, s.KeysRequired) {
			ent.Activated = true
			evts = append(evts, types.Event{Type: events.EntityActivated, Entity: ent.ID})
		}
	}
	s.Running = true
	e.Log.WithFields(logrus.Fields{
		"level":    s.Level.ID,
		"entities": s.Entities.Len(),
		"keys":     s.KeysRequired,
	}).Debug("level started")
	return e.Bus.Publish(ctx, evts)
}

// TogglePause flips the paused flag and returns the new value. Moves are
// rejected while paused.
func (e *Engine) TogglePause() bool {
	e.turn.Lock()
	defer e.turn.Unlock()
	e.State.Paused = !e.State.Paused
	return e.State.Paused
}

// Step resolves one player move in direction dir. A rejected or busy turn is
// an outcome, not an error; the error is only non-nil when a subscriber
// fails or ctx is cancelled.
func (e *Engine) Step(ctx context.Context, dir types.Vec) (types.Result, error) {
	var result types.Result

	// 1. Turn guard and input checks.
	if !e.turn.TryLock() {
		result.Outcome = types.OutcomeBusy
		return result, nil
	}
	defer e.turn.Unlock()

	s := e.State
	player := s.Player()
	if grid.IsZero(dir) || (dir.X != 0 && dir.Y != 0) ||
		player == nil || player.Dead || !s.Running || s.Paused {
		result.Outcome = types.OutcomeRejected
		return result, nil
	}
	dir = grid.Unit(dir)

	t := &turn{e: e, s: s, player: player}

	// 2-5. Player move attempt and its triggers.
	if !t.move(player, dir) {
		result.Outcome = types.OutcomeRejected
		result.Events = t.events
		return result, e.Bus.Publish(ctx, t.events)
	}
	result.Moved = true
	s.TurnCount++

	// 6. AI chase, registry order.
	for _, ent := range s.Entities.All() {
		if t.terminal() {
			break
		}
		if ent == player || ent.Dead || !ent.MoveTowardsPlayer {
			continue
		}
		next, ok := pathfind.NextStep(s.Grid, ent.Pos, player.Pos)
		if !ok {
			e.Log.WithFields(logrus.Fields{
				"entity": ent.ID,
				"name":   ent.Name,
				"from":   ent.Pos,
				"goal":   player.Pos,
			}).Debug("no path to player, staying put")
			continue
		}
		t.move(ent, grid.Sub(next, ent.Pos))
	}

	// 7. Mood tick.
	if !t.terminal() {
		t.tickMoods()
	}

	// 8. Activation sweep.
	t.sweep()

	// 9. Outcome.
	switch {
	case t.sig.PlayerDied(s):
		result.Outcome = types.OutcomeRetry
		s.Running = false
		t.events = append(t.events, types.Event{Type: events.LevelRetryRequested, Entity: player.ID})
	case t.sig.ExitReached:
		result.Outcome = types.OutcomeExit
		s.Running = false
	default:
		result.Outcome = types.OutcomeContinue
	}

	result.Effects = t.effects
	result.Events = t.events
	return result, e.Bus.Publish(ctx, t.events)
}

// turn accumulates the effects, events and signals of one Step.
type turn struct {
	e       *Engine
	s       *state.State
	player  *types.Entity
	effects []types.Effect
	events  []types.Event
	sig     effects.Signals
}

func (t *turn) terminal() bool {
	return t.sig.ExitReached || t.player.Dead
}

func (t *turn) triggerContext() trigger.Context {
	return trigger.Context{
		KeysSatisfied:    t.s.KeysSatisfied(),
		ExitRequiresKeys: t.e.Rules.ExitRequiresKeys,
	}
}

func (t *turn) apply(effs []types.Effect) {
	if len(effs) == 0 {
		return
	}
	evts, sig := effects.Apply(t.s, effs)
	t.effects = append(t.effects, effs...)
	t.events = append(t.events, evts...)
	t.sig.Merge(sig)
}

// move attempts to step ent one cell in dir and resolves the trigger of the
// cell it enters. It reports whether the position changed.
func (t *turn) move(ent *types.Entity, dir types.Vec) bool {
	ent.Facing = dir
	from := ent.Pos
	dest := grid.Add(from, dir)
	g := t.s.Grid

	// Walls block whatever stands on them.
	if !g.InBounds(dest) || g.IsWall(dest) {
		t.blocked(ent, dest)
		return false
	}

	occupants := t.s.Entities.OthersAt(dest, ent)
	if len(occupants) > 1 {
		ids := make([]int, 0, len(occupants))
		for _, o := range occupants {
			ids = append(ids, o.ID)
		}
		t.e.Log.WithFields(logrus.Fields{
			"cell":      dest,
			"occupants": ids,
			"mover":     ent.ID,
		}).Error("multiple entities share a cell, using the first")
	}
	var occ *types.Entity
	if len(occupants) > 0 {
		occ = occupants[0]
	}
	if occ != nil && !occ.Trigger {
		t.blocked(ent, dest)
		return false
	}

	// A hole can be crossed only where something, dead or alive, fills it.
	supported := g.Walkable(dest) || occ != nil
	if !supported && !t.e.Rules.FallIntoVoid {
		t.blocked(ent, dest)
		return false
	}

	ent.Pos = dest
	t.events = append(t.events, types.Event{
		Type:   events.EntityMoved,
		Entity: ent.ID,
		From:   from,
		To:     dest,
		Dir:    dir,
	})

	if !supported {
		t.apply([]types.Effect{trigger.VoidDeath(ent)})
		return true
	}
	if occ != nil {
		t.apply(trigger.Resolve(ent, occ, t.triggerContext()))
	}
	return true
}

func (t *turn) blocked(ent *types.Entity, dest types.Vec) {
	t.events = append(t.events, types.Event{
		Type:   events.MoveBlocked,
		Entity: ent.ID,
		From:   ent.Pos,
		To:     dest,
		Dir:    ent.Facing,
	})
}

// tickMoods advances every mood counter. A flip resets facing and re-runs
// the trigger of whatever shares the entity's cell.
func (t *turn) tickMoods() {
	for _, ent := range t.s.Entities.All() {
		if t.terminal() {
			return
		}
		if t.sig.Suppressed[ent.ID] {
			continue
		}
		if !mood.Tick(ent) {
			continue
		}
		ent.Facing = types.Down
		t.events = append(t.events, types.Event{
			Type:   events.MoodChanged,
			Entity: ent.ID,
			Mood:   ent.Mood,
		})
		if others := t.s.Entities.OthersAt(ent.Pos, ent); len(others) > 0 {
			t.apply(trigger.Resolve(ent, others[0], t.triggerContext()))
		}
	}
}

func (t *turn) sweep() {
	keys := t.s.KeysSatisfied()
	for _, ent := range t.s.Entities.All() {
		switch rules.EvalSweep(t.e.Rules, ent, t.player, keys) {
		case rules.SweepActivate:
			ent.Activated = true
			t.events = append(t.events, types.Event{Type: events.EntityActivated, Entity: ent.ID})
		case rules.SweepDeactivate:
			ent.Activated = false
			t.events = append(t.events, types.Event{Type: events.EntityDeactivated, Entity: ent.ID})
		}
	}
}
