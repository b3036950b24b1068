// Package effects applies trigger effects to the level state and produces
// the events that describe what happened. It is the only code that mutates
// entities and counters in response to a trigger.
package effects

import (
	"github.com/nathoo/moodgrid/engine/events"
	"github.com/nathoo/moodgrid/engine/grid"
	"github.com/nathoo/moodgrid/engine/mood"
	"github.com/nathoo/moodgrid/engine/state"
	"github.com/nathoo/moodgrid/engine/trigger"
	"github.com/nathoo/moodgrid/types"
)

// Signals reports the turn-level consequences of a batch of effects.
type Signals struct {
	ExitReached bool
	Died        []int        // IDs of entities killed by this batch
	Suppressed  map[int]bool // entities whose mood tick is skipped this turn
}

// PlayerDied reports whether the player is among the dead.
func (sig Signals) PlayerDied(s *state.State) bool {
	p := s.Player()
	if p == nil {
		return false
	}
	for _, id := range sig.Died {
		if id == p.ID {
			return true
		}
	}
	return false
}

// Merge folds other into sig.
func (sig *Signals) Merge(other Signals) {
	sig.ExitReached = sig.ExitReached || other.ExitReached
	sig.Died = append(sig.Died, other.Died...)
	for id := range other.Suppressed {
		sig.suppress(id)
	}
}

func (sig *Signals) suppress(id int) {
	if sig.Suppressed == nil {
		sig.Suppressed = map[int]bool{}
	}
	sig.Suppressed[id] = true
}

// Apply executes effects in order against s and returns the events produced.
// Effects naming an entity that no longer exists are skipped.
func Apply(s *state.State, effs []types.Effect) ([]types.Event, Signals) {
	var evts []types.Event
	var sig Signals

	for _, eff := range effs {
		target := s.Entities.Get(eff.Target)
		if target == nil {
			continue
		}

		switch eff.Type {
		case trigger.EffectFire:
			evts = append(evts, types.Event{
				Type:   events.TriggerFired,
				Entity: eff.Target,
				Target: eff.Actor,
				Action: eff.Action,
			})

		case trigger.EffectExit:
			sig.ExitReached = true
			evts = append(evts, types.Event{
				Type:   events.LevelExitReached,
				Entity: eff.Actor,
				Target: eff.Target,
			})

		case trigger.EffectBreakProgress:
			target.BreakProgress += eff.Amount
			evts = append(evts, types.Event{
				Type:   events.FloorCracked,
				Entity: eff.Target,
				Target: eff.Actor,
			})

		case trigger.EffectBreak:
			target.Trigger = false
			target.BreakProgress = 0
			evts = append(evts, types.Event{
				Type:   events.FloorBroken,
				Entity: eff.Target,
				Target: eff.Actor,
			})

		case trigger.EffectCollectKey:
			if target.Dead {
				continue
			}
			target.Dead = true
			s.KeysCollected++
			evts = append(evts, types.Event{
				Type:   events.KeyCollected,
				Entity: eff.Target,
				Target: eff.Actor,
			})

		case trigger.EffectKill:
			if target.Dead {
				continue
			}
			target.Dead = true
			sig.Died = append(sig.Died, target.ID)
			evts = append(evts, types.Event{
				Type:   events.EntityDied,
				Entity: target.ID,
				Cause:  eff.Cause,
				To:     target.Pos,
			})

		case trigger.EffectActivate:
			if target.Activated {
				continue
			}
			target.Activated = true
			evts = append(evts, types.Event{Type: events.EntityActivated, Entity: target.ID})

		case trigger.EffectConvert:
			target.Action = eff.Action
			evts = append(evts, types.Event{
				Type:   events.TriggerConverted,
				Entity: target.ID,
				Action: eff.Action,
			})

		case trigger.EffectPush:
			actor := s.Entities.Get(eff.Actor)
			if actor == nil {
				continue
			}
			from := target.Pos
			step := types.Vec{X: actor.Facing.X * eff.Amount, Y: actor.Facing.Y * eff.Amount}
			target.Pos = grid.Add(from, step)
			evts = append(evts, types.Event{
				Type:   events.EntityPushed,
				Entity: target.ID,
				Target: actor.ID,
				From:   from,
				To:     target.Pos,
				Dir:    actor.Facing,
			})

		case trigger.EffectIncreaseMood:
			mood.Increase(target, eff.Amount)
			sig.suppress(target.ID)

		default:
			// Unknown effect types are ignored.
		}
	}

	return evts, sig
}
