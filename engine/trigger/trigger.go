// Package trigger maps a mover entering an occupied cell to the effects that
// entry produces. Resolve is pure: it reads both entities and returns effects
// for the effects package to apply.
package trigger

import "github.com/nathoo/moodgrid/types"

// Effect type names produced by Resolve.
const (
	EffectFire          = "fire"
	EffectExit          = "exit"
	EffectBreakProgress = "break_progress"
	EffectBreak         = "break"
	EffectCollectKey    = "collect_key"
	EffectKill          = "kill"
	EffectActivate      = "activate"
	EffectConvert       = "convert"
	EffectPush          = "push"
	EffectIncreaseMood  = "increase_mood"
)

// Death causes.
const (
	CauseFall = "fall"
	CauseBurn = "burn"
)

// Context carries the level facts some triggers depend on.
type Context struct {
	KeysSatisfied    bool
	ExitRequiresKeys bool
}

// Resolve returns the effects of actor entering occupant's cell. A nil or
// dead occupant, or one whose precondition fails, yields no effects. When a
// trigger fires the first effect is always EffectFire.
func Resolve(actor, occupant *types.Entity, ctx Context) []types.Effect {
	if actor == nil || occupant == nil || occupant.Dead || !occupant.Trigger {
		return nil
	}

	var effs []types.Effect
	switch occupant.Action {
	case types.ActionExit:
		if !actor.ControlledByPlayer || actor.Mood != occupant.TriggerState || !occupant.Activated {
			return nil
		}
		if ctx.ExitRequiresKeys && !ctx.KeysSatisfied {
			return nil
		}
		effs = append(effs, types.Effect{Type: EffectExit, Actor: actor.ID, Target: occupant.ID})

	case types.ActionBreak:
		if actor.Mood != types.MoodAngry {
			return nil
		}
		effs = append(effs, types.Effect{Type: EffectBreakProgress, Actor: actor.ID, Target: occupant.ID, Amount: 1})
		if occupant.BreakProgress+1 >= occupant.BreakThreshold {
			effs = append(effs,
				types.Effect{Type: EffectBreak, Actor: actor.ID, Target: occupant.ID},
				types.Effect{Type: EffectKill, Actor: actor.ID, Target: actor.ID, Cause: CauseFall},
			)
		}

	case types.ActionKey:
		if !actor.ControlledByPlayer {
			return nil
		}
		effs = append(effs, types.Effect{Type: EffectCollectKey, Actor: actor.ID, Target: occupant.ID})

	case types.ActionFall:
		if actor.Mood != types.MoodAngry {
			return nil
		}
		effs = append(effs, types.Effect{Type: EffectKill, Actor: actor.ID, Target: actor.ID, Cause: CauseFall})

	case types.ActionBurn:
		if actor.Mood != types.MoodCalm {
			return nil
		}
		effs = append(effs, types.Effect{Type: EffectKill, Actor: actor.ID, Target: actor.ID, Cause: CauseBurn})

	case types.ActionActivateBurn:
		if actor.Mood != types.MoodAngry {
			return nil
		}
		effs = append(effs,
			types.Effect{Type: EffectActivate, Actor: actor.ID, Target: occupant.ID},
			types.Effect{Type: EffectConvert, Actor: actor.ID, Target: occupant.ID, Action: types.ActionBurn},
		)

	case types.ActionPush:
		effs = append(effs, types.Effect{Type: EffectPush, Actor: actor.ID, Target: occupant.ID, Amount: occupant.PushAmount})

	case types.ActionIncreaseMood:
		effs = append(effs, types.Effect{Type: EffectIncreaseMood, Actor: actor.ID, Target: actor.ID, Amount: occupant.IncreaseAmount})

	default:
		return nil
	}

	fire := types.Effect{Type: EffectFire, Actor: actor.ID, Target: occupant.ID, Action: occupant.Action}
	return append([]types.Effect{fire}, effs...)
}

// VoidDeath returns the kill effect for a mover stepping into an unsupported
// cell: Angry movers fall, everyone else burns.
func VoidDeath(actor *types.Entity) types.Effect {
	cause := CauseBurn
	if actor.Mood == types.MoodAngry {
		cause = CauseFall
	}
	return types.Effect{Type: EffectKill, Actor: actor.ID, Target: actor.ID, Cause: cause}
}
