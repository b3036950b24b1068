package rules

import "github.com/nathoo/moodgrid/types"

// MoodMatches reports whether e's activation mood condition holds for the
// player's current mood. Entities gated on a specific mood match when the
// moods are equal; ungated entities match only when they name no mood.
func MoodMatches(e, player *types.Entity) bool {
	if player == nil {
		return false
	}
	if e.ActivatesInSpecificMood {
		return e.TriggerState == player.Mood
	}
	return e.TriggerState == types.MoodNone
}

// ActivatesAtStart reports whether e becomes active when the level starts.
func ActivatesAtStart(e, player *types.Entity, keysRequired int) bool {
	if e.Dead || e.Activated {
		return false
	}
	switch {
	case e.ActivatesWhenLevelStart:
		return MoodMatches(e, player)
	case e.ActivatesWhenKeyInLevel && keysRequired == 0:
		return MoodMatches(e, player)
	}
	return false
}

// Sweep is the outcome of re-evaluating a mood-gated entity after a turn.
type Sweep int

const (
	SweepNone Sweep = iota
	SweepActivate
	SweepDeactivate
)

// EvalSweep decides whether a mood-gated entity changes activation after the
// player's move.
func EvalSweep(r Rules, e, player *types.Entity, keysSatisfied bool) Sweep {
	if e.Dead || !e.CanBeActivated || !e.ActivatesInSpecificMood || player == nil {
		return SweepNone
	}
	matches := player.Mood == e.TriggerState
	switch {
	case !e.Activated && matches && keysSatisfied:
		return SweepActivate
	case e.Activated && !matches && r.ClearActivationOnMoodRevert:
		return SweepDeactivate
	}
	return SweepNone
}
