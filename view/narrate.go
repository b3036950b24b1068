package view

import (
	"fmt"

	"github.com/nathoo/moodgrid/engine/events"
	"github.com/nathoo/moodgrid/engine/state"
	"github.com/nathoo/moodgrid/types"
)

// Narrate describes an event in one sentence, or returns "" for events the
// grid already shows. s must be the state the event was produced against.
func Narrate(e types.Event, s *state.State) string {
	name, isPlayer := entityName(s, e.Entity)
	subject := name
	if isPlayer {
		subject = "You"
	}

	switch e.Type {
	case events.EntityMoved:
		if isPlayer {
			return ""
		}
		return fmt.Sprintf("The %s moves %s.", name, state.DirName(e.Dir))
	case events.MoveBlocked:
		if isPlayer {
			return "You can't go that way."
		}
		return ""
	case events.EntityDied:
		if isPlayer {
			return fmt.Sprintf("You died (%s).", e.Cause)
		}
		return fmt.Sprintf("The %s is gone (%s).", name, e.Cause)
	case events.MoodChanged:
		if isPlayer {
			return fmt.Sprintf("You feel %s.", state.MoodName(e.Mood))
		}
		return fmt.Sprintf("The %s turns %s.", name, state.MoodName(e.Mood))
	case events.EntityActivated:
		return fmt.Sprintf("The %s wakes.", name)
	case events.EntityDeactivated:
		return fmt.Sprintf("The %s goes dormant.", name)
	case events.KeyCollected:
		return "Key collected."
	case events.FloorCracked:
		return "The floor cracks."
	case events.FloorBroken:
		return "The floor gives way!"
	case events.EntityPushed:
		return fmt.Sprintf("The %s slides %s.", name, state.DirName(e.Dir))
	case events.TriggerConverted:
		return fmt.Sprintf("The %s becomes %s.", name, state.ActionName(e.Action))
	case events.LevelExitReached:
		return fmt.Sprintf("%s reached the exit!", subject)
	case events.LevelRetryRequested:
		return "Restarting the level."
	case events.LevelComplete:
		return "Level complete."
	}
	return ""
}
