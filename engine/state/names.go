package state

import (
	"fmt"
	"strings"

	"github.com/nathoo/moodgrid/types"
)

var moodNames = map[types.Mood]string{
	types.MoodNone:  "none",
	types.MoodCalm:  "calm",
	types.MoodAngry: "angry",
}

var actionNames = map[types.TriggerAction]string{
	types.ActionNone:         "none",
	types.ActionExit:         "exit",
	types.ActionBreak:        "break",
	types.ActionKey:          "key",
	types.ActionFall:         "fall",
	types.ActionBurn:         "burn",
	types.ActionActivateBurn: "activate_burn",
	types.ActionPush:         "push",
	types.ActionIncreaseMood: "increase_mood",
}

// MoodName returns the lowercase name of a mood.
func MoodName(m types.Mood) string {
	if n, ok := moodNames[m]; ok {
		return n
	}
	return fmt.Sprintf("mood(%d)", int(m))
}

// ParseMood converts a mood name. The empty string is MoodNone.
func ParseMood(s string) (types.Mood, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return types.MoodNone, nil
	}
	for m, n := range moodNames {
		if n == s {
			return m, nil
		}
	}
	return types.MoodNone, fmt.Errorf("unknown mood %q", s)
}

// ActionName returns the lowercase name of a trigger action.
func ActionName(a types.TriggerAction) string {
	if n, ok := actionNames[a]; ok {
		return n
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// ParseAction converts a trigger action name. The empty string is ActionNone.
func ParseAction(s string) (types.TriggerAction, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return types.ActionNone, nil
	}
	for a, n := range actionNames {
		if n == s {
			return a, nil
		}
	}
	return types.ActionNone, fmt.Errorf("unknown trigger action %q", s)
}

// DirName returns "up", "down", "left", "right" or the raw vector.
func DirName(v types.Vec) string {
	switch v {
	case types.Up:
		return "up"
	case types.Down:
		return "down"
	case types.Left:
		return "left"
	case types.Right:
		return "right"
	}
	return fmt.Sprintf("(%d,%d)", v.X, v.Y)
}
