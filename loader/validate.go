package loader

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nathoo/moodgrid/engine/state"
	"github.com/nathoo/moodgrid/types"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

// validate checks the compiled defs for referential integrity and playability.
func validate(defs *state.Defs, ve *ValidationError) {
	if defs.Game.Title == "" {
		ve.Errors = append(ve.Errors, "Game.title is required")
	}
	if len(defs.Game.Levels) == 0 {
		ve.Errors = append(ve.Errors, "at least one Level is required")
	}

	listed := map[string]bool{}
	for i, id := range defs.Game.Levels {
		if _, ok := defs.Levels[id]; !ok {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"Game.levels[%d] references undefined level %q", i+1, id))
		}
		listed[id] = true
	}

	ids := make([]string, 0, len(defs.Levels))
	for id := range defs.Levels {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		lvl := defs.Levels[id]
		if !listed[id] {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf(
				"level %q is not listed in Game.levels and will never be played", id))
		}
		if lvl.Ground.Width == 0 {
			// Already reported while compiling.
			continue
		}

		players, exits := 0, 0
		for _, sp := range lvl.Spawns {
			tmpl := defs.Templates[sp.Template]
			if tmpl.ControlledByPlayer {
				players++
			}
			if tmpl.Action == types.ActionExit {
				exits++
			}
		}
		if players != 1 {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"level %q has %d player spawns, want exactly 1", id, players))
		}
		if exits == 0 {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf("level %q has no exit", id))
		}
	}
}
