// Package parser converts typed commands into Intent structs.
// Intentionally dumb: single words and an optional level number.
package parser

import (
	"strconv"
	"strings"

	"github.com/nathoo/moodgrid/types"
)

var directions = map[string]types.Vec{
	// wasd
	"w": types.Up, "a": types.Left, "s": types.Down, "d": types.Right,

	"up": types.Up, "down": types.Down, "left": types.Left, "right": types.Right,
	"north": types.Up, "south": types.Down, "west": types.Left, "east": types.Right,
	"n": types.Up, "e": types.Right,
}

var verbAliases = map[string]string{
	// Level control
	"r":       "retry",
	"retry":   "retry",
	"reset":   "retry",
	"restart": "retry",
	"p":       "pause",
	"pause":   "pause",
	"skip":    "skip",
	"next":    "skip",

	// Menus
	"start":  "start",
	"play":   "start",
	"levels": "levels",
	"select": "select",
	"level":  "select",
	"back":   "back",
	"title":  "back",
	"menu":   "back",

	// Quit
	"q":    "quit",
	"quit": "quit",
	"exit": "quit",
}

// Parse converts a raw command string into an Intent. Unknown input yields
// an Intent with the first word as its verb so callers can report it.
func Parse(input string) types.Intent {
	input = strings.TrimSpace(input)
	if input == "" {
		return types.Intent{}
	}

	words := strings.Fields(strings.ToLower(input))

	// "go left", "move up"
	if (words[0] == "go" || words[0] == "move") && len(words) > 1 {
		words = words[1:]
	}

	if dir, ok := directions[words[0]]; ok && len(words) == 1 {
		return types.Intent{Verb: "move", Dir: dir}
	}

	// A bare number picks a level.
	if n, err := strconv.Atoi(words[0]); err == nil && len(words) == 1 {
		if n < 1 {
			n = -1
		}
		return types.Intent{Verb: "select", Arg: n}
	}

	verb, ok := verbAliases[words[0]]
	if !ok {
		return types.Intent{Verb: words[0]}
	}

	intent := types.Intent{Verb: verb}
	if verb == "select" {
		intent.Arg = -1
		if len(words) > 1 {
			if n, err := strconv.Atoi(words[1]); err == nil && n > 0 {
				intent.Arg = n
			}
		}
	}
	return intent
}

// Known reports whether intent names a verb the game understands.
func Known(intent types.Intent) bool {
	if intent.Verb == "move" {
		return true
	}
	for _, v := range verbAliases {
		if v == intent.Verb {
			return true
		}
	}
	return false
}
