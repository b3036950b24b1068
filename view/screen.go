package view

import (
	"fmt"
	"strings"

	"github.com/nathoo/moodgrid/engine/state"
	"github.com/nathoo/moodgrid/flow"
	"github.com/nathoo/moodgrid/types"
)

// Status summarises the level being played, or returns "" outside gameplay.
func Status(c *flow.Context) string {
	if c.Engine == nil || c.Engine.State == nil || c.Engine.State.Level == nil {
		return ""
	}
	s := c.Engine.State
	parts := []string{fmt.Sprintf("Level %d/%d %s", c.LevelIndex+1, c.Defs.LevelCount(), s.Level.Title)}
	if p := s.Player(); p != nil {
		parts = append(parts, fmt.Sprintf("mood %s %s", state.MoodName(p.Mood), Meter(p.MoodValue, p.MoodMax)))
	}
	parts = append(parts,
		fmt.Sprintf("keys %d/%d", s.KeysCollected, s.KeysRequired),
		fmt.Sprintf("turn %d", s.TurnCount),
	)
	if s.Paused {
		parts = append(parts, "PAUSED")
	}
	return strings.Join(parts, " | ")
}

// Screen renders what the active flow state shows.
func Screen(g *flow.Game) []string {
	c := g.Context()
	game := c.Defs.Game

	switch g.State() {
	case flow.StateTitle:
		lines := []string{game.Title}
		if game.Author != "" {
			lines = append(lines, "by "+game.Author)
		}
		return append(lines, "",
			"start   play",
			"levels  choose a level",
			"quit    leave",
		)

	case flow.StateLevelSelect:
		lines := []string{"Choose a level:"}
		for i := 0; i < c.Defs.LevelCount(); i++ {
			lvl, _ := c.Defs.LevelAt(i)
			lines = append(lines, fmt.Sprintf("  %d. %s", i+1, lvl.Title))
		}
		return append(lines, "", "select <n> to play, back to return")

	case flow.StateGameplay:
		if c.Engine == nil {
			return nil
		}
		return append([]string{Status(c), ""}, Lines(c.Engine.State)...)

	case flow.StateVictory:
		return []string{
			"Every level cleared!",
			"",
			"retry to play again, back for the title, quit to leave",
		}

	case flow.StateDefeat:
		return []string{
			"You were defeated.",
			"",
			"retry to try again, back for the title, quit to leave",
		}
	}
	return nil
}

// Rejection explains why an intent did nothing in state st.
func Rejection(st flow.StateID, in types.Intent) string {
	switch {
	case st == flow.StateGameplay && in.Verb == "move":
		return "Nothing happens."
	case st == flow.StateLevelSelect && in.Verb == "select":
		return "No such level."
	}
	return fmt.Sprintf("You can't %s here.", in.Verb)
}
