// Package feed streams turn events and game-flow transitions to websocket
// spectators. Spectators only watch; nothing they send reaches the game.
package feed

import (
	"github.com/nathoo/moodgrid/engine/grid"
	"github.com/nathoo/moodgrid/engine/snapshot"
	"github.com/nathoo/moodgrid/engine/state"
	"github.com/nathoo/moodgrid/types"
)

// Message kinds.
const (
	KindSnapshot   = "snapshot"
	KindEvents     = "events"
	KindTransition = "transition"
)

// Message is one frame sent to spectators.
type Message struct {
	Kind     string             `json:"kind"`
	State    string             `json:"state,omitempty"`
	From     string             `json:"from,omitempty"`
	To       string             `json:"to,omitempty"`
	Events   []Event            `json:"events,omitempty"`
	Snapshot *snapshot.Snapshot `json:"snapshot,omitempty"`
}

// Event is the wire form of a turn event.
type Event struct {
	Type   string `json:"type"`
	Entity int    `json:"entity"`
	Target int    `json:"target,omitempty"`
	From   [2]int `json:"from"`
	To     [2]int `json:"to"`
	Dir    string `json:"dir,omitempty"`
	Cause  string `json:"cause,omitempty"`
	Action string `json:"action,omitempty"`
	Mood   string `json:"mood,omitempty"`
}

func toEvents(evts []types.Event) []Event {
	out := make([]Event, 0, len(evts))
	for _, e := range evts {
		ev := Event{
			Type:   e.Type,
			Entity: e.Entity,
			Target: e.Target,
			From:   [2]int{e.From.X, e.From.Y},
			To:     [2]int{e.To.X, e.To.Y},
			Cause:  e.Cause,
		}
		if !grid.IsZero(e.Dir) {
			ev.Dir = state.DirName(e.Dir)
		}
		if e.Action != types.ActionNone {
			ev.Action = state.ActionName(e.Action)
		}
		if e.Mood != types.MoodNone {
			ev.Mood = state.MoodName(e.Mood)
		}
		out = append(out, ev)
	}
	return out
}
