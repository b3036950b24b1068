// Package snapshot renders the level state as a stable JSON document for
// inspection and spectators. It is not a save format: nothing is restored
// from it.
package snapshot

import (
	"encoding/json"
	"reflect"

	"github.com/nathoo/moodgrid/engine/state"
)

// Entity is the public view of one entity.
type Entity struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Facing    string `json:"facing"`
	Mood      string `json:"mood"`
	MoodValue int    `json:"mood_value"`
	MoodMax   int    `json:"mood_max"`
	Dead      bool   `json:"dead,omitempty"`
	Activated bool   `json:"activated,omitempty"`
	Trigger   bool   `json:"trigger,omitempty"`
	Action    string `json:"action,omitempty"`
	Progress  int    `json:"break_progress,omitempty"`
}

// Snapshot is the JSON document.
type Snapshot struct {
	Level         string   `json:"level"`
	Title         string   `json:"title,omitempty"`
	LevelIndex    int      `json:"level_index"`
	Width         int      `json:"width"`
	Height        int      `json:"height"`
	Turn          int      `json:"turn"`
	KeysCollected int      `json:"keys_collected"`
	KeysRequired  int      `json:"keys_required"`
	Running       bool     `json:"running"`
	Paused        bool     `json:"paused"`
	Entities      []Entity `json:"entities"`
}

// Take captures s. A torn-down state yields an empty snapshot.
func Take(s *state.State) Snapshot {
	snap := Snapshot{
		LevelIndex:    s.LevelIndex,
		Turn:          s.TurnCount,
		KeysCollected: s.KeysCollected,
		KeysRequired:  s.KeysRequired,
		Running:       s.Running,
		Paused:        s.Paused,
		Entities:      []Entity{},
	}
	if s.Level != nil {
		snap.Level = s.Level.ID
		snap.Title = s.Level.Title
	}
	if s.Grid != nil {
		snap.Width = s.Grid.Width()
		snap.Height = s.Grid.Height()
	}
	if s.Entities == nil {
		return snap
	}
	for _, e := range s.Entities.All() {
		ent := Entity{
			ID:        e.ID,
			Name:      e.Name,
			X:         e.Pos.X,
			Y:         e.Pos.Y,
			Facing:    state.DirName(e.Facing),
			Mood:      state.MoodName(e.Mood),
			MoodValue: e.MoodValue,
			MoodMax:   e.MoodMax,
			Dead:      e.Dead,
			Activated: e.Activated,
			Trigger:   e.Trigger,
			Progress:  e.BreakProgress,
		}
		if e.Trigger {
			ent.Action = state.ActionName(e.Action)
		}
		snap.Entities = append(snap.Entities, ent)
	}
	return snap
}

// Marshal serializes a snapshot of s to indented JSON.
func Marshal(s *state.State) ([]byte, error) {
	return json.MarshalIndent(Take(s), "", "  ")
}

// Parse decodes a snapshot document.
func Parse(data []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	if snap.Entities == nil {
		snap.Entities = []Entity{}
	}
	return &snap, nil
}

// SameEntities reports whether both snapshots hold identical entity records.
func (s Snapshot) SameEntities(other Snapshot) bool {
	return reflect.DeepEqual(s.Entities, other.Entities)
}
