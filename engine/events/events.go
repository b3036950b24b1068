// Package events carries turn outcome events from the engine to the
// presentation layer. Publish runs subscribers synchronously in subscription
// order; a turn does not continue until every subscriber has returned.
package events

import (
	"context"
	"sync"

	"github.com/nathoo/moodgrid/types"
)

// Event types.
const (
	EntityMoved         = "entity_moved"
	MoveBlocked         = "move_blocked"
	EntityDied          = "entity_died"
	TriggerFired        = "trigger_fired"
	MoodChanged         = "mood_changed"
	EntityActivated     = "entity_activated"
	EntityDeactivated   = "entity_deactivated"
	KeyCollected        = "key_collected"
	FloorCracked        = "floor_cracked"
	FloorBroken         = "floor_broken"
	EntityPushed        = "entity_pushed"
	TriggerConverted    = "trigger_converted"
	LevelStarted        = "level_started"
	LevelExitReached    = "level_exit_reached"
	LevelRetryRequested = "level_retry_requested"
	LevelComplete       = "level_complete"
)

// Handler receives a batch of events. Returning an error (typically the
// context's) aborts the rest of the turn.
type Handler func(ctx context.Context, evts []types.Event) error

type subscription struct {
	id int
	fn Handler
}

// Bus fans events out to subscribers.
type Bus struct {
	mu   sync.Mutex
	subs []subscription
	next int
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers h and returns a function that removes it.
func (b *Bus) Subscribe(h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.next++
	id := b.next
	b.subs = append(b.subs, subscription{id: id, fn: h})
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.subs {
			if s.id == id {
				b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers evts to every subscriber. It stops at the first error or
// when ctx is cancelled.
func (b *Bus) Publish(ctx context.Context, evts []types.Event) error {
	if b == nil || len(evts) == 0 {
		return nil
	}
	b.mu.Lock()
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.Unlock()

	for _, s := range subs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.fn(ctx, evts); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of subscribers.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Recorder is a Handler that keeps every event it sees. Useful for tests and
// trace output.
type Recorder struct {
	Events []types.Event
}

// Handle implements Handler.
func (r *Recorder) Handle(_ context.Context, evts []types.Event) error {
	r.Events = append(r.Events, evts...)
	return nil
}

// Types returns the recorded event types in order.
func (r *Recorder) Types() []string {
	out := make([]string, 0, len(r.Events))
	for _, e := range r.Events {
		out = append(out, e.Type)
	}
	return out
}

// Has reports whether an event of type typ was recorded.
func Has(evts []types.Event, typ string) bool {
	for _, e := range evts {
		if e.Type == typ {
			return true
		}
	}
	return false
}
