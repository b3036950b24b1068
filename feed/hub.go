package feed

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/nathoo/moodgrid/engine/snapshot"
	"github.com/nathoo/moodgrid/flow"
	"github.com/nathoo/moodgrid/types"
)

// Hub fans messages out to connected spectators. A spectator whose buffer
// is full misses the frame rather than stalling the game.
type Hub struct {
	log logrus.FieldLogger

	mu      sync.RWMutex
	clients map[*client]struct{}
	last    Message // most recent state frame, replayed to new spectators
}

// NewHub creates an empty hub.
func NewHub(log logrus.FieldLogger) *Hub {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Hub{
		log:     log,
		clients: make(map[*client]struct{}),
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[c] = struct{}{}
	if h.last.Kind != "" {
		c.send <- h.last
	}
	h.log.WithField("spectators", len(h.clients)).Info("spectator connected")
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; ok {
		close(c.send)
		delete(h.clients, c)
		h.log.WithField("spectators", len(h.clients)).Info("spectator disconnected")
	}
}

// Broadcast sends msg to every spectator. Messages carrying a state name
// also become the frame new spectators receive first.
func (h *Hub) Broadcast(msg Message) {
	h.mu.Lock()
	if msg.State != "" {
		h.last = Message{Kind: KindSnapshot, State: msg.State, Snapshot: msg.Snapshot}
	}
	h.mu.Unlock()

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.log.WithField("kind", msg.Kind).Debug("spectator buffer full, frame dropped")
		}
	}
}

// Len returns the number of connected spectators.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every spectator.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
}

// ServeHTTP upgrades the request and starts the spectator's pumps.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	c := newClient(h, conn)
	h.register(c)

	go c.writePump()
	go c.readPump()
}

// Attach forwards g's turn events and transitions to h. The returned
// function stops forwarding.
func Attach(g *flow.Game, h *Hub) func() {
	c := g.Context()
	var detached atomic.Bool

	unsub := c.Bus.Subscribe(func(_ context.Context, evts []types.Event) error {
		h.Broadcast(Message{
			Kind:     KindEvents,
			State:    g.State().String(),
			Events:   toEvents(evts),
			Snapshot: current(c),
		})
		return nil
	})
	g.OnTransition(func(from, to flow.StateID) {
		if detached.Load() {
			return
		}
		h.Broadcast(Message{
			Kind:     KindTransition,
			State:    to.String(),
			From:     from.String(),
			To:       to.String(),
			Snapshot: current(c),
		})
	})

	return func() {
		detached.Store(true)
		unsub()
	}
}

// current captures the level being played, or nil outside gameplay.
func current(c *flow.Context) *snapshot.Snapshot {
	if c.Engine == nil || c.Engine.State == nil || c.Engine.State.Level == nil {
		return nil
	}
	snap := snapshot.Take(c.Engine.State)
	return &snap
}
