package feed

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathoo/moodgrid/engine/snapshot"
	"github.com/nathoo/moodgrid/engine/state"
	"github.com/nathoo/moodgrid/flow"
	"github.com/nathoo/moodgrid/types"
)

func newHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	l, _ := test.NewNullLogger()
	h := NewHub(l)
	srv := httptest.NewServer(h)
	t.Cleanup(func() {
		h.Close()
		srv.Close()
	})
	return h, srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

// readUntil reads frames until match accepts one.
func readUntil(t *testing.T, conn *websocket.Conn, match func(Message) bool) Message {
	t.Helper()
	for i := 0; i < 50; i++ {
		if msg := read(t, conn); match(msg) {
			return msg
		}
	}
	t.Fatal("no matching frame")
	return Message{}
}

func waitSpectators(t *testing.T, h *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return h.Len() == n }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_NewSpectatorGetsLatestState(t *testing.T) {
	h, srv := newHub(t)
	h.Broadcast(Message{Kind: KindTransition, State: "gameplay", Snapshot: &snapshot.Snapshot{Level: "a", Turn: 4}})

	conn := dial(t, srv)
	msg := read(t, conn)

	assert.Equal(t, KindSnapshot, msg.Kind)
	assert.Equal(t, "gameplay", msg.State)
	require.NotNil(t, msg.Snapshot)
	assert.Equal(t, "a", msg.Snapshot.Level)
	assert.Equal(t, 4, msg.Snapshot.Turn)
}

func TestHub_NothingCachedBeforeFirstState(t *testing.T) {
	h, srv := newHub(t)
	h.Broadcast(Message{Kind: KindEvents})

	conn := dial(t, srv)
	waitSpectators(t, h, 1)

	h.Broadcast(Message{Kind: KindEvents, Events: []Event{{Type: "entity_moved"}}})
	msg := read(t, conn)
	assert.Equal(t, KindEvents, msg.Kind, "first frame should be the live one")
}

func TestHub_BroadcastReachesEverySpectator(t *testing.T) {
	h, srv := newHub(t)
	a, b := dial(t, srv), dial(t, srv)
	waitSpectators(t, h, 2)

	h.Broadcast(Message{Kind: KindEvents, Events: []Event{{Type: "key_collected", Entity: 3}}})

	for _, conn := range []*websocket.Conn{a, b} {
		msg := read(t, conn)
		require.Len(t, msg.Events, 1)
		assert.Equal(t, "key_collected", msg.Events[0].Type)
		assert.Equal(t, 3, msg.Events[0].Entity)
	}
}

func TestHub_DisconnectUnregisters(t *testing.T) {
	h, srv := newHub(t)
	conn := dial(t, srv)
	waitSpectators(t, h, 1)

	require.NoError(t, conn.Close())
	waitSpectators(t, h, 0)
}

func TestHub_CloseDisconnectsSpectators(t *testing.T) {
	h, srv := newHub(t)
	conn := dial(t, srv)
	waitSpectators(t, h, 1)

	h.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err, "connection should be closed")
	assert.Equal(t, 0, h.Len())
}

func TestToEvents(t *testing.T) {
	got := toEvents([]types.Event{
		{Type: "entity_moved", Entity: 1, From: types.Vec{X: 1, Y: 2}, To: types.Vec{X: 2, Y: 2}, Dir: types.Right},
		{Type: "mood_changed", Entity: 2, Mood: types.MoodAngry},
		{Type: "trigger_fired", Entity: 3, Target: 1, Action: types.ActionKey},
	})
	require.Len(t, got, 3)
	assert.Equal(t, Event{Type: "entity_moved", Entity: 1, From: [2]int{1, 2}, To: [2]int{2, 2}, Dir: "right"}, got[0])
	assert.Equal(t, "angry", got[1].Mood)
	assert.Empty(t, got[1].Dir)
	assert.Equal(t, "key", got[2].Action)
}

func feedDefs() *state.Defs {
	tiles := make([]types.Tile, 3)
	for i := range tiles {
		tiles[i] = types.Tile{Exists: true, Collider: types.ColliderGrid}
	}
	return &state.Defs{
		Game: types.GameDef{Title: "Feed", Levels: []string{"a"}},
		Templates: map[string]types.EntityDef{
			"player": {Name: "player", ControlledByPlayer: true},
			"exit":   {Name: "exit", Trigger: true, Action: types.ActionExit},
		},
		Levels: map[string]types.LevelDef{
			"a": {
				ID:     "a",
				Ground: types.TileLayer{Width: 3, Height: 1, Tiles: tiles},
				Spawns: []types.Spawn{
					{Template: "player", Pos: types.Vec{X: 0, Y: 0}},
					{Template: "exit", Pos: types.Vec{X: 2, Y: 0}},
				},
			},
		},
	}
}

func TestAttach_ForwardsGameplay(t *testing.T) {
	h, srv := newHub(t)
	l, _ := test.NewNullLogger()
	g, err := flow.NewGame(feedDefs(), flow.WithLogger(l))
	require.NoError(t, err)
	detach := Attach(g, h)

	conn := dial(t, srv)
	waitSpectators(t, h, 1)

	ctx := context.Background()
	require.NoError(t, g.Start(ctx))
	title := readUntil(t, conn, func(m Message) bool { return m.Kind == KindTransition && m.To == "title" })
	assert.Nil(t, title.Snapshot)

	_, err = g.Handle(ctx, types.Intent{Verb: "start"})
	require.NoError(t, err)
	started := readUntil(t, conn, func(m Message) bool {
		return m.Kind == KindEvents && len(m.Events) > 0 && m.Events[0].Type == "level_started"
	})
	assert.Equal(t, "gameplay", started.State)
	require.NotNil(t, started.Snapshot)
	assert.Equal(t, "a", started.Snapshot.Level)

	_, err = g.Handle(ctx, types.Intent{Verb: "move", Dir: types.Right})
	require.NoError(t, err)
	moved := readUntil(t, conn, func(m Message) bool { return m.Kind == KindEvents })
	require.NotEmpty(t, moved.Events)
	assert.Equal(t, "entity_moved", moved.Events[0].Type)
	require.NotNil(t, moved.Snapshot)
	assert.Equal(t, 1, moved.Snapshot.Entities[0].X)
	assert.Equal(t, 1, moved.Snapshot.Turn)

	subscribed := g.Context().Bus.Len()
	detach()
	assert.Equal(t, subscribed-1, g.Context().Bus.Len())
}

func TestServer_Health(t *testing.T) {
	l, _ := test.NewNullLogger()
	s := NewServer(":0", NewHub(l), l)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))
}
