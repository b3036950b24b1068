package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/nathoo/moodgrid/engine/state"
	"github.com/nathoo/moodgrid/flow"
	"github.com/nathoo/moodgrid/types"
)

func openLayer(w, h int) types.TileLayer {
	tiles := make([]types.Tile, w*h)
	for i := range tiles {
		tiles[i] = types.Tile{Exists: true, Collider: types.ColliderGrid}
	}
	return types.TileLayer{Width: w, Height: h, Tiles: tiles}
}

// testDefs: level "a" has the exit one step right, level "b" is a plain
// corridor.
func testDefs() *state.Defs {
	return &state.Defs{
		Game: types.GameDef{Title: "Test Game", Author: "Test", Levels: []string{"a", "b"}},
		Templates: map[string]types.EntityDef{
			"player": {Name: "player", ControlledByPlayer: true, Mood: types.MoodCalm},
			"exit": {
				Name: "exit", Trigger: true, Action: types.ActionExit, TriggerState: types.MoodCalm,
				CanBeActivated: true, ActivatesWhenLevelStart: true, ActivatesInSpecificMood: true,
			},
		},
		Levels: map[string]types.LevelDef{
			"a": {ID: "a", Title: "Alpha", Ground: openLayer(3, 1), Spawns: []types.Spawn{
				{Template: "player", Pos: types.Vec{X: 0, Y: 0}},
				{Template: "exit", Pos: types.Vec{X: 1, Y: 0}},
			}},
			"b": {ID: "b", Title: "Beta", Ground: openLayer(4, 1), Spawns: []types.Spawn{
				{Template: "player", Pos: types.Vec{X: 0, Y: 0}},
				{Template: "exit", Pos: types.Vec{X: 3, Y: 0}},
			}},
		},
	}
}

func newTestModel(t *testing.T) Model {
	t.Helper()
	l, _ := test.NewNullLogger()
	g, err := flow.NewGame(testDefs(), flow.WithLogger(l))
	if err != nil {
		t.Fatal(err)
	}
	m, err := New(context.Background(), g)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(m.Close)
	return update(t, m, tea.WindowSizeMsg{Width: 80, Height: 30})
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return nm
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func enter(t *testing.T, m Model, line string) Model {
	t.Helper()
	m.input.SetValue(line)
	return update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
}

func transcriptText(m Model) string {
	var b strings.Builder
	for _, rl := range m.out.lines {
		b.WriteString(rl.text)
		b.WriteString("\n")
	}
	return b.String()
}

func TestModel_TitleScreen(t *testing.T) {
	m := newTestModel(t)
	if m.game.State() != flow.StateTitle {
		t.Fatalf("state = %s, want title", m.game.State())
	}
	out := m.View()
	if !strings.Contains(out, "Test Game") || !strings.Contains(out, "by Test") {
		t.Errorf("title view missing header:\n%s", out)
	}
	if m.directKeys() {
		t.Error("menus should read the command line")
	}
}

func TestModel_StartShowsBoard(t *testing.T) {
	m := enter(t, newTestModel(t), "start")
	if m.game.State() != flow.StateGameplay {
		t.Fatalf("state = %s, want gameplay", m.game.State())
	}
	if !m.directKeys() {
		t.Error("gameplay should take keys directly")
	}
	board := m.renderBoard()
	if !strings.Contains(board, "@") || !strings.Contains(board, "E") {
		t.Errorf("board missing player or exit:\n%s", board)
	}
	if bar := m.renderStatusBar(); !strings.Contains(bar, "Level 1/2 Alpha") {
		t.Errorf("status bar = %q", bar)
	}
	if !strings.Contains(m.View(), gameplayHint) {
		t.Error("expected key hints in place of the prompt")
	}
}

func TestModel_DirectKeysWaitForFrame(t *testing.T) {
	m := enter(t, newTestModel(t), "start")

	m = update(t, m, runes("d"))
	if m.game.Context().LevelIndex != 0 {
		t.Fatal("move resolved before the frame")
	}

	m = update(t, m, frameMsg{})
	if m.game.Context().LevelIndex != 1 {
		t.Fatalf("LevelIndex = %d, want 1 after reaching the exit", m.game.Context().LevelIndex)
	}
	out := transcriptText(m)
	for _, want := range []string{"You reached the exit!", "Level complete.", "The exit wakes."} {
		if !strings.Contains(out, want) {
			t.Errorf("transcript missing %q:\n%s", want, out)
		}
	}
}

func TestModel_ArrowKeysBlocked(t *testing.T) {
	m := enter(t, newTestModel(t), "start")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	m = update(t, m, frameMsg{})
	if !strings.Contains(transcriptText(m), "You can't go that way.") {
		t.Errorf("expected blocked narration:\n%s", transcriptText(m))
	}
}

func TestModel_CommandLineDuringPlay(t *testing.T) {
	m := enter(t, newTestModel(t), "start")

	m = update(t, m, runes("/"))
	if !m.typing || m.input.Value() != "/" {
		t.Fatalf("typing=%v value=%q", m.typing, m.input.Value())
	}
	m = enter(t, m, "/trace")
	if m.typing {
		t.Error("command line should close after enter")
	}
	if !m.out.trace {
		t.Error("trace not enabled")
	}

	m = update(t, m, runes("d"))
	m = update(t, m, frameMsg{})
	if !strings.Contains(transcriptText(m), "[trace] entity_moved") {
		t.Errorf("expected trace lines:\n%s", transcriptText(m))
	}
}

func TestModel_StatusBarShowsTrace(t *testing.T) {
	m := enter(t, newTestModel(t), "start")
	if bar := m.renderStatusBar(); strings.Contains(bar, "trace | ") {
		t.Errorf("trace marker shown before /trace: %q", bar)
	}

	m = update(t, m, runes("/"))
	m = enter(t, m, "/trace")
	bar := m.renderStatusBar()
	if !strings.Contains(bar, "trace | gameplay") {
		t.Errorf("status bar = %q, want trace marker", bar)
	}
}

func TestModel_EscClosesCommandLine(t *testing.T) {
	m := enter(t, newTestModel(t), "start")
	m = update(t, m, runes(":"))
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.typing || m.game.Done() {
		t.Errorf("typing=%v done=%v", m.typing, m.game.Done())
	}
}

func TestModel_QuitKey(t *testing.T) {
	m := enter(t, newTestModel(t), "start")
	next, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("expected a quit command")
	}
	if !next.(Model).quitting || !m.game.Done() {
		t.Error("q should quit the game")
	}
}

func TestModel_MenuMessages(t *testing.T) {
	m := newTestModel(t)
	m = enter(t, m, "dance")
	m = enter(t, m, "w")
	m = enter(t, m, "g")
	m = enter(t, m, "/nope")

	out := transcriptText(m)
	for _, want := range []string{
		`I don't understand "dance".`,
		"You can't move here.",
		"> g",
		"[Unknown command: /nope. Type /help for available commands.]",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("transcript missing %q:\n%s", want, out)
		}
	}
	if m.history.Len() != 4 {
		t.Errorf("history length = %d, want 4", m.history.Len())
	}
}

func TestModel_HistoryRecall(t *testing.T) {
	m := newTestModel(t)
	m = enter(t, m, "levels")
	m = enter(t, m, "back")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	if m.input.Value() != "back" {
		t.Errorf("recalled %q, want back", m.input.Value())
	}
	m = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	if m.input.Value() != "levels" {
		t.Errorf("recalled %q, want levels", m.input.Value())
	}
}

func TestModel_DirectKeysSkipHistory(t *testing.T) {
	m := enter(t, newTestModel(t), "start")
	m = update(t, m, runes("s"))
	m = update(t, m, frameMsg{})
	if m.history.Len() != 1 {
		t.Errorf("history length = %d, want only the start command", m.history.Len())
	}
}

func TestModel_StateCommand(t *testing.T) {
	m := newTestModel(t)
	m = enter(t, m, "/state")
	if !strings.Contains(transcriptText(m), "[No level loaded (state: title).]") {
		t.Errorf("transcript:\n%s", transcriptText(m))
	}

	m = enter(t, m, "start")
	m = update(t, m, runes("/"))
	m = enter(t, m, "/state")
	if !strings.Contains(transcriptText(m), `"level"`) {
		t.Errorf("expected snapshot JSON:\n%s", transcriptText(m))
	}
}

func TestClassifyLine(t *testing.T) {
	tests := []struct {
		line string
		want lineKind
	}{
		{"[trace] entity_moved entity=0", kindTrace},
		{"[Trace output enabled.]", kindSystem},
		{"You died (burn).", kindError},
		{"You can't go that way.", kindError},
		{"The floor gives way!", kindError},
		{"You reached the exit!", kindSuccess},
		{"Level complete.", kindSuccess},
		{"Key collected.", kindSuccess},
		{"You feel angry.", kindMood},
		{"The golem turns calm.", kindMood},
		{"The golem moves left.", kindNarration},
		{"", kindNarration},
	}
	for _, tt := range tests {
		if got := classifyLine(tt.line); got != tt.want {
			t.Errorf("classifyLine(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestWordWrap(t *testing.T) {
	tests := []struct {
		text  string
		width int
		want  string
	}{
		{"short", 80, "short"},
		{"hello world", 5, "hello\nworld"},
		{"The golem turns angry and the floor cracks under it.", 20,
			"The golem turns\nangry and the floor\ncracks under it."},
		{"", 80, ""},
		{"a b c d e", 3, "a b\nc d\ne"},
	}
	for _, tt := range tests {
		if got := wordWrap(tt.text, tt.width); got != tt.want {
			t.Errorf("wordWrap(%q, %d) =\n  %q\nwant:\n  %q", tt.text, tt.width, got, tt.want)
		}
	}
}
