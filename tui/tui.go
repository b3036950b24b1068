package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/moodgrid/engine/parser"
	"github.com/nathoo/moodgrid/engine/snapshot"
	"github.com/nathoo/moodgrid/engine/state"
	"github.com/nathoo/moodgrid/flow"
	"github.com/nathoo/moodgrid/types"
	"github.com/nathoo/moodgrid/view"
)

// frameInterval paces queued gameplay input: one intent per frame.
const frameInterval = 50 * time.Millisecond

// rawLine stores an unstyled output line with its classification,
// so we can re-wrap and re-style when the terminal is resized.
type rawLine struct {
	text    string
	kind    lineKind
	isInput bool // true for echoed player input
}

// transcript is shared between every copy of the model and the bus
// subscriber that narrates events into it.
type transcript struct {
	lines []rawLine
	trace bool
}

func (t *transcript) add(text string) {
	t.lines = append(t.lines, rawLine{text: text, kind: classifyLine(text)})
}

func (t *transcript) input(text string) {
	t.lines = append(t.lines, rawLine{text: "> " + text, isInput: true})
}

func (t *transcript) system(text string) {
	t.lines = append(t.lines, rawLine{text: "[" + text + "]", kind: kindSystem})
}

// Model is the Bubble Tea model for the moodgrid TUI.
type Model struct {
	ctx  context.Context
	game *flow.Game
	keys keyMap

	viewport viewport.Model
	input    textinput.Model
	history  *History
	out      *transcript
	unsub    func()

	width    int
	height   int
	ready    bool
	typing   bool // command line open during gameplay
	quitting bool
	lastCmd  string
}

// frameMsg drives the game's per-frame update.
type frameMsg time.Time

func frame() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

// New creates a TUI model wired to g and starts the game.
func New(ctx context.Context, g *flow.Game) (Model, error) {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 256
	ti.PromptStyle = styleInputPrompt

	m := Model{
		ctx:     ctx,
		game:    g,
		keys:    defaultKeyMap(),
		input:   ti,
		history: NewHistory(100),
		out:     &transcript{},
	}
	m.unsub = g.Context().Bus.Subscribe(m.narrate)

	if err := g.Start(ctx); err != nil {
		m.unsub()
		return Model{}, err
	}
	return m, nil
}

// Close detaches the model from the game's event bus.
func (m Model) Close() {
	if m.unsub != nil {
		m.unsub()
	}
}

// Run starts the Bubble Tea program and blocks until the player quits or
// ctx is cancelled.
func Run(ctx context.Context, g *flow.Game) error {
	m, err := New(ctx, g)
	if err != nil {
		return err
	}
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// Init starts the cursor blink and the frame clock.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, frame())
}

// Update handles messages (key presses, window resize, frames).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(m.width, 1)
			m.viewport.KeyMap = viewportKeyMap()
			m.ready = true
		}
		m.refreshViewport()
		return m, nil

	case frameMsg:
		m.game.Tick(m.ctx)
		m.refreshViewport()
		if m.game.Done() {
			m.quitting = true
			return m, tea.Quit
		}
		return m, frame()

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		if key.Matches(msg, m.keys.PageUp, m.keys.PageDown) {
			var vpCmd tea.Cmd
			m.viewport, vpCmd = m.viewport.Update(msg)
			return m, vpCmd
		}
		if m.directKeys() {
			return m.handleDirectKey(msg)
		}
		switch msg.String() {
		case "enter":
			return m.handleEnter()

		case "esc":
			if m.typing {
				m.typing = false
				m.input.SetValue("")
				return m, nil
			}

		case "up":
			if prev, ok := m.history.Prev(); ok {
				m.input.SetValue(prev)
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if next, ok := m.history.Next(); ok {
				m.input.SetValue(next)
				m.input.CursorEnd()
			} else {
				m.input.SetValue("")
				m.history.ResetCursor()
			}
			return m, nil
		}
	}

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	return m, inputCmd
}

// directKeys reports whether key presses drive the board rather than the
// command line.
func (m Model) directKeys() bool {
	return m.game.State() == flow.StateGameplay && !m.typing
}

// handleDirectKey queues gameplay intents; the next frame resolves them.
func (m Model) handleDirectKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.game.Queue(types.Intent{Verb: "move", Dir: types.Up})
	case key.Matches(msg, m.keys.Down):
		m.game.Queue(types.Intent{Verb: "move", Dir: types.Down})
	case key.Matches(msg, m.keys.Left):
		m.game.Queue(types.Intent{Verb: "move", Dir: types.Left})
	case key.Matches(msg, m.keys.Right):
		m.game.Queue(types.Intent{Verb: "move", Dir: types.Right})
	case key.Matches(msg, m.keys.Retry):
		m.game.Queue(types.Intent{Verb: "retry"})
	case key.Matches(msg, m.keys.Pause):
		m.game.Queue(types.Intent{Verb: "pause"})
	case key.Matches(msg, m.keys.Skip):
		m.game.Queue(types.Intent{Verb: "skip"})
	case key.Matches(msg, m.keys.Command):
		m.typing = true
		if msg.String() == "/" {
			m.input.SetValue("/")
		} else {
			m.input.SetValue("")
		}
		m.input.CursorEnd()
		return m, textinput.Blink
	case key.Matches(msg, m.keys.Quit):
		return m.submit("quit")
	}
	return m, nil
}

// handleEnter processes the submitted input line.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")
	m.typing = false

	if input == "" {
		return m, nil
	}

	m.history.Push(input)
	m.history.ResetCursor()
	return m.submit(input)
}

// submit runs one command line and redraws the narrative.
func (m Model) submit(input string) (tea.Model, tea.Cmd) {
	quit := m.run(input)
	m.refreshViewport()
	if quit || m.game.Done() {
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

// run executes a meta-command, "again", or a game command. It reports
// whether the program should exit.
func (m *Model) run(input string) bool {
	m.out.input(input)

	if strings.HasPrefix(input, "/") {
		return m.handleMeta(input)
	}

	lower := strings.ToLower(input)
	if lower == "again" || lower == "g" {
		if m.lastCmd == "" {
			m.out.system("Nothing to repeat.")
			return false
		}
		input = m.lastCmd
	} else {
		m.lastCmd = input
	}

	intent := parser.Parse(input)
	if !parser.Known(intent) {
		m.out.add(fmt.Sprintf("I don't understand %q. Type /help for commands.", input))
		return false
	}

	before := m.game.State()
	if before == flow.StateGameplay && intent.Verb != "quit" {
		m.game.Queue(intent)
		return false
	}

	result, err := m.game.Handle(m.ctx, intent)
	if err != nil {
		m.out.system(fmt.Sprintf("Error: %v", err))
		return false
	}
	if result.Outcome == types.OutcomeRejected && len(result.Events) == 0 {
		m.out.add(view.Rejection(before, intent))
	}
	return false
}

// narrate appends one line per event while the level that produced them is
// still live.
func (m Model) narrate(_ context.Context, evts []types.Event) error {
	s := m.level()
	for _, e := range evts {
		if line := view.Narrate(e, s); line != "" {
			m.out.add(line)
		}
		if m.out.trace {
			m.out.add(fmt.Sprintf("[trace] %s entity=%d", e.Type, e.Entity))
		}
	}
	return nil
}

// level returns the level being played, or nil outside gameplay.
func (m Model) level() *state.State {
	if e := m.game.Context().Engine; e != nil && e.State != nil && e.State.Level != nil {
		return e.State
	}
	return nil
}

// refreshViewport sizes the narrative pane under the board, then re-wraps
// and re-styles all raw lines at the current width.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}

	vpHeight := m.height - lipgloss.Height(m.renderBoard()) - 2 // status bar + prompt
	if vpHeight < 1 {
		vpHeight = 1
	}
	m.viewport.Width = m.width
	m.viewport.Height = vpHeight

	width := m.width
	if width < 10 {
		width = 10
	}

	var styled []string
	for _, rl := range m.out.lines {
		if rl.text == "" {
			styled = append(styled, "")
			continue
		}
		wrapped := wordWrap(rl.text, width)
		if rl.isInput {
			styled = append(styled, stylePlayerInput.Render(wrapped))
			continue
		}
		styled = append(styled, renderLineKind(wrapped, rl.kind))
	}

	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

// wordWrap wraps text to fit within the given width, breaking at word
// boundaries.
func wordWrap(text string, width int) string {
	if width <= 0 || len(text) <= width {
		return text
	}

	var result strings.Builder
	lineLen := 0
	for i, word := range strings.Fields(text) {
		wLen := len(word)
		switch {
		case i == 0:
			lineLen = wLen
		case lineLen+1+wLen > width:
			result.WriteString("\n")
			lineLen = wLen
		default:
			result.WriteString(" ")
			lineLen += 1 + wLen
		}
		result.WriteString(word)
	}
	return result.String()
}

// View renders the full TUI layout: board, narrative, status bar, prompt.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	return m.renderBoard() + "\n" + m.viewport.View() + "\n" + m.renderStatusBar() + "\n" + m.renderPrompt()
}

// handleMeta dispatches meta-commands. Returns true if the program should
// exit.
func (m *Model) handleMeta(input string) bool {
	cmd := strings.Fields(input)[0]

	switch cmd {
	case "/quit", "/exit":
		if _, err := m.game.Handle(m.ctx, types.Intent{Verb: "quit"}); err != nil {
			m.out.system(fmt.Sprintf("Quit failed: %v", err))
		}
		m.out.system("Goodbye.")
		return true

	case "/help":
		for _, line := range helpLines() {
			m.out.add(line)
		}

	case "/state":
		m.cmdState()

	case "/trace":
		m.out.trace = !m.out.trace
		if m.out.trace {
			m.out.system("Trace output enabled.")
		} else {
			m.out.system("Trace output disabled.")
		}

	default:
		m.out.system(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}
	return false
}

func helpLines() []string {
	help := []string{
		"System:",
		"  /quit    Exit game",
		"  /help    Show this help",
		"  /state   Debug: dump the level as JSON",
		"  /trace   Toggle event trace output",
		"",
		"During play:",
		"  arrows or w a s d   Move",
		"  r / p / n           Retry, pause, skip (debug only)",
		"  / or :              Open the command line",
		"  q or esc            Quit",
		"",
		"Menus: start, levels, select <n>, back, retry, quit",
		"Navigation: PgUp/PgDn to scroll, Up/Down for command history",
		"",
		"Map:",
	}
	return append(help, view.Legend()...)
}

func (m *Model) cmdState() {
	s := m.level()
	if s == nil {
		m.out.system(fmt.Sprintf("No level loaded (state: %s).", m.game.State()))
		return
	}
	data, err := snapshot.Marshal(s)
	if err != nil {
		m.out.system(fmt.Sprintf("Snapshot failed: %v", err))
		return
	}
	m.out.add(string(data))
}

// keyMap holds the direct gameplay bindings.
type keyMap struct {
	Up, Down, Left, Right key.Binding
	Retry, Pause, Skip    key.Binding
	Command, Quit         key.Binding
	PageUp, PageDown      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("up", "w"), key.WithHelp("↑/w", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "s"), key.WithHelp("↓/s", "down")),
		Left:     key.NewBinding(key.WithKeys("left", "a"), key.WithHelp("←/a", "left")),
		Right:    key.NewBinding(key.WithKeys("right", "d"), key.WithHelp("→/d", "right")),
		Retry:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "retry")),
		Pause:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause")),
		Skip:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "skip")),
		Command:  key.NewBinding(key.WithKeys("/", ":", "enter"), key.WithHelp("/", "command")),
		Quit:     key.NewBinding(key.WithKeys("q", "esc"), key.WithHelp("q", "quit")),
		PageUp:   key.NewBinding(key.WithKeys("pgup")),
		PageDown: key.NewBinding(key.WithKeys("pgdown")),
	}
}

// viewportKeyMap returns a viewport keymap with Up/Down disabled
// (we use those for input history and movement).
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}
