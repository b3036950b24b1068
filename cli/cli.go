// Package cli provides the line-oriented front end: it prints the active
// screen as text, narrates turn events and dispatches meta-commands.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nathoo/moodgrid/engine/parser"
	"github.com/nathoo/moodgrid/engine/snapshot"
	"github.com/nathoo/moodgrid/engine/state"
	"github.com/nathoo/moodgrid/flow"
	"github.com/nathoo/moodgrid/types"
	"github.com/nathoo/moodgrid/view"
)

// CLI handles terminal interaction with the player.
type CLI struct {
	Game      *flow.Game
	In        io.Reader
	Out       io.Writer
	Trace     bool
	EchoInput bool   // echo each input line after the prompt (for script playback)
	lastCmd   string // for "again"/"g" repeat
}

// New creates a CLI wired to the given game.
func New(g *flow.Game) *CLI {
	return &CLI{
		Game: g,
		In:   os.Stdin,
		Out:  os.Stdout,
	}
}

// Run starts the game and loops: prompt, input, dispatch, screen. It
// returns when the game quits or input runs out.
func (c *CLI) Run(ctx context.Context) error {
	unsub := c.Game.Context().Bus.Subscribe(c.narrate)
	defer unsub()

	if err := c.Game.Start(ctx); err != nil {
		return err
	}
	c.printScreen()

	scanner := bufio.NewScanner(c.In)
	for !c.Game.Done() {
		c.print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		// Skip comment lines (for script files).
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		if strings.HasPrefix(input, "/") {
			if c.handleMeta(ctx, input) {
				return nil
			}
			continue
		}

		// "again" / "g" repeats the last game command.
		lower := strings.ToLower(input)
		if lower == "again" || lower == "g" {
			if c.lastCmd == "" {
				c.printLine("Nothing to repeat.")
				continue
			}
			input = c.lastCmd
		} else {
			c.lastCmd = input
		}

		intent := parser.Parse(input)
		if !parser.Known(intent) {
			c.printLine(fmt.Sprintf("I don't understand %q. Type /help for commands.", input))
			continue
		}

		before := c.Game.State()
		result, err := c.Game.Handle(ctx, intent)
		if err != nil {
			return err
		}
		if c.Trace {
			c.printTrace(result)
		}
		if result.Outcome == types.OutcomeRejected && len(result.Events) == 0 {
			c.printLine(view.Rejection(before, intent))
			continue
		}
		c.printScreen()
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	return nil
}

// narrate prints one line per event while the level state that produced
// them is still live.
func (c *CLI) narrate(_ context.Context, evts []types.Event) error {
	s := c.currentState()
	for _, e := range evts {
		if line := view.Narrate(e, s); line != "" {
			c.printLine(line)
		}
	}
	return nil
}

// currentState returns the level being played, or nil outside gameplay.
func (c *CLI) currentState() *state.State {
	if e := c.Game.Context().Engine; e != nil && e.State != nil && e.State.Level != nil {
		return e.State
	}
	return nil
}

// handleMeta dispatches meta-commands. Returns true if the game should exit.
func (c *CLI) handleMeta(ctx context.Context, input string) bool {
	cmd := strings.Fields(input)[0]

	switch cmd {
	case "/quit", "/exit":
		if _, err := c.Game.Handle(ctx, types.Intent{Verb: "quit"}); err != nil {
			c.printSystem(fmt.Sprintf("Quit failed: %v", err))
		}
		c.printSystem("Goodbye.")
		return true

	case "/help":
		c.cmdHelp()

	case "/state":
		c.cmdState()

	case "/trace":
		c.Trace = !c.Trace
		if c.Trace {
			c.printSystem("Trace output enabled.")
		} else {
			c.printSystem("Trace output disabled.")
		}

	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}

	return false
}

func (c *CLI) cmdHelp() {
	help := []string{
		"System:",
		"  /quit         Exit game",
		"  /help         Show this help",
		"  /state        Debug: dump the level as JSON",
		"  /trace        Toggle debug trace output",
		"",
		"Game commands:",
		"  w a s d / up down left right   Move",
		"  retry (r)                      Restart the level",
		"  pause (p)                      Pause or resume",
		"  start / levels / select <n>    Menus",
		"  back                           Return to the title",
		"  quit (q)                       Leave",
		"  again (g)                      Repeat your last command",
		"",
		"Map:",
	}
	for _, line := range append(help, view.Legend()...) {
		c.printLine(line)
	}
}

func (c *CLI) cmdState() {
	s := c.currentState()
	if s == nil {
		c.printSystem(fmt.Sprintf("No level loaded (state: %s).", c.Game.State()))
		return
	}
	data, err := snapshot.Marshal(s)
	if err != nil {
		c.printSystem(fmt.Sprintf("Snapshot failed: %v", err))
		return
	}
	c.printLine(string(data))
}

func (c *CLI) printTrace(result types.Result) {
	if len(result.Effects) > 0 {
		c.printSystem(fmt.Sprintf("[trace] Effects: %d", len(result.Effects)))
		for _, e := range result.Effects {
			c.printSystem(fmt.Sprintf("[trace]   %s actor=%d target=%d", e.Type, e.Actor, e.Target))
		}
	}
	if len(result.Events) > 0 {
		c.printSystem(fmt.Sprintf("[trace] Events: %d", len(result.Events)))
		for _, e := range result.Events {
			c.printSystem(fmt.Sprintf("[trace]   %s entity=%d", e.Type, e.Entity))
		}
	}
}

func (c *CLI) printScreen() {
	for _, line := range view.Screen(c.Game) {
		c.printLine(line)
	}
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}
