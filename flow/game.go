package flow

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/nathoo/moodgrid/engine/events"
	"github.com/nathoo/moodgrid/engine/rules"
	"github.com/nathoo/moodgrid/engine/state"
	"github.com/nathoo/moodgrid/types"
)

// Game is the top-level runner: a Context, its state handlers and the
// machine that switches between them.
type Game struct {
	ctx      *Context
	machine  *Machine
	handlers map[StateID]Handler
}

// Option configures a Game.
type Option func(*Context)

// WithRules sets the puzzle rule set.
func WithRules(r rules.Rules) Option {
	return func(c *Context) { c.Rules = r }
}

// WithDebug enables debug-only commands such as skipping a level.
func WithDebug(on bool) Option {
	return func(c *Context) { c.Debug = on }
}

// WithLogger sets the logger handed to every state and level.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Context) { c.Log = l }
}

// WithBus publishes turn events on b.
func WithBus(b *events.Bus) Option {
	return func(c *Context) { c.Bus = b }
}

// WithStartLevel sets the play-order index Title starts from.
func WithStartLevel(i int) Option {
	return func(c *Context) { c.StartLevel = i }
}

// NewGame wires the default transition table to the game's states.
func NewGame(defs *state.Defs, opts ...Option) (*Game, error) {
	c := &Context{
		Defs:  defs,
		Rules: rules.Default(),
		Bus:   events.NewBus(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.Log == nil {
		c.Log = logrus.StandardLogger()
	}
	if n := defs.LevelCount(); n > 0 && (c.StartLevel < 0 || c.StartLevel >= n) {
		return nil, fmt.Errorf("start level %d out of range (%d levels)", c.StartLevel, n)
	}

	b := base{c: c}
	handlers := map[StateID]Handler{
		StateInit:        &initState{b},
		StateTitle:       &titleState{b},
		StateLevelSelect: &levelSelectState{b},
		StateLoadLevel:   &loadLevelState{b},
		StateGameplay:    &gameplayState{base: b},
		StateVictory:     &victoryState{b},
		StateDefeat:      &defeatState{b},
		StateQuit:        &quitState{b},
	}
	m, err := New(DefaultTable(), handlers, c.Log)
	if err != nil {
		return nil, err
	}
	c.machine = m
	return &Game{ctx: c, machine: m, handlers: handlers}, nil
}

// Start enters Init, which settles on the title screen.
func (g *Game) Start(ctx context.Context) error {
	return g.machine.Start(ctx)
}

// Handle dispatches one intent to the active state. "quit" is understood
// everywhere the table allows it.
func (g *Game) Handle(ctx context.Context, intent types.Intent) (types.Result, error) {
	cur := g.machine.Current()
	if intent.Verb == "quit" {
		if _, ok := g.machine.table.Permits(cur, TriggerQuit); !ok {
			return rejected(), nil
		}
		_, err := g.machine.Fire(ctx, TriggerQuit)
		return accepted(), err
	}
	if h, ok := g.handlers[cur].(InputHandler); ok {
		return h.Handle(ctx, intent)
	}
	return rejected(), nil
}

// Queue defers an intent to the next Tick.
func (g *Game) Queue(intent types.Intent) { g.ctx.Queue(intent) }

// Tick forwards a frame to the active state.
func (g *Game) Tick(ctx context.Context) { g.machine.Tick(ctx) }

// FixedTick forwards a fixed-rate update to the active state.
func (g *Game) FixedTick(ctx context.Context) { g.machine.FixedTick(ctx) }

// State returns the active state.
func (g *Game) State() StateID { return g.machine.Current() }

// OnTransition registers a transition listener.
func (g *Game) OnTransition(fn func(from, to StateID)) { g.machine.OnTransition(fn) }

// Context exposes the shared game data to presentation code.
func (g *Game) Context() *Context { return g.ctx }

// Done reports whether the game has reached Quit.
func (g *Game) Done() bool { return g.ctx.Quit }
