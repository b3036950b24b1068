package flow

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/nathoo/moodgrid/engine"
	"github.com/nathoo/moodgrid/engine/events"
	"github.com/nathoo/moodgrid/engine/rules"
	"github.com/nathoo/moodgrid/engine/state"
	"github.com/nathoo/moodgrid/types"
)

// ErrNoLevels is returned when the game defines no playable level.
var ErrNoLevels = errors.New("flow: game has no levels")

// Context is the data shared by every state handler. It replaces any global
// game singleton: the runner builds one and hands it to the states.
type Context struct {
	Defs  *state.Defs
	Rules rules.Rules
	Debug bool
	Log   logrus.FieldLogger
	Bus   *events.Bus

	// StartLevel is where Title starts play.
	StartLevel int

	// LevelIndex is the play-order index of the level to load or being played.
	LevelIndex int

	// Engine is non-nil only between LoadLevel and the end of Gameplay.
	Engine *engine.Engine

	// Quit is set once the Quit state has been entered.
	Quit bool

	machine *Machine
	pending []types.Intent
}

// fire requests a transition on the owning machine.
func (c *Context) fire(ctx context.Context, t Trigger) error {
	_, err := c.machine.Fire(ctx, t)
	return err
}

// publish sends evts on the bus, ignoring an empty batch.
func (c *Context) publish(ctx context.Context, evts ...types.Event) error {
	return c.Bus.Publish(ctx, evts)
}

// Queue stores an intent for the active state to consume on its next tick.
func (c *Context) Queue(intent types.Intent) {
	c.pending = append(c.pending, intent)
}

func (c *Context) next() (types.Intent, bool) {
	if len(c.pending) == 0 {
		return types.Intent{}, false
	}
	in := c.pending[0]
	c.pending = c.pending[1:]
	return in, true
}

// LastLevel reports whether LevelIndex is the final level in play order.
func (c *Context) LastLevel() bool {
	return c.LevelIndex >= c.Defs.LevelCount()-1
}
