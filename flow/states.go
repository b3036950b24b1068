package flow

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/nathoo/moodgrid/engine"
	"github.com/nathoo/moodgrid/engine/events"
	"github.com/nathoo/moodgrid/engine/state"
	"github.com/nathoo/moodgrid/types"
)

// InputHandler is implemented by states that react to player intents.
type InputHandler interface {
	Handle(ctx context.Context, intent types.Intent) (types.Result, error)
}

type base struct{ c *Context }

func (base) Enter(context.Context) error { return nil }
func (base) Exit(context.Context) error  { return nil }

func rejected() types.Result { return types.Result{Outcome: types.OutcomeRejected} }
func accepted() types.Result { return types.Result{Outcome: types.OutcomeContinue} }

// Init checks there is something to play and moves on to the title.
type initState struct{ base }

func (s *initState) Enter(ctx context.Context) error {
	if s.c.Defs.LevelCount() == 0 {
		return ErrNoLevels
	}
	return s.c.fire(ctx, TriggerDone)
}

type titleState struct{ base }

func (s *titleState) Enter(context.Context) error {
	s.c.LevelIndex = s.c.StartLevel
	return nil
}

func (s *titleState) Handle(ctx context.Context, in types.Intent) (types.Result, error) {
	switch in.Verb {
	case "start":
		return accepted(), s.c.fire(ctx, TriggerLevelSelected)
	case "levels":
		return accepted(), s.c.fire(ctx, TriggerDone)
	}
	return rejected(), nil
}

type levelSelectState struct{ base }

func (s *levelSelectState) Handle(ctx context.Context, in types.Intent) (types.Result, error) {
	switch in.Verb {
	case "select":
		if in.Arg < 1 || in.Arg > s.c.Defs.LevelCount() {
			return rejected(), nil
		}
		s.c.LevelIndex = in.Arg - 1
		return accepted(), s.c.fire(ctx, TriggerLevelSelected)
	case "back":
		return accepted(), s.c.fire(ctx, TriggerDone)
	}
	return rejected(), nil
}

// LoadLevel builds a fresh level state and engine, then hands over to
// Gameplay.
type loadLevelState struct{ base }

func (s *loadLevelState) Enter(ctx context.Context) error {
	c := s.c
	st, err := state.NewLevel(c.Defs, c.LevelIndex, c.Log)
	if err != nil {
		return err
	}
	c.Engine = engine.New(st,
		engine.WithRules(c.Rules),
		engine.WithBus(c.Bus),
		engine.WithLogger(c.Log.WithField("level", st.Level.ID)),
	)
	return c.fire(ctx, TriggerDone)
}

// Gameplay owns the level for as long as it is active. Leaving it cancels
// the level context and tears the level down.
type gameplayState struct {
	base
	levelCtx context.Context
	cancel   context.CancelFunc
	unsub    func()
}

func (s *gameplayState) Enter(ctx context.Context) error {
	s.levelCtx, s.cancel = context.WithCancel(ctx)
	log := s.c.Log
	s.unsub = s.c.Bus.Subscribe(func(_ context.Context, evts []types.Event) error {
		for _, ev := range evts {
			log.WithFields(logrus.Fields{
				"event":  ev.Type,
				"entity": ev.Entity,
			}).Debug("turn event")
		}
		return nil
	})
	return s.c.Engine.Start(s.levelCtx)
}

func (s *gameplayState) Exit(context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}
	if s.unsub != nil {
		s.unsub()
	}
	if s.c.Engine != nil {
		s.c.Engine.State.Teardown()
		s.c.Engine = nil
	}
	s.c.pending = nil
	return nil
}

func (s *gameplayState) Handle(ctx context.Context, in types.Intent) (types.Result, error) {
	c := s.c
	switch in.Verb {
	case "move":
		// Settle even when a subscriber fails.
		res, err := c.Engine.Step(s.levelCtx, in.Dir)
		return res, errors.Join(err, s.settle(ctx, res))

	case "retry":
		p := c.Engine.State.Player()
		if err := c.publish(s.levelCtx, types.Event{Type: events.LevelRetryRequested, Entity: p.ID}); err != nil {
			return rejected(), err
		}
		return types.Result{Outcome: types.OutcomeRetry}, c.fire(ctx, TriggerRetry)

	case "pause":
		paused := c.Engine.TogglePause()
		c.Log.WithField("paused", paused).Info("pause toggled")
		return accepted(), nil

	case "skip":
		if !c.Debug {
			return rejected(), nil
		}
		return types.Result{Outcome: types.OutcomeExit}, s.advance(ctx)
	}
	return rejected(), nil
}

// Tick consumes one queued intent per frame.
func (s *gameplayState) Tick(ctx context.Context) {
	in, ok := s.c.next()
	if !ok {
		return
	}
	if _, err := s.Handle(ctx, in); err != nil {
		s.c.Log.WithError(err).WithField("verb", in.Verb).Error("queued intent failed")
	}
}

func (s *gameplayState) settle(ctx context.Context, res types.Result) error {
	c := s.c
	switch res.Outcome {
	case types.OutcomeExit:
		err := c.publish(s.levelCtx, types.Event{Type: events.LevelComplete})
		return errors.Join(err, s.advance(ctx))
	case types.OutcomeRetry:
		if c.Rules.RetryOnDeath {
			return c.fire(ctx, TriggerRetry)
		}
		return c.fire(ctx, TriggerLost)
	}
	return nil
}

// advance moves to the next level, or to Victory past the last one.
func (s *gameplayState) advance(ctx context.Context) error {
	c := s.c
	c.LevelIndex++
	if c.LevelIndex >= c.Defs.LevelCount() {
		return c.fire(ctx, TriggerWon)
	}
	return c.fire(ctx, TriggerNextLevel)
}

type victoryState struct{ base }

func (s *victoryState) Enter(context.Context) error {
	s.c.Log.WithField("levels", s.c.Defs.LevelCount()).Info("all levels complete")
	return nil
}

func (s *victoryState) Handle(ctx context.Context, in types.Intent) (types.Result, error) {
	switch in.Verb {
	case "retry", "start":
		s.c.LevelIndex = 0
		return accepted(), s.c.fire(ctx, TriggerRetry)
	case "back":
		return accepted(), s.c.fire(ctx, TriggerDone)
	}
	return rejected(), nil
}

type defeatState struct{ base }

func (s *defeatState) Handle(ctx context.Context, in types.Intent) (types.Result, error) {
	switch in.Verb {
	case "retry", "start":
		return accepted(), s.c.fire(ctx, TriggerRetry)
	case "back":
		return accepted(), s.c.fire(ctx, TriggerDone)
	}
	return rejected(), nil
}

type quitState struct{ base }

func (s *quitState) Enter(context.Context) error {
	s.c.Quit = true
	return nil
}
