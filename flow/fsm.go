// Package flow sequences the game's screens and phases with an explicit
// transition table, and runs the handler of whichever state is active.
package flow

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// StateID names a game-flow state.
type StateID int

const (
	StateInit StateID = iota
	StateTitle
	StateLevelSelect
	StateLoadLevel
	StateGameplay
	StateVictory
	StateDefeat
	StateQuit
)

var stateNames = [...]string{"init", "title", "level_select", "load_level", "gameplay", "victory", "defeat", "quit"}

func (s StateID) String() string {
	if int(s) < len(stateNames) && s >= 0 {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Trigger is an input to the state machine.
type Trigger int

const (
	TriggerDone Trigger = iota
	TriggerWon
	TriggerLost
	TriggerRetry
	TriggerNextLevel
	TriggerLevelSelected
	TriggerQuit
)

var triggerNames = [...]string{"done", "won", "lost", "retry", "next_level", "level_selected", "quit"}

func (t Trigger) String() string {
	if int(t) < len(triggerNames) && t >= 0 {
		return triggerNames[t]
	}
	return fmt.Sprintf("trigger(%d)", int(t))
}

// Table maps (from, trigger) to the destination state.
type Table map[StateID]map[Trigger]StateID

// DefaultTable returns the game's transition table.
func DefaultTable() Table {
	return Table{
		StateInit: {TriggerDone: StateTitle},
		StateTitle: {
			TriggerLevelSelected: StateLoadLevel,
			TriggerDone:          StateLevelSelect,
			TriggerQuit:          StateQuit,
		},
		StateLevelSelect: {
			TriggerLevelSelected: StateLoadLevel,
			TriggerDone:          StateTitle,
			TriggerQuit:          StateQuit,
		},
		StateLoadLevel: {TriggerDone: StateGameplay},
		StateGameplay: {
			TriggerWon:       StateVictory,
			TriggerLost:      StateDefeat,
			TriggerRetry:     StateLoadLevel,
			TriggerNextLevel: StateLoadLevel,
			TriggerQuit:      StateQuit,
		},
		StateVictory: {
			TriggerRetry: StateLoadLevel,
			TriggerDone:  StateTitle,
			TriggerQuit:  StateQuit,
		},
		StateDefeat: {
			TriggerRetry: StateLoadLevel,
			TriggerDone:  StateTitle,
			TriggerQuit:  StateQuit,
		},
	}
}

// Permits reports whether trigger t leaves state s, and where to.
func (tb Table) Permits(s StateID, t Trigger) (StateID, bool) {
	to, ok := tb[s][t]
	return to, ok
}

// Handler is the behaviour of one state. Enter and Exit may block; the
// machine waits for them before delivering ticks to the new state.
type Handler interface {
	Enter(ctx context.Context) error
	Exit(ctx context.Context) error
}

// Ticker is implemented by handlers that want per-frame updates.
type Ticker interface {
	Tick(ctx context.Context)
}

// FixedTicker is implemented by handlers that want fixed-rate updates.
type FixedTicker interface {
	FixedTick(ctx context.Context)
}

// ErrMissingHandler is returned when a transition reaches a state with no
// registered handler.
var ErrMissingHandler = errors.New("flow: no handler for state")

// Machine runs one state at a time.
type Machine struct {
	table    Table
	handlers map[StateID]Handler
	log      logrus.FieldLogger

	current    StateID
	started    bool
	transiting bool
	queue      []Trigger
	listeners  []func(from, to StateID)
}

// New builds a machine. Every state reachable from StateInit through the
// table must have a handler.
func New(table Table, handlers map[StateID]Handler, log logrus.FieldLogger) (*Machine, error) {
	if _, ok := handlers[StateInit]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingHandler, StateInit)
	}
	seen := map[StateID]bool{StateInit: true}
	work := []StateID{StateInit}
	for len(work) > 0 {
		s := work[0]
		work = work[1:]
		for _, to := range table[s] {
			if seen[to] {
				continue
			}
			if _, ok := handlers[to]; !ok {
				return nil, fmt.Errorf("%w: %s (reachable from %s)", ErrMissingHandler, to, s)
			}
			seen[to] = true
			work = append(work, to)
		}
	}
	return &Machine{table: table, handlers: handlers, log: log, current: StateInit}, nil
}

// OnTransition registers fn to be called after every completed transition.
func (m *Machine) OnTransition(fn func(from, to StateID)) {
	m.listeners = append(m.listeners, fn)
}

// Current returns the active state.
func (m *Machine) Current() StateID {
	return m.current
}

// Start enters the initial state. Triggers fired from its Enter run once it
// returns.
func (m *Machine) Start(ctx context.Context) error {
	if m.started {
		return errors.New("flow: machine already started")
	}
	m.started = true
	m.transiting = true
	err := m.handlers[StateInit].Enter(ctx)
	m.transiting = false
	if err != nil {
		return fmt.Errorf("enter %s: %w", StateInit, err)
	}
	return m.drain(ctx)
}

// Fire requests a transition and reports whether it ran. A trigger the
// active state does not permit is logged and ignored. Calls made while a
// transition is in progress are queued and run, in order, once it completes;
// they report false since the table is consulted only when they run.
func (m *Machine) Fire(ctx context.Context, t Trigger) (bool, error) {
	if m.transiting {
		m.queue = append(m.queue, t)
		return false, nil
	}
	ok, err := m.transition(ctx, t)
	if err != nil {
		m.queue = nil
		return false, err
	}
	if err := m.drain(ctx); err != nil {
		return ok, err
	}
	return ok, nil
}

func (m *Machine) drain(ctx context.Context) error {
	for len(m.queue) > 0 {
		t := m.queue[0]
		m.queue = m.queue[1:]
		if _, err := m.transition(ctx, t); err != nil {
			m.queue = nil
			return err
		}
	}
	return nil
}

func (m *Machine) transition(ctx context.Context, t Trigger) (bool, error) {
	from := m.current
	to, ok := m.table.Permits(from, t)
	if !ok {
		m.log.WithFields(logrus.Fields{
			"state":   from.String(),
			"trigger": t.String(),
		}).Warn("trigger not permitted, ignored")
		return false, nil
	}
	next, ok := m.handlers[to]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrMissingHandler, to)
	}

	m.transiting = true
	defer func() { m.transiting = false }()

	if err := m.handlers[from].Exit(ctx); err != nil {
		return false, fmt.Errorf("exit %s: %w", from, err)
	}
	m.current = to
	if err := next.Enter(ctx); err != nil {
		return false, fmt.Errorf("enter %s: %w", to, err)
	}

	m.log.WithFields(logrus.Fields{
		"from":    from.String(),
		"to":      to.String(),
		"trigger": t.String(),
	}).Debug("transition")
	for _, fn := range m.listeners {
		fn(from, to)
	}
	return true, nil
}

// Tick forwards a frame update to the active state.
func (m *Machine) Tick(ctx context.Context) {
	if m.transiting || !m.started {
		return
	}
	if tk, ok := m.handlers[m.current].(Ticker); ok {
		tk.Tick(ctx)
	}
}

// FixedTick forwards a fixed-rate update to the active state.
func (m *Machine) FixedTick(ctx context.Context) {
	if m.transiting || !m.started {
		return
	}
	if tk, ok := m.handlers[m.current].(FixedTicker); ok {
		tk.FixedTick(ctx)
	}
}
