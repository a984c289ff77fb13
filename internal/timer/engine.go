// Package timer implements the pomodoro countdown: a single clock bound to at
// most one pending session, cycling focus and break modes.
package timer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	apperrors "focusflow/internal/errors"
	"focusflow/internal/model"
	"focusflow/internal/notify"
)

// Appender receives every resolved session.
type Appender interface {
	Append(ctx context.Context, session model.Session) error
}

type StateStore interface {
	SaveTimerState(ctx context.Context, state model.TimerState) error
}

type Options struct {
	Clock    Clock
	Ledger   Appender
	Store    StateStore
	Notifier notify.Notifier
	NewID    func() string
}

type Engine struct {
	mu       sync.Mutex
	cfg      model.TimerConfig
	state    model.TimerState
	clock    Clock
	ledger   Appender
	store    StateStore
	notifier notify.Notifier
	newID    func() string
}

// NewEngine restores an engine from a persisted state. Pass
// model.InitialTimerState(cfg) on first run.
func NewEngine(cfg model.TimerConfig, state model.TimerState, opts Options) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidConfig, err)
	}
	if opts.Ledger == nil {
		return nil, fmt.Errorf("timer engine requires a ledger")
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock()
	}
	if opts.NewID == nil {
		opts.NewID = func() string { return ulid.Make().String() }
	}

	if !state.Mode.Valid() {
		state = model.InitialTimerState(cfg)
	}
	if state.Current != nil && !state.Current.Pending() {
		state.Current = nil
	}
	if state.Current == nil {
		state.IsRunning = false
		if state.RemainingSeconds <= 0 {
			state.RemainingSeconds = cfg.DurationFor(state.Mode)
		}
	}

	return &Engine{
		cfg:      cfg,
		state:    state,
		clock:    opts.Clock,
		ledger:   opts.Ledger,
		store:    opts.Store,
		notifier: opts.Notifier,
		newID:    opts.NewID,
	}, nil
}

func (e *Engine) State() model.TimerState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot()
}

func (e *Engine) Config() model.TimerConfig {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg
}

// Current returns the pending session, if any.
func (e *Engine) Current() (model.Session, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.Current == nil {
		return model.Session{}, false
	}
	return *e.state.Current, true
}

// Start begins a session in mode. It fails with ErrConflict while another
// session is pending and leaves that session untouched.
func (e *Engine) Start(ctx context.Context, mode model.SessionMode) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	prev := e.snapshot()
	if err := e.start(mode); err != nil {
		return err
	}
	return e.persistOrRollback(ctx, prev)
}

// PauseOrResume toggles the countdown. Pausing keeps the session pending.
// With no pending session it starts one in the current mode.
func (e *Engine) PauseOrResume(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	prev := e.snapshot()
	if e.state.Current == nil {
		if err := e.start(e.state.Mode); err != nil {
			return err
		}
	} else {
		e.state.IsRunning = !e.state.IsRunning
	}
	return e.persistOrRollback(ctx, prev)
}

// Reset interrupts the pending session, if any, and rewinds the countdown to
// the full duration of the current mode.
func (e *Engine) Reset(ctx context.Context) error {
	resolved, err := e.interruptAndIdle(ctx, "")
	if err != nil {
		return err
	}
	e.notify(resolved)
	return nil
}

// SwitchMode interrupts the pending session, if any, and leaves the engine
// idle in mode.
func (e *Engine) SwitchMode(ctx context.Context, mode model.SessionMode) error {
	if !mode.Valid() {
		return fmt.Errorf("switch mode: invalid mode %q", mode)
	}
	resolved, err := e.interruptAndIdle(ctx, mode)
	if err != nil {
		return err
	}
	e.notify(resolved)
	return nil
}

// UpdateConfig replaces the durations. An idle countdown is rewound to the
// new duration; a pending session keeps its own.
func (e *Engine) UpdateConfig(ctx context.Context, cfg model.TimerConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidConfig, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.cfg = cfg
	if e.state.Current == nil {
		e.state.RemainingSeconds = cfg.DurationFor(e.state.Mode)
	}
	return e.persist(ctx)
}

// Tick advances a running countdown by one second. When the countdown
// reaches zero the pending session is completed, the next mode is selected
// and, if configured, started in the same call. The completed session is
// returned.
func (e *Engine) Tick(ctx context.Context) (*model.Session, error) {
	e.mu.Lock()
	if !e.state.IsRunning || e.state.Current == nil {
		e.mu.Unlock()
		return nil, nil
	}

	if e.state.RemainingSeconds > 1 {
		e.state.RemainingSeconds--
		err := e.persist(ctx)
		e.mu.Unlock()
		return nil, err
	}

	finished := e.resolve(model.OutcomeCompleted)
	if err := e.ledger.Append(ctx, finished); err != nil {
		e.mu.Unlock()
		return nil, fmt.Errorf("record completed session: %w", err)
	}

	next, autoStart := e.nextMode(finished.Mode)
	e.state.Mode = next
	e.state.RemainingSeconds = e.cfg.DurationFor(next)
	e.state.IsRunning = false
	e.state.Current = nil

	if autoStart {
		if err := e.start(next); err != nil {
			e.mu.Unlock()
			return nil, err
		}
	}
	err := e.persist(ctx)
	e.mu.Unlock()

	e.notify(&finished)
	return &finished, err
}

// nextMode applies the cycle rule and increments the focus counter when a
// focus session completes.
func (e *Engine) nextMode(completed model.SessionMode) (model.SessionMode, bool) {
	if completed != model.ModeFocus {
		return model.ModeFocus, e.cfg.AutoStartFocus
	}

	e.state.CompletedFocusCount++
	if e.state.CompletedFocusCount%e.cfg.CyclesBeforeLongBreak == 0 {
		return model.ModeLongBreak, e.cfg.AutoStartBreaks
	}
	return model.ModeShortBreak, e.cfg.AutoStartBreaks
}

func (e *Engine) start(mode model.SessionMode) error {
	if !mode.Valid() {
		return fmt.Errorf("start: invalid mode %q", mode)
	}
	if e.state.Current != nil {
		return fmt.Errorf("start %s: %w", mode, apperrors.ErrConflict)
	}

	duration := e.cfg.DurationFor(mode)
	e.state.Mode = mode
	e.state.RemainingSeconds = duration
	e.state.IsRunning = true
	e.state.Current = &model.Session{
		ID:                     e.newID(),
		Mode:                   mode,
		StartedAt:              e.clock.Now().UTC(),
		PlannedDurationSeconds: duration,
		Outcome:                model.OutcomePending,
		SyncStatus:             model.SyncLocal,
	}
	return nil
}

// interruptAndIdle resolves the pending session as interrupted and leaves
// the engine idle. An empty mode keeps the current one.
func (e *Engine) interruptAndIdle(ctx context.Context, mode model.SessionMode) (*model.Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var resolved *model.Session
	if e.state.Current != nil {
		finished := e.resolve(model.OutcomeInterrupted)
		if err := e.ledger.Append(ctx, finished); err != nil {
			return nil, fmt.Errorf("record interrupted session: %w", err)
		}
		resolved = &finished
	}

	if mode != "" {
		e.state.Mode = mode
	}
	e.state.IsRunning = false
	e.state.Current = nil
	e.state.RemainingSeconds = e.cfg.DurationFor(e.state.Mode)
	return resolved, e.persist(ctx)
}

// resolve returns the pending session closed with outcome. It does not
// clear it from the state.
func (e *Engine) resolve(outcome model.Outcome) model.Session {
	finished := *e.state.Current
	endedAt := e.clock.Now().UTC()
	actual := int(endedAt.Sub(finished.StartedAt).Round(time.Second) / time.Second)
	if actual < 0 {
		actual = 0
	}
	finished.EndedAt = &endedAt
	finished.ActualDurationSeconds = actual
	finished.Outcome = outcome
	return finished
}

func (e *Engine) persist(ctx context.Context) error {
	e.state.UpdatedAt = e.clock.Now().UTC()
	if e.store == nil {
		return nil
	}
	if err := e.store.SaveTimerState(ctx, e.snapshot()); err != nil {
		return fmt.Errorf("persist timer state: %w", err)
	}
	return nil
}

// persistOrRollback saves the state, restoring prev when the save fails so
// the caller's error matches what the engine holds.
func (e *Engine) persistOrRollback(ctx context.Context, prev model.TimerState) error {
	if err := e.persist(ctx); err != nil {
		e.state = prev
		return err
	}
	return nil
}

func (e *Engine) snapshot() model.TimerState {
	state := e.state
	if e.state.Current != nil {
		current := *e.state.Current
		state.Current = &current
	}
	return state
}

func (e *Engine) notify(session *model.Session) {
	if session == nil || e.notifier == nil {
		return
	}
	e.notifier.SessionResolved(*session)
}
