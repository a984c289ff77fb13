package timer

import (
	"context"
	"sync"
	"time"

	"focusflow/internal/model"
)

const tickUnit = time.Second

// Runner drives an Engine from a periodic callback. Each Step applies one
// engine tick per whole second elapsed on the clock since the last applied
// tick, so a late or coalesced callback does not slow the countdown.
type Runner struct {
	engine    *Engine
	clock     Clock
	period    time.Duration
	newTicker func(time.Duration) (<-chan time.Time, func())

	mu   sync.Mutex
	last time.Time

	// OnTick observes the state after every Step that applied ticks.
	OnTick func(state model.TimerState)
	// OnError receives tick failures. Run keeps going after reporting.
	OnError func(err error)
}

func NewRunner(engine *Engine, clock Clock) *Runner {
	if clock == nil {
		clock = SystemClock()
	}
	return &Runner{
		engine:    engine,
		clock:     clock,
		period:    tickUnit,
		newTicker: systemTicker,
		last:      clock.Now(),
	}
}

// Run calls Step on every ticker wake-up until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	ticks, stop := r.newTicker(r.period)
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticks:
			r.Step(ctx)
		}
	}
}

// Sync restarts elapsed-time accounting from now. Call it after the engine
// is started or resumed outside of Step, or when the Runner was created well
// before Run.
func (r *Runner) Sync() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = r.clock.Now()
}

// Step applies the ticks owed since the previous Step and returns the
// sessions completed along the way.
func (r *Runner) Step(ctx context.Context) []model.Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()
	if !r.engine.State().IsRunning {
		r.last = now
		return nil
	}

	steps := ElapsedTicks(r.last, now)
	if steps == 0 {
		return nil
	}
	r.last = r.last.Add(time.Duration(steps) * tickUnit)

	var completed []model.Session
	for i := 0; i < steps; i++ {
		finished, err := r.engine.Tick(ctx)
		if err != nil && r.OnError != nil {
			r.OnError(err)
		}
		// A follow-up session starts at the clock's now, so surplus seconds
		// are not carried into it.
		if finished != nil {
			completed = append(completed, *finished)
			r.last = now
			break
		}
		if !r.engine.State().IsRunning {
			r.last = now
			break
		}
	}
	if r.OnTick != nil {
		r.OnTick(r.engine.State())
	}
	return completed
}

// ElapsedTicks is the number of whole seconds between last and now.
func ElapsedTicks(last, now time.Time) int {
	if !now.After(last) {
		return 0
	}
	return int(now.Sub(last) / tickUnit)
}

func systemTicker(d time.Duration) (<-chan time.Time, func()) {
	ticker := time.NewTicker(d)
	return ticker.C, ticker.Stop
}
