package timer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"focusflow/internal/model"
)

func TestElapsedTicks(t *testing.T) {
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		now  time.Time
		want int
	}{
		{"same instant", base, 0},
		{"clock went back", base.Add(-time.Second), 0},
		{"under a second", base.Add(999 * time.Millisecond), 0},
		{"exactly one", base.Add(time.Second), 1},
		{"late wake-up", base.Add(3*time.Second + 400*time.Millisecond), 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ElapsedTicks(base, tc.now))
		})
	}
}

func TestRunnerStepCatchesUp(t *testing.T) {
	f := newFixture(t, shortConfig())
	ctx := context.Background()
	runner := NewRunner(f.engine, f.clock)

	require.NoError(t, f.engine.Start(ctx, model.ModeFocus))
	runner.Sync()

	f.clock.Advance(1500 * time.Millisecond)
	assert.Empty(t, runner.Step(ctx))
	assert.Equal(t, 4, f.engine.State().RemainingSeconds)

	// The half second carried over counts toward the next tick.
	f.clock.Advance(500 * time.Millisecond)
	runner.Step(ctx)
	assert.Equal(t, 3, f.engine.State().RemainingSeconds)

	f.clock.Advance(10 * time.Second)
	completed := runner.Step(ctx)
	require.Len(t, completed, 1)
	assert.Equal(t, model.OutcomeCompleted, completed[0].Outcome)

	// The auto-started break begins from the completion, not from the
	// surplus seconds of the late wake-up.
	state := f.engine.State()
	assert.Equal(t, model.ModeShortBreak, state.Mode)
	assert.True(t, state.IsRunning)
	assert.Equal(t, 2, state.RemainingSeconds)
}

func TestRunnerStepIgnoresPausedTime(t *testing.T) {
	f := newFixture(t, shortConfig())
	ctx := context.Background()
	runner := NewRunner(f.engine, f.clock)

	require.NoError(t, f.engine.Start(ctx, model.ModeFocus))
	require.NoError(t, f.engine.PauseOrResume(ctx))

	f.clock.Advance(time.Minute)
	runner.Step(ctx)

	require.NoError(t, f.engine.PauseOrResume(ctx))
	f.clock.Advance(time.Second)
	runner.Step(ctx)
	assert.Equal(t, 4, f.engine.State().RemainingSeconds)
}

func TestRunnerRunStopsOnCancel(t *testing.T) {
	f := newFixture(t, shortConfig())
	ticks := make(chan time.Time)
	stopped := false

	runner := NewRunner(f.engine, f.clock)
	runner.newTicker = func(time.Duration) (<-chan time.Time, func()) {
		return ticks, func() { stopped = true }
	}
	observed := make(chan int, 4)
	runner.OnTick = func(state model.TimerState) {
		observed <- state.RemainingSeconds
	}

	require.NoError(t, f.engine.Start(context.Background(), model.ModeFocus))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runner.Run(ctx) }()

	f.clock.Advance(time.Second)
	ticks <- f.clock.Now()
	assert.Equal(t, 4, <-observed)

	f.clock.Advance(2 * time.Second)
	ticks <- f.clock.Now()
	assert.Equal(t, 2, <-observed)
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not stop")
	}
	assert.True(t, stopped)
}
