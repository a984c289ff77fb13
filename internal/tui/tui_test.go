package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"focusflow/internal/model"
	"focusflow/internal/reconcile"
	"focusflow/internal/timer"
)

type discardLedger struct {
	sessions []model.Session
}

func (l *discardLedger) Append(_ context.Context, session model.Session) error {
	l.sessions = append(l.sessions, session)
	return nil
}

type stubSyncer struct {
	status    reconcile.Status
	triggered int
}

func (s *stubSyncer) Status() reconcile.Status { return s.status }
func (s *stubSyncer) Trigger()                 { s.triggered++ }

func testView(t *testing.T) (view, *timer.ManualClock, *discardLedger, *stubSyncer) {
	t.Helper()
	cfg := model.TimerConfig{
		FocusSeconds:          3,
		ShortBreakSeconds:     2,
		LongBreakSeconds:      4,
		CyclesBeforeLongBreak: 4,
	}
	clock := timer.NewManualClock(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	ledger := &discardLedger{}
	engine, err := timer.NewEngine(cfg, model.InitialTimerState(cfg), timer.Options{Clock: clock, Ledger: ledger})
	require.NoError(t, err)

	syncer := &stubSyncer{}
	return newView(context.Background(), engine, clock, syncer), clock, ledger, syncer
}

func press(m view, key string) view {
	var msg tea.KeyMsg
	if key == " " {
		msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}
	} else {
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	next, _ := m.Update(msg)
	return next.(view)
}

func TestKeysDriveEngine(t *testing.T) {
	m, clock, ledger, _ := testView(t)

	m = press(m, " ")
	assert.True(t, m.engine.State().IsRunning)
	assert.Contains(t, m.View(), "running")

	for i := 0; i < 3; i++ {
		clock.Advance(time.Second)
		next, cmd := m.Update(tickMsg(clock.Now()))
		assert.NotNil(t, cmd, "ticking keeps scheduling itself")
		m = next.(view)
	}
	require.Len(t, ledger.sessions, 1)
	assert.Equal(t, model.OutcomeCompleted, ledger.sessions[0].Outcome)
	assert.Contains(t, m.message, "finished")
	assert.Equal(t, model.ModeShortBreak, m.engine.State().Mode)

	m = press(m, "f")
	assert.Equal(t, model.ModeFocus, m.engine.State().Mode)
	assert.Contains(t, m.View(), "idle")

	m = press(m, "s")
	m = press(m, "s")
	assert.Error(t, m.err, "starting twice conflicts")

	m = press(m, "r")
	assert.NoError(t, m.err)
	require.Len(t, ledger.sessions, 2)
	assert.Equal(t, model.OutcomeInterrupted, ledger.sessions[1].Outcome)
}

func TestSyncLine(t *testing.T) {
	m, _, _, syncer := testView(t)
	assert.NotContains(t, m.View(), "synced")

	m = press(m, "y")
	assert.Equal(t, 1, syncer.triggered)

	syncer.status = reconcile.Status{
		LastAttempt: time.Now(),
		LastResult:  &reconcile.Result{CompletedFocusCount: 7, FinishedAt: time.Now()},
	}
	assert.Contains(t, m.View(), "7 completed focus sessions")

	syncer.status.LastError = errors.New("connection refused")
	assert.Contains(t, m.View(), "sync failed: connection refused")
}

func TestQuit(t *testing.T) {
	m, _, _, _ := testView(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestElapsedFraction(t *testing.T) {
	cfg := model.DefaultTimerConfig()
	state := model.InitialTimerState(cfg)
	assert.Zero(t, elapsedFraction(state, cfg))

	state.RemainingSeconds = cfg.FocusSeconds / 2
	assert.InDelta(t, 0.5, elapsedFraction(state, cfg), 0.01)
}
