// Package tui is the interactive terminal front-end of the timer.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"focusflow/internal/model"
	"focusflow/internal/notify"
	"focusflow/internal/reconcile"
	"focusflow/internal/timer"
)

const refreshInterval = 250 * time.Millisecond

// Syncer is the part of the reconciler the UI reports on.
type Syncer interface {
	Status() reconcile.Status
	Trigger()
}

type tickMsg time.Time

type view struct {
	ctx    context.Context
	engine *timer.Engine
	runner *timer.Runner
	syncer Syncer
	bar    progress.Model

	message string
	err     error
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("63")).
			Padding(0, 1)
	clockStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

func newView(ctx context.Context, engine *timer.Engine, clock timer.Clock, syncer Syncer) view {
	return view{
		ctx:    ctx,
		engine: engine,
		runner: timer.NewRunner(engine, clock),
		syncer: syncer,
		bar:    progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
}

// Run blocks until the user quits. syncer may be nil.
func Run(ctx context.Context, engine *timer.Engine, clock timer.Clock, syncer Syncer) error {
	program := tea.NewProgram(newView(ctx, engine, clock, syncer), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

func tickCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m view) Init() tea.Cmd {
	return tickCmd()
}

func (m view) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		for _, session := range m.runner.Step(m.ctx) {
			m.message = notify.Describe(session)
		}
		return m, tickCmd()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m view) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var err error
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ", "p":
		err = m.engine.PauseOrResume(m.ctx)
	case "s":
		err = m.engine.Start(m.ctx, m.engine.State().Mode)
	case "r":
		err = m.engine.Reset(m.ctx)
	case "f":
		err = m.engine.SwitchMode(m.ctx, model.ModeFocus)
	case "b":
		err = m.engine.SwitchMode(m.ctx, model.ModeShortBreak)
	case "l":
		err = m.engine.SwitchMode(m.ctx, model.ModeLongBreak)
	case "y":
		if m.syncer != nil {
			m.syncer.Trigger()
			m.message = "sync requested"
		}
	default:
		return m, nil
	}
	m.runner.Sync()
	m.err = err
	return m, nil
}

func (m view) View() string {
	state := m.engine.State()
	cfg := m.engine.Config()

	var b strings.Builder
	b.WriteString(titleStyle.Render("focusflow · "+state.Mode.Label()) + "\n\n")
	b.WriteString(clockStyle.Render(notify.FormatSeconds(state.RemainingSeconds)) + "  ")
	b.WriteString(runLabel(state) + "\n")
	b.WriteString(m.bar.ViewAs(elapsedFraction(state, cfg)) + "\n\n")

	b.WriteString(fmt.Sprintf("Focus sessions this cycle: %d/%d\n",
		cycleProgress(state.CompletedFocusCount, cfg.CyclesBeforeLongBreak), cfg.CyclesBeforeLongBreak))
	if line := m.syncLine(); line != "" {
		b.WriteString(line + "\n")
	}
	if m.message != "" {
		b.WriteString(m.message + "\n")
	}
	if m.err != nil {
		b.WriteString(errStyle.Render("error: "+m.err.Error()) + "\n")
	}

	b.WriteString("\n" + dimStyle.Render("space pause/resume · s start · r reset · f/b/l mode · y sync · q quit"))
	return b.String()
}

func (m view) syncLine() string {
	if m.syncer == nil {
		return ""
	}
	status := m.syncer.Status()
	switch {
	case status.LastError != nil:
		return errStyle.Render("sync failed: " + status.LastError.Error())
	case status.LastResult != nil:
		return dimStyle.Render(fmt.Sprintf("synced %s · %d completed focus sessions",
			status.LastResult.FinishedAt.Local().Format("15:04:05"), status.LastResult.CompletedFocusCount))
	case !status.LastAttempt.IsZero():
		return dimStyle.Render("not signed in, sync skipped")
	}
	return ""
}

func runLabel(state model.TimerState) string {
	switch {
	case state.IsRunning:
		return "running"
	case state.Current != nil:
		return "paused"
	default:
		return "idle"
	}
}

func elapsedFraction(state model.TimerState, cfg model.TimerConfig) float64 {
	total := cfg.DurationFor(state.Mode)
	if state.Current != nil {
		total = state.Current.PlannedDurationSeconds
	}
	if total <= 0 {
		return 0
	}
	done := float64(total-state.RemainingSeconds) / float64(total)
	if done < 0 {
		return 0
	}
	if done > 1 {
		return 1
	}
	return done
}

// cycleProgress is the position inside the current long-break cycle.
func cycleProgress(completed, cycles int) int {
	if cycles <= 0 {
		return completed
	}
	return completed % cycles
}
