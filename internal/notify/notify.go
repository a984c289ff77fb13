package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"

	"focusflow/internal/model"
)

// Notifier observes sessions as the timer resolves them.
type Notifier interface {
	SessionResolved(session model.Session)
}

// Func adapts a plain function to Notifier.
type Func func(session model.Session)

func (f Func) SessionResolved(session model.Session) {
	f(session)
}

// Multi fans one event out to every notifier in order.
type Multi []Notifier

func (m Multi) SessionResolved(session model.Session) {
	for _, n := range m {
		if n != nil {
			n.SessionResolved(session)
		}
	}
}

// Console prints a one-line summary of each resolved session.
type Console struct {
	mu  sync.Mutex
	out io.Writer
}

func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

func (c *Console) SessionResolved(session model.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, Describe(session))
}

// Describe renders a resolved session the way the console prints it.
func Describe(session model.Session) string {
	label := session.Mode.Label()
	switch session.Outcome {
	case model.OutcomeCompleted:
		return fmt.Sprintf("%s %s finished (%s)",
			color.GreenString("✓"), label, FormatSeconds(session.ActualDurationSeconds))
	case model.OutcomeInterrupted:
		return fmt.Sprintf("%s %s interrupted after %s",
			color.YellowString("⊘"), label, FormatSeconds(session.ActualDurationSeconds))
	default:
		return fmt.Sprintf("%s %s running", color.CyanString("▶"), label)
	}
}

// FormatSeconds renders a duration as mm:ss, or h:mm:ss past an hour.
func FormatSeconds(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h, m, s := seconds/3600, (seconds%3600)/60, seconds%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
