package model

import (
	"fmt"
	"time"
)

type SessionMode string

const (
	ModeFocus      SessionMode = "focus"
	ModeShortBreak SessionMode = "short_break"
	ModeLongBreak  SessionMode = "long_break"
)

func (m SessionMode) Valid() bool {
	return m == ModeFocus || m == ModeShortBreak || m == ModeLongBreak
}

func (m SessionMode) Label() string {
	switch m {
	case ModeShortBreak:
		return "Short Break"
	case ModeLongBreak:
		return "Long Break"
	default:
		return "Focus"
	}
}

func ParseSessionMode(raw string) (SessionMode, error) {
	mode := SessionMode(raw)
	if !mode.Valid() {
		return "", fmt.Errorf("invalid mode %q: must be one of focus, short_break, long_break", raw)
	}
	return mode, nil
}

type Outcome string

const (
	OutcomePending     Outcome = "pending"
	OutcomeCompleted   Outcome = "completed"
	OutcomeInterrupted Outcome = "interrupted"
)

// SyncStatus records whether a session id is still locally generated or has
// been replaced by the identifier the remote store assigned.
type SyncStatus string

const (
	SyncLocal  SyncStatus = "local"
	SyncSynced SyncStatus = "synced"
)

const (
	DefaultFocusDurationSeconds      = 25 * 60
	DefaultShortBreakDurationSeconds = 5 * 60
	DefaultLongBreakDurationSeconds  = 15 * 60
	DefaultCyclesBeforeLongBreak     = 4
)

type TimerConfig struct {
	FocusSeconds          int  `json:"focusSeconds" yaml:"focus_seconds"`
	ShortBreakSeconds     int  `json:"shortBreakSeconds" yaml:"short_break_seconds"`
	LongBreakSeconds      int  `json:"longBreakSeconds" yaml:"long_break_seconds"`
	CyclesBeforeLongBreak int  `json:"cyclesBeforeLongBreak" yaml:"cycles_before_long_break"`
	AutoStartBreaks       bool `json:"autoStartBreaks" yaml:"auto_start_breaks"`
	AutoStartFocus        bool `json:"autoStartFocus" yaml:"auto_start_focus"`
	DailyGoalSessions     int  `json:"dailyGoalSessions,omitempty" yaml:"daily_goal_sessions,omitempty"`
}

func DefaultTimerConfig() TimerConfig {
	return TimerConfig{
		FocusSeconds:          DefaultFocusDurationSeconds,
		ShortBreakSeconds:     DefaultShortBreakDurationSeconds,
		LongBreakSeconds:      DefaultLongBreakDurationSeconds,
		CyclesBeforeLongBreak: DefaultCyclesBeforeLongBreak,
		AutoStartBreaks:       true,
		AutoStartFocus:        false,
	}
}

// Validate reports the first field that is out of range.
func (c TimerConfig) Validate() error {
	if c.FocusSeconds <= 0 || c.ShortBreakSeconds <= 0 || c.LongBreakSeconds <= 0 {
		return fmt.Errorf("all durations must be positive seconds")
	}
	if c.CyclesBeforeLongBreak < 1 {
		return fmt.Errorf("cyclesBeforeLongBreak must be at least 1, got %d", c.CyclesBeforeLongBreak)
	}
	if c.DailyGoalSessions < 0 {
		return fmt.Errorf("dailyGoalSessions must not be negative")
	}
	return nil
}

func (c TimerConfig) DurationFor(mode SessionMode) int {
	switch mode {
	case ModeShortBreak:
		return c.ShortBreakSeconds
	case ModeLongBreak:
		return c.LongBreakSeconds
	default:
		return c.FocusSeconds
	}
}

type Session struct {
	ID                     string      `json:"id"`
	Mode                   SessionMode `json:"mode"`
	StartedAt              time.Time   `json:"startedAt"`
	EndedAt                *time.Time  `json:"endedAt,omitempty"`
	PlannedDurationSeconds int         `json:"plannedDurationSeconds"`
	ActualDurationSeconds  int         `json:"actualDurationSeconds"`
	Outcome                Outcome     `json:"outcome"`
	SyncStatus             SyncStatus  `json:"syncStatus"`
}

func (s Session) Pending() bool {
	return s.Outcome == OutcomePending
}

// TimerState is the persisted aggregate of the engine. Current holds the
// pending session, if any.
type TimerState struct {
	Mode                SessionMode `json:"mode"`
	RemainingSeconds    int         `json:"remainingSeconds"`
	IsRunning           bool        `json:"isRunning"`
	CompletedFocusCount int         `json:"completedFocusCount"`
	Current             *Session    `json:"currentSession,omitempty"`
	UpdatedAt           time.Time   `json:"updatedAt"`
}

func InitialTimerState(cfg TimerConfig) TimerState {
	return TimerState{
		Mode:             ModeFocus,
		RemainingSeconds: cfg.DurationFor(ModeFocus),
	}
}
