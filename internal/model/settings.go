package model

import "time"

// PomodoroSettings is the per-user timer configuration kept by the server.
type PomodoroSettings struct {
	UserID                    string    `json:"userId"`
	FocusDurationMinutes      int       `json:"focusDurationMinutes"`
	ShortBreakDurationMinutes int       `json:"shortBreakDurationMinutes"`
	LongBreakDurationMinutes  int       `json:"longBreakDurationMinutes"`
	LongBreakInterval         int       `json:"longBreakInterval"`
	AutoStartBreaks           bool      `json:"autoStartBreaks"`
	AutoStartPomodoros        bool      `json:"autoStartPomodoros"`
	DailyGoalSessions         int       `json:"dailyGoalSessions"`
	Version                   int       `json:"version"`
	CreatedAt                 time.Time `json:"createdAt"`
	UpdatedAt                 time.Time `json:"updatedAt"`
}

func DefaultPomodoroSettings(userID string, now time.Time) PomodoroSettings {
	return PomodoroSettings{
		UserID:                    userID,
		FocusDurationMinutes:      DefaultFocusDurationSeconds / 60,
		ShortBreakDurationMinutes: DefaultShortBreakDurationSeconds / 60,
		LongBreakDurationMinutes:  DefaultLongBreakDurationSeconds / 60,
		LongBreakInterval:         DefaultCyclesBeforeLongBreak,
		AutoStartBreaks:           true,
		AutoStartPomodoros:        false,
		Version:                   1,
		CreatedAt:                 now,
		UpdatedAt:                 now,
	}
}

func (s PomodoroSettings) TimerConfig() TimerConfig {
	return TimerConfig{
		FocusSeconds:          s.FocusDurationMinutes * 60,
		ShortBreakSeconds:     s.ShortBreakDurationMinutes * 60,
		LongBreakSeconds:      s.LongBreakDurationMinutes * 60,
		CyclesBeforeLongBreak: s.LongBreakInterval,
		AutoStartBreaks:       s.AutoStartBreaks,
		AutoStartFocus:        s.AutoStartPomodoros,
		DailyGoalSessions:     s.DailyGoalSessions,
	}
}
