package service

import (
	"context"
	"time"

	apperrors "focusflow/internal/errors"
	"focusflow/internal/model"
	"focusflow/internal/repository"
)

type SettingsService struct {
	repo *repository.SettingsRepository
}

type UpdateSettingsInput struct {
	BaseVersion               int
	FocusDurationMinutes      int
	ShortBreakDurationMinutes int
	LongBreakDurationMinutes  int
	LongBreakInterval         int
	AutoStartBreaks           bool
	AutoStartPomodoros        bool
	DailyGoalSessions         int
}

func NewSettingsService(repo *repository.SettingsRepository) *SettingsService {
	return &SettingsService{repo: repo}
}

func (s *SettingsService) Get(ctx context.Context, userID string) (*model.PomodoroSettings, *apperrors.APIError) {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, apperrors.Internal("failed to start transaction")
	}
	defer tx.Rollback()

	settings, err := s.repo.GetTx(ctx, tx, userID)
	if err == repository.ErrNotFound {
		return nil, apperrors.NotFound("settings_not_found", "pomodoro settings not found")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to get settings")
	}
	return settings, nil
}

// Update replaces the settings when BaseVersion matches the stored version.
// A zero BaseVersion skips the check.
func (s *SettingsService) Update(ctx context.Context, userID string, input UpdateSettingsInput) (*model.PomodoroSettings, *apperrors.APIError) {
	if input.FocusDurationMinutes <= 0 || input.ShortBreakDurationMinutes <= 0 || input.LongBreakDurationMinutes <= 0 {
		return nil, apperrors.BadRequest("invalid_duration", "all durations must be positive minutes")
	}
	if input.LongBreakInterval < 1 {
		return nil, apperrors.BadRequest("invalid_interval", "longBreakInterval must be at least 1")
	}
	if input.DailyGoalSessions < 0 {
		return nil, apperrors.BadRequest("invalid_goal", "dailyGoalSessions must not be negative")
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, apperrors.Internal("failed to start transaction")
	}
	defer tx.Rollback()

	settings, err := s.repo.GetTx(ctx, tx, userID)
	if err == repository.ErrNotFound {
		return nil, apperrors.NotFound("settings_not_found", "pomodoro settings not found")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to get settings")
	}

	if input.BaseVersion > 0 && input.BaseVersion != settings.Version {
		return nil, apperrors.Conflict("settings_conflict", "settings changed on another device", map[string]interface{}{
			"settings": settings,
		})
	}

	settings.FocusDurationMinutes = input.FocusDurationMinutes
	settings.ShortBreakDurationMinutes = input.ShortBreakDurationMinutes
	settings.LongBreakDurationMinutes = input.LongBreakDurationMinutes
	settings.LongBreakInterval = input.LongBreakInterval
	settings.AutoStartBreaks = input.AutoStartBreaks
	settings.AutoStartPomodoros = input.AutoStartPomodoros
	settings.DailyGoalSessions = input.DailyGoalSessions
	settings.UpdatedAt = time.Now().UTC()
	settings.Version++

	if err := s.repo.UpdateTx(ctx, tx, settings); err != nil {
		return nil, apperrors.Internal("failed to update settings")
	}
	if err := tx.Commit(); err != nil {
		return nil, apperrors.Internal("failed to commit transaction")
	}
	return settings, nil
}
