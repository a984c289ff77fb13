package repository

import (
	"context"
	"database/sql"
	"fmt"

	"focusflow/internal/db"
	"focusflow/internal/model"
)

type SettingsRepository struct {
	db *sql.DB
}

func NewSettingsRepository(database *sql.DB) *SettingsRepository {
	return &SettingsRepository{db: database}
}

func (r *SettingsRepository) BeginTx(ctx context.Context) (*sql.Tx, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return tx, nil
}

func (r *SettingsRepository) Create(ctx context.Context, settings *model.PomodoroSettings) error {
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO pomodoro_settings (
			user_id, focus_duration_minutes, short_break_duration_minutes,
			long_break_duration_minutes, long_break_interval, auto_start_breaks,
			auto_start_pomodoros, daily_goal_sessions, version, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		settings.UserID,
		settings.FocusDurationMinutes,
		settings.ShortBreakDurationMinutes,
		settings.LongBreakDurationMinutes,
		settings.LongBreakInterval,
		settings.AutoStartBreaks,
		settings.AutoStartPomodoros,
		settings.DailyGoalSessions,
		settings.Version,
		db.FormatTime(settings.CreatedAt),
		db.FormatTime(settings.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("create settings: %w", err)
	}
	return nil
}

func (r *SettingsRepository) GetTx(ctx context.Context, tx *sql.Tx, userID string) (*model.PomodoroSettings, error) {
	row := tx.QueryRowContext(
		ctx,
		`SELECT user_id, focus_duration_minutes, short_break_duration_minutes,
		        long_break_duration_minutes, long_break_interval, auto_start_breaks,
		        auto_start_pomodoros, daily_goal_sessions, version, created_at, updated_at
		 FROM pomodoro_settings WHERE user_id = ?`,
		userID,
	)
	return scanSettings(row)
}

func (r *SettingsRepository) UpdateTx(ctx context.Context, tx *sql.Tx, settings *model.PomodoroSettings) error {
	_, err := tx.ExecContext(
		ctx,
		`UPDATE pomodoro_settings
		 SET focus_duration_minutes = ?,
		     short_break_duration_minutes = ?,
		     long_break_duration_minutes = ?,
		     long_break_interval = ?,
		     auto_start_breaks = ?,
		     auto_start_pomodoros = ?,
		     daily_goal_sessions = ?,
		     version = ?,
		     updated_at = ?
		 WHERE user_id = ?`,
		settings.FocusDurationMinutes,
		settings.ShortBreakDurationMinutes,
		settings.LongBreakDurationMinutes,
		settings.LongBreakInterval,
		settings.AutoStartBreaks,
		settings.AutoStartPomodoros,
		settings.DailyGoalSessions,
		settings.Version,
		db.FormatTime(settings.UpdatedAt),
		settings.UserID,
	)
	if err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	return nil
}

func scanSettings(s scanner) (*model.PomodoroSettings, error) {
	settings := model.PomodoroSettings{}
	var createdAt string
	var updatedAt string
	err := s.Scan(
		&settings.UserID,
		&settings.FocusDurationMinutes,
		&settings.ShortBreakDurationMinutes,
		&settings.LongBreakDurationMinutes,
		&settings.LongBreakInterval,
		&settings.AutoStartBreaks,
		&settings.AutoStartPomodoros,
		&settings.DailyGoalSessions,
		&settings.Version,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan settings: %w", err)
	}

	if settings.CreatedAt, err = db.ParseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse settings created_at: %w", err)
	}
	if settings.UpdatedAt, err = db.ParseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse settings updated_at: %w", err)
	}
	return &settings, nil
}
