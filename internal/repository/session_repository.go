package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"focusflow/internal/db"
	"focusflow/internal/model"
)

type SessionRepository struct {
	db *sql.DB
}

type SessionFilter struct {
	UserID      string
	From        *time.Time
	To          *time.Time
	SessionType model.SessionMode
	Status      model.RemoteStatus
	// Limit <= 0 means no limit.
	Limit int
	Skip  int
}

func NewSessionRepository(database *sql.DB) *SessionRepository {
	return &SessionRepository{db: database}
}

const sessionColumns = `id, user_id, session_type, duration_minutes, status, start_time, end_time,
		        related_task_id, notes, interruption_reason, created_at`

func (r *SessionRepository) Insert(ctx context.Context, session *model.RemoteSession) error {
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO pomodoro_sessions (
			id, user_id, session_type, duration_minutes, status, start_time, end_time,
			related_task_id, notes, interruption_reason, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		session.ID,
		session.UserID,
		string(session.SessionType),
		session.DurationMinutes,
		string(session.Status),
		db.FormatTime(session.StartTime),
		db.FormatTime(session.EndTime),
		nullableString(session.RelatedTaskID),
		nullableString(session.Notes),
		nullableString(session.InterruptionReason),
		db.FormatTime(session.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, userID, id string) (*model.RemoteSession, error) {
	row := r.db.QueryRowContext(
		ctx,
		`SELECT `+sessionColumns+`
		 FROM pomodoro_sessions
		 WHERE id = ? AND user_id = ?`,
		id,
		userID,
	)
	return scanSession(row)
}

func (r *SessionRepository) Update(ctx context.Context, session *model.RemoteSession) error {
	result, err := r.db.ExecContext(
		ctx,
		`UPDATE pomodoro_sessions
		 SET status = ?,
		     end_time = ?,
		     notes = ?,
		     interruption_reason = ?
		 WHERE id = ? AND user_id = ?`,
		string(session.Status),
		db.FormatTime(session.EndTime),
		nullableString(session.Notes),
		nullableString(session.InterruptionReason),
		session.ID,
		session.UserID,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return expectAffected(result, "update session")
}

func (r *SessionRepository) Delete(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(
		ctx,
		`DELETE FROM pomodoro_sessions WHERE id = ? AND user_id = ?`,
		id,
		userID,
	)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return expectAffected(result, "delete session")
}

// List returns sessions ordered most recent first.
func (r *SessionRepository) List(ctx context.Context, filter SessionFilter) ([]model.RemoteSession, error) {
	clauses := []string{"user_id = ?"}
	args := []interface{}{filter.UserID}
	if filter.From != nil {
		clauses = append(clauses, "start_time >= ?")
		args = append(args, db.FormatTime(*filter.From))
	}
	if filter.To != nil {
		clauses = append(clauses, "start_time <= ?")
		args = append(args, db.FormatTime(*filter.To))
	}
	if filter.SessionType != "" {
		clauses = append(clauses, "session_type = ?")
		args = append(args, string(filter.SessionType))
	}
	if filter.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, string(filter.Status))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = -1
	}
	args = append(args, limit, filter.Skip)

	rows, err := r.db.QueryContext(
		ctx,
		`SELECT `+sessionColumns+`
		 FROM pomodoro_sessions
		 WHERE `+strings.Join(clauses, " AND ")+`
		 ORDER BY start_time DESC, created_at DESC
		 LIMIT ? OFFSET ?`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]model.RemoteSession, 0)
	for rows.Next() {
		session, scanErr := scanSession(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		sessions = append(sessions, *session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}

	return sessions, nil
}

func scanSession(s scanner) (*model.RemoteSession, error) {
	session := model.RemoteSession{}
	var sessionType string
	var status string
	var startTime string
	var endTime string
	var createdAt string
	var relatedTaskID sql.NullString
	var notes sql.NullString
	var interruptionReason sql.NullString
	err := s.Scan(
		&session.ID,
		&session.UserID,
		&sessionType,
		&session.DurationMinutes,
		&status,
		&startTime,
		&endTime,
		&relatedTaskID,
		&notes,
		&interruptionReason,
		&createdAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}

	session.SessionType = model.SessionMode(sessionType)
	session.Status = model.RemoteStatus(status)
	session.RelatedTaskID = stringPtr(relatedTaskID)
	session.Notes = stringPtr(notes)
	session.InterruptionReason = stringPtr(interruptionReason)

	if session.StartTime, err = db.ParseTime(startTime); err != nil {
		return nil, fmt.Errorf("parse session start_time: %w", err)
	}
	if session.EndTime, err = db.ParseTime(endTime); err != nil {
		return nil, fmt.Errorf("parse session end_time: %w", err)
	}
	if session.CreatedAt, err = db.ParseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse session created_at: %w", err)
	}

	return &session, nil
}

func expectAffected(result sql.Result, op string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func nullableString(value *string) interface{} {
	if value == nil {
		return nil
	}
	return *value
}

func stringPtr(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	v := value.String
	return &v
}
