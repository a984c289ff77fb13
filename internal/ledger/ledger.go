// Package ledger is the append-only local log of resolved sessions.
//
// Records are only ever added by Append or renamed by ReplaceID; nothing
// else mutates the table.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"iter"
	"strings"
	"sync"
	"time"

	"focusflow/internal/db"
	apperrors "focusflow/internal/errors"
	"focusflow/internal/model"
)

type Filter struct {
	Mode       model.SessionMode
	Outcome    model.Outcome
	SyncStatus model.SyncStatus
	// From and To bound StartedAt, inclusive.
	From *time.Time
	To   *time.Time
	// Limit, when positive, keeps only the most recent Limit matches.
	Limit int
}

type Ledger struct {
	mu sync.Mutex
	db *sql.DB
}

func New(database *sql.DB) *Ledger {
	return &Ledger{db: database}
}

func (l *Ledger) Append(ctx context.Context, session model.Session) error {
	if session.ID == "" {
		return fmt.Errorf("append session: empty id")
	}
	if session.SyncStatus == "" {
		session.SyncStatus = model.SyncLocal
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	exists, err := l.exists(ctx, session.ID)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("append session %s: %w", session.ID, apperrors.ErrDuplicate)
	}

	var endedAt interface{}
	if session.EndedAt != nil {
		endedAt = db.FormatTime(*session.EndedAt)
	}
	_, err = l.db.ExecContext(
		ctx,
		`INSERT INTO ledger_sessions (
			id, mode, started_at, ended_at, planned_duration_seconds,
			actual_duration_seconds, outcome, sync_status
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		session.ID,
		string(session.Mode),
		db.FormatTime(session.StartedAt),
		endedAt,
		session.PlannedDurationSeconds,
		session.ActualDurationSeconds,
		string(session.Outcome),
		string(session.SyncStatus),
	)
	if err != nil {
		return fmt.Errorf("append session %s: %w", session.ID, err)
	}
	return nil
}

// ReplaceID migrates a record to the identifier assigned by the remote store
// and marks it synced. The record keeps its position in the ledger.
func (l *Ledger) ReplaceID(ctx context.Context, oldID, newID string) error {
	if newID == "" {
		return fmt.Errorf("replace id %s: empty new id", oldID)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if oldID != newID {
		taken, err := l.exists(ctx, newID)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("replace id %s -> %s: %w", oldID, newID, apperrors.ErrDuplicate)
		}
	}

	result, err := l.db.ExecContext(
		ctx,
		`UPDATE ledger_sessions SET id = ?, sync_status = ? WHERE id = ?`,
		newID,
		string(model.SyncSynced),
		oldID,
	)
	if err != nil {
		return fmt.Errorf("replace id %s: %w", oldID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("replace id %s: %w", oldID, err)
	}
	if affected == 0 {
		return fmt.Errorf("replace id %s: %w", oldID, apperrors.ErrNotFound)
	}
	return nil
}

func (l *Ledger) Get(ctx context.Context, id string) (model.Session, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	row := l.db.QueryRowContext(
		ctx,
		`SELECT `+columns+` FROM ledger_sessions WHERE id = ?`,
		id,
	)
	session, err := scanSession(row)
	if err == sql.ErrNoRows {
		return model.Session{}, fmt.Errorf("get session %s: %w", id, apperrors.ErrNotFound)
	}
	if err != nil {
		return model.Session{}, err
	}
	return session, nil
}

// List yields the records matching filter in StartedAt order. Nothing is
// read until the sequence is ranged over, and every range reads afresh.
//
// Rows are buffered before the first yield so the loop body may call back
// into the ledger.
func (l *Ledger) List(ctx context.Context, filter Filter) iter.Seq2[model.Session, error] {
	return func(yield func(model.Session, error) bool) {
		sessions, err := l.load(ctx, filter)
		if err != nil {
			yield(model.Session{}, err)
			return
		}
		for _, session := range sessions {
			if !yield(session, nil) {
				return
			}
		}
	}
}

// Collect returns the records matching filter as a slice.
func (l *Ledger) Collect(ctx context.Context, filter Filter) ([]model.Session, error) {
	return l.load(ctx, filter)
}

func (l *Ledger) Count(ctx context.Context, filter Filter) (int, error) {
	where, args := filter.clauses()

	l.mu.Lock()
	defer l.mu.Unlock()

	var count int
	if err := l.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM ledger_sessions`+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	if filter.Limit > 0 {
		count = min(count, filter.Limit)
	}
	return count, nil
}

const columns = `id, mode, started_at, ended_at, planned_duration_seconds,
		actual_duration_seconds, outcome, sync_status`

func (l *Ledger) load(ctx context.Context, filter Filter) ([]model.Session, error) {
	where, args := filter.clauses()

	l.mu.Lock()
	defer l.mu.Unlock()

	query := `SELECT ` + columns + `, seq FROM ledger_sessions` + where
	if filter.Limit > 0 {
		query += ` ORDER BY started_at DESC, seq DESC LIMIT ?`
		args = append(args, filter.Limit)
	}
	rows, err := l.db.QueryContext(
		ctx,
		`SELECT `+columns+` FROM (`+query+`) ORDER BY started_at ASC, seq ASC`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]model.Session, 0)
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

func (l *Ledger) exists(ctx context.Context, id string) (bool, error) {
	var count int
	if err := l.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM ledger_sessions WHERE id = ?`, id).Scan(&count); err != nil {
		return false, fmt.Errorf("check session %s: %w", id, err)
	}
	return count > 0, nil
}

func (f Filter) clauses() (string, []interface{}) {
	var clauses []string
	var args []interface{}
	if f.Mode != "" {
		clauses = append(clauses, "mode = ?")
		args = append(args, string(f.Mode))
	}
	if f.Outcome != "" {
		clauses = append(clauses, "outcome = ?")
		args = append(args, string(f.Outcome))
	}
	if f.SyncStatus != "" {
		clauses = append(clauses, "sync_status = ?")
		args = append(args, string(f.SyncStatus))
	}
	if f.From != nil {
		clauses = append(clauses, "started_at >= ?")
		args = append(args, db.FormatTime(*f.From))
	}
	if f.To != nil {
		clauses = append(clauses, "started_at <= ?")
		args = append(args, db.FormatTime(*f.To))
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(s scanner) (model.Session, error) {
	var session model.Session
	var mode, outcome, syncStatus, startedAt string
	var endedAt sql.NullString
	err := s.Scan(
		&session.ID,
		&mode,
		&startedAt,
		&endedAt,
		&session.PlannedDurationSeconds,
		&session.ActualDurationSeconds,
		&outcome,
		&syncStatus,
	)
	if err == sql.ErrNoRows {
		return model.Session{}, err
	}
	if err != nil {
		return model.Session{}, fmt.Errorf("scan session: %w", err)
	}

	session.Mode = model.SessionMode(mode)
	session.Outcome = model.Outcome(outcome)
	session.SyncStatus = model.SyncStatus(syncStatus)

	if session.StartedAt, err = db.ParseTime(startedAt); err != nil {
		return model.Session{}, fmt.Errorf("parse started_at: %w", err)
	}
	if endedAt.Valid {
		parsed, err := db.ParseTime(endedAt.String)
		if err != nil {
			return model.Session{}, fmt.Errorf("parse ended_at: %w", err)
		}
		session.EndedAt = &parsed
	}
	return session, nil
}
