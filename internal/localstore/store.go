// Package localstore is the client's durable key/value store. Each aggregate
// (timer config, timer state, credentials) is one JSON value under one key.
package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"focusflow/internal/db"
	"focusflow/internal/model"
	"focusflow/migrations"
)

const (
	keyTimerConfig = "timer.config"
	keyTimerState  = "timer.state"
	keyAuthToken   = "auth.token"
)

type Store struct {
	db *sql.DB
}

// Open opens the client database at path and applies the local schema.
func Open(path string) (*sql.DB, error) {
	database, err := db.OpenSQLite(path)
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(database, migrations.Local()); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("migrate local store: %w", err)
	}
	return database, nil
}

func New(database *sql.DB) *Store {
	return &Store{db: database}
}

// Get decodes the value stored under key into dest. It reports false when
// the key is absent.
func (s *Store) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&raw)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *Store) Set(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key,
		string(raw),
		db.FormatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// LoadTimerConfig returns the stored config, or the defaults when none has
// been saved yet.
func (s *Store) LoadTimerConfig(ctx context.Context) (model.TimerConfig, error) {
	cfg := model.DefaultTimerConfig()
	if _, err := s.Get(ctx, keyTimerConfig, &cfg); err != nil {
		return model.TimerConfig{}, err
	}
	return cfg, nil
}

func (s *Store) SaveTimerConfig(ctx context.Context, cfg model.TimerConfig) error {
	return s.Set(ctx, keyTimerConfig, cfg)
}

func (s *Store) LoadTimerState(ctx context.Context, cfg model.TimerConfig) (model.TimerState, error) {
	var state model.TimerState
	found, err := s.Get(ctx, keyTimerState, &state)
	if err != nil {
		return model.TimerState{}, err
	}
	if !found || !state.Mode.Valid() {
		return model.InitialTimerState(cfg), nil
	}
	return state, nil
}

func (s *Store) SaveTimerState(ctx context.Context, state model.TimerState) error {
	return s.Set(ctx, keyTimerState, state)
}

// Token returns the stored bearer token, or "" when logged out.
func (s *Store) Token(ctx context.Context) (string, error) {
	var token string
	if _, err := s.Get(ctx, keyAuthToken, &token); err != nil {
		return "", err
	}
	return token, nil
}

func (s *Store) SaveToken(ctx context.Context, token string) error {
	return s.Set(ctx, keyAuthToken, token)
}

func (s *Store) ClearToken(ctx context.Context) error {
	return s.Delete(ctx, keyAuthToken)
}
