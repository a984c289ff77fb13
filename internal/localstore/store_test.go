package localstore_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"focusflow/internal/localstore"
	"focusflow/internal/model"
)

func openStore(t *testing.T, path string) *localstore.Store {
	t.Helper()
	database, err := localstore.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = database.Close()
	})
	return localstore.New(database)
}

func TestTimerConfigDefaultsAndRoundTrip(t *testing.T) {
	store := openStore(t, filepath.Join(t.TempDir(), "client.db"))
	ctx := context.Background()

	cfg, err := store.LoadTimerConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultTimerConfig(), cfg)

	cfg.FocusSeconds = 50 * 60
	cfg.DailyGoalSessions = 6
	require.NoError(t, store.SaveTimerConfig(ctx, cfg))

	loaded, err := store.LoadTimerConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestTimerStateSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.db")
	ctx := context.Background()
	cfg := model.DefaultTimerConfig()

	store := openStore(t, path)
	initial, err := store.LoadTimerState(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, model.InitialTimerState(cfg), initial)

	startedAt := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	state := model.TimerState{
		Mode:                model.ModeFocus,
		RemainingSeconds:    600,
		IsRunning:           false,
		CompletedFocusCount: 3,
		Current: &model.Session{
			ID:                     "01JNQ4",
			Mode:                   model.ModeFocus,
			StartedAt:              startedAt,
			PlannedDurationSeconds: 1500,
			Outcome:                model.OutcomePending,
			SyncStatus:             model.SyncLocal,
		},
		UpdatedAt: startedAt.Add(15 * time.Minute),
	}
	require.NoError(t, store.SaveTimerState(ctx, state))

	reopened := openStore(t, path)
	loaded, err := reopened.LoadTimerState(ctx, cfg)
	require.NoError(t, err)
	require.NotNil(t, loaded.Current)
	assert.Equal(t, state.Current.ID, loaded.Current.ID)
	assert.True(t, state.Current.StartedAt.Equal(loaded.Current.StartedAt))
	assert.Equal(t, 600, loaded.RemainingSeconds)
	assert.Equal(t, 3, loaded.CompletedFocusCount)
}

func TestToken(t *testing.T) {
	store := openStore(t, filepath.Join(t.TempDir(), "client.db"))
	ctx := context.Background()

	token, err := store.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, store.SaveToken(ctx, "first"))
	require.NoError(t, store.SaveToken(ctx, "second"))
	token, err = store.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "second", token)

	require.NoError(t, store.ClearToken(ctx))
	token, err = store.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestGetReportsMissingKey(t *testing.T) {
	store := openStore(t, filepath.Join(t.TempDir(), "client.db"))

	var value map[string]int
	found, err := store.Get(context.Background(), "nope", &value)
	require.NoError(t, err)
	assert.False(t, found)
}
