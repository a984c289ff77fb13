package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"focusflow/internal/model"
)

func TestApplySetting(t *testing.T) {
	base := model.DefaultTimerConfig()

	cfg, err := applySetting(base, "focus", "50m")
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.FocusSeconds)

	cfg, err = applySetting(base, "short_break", "90")
	require.NoError(t, err)
	assert.Equal(t, 90, cfg.ShortBreakSeconds)

	cfg, err = applySetting(base, "AUTO_START_FOCUS", "true")
	require.NoError(t, err)
	assert.True(t, cfg.AutoStartFocus)

	cfg, err = applySetting(base, "daily_goal", "8")
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.DailyGoalSessions)

	_, err = applySetting(base, "cycles", "many")
	assert.Error(t, err)

	_, err = applySetting(base, "volume", "11")
	assert.Error(t, err)
}

func TestParseSeconds(t *testing.T) {
	cases := map[string]int{
		"25m":    1500,
		"1h":     3600,
		"1m30s":  90,
		"45":     45,
		"1500ms": 2,
	}
	for in, want := range cases {
		got, err := parseSeconds(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := parseSeconds("soon")
	assert.Error(t, err)
}

func TestRootCommandTree(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"run", "tui", "status", "reset", "history", "sync", "stats", "login", "logout", "whoami", "config"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}
