package db

import (
	"context"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMigrationsAppliesPendingInOrder(t *testing.T) {
	database, err := OpenSQLite(filepath.Join(t.TempDir(), "nested", "m.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = database.Close()
	})
	ctx := context.Background()

	schema := fstest.MapFS{
		"002_seed.sql":  {Data: []byte(`INSERT INTO items (name) VALUES ('first');`)},
		"001_items.sql": {Data: []byte(`CREATE TABLE items (name TEXT NOT NULL);`)},
		"README.md":     {Data: []byte("ignored")},
		"old/999_x.sql": {Data: []byte("not a migration")},
	}

	pending, err := PendingMigrations(ctx, database, schema)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_items.sql", "002_seed.sql"}, pending)

	require.NoError(t, RunMigrations(database, schema))
	require.NoError(t, RunMigrations(database, schema), "applied migrations are skipped")

	var count int
	require.NoError(t, database.QueryRow(`SELECT COUNT(1) FROM items`).Scan(&count))
	assert.Equal(t, 1, count)

	pending, err = PendingMigrations(ctx, database, schema)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestRunMigrationsRollsBackFailedScript(t *testing.T) {
	database, err := OpenSQLite(filepath.Join(t.TempDir(), "m.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = database.Close()
	})

	schema := fstest.MapFS{
		"001_broken.sql": {Data: []byte(`CREATE TABLE half (id TEXT); INSERT INTO missing VALUES (1);`)},
	}
	require.Error(t, RunMigrations(database, schema))

	pending, err := PendingMigrations(context.Background(), database, schema)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_broken.sql"}, pending)
}
