package database_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"recipe-service/config"
	"recipe-service/database"
	"recipe-service/database/dbtest"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakyPinger struct {
	failures int
	calls    int
}

func (p *flakyPinger) PingContext(context.Context) error {
	p.calls++
	if p.calls <= p.failures {
		return errors.New("database is starting up")
	}
	return nil
}

func TestWaitForDBReady(t *testing.T) {
	dbtest.InitLogger()
	p := &flakyPinger{}

	err := database.WaitForDB(context.Background(), p, &backoff.ZeroBackOff{})
	require.NoError(t, err)
	assert.Equal(t, 1, p.calls)
}

func TestWaitForDBRetries(t *testing.T) {
	dbtest.InitLogger()
	p := &flakyPinger{failures: 5}

	err := database.WaitForDB(context.Background(), p, &backoff.ZeroBackOff{})
	require.NoError(t, err)
	assert.Equal(t, 6, p.calls)
}

func TestWaitForDBGivesUp(t *testing.T) {
	dbtest.InitLogger()
	p := &flakyPinger{failures: 100}

	err := database.WaitForDB(context.Background(), p, backoff.WithMaxRetries(&backoff.ZeroBackOff{}, 3))
	require.Error(t, err)
	assert.Equal(t, 4, p.calls)
}

func TestWaitPolicyStopsAfterMaxElapsed(t *testing.T) {
	policy := database.NewWaitPolicy(time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	assert.Equal(t, backoff.Stop, policy.NextBackOff())
}

func TestWaitForDatabaseRetriesUntilReachable(t *testing.T) {
	dbtest.InitLogger()
	dir := filepath.Join(t.TempDir(), "not-yet")
	cfg := config.DatabaseConfig{
		Driver:      "sqlite3",
		Path:        filepath.Join(dir, "recipes.db"),
		WaitTimeout: 10 * time.Second,
	}

	// the directory shows up after the first failed attempt
	go func() {
		time.Sleep(100 * time.Millisecond)
		os.MkdirAll(dir, 0o755)
	}()

	dbConn, err := database.WaitForDatabase(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { dbConn.Close() })
	assert.NoError(t, dbConn.Ping())
}

func TestWaitForDatabaseGivesUp(t *testing.T) {
	dbtest.InitLogger()
	cfg := config.DatabaseConfig{
		Driver:      "sqlite3",
		Path:        filepath.Join(t.TempDir(), "missing", "recipes.db"),
		WaitTimeout: 300 * time.Millisecond,
	}

	var err error
	require.NotPanics(t, func() {
		_, err = database.WaitForDatabase(context.Background(), cfg)
	})
	assert.Error(t, err)
}

func TestDSN(t *testing.T) {
	assert.Equal(t, "./r.db?_txlock=immediate&_busy_timeout=5000&_journal_mode=WAL",
		database.DSN(config.DatabaseConfig{Driver: "sqlite3", Path: "./r.db"}))
	assert.Equal(t, "file:r.db?cache=shared&_txlock=immediate&_busy_timeout=5000&_journal_mode=WAL",
		database.DSN(config.DatabaseConfig{Driver: "sqlite3", Path: "file:r.db?cache=shared"}))
	assert.Equal(t, "postgres://db/recipes",
		database.DSN(config.DatabaseConfig{Driver: "postgres", Path: "postgres://db/recipes"}))
}

func TestMigrateCreatesSchema(t *testing.T) {
	dbConn := dbtest.New(t)

	for _, table := range []string{"users", "auth_tokens", "tags", "ingredients", "recipes", "recipe_tags", "recipe_ingredients"} {
		var name string
		err := dbConn.Get(&name, "SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table)
		require.NoError(t, err, table)
		assert.Equal(t, table, name)
	}

	// Re-running is a no-op
	require.NoError(t, database.Migrate(context.Background(), dbConn))
}

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, database.CreateMigration("add_recipe_notes", dir))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ".sql", filepath.Ext(entries[0].Name()))
	assert.Contains(t, entries[0].Name(), "add_recipe_notes")

	assert.Error(t, database.CreateMigration("", dir))
}
