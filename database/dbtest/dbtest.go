// Package dbtest opens throwaway migrated sqlite databases for tests.
package dbtest

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"recipe-service/config"
	"recipe-service/database"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"github.com/umakantv/go-utils/logger"
)

var loggerOnce sync.Once

// InitLogger initializes the global logger once per test binary
func InitLogger() {
	loggerOnce.Do(func() {
		logger.Init(logger.LoggerConfig{
			CallerKey:  "file",
			TimeKey:    "timestamp",
			CallerSkip: 1,
		})
	})
}

// New returns a migrated database in the test's temp dir, closed on cleanup
func New(t testing.TB) *sqlx.DB {
	t.Helper()
	InitLogger()

	path := filepath.Join(t.TempDir(), "test.db")
	dbConn, err := sqlx.Open("sqlite3", database.DSN(config.DatabaseConfig{Driver: "sqlite3", Path: path}))
	require.NoError(t, err)
	t.Cleanup(func() { dbConn.Close() })

	require.NoError(t, database.Migrate(context.Background(), dbConn))
	return dbConn
}
