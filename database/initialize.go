package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"recipe-service/config"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	"github.com/umakantv/go-utils/db"
	"github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// sqliteOptions make every transaction take the write lock up front and wait
// for it, so concurrent writers queue instead of failing with SQLITE_BUSY
const sqliteOptions = "_txlock=immediate&_busy_timeout=5000&_journal_mode=WAL"

// DSN returns the connection string for cfg, adding the sqlite locking options
func DSN(cfg config.DatabaseConfig) string {
	if cfg.Driver != "sqlite3" {
		return cfg.Path
	}
	sep := "?"
	if strings.Contains(cfg.Path, "?") {
		sep = "&"
	}
	return cfg.Path + sep + sqliteOptions
}

// InitializeDatabase opens the configured database, waits for it and applies migrations.
// Exits the process on failure, like the other startup initializers.
func InitializeDatabase(cfg config.DatabaseConfig) *sqlx.DB {
	dbConn, err := WaitForDatabase(context.Background(), cfg)
	if err != nil {
		logger.Error("Database unavailable", zap.Error(err))
		os.Exit(1)
	}

	if err := Migrate(context.Background(), dbConn); err != nil {
		logger.Error("Error while running migration", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("Database initialized successfully")
	return dbConn
}

// connector opens the database on first successful ping. db.GetDBConnection
// panics when the database cannot be reached, so each attempt recovers and
// reports the panic as an error for the backoff loop.
type connector struct {
	cfg  config.DatabaseConfig
	conn *sqlx.DB
}

func (c *connector) PingContext(ctx context.Context) (err error) {
	if c.conn != nil {
		return c.conn.PingContext(ctx)
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("connect %s: %v", c.cfg.Driver, r)
		}
	}()
	c.conn = db.GetDBConnection(db.DatabaseConfig{
		DRIVER: c.cfg.Driver,
		DB:     DSN(c.cfg),
	})
	return nil
}

// WaitForDatabase retries connecting until the database answers or
// cfg.WaitTimeout elapses
func WaitForDatabase(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	logger.Info("Waiting for database...", zap.String("driver", cfg.Driver))

	c := &connector{cfg: cfg}
	if err := WaitForDB(ctx, c, NewWaitPolicy(cfg.WaitTimeout)); err != nil {
		return nil, err
	}
	return c.conn, nil
}

// Migrate applies all pending embedded migrations
func Migrate(ctx context.Context, dbConn *sqlx.DB) error {
	fsys, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, dbConn.DB, fsys)
	if err != nil {
		return fmt.Errorf("create migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	for _, r := range results {
		logger.Info("Applied migration", zap.String("migration", r.Source.Path), zap.Duration("duration", r.Duration))
	}
	return nil
}

// CreateMigration writes a new timestamped SQL migration skeleton into dir
func CreateMigration(name, dir string) error {
	if name == "" {
		return fmt.Errorf("migration name is required")
	}
	return goose.Create(nil, dir, name, "sql")
}
