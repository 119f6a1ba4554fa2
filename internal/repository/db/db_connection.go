// Package db opens the backing SQL store and keeps its schema current.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	"todo_api/internal/logger"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Supported drivers, as named in configuration.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const (
	sqliteDriverName = "sqlite"
	pgxDriverName    = "pgx"

	defaultSQLitePath = "app.db"
	sqliteBusyTimeout = 5000 // ms
)

// Options describe how to reach the store.
type Options struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// Open connects to the store described by opts and verifies it is reachable.
func Open(ctx context.Context, opts Options) (*sql.DB, error) {
	switch opts.Driver {
	case DriverSQLite, "":
		return openSQLite(ctx, opts.DSN)
	case DriverPostgres:
		return openPostgres(ctx, opts)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", opts.Driver)
	}
}

// InitDB opens the store and applies every pending migration.
func InitDB(ctx context.Context, opts Options, log *logger.Logger) (*sql.DB, error) {
	db, err := Open(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := Migrate(ctx, db, opts.Driver, CommandUp, log); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// sqliteDSN turns a file path (or an existing "file:" URI) into a DSN that
// applies the connection pragmas on every new connection.
func sqliteDSN(path string) string {
	if path == "" {
		path = defaultSQLitePath
	}
	if !strings.HasPrefix(path, "file:") {
		path = "file:" + path
	}
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", sqliteBusyTimeout))
	q.Set("_time_format", "sqlite")

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + q.Encode()
}

func openSQLite(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open(sqliteDriverName, sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %q: %w", path, err)
	}

	// Conservative pool settings for SQLite
	db.SetMaxOpenConns(1) // SQLite is not great with many writers
	db.SetMaxIdleConns(1)

	// Fail fast if the DB cannot be reached
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return db, nil
}

func openPostgres(ctx context.Context, opts Options) (*sql.DB, error) {
	if opts.DSN == "" {
		return nil, fmt.Errorf("postgres requires a dsn")
	}
	db, err := sql.Open(pgxDriverName, opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
		db.SetMaxIdleConns(opts.MaxOpenConns)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}
