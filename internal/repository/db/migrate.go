package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"todo_api/internal/logger"
	"todo_api/internal/repository/db/migrations"

	"github.com/pressly/goose/v3"
)

// Migration commands accepted by Migrate.
const (
	CommandUp     = "up"
	CommandDown   = "down"
	CommandStatus = "status"
)

// goose keeps its base FS, dialect and logger in package globals.
var gooseMu sync.Mutex

// Migrate runs a goose command against db using the embedded migrations.
func Migrate(ctx context.Context, db *sql.DB, driver, command string, log *logger.Logger) error {
	dialect, err := gooseDialect(driver)
	if err != nil {
		return err
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(gooseLogger{log: logger.OrNop(log)})
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set goose dialect %q: %w", dialect, err)
	}

	switch command {
	case CommandUp:
		err = goose.UpContext(ctx, db, ".")
	case CommandDown:
		err = goose.DownContext(ctx, db, ".")
	case CommandStatus:
		err = goose.StatusContext(ctx, db, ".")
	default:
		return fmt.Errorf("unknown migrate command %q", command)
	}
	if err != nil {
		return fmt.Errorf("migrate %s: %w", command, err)
	}
	return nil
}

func gooseDialect(driver string) (string, error) {
	switch driver {
	case DriverSQLite, "":
		return "sqlite3", nil
	case DriverPostgres:
		return "pgx", nil
	default:
		return "", fmt.Errorf("unsupported db driver %q", driver)
	}
}

// gooseLogger routes goose output into the application logger.
type gooseLogger struct {
	log *logger.Logger
}

func (g gooseLogger) Printf(format string, v ...interface{}) {
	g.log.Infof(strings.TrimSpace(format), v...)
}

// Fatalf is reported as an error; goose returns the same failure to Migrate.
func (g gooseLogger) Fatalf(format string, v ...interface{}) {
	g.log.Errorf(strings.TrimSpace(format), v...)
}
