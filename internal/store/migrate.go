package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pressly/goose/v3"

	"github.com/JaimeStill/flipbook/pkg/database"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationFiles embed.FS

// goose keeps its base FS, dialect and logger in package globals.
var gooseMu sync.Mutex

// Migrate applies pending schema versions for dialect. Upgrades are additive;
// a database at version N is brought to the latest version without data loss.
func Migrate(ctx context.Context, conn *sql.DB, dialect database.Dialect, logger *slog.Logger) error {
	gooseDialect, err := toGooseDialect(dialect)
	if err != nil {
		return err
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrationFiles)
	goose.SetLogger(gooseLogger{logger})
	if err := goose.SetDialect(gooseDialect); err != nil {
		return fmt.Errorf("set migration dialect: %w", err)
	}

	if err := goose.UpContext(ctx, conn, "migrations/"+string(dialect)); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

func toGooseDialect(d database.Dialect) (string, error) {
	switch d {
	case database.SQLite:
		return "sqlite3", nil
	case database.Postgres:
		return "postgres", nil
	default:
		return "", fmt.Errorf("no migrations for dialect %q", d)
	}
}

type gooseLogger struct {
	logger *slog.Logger
}

func (l gooseLogger) Printf(format string, v ...any) {
	l.logger.Debug(fmt.Sprintf(format, v...))
}

func (l gooseLogger) Fatalf(format string, v ...any) {
	l.logger.Error(fmt.Sprintf(format, v...))
}
