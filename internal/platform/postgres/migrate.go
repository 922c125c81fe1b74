package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	// MigrationTableName is the goose version table.
	MigrationTableName = "schema_migrations"

	migrationsDir = "migrations"

	// SourceMigrationsDir is where "migrate create" writes new files,
	// relative to the repository root.
	SourceMigrationsDir = "internal/platform/postgres/migrations"
)

// goose keeps its configuration in package globals.
var gooseMu sync.Mutex

// Migrator applies the embedded schema migrations with goose.
type Migrator struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewMigrator returns a Migrator for db. A nil logger uses slog.Default().
func NewMigrator(db *sql.DB, logger *slog.Logger) *Migrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Migrator{db: db, logger: logger.With(slog.String("component", "migrations"))}
}

// Run executes one of: up, down, reset, status, version, create NAME.
func (m *Migrator) Run(ctx context.Context, command string, args ...string) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	log := m.logger.With(
		slog.String("correlation_id", uuid.NewString()),
		slog.String("command", command),
	)

	goose.SetLogger(&slogGooseLogger{logger: log})
	goose.SetTableName(MigrationTableName)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	if command == "create" {
		if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
			return errors.New("migration name is required for create")
		}
		goose.SetBaseFS(nil)
		defer goose.SetBaseFS(migrationsFS)
		return goose.Create(nil, SourceMigrationsDir, args[0], "sql")
	}

	goose.SetBaseFS(migrationsFS)
	log.Info("running migrations")

	var err error
	switch command {
	case "up":
		err = goose.UpContext(ctx, m.db, migrationsDir)
	case "down":
		err = goose.DownContext(ctx, m.db, migrationsDir)
	case "reset":
		err = goose.ResetContext(ctx, m.db, migrationsDir)
	case "status":
		err = goose.StatusContext(ctx, m.db, migrationsDir)
	case "version":
		var v int64
		v, err = goose.GetDBVersionContext(ctx, m.db)
		if err == nil {
			log.Info("current migration version", slog.Int64("version", v))
		}
	default:
		return fmt.Errorf("unknown migration command %q", command)
	}
	if err != nil {
		log.Error("migration failed", slog.String("error", err.Error()))
		return fmt.Errorf("migration %s failed: %w", command, err)
	}

	log.Info("migrations finished")
	return nil
}

// slogGooseLogger adapts slog to goose.Logger. Fatalf logs at error level
// instead of exiting so the caller decides how to fail.
type slogGooseLogger struct {
	logger *slog.Logger
}

func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
}
