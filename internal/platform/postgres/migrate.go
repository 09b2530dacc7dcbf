package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/cuddly-waffle/account-api/internal/platform/postgres/migrations"
	"github.com/pressly/goose/v3"
)

// MigrationTableName is the table goose uses to track applied versions.
const MigrationTableName = "schema_migrations"

// slogGooseLogger adapts slog to goose's logger interface.
type slogGooseLogger struct {
	logger *slog.Logger
}

func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// ErrUnknownMigrationCommand is returned by RunMigrationCommand for an
// unsupported command name.
var ErrUnknownMigrationCommand = errors.New("unknown migration command")

// MigrationCommands lists the commands RunMigrationCommand accepts.
var MigrationCommands = []string{"up", "down", "status", "version"}

func configureGoose(logger *slog.Logger) (*slog.Logger, error) {
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "migrations")

	goose.SetBaseFS(migrations.FS)
	goose.SetTableName(MigrationTableName)
	goose.SetLogger(&slogGooseLogger{logger: log})

	if err := goose.SetDialect("postgres"); err != nil {
		return nil, fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return log, nil
}

// Migrate applies every pending embedded migration to db.
func Migrate(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	log, err := configureGoose(logger)
	if err != nil {
		return err
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		log.Error("migration failed", "error", err)
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to read migration version: %w", err)
	}

	log.Info("migrations applied", "version", version)
	return nil
}

// RunMigrationCommand runs one goose command against db: "up" applies all
// pending migrations, "down" rolls back the latest, "status" and "version"
// only report.
func RunMigrationCommand(ctx context.Context, db *sql.DB, command string, logger *slog.Logger) error {
	if !slices.Contains(MigrationCommands, command) {
		return fmt.Errorf("%w: %q", ErrUnknownMigrationCommand, command)
	}

	log, err := configureGoose(logger)
	if err != nil {
		return err
	}
	log.Info("running migration command", "command", command)

	switch command {
	case "up":
		err = goose.UpContext(ctx, db, ".")
	case "down":
		err = goose.DownContext(ctx, db, ".")
	case "status":
		err = goose.StatusContext(ctx, db, ".")
	case "version":
		err = goose.VersionContext(ctx, db, ".")
	}
	if err != nil {
		return fmt.Errorf("migration command %s failed: %w", command, err)
	}
	return nil
}
