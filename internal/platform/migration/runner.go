// Copyright (c) 2026 Gukkan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package migration provisions the games and library_entries tables on a
// self-managed PostgreSQL.
//
// The hosted backend owns its own schema, so this only runs for the direct
// postgres library backend when MIGRATE_ON_START is set.
package migration

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Outcome reports the schema version before and after [Up].
type Outcome struct {
	From    uint
	To      uint
	Applied bool
}

// Up applies every pending migration found under path.
//
// A dirty schema is refused; it needs a manual `migrate force`.
func Up(dsn, path string, logger *slog.Logger) (Outcome, error) {
	migrator, err := migrate.New(SourceURL(path), DatabaseURL(dsn))
	if err != nil {
		return Outcome{}, fmt.Errorf("migration_init_failed: %w", err)
	}
	defer func() {
		if sourceErr, databaseErr := migrator.Close(); sourceErr != nil || databaseErr != nil {
			logger.Warn("migration_close_failed", slog.Any("error", errors.Join(sourceErr, databaseErr)))
		}
	}()
	migrator.Log = slogAdapter{logger: logger}

	from, dirty, err := migrator.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		from = 0
	case err != nil:
		return Outcome{}, fmt.Errorf("migration_version_failed: %w", err)
	case dirty:
		return Outcome{From: from}, fmt.Errorf("migration_dirty: schema stuck at version %d", from)
	}

	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return Outcome{From: from}, fmt.Errorf("migration_up_failed: %w", err)
	}

	to, _, err := migrator.Version()
	if err != nil {
		return Outcome{From: from}, fmt.Errorf("migration_version_failed: %w", err)
	}

	outcome := Outcome{From: from, To: to, Applied: to != from}
	logger.Info("migration_finished",
		slog.Int("from_version", int(outcome.From)),
		slog.Int("to_version", int(outcome.To)),
		slog.Bool("applied", outcome.Applied),
	)
	return outcome, nil
}

// DatabaseURL rewrites postgres:// and postgresql:// URLs to the pgx5://
// scheme the driver registers. Other DSNs pass through unchanged.
func DatabaseURL(dsn string) string {
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if rest, ok := strings.CutPrefix(dsn, prefix); ok {
			return "pgx5://" + rest
		}
	}
	return dsn
}

// SourceURL turns a directory into a file:// source URL.
func SourceURL(path string) string {
	if strings.Contains(path, "://") {
		return path
	}
	return "file://" + path
}

type slogAdapter struct {
	logger *slog.Logger
}

func (adapter slogAdapter) Printf(format string, args ...any) {
	adapter.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (adapter slogAdapter) Verbose() bool { return false }
