package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed *.sql
var Files embed.FS

// Run applies pending migrations from the embedded schema files.
// With autoMigrate=false it only reports the current version.
func Run(db *sql.DB, autoMigrate bool) error {
	m, err := newMigrator(db)
	if err != nil {
		return err
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get current migration version: %w", err)
	}

	if dirty {
		// A dirty baseline can be forced; anything later needs an operator.
		if version > 1 {
			return fmt.Errorf("database is dirty at migration version %d, fix it manually", version)
		}
		slog.Warn("[Migrations] Database is in dirty state, forcing baseline version",
			"version", version)
		if err := m.Force(int(version)); err != nil {
			return fmt.Errorf("failed to recover dirty migration state at version %d: %w", version, err)
		}
	}

	if !autoMigrate {
		slog.Info("[Migrations] Auto-migration disabled",
			"current_version", version,
			"dirty", dirty)
		return nil
	}

	slog.Info("[Migrations] Applying schema", "current_version", version)

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			slog.Info("[Migrations] Schema is up to date", "version", version)
			return nil
		}
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	newVersion, _, err := m.Version()
	if err != nil {
		return fmt.Errorf("failed to get updated migration version: %w", err)
	}

	slog.Info("[Migrations] Schema migrated",
		"from_version", version,
		"to_version", newVersion)
	return nil
}

func newMigrator(db *sql.DB) (*migrate.Migrate, error) {
	source, err := iofs.New(Files, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{MigrationsTable: "reportsync_schema_migrations"})
	if err != nil {
		return nil, fmt.Errorf("failed to create database driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, nil
}
