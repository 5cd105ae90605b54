package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5" // pgx5:// database driver
	_ "github.com/golang-migrate/migrate/v4/source/file"     // file:// source driver
)

// migrateURL rewrites a postgres:// DSN to the pgx5:// scheme golang-migrate
// uses to select its pgx/v5 driver.
func migrateURL(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") {
		return "pgx5://" + strings.TrimPrefix(dsn, "postgres://")
	}
	return dsn
}

// RunMigrations executes all pending schema migrations from migrationsPath
// (a file:// URL or bare directory path). Called during application startup;
// an up-to-date schema is not an error.
func RunMigrations(dbURL string, migrationsPath string) error {
	if !strings.Contains(migrationsPath, "://") {
		migrationsPath = "file://" + migrationsPath
	}

	m, err := migrate.New(migrationsPath, migrateURL(dbURL))
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return nil
		}
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// RollbackMigration rolls the schema back by steps migrations. Development
// and test tooling only.
func RollbackMigration(dbURL string, migrationsPath string, steps int) error {
	if steps <= 0 {
		return fmt.Errorf("steps must be greater than 0, got %d", steps)
	}
	if !strings.Contains(migrationsPath, "://") {
		migrationsPath = "file://" + migrationsPath
	}

	m, err := migrate.New(migrationsPath, migrateURL(dbURL))
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Steps(-steps); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("no migrations to roll back")
		}
		return fmt.Errorf("failed to roll back migrations: %w", err)
	}
	return nil
}

// MigrationVersion reports the current schema version and dirty flag.
func MigrationVersion(dbURL string, migrationsPath string) (uint, bool, error) {
	if !strings.Contains(migrationsPath, "://") {
		migrationsPath = "file://" + migrationsPath
	}

	m, err := migrate.New(migrationsPath, migrateURL(dbURL))
	if err != nil {
		return 0, false, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}
