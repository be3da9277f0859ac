// AngelaMos | 2026
// migrate.go

package core

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Migrate applies pending schema migrations over a dedicated connection so
// the application pool is left untouched.
func Migrate(databaseURL string) (uint, error) {
	sqlDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return 0, fmt.Errorf("open migration connection: %w", err)
	}

	driver, err := postgres.WithInstance(sqlDB, &postgres.Config{})
	if err != nil {
		_ = sqlDB.Close() //nolint:errcheck // cleanup on driver failure
		return 0, fmt.Errorf("create migration driver: %w", err)
	}

	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		_ = sqlDB.Close() //nolint:errcheck // cleanup on source failure
		return 0, fmt.Errorf("load migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		_ = sqlDB.Close() //nolint:errcheck // cleanup on init failure
		return 0, fmt.Errorf("init migrator: %w", err)
	}
	defer m.Close() //nolint:errcheck // closes source and connection

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("apply migrations: %w", err)
	}

	version, _, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, fmt.Errorf("read migration version: %w", err)
	}

	return version, nil
}
