package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// MigrateParams selects the identity store migrations to apply.
type MigrateParams struct {
	Driver           string
	ConnectionString string
	// Dir holds one subdirectory per driver: postgresql and mysql.
	Dir string
	// Steps applies that many migrations forward (positive) or rolls back (negative).
	// Zero applies every pending migration.
	Steps int
}

// RunMigrations migrates the identity store and logs the resulting schema version.
func RunMigrations(logger *slog.Logger, params MigrateParams) error {
	sourceDir, err := migrationsDir(params.Dir, params.Driver)
	if err != nil {
		return err
	}

	logger.Info("running database migrations",
		slog.String("driver", params.Driver),
		slog.String("source", sourceDir),
		slog.Int("steps", params.Steps))

	m, err := migrate.New("file://"+sourceDir, migrationURL(params.Driver, params.ConnectionString))
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer closeMigrate(m, logger)

	if params.Steps == 0 {
		err = m.Up()
	} else {
		err = m.Steps(params.Steps)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		logger.Info("migrations completed, schema is empty")
	case err != nil:
		return fmt.Errorf("failed to read schema version: %w", err)
	default:
		logger.Info("migrations completed", slog.Uint64("version", uint64(version)), slog.Bool("dirty", dirty))
	}
	return nil
}

func migrationsDir(dir, driver string) (string, error) {
	if dir == "" {
		dir = "migrations"
	}
	switch driver {
	case "postgres":
		return filepath.Join(dir, "postgresql"), nil
	case "mysql":
		return filepath.Join(dir, "mysql"), nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

// migrationURL adapts a go-sql-driver DSN to the mysql:// URL golang-migrate expects.
// Postgres connection strings are already URLs.
func migrationURL(driver, connectionString string) string {
	if driver == "mysql" && !strings.HasPrefix(connectionString, "mysql://") {
		return "mysql://" + connectionString
	}
	return connectionString
}
