package commands

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMigrations(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("unsupported driver", func(t *testing.T) {
		err := RunMigrations(logger, MigrateParams{Driver: "sqlite", ConnectionString: "file::memory:"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unsupported database driver "sqlite"`)
	})

	t.Run("invalid connection string", func(t *testing.T) {
		err := RunMigrations(logger, MigrateParams{
			Driver:           "postgres",
			ConnectionString: "invalid-connection-string",
			Dir:              filepath.Join("..", "..", "..", "migrations"),
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create migrate instance")
	})
}

func TestMigrationsDir(t *testing.T) {
	dir, err := migrationsDir("", "postgres")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("migrations", "postgresql"), dir)

	dir, err = migrationsDir("/opt/tokenauth/migrations", "mysql")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/opt/tokenauth/migrations", "mysql"), dir)

	_, err = migrationsDir("", "sqlite")
	assert.Error(t, err)
}

func TestMigrationURL(t *testing.T) {
	tests := []struct {
		name   string
		driver string
		dsn    string
		want   string
	}{
		{"postgres url unchanged", "postgres", "postgres://u:p@localhost:5432/db", "postgres://u:p@localhost:5432/db"},
		{"mysql dsn prefixed", "mysql", "u:p@tcp(localhost:3306)/db", "mysql://u:p@tcp(localhost:3306)/db"},
		{"mysql url unchanged", "mysql", "mysql://u:p@tcp(localhost:3306)/db", "mysql://u:p@tcp(localhost:3306)/db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, migrationURL(tt.driver, tt.dsn))
		})
	}
}
