package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// RunMigrations applies every pending migration found in dir. A dirty state
// left by a crashed run is forced back one version and retried once.
func RunMigrations(db *sql.DB, dir string, logger *slog.Logger) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+ResolveMigrationsPath(dir), "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	err = m.Up()
	switch {
	case err == nil:
	case errors.Is(err, migrate.ErrNoChange):
		logger.Info("Database schema is up to date")
		return nil
	case strings.Contains(err.Error(), "Dirty database"):
		if err := recoverDirty(m, logger); err != nil {
			return err
		}
	default:
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, dirty, _ := m.Version()
	logger.Info("Migrations applied", "version", version, "dirty", dirty)
	return nil
}

func recoverDirty(m *migrate.Migrate, logger *slog.Logger) error {
	version, dirty, err := m.Version()
	if err != nil || !dirty || version == 0 {
		return fmt.Errorf("failed to run migrations: dirty database at version %d", version)
	}

	logger.Warn("Dirty migration state, retrying from previous version", "version", version)
	if err := m.Force(int(version) - 1); err != nil {
		return fmt.Errorf("failed to force migration version: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations after dirty fix: %w", err)
	}
	return nil
}

// ResolveMigrationsPath returns dir if it exists, otherwise the first
// "migrations" directory found next to the executable or two levels up.
func ResolveMigrationsPath(dir string) string {
	if dir != "" && isDir(dir) {
		return dir
	}

	execPath, err := os.Executable()
	if err != nil {
		return dir
	}
	execDir := filepath.Dir(execPath)

	for _, candidate := range []string{
		filepath.Join(execDir, "migrations"),
		filepath.Join(execDir, "..", "..", "migrations"),
	} {
		if isDir(candidate) {
			return candidate
		}
	}
	return dir
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
