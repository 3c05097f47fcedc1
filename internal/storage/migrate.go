package storage

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrationManager handles database schema migrations.
type MigrationManager struct {
	migrate *migrate.Migrate
}

// NewMigrationManager creates a migration manager for the SQLite file at dbPath.
func NewMigrationManager(dbPath string) (*MigrationManager, error) {
	migrationsDir, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to access migrations directory: %w", err)
	}

	sourceDriver, err := iofs.New(migrationsDir, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to create source driver: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", sourceDriver, databaseURL(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to create migration instance: %w", err)
	}
	m.Log = migrateLogger{}

	return &MigrationManager{migrate: m}, nil
}

// databaseURL converts a file path to a sqlite:// URL. Windows paths get a
// leading slash so the drive letter is not read as a host.
func databaseURL(dbPath string) string {
	normalized := filepath.ToSlash(dbPath)
	if filepath.IsAbs(dbPath) && normalized[0] != '/' {
		normalized = "/" + normalized
	}
	return "sqlite://" + normalized
}

// Up applies all pending migrations.
func (mm *MigrationManager) Up() error {
	err := mm.migrate.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// Down rolls back every migration.
func (mm *MigrationManager) Down() error {
	err := mm.migrate.Down()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to rollback migrations: %w", err)
	}
	return nil
}

// Steps applies n migrations. Positive n applies up migrations, negative applies down.
func (mm *MigrationManager) Steps(n int) error {
	err := mm.migrate.Steps(n)
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to migrate %d steps: %w", n, err)
	}
	return nil
}

// Version returns the current migration version and dirty state. A database
// with no migrations applied reports version 0.
func (mm *MigrationManager) Version() (version uint, dirty bool, err error) {
	version, dirty, err = mm.migrate.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, fmt.Errorf("failed to get migration version: %w", err)
	}
	return version, dirty, nil
}

// Goto migrates to a specific version.
func (mm *MigrationManager) Goto(version uint) error {
	err := mm.migrate.Migrate(version)
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to migrate to version %d: %w", version, err)
	}
	return nil
}

// Force sets the migration version without running migrations.
// Only for recovering from a failed migration.
func (mm *MigrationManager) Force(version int) error {
	if err := mm.migrate.Force(version); err != nil {
		return fmt.Errorf("failed to force version %d: %w", version, err)
	}
	return nil
}

// Close closes the migration manager and releases resources.
func (mm *MigrationManager) Close() error {
	srcErr, dbErr := mm.migrate.Close()
	if srcErr != nil {
		return fmt.Errorf("failed to close source: %w", srcErr)
	}
	if dbErr != nil {
		return fmt.Errorf("failed to close database: %w", dbErr)
	}
	return nil
}

// MigrateUp applies all pending migrations to the database at dbPath.
func MigrateUp(dbPath string) (err error) {
	mgr, err := NewMigrationManager(dbPath)
	if err != nil {
		return fmt.Errorf("failed to create migration manager: %w", err)
	}
	defer func() {
		if closeErr := mgr.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if err := mgr.Up(); err != nil {
		return err
	}

	version, _, err := mgr.Version()
	if err != nil {
		return err
	}
	log.Printf("Database schema at version %d", version)
	return nil
}

// migrateLogger forwards golang-migrate's verbose output to the standard logger.
type migrateLogger struct{}

func (migrateLogger) Printf(format string, v ...interface{}) {
	log.Printf("migrate: "+format, v...)
}

func (migrateLogger) Verbose() bool {
	return false
}
