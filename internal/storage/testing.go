package storage

import (
	"database/sql"
	"path/filepath"
	"testing"
)

// NewTestDB wraps an already-open sql.DB for use in other packages' tests.
func NewTestDB(sqlDB *sql.DB) *DB {
	return &DB{conn: sqlDB}
}

// OpenTestDB creates a migrated database in a temporary directory and closes
// it when the test ends.
func OpenTestDB(tb testing.TB) *DB {
	tb.Helper()

	config := DefaultConfig(filepath.Join(tb.TempDir(), "test.db"))
	config.AutoMigrate = true

	db, err := Open(config)
	if err != nil {
		tb.Fatalf("Failed to open test database: %v", err)
	}
	tb.Cleanup(func() {
		_ = db.Close()
	})
	return db
}
