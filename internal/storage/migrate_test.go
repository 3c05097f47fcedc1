package storage

import (
	"database/sql"
	"path/filepath"
	"testing"
)

func TestMigrationManager_Up(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migration-test.db")

	mgr, err := NewMigrationManager(dbPath)
	if err != nil {
		t.Fatalf("Failed to create migration manager: %v", err)
	}
	if err := mgr.Up(); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	// A second Up is a no-op.
	if err := mgr.Up(); err != nil {
		t.Fatalf("Second Up failed: %v", err)
	}

	version, dirty, err := mgr.Version()
	if err != nil {
		t.Fatalf("Failed to get migration version: %v", err)
	}
	if dirty {
		t.Error("Database is in dirty state after migrations")
	}
	if version < 1 {
		t.Errorf("Expected migration version >= 1, got %d", version)
	}

	if err := mgr.Close(); err != nil {
		t.Fatalf("Failed to close migration manager: %v", err)
	}
}

func TestMigrationManager_DownAndUp(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "down-test.db")

	mgr, err := NewMigrationManager(dbPath)
	if err != nil {
		t.Fatalf("Failed to create migration manager: %v", err)
	}
	defer mgr.Close()

	if err := mgr.Up(); err != nil {
		t.Fatalf("Up failed: %v", err)
	}
	if err := mgr.Down(); err != nil {
		t.Fatalf("Down failed: %v", err)
	}

	version, _, err := mgr.Version()
	if err != nil {
		t.Fatalf("Version failed: %v", err)
	}
	if version != 0 {
		t.Errorf("expected version 0 after Down, got %d", version)
	}

	if err := mgr.Goto(1); err != nil {
		t.Fatalf("Goto failed: %v", err)
	}
}

func TestMigrations_CreateTables(t *testing.T) {
	db := OpenTestDB(t)

	tables := []string{"cards", "decks", "deck_items", "votes", "users", "game_sessions"}
	for _, table := range tables {
		var name string
		err := db.Conn().QueryRow(`
			SELECT name FROM sqlite_master
			WHERE type='table' AND name = ?
		`, table).Scan(&name)
		if err != nil {
			if err == sql.ErrNoRows {
				t.Errorf("table %s does not exist after migration", table)
				continue
			}
			t.Fatalf("Failed to query for table %s: %v", table, err)
		}
	}

	columns := []string{"partition", "version", "count_main", "count_side", "count_runes", "legend_domains"}
	for _, col := range columns {
		var name string
		err := db.Conn().QueryRow(`
			SELECT name FROM pragma_table_info('decks') WHERE name = ?
		`, col).Scan(&name)
		if err != nil {
			t.Errorf("column decks.%s missing: %v", col, err)
		}
	}
}

func TestDatabaseURL(t *testing.T) {
	if got := databaseURL("/var/lib/riftbound/data.db"); got != "sqlite:///var/lib/riftbound/data.db" {
		t.Errorf("unexpected URL %s", got)
	}
	if got := databaseURL("data.db"); got != "sqlite://data.db" {
		t.Errorf("unexpected URL %s", got)
	}
}
