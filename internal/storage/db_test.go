package storage

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig("test.db")

	if config.Path != "test.db" {
		t.Errorf("expected path 'test.db', got '%s'", config.Path)
	}
	if config.MaxOpenConns != 25 {
		t.Errorf("expected MaxOpenConns 25, got %d", config.MaxOpenConns)
	}
	if config.MaxIdleConns != 5 {
		t.Errorf("expected MaxIdleConns 5, got %d", config.MaxIdleConns)
	}
	if config.ConnMaxLifetime != 5*time.Minute {
		t.Errorf("expected ConnMaxLifetime 5m, got %v", config.ConnMaxLifetime)
	}
	if config.BusyTimeout != 5*time.Second {
		t.Errorf("expected BusyTimeout 5s, got %v", config.BusyTimeout)
	}
	if config.JournalMode != "WAL" {
		t.Errorf("expected JournalMode 'WAL', got '%s'", config.JournalMode)
	}
	if config.Synchronous != "NORMAL" {
		t.Errorf("expected Synchronous 'NORMAL', got '%s'", config.Synchronous)
	}
}

func TestConfigDSN(t *testing.T) {
	dsn := DefaultConfig("/tmp/riftbound.db").dsn()

	if !strings.HasPrefix(dsn, "file:/tmp/riftbound.db?") {
		t.Errorf("unexpected DSN prefix: %s", dsn)
	}
	for _, pragma := range []string{"busy_timeout%285000%29", "foreign_keys%281%29", "journal_mode%28WAL%29", "synchronous%28NORMAL%29"} {
		if !strings.Contains(dsn, pragma) {
			t.Errorf("DSN %s missing pragma %s", dsn, pragma)
		}
	}

	memory := DefaultConfig(":memory:").dsn()
	if strings.Contains(memory, "journal_mode") {
		t.Errorf("in-memory DSN should not set journal mode: %s", memory)
	}
}

func TestOpen(t *testing.T) {
	db, err := Open(DefaultConfig(":memory:"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		t.Errorf("failed to ping database: %v", err)
	}
	if db.Conn() == nil {
		t.Error("expected non-nil connection")
	}

	var fk int
	if err := db.Conn().QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatalf("failed to read foreign_keys pragma: %v", err)
	}
	if fk != 1 {
		t.Errorf("expected foreign keys enabled, got %d", fk)
	}
}

func TestOpenWithNilConfig(t *testing.T) {
	if _, err := Open(nil); err == nil {
		t.Error("expected error when opening with nil config")
	}
}

func TestOpenAutoMigrateRequiresFile(t *testing.T) {
	config := DefaultConfig(":memory:")
	config.AutoMigrate = true

	if _, err := Open(config); err == nil {
		t.Error("expected error for auto-migrate on in-memory database")
	}
}

func TestOpenCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "riftbound.db")

	db, err := Open(DefaultConfig(path))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()
}

func TestClose(t *testing.T) {
	db, err := Open(DefaultConfig(":memory:"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	if err := db.Close(); err != nil {
		t.Errorf("failed to close database: %v", err)
	}
	if err := db.Ping(); err == nil {
		t.Error("expected error when pinging closed database")
	}
}
