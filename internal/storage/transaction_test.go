package storage

import (
	"context"
	"database/sql"
	"errors"
	"testing"
)

func countUsersInDB(t *testing.T, db *DB) int {
	t.Helper()
	var n int
	if err := db.Conn().QueryRow("SELECT COUNT(*) FROM users").Scan(&n); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	return n
}

func TestWithTransaction_Commit(t *testing.T) {
	db := OpenTestDB(t)

	err := db.WithTransaction(context.Background(), func(tx *sql.Tx) error {
		_, err := tx.Exec(`INSERT INTO users (id, display_name, created_at) VALUES ('user_a', 'Annie', CURRENT_TIMESTAMP)`)
		return err
	})
	if err != nil {
		t.Fatalf("transaction failed: %v", err)
	}
	if n := countUsersInDB(t, db); n != 1 {
		t.Errorf("expected 1 user, got %d", n)
	}
}

func TestWithTransaction_Rollback(t *testing.T) {
	db := OpenTestDB(t)
	sentinel := errors.New("abort")

	err := db.WithTransaction(context.Background(), func(tx *sql.Tx) error {
		if _, err := tx.Exec(`INSERT INTO users (id, display_name, created_at) VALUES ('user_a', 'Annie', CURRENT_TIMESTAMP)`); err != nil {
			return err
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error, got %v", err)
	}
	if n := countUsersInDB(t, db); n != 0 {
		t.Errorf("expected rollback, found %d users", n)
	}
}

func TestWithTransaction_Panic(t *testing.T) {
	db := OpenTestDB(t)

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic to propagate")
		}
		if n := countUsersInDB(t, db); n != 0 {
			t.Errorf("expected rollback after panic, found %d users", n)
		}
	}()

	_ = db.WithTransaction(context.Background(), func(tx *sql.Tx) error {
		if _, err := tx.Exec(`INSERT INTO users (id, display_name, created_at) VALUES ('user_a', 'Annie', CURRENT_TIMESTAMP)`); err != nil {
			return err
		}
		panic("boom")
	})
}
