package repository

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// setupTestDB creates an in-memory database with the companion schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	// Each connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	schema := `
		CREATE TABLE cards (
			id TEXT PRIMARY KEY,
			number TEXT NOT NULL DEFAULT '',
			name TEXT NOT NULL,
			type TEXT NOT NULL DEFAULT '',
			domains TEXT NOT NULL DEFAULT '[]',
			energy_cost INTEGER,
			power_cost_json TEXT,
			might INTEGER,
			keywords TEXT NOT NULL DEFAULT '[]',
			tags TEXT NOT NULL DEFAULT '[]',
			rules_text TEXT NOT NULL DEFAULT '',
			is_signature INTEGER NOT NULL DEFAULT 0,
			champion_tag TEXT,
			is_battlefield INTEGER NOT NULL DEFAULT 0,
			is_rune INTEGER NOT NULL DEFAULT 0,
			set_code TEXT NOT NULL DEFAULT '',
			rarity TEXT,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE users (
			id TEXT PRIMARY KEY,
			display_name TEXT NOT NULL,
			subject_hash TEXT,
			created_at DATETIME NOT NULL
		);
		CREATE UNIQUE INDEX idx_users_display_name ON users(display_name COLLATE NOCASE);
		CREATE UNIQUE INDEX idx_users_subject_hash ON users(subject_hash);

		CREATE TABLE decks (
			id TEXT PRIMARY KEY,
			partition TEXT NOT NULL DEFAULT 'private',
			owner_user_id TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT,
			legend_champion_tag TEXT NOT NULL,
			legend_domains TEXT NOT NULL DEFAULT '[]',
			is_public INTEGER NOT NULL DEFAULT 0,
			count_main INTEGER NOT NULL DEFAULT 0,
			count_side INTEGER NOT NULL DEFAULT 0,
			count_runes INTEGER NOT NULL DEFAULT 0,
			version INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			CHECK(partition IN ('public', 'private'))
		);

		CREATE TABLE deck_items (
			id TEXT PRIMARY KEY,
			partition TEXT NOT NULL DEFAULT 'private',
			deck_id TEXT NOT NULL,
			card_id TEXT NOT NULL,
			section TEXT NOT NULL,
			qty INTEGER NOT NULL,
			FOREIGN KEY (deck_id) REFERENCES decks(id) ON DELETE CASCADE,
			UNIQUE(deck_id, card_id, section),
			CHECK(section IN ('main', 'side', 'rune')),
			CHECK(qty >= 1)
		);

		CREATE TABLE votes (
			id TEXT PRIMARY KEY,
			deck_id TEXT NOT NULL,
			voter_user_id TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (deck_id) REFERENCES decks(id) ON DELETE CASCADE,
			UNIQUE(deck_id, voter_user_id)
		);

		CREATE TABLE game_sessions (
			id TEXT PRIMARY KEY,
			owner_user_id TEXT NOT NULL,
			player1 TEXT NOT NULL,
			player2 TEXT NOT NULL,
			is_complete INTEGER NOT NULL DEFAULT 0,
			winner INTEGER,
			created_at DATETIME NOT NULL,
			completed_at DATETIME
		);
	`

	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Error closing database: %v", err)
		}
	})
	return db
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
