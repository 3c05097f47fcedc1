package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/ramonehamilton/Riftbound-Companion/internal/storage"
	"github.com/ramonehamilton/Riftbound-Companion/internal/storage/models"
)

// DeckQuery selects decks within one partition.
type DeckQuery struct {
	Partition   models.Partition
	OwnerUserID string
	IDs         []string

	// Limit caps the number of rows. Zero means no limit.
	Limit int
}

// DeckRepository handles database operations for decks.
type DeckRepository interface {
	// Create inserts a new deck into its partition and sets Version to 1.
	Create(ctx context.Context, deck *models.Deck) error

	// Update saves deck metadata and counters. The stored version must equal
	// deck.Version; on success deck.Version is incremented. A stale version
	// returns storage.ErrConflict and a missing deck storage.ErrNotFound.
	Update(ctx context.Context, deck *models.Deck) error

	// GetByID retrieves a deck from a partition. Returns nil if not found.
	GetByID(ctx context.Context, id string, partition models.Partition) (*models.Deck, error)

	// Find retrieves a deck from whichever partition holds it. Returns nil if not found.
	Find(ctx context.Context, id string) (*models.Deck, error)

	// Query retrieves decks, most recently updated first.
	Query(ctx context.Context, q DeckQuery) ([]*models.Deck, error)

	// Move changes the deck's partition and public flag, bumping its version.
	Move(ctx context.Context, deck *models.Deck, to models.Partition) error

	// Delete removes a deck from a partition. Items and votes cascade.
	Delete(ctx context.Context, id string, partition models.Partition) error

	// DeleteBatch removes several decks from a partition.
	DeleteBatch(ctx context.Context, ids []string, partition models.Partition) error
}

type deckRepository struct {
	db Querier
}

// NewDeckRepository creates a new deck repository.
func NewDeckRepository(db Querier) DeckRepository {
	return &deckRepository{db: db}
}

const deckColumns = `
	id, owner_user_id, title, description, legend_champion_tag, legend_domains,
	is_public, count_main, count_side, count_runes, version, created_at, updated_at`

func (r *deckRepository) Create(ctx context.Context, deck *models.Deck) error {
	domains, err := encodeStrings(deck.LegendDomains)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO decks (
			partition, ` + deckColumns + `
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	deck.Version = 1
	_, err = r.db.ExecContext(ctx, query,
		string(deck.Partition()),
		deck.ID,
		deck.OwnerUserID,
		deck.Title,
		deck.Description,
		deck.LegendChampionTag,
		domains,
		boolToInt(deck.IsPublic),
		deck.CountMain,
		deck.CountSide,
		deck.CountRunes,
		deck.Version,
		deck.CreatedAt,
		deck.UpdatedAt,
	)
	if err != nil {
		return wrap(err, "failed to create deck")
	}
	return nil
}

func (r *deckRepository) Update(ctx context.Context, deck *models.Deck) error {
	domains, err := encodeStrings(deck.LegendDomains)
	if err != nil {
		return err
	}

	deck.UpdatedAt = time.Now().UTC()
	query := `
		UPDATE decks SET
			title = ?,
			description = ?,
			legend_champion_tag = ?,
			legend_domains = ?,
			count_main = ?,
			count_side = ?,
			count_runes = ?,
			updated_at = ?,
			version = version + 1
		WHERE id = ? AND partition = ? AND version = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		deck.Title,
		deck.Description,
		deck.LegendChampionTag,
		domains,
		deck.CountMain,
		deck.CountSide,
		deck.CountRunes,
		deck.UpdatedAt,
		deck.ID,
		string(deck.Partition()),
		deck.Version,
	)
	if err != nil {
		return wrap(err, "failed to update deck")
	}

	if err := r.checkVersioned(ctx, result, deck.ID, deck.Partition()); err != nil {
		return err
	}
	deck.Version++
	return nil
}

// checkVersioned distinguishes a missing deck from a stale version when a
// guarded write touched no rows.
func (r *deckRepository) checkVersioned(ctx context.Context, result sql.Result, id string, partition models.Partition) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return wrap(err, "failed to get rows affected")
	}
	if affected > 0 {
		return nil
	}

	existing, err := r.GetByID(ctx, id, partition)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("deck %s: %w", id, storage.ErrNotFound)
	}
	return fmt.Errorf("deck %s is at version %d: %w", id, existing.Version, storage.ErrConflict)
}

func (r *deckRepository) GetByID(ctx context.Context, id string, partition models.Partition) (*models.Deck, error) {
	query := `SELECT ` + deckColumns + ` FROM decks WHERE id = ? AND partition = ?`

	deck, err := scanDeck(r.db.QueryRowContext(ctx, query, id, string(partition)))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, wrap(err, "failed to get deck %s", id)
	}
	return deck, nil
}

func (r *deckRepository) Find(ctx context.Context, id string) (*models.Deck, error) {
	query := `SELECT ` + deckColumns + ` FROM decks WHERE id = ?`

	deck, err := scanDeck(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, wrap(err, "failed to find deck %s", id)
	}
	return deck, nil
}

func (r *deckRepository) Query(ctx context.Context, q DeckQuery) ([]*models.Deck, error) {
	where := []string{"partition = ?"}
	args := []interface{}{string(q.Partition)}

	if q.OwnerUserID != "" {
		where = append(where, "owner_user_id = ?")
		args = append(args, q.OwnerUserID)
	}
	if len(q.IDs) > 0 {
		where = append(where, "id IN ("+placeholders(len(q.IDs))+")")
		args = append(args, stringArgs(q.IDs)...)
	}

	query := `SELECT ` + deckColumns + ` FROM decks WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY updated_at DESC, id`
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrap(err, "failed to query decks")
	}
	defer func() { _ = rows.Close() }()

	var decks []*models.Deck
	for rows.Next() {
		deck, err := scanDeck(rows)
		if err != nil {
			return nil, wrap(err, "failed to scan deck")
		}
		decks = append(decks, deck)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(err, "error iterating decks")
	}
	return decks, nil
}

func (r *deckRepository) Move(ctx context.Context, deck *models.Deck, to models.Partition) error {
	from := deck.Partition()
	if from == to {
		return nil
	}

	now := time.Now().UTC()
	query := `
		UPDATE decks SET
			partition = ?,
			is_public = ?,
			updated_at = ?,
			version = version + 1
		WHERE id = ? AND partition = ? AND version = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		string(to),
		boolToInt(to == models.PartitionPublic),
		now,
		deck.ID,
		string(from),
		deck.Version,
	)
	if err != nil {
		return wrap(err, "failed to move deck")
	}
	if err := r.checkVersioned(ctx, result, deck.ID, from); err != nil {
		return err
	}

	deck.IsPublic = to == models.PartitionPublic
	deck.UpdatedAt = now
	deck.Version++
	return nil
}

func (r *deckRepository) Delete(ctx context.Context, id string, partition models.Partition) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM decks WHERE id = ? AND partition = ?`, id, string(partition))
	if err != nil {
		return wrap(err, "failed to delete deck")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return wrap(err, "failed to get rows affected")
	}
	if affected == 0 {
		return fmt.Errorf("deck %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

func (r *deckRepository) DeleteBatch(ctx context.Context, ids []string, partition models.Partition) error {
	if len(ids) == 0 {
		return nil
	}
	query := `DELETE FROM decks WHERE partition = ? AND id IN (` + placeholders(len(ids)) + `)`
	args := append([]interface{}{string(partition)}, stringArgs(ids)...)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return wrap(err, "failed to delete decks")
	}
	return nil
}

func scanDeck(s scanner) (*models.Deck, error) {
	deck := &models.Deck{}
	var description sql.NullString
	var domains string
	var isPublic int

	err := s.Scan(
		&deck.ID,
		&deck.OwnerUserID,
		&deck.Title,
		&description,
		&deck.LegendChampionTag,
		&domains,
		&isPublic,
		&deck.CountMain,
		&deck.CountSide,
		&deck.CountRunes,
		&deck.Version,
		&deck.CreatedAt,
		&deck.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		deck.Description = &description.String
	}
	if deck.LegendDomains, err = decodeStrings(domains); err != nil {
		return nil, err
	}
	deck.IsPublic = isPublic == 1
	return deck, nil
}
