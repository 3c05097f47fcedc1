package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/ramonehamilton/Riftbound-Companion/internal/storage/models"
)

// DeckItemQuery selects items of one deck. Section and CardID narrow further.
type DeckItemQuery struct {
	DeckID  string
	Section models.Section
	CardID  string
}

// DeckItemRepository handles database operations for deck items.
type DeckItemRepository interface {
	// GetByID retrieves an item by its derived ID. Returns nil if not found.
	GetByID(ctx context.Context, id string) (*models.DeckItem, error)

	// ListByDeck retrieves all items of a deck ordered by section then card.
	ListByDeck(ctx context.Context, deckID string) ([]*models.DeckItem, error)

	// Query retrieves items matching the query.
	Query(ctx context.Context, q DeckItemQuery) ([]*models.DeckItem, error)

	// SaveBatch inserts items or replaces the quantity of existing ones.
	SaveBatch(ctx context.Context, items []*models.DeckItem, partition models.Partition) error

	// DeleteBatch removes items by ID.
	DeleteBatch(ctx context.Context, ids []string) error

	// DeleteByDeck removes every item of a deck.
	DeleteByDeck(ctx context.Context, deckID string) error

	// Move changes the partition of every item of a deck.
	Move(ctx context.Context, deckID string, to models.Partition) error
}

type deckItemRepository struct {
	db Querier
}

// NewDeckItemRepository creates a new deck item repository.
func NewDeckItemRepository(db Querier) DeckItemRepository {
	return &deckItemRepository{db: db}
}

const deckItemColumns = `id, deck_id, card_id, section, qty`

func (r *deckItemRepository) GetByID(ctx context.Context, id string) (*models.DeckItem, error) {
	query := `SELECT ` + deckItemColumns + ` FROM deck_items WHERE id = ?`

	item, err := scanDeckItem(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, wrap(err, "failed to get deck item %s", id)
	}
	return item, nil
}

func (r *deckItemRepository) ListByDeck(ctx context.Context, deckID string) ([]*models.DeckItem, error) {
	return r.Query(ctx, DeckItemQuery{DeckID: deckID})
}

func (r *deckItemRepository) Query(ctx context.Context, q DeckItemQuery) ([]*models.DeckItem, error) {
	where := []string{"deck_id = ?"}
	args := []interface{}{q.DeckID}

	if q.Section != "" {
		where = append(where, "section = ?")
		args = append(args, string(q.Section))
	}
	if q.CardID != "" {
		where = append(where, "card_id = ?")
		args = append(args, q.CardID)
	}

	query := `SELECT ` + deckItemColumns + ` FROM deck_items WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY section, card_id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrap(err, "failed to query deck items")
	}
	defer func() { _ = rows.Close() }()

	var items []*models.DeckItem
	for rows.Next() {
		item, err := scanDeckItem(rows)
		if err != nil {
			return nil, wrap(err, "failed to scan deck item")
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(err, "error iterating deck items")
	}
	return items, nil
}

func (r *deckItemRepository) SaveBatch(ctx context.Context, items []*models.DeckItem, partition models.Partition) error {
	query := `
		INSERT INTO deck_items (partition, ` + deckItemColumns + `)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			qty = excluded.qty,
			partition = excluded.partition
	`

	for _, item := range items {
		_, err := r.db.ExecContext(ctx, query,
			string(partition),
			item.ID,
			item.DeckID,
			item.CardID,
			string(item.Section),
			item.Qty,
		)
		if err != nil {
			return wrap(err, "failed to save deck item %s", item.ID)
		}
	}
	return nil
}

func (r *deckItemRepository) DeleteBatch(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	query := `DELETE FROM deck_items WHERE id IN (` + placeholders(len(ids)) + `)`
	if _, err := r.db.ExecContext(ctx, query, stringArgs(ids)...); err != nil {
		return wrap(err, "failed to delete deck items")
	}
	return nil
}

func (r *deckItemRepository) DeleteByDeck(ctx context.Context, deckID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM deck_items WHERE deck_id = ?`, deckID); err != nil {
		return wrap(err, "failed to delete items of deck %s", deckID)
	}
	return nil
}

func (r *deckItemRepository) Move(ctx context.Context, deckID string, to models.Partition) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE deck_items SET partition = ? WHERE deck_id = ?`, string(to), deckID); err != nil {
		return wrap(err, "failed to move items of deck %s", deckID)
	}
	return nil
}

func scanDeckItem(s scanner) (*models.DeckItem, error) {
	item := &models.DeckItem{}
	var section string

	if err := s.Scan(&item.ID, &item.DeckID, &item.CardID, &section, &item.Qty); err != nil {
		return nil, err
	}
	item.Section = models.Section(section)
	return item, nil
}
