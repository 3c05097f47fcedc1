package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/ramonehamilton/Riftbound-Companion/internal/storage/models"
)

// CardQuery narrows a card listing. Zero fields do not filter.
type CardQuery struct {
	SetCode     string
	Type        string
	ChampionTag string
	RunesOnly   bool
	NameLike    string
}

// CardRepository handles database operations for the card catalog.
type CardRepository interface {
	// GetByID retrieves a card by its ID. Returns nil if not found.
	GetByID(ctx context.Context, id string) (*models.Card, error)

	// GetByIDs retrieves cards keyed by ID. Missing IDs are absent from the map.
	GetByIDs(ctx context.Context, ids []string) (map[string]*models.Card, error)

	// List retrieves the whole catalog ordered by name.
	List(ctx context.Context) ([]*models.Card, error)

	// Query retrieves cards matching the query.
	Query(ctx context.Context, q CardQuery) ([]*models.Card, error)

	// SaveBatch inserts or replaces cards.
	SaveBatch(ctx context.Context, cards []*models.Card) error

	// DeleteBatch removes cards by ID.
	DeleteBatch(ctx context.Context, ids []string) error

	// Count returns the number of cards in the catalog.
	Count(ctx context.Context) (int, error)
}

type cardRepository struct {
	db Querier
}

// NewCardRepository creates a new card repository.
func NewCardRepository(db Querier) CardRepository {
	return &cardRepository{db: db}
}

const cardColumns = `
	id, number, name, type, domains, energy_cost, power_cost_json, might,
	keywords, tags, rules_text, is_signature, champion_tag, is_battlefield,
	is_rune, set_code, rarity`

func (r *cardRepository) GetByID(ctx context.Context, id string) (*models.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE id = ?`

	card, err := scanCard(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, wrap(err, "failed to get card %s", id)
	}
	return card, nil
}

func (r *cardRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*models.Card, error) {
	result := make(map[string]*models.Card, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	query := `SELECT ` + cardColumns + ` FROM cards WHERE id IN (` + placeholders(len(ids)) + `)`
	cards, err := r.queryCards(ctx, query, stringArgs(ids)...)
	if err != nil {
		return nil, err
	}
	for _, card := range cards {
		result[card.ID] = card
	}
	return result, nil
}

func (r *cardRepository) List(ctx context.Context) ([]*models.Card, error) {
	return r.queryCards(ctx, `SELECT `+cardColumns+` FROM cards ORDER BY name, set_code, number`)
}

func (r *cardRepository) Query(ctx context.Context, q CardQuery) ([]*models.Card, error) {
	var where []string
	var args []interface{}

	if q.SetCode != "" {
		where = append(where, "set_code = ?")
		args = append(args, q.SetCode)
	}
	if q.Type != "" {
		where = append(where, "type = ?")
		args = append(args, q.Type)
	}
	if q.ChampionTag != "" {
		where = append(where, "champion_tag = ?")
		args = append(args, q.ChampionTag)
	}
	if q.RunesOnly {
		where = append(where, "is_rune = 1")
	}
	if q.NameLike != "" {
		where = append(where, "name LIKE ?")
		args = append(args, "%"+q.NameLike+"%")
	}

	query := `SELECT ` + cardColumns + ` FROM cards`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY name, set_code, number"

	return r.queryCards(ctx, query, args...)
}

func (r *cardRepository) SaveBatch(ctx context.Context, cards []*models.Card) error {
	query := `
		INSERT INTO cards (` + cardColumns + `, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			number = excluded.number,
			name = excluded.name,
			type = excluded.type,
			domains = excluded.domains,
			energy_cost = excluded.energy_cost,
			power_cost_json = excluded.power_cost_json,
			might = excluded.might,
			keywords = excluded.keywords,
			tags = excluded.tags,
			rules_text = excluded.rules_text,
			is_signature = excluded.is_signature,
			champion_tag = excluded.champion_tag,
			is_battlefield = excluded.is_battlefield,
			is_rune = excluded.is_rune,
			set_code = excluded.set_code,
			rarity = excluded.rarity,
			updated_at = CURRENT_TIMESTAMP
	`

	for _, card := range cards {
		domains, err := encodeStrings(card.Domains)
		if err != nil {
			return err
		}
		keywords, err := encodeStrings(card.Keywords)
		if err != nil {
			return err
		}
		tags, err := encodeStrings(card.Tags)
		if err != nil {
			return err
		}

		_, err = r.db.ExecContext(ctx, query,
			card.ID,
			card.Number,
			card.Name,
			card.Type,
			domains,
			card.EnergyCost,
			card.PowerCostJSON,
			card.Might,
			keywords,
			tags,
			card.RulesText,
			boolToInt(card.IsSignature),
			card.ChampionTag,
			boolToInt(card.IsBattlefield),
			boolToInt(card.IsRune),
			card.SetCode,
			card.Rarity,
		)
		if err != nil {
			return wrap(err, "failed to save card %s", card.ID)
		}
	}
	return nil
}

func (r *cardRepository) DeleteBatch(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	query := `DELETE FROM cards WHERE id IN (` + placeholders(len(ids)) + `)`
	if _, err := r.db.ExecContext(ctx, query, stringArgs(ids)...); err != nil {
		return wrap(err, "failed to delete cards")
	}
	return nil
}

func (r *cardRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cards`).Scan(&count); err != nil {
		return 0, wrap(err, "failed to count cards")
	}
	return count, nil
}

func (r *cardRepository) queryCards(ctx context.Context, query string, args ...interface{}) ([]*models.Card, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrap(err, "failed to query cards")
	}
	defer func() { _ = rows.Close() }()

	var cards []*models.Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, wrap(err, "failed to scan card")
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(err, "error iterating cards")
	}
	return cards, nil
}

func scanCard(s scanner) (*models.Card, error) {
	card := &models.Card{}
	var domains, keywords, tags string
	var energyCost, might sql.NullInt64
	var powerCost, championTag, rarity sql.NullString
	var isSignature, isBattlefield, isRune int

	err := s.Scan(
		&card.ID,
		&card.Number,
		&card.Name,
		&card.Type,
		&domains,
		&energyCost,
		&powerCost,
		&might,
		&keywords,
		&tags,
		&card.RulesText,
		&isSignature,
		&championTag,
		&isBattlefield,
		&isRune,
		&card.SetCode,
		&rarity,
	)
	if err != nil {
		return nil, err
	}

	if card.Domains, err = decodeStrings(domains); err != nil {
		return nil, err
	}
	if card.Keywords, err = decodeStrings(keywords); err != nil {
		return nil, err
	}
	if card.Tags, err = decodeStrings(tags); err != nil {
		return nil, err
	}
	if energyCost.Valid {
		v := int(energyCost.Int64)
		card.EnergyCost = &v
	}
	if might.Valid {
		v := int(might.Int64)
		card.Might = &v
	}
	if powerCost.Valid {
		card.PowerCostJSON = &powerCost.String
	}
	if championTag.Valid {
		card.ChampionTag = &championTag.String
	}
	if rarity.Valid {
		card.Rarity = &rarity.String
	}
	card.IsSignature = isSignature == 1
	card.IsBattlefield = isBattlefield == 1
	card.IsRune = isRune == 1

	return card, nil
}
