package repository

import (
	"context"
	"database/sql"

	"github.com/ramonehamilton/Riftbound-Companion/internal/storage/models"
)

// VoteRepository handles database operations for public deck votes.
type VoteRepository interface {
	// GetByID retrieves a vote by its derived ID. Returns nil if not found.
	GetByID(ctx context.Context, id string) (*models.Vote, error)

	// Save inserts a vote. Saving an existing vote is a no-op.
	Save(ctx context.Context, vote *models.Vote) error

	// Delete removes a vote and reports whether it existed.
	Delete(ctx context.Context, id string) (bool, error)

	// DeleteByDeck removes every vote on a deck.
	DeleteByDeck(ctx context.Context, deckID string) error

	// ListByDeck retrieves the votes on a deck, oldest first.
	ListByDeck(ctx context.Context, deckID string) ([]*models.Vote, error)

	// CountByDecks returns the vote count of each deck. Decks without votes
	// are absent from the map.
	CountByDecks(ctx context.Context, deckIDs []string) (map[string]int, error)

	// VotedDecks returns the subset of deckIDs the voter has voted on.
	VotedDecks(ctx context.Context, voterUserID string, deckIDs []string) (map[string]bool, error)
}

type voteRepository struct {
	db Querier
}

// NewVoteRepository creates a new vote repository.
func NewVoteRepository(db Querier) VoteRepository {
	return &voteRepository{db: db}
}

func (r *voteRepository) GetByID(ctx context.Context, id string) (*models.Vote, error) {
	query := `SELECT id, deck_id, voter_user_id, created_at FROM votes WHERE id = ?`

	vote := &models.Vote{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&vote.ID, &vote.DeckID, &vote.VoterUserID, &vote.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, wrap(err, "failed to get vote %s", id)
	}
	return vote, nil
}

func (r *voteRepository) Save(ctx context.Context, vote *models.Vote) error {
	query := `
		INSERT INTO votes (id, deck_id, voter_user_id, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, vote.ID, vote.DeckID, vote.VoterUserID, vote.CreatedAt); err != nil {
		return wrap(err, "failed to save vote")
	}
	return nil
}

func (r *voteRepository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM votes WHERE id = ?`, id)
	if err != nil {
		return false, wrap(err, "failed to delete vote")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, wrap(err, "failed to get rows affected")
	}
	return affected > 0, nil
}

func (r *voteRepository) DeleteByDeck(ctx context.Context, deckID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM votes WHERE deck_id = ?`, deckID); err != nil {
		return wrap(err, "failed to delete votes of deck %s", deckID)
	}
	return nil
}

func (r *voteRepository) ListByDeck(ctx context.Context, deckID string) ([]*models.Vote, error) {
	query := `
		SELECT id, deck_id, voter_user_id, created_at
		FROM votes
		WHERE deck_id = ?
		ORDER BY created_at, id
	`
	rows, err := r.db.QueryContext(ctx, query, deckID)
	if err != nil {
		return nil, wrap(err, "failed to list votes")
	}
	defer func() { _ = rows.Close() }()

	var votes []*models.Vote
	for rows.Next() {
		vote := &models.Vote{}
		if err := rows.Scan(&vote.ID, &vote.DeckID, &vote.VoterUserID, &vote.CreatedAt); err != nil {
			return nil, wrap(err, "failed to scan vote")
		}
		votes = append(votes, vote)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(err, "error iterating votes")
	}
	return votes, nil
}

func (r *voteRepository) CountByDecks(ctx context.Context, deckIDs []string) (map[string]int, error) {
	counts := make(map[string]int, len(deckIDs))
	for _, chunk := range chunkIDs(deckIDs) {
		query := `
			SELECT deck_id, COUNT(*)
			FROM votes
			WHERE deck_id IN (` + placeholders(len(chunk)) + `)
			GROUP BY deck_id
		`
		rows, err := r.db.QueryContext(ctx, query, stringArgs(chunk)...)
		if err != nil {
			return nil, wrap(err, "failed to count votes")
		}
		for rows.Next() {
			var deckID string
			var count int
			if err := rows.Scan(&deckID, &count); err != nil {
				_ = rows.Close()
				return nil, wrap(err, "failed to scan vote count")
			}
			counts[deckID] = count
		}
		err = rows.Err()
		_ = rows.Close()
		if err != nil {
			return nil, wrap(err, "error iterating vote counts")
		}
	}
	return counts, nil
}

func (r *voteRepository) VotedDecks(ctx context.Context, voterUserID string, deckIDs []string) (map[string]bool, error) {
	voted := make(map[string]bool)
	if voterUserID == "" {
		return voted, nil
	}

	for _, chunk := range chunkIDs(deckIDs) {
		query := `SELECT deck_id FROM votes WHERE voter_user_id = ? AND deck_id IN (` + placeholders(len(chunk)) + `)`
		args := append([]interface{}{voterUserID}, stringArgs(chunk)...)

		rows, err := r.db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, wrap(err, "failed to query voted decks")
		}
		for rows.Next() {
			var deckID string
			if err := rows.Scan(&deckID); err != nil {
				_ = rows.Close()
				return nil, wrap(err, "failed to scan voted deck")
			}
			voted[deckID] = true
		}
		err = rows.Err()
		_ = rows.Close()
		if err != nil {
			return nil, wrap(err, "error iterating voted decks")
		}
	}
	return voted, nil
}

// maxInArgs keeps IN lists well below SQLite's bound-parameter limit.
const maxInArgs = 500

func chunkIDs(ids []string) [][]string {
	var chunks [][]string
	for len(ids) > maxInArgs {
		chunks = append(chunks, ids[:maxInArgs])
		ids = ids[maxInArgs:]
	}
	if len(ids) > 0 {
		chunks = append(chunks, ids)
	}
	return chunks
}
