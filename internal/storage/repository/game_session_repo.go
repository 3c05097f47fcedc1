package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/ramonehamilton/Riftbound-Companion/internal/storage"
	"github.com/ramonehamilton/Riftbound-Companion/internal/storage/models"
)

// GameSessionRepository handles database operations for score-counter sessions.
type GameSessionRepository interface {
	// Create inserts a new session.
	Create(ctx context.Context, session *models.GameSession) error

	// Update saves scores, completion and winner of an existing session.
	Update(ctx context.Context, session *models.GameSession) error

	// GetByID retrieves a session. Returns nil if not found.
	GetByID(ctx context.Context, id string) (*models.GameSession, error)

	// ListByOwner retrieves an owner's sessions, newest first. Zero limit means all.
	ListByOwner(ctx context.Context, ownerUserID string, limit int) ([]*models.GameSession, error)

	// DeleteBatch removes sessions by ID.
	DeleteBatch(ctx context.Context, ids []string) error
}

type gameSessionRepository struct {
	db Querier
}

// NewGameSessionRepository creates a new game session repository.
func NewGameSessionRepository(db Querier) GameSessionRepository {
	return &gameSessionRepository{db: db}
}

const gameSessionColumns = `id, owner_user_id, player1, player2, is_complete, winner, created_at, completed_at`

func (r *gameSessionRepository) Create(ctx context.Context, session *models.GameSession) error {
	p1, p2, err := encodePlayers(session)
	if err != nil {
		return err
	}

	query := `INSERT INTO game_sessions (` + gameSessionColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		session.ID,
		session.OwnerUserID,
		p1,
		p2,
		boolToInt(session.IsComplete),
		session.Winner,
		session.CreatedAt,
		session.CompletedAt,
	)
	if err != nil {
		return wrap(err, "failed to create game session")
	}
	return nil
}

func (r *gameSessionRepository) Update(ctx context.Context, session *models.GameSession) error {
	p1, p2, err := encodePlayers(session)
	if err != nil {
		return err
	}

	query := `
		UPDATE game_sessions SET
			player1 = ?,
			player2 = ?,
			is_complete = ?,
			winner = ?,
			completed_at = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		p1,
		p2,
		boolToInt(session.IsComplete),
		session.Winner,
		session.CompletedAt,
		session.ID,
	)
	if err != nil {
		return wrap(err, "failed to update game session")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return wrap(err, "failed to get rows affected")
	}
	if affected == 0 {
		return fmt.Errorf("game session %s: %w", session.ID, storage.ErrNotFound)
	}
	return nil
}

func (r *gameSessionRepository) GetByID(ctx context.Context, id string) (*models.GameSession, error) {
	query := `SELECT ` + gameSessionColumns + ` FROM game_sessions WHERE id = ?`

	session, err := scanGameSession(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, wrap(err, "failed to get game session %s", id)
	}
	return session, nil
}

func (r *gameSessionRepository) ListByOwner(ctx context.Context, ownerUserID string, limit int) ([]*models.GameSession, error) {
	query := `SELECT ` + gameSessionColumns + ` FROM game_sessions WHERE owner_user_id = ? ORDER BY created_at DESC, id`
	args := []interface{}{ownerUserID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrap(err, "failed to list game sessions")
	}
	defer func() { _ = rows.Close() }()

	var sessions []*models.GameSession
	for rows.Next() {
		session, err := scanGameSession(rows)
		if err != nil {
			return nil, wrap(err, "failed to scan game session")
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(err, "error iterating game sessions")
	}
	return sessions, nil
}

func (r *gameSessionRepository) DeleteBatch(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	query := `DELETE FROM game_sessions WHERE id IN (` + placeholders(len(ids)) + `)`
	if _, err := r.db.ExecContext(ctx, query, stringArgs(ids)...); err != nil {
		return wrap(err, "failed to delete game sessions")
	}
	return nil
}

func encodePlayers(session *models.GameSession) (string, string, error) {
	p1, err := json.Marshal(session.Player1)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode player 1: %w", err)
	}
	p2, err := json.Marshal(session.Player2)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode player 2: %w", err)
	}
	return string(p1), string(p2), nil
}

func scanGameSession(s scanner) (*models.GameSession, error) {
	session := &models.GameSession{}
	var p1, p2 string
	var isComplete int
	var winner sql.NullInt64
	var completedAt sql.NullTime

	err := s.Scan(
		&session.ID,
		&session.OwnerUserID,
		&p1,
		&p2,
		&isComplete,
		&winner,
		&session.CreatedAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(p1), &session.Player1); err != nil {
		return nil, fmt.Errorf("failed to decode player 1: %w", err)
	}
	if err := json.Unmarshal([]byte(p2), &session.Player2); err != nil {
		return nil, fmt.Errorf("failed to decode player 2: %w", err)
	}
	session.IsComplete = isComplete == 1
	if winner.Valid {
		w := int(winner.Int64)
		session.Winner = &w
	}
	if completedAt.Valid {
		t := completedAt.Time
		session.CompletedAt = &t
	}
	return session, nil
}
