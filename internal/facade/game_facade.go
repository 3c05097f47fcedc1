package facade

import (
	"context"
	"log"
	"strings"

	"github.com/ramonehamilton/Riftbound-Companion/internal/riftbound/stats"
	"github.com/ramonehamilton/Riftbound-Companion/internal/storage"
	"github.com/ramonehamilton/Riftbound-Companion/internal/storage/models"
	"github.com/ramonehamilton/Riftbound-Companion/internal/storage/repository"
)

// GameFacade handles score counter sessions.
type GameFacade struct {
	services *Services
}

// NewGameFacade creates a new GameFacade with the given services.
func NewGameFacade(services *Services) *GameFacade {
	return &GameFacade{services: services}
}

// GameInput starts a new session.
type GameInput struct {
	Player1 models.GamePlayer `json:"player1"`
	Player2 models.GamePlayer `json:"player2"`
}

// GameUpdate changes a running session. Nil players are left untouched.
type GameUpdate struct {
	Player1  *models.GamePlayer `json:"player1,omitempty"`
	Player2  *models.GamePlayer `json:"player2,omitempty"`
	Complete bool               `json:"complete"`

	// Winner is 1 or 2; nil with Complete records a draw.
	Winner *int `json:"winner,omitempty"`
}

// Create starts a session for the owner.
func (g *GameFacade) Create(ctx context.Context, ownerUserID string, input GameInput) (*models.GameSession, error) {
	if ownerUserID == "" {
		return nil, forbidden("Sign in to track games")
	}
	input.Player1 = normalizePlayer(input.Player1, "Player 1")
	input.Player2 = normalizePlayer(input.Player2, "Player 2")
	// Only the owner's deck is tracked.
	input.Player2.DeckTitle = nil

	session := models.NewGameSession(ownerUserID, input.Player1, input.Player2)
	err := storage.RetryOnBusy(func() error {
		return repository.NewGameSessionRepository(g.services.DB.Conn()).Create(ctx, session)
	})
	if err != nil {
		return nil, storeError("create game", err)
	}

	log.Printf("Started game %s", session.ID)
	return session, nil
}

// Get retrieves a session of the owner.
func (g *GameFacade) Get(ctx context.Context, userID, sessionID string) (*models.GameSession, error) {
	var session *models.GameSession
	err := storage.RetryOnBusy(func() error {
		var err error
		session, err = repository.NewGameSessionRepository(g.services.DB.Conn()).GetByID(ctx, sessionID)
		return err
	})
	if err != nil {
		return nil, storeError("load game", err)
	}
	if session == nil || session.OwnerUserID != userID {
		return nil, notFound("Game")
	}
	return session, nil
}

// Update saves player state and, when Complete is set, finishes the session.
// Completed sessions cannot be changed.
func (g *GameFacade) Update(ctx context.Context, userID, sessionID string, update GameUpdate) (*models.GameSession, error) {
	if update.Winner != nil {
		if !update.Complete {
			return nil, invalidInput("A winner can only be set when completing a game")
		}
		if *update.Winner != models.WinnerPlayer1 && *update.Winner != models.WinnerPlayer2 {
			return nil, invalidInput("Winner must be 1 or 2")
		}
	}

	session, err := g.Get(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsComplete {
		return nil, invalidInput("Game is already complete")
	}

	if update.Player1 != nil {
		session.Player1 = normalizePlayer(*update.Player1, session.Player1.Name)
	}
	if update.Player2 != nil {
		session.Player2 = normalizePlayer(*update.Player2, session.Player2.Name)
		session.Player2.DeckTitle = nil
	}
	if update.Complete {
		session.Complete(update.Winner)
	}

	err = storage.RetryOnBusy(func() error {
		return repository.NewGameSessionRepository(g.services.DB.Conn()).Update(ctx, session)
	})
	if err != nil {
		return nil, storeError("update game", err)
	}
	if session.IsComplete {
		log.Printf("Completed game %s", session.ID)
	}
	return session, nil
}

// Delete removes a session of the owner.
func (g *GameFacade) Delete(ctx context.Context, userID, sessionID string) error {
	if _, err := g.Get(ctx, userID, sessionID); err != nil {
		return err
	}
	err := storage.RetryOnBusy(func() error {
		return repository.NewGameSessionRepository(g.services.DB.Conn()).DeleteBatch(ctx, []string{sessionID})
	})
	if err != nil {
		return storeError("delete game", err)
	}
	return nil
}

// List retrieves the owner's sessions, newest first. Zero limit means all.
func (g *GameFacade) List(ctx context.Context, ownerUserID string, limit int) ([]*models.GameSession, error) {
	if limit < 0 {
		return nil, invalidInput("Limit cannot be negative")
	}
	var sessions []*models.GameSession
	err := storage.RetryOnBusy(func() error {
		var err error
		sessions, err = repository.NewGameSessionRepository(g.services.DB.Conn()).ListByOwner(ctx, ownerUserID, limit)
		return err
	})
	if err != nil {
		return nil, storeError("list games", err)
	}
	if sessions == nil {
		sessions = []*models.GameSession{}
	}
	return sessions, nil
}

// Stats summarizes the owner's completed sessions created during period
// ("all", "week", "last-week", "month" or "last-month").
func (g *GameFacade) Stats(ctx context.Context, ownerUserID, period string) (*stats.GameStats, error) {
	tr, err := stats.ParsePeriod(period, g.services.now())
	if err != nil {
		return nil, invalidInput("%v", err)
	}
	sessions, err := g.List(ctx, ownerUserID, 0)
	if err != nil {
		return nil, err
	}
	result := stats.Calculate(stats.InRange(sessions, tr))
	result.Period = tr
	return &result, nil
}

func normalizePlayer(p models.GamePlayer, defaultName string) models.GamePlayer {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		p.Name = defaultName
	}
	p.LegendChampionTag = strings.TrimSpace(p.LegendChampionTag)
	if p.DeckTitle != nil && strings.TrimSpace(*p.DeckTitle) == "" {
		p.DeckTitle = nil
	}
	if p.Score < 0 {
		p.Score = 0
	}
	return p
}
