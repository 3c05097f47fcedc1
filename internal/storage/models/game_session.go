package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultStartingScore is the score each player starts a session with.
const DefaultStartingScore = 25

// Winner values for a completed game session.
const (
	WinnerPlayer1 = 1
	WinnerPlayer2 = 2
)

// GamePlayer holds one side of a game session.
type GamePlayer struct {
	Name              string   `json:"name"`
	LegendChampionTag string   `json:"legendChampionTag"`
	LegendDomains     []string `json:"legendDomains"`
	DeckTitle         *string  `json:"deckTitle,omitempty"` // Only tracked for player 1
	Score             int      `json:"score"`
	Battlefield1Might int      `json:"battlefield1Might"`
	Battlefield2Might int      `json:"battlefield2Might"`
}

// GameSession is a score-counter record of one live game.
type GameSession struct {
	ID          string     `json:"id"`
	OwnerUserID string     `json:"ownerUserId"`
	Player1     GamePlayer `json:"player1"`
	Player2     GamePlayer `json:"player2"`
	IsComplete  bool       `json:"isComplete"`
	Winner      *int       `json:"winner,omitempty"` // 1, 2, or nil for draw/incomplete
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// NewGameSession creates an in-progress session with default starting scores.
func NewGameSession(ownerUserID string, player1, player2 GamePlayer) *GameSession {
	if player1.Score == 0 {
		player1.Score = DefaultStartingScore
	}
	if player2.Score == 0 {
		player2.Score = DefaultStartingScore
	}
	return &GameSession{
		ID:          "gamesession_" + uuid.New().String(),
		OwnerUserID: ownerUserID,
		Player1:     player1,
		Player2:     player2,
		CreatedAt:   time.Now().UTC(),
	}
}

// Complete marks the session finished. A nil winner records a draw.
func (g *GameSession) Complete(winner *int) {
	now := time.Now().UTC()
	g.IsComplete = true
	g.Winner = winner
	g.CompletedAt = &now
}
