package models

import (
	"fmt"
	"time"
)

// Vote records one user's upvote of a public deck.
// The ID is derived from (deck, voter) so a user can vote at most once per deck.
type Vote struct {
	ID          string    `json:"id"`
	DeckID      string    `json:"deckId"`
	VoterUserID string    `json:"voterUserId"`
	CreatedAt   time.Time `json:"createdAt"`
}

// VoteID derives the deterministic identifier of a vote.
func VoteID(deckID, voterUserID string) string {
	return fmt.Sprintf("vote_%s_%s", deckID, voterUserID)
}

// NewVote creates a vote with its derived identifier.
func NewVote(deckID, voterUserID string) *Vote {
	return &Vote{
		ID:          VoteID(deckID, voterUserID),
		DeckID:      deckID,
		VoterUserID: voterUserID,
		CreatedAt:   time.Now().UTC(),
	}
}
