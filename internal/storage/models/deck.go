package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Deck represents a deck list owned by a user.
//
// CountMain, CountSide and CountRunes are denormalized sums of item quantities.
// They are recomputed on every mutation and must not be trusted without
// recounting from the items.
type Deck struct {
	ID                string    `json:"id"`
	OwnerUserID       string    `json:"ownerUserId"`
	Title             string    `json:"title"`
	Description       *string   `json:"description,omitempty"` // Nullable
	LegendChampionTag string    `json:"legendChampionTag"`
	LegendDomains     []string  `json:"legendDomains"`
	IsPublic          bool      `json:"isPublic"`
	CountMain         int       `json:"countMain"`
	CountSide         int       `json:"countSide"`
	CountRunes        int       `json:"countRunes"`
	Version           int       `json:"version"` // Optimistic concurrency token
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// NewDeck creates a private deck with a freshly generated identifier.
func NewDeck(ownerUserID, title string, description *string, legendChampionTag string, legendDomains []string) *Deck {
	now := time.Now().UTC()
	return &Deck{
		ID:                "deck_" + uuid.New().String(),
		OwnerUserID:       ownerUserID,
		Title:             title,
		Description:       description,
		LegendChampionTag: legendChampionTag,
		LegendDomains:     legendDomains,
		IsPublic:          false,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// Partition returns the partition the deck currently belongs to.
func (d *Deck) Partition() Partition {
	return PartitionFor(d.IsPublic)
}

// DeckItem is one (card, section) row of a deck. At most one item exists per
// (deck, card, section) triple; its ID is derived from that triple.
type DeckItem struct {
	ID      string  `json:"id"`
	DeckID  string  `json:"deckId"`
	CardID  string  `json:"cardId"`
	Section Section `json:"section"`
	Qty     int     `json:"qty"`
}

// DeckItemID derives the deterministic identifier of a deck item.
func DeckItemID(deckID, cardID string, section Section) string {
	return fmt.Sprintf("deckitem_%s_%s_%s", deckID, cardID, section)
}

// NewDeckItem creates a deck item with its derived identifier.
func NewDeckItem(deckID, cardID string, section Section, qty int) *DeckItem {
	return &DeckItem{
		ID:      DeckItemID(deckID, cardID, section),
		DeckID:  deckID,
		CardID:  cardID,
		Section: section,
		Qty:     qty,
	}
}
