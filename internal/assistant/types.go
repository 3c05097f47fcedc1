package assistant

import (
	"fmt"
	"strings"

	"github.com/ramonehamilton/Riftbound-Companion/internal/riftbound/deckexport"
	"github.com/ramonehamilton/Riftbound-Companion/internal/storage/models"
)

// Mode selects how the assistant answers.
type Mode string

const (
	ModeCoach Mode = "coach" // Deck-building advice
	ModeJudge Mode = "judge" // Rules rulings
)

// ParseMode converts a string into a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeCoach:
		return ModeCoach, nil
	case ModeJudge:
		return ModeJudge, nil
	default:
		return "", fmt.Errorf("invalid assistant mode %q", s)
	}
}

// DeckSnapshot is the deck sent along with a question. Entries use the same
// [cardId, quantity] encoding as deck exports.
type DeckSnapshot struct {
	Legend deckexport.Legend  `json:"legend"`
	Main   []deckexport.Entry `json:"main"`
	Side   []deckexport.Entry `json:"side"`
	Runes  []deckexport.Entry `json:"runes"`
}

// BuildSnapshot builds a snapshot of a deck and its items.
func BuildSnapshot(deck *models.Deck, items []*models.DeckItem) *DeckSnapshot {
	domains := deck.LegendDomains
	if domains == nil {
		domains = []string{}
	}
	return &DeckSnapshot{
		Legend: deckexport.Legend{
			ChampionTag: deck.LegendChampionTag,
			Domains:     domains,
		},
		Main:  deckexport.SectionEntries(items, models.SectionMain),
		Side:  deckexport.SectionEntries(items, models.SectionSide),
		Runes: deckexport.SectionEntries(items, models.SectionRune),
	}
}

// AskRequest is the body of an ask call.
type AskRequest struct {
	Mode         Mode          `json:"mode"`
	Question     string        `json:"question"`
	DeckID       *string       `json:"deckId,omitempty"`
	DeckSnapshot *DeckSnapshot `json:"deckSnapshot,omitempty"`
	Selection    []string      `json:"selection,omitempty"` // Card IDs the question is about
	RulesEdition string        `json:"rulesEdition"`
}

// Citation points at the rule or card an answer relies on.
type Citation struct {
	Type string  `json:"type"`
	Ref  string  `json:"ref"`
	ID   *string `json:"id,omitempty"`
}

// AskResponse is the assistant's answer.
type AskResponse struct {
	AnswerMarkdown string     `json:"answerMarkdown"`
	Citations      []Citation `json:"citations"`
}
