// Package aggregate provides the quantity sums shared by deck counters, the
// validator and public deck ranking.
package aggregate

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/ramonehamilton/Riftbound-Companion/internal/storage/models"
)

// SectionTotals holds the summed quantities of each deck section.
type SectionTotals struct {
	Main  int `json:"main"`
	Side  int `json:"side"`
	Runes int `json:"runes"`
}

// SectionCount sums the quantities of items in the given section.
func SectionCount(items []*models.DeckItem, section models.Section) int {
	total := 0
	for _, item := range items {
		if item != nil && item.Section == section {
			total += item.Qty
		}
	}
	return total
}

// Counts sums item quantities for every section.
func Counts(items []*models.DeckItem) SectionTotals {
	return SectionTotals{
		Main:  SectionCount(items, models.SectionMain),
		Side:  SectionCount(items, models.SectionSide),
		Runes: SectionCount(items, models.SectionRune),
	}
}

// Recount overwrites the deck's denormalized counters from its items.
func Recount(deck *models.Deck, items []*models.DeckItem) {
	totals := Counts(items)
	deck.CountMain = totals.Main
	deck.CountSide = totals.Side
	deck.CountRunes = totals.Runes
}

// CardQuantity sums the quantities of resolved cards. Entries without a card
// are not counted.
func CardQuantity(cards []models.DeckCard) int {
	total := 0
	for _, dc := range cards {
		if dc.Card != nil {
			total += dc.Quantity
		}
	}
	return total
}

// SignatureCount sums the quantities of signature cards tied to championTag.
func SignatureCount(cards []models.DeckCard, championTag string) int {
	total := 0
	for _, dc := range cards {
		if dc.Card != nil && dc.Card.IsSignatureFor(championTag) {
			total += dc.Quantity
		}
	}
	return total
}

// TrendingScore ranks a deck by votes decayed over age:
// voteCount / ln(hoursSinceCreation + 2). A createdAt in the future counts
// as zero hours.
func TrendingScore(voteCount int, createdAt, now time.Time) float64 {
	hours := now.Sub(createdAt).Hours()
	if hours < 0 {
		hours = 0
	}
	return float64(voteCount) / math.Log(hours+2)
}

// SortOption selects the ordering of public decks.
type SortOption string

const (
	SortTrending SortOption = "trending"
	SortRecent   SortOption = "recent"
	SortTop      SortOption = "top"
)

// ParseSortOption parses a sort option, defaulting to trending when empty.
func ParseSortOption(s string) (SortOption, error) {
	switch SortOption(strings.ToLower(strings.TrimSpace(s))) {
	case "", SortTrending:
		return SortTrending, nil
	case SortRecent:
		return SortRecent, nil
	case SortTop:
		return SortTop, nil
	default:
		return "", fmt.Errorf("unknown sort option: %q", s)
	}
}

// RankedDeck is a public deck annotated with its vote tally.
type RankedDeck struct {
	Deck      *models.Deck `json:"deck"`
	VoteCount int          `json:"voteCount"`
	HasVoted  bool         `json:"hasVoted"`
	Score     float64      `json:"trendingScore"`
}

// Rank scores and orders decks. Score is filled in for every deck regardless
// of the chosen option. Ties fall back to the most recently updated deck,
// then to id. The input slice is not modified.
func Rank(decks []RankedDeck, option SortOption, now time.Time) []RankedDeck {
	ranked := make([]RankedDeck, len(decks))
	copy(ranked, decks)
	for i := range ranked {
		ranked[i].Score = TrendingScore(ranked[i].VoteCount, ranked[i].Deck.CreatedAt, now)
	}

	newer := func(a, b RankedDeck) bool {
		if !a.Deck.UpdatedAt.Equal(b.Deck.UpdatedAt) {
			return a.Deck.UpdatedAt.After(b.Deck.UpdatedAt)
		}
		return a.Deck.ID < b.Deck.ID
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		switch option {
		case SortTop:
			if a.VoteCount != b.VoteCount {
				return a.VoteCount > b.VoteCount
			}
		case SortRecent:
		default:
			if a.Score != b.Score {
				return a.Score > b.Score
			}
		}
		return newer(a, b)
	})
	return ranked
}
