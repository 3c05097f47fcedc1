// Package cards provides catalog browsing: filtering, sorting, fuzzy name
// search and a cached view of the card catalog.
package cards

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ramonehamilton/Riftbound-Companion/internal/storage/models"
)

// Missing costs and might count as 0 against a minimum and as 999 against a maximum.
const (
	missingLow  = 0
	missingHigh = 999
)

// Filters narrows a card listing. The zero value matches every card.
type Filters struct {
	Domains          []string `json:"domains,omitempty"`
	Types            []string `json:"types,omitempty"`
	MinCost          *int     `json:"minCost,omitempty"`
	MaxCost          *int     `json:"maxCost,omitempty"`
	MinMight         *int     `json:"minMight,omitempty"`
	MaxMight         *int     `json:"maxMight,omitempty"`
	SignaturesOnly   bool     `json:"signaturesOnly,omitempty"`
	RunesOnly        bool     `json:"runesOnly,omitempty"`
	BattlefieldsOnly bool     `json:"battlefieldsOnly,omitempty"`
}

// IsActive reports whether any filter is set.
func (f Filters) IsActive() bool {
	return len(f.Domains) > 0 ||
		len(f.Types) > 0 ||
		f.MinCost != nil ||
		f.MaxCost != nil ||
		f.MinMight != nil ||
		f.MaxMight != nil ||
		f.SignaturesOnly ||
		f.RunesOnly ||
		f.BattlefieldsOnly
}

// Reset clears every filter.
func (f *Filters) Reset() {
	*f = Filters{}
}

// Matches reports whether a card passes the filters.
func (f Filters) Matches(card *models.Card) bool {
	if card == nil {
		return false
	}
	if len(f.Domains) > 0 && !intersects(card.Domains, f.Domains) {
		return false
	}
	if len(f.Types) > 0 && !contains(f.Types, card.Type) {
		return false
	}
	if f.MinCost != nil && valueOr(card.EnergyCost, missingLow) < *f.MinCost {
		return false
	}
	if f.MaxCost != nil && valueOr(card.EnergyCost, missingHigh) > *f.MaxCost {
		return false
	}
	if f.MinMight != nil && valueOr(card.Might, missingLow) < *f.MinMight {
		return false
	}
	if f.MaxMight != nil && valueOr(card.Might, missingHigh) > *f.MaxMight {
		return false
	}
	if f.SignaturesOnly && !card.IsSignature {
		return false
	}
	if f.RunesOnly && !card.IsRune {
		return false
	}
	if f.BattlefieldsOnly && !card.IsBattlefield {
		return false
	}
	return true
}

// MatchesText reports whether the card's name, rules text or any keyword
// contains text, ignoring case. Empty text matches every card.
func MatchesText(card *models.Card, text string) bool {
	if text == "" {
		return true
	}
	needle := strings.ToLower(text)
	if strings.Contains(strings.ToLower(card.Name), needle) ||
		strings.Contains(strings.ToLower(card.RulesText), needle) {
		return true
	}
	for _, kw := range card.Keywords {
		if strings.Contains(strings.ToLower(kw), needle) {
			return true
		}
	}
	return false
}

// Filter returns the cards matching both the search text and the filters.
// The input slice is not modified.
func Filter(cards []*models.Card, text string, filters Filters) []*models.Card {
	result := make([]*models.Card, 0, len(cards))
	for _, card := range cards {
		if card == nil || !MatchesText(card, text) || !filters.Matches(card) {
			continue
		}
		result = append(result, card)
	}
	return result
}

// SortOption selects the ordering of a card listing.
type SortOption string

const (
	SortByName      SortOption = "name"
	SortByCost      SortOption = "cost"
	SortByMight     SortOption = "might"
	SortBySetNumber SortOption = "set_number"
)

// ParseSortOption converts a query value to a SortOption. Empty means name.
func ParseSortOption(s string) (SortOption, error) {
	switch SortOption(strings.ToLower(strings.TrimSpace(s))) {
	case "", SortByName:
		return SortByName, nil
	case SortByCost:
		return SortByCost, nil
	case SortByMight:
		return SortByMight, nil
	case SortBySetNumber:
		return SortBySetNumber, nil
	default:
		return "", fmt.Errorf("unknown card sort option %q", s)
	}
}

// Sort orders cards in place. Ties keep their relative order.
func Sort(cards []*models.Card, option SortOption) {
	var less func(a, b *models.Card) bool
	switch option {
	case SortByCost:
		less = func(a, b *models.Card) bool { return valueOr(a.EnergyCost, 0) < valueOr(b.EnergyCost, 0) }
	case SortByMight:
		less = func(a, b *models.Card) bool { return valueOr(a.Might, 0) < valueOr(b.Might, 0) }
	case SortBySetNumber:
		less = func(a, b *models.Card) bool { return a.SetCode+a.Number < b.SetCode+b.Number }
	default:
		less = func(a, b *models.Card) bool { return a.Name < b.Name }
	}
	sort.SliceStable(cards, func(i, j int) bool { return less(cards[i], cards[j]) })
}

func valueOr(v *int, fallback int) int {
	if v == nil {
		return fallback
	}
	return *v
}

func contains(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}

func intersects(a, b []string) bool {
	for _, v := range a {
		if contains(b, v) {
			return true
		}
	}
	return false
}
