package cards

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/ramonehamilton/Riftbound-Companion/internal/storage/models"
)

// nameSource implements fuzzy.Source over card names.
type nameSource []*models.Card

func (s nameSource) Len() int { return len(s) }

func (s nameSource) String(i int) string { return strings.ToLower(s[i].Name) }

// Search ranks cards by fuzzy match of query against the card name, best
// match first. An empty query returns nil.
func Search(cards []*models.Card, query string) []*models.Card {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" || len(cards) == 0 {
		return nil
	}

	source := make(nameSource, 0, len(cards))
	for _, card := range cards {
		if card != nil {
			source = append(source, card)
		}
	}

	matches := fuzzy.FindFrom(query, source)
	results := make([]*models.Card, len(matches))
	for i, match := range matches {
		results[i] = source[match.Index]
	}
	return results
}
