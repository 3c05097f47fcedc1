// Package deckimport reconstructs decks from exported deck documents.
package deckimport

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ramonehamilton/Riftbound-Companion/internal/riftbound/aggregate"
	"github.com/ramonehamilton/Riftbound-Companion/internal/riftbound/deckexport"
	"github.com/ramonehamilton/Riftbound-Companion/internal/storage/models"
)

// DefaultTitle is used when the document carries no title.
const DefaultTitle = "Imported Deck"

var (
	// ErrInvalidFormat is returned when the document is not a deck export.
	ErrInvalidFormat = errors.New("invalid JSON format")

	// ErrInvalidItemFormat is returned when a section entry is not a
	// [cardID, qty] pair with a positive integer quantity.
	ErrInvalidItemFormat = errors.New("invalid item format in imported deck")
)

type rawLegend struct {
	ChampionTag *string  `json:"championTag"`
	Domains     []string `json:"domains"`
}

type rawDocument struct {
	Description *string           `json:"description"`
	Legend      *rawLegend        `json:"legend"`
	Main        []json.RawMessage `json:"main"`
	Runes       []json.RawMessage `json:"runes"`
	Side        []json.RawMessage `json:"side"`
	Title       *string           `json:"title"`
}

// Import parses an exported deck document into a new private deck owned by
// ownerUserID. The deck gets a fresh id and its counters are recomputed from
// the entries. Repeated entries for the same card and section are merged.
// On error no deck or items are returned.
func Import(data string, ownerUserID string) (*models.Deck, []*models.DeckItem, error) {
	doc, err := decode(data)
	if err != nil {
		return nil, nil, err
	}

	sections := []struct {
		section models.Section
		raw     []json.RawMessage
	}{
		{models.SectionMain, doc.Main},
		{models.SectionSide, doc.Side},
		{models.SectionRune, doc.Runes},
	}

	parsed := make(map[models.Section][]deckexport.Entry, len(sections))
	for _, s := range sections {
		entries, err := parseEntries(s.raw)
		if err != nil {
			return nil, nil, fmt.Errorf("%s section: %w", s.section, err)
		}
		parsed[s.section] = entries
	}

	title := DefaultTitle
	if doc.Title != nil {
		title = *doc.Title
	}
	domains := make([]string, len(doc.Legend.Domains))
	copy(domains, doc.Legend.Domains)

	deck := models.NewDeck(ownerUserID, title, doc.Description, *doc.Legend.ChampionTag, domains)

	var items []*models.DeckItem
	byID := make(map[string]*models.DeckItem)
	for _, s := range sections {
		for _, entry := range parsed[s.section] {
			qty, _ := strconv.Atoi(entry[1])
			id := models.DeckItemID(deck.ID, entry.CardID(), s.section)
			if existing, ok := byID[id]; ok {
				existing.Qty += qty
				continue
			}
			item := models.NewDeckItem(deck.ID, entry.CardID(), s.section, qty)
			byID[id] = item
			items = append(items, item)
		}
	}

	aggregate.Recount(deck, items)
	return deck, items, nil
}

func decode(data string) (*rawDocument, error) {
	var doc rawDocument
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if doc.Legend == nil || doc.Legend.ChampionTag == nil {
		return nil, fmt.Errorf("%w: missing legend", ErrInvalidFormat)
	}
	if len(doc.Legend.Domains) == 0 {
		return nil, fmt.Errorf("%w: legend has no domains", ErrInvalidFormat)
	}
	if doc.Main == nil || doc.Side == nil || doc.Runes == nil {
		return nil, fmt.Errorf("%w: missing section list", ErrInvalidFormat)
	}
	return &doc, nil
}

func parseEntries(raw []json.RawMessage) ([]deckexport.Entry, error) {
	entries := make([]deckexport.Entry, 0, len(raw))
	for i, msg := range raw {
		var parts []string
		if err := json.Unmarshal(msg, &parts); err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrInvalidItemFormat, i, err)
		}
		if len(parts) != 2 {
			return nil, fmt.Errorf("%w: entry %d has %d elements", ErrInvalidItemFormat, i, len(parts))
		}
		if strings.TrimSpace(parts[0]) == "" {
			return nil, fmt.Errorf("%w: entry %d has an empty card id", ErrInvalidItemFormat, i)
		}
		qty, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d quantity %q", ErrInvalidItemFormat, i, parts[1])
		}
		if qty < 1 {
			return nil, fmt.Errorf("%w: entry %d quantity %d", ErrInvalidItemFormat, i, qty)
		}
		entries = append(entries, deckexport.Entry{parts[0], parts[1]})
	}
	return entries, nil
}
