// Package deckexport encodes decks into the portable JSON document users
// share outside the app.
//
// The document shape is fixed:
//
//	{
//	  "description": string|null,
//	  "legend": {"championTag": string, "domains": [string]},
//	  "main":  [[cardID, qty], ...],
//	  "runes": [[cardID, qty], ...],
//	  "side":  [[cardID, qty], ...],
//	  "title": string|null
//	}
//
// Quantities are written as decimal strings. Keys are emitted in sorted order.
package deckexport

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ramonehamilton/Riftbound-Companion/internal/storage/models"
)

// Entry is one [cardID, quantity] pair of a section list.
type Entry [2]string

// NewEntry builds an entry from a card id and quantity.
func NewEntry(cardID string, qty int) Entry {
	return Entry{cardID, strconv.Itoa(qty)}
}

// CardID returns the card identifier of the entry.
func (e Entry) CardID() string { return e[0] }

// Legend is a deck's champion identity.
type Legend struct {
	ChampionTag string   `json:"championTag"`
	Domains     []string `json:"domains"`
}

// Document is the exported deck. Field order matches sorted key order so the
// encoder writes keys alphabetically.
type Document struct {
	Description *string `json:"description"`
	Legend      Legend  `json:"legend"`
	Main        []Entry `json:"main"`
	Runes       []Entry `json:"runes"`
	Side        []Entry `json:"side"`
	Title       *string `json:"title"`
}

// SectionEntries flattens the items of one section into entries, ordered by
// card id. It never returns nil so empty sections encode as [].
func SectionEntries(items []*models.DeckItem, section models.Section) []Entry {
	entries := make([]Entry, 0)
	for _, item := range items {
		if item == nil || item.Section != section {
			continue
		}
		entries = append(entries, NewEntry(item.CardID, item.Qty))
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i][0] < entries[j][0]
	})
	return entries
}

// NewDocument builds the export document for a deck and its items.
func NewDocument(deck *models.Deck, items []*models.DeckItem) *Document {
	domains := make([]string, len(deck.LegendDomains))
	copy(domains, deck.LegendDomains)

	title := deck.Title
	return &Document{
		Description: deck.Description,
		Legend: Legend{
			ChampionTag: deck.LegendChampionTag,
			Domains:     domains,
		},
		Main:  SectionEntries(items, models.SectionMain),
		Runes: SectionEntries(items, models.SectionRune),
		Side:  SectionEntries(items, models.SectionSide),
		Title: &title,
	}
}

// Marshal encodes the document as indented JSON.
func (d *Document) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal deck document: %w", err)
	}
	return data, nil
}

// Export renders a deck and its items as the canonical export document.
func Export(deck *models.Deck, items []*models.DeckItem) (string, error) {
	if deck == nil {
		return "", fmt.Errorf("deck is required")
	}
	data, err := NewDocument(deck, items).Marshal()
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ExportToWriter writes the export document followed by a newline.
func ExportToWriter(w io.Writer, deck *models.Deck, items []*models.DeckItem) error {
	doc, err := Export(deck, items)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, doc+"\n"); err != nil {
		return fmt.Errorf("failed to write deck export: %w", err)
	}
	return nil
}

// WriteFile writes the export document to path, creating parent
// directories. An existing file is only replaced when overwrite is set.
func WriteFile(path string, deck *models.Deck, items []*models.DeckItem, overwrite bool) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if _, statErr := os.Stat(path); statErr == nil && !overwrite {
		return fmt.Errorf("file already exists: %s (use overwrite option to replace)", path)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	return ExportToWriter(file, deck, items)
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// GenerateFilename returns a default file name for a deck export, e.g.
// "jinx_aggro_20251001_120000.json".
func GenerateFilename(deck *models.Deck, now time.Time) string {
	base := strings.Trim(unsafeFilenameChars.ReplaceAllString(strings.ToLower(deck.Title), "_"), "_")
	if base == "" {
		base = "deck"
	}
	return fmt.Sprintf("%s_%s.json", base, now.Format("20060102_150405"))
}
