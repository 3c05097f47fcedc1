package deckexport

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ramonehamilton/Riftbound-Companion/internal/storage/models"
)

func sampleDeck() (*models.Deck, []*models.DeckItem) {
	desc := "Fast and loud"
	deck := &models.Deck{
		ID:                "deck_1",
		OwnerUserID:       "user_a",
		Title:             "Jinx Aggro",
		Description:       &desc,
		LegendChampionTag: "Jinx",
		LegendDomains:     []string{"Fury", "Chaos"},
	}
	items := []*models.DeckItem{
		models.NewDeckItem(deck.ID, "OGN-010", models.SectionMain, 3),
		models.NewDeckItem(deck.ID, "OGN-002", models.SectionMain, 2),
		models.NewDeckItem(deck.ID, "OGN-200", models.SectionRune, 12),
	}
	return deck, items
}

func TestExport_KeysSortedAndQuantitiesAsStrings(t *testing.T) {
	deck, items := sampleDeck()

	out, err := Export(deck, items)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	keys := []string{`"description"`, `"legend"`, `"main"`, `"runes"`, `"side"`, `"title"`}
	last := -1
	for _, key := range keys {
		idx := strings.Index(out, key)
		if idx < 0 {
			t.Fatalf("missing key %s in %s", key, out)
		}
		if idx < last {
			t.Errorf("key %s out of order", key)
		}
		last = idx
	}

	var generic map[string]interface{}
	if err := json.Unmarshal([]byte(out), &generic); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	main := generic["main"].([]interface{})
	if len(main) != 2 {
		t.Fatalf("expected 2 main entries, got %d", len(main))
	}
	first := main[0].([]interface{})
	if first[0] != "OGN-002" || first[1] != "2" {
		t.Errorf("unexpected first entry %v", first)
	}
	if side := generic["side"].([]interface{}); len(side) != 0 {
		t.Errorf("expected empty side list, got %v", side)
	}
	if !strings.Contains(out, "\n  ") {
		t.Error("expected pretty-printed output")
	}
}

func TestExport_NullDescription(t *testing.T) {
	deck, items := sampleDeck()
	deck.Description = nil

	out, err := Export(deck, items)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if !strings.Contains(out, `"description": null`) {
		t.Errorf("expected null description, got %s", out)
	}
}

func TestExport_NilDeck(t *testing.T) {
	if _, err := Export(nil, nil); err == nil {
		t.Error("expected error for nil deck")
	}
}

func TestSectionEntries(t *testing.T) {
	_, items := sampleDeck()

	entries := SectionEntries(items, models.SectionSide)
	if entries == nil || len(entries) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", entries)
	}

	runes := SectionEntries(items, models.SectionRune)
	if len(runes) != 1 || runes[0] != (Entry{"OGN-200", "12"}) {
		t.Errorf("unexpected rune entries %v", runes)
	}
}

func TestExportToWriter(t *testing.T) {
	deck, items := sampleDeck()
	var buf bytes.Buffer

	if err := ExportToWriter(&buf, deck, items); err != nil {
		t.Fatalf("ExportToWriter failed: %v", err)
	}
	if !strings.HasSuffix(buf.String(), "}\n") {
		t.Error("expected trailing newline")
	}
}

func TestWriteFile(t *testing.T) {
	deck, items := sampleDeck()
	path := filepath.Join(t.TempDir(), "nested", "deck.json")

	if err := WriteFile(path, deck, items, false); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read export: %v", err)
	}
	if !strings.Contains(string(data), `"Jinx Aggro"`) {
		t.Errorf("unexpected file contents: %s", data)
	}

	if err := WriteFile(path, deck, items, false); err == nil {
		t.Error("expected error when file exists and overwrite is off")
	}
	if err := WriteFile(path, deck, items, true); err != nil {
		t.Errorf("overwrite failed: %v", err)
	}
}

func TestGenerateFilename(t *testing.T) {
	now := time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		title    string
		expected string
	}{
		{title: "Jinx Aggro", expected: "jinx_aggro_20251001_120000.json"},
		{title: "  !!  ", expected: "deck_20251001_120000.json"},
		{title: "Viktor/Control v2", expected: "viktor_control_v2_20251001_120000.json"},
	}

	for _, tt := range tests {
		got := GenerateFilename(&models.Deck{Title: tt.title}, now)
		if got != tt.expected {
			t.Errorf("GenerateFilename(%q) = %q, want %q", tt.title, got, tt.expected)
		}
	}
}
