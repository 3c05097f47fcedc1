package repository

import (
	"context"
	"testing"

	"github.com/ramonehamilton/Riftbound-Companion/internal/storage/models"
)

func sampleCards() []*models.Card {
	return []*models.Card{
		{
			ID: "OGN-001", Number: "001", Name: "Get Excited!", Type: models.CardTypeSpell,
			Domains: []string{"Fury"}, EnergyCost: intPtr(2), Keywords: []string{"Action"},
			RulesText: "Deal 3 to a unit.", IsSignature: true, ChampionTag: strPtr("Jinx"),
			SetCode: "OGN", Rarity: strPtr("Epic"),
		},
		{
			ID: "OGN-040", Number: "040", Name: "Flash Bomb", Type: models.CardTypeGear,
			Domains: []string{"Chaos"}, EnergyCost: intPtr(1), SetCode: "OGN",
		},
		{
			ID: "OGN-300", Number: "300", Name: "Fury Rune", Type: models.CardTypeRune,
			Domains: []string{"Fury"}, IsRune: true, SetCode: "OGN",
		},
		{
			ID: "OGN-250", Number: "250", Name: "Sunken Temple", Type: models.CardTypeBattlefield,
			IsBattlefield: true, SetCode: "OGN", Might: intPtr(0),
		},
	}
}

func TestCardRepository_SaveAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCardRepository(db)
	ctx := context.Background()

	if err := repo.SaveBatch(ctx, sampleCards()); err != nil {
		t.Fatalf("failed to save cards: %v", err)
	}

	card, err := repo.GetByID(ctx, "OGN-001")
	if err != nil {
		t.Fatalf("failed to get card: %v", err)
	}
	if card == nil {
		t.Fatal("expected card, got nil")
	}
	if card.Name != "Get Excited!" || !card.IsSignature || card.ChampionTag == nil || *card.ChampionTag != "Jinx" {
		t.Errorf("unexpected card %+v", card)
	}
	if card.EnergyCost == nil || *card.EnergyCost != 2 {
		t.Errorf("energy cost = %v", card.EnergyCost)
	}
	if card.Might != nil {
		t.Errorf("expected nil might, got %d", *card.Might)
	}
	if len(card.Keywords) != 1 || card.Keywords[0] != "Action" {
		t.Errorf("keywords = %v", card.Keywords)
	}
	if card.Tags == nil || len(card.Tags) != 0 {
		t.Errorf("expected empty non-nil tags, got %#v", card.Tags)
	}

	battlefield, _ := repo.GetByID(ctx, "OGN-250")
	if battlefield.Might == nil || *battlefield.Might != 0 {
		t.Errorf("zero might should round-trip, got %v", battlefield.Might)
	}

	missing, err := repo.GetByID(ctx, "XXX-999")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing card")
	}
}

func TestCardRepository_Upsert(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCardRepository(db)
	ctx := context.Background()

	cards := sampleCards()
	if err := repo.SaveBatch(ctx, cards); err != nil {
		t.Fatalf("failed to save cards: %v", err)
	}

	cards[1].Name = "Flash Bomb (Errata)"
	if err := repo.SaveBatch(ctx, cards[1:2]); err != nil {
		t.Fatalf("failed to upsert card: %v", err)
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 4 {
		t.Errorf("expected 4 cards, got %d", count)
	}
	card, _ := repo.GetByID(ctx, "OGN-040")
	if card.Name != "Flash Bomb (Errata)" {
		t.Errorf("upsert did not update name: %s", card.Name)
	}
}

func TestCardRepository_GetByIDs(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCardRepository(db)
	ctx := context.Background()

	if err := repo.SaveBatch(ctx, sampleCards()); err != nil {
		t.Fatalf("failed to save cards: %v", err)
	}

	cards, err := repo.GetByIDs(ctx, []string{"OGN-001", "OGN-300", "missing"})
	if err != nil {
		t.Fatalf("GetByIDs failed: %v", err)
	}
	if len(cards) != 2 {
		t.Fatalf("expected 2 cards, got %d", len(cards))
	}
	if _, ok := cards["missing"]; ok {
		t.Error("missing id must be absent")
	}

	empty, err := repo.GetByIDs(ctx, nil)
	if err != nil || len(empty) != 0 {
		t.Errorf("expected empty map, got %v, %v", empty, err)
	}
}

func TestCardRepository_Query(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCardRepository(db)
	ctx := context.Background()

	if err := repo.SaveBatch(ctx, sampleCards()); err != nil {
		t.Fatalf("failed to save cards: %v", err)
	}

	tests := []struct {
		name     string
		query    CardQuery
		expected int
	}{
		{name: "all", query: CardQuery{}, expected: 4},
		{name: "runes", query: CardQuery{RunesOnly: true}, expected: 1},
		{name: "champion", query: CardQuery{ChampionTag: "Jinx"}, expected: 1},
		{name: "type", query: CardQuery{Type: models.CardTypeGear}, expected: 1},
		{name: "name like", query: CardQuery{NameLike: "bomb"}, expected: 1},
		{name: "set", query: CardQuery{SetCode: "SFD"}, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cards, err := repo.Query(ctx, tt.query)
			if err != nil {
				t.Fatalf("query failed: %v", err)
			}
			if len(cards) != tt.expected {
				t.Errorf("expected %d cards, got %d", tt.expected, len(cards))
			}
		})
	}
}

func TestCardRepository_ListAndDelete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCardRepository(db)
	ctx := context.Background()

	if err := repo.SaveBatch(ctx, sampleCards()); err != nil {
		t.Fatalf("failed to save cards: %v", err)
	}

	all, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 4 || all[0].Name != "Flash Bomb" {
		t.Errorf("expected name ordering, got first %q", all[0].Name)
	}

	if err := repo.DeleteBatch(ctx, []string{"OGN-001", "OGN-040"}); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	count, _ := repo.Count(ctx)
	if count != 2 {
		t.Errorf("expected 2 cards after delete, got %d", count)
	}
}
