package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/ramonehamilton/Riftbound-Companion/internal/storage"
	"github.com/ramonehamilton/Riftbound-Companion/internal/storage/models"
)

func createDeck(t *testing.T, repo DeckRepository, owner, title string) *models.Deck {
	t.Helper()
	deck := models.NewDeck(owner, title, strPtr("notes"), "Jinx", []string{"Fury", "Chaos"})
	if err := repo.Create(context.Background(), deck); err != nil {
		t.Fatalf("failed to create deck: %v", err)
	}
	return deck
}

func TestDeckRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDeckRepository(db)
	ctx := context.Background()

	deck := createDeck(t, repo, "user_a", "Jinx Aggro")
	if deck.Version != 1 {
		t.Errorf("expected version 1 after create, got %d", deck.Version)
	}

	got, err := repo.GetByID(ctx, deck.ID, models.PartitionPrivate)
	if err != nil {
		t.Fatalf("failed to get deck: %v", err)
	}
	if got == nil {
		t.Fatal("expected deck, got nil")
	}
	if got.Title != "Jinx Aggro" || got.OwnerUserID != "user_a" {
		t.Errorf("unexpected deck %+v", got)
	}
	if got.Description == nil || *got.Description != "notes" {
		t.Errorf("description not persisted: %v", got.Description)
	}
	if len(got.LegendDomains) != 2 || got.LegendDomains[0] != "Fury" {
		t.Errorf("legend domains = %v", got.LegendDomains)
	}
	if got.IsPublic {
		t.Error("new deck should be private")
	}

	public, err := repo.GetByID(ctx, deck.ID, models.PartitionPublic)
	if err != nil {
		t.Fatalf("failed to get deck: %v", err)
	}
	if public != nil {
		t.Error("private deck must not be visible in the public partition")
	}

	found, err := repo.Find(ctx, deck.ID)
	if err != nil || found == nil {
		t.Fatalf("Find failed: %v, %v", found, err)
	}
}

func TestDeckRepository_GetByID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDeckRepository(db)

	deck, err := repo.GetByID(context.Background(), "nope", models.PartitionPrivate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deck != nil {
		t.Error("expected nil for missing deck")
	}
}

func TestDeckRepository_UpdateOptimisticConcurrency(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDeckRepository(db)
	ctx := context.Background()

	deck := createDeck(t, repo, "user_a", "Original")
	stale := *deck

	deck.Title = "Renamed"
	deck.CountMain = 40
	if err := repo.Update(ctx, deck); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if deck.Version != 2 {
		t.Errorf("expected version 2, got %d", deck.Version)
	}

	stale.Title = "Stale write"
	err := repo.Update(ctx, &stale)
	if !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	got, _ := repo.GetByID(ctx, deck.ID, models.PartitionPrivate)
	if got.Title != "Renamed" || got.CountMain != 40 {
		t.Errorf("stale write applied: %+v", got)
	}

	missing := models.NewDeck("user_a", "Ghost", nil, "Jinx", []string{"Fury"})
	missing.Version = 1
	if err := repo.Update(ctx, missing); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestDeckRepository_Query(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDeckRepository(db)
	ctx := context.Background()

	a1 := createDeck(t, repo, "user_a", "A1")
	createDeck(t, repo, "user_a", "A2")
	createDeck(t, repo, "user_b", "B1")

	mine, err := repo.Query(ctx, DeckQuery{Partition: models.PartitionPrivate, OwnerUserID: "user_a"})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(mine) != 2 {
		t.Errorf("expected 2 decks for user_a, got %d", len(mine))
	}

	byID, err := repo.Query(ctx, DeckQuery{Partition: models.PartitionPrivate, IDs: []string{a1.ID}})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(byID) != 1 || byID[0].ID != a1.ID {
		t.Errorf("unexpected decks %v", byID)
	}

	limited, err := repo.Query(ctx, DeckQuery{Partition: models.PartitionPrivate, Limit: 1})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("expected limit to apply, got %d", len(limited))
	}

	public, err := repo.Query(ctx, DeckQuery{Partition: models.PartitionPublic})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(public) != 0 {
		t.Errorf("expected no public decks, got %d", len(public))
	}
}

func TestDeckRepository_Move(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDeckRepository(db)
	ctx := context.Background()

	deck := createDeck(t, repo, "user_a", "Shared")

	if err := repo.Move(ctx, deck, models.PartitionPublic); err != nil {
		t.Fatalf("move failed: %v", err)
	}
	if !deck.IsPublic || deck.Version != 2 {
		t.Errorf("deck not updated in memory: %+v", deck)
	}

	got, err := repo.GetByID(ctx, deck.ID, models.PartitionPublic)
	if err != nil || got == nil {
		t.Fatalf("deck not in public partition: %v", err)
	}
	if !got.IsPublic {
		t.Error("expected is_public set")
	}

	// Moving to the same partition is a no-op.
	if err := repo.Move(ctx, deck, models.PartitionPublic); err != nil {
		t.Errorf("no-op move failed: %v", err)
	}
}

func TestDeckRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDeckRepository(db)
	items := NewDeckItemRepository(db)
	ctx := context.Background()

	deck := createDeck(t, repo, "user_a", "Doomed")
	if err := items.SaveBatch(ctx, []*models.DeckItem{
		models.NewDeckItem(deck.ID, "OGN-001", models.SectionMain, 2),
	}, models.PartitionPrivate); err != nil {
		t.Fatalf("failed to save items: %v", err)
	}

	if err := repo.Delete(ctx, deck.ID, models.PartitionPrivate); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	remaining, err := items.ListByDeck(ctx, deck.ID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(remaining) != 0 {
		t.Errorf("expected items to cascade, found %d", len(remaining))
	}

	if err := repo.Delete(ctx, deck.ID, models.PartitionPrivate); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected not found on second delete, got %v", err)
	}
}

func TestDeckRepository_DeleteBatch(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDeckRepository(db)
	ctx := context.Background()

	d1 := createDeck(t, repo, "user_a", "One")
	d2 := createDeck(t, repo, "user_a", "Two")
	d3 := createDeck(t, repo, "user_a", "Three")

	if err := repo.DeleteBatch(ctx, []string{d1.ID, d2.ID}, models.PartitionPrivate); err != nil {
		t.Fatalf("delete batch failed: %v", err)
	}

	decks, _ := repo.Query(ctx, DeckQuery{Partition: models.PartitionPrivate})
	if len(decks) != 1 || decks[0].ID != d3.ID {
		t.Errorf("unexpected remaining decks %v", decks)
	}
}

func TestDeckRepository_InTransaction(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	repo := NewDeckRepository(tx)
	deck := models.NewDeck("user_a", "Rolled back", nil, "Jinx", []string{"Fury"})
	if err := repo.Create(ctx, deck); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("rollback failed: %v", err)
	}

	got, err := NewDeckRepository(db).Find(ctx, deck.ID)
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if got != nil {
		t.Error("expected deck to be rolled back")
	}
}
