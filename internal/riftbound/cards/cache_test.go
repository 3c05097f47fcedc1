package cards

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ramonehamilton/Riftbound-Companion/internal/storage/models"
)

type fakeStore struct {
	cards     map[string]*models.Card
	listErr   error
	getCalls  int
	manyCalls int
	listCalls int
}

func newFakeStore() *fakeStore {
	s := &fakeStore{cards: make(map[string]*models.Card)}
	for _, c := range catalog() {
		s.cards[c.ID] = c
	}
	return s
}

func (s *fakeStore) GetByID(ctx context.Context, id string) (*models.Card, error) {
	s.getCalls++
	return s.cards[id], nil
}

func (s *fakeStore) GetByIDs(ctx context.Context, ids []string) (map[string]*models.Card, error) {
	s.manyCalls++
	out := make(map[string]*models.Card)
	for _, id := range ids {
		if c, ok := s.cards[id]; ok {
			out[id] = c
		}
	}
	return out, nil
}

func (s *fakeStore) List(ctx context.Context) ([]*models.Card, error) {
	s.listCalls++
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]*models.Card, 0, len(s.cards))
	for _, c := range s.cards {
		out = append(out, c)
	}
	Sort(out, SortByName)
	return out, nil
}

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func newTestCache(t *testing.T, store *fakeStore, clock *fakeClock) *Cache {
	t.Helper()
	cache, err := NewCache(CacheConfig{
		Store:  store,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Size:   16,
		Clock:  clock.Now,
	})
	if err != nil {
		t.Fatalf("NewCache failed: %v", err)
	}
	return cache
}

func TestNewCache_RequiresStore(t *testing.T) {
	if _, err := NewCache(CacheConfig{}); err == nil {
		t.Error("expected error without a store")
	}
}

func TestCache_Get(t *testing.T) {
	store := newFakeStore()
	cache := newTestCache(t, store, &fakeClock{now: time.Now()})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		card, err := cache.Get(ctx, "OGN-040")
		if err != nil || card == nil || card.Name != "Flash Bomb" {
			t.Fatalf("Get() = %v, %v", card, err)
		}
	}
	if store.getCalls != 1 {
		t.Errorf("expected 1 store call, got %d", store.getCalls)
	}

	missing, err := cache.Get(ctx, "NOPE-1")
	if err != nil || missing != nil {
		t.Errorf("expected nil for unknown card, got %v, %v", missing, err)
	}
}

func TestCache_GetMany(t *testing.T) {
	store := newFakeStore()
	cache := newTestCache(t, store, &fakeClock{now: time.Now()})
	ctx := context.Background()

	if _, err := cache.Get(ctx, "OGN-001"); err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	found, unknown, err := cache.GetMany(ctx, []string{"OGN-001", "OGN-300", "GONE-1", "OGN-300", "GONE-2"})
	if err != nil {
		t.Fatalf("GetMany failed: %v", err)
	}
	if len(found) != 2 || found["OGN-001"] == nil || found["OGN-300"] == nil {
		t.Errorf("unexpected found set %v", found)
	}
	if !equalIDs(unknown, []string{"GONE-1", "GONE-2"}) {
		t.Errorf("unknown = %v", unknown)
	}
	if store.manyCalls != 1 {
		t.Errorf("expected 1 batch call, got %d", store.manyCalls)
	}
}

func TestCache_AllReloadsWhenStale(t *testing.T) {
	store := newFakeStore()
	clock := &fakeClock{now: time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)}
	cache := newTestCache(t, store, clock)
	ctx := context.Background()

	if !cache.IsStale() {
		t.Error("empty cache should be stale")
	}

	all, err := cache.All(ctx)
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(all) != 5 || all[0].Name != "Arcane Shift" {
		t.Fatalf("unexpected catalog %v", ids(all))
	}

	clock.now = clock.now.Add(23 * time.Hour)
	if _, err := cache.All(ctx); err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if store.listCalls != 1 {
		t.Errorf("fresh snapshot should not reload, got %d loads", store.listCalls)
	}

	clock.now = clock.now.Add(2 * time.Hour)
	if !cache.IsStale() {
		t.Error("snapshot older than 24h should be stale")
	}
	if _, err := cache.All(ctx); err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if store.listCalls != 2 {
		t.Errorf("stale snapshot should reload, got %d loads", store.listCalls)
	}

	// Served cards are warm in the by-id cache.
	if _, err := cache.Get(ctx, "OGN-250"); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if store.getCalls != 0 {
		t.Errorf("expected cache hit after snapshot load, got %d store calls", store.getCalls)
	}
}

func TestCache_AllServesStaleSnapshotOnError(t *testing.T) {
	store := newFakeStore()
	clock := &fakeClock{now: time.Now()}
	cache := newTestCache(t, store, clock)
	ctx := context.Background()

	if _, err := cache.All(ctx); err != nil {
		t.Fatalf("All failed: %v", err)
	}

	store.listErr = errors.New("database is locked")
	clock.now = clock.now.Add(48 * time.Hour)

	all, err := cache.All(ctx)
	if err != nil {
		t.Fatalf("expected stale snapshot, got error %v", err)
	}
	if len(all) != 5 {
		t.Errorf("expected 5 cards, got %d", len(all))
	}

	cache.Invalidate()
	if cache.Len() != 0 {
		t.Errorf("expected empty cache after invalidate, got %d", cache.Len())
	}
	if _, err := cache.All(ctx); err == nil {
		t.Error("expected error with no snapshot to fall back on")
	}
}
