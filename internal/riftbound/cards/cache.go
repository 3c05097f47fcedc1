package cards

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"

	"github.com/ramonehamilton/Riftbound-Companion/internal/storage/models"
)

const (
	// DefaultCacheSize is the number of cards kept in the by-id cache.
	DefaultCacheSize = 2048

	// DefaultMaxStaleAge is how long a catalog snapshot is served before reloading.
	DefaultMaxStaleAge = 24 * time.Hour
)

// CardStore provides read access to the persisted catalog.
type CardStore interface {
	GetByID(ctx context.Context, id string) (*models.Card, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*models.Card, error)
	List(ctx context.Context) ([]*models.Card, error)
}

// CacheConfig configures the catalog cache.
type CacheConfig struct {
	Store       CardStore
	Logger      *slog.Logger
	Size        int           // By-id cache entries (0 = DefaultCacheSize)
	MaxStaleAge time.Duration // Snapshot lifetime (0 = DefaultMaxStaleAge)
	Clock       func() time.Time
}

// Cache serves catalog reads from memory. Single cards go through an LRU
// keyed by id; full listings come from a snapshot reloaded once it is older
// than MaxStaleAge.
type Cache struct {
	store       CardStore
	logger      *slog.Logger
	byID        *lru.Cache
	maxStaleAge time.Duration
	now         func() time.Time

	mu       sync.RWMutex
	snapshot []*models.Card
	loadedAt time.Time
}

// NewCache creates a catalog cache.
func NewCache(config CacheConfig) (*Cache, error) {
	if config.Store == nil {
		return nil, fmt.Errorf("card store is required")
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Size <= 0 {
		config.Size = DefaultCacheSize
	}
	if config.MaxStaleAge <= 0 {
		config.MaxStaleAge = DefaultMaxStaleAge
	}
	if config.Clock == nil {
		config.Clock = time.Now
	}

	byID, err := lru.New(config.Size)
	if err != nil {
		return nil, fmt.Errorf("failed to create card cache: %w", err)
	}

	return &Cache{
		store:       config.Store,
		logger:      config.Logger,
		byID:        byID,
		maxStaleAge: config.MaxStaleAge,
		now:         config.Clock,
	}, nil
}

// Get returns a card by id. Returns nil if the card is not in the catalog.
func (c *Cache) Get(ctx context.Context, id string) (*models.Card, error) {
	if cached, ok := c.byID.Get(id); ok {
		return cached.(*models.Card), nil
	}

	card, err := c.store.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load card %s: %w", id, err)
	}
	if card != nil {
		c.byID.Add(id, card)
	}
	return card, nil
}

// GetMany returns the known cards keyed by id and the ids that are not in
// the catalog, in request order.
func (c *Cache) GetMany(ctx context.Context, ids []string) (map[string]*models.Card, []string, error) {
	found := make(map[string]*models.Card, len(ids))
	var misses []string
	for _, id := range ids {
		if _, seen := found[id]; seen {
			continue
		}
		if cached, ok := c.byID.Get(id); ok {
			found[id] = cached.(*models.Card)
			continue
		}
		misses = append(misses, id)
	}

	if len(misses) > 0 {
		loaded, err := c.store.GetByIDs(ctx, misses)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load cards: %w", err)
		}
		for id, card := range loaded {
			c.byID.Add(id, card)
			found[id] = card
		}
	}

	var unknown []string
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if _, ok := found[id]; !ok {
			unknown = append(unknown, id)
		}
	}
	return found, unknown, nil
}

// All returns the whole catalog ordered by name, reloading it when the
// snapshot is empty or stale. When a reload fails and an older snapshot
// exists, the older snapshot is returned.
func (c *Cache) All(ctx context.Context) ([]*models.Card, error) {
	if !c.IsStale() {
		return c.copySnapshot(), nil
	}

	if err := c.Refresh(ctx); err != nil {
		c.mu.RLock()
		hasSnapshot := len(c.snapshot) > 0
		c.mu.RUnlock()
		if !hasSnapshot {
			return nil, err
		}
		c.logger.Warn("Serving stale card catalog", "error", err)
	}
	return c.copySnapshot(), nil
}

// Refresh reloads the catalog snapshot from the store.
func (c *Cache) Refresh(ctx context.Context) error {
	start := c.now()
	cards, err := c.store.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to load card catalog: %w", err)
	}

	for _, card := range cards {
		c.byID.Add(card.ID, card)
	}

	c.mu.Lock()
	c.snapshot = cards
	c.loadedAt = c.now()
	c.mu.Unlock()

	c.logger.Debug("Card catalog loaded", "cards", len(cards), "duration", c.now().Sub(start))
	return nil
}

// IsStale reports whether the snapshot is empty or older than MaxStaleAge.
func (c *Cache) IsStale() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.snapshot) == 0 {
		return true
	}
	return c.now().Sub(c.loadedAt) > c.maxStaleAge
}

// Invalidate drops every cached card and the snapshot.
func (c *Cache) Invalidate() {
	c.byID.Purge()
	c.mu.Lock()
	c.snapshot = nil
	c.loadedAt = time.Time{}
	c.mu.Unlock()
}

// Len returns the number of cards held by the by-id cache.
func (c *Cache) Len() int {
	return c.byID.Len()
}

func (c *Cache) copySnapshot() []*models.Card {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*models.Card, len(c.snapshot))
	copy(out, c.snapshot)
	return out
}
