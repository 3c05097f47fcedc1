package facade

import (
	"context"
	"log"
	"strings"

	"github.com/ramonehamilton/Riftbound-Companion/internal/riftbound/cards"
	"github.com/ramonehamilton/Riftbound-Companion/internal/storage"
	"github.com/ramonehamilton/Riftbound-Companion/internal/storage/models"
	"github.com/ramonehamilton/Riftbound-Companion/internal/storage/repository"
)

// CardFacade handles card catalog operations.
type CardFacade struct {
	services *Services
}

// NewCardFacade creates a new CardFacade with the given services.
func NewCardFacade(services *Services) *CardFacade {
	return &CardFacade{services: services}
}

// CardSearch describes a catalog listing.
type CardSearch struct {
	Text    string           `json:"text"`
	Filters cards.Filters    `json:"filters"`
	Sort    cards.SortOption `json:"sort"`

	// Fuzzy ranks by name similarity to Text instead of substring matching.
	Fuzzy bool `json:"fuzzy"`

	// Limit caps the results. Zero means no limit.
	Limit int `json:"limit"`
}

// Search lists catalog cards matching the search.
func (c *CardFacade) Search(ctx context.Context, search CardSearch) ([]*models.Card, error) {
	all, err := c.services.Cards.All(ctx)
	if err != nil {
		return nil, storeError("load card catalog", err)
	}

	var results []*models.Card
	if search.Fuzzy && strings.TrimSpace(search.Text) != "" {
		results = cards.Search(cards.Filter(all, "", search.Filters), search.Text)
	} else {
		results = cards.Filter(all, search.Text, search.Filters)
		cards.Sort(results, search.Sort)
	}

	if search.Limit > 0 && len(results) > search.Limit {
		results = results[:search.Limit]
	}
	if results == nil {
		results = []*models.Card{}
	}
	return results, nil
}

// Get retrieves a card by ID.
func (c *CardFacade) Get(ctx context.Context, cardID string) (*models.Card, error) {
	card, err := c.services.Cards.Get(ctx, cardID)
	if err != nil {
		return nil, storeError("load card", err)
	}
	if card == nil {
		return nil, notFound("Card")
	}
	return card, nil
}

// GetMany retrieves cards by ID. Unknown IDs are returned separately.
func (c *CardFacade) GetMany(ctx context.Context, cardIDs []string) (map[string]*models.Card, []string, error) {
	found, unknown, err := c.services.Cards.GetMany(ctx, cardIDs)
	if err != nil {
		return nil, nil, storeError("load cards", err)
	}
	return found, unknown, nil
}

// ImportCatalog saves cards into the catalog and drops the cached copy.
func (c *CardFacade) ImportCatalog(ctx context.Context, catalog []*models.Card) (int, error) {
	for _, card := range catalog {
		if card == nil || strings.TrimSpace(card.ID) == "" || strings.TrimSpace(card.Name) == "" {
			return 0, invalidInput("Every card needs an ID and a name")
		}
	}

	err := storage.RetryOnBusy(func() error {
		return repository.NewCardRepository(c.services.DB.Conn()).SaveBatch(ctx, catalog)
	})
	if err != nil {
		return 0, storeError("import cards", err)
	}

	c.services.Cards.Invalidate()
	log.Printf("Imported %d cards into the catalog", len(catalog))
	return len(catalog), nil
}
