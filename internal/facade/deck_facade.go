package facade

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/ramonehamilton/Riftbound-Companion/internal/riftbound/aggregate"
	"github.com/ramonehamilton/Riftbound-Companion/internal/riftbound/deckexport"
	"github.com/ramonehamilton/Riftbound-Companion/internal/riftbound/deckimport"
	"github.com/ramonehamilton/Riftbound-Companion/internal/riftbound/validator"
	"github.com/ramonehamilton/Riftbound-Companion/internal/storage"
	"github.com/ramonehamilton/Riftbound-Companion/internal/storage/models"
	"github.com/ramonehamilton/Riftbound-Companion/internal/storage/repository"
)

// DeckFacade handles deck builder operations.
type DeckFacade struct {
	services *Services
}

// NewDeckFacade creates a new DeckFacade with the given services.
func NewDeckFacade(services *Services) *DeckFacade {
	return &DeckFacade{services: services}
}

// DeckInput is the editable metadata of a deck.
type DeckInput struct {
	Title             string   `json:"title"`
	Description       *string  `json:"description,omitempty"`
	LegendChampionTag string   `json:"legendChampionTag"`
	LegendDomains     []string `json:"legendDomains"`

	// Version is the deck version the edit was based on. Zero skips the check.
	Version int `json:"version,omitempty"`
}

func (in DeckInput) normalize() (DeckInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return in, invalidInput("Deck title cannot be empty")
	}
	in.LegendChampionTag = strings.TrimSpace(in.LegendChampionTag)
	if in.LegendChampionTag == "" {
		return in, invalidInput("Legend is required")
	}

	seen := make(map[string]bool, len(in.LegendDomains))
	domains := make([]string, 0, len(in.LegendDomains))
	for _, d := range in.LegendDomains {
		d = strings.TrimSpace(d)
		if d == "" || seen[d] {
			continue
		}
		seen[d] = true
		domains = append(domains, d)
	}
	if len(domains) == 0 {
		return in, invalidInput("Legend domains cannot be empty")
	}
	in.LegendDomains = domains

	if in.Description != nil && strings.TrimSpace(*in.Description) == "" {
		in.Description = nil
	}
	return in, nil
}

// CardQuantity adds qty copies of a card to a section.
type CardQuantity struct {
	CardID  string         `json:"cardId"`
	Section models.Section `json:"section"`
	Qty     int            `json:"qty"`
}

// DeckDetail is a deck with its items and the cards they reference.
type DeckDetail struct {
	Deck           *models.Deck            `json:"deck"`
	Items          []*models.DeckItem      `json:"items"`
	Cards          map[string]*models.Card `json:"cards"`
	UnknownCardIDs []string                `json:"unknownCardIds,omitempty"`
}

// DeckValidation is the validation report of a deck.
type DeckValidation struct {
	DeckID         string            `json:"deckId"`
	Result         *validator.Result `json:"result"`
	UnknownCardIDs []string          `json:"unknownCardIds,omitempty"`
}

// deckTx bundles the repositories bound to one transaction.
type deckTx struct {
	decks repository.DeckRepository
	items repository.DeckItemRepository
	votes repository.VoteRepository
}

func newDeckTx(q repository.Querier) *deckTx {
	return &deckTx{
		decks: repository.NewDeckRepository(q),
		items: repository.NewDeckItemRepository(q),
		votes: repository.NewVoteRepository(q),
	}
}

// Create creates a new private deck.
func (d *DeckFacade) Create(ctx context.Context, ownerUserID string, input DeckInput) (*models.Deck, error) {
	if ownerUserID == "" {
		return nil, forbidden("Sign in to create decks")
	}
	input, err := input.normalize()
	if err != nil {
		return nil, err
	}

	deck := models.NewDeck(ownerUserID, input.Title, input.Description, input.LegendChampionTag, input.LegendDomains)
	err = storage.RetryOnBusy(func() error {
		return repository.NewDeckRepository(d.services.DB.Conn()).Create(ctx, deck)
	})
	if err != nil {
		return nil, storeError("create deck", err)
	}

	log.Printf("Created deck %s (%s)", deck.Title, deck.ID)
	return deck, nil
}

// Get retrieves a deck with its items and cards. Private decks are only
// visible to their owner.
func (d *DeckFacade) Get(ctx context.Context, userID, deckID string) (*DeckDetail, error) {
	deck, items, err := d.load(ctx, userID, deckID)
	if err != nil {
		return nil, err
	}

	cardMap, unknown, err := d.services.Cards.GetMany(ctx, itemCardIDs(items))
	if err != nil {
		return nil, storeError("load cards", err)
	}

	if items == nil {
		items = []*models.DeckItem{}
	}
	return &DeckDetail{Deck: deck, Items: items, Cards: cardMap, UnknownCardIDs: unknown}, nil
}

// ListMine retrieves the user's decks from both partitions, most recently
// updated first.
func (d *DeckFacade) ListMine(ctx context.Context, ownerUserID string) ([]*models.Deck, error) {
	repo := repository.NewDeckRepository(d.services.DB.Conn())

	var decks []*models.Deck
	for _, partition := range []models.Partition{models.PartitionPrivate, models.PartitionPublic} {
		var found []*models.Deck
		err := storage.RetryOnBusy(func() error {
			var err error
			found, err = repo.Query(ctx, repository.DeckQuery{Partition: partition, OwnerUserID: ownerUserID})
			return err
		})
		if err != nil {
			return nil, storeError("list decks", err)
		}
		decks = append(decks, found...)
	}

	sort.SliceStable(decks, func(i, j int) bool {
		if !decks[i].UpdatedAt.Equal(decks[j].UpdatedAt) {
			return decks[i].UpdatedAt.After(decks[j].UpdatedAt)
		}
		return decks[i].ID < decks[j].ID
	})
	if decks == nil {
		decks = []*models.Deck{}
	}
	return decks, nil
}

// Update saves deck metadata.
func (d *DeckFacade) Update(ctx context.Context, userID, deckID string, input DeckInput) (*models.Deck, error) {
	input, err := input.normalize()
	if err != nil {
		return nil, err
	}

	return d.mutate(ctx, userID, deckID, "update deck", func(ctx context.Context, tx *deckTx, deck *models.Deck, items []*models.DeckItem) error {
		if input.Version != 0 && input.Version != deck.Version {
			return &AppError{
				Message: "Deck was changed elsewhere. Reload and try again.",
				Err:     fmt.Errorf("deck %s is at version %d, edit based on %d: %w", deck.ID, deck.Version, input.Version, storage.ErrConflict),
			}
		}
		deck.Title = input.Title
		deck.Description = input.Description
		deck.LegendChampionTag = input.LegendChampionTag
		deck.LegendDomains = input.LegendDomains
		return nil
	})
}

// Delete removes a deck with its items and votes.
func (d *DeckFacade) Delete(ctx context.Context, userID, deckID string) error {
	err := storage.RetryOnBusy(func() error {
		return d.services.DB.WithTransaction(ctx, func(sqlTx *sql.Tx) error {
			tx := newDeckTx(sqlTx)
			deck, err := ownedDeck(ctx, tx, userID, deckID)
			if err != nil {
				return err
			}
			if err := tx.votes.DeleteByDeck(ctx, deck.ID); err != nil {
				return err
			}
			if err := tx.items.DeleteByDeck(ctx, deck.ID); err != nil {
				return err
			}
			return tx.decks.Delete(ctx, deck.ID, deck.Partition())
		})
	})
	if err != nil {
		return storeError("delete deck", err)
	}

	log.Printf("Deleted deck %s", deckID)
	return nil
}

// AddCards adds cards to a deck, merging into existing items of the same
// card and section. Cards missing from the catalog are accepted.
func (d *DeckFacade) AddCards(ctx context.Context, userID, deckID string, additions []CardQuantity) (*models.Deck, error) {
	if len(additions) == 0 {
		return nil, invalidInput("No cards to add")
	}
	normalized := make([]CardQuantity, len(additions))
	for i, add := range additions {
		if strings.TrimSpace(add.CardID) == "" {
			return nil, invalidInput("Card ID cannot be empty")
		}
		section, err := models.ParseSection(string(add.Section))
		if err != nil {
			return nil, invalidInput("Invalid section %q", add.Section)
		}
		if add.Qty < 1 {
			return nil, invalidInput("Quantity must be at least 1")
		}
		add.Section = section
		normalized[i] = add
	}

	return d.mutate(ctx, userID, deckID, "add cards", func(ctx context.Context, tx *deckTx, deck *models.Deck, items []*models.DeckItem) error {
		byID := indexItems(items)
		var changed []*models.DeckItem
		for _, add := range normalized {
			id := models.DeckItemID(deck.ID, add.CardID, add.Section)
			item, ok := byID[id]
			if !ok {
				item = models.NewDeckItem(deck.ID, add.CardID, add.Section, 0)
				byID[id] = item
				changed = append(changed, item)
			} else if !containsItem(changed, item) {
				changed = append(changed, item)
			}
			item.Qty += add.Qty
		}
		return tx.items.SaveBatch(ctx, changed, deck.Partition())
	})
}

// RemoveItem deletes an item from a deck.
func (d *DeckFacade) RemoveItem(ctx context.Context, userID, deckID, itemID string) (*models.Deck, error) {
	return d.mutate(ctx, userID, deckID, "remove card", func(ctx context.Context, tx *deckTx, deck *models.Deck, items []*models.DeckItem) error {
		if _, err := findItem(items, itemID); err != nil {
			return err
		}
		return tx.items.DeleteBatch(ctx, []string{itemID})
	})
}

// AdjustQuantity changes an item's quantity by delta. Reaching zero or
// below removes the item.
func (d *DeckFacade) AdjustQuantity(ctx context.Context, userID, deckID, itemID string, delta int) (*models.Deck, error) {
	if delta == 0 {
		return nil, invalidInput("Quantity change cannot be zero")
	}

	return d.mutate(ctx, userID, deckID, "change quantity", func(ctx context.Context, tx *deckTx, deck *models.Deck, items []*models.DeckItem) error {
		item, err := findItem(items, itemID)
		if err != nil {
			return err
		}
		item.Qty += delta
		if item.Qty <= 0 {
			return tx.items.DeleteBatch(ctx, []string{item.ID})
		}
		return tx.items.SaveBatch(ctx, []*models.DeckItem{item}, deck.Partition())
	})
}

// MoveItem moves an item to another section, merging into an existing item
// of the same card there.
func (d *DeckFacade) MoveItem(ctx context.Context, userID, deckID, itemID string, to models.Section) (*models.Deck, error) {
	section, err := models.ParseSection(string(to))
	if err != nil {
		return nil, invalidInput("Invalid section %q", to)
	}

	return d.mutate(ctx, userID, deckID, "move card", func(ctx context.Context, tx *deckTx, deck *models.Deck, items []*models.DeckItem) error {
		item, err := findItem(items, itemID)
		if err != nil {
			return err
		}
		if item.Section == section {
			return nil
		}

		targetID := models.DeckItemID(deck.ID, item.CardID, section)
		target, ok := indexItems(items)[targetID]
		if !ok {
			target = models.NewDeckItem(deck.ID, item.CardID, section, 0)
		}
		target.Qty += item.Qty

		if err := tx.items.DeleteBatch(ctx, []string{item.ID}); err != nil {
			return err
		}
		return tx.items.SaveBatch(ctx, []*models.DeckItem{target}, deck.Partition())
	})
}

// SetPublic publishes or unpublishes a deck. The deck and its items move
// between partitions in one transaction; unpublishing deletes its votes.
func (d *DeckFacade) SetPublic(ctx context.Context, userID, deckID string, public bool) (*models.Deck, error) {
	var deck *models.Deck
	err := storage.RetryOnBusy(func() error {
		return d.services.DB.WithTransaction(ctx, func(sqlTx *sql.Tx) error {
			tx := newDeckTx(sqlTx)
			var err error
			deck, err = ownedDeck(ctx, tx, userID, deckID)
			if err != nil {
				return err
			}

			to := models.PartitionFor(public)
			if deck.Partition() == to {
				return nil
			}
			if !public {
				if err := tx.votes.DeleteByDeck(ctx, deck.ID); err != nil {
					return err
				}
			}
			if err := tx.decks.Move(ctx, deck, to); err != nil {
				return err
			}
			return tx.items.Move(ctx, deck.ID, to)
		})
	})
	if err != nil {
		return nil, storeError("change deck visibility", err)
	}

	log.Printf("Deck %s is now %s", deck.ID, deck.Partition())
	return deck, nil
}

// Validate checks a deck against the active construction rules. Items whose
// card is missing from the catalog are skipped and reported.
func (d *DeckFacade) Validate(ctx context.Context, userID, deckID string) (*DeckValidation, error) {
	deck, items, err := d.load(ctx, userID, deckID)
	if err != nil {
		return nil, err
	}

	cardMap, unknown, err := d.services.Cards.GetMany(ctx, itemCardIDs(items))
	if err != nil {
		return nil, storeError("load cards", err)
	}

	main := deckCards(items, models.SectionMain, cardMap)
	side := deckCards(items, models.SectionSide, cardMap)
	runes := deckCards(items, models.SectionRune, cardMap)

	v := validator.New(d.services.Rules.Rules())
	result := v.Validate(main, side, runes, deck.LegendChampionTag, deck.LegendDomains)

	return &DeckValidation{DeckID: deck.ID, Result: result, UnknownCardIDs: unknown}, nil
}

// Export renders a deck in the portable JSON format.
func (d *DeckFacade) Export(ctx context.Context, userID, deckID string) (string, error) {
	deck, items, err := d.load(ctx, userID, deckID)
	if err != nil {
		return "", err
	}

	data, err := deckexport.Export(deck, items)
	if err != nil {
		return "", &AppError{Message: fmt.Sprintf("Failed to export deck: %v", err), Err: err}
	}
	return data, nil
}

// Import creates a new private deck for the owner from an exported document.
// Nothing is stored when the document is invalid.
func (d *DeckFacade) Import(ctx context.Context, ownerUserID, data string) (*DeckDetail, error) {
	if ownerUserID == "" {
		return nil, forbidden("Sign in to import decks")
	}

	deck, items, err := deckimport.Import(data, ownerUserID)
	if err != nil {
		return nil, &AppError{Message: "Failed to decode deck: " + err.Error(), Err: fmt.Errorf("%w: %w", ErrInvalidInput, err)}
	}

	err = storage.RetryOnBusy(func() error {
		return d.services.DB.WithTransaction(ctx, func(sqlTx *sql.Tx) error {
			tx := newDeckTx(sqlTx)
			if err := tx.decks.Create(ctx, deck); err != nil {
				return err
			}
			return tx.items.SaveBatch(ctx, items, deck.Partition())
		})
	})
	if err != nil {
		return nil, storeError("import deck", err)
	}

	log.Printf("Imported deck %s (%s) with %d items", deck.Title, deck.ID, len(items))
	return d.Get(ctx, ownerUserID, deck.ID)
}

// mutate runs fn on an owned deck inside a transaction, then recounts the
// deck from its stored items and saves it with a version check.
func (d *DeckFacade) mutate(ctx context.Context, userID, deckID, action string,
	fn func(ctx context.Context, tx *deckTx, deck *models.Deck, items []*models.DeckItem) error) (*models.Deck, error) {
	var deck *models.Deck
	err := storage.RetryOnBusy(func() error {
		return d.services.DB.WithTransaction(ctx, func(sqlTx *sql.Tx) error {
			tx := newDeckTx(sqlTx)
			var err error
			deck, err = ownedDeck(ctx, tx, userID, deckID)
			if err != nil {
				return err
			}
			items, err := tx.items.ListByDeck(ctx, deck.ID)
			if err != nil {
				return err
			}

			if err := fn(ctx, tx, deck, items); err != nil {
				return err
			}

			items, err = tx.items.ListByDeck(ctx, deck.ID)
			if err != nil {
				return err
			}
			aggregate.Recount(deck, items)
			return tx.decks.Update(ctx, deck)
		})
	})
	if err != nil {
		return nil, storeError(action, err)
	}
	return deck, nil
}

// load fetches a readable deck and its items.
func (d *DeckFacade) load(ctx context.Context, userID, deckID string) (*models.Deck, []*models.DeckItem, error) {
	conn := d.services.DB.Conn()
	var deck *models.Deck
	var items []*models.DeckItem
	err := storage.RetryOnBusy(func() error {
		var err error
		deck, err = repository.NewDeckRepository(conn).Find(ctx, deckID)
		if err != nil || deck == nil {
			return err
		}
		items, err = repository.NewDeckItemRepository(conn).ListByDeck(ctx, deckID)
		return err
	})
	if err != nil {
		return nil, nil, storeError("load deck", err)
	}
	if deck == nil || (!deck.IsPublic && deck.OwnerUserID != userID) {
		return nil, nil, notFound("Deck")
	}

	// Stored counters are a cache; trust the items.
	aggregate.Recount(deck, items)
	return deck, items, nil
}

func ownedDeck(ctx context.Context, tx *deckTx, userID, deckID string) (*models.Deck, error) {
	deck, err := tx.decks.Find(ctx, deckID)
	if err != nil {
		return nil, err
	}
	if deck == nil || (!deck.IsPublic && deck.OwnerUserID != userID) {
		return nil, notFound("Deck")
	}
	if deck.OwnerUserID != userID {
		return nil, forbidden("Only the owner can change this deck")
	}
	return deck, nil
}

func findItem(items []*models.DeckItem, itemID string) (*models.DeckItem, error) {
	for _, item := range items {
		if item.ID == itemID {
			return item, nil
		}
	}
	return nil, notFound("Deck item")
}

func indexItems(items []*models.DeckItem) map[string]*models.DeckItem {
	byID := make(map[string]*models.DeckItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}
	return byID
}

func containsItem(items []*models.DeckItem, target *models.DeckItem) bool {
	for _, item := range items {
		if item == target {
			return true
		}
	}
	return false
}

func itemCardIDs(items []*models.DeckItem) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.CardID)
	}
	return ids
}

// deckCards joins one section's items with their cards. Unknown cards are skipped.
func deckCards(items []*models.DeckItem, section models.Section, cardMap map[string]*models.Card) []models.DeckCard {
	var out []models.DeckCard
	for _, item := range items {
		if item.Section != section {
			continue
		}
		card, ok := cardMap[item.CardID]
		if !ok {
			continue
		}
		out = append(out, models.DeckCard{Card: card, Quantity: item.Qty})
	}
	return out
}
