package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ramonehamilton/Riftbound-Companion/internal/api/auth"
	"github.com/ramonehamilton/Riftbound-Companion/internal/api/response"
	"github.com/ramonehamilton/Riftbound-Companion/internal/facade"
	"github.com/ramonehamilton/Riftbound-Companion/internal/storage/models"
)

// DeckHandler handles deck builder API requests.
type DeckHandler struct {
	facade *facade.DeckFacade
}

// NewDeckHandler creates a new DeckHandler.
func NewDeckHandler(facade *facade.DeckFacade) *DeckHandler {
	return &DeckHandler{facade: facade}
}

// GetDecks returns the caller's decks.
func (h *DeckHandler) GetDecks(w http.ResponseWriter, r *http.Request) {
	decks, err := h.facade.ListMine(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, decks)
}

// CreateDeck creates a new private deck.
func (h *DeckHandler) CreateDeck(w http.ResponseWriter, r *http.Request) {
	var req facade.DeckInput
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, err)
		return
	}

	deck, err := h.facade.Create(r.Context(), auth.UserID(r.Context()), req)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Created(w, deck)
}

// GetDeck returns a deck with its items and cards.
func (h *DeckHandler) GetDeck(w http.ResponseWriter, r *http.Request) {
	detail, err := h.facade.Get(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "deckID"))
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, detail)
}

// UpdateDeck saves deck metadata.
func (h *DeckHandler) UpdateDeck(w http.ResponseWriter, r *http.Request) {
	var req facade.DeckInput
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, err)
		return
	}

	deck, err := h.facade.Update(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "deckID"), req)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, deck)
}

// DeleteDeck removes a deck.
func (h *DeckHandler) DeleteDeck(w http.ResponseWriter, r *http.Request) {
	if err := h.facade.Delete(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "deckID")); err != nil {
		response.FromError(w, err)
		return
	}
	response.NoContent(w)
}

// AddCardsRequest represents a request to add cards to a deck.
type AddCardsRequest struct {
	Cards []facade.CardQuantity `json:"cards"`
}

// AddCards adds cards to a deck.
func (h *DeckHandler) AddCards(w http.ResponseWriter, r *http.Request) {
	var req AddCardsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, err)
		return
	}

	deck, err := h.facade.AddCards(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "deckID"), req.Cards)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, deck)
}

// AdjustQuantityRequest represents a quantity change of one item.
type AdjustQuantityRequest struct {
	Delta int `json:"delta"`
}

// AdjustQuantity changes an item's quantity.
func (h *DeckHandler) AdjustQuantity(w http.ResponseWriter, r *http.Request) {
	var req AdjustQuantityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, err)
		return
	}

	deck, err := h.facade.AdjustQuantity(r.Context(), auth.UserID(r.Context()),
		chi.URLParam(r, "deckID"), chi.URLParam(r, "itemID"), req.Delta)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, deck)
}

// MoveItemRequest represents a move of one item to another section.
type MoveItemRequest struct {
	Section models.Section `json:"section"`
}

// MoveItem moves an item to another section.
func (h *DeckHandler) MoveItem(w http.ResponseWriter, r *http.Request) {
	var req MoveItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, err)
		return
	}

	deck, err := h.facade.MoveItem(r.Context(), auth.UserID(r.Context()),
		chi.URLParam(r, "deckID"), chi.URLParam(r, "itemID"), req.Section)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, deck)
}

// RemoveItem deletes an item from a deck.
func (h *DeckHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	deck, err := h.facade.RemoveItem(r.Context(), auth.UserID(r.Context()),
		chi.URLParam(r, "deckID"), chi.URLParam(r, "itemID"))
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, deck)
}

// VisibilityRequest publishes or unpublishes a deck.
type VisibilityRequest struct {
	Public *bool `json:"public"`
}

// SetVisibility publishes or unpublishes a deck.
func (h *DeckHandler) SetVisibility(w http.ResponseWriter, r *http.Request) {
	var req VisibilityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, err)
		return
	}
	if req.Public == nil {
		response.BadRequest(w, errors.New("public is required"))
		return
	}

	deck, err := h.facade.SetPublic(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "deckID"), *req.Public)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, deck)
}

// ValidateDeck checks a deck against the construction rules.
func (h *DeckHandler) ValidateDeck(w http.ResponseWriter, r *http.Request) {
	report, err := h.facade.Validate(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "deckID"))
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, report)
}

// ExportDeck returns the portable JSON document of a deck.
func (h *DeckHandler) ExportDeck(w http.ResponseWriter, r *http.Request) {
	data, err := h.facade.Export(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "deckID"))
	if err != nil {
		response.FromError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(data))
}

// ImportDeck creates a deck from a portable JSON document sent as the body.
func (h *DeckHandler) ImportDeck(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		response.BadRequest(w, errInvalidBody)
		return
	}

	detail, err := h.facade.Import(r.Context(), auth.UserID(r.Context()), string(body))
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Created(w, detail)
}
