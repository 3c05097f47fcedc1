package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ramonehamilton/Riftbound-Companion/internal/api/response"
	"github.com/ramonehamilton/Riftbound-Companion/internal/facade"
	"github.com/ramonehamilton/Riftbound-Companion/internal/riftbound/cards"
	"github.com/ramonehamilton/Riftbound-Companion/internal/storage/models"
)

// CardHandler handles card catalog API requests.
type CardHandler struct {
	facade *facade.CardFacade
}

// NewCardHandler creates a new CardHandler.
func NewCardHandler(facade *facade.CardFacade) *CardHandler {
	return &CardHandler{facade: facade}
}

// SearchCards lists catalog cards.
//
// Query: q, fuzzy, domains, types (comma-separated), minCost, maxCost,
// minMight, maxMight, signatures, runes, battlefields, sort, limit.
func (h *CardHandler) SearchCards(w http.ResponseWriter, r *http.Request) {
	sort, err := cards.ParseSortOption(r.URL.Query().Get("sort"))
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	search := facade.CardSearch{
		Text:  r.URL.Query().Get("q"),
		Fuzzy: queryBool(r, "fuzzy"),
		Sort:  sort,
		Filters: cards.Filters{
			Domains:          queryList(r, "domains"),
			Types:            queryList(r, "types"),
			SignaturesOnly:   queryBool(r, "signatures"),
			RunesOnly:        queryBool(r, "runes"),
			BattlefieldsOnly: queryBool(r, "battlefields"),
		},
	}

	bounds := []struct {
		key string
		dst **int
	}{
		{"minCost", &search.Filters.MinCost},
		{"maxCost", &search.Filters.MaxCost},
		{"minMight", &search.Filters.MinMight},
		{"maxMight", &search.Filters.MaxMight},
	}
	for _, b := range bounds {
		v, err := queryInt(r, b.key)
		if err != nil {
			response.BadRequest(w, err)
			return
		}
		*b.dst = v
	}

	limit, err := queryInt(r, "limit")
	if err != nil {
		response.BadRequest(w, err)
		return
	}
	if limit != nil {
		if *limit < 0 {
			response.BadRequest(w, errors.New("limit cannot be negative"))
			return
		}
		search.Limit = *limit
	}

	results, err := h.facade.Search(r.Context(), search)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, results)
}

// GetCard returns a single card by ID.
func (h *CardHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	card, err := h.facade.Get(r.Context(), chi.URLParam(r, "cardID"))
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, card)
}

// BulkCardsRequest represents a request for several cards by ID.
type BulkCardsRequest struct {
	IDs []string `json:"ids"`
}

// BulkCardsResponse holds the found cards and the IDs missing from the catalog.
type BulkCardsResponse struct {
	Cards   map[string]*models.Card `json:"cards"`
	Unknown []string                `json:"unknown"`
}

// GetCardsBulk returns several cards by ID.
func (h *CardHandler) GetCardsBulk(w http.ResponseWriter, r *http.Request) {
	var req BulkCardsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, err)
		return
	}
	if len(req.IDs) == 0 {
		response.BadRequest(w, errors.New("ids are required"))
		return
	}

	found, unknown, err := h.facade.GetMany(r.Context(), req.IDs)
	if err != nil {
		response.FromError(w, err)
		return
	}
	if unknown == nil {
		unknown = []string{}
	}
	response.Success(w, BulkCardsResponse{Cards: found, Unknown: unknown})
}
