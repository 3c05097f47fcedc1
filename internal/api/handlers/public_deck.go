package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ramonehamilton/Riftbound-Companion/internal/api/auth"
	"github.com/ramonehamilton/Riftbound-Companion/internal/api/response"
	"github.com/ramonehamilton/Riftbound-Companion/internal/facade"
	"github.com/ramonehamilton/Riftbound-Companion/internal/riftbound/aggregate"
)

// PublicDeckHandler handles shared deck API requests.
type PublicDeckHandler struct {
	facade *facade.PublicDeckFacade
}

// NewPublicDeckHandler creates a new PublicDeckHandler.
func NewPublicDeckHandler(facade *facade.PublicDeckFacade) *PublicDeckHandler {
	return &PublicDeckHandler{facade: facade}
}

// GetPublicDecks lists public decks. Query: sort=trending|recent|top, limit.
func (h *PublicDeckHandler) GetPublicDecks(w http.ResponseWriter, r *http.Request) {
	sort, err := aggregate.ParseSortOption(r.URL.Query().Get("sort"))
	if err != nil {
		response.BadRequest(w, err)
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	q := facade.PublicDeckQuery{Sort: sort, ViewerUserID: auth.UserID(r.Context())}
	if limit != nil {
		if *limit < 0 {
			response.BadRequest(w, errors.New("limit cannot be negative"))
			return
		}
		q.Limit = *limit
	}

	decks, err := h.facade.List(r.Context(), q)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, decks)
}

// ToggleVote votes for a public deck, or takes the vote back.
func (h *PublicDeckHandler) ToggleVote(w http.ResponseWriter, r *http.Request) {
	state, err := h.facade.ToggleVote(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "deckID"))
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, state)
}
