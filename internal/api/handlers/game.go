package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ramonehamilton/Riftbound-Companion/internal/api/auth"
	"github.com/ramonehamilton/Riftbound-Companion/internal/api/response"
	"github.com/ramonehamilton/Riftbound-Companion/internal/facade"
)

// GameHandler handles score counter API requests.
type GameHandler struct {
	facade *facade.GameFacade
}

// NewGameHandler creates a new GameHandler.
func NewGameHandler(facade *facade.GameFacade) *GameHandler {
	return &GameHandler{facade: facade}
}

// GetGames lists the caller's sessions, newest first. Query: limit.
func (h *GameHandler) GetGames(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		response.BadRequest(w, err)
		return
	}
	n := 0
	if limit != nil {
		n = *limit
	}

	sessions, err := h.facade.List(r.Context(), auth.UserID(r.Context()), n)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, sessions)
}

// CreateGame starts a session.
func (h *GameHandler) CreateGame(w http.ResponseWriter, r *http.Request) {
	var req facade.GameInput
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, err)
		return
	}

	session, err := h.facade.Create(r.Context(), auth.UserID(r.Context()), req)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Created(w, session)
}

// GetGame returns a single session.
func (h *GameHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	session, err := h.facade.Get(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "gameID"))
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, session)
}

// UpdateGame saves scores and optionally completes the session.
func (h *GameHandler) UpdateGame(w http.ResponseWriter, r *http.Request) {
	var req facade.GameUpdate
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, err)
		return
	}

	session, err := h.facade.Update(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "gameID"), req)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, session)
}

// DeleteGame removes a session.
func (h *GameHandler) DeleteGame(w http.ResponseWriter, r *http.Request) {
	if err := h.facade.Delete(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "gameID")); err != nil {
		response.FromError(w, err)
		return
	}
	response.NoContent(w)
}

// GetStats summarizes the caller's completed sessions, optionally within ?period=.
func (h *GameHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	summary, err := h.facade.Stats(r.Context(), auth.UserID(r.Context()), r.URL.Query().Get("period"))
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, summary)
}
