package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/ramonehamilton/Riftbound-Companion/internal/api/auth"
	"github.com/ramonehamilton/Riftbound-Companion/internal/api/response"
	"github.com/ramonehamilton/Riftbound-Companion/internal/facade"
	"github.com/ramonehamilton/Riftbound-Companion/internal/identity"
	"github.com/ramonehamilton/Riftbound-Companion/internal/storage/models"
)

// UserHandler handles sign-in and profile API requests.
type UserHandler struct {
	facade   *facade.UserFacade
	secret   []byte
	tokenTTL time.Duration
}

// NewUserHandler creates a new UserHandler that signs session tokens with secret.
func NewUserHandler(facade *facade.UserFacade, secret []byte, tokenTTL time.Duration) *UserHandler {
	return &UserHandler{facade: facade, secret: secret, tokenTTL: tokenTTL}
}

// RegisterRequest signs a player in, creating the profile on first use.
// Subject is the identity provider's verified user identifier.
type RegisterRequest struct {
	Subject     string `json:"subject"`
	DisplayName string `json:"displayName"`
}

// SessionResponse is a profile with a session token.
type SessionResponse struct {
	User      *models.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

// Register signs a player in and issues a session token.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, err)
		return
	}

	user, err := h.facade.Register(r.Context(), req.Subject, req.DisplayName)
	if err != nil {
		response.FromError(w, err)
		return
	}
	h.writeSession(w, user)
}

// Me returns the caller's profile.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.facade.Me(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, user)
}

// RenameRequest changes the caller's display name.
type RenameRequest struct {
	DisplayName string `json:"displayName"`
}

// Rename changes the caller's display name and issues a fresh token.
func (h *UserHandler) Rename(w http.ResponseWriter, r *http.Request) {
	var req RenameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, err)
		return
	}

	user, err := h.facade.Rename(r.Context(), auth.UserID(r.Context()), req.DisplayName)
	if err != nil {
		response.FromError(w, err)
		return
	}
	h.writeSession(w, user)
}

// CheckAvailability reports whether a display name can be taken. Query: name.
func (h *UserHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		response.BadRequest(w, errors.New("name is required"))
		return
	}

	ok, err := h.facade.IsAvailable(r.Context(), name)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, map[string]bool{"available": ok})
}

func (h *UserHandler) writeSession(w http.ResponseWriter, user *models.User) {
	token, err := identity.GenerateToken(user.ID, user.DisplayName, h.secret, h.tokenTTL)
	if err != nil {
		response.InternalError(w, err)
		return
	}
	response.Success(w, SessionResponse{
		User:      user,
		Token:     token,
		ExpiresAt: time.Now().UTC().Add(h.tokenTTL),
	})
}
