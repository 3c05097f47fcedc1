package handlers

import (
	"net/http"

	"github.com/ramonehamilton/Riftbound-Companion/internal/api/auth"
	"github.com/ramonehamilton/Riftbound-Companion/internal/api/response"
	"github.com/ramonehamilton/Riftbound-Companion/internal/facade"
)

// AssistantHandler handles assistant API requests.
type AssistantHandler struct {
	facade *facade.AssistantFacade
}

// NewAssistantHandler creates a new AssistantHandler.
func NewAssistantHandler(facade *facade.AssistantFacade) *AssistantHandler {
	return &AssistantHandler{facade: facade}
}

// Ask forwards a question to the assistant.
func (h *AssistantHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req facade.AskInput
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, err)
		return
	}

	answer, err := h.facade.Ask(r.Context(), auth.UserID(r.Context()), req)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, answer)
}
