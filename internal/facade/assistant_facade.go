package facade

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ramonehamilton/Riftbound-Companion/internal/assistant"
	"github.com/ramonehamilton/Riftbound-Companion/internal/storage"
)

// ErrAssistantUnavailable is returned when no assistant client is configured
// or the assistant API cannot be reached.
var ErrAssistantUnavailable = errors.New("assistant unavailable")

// AssistantFacade handles questions to the rules and deck-building assistant.
type AssistantFacade struct {
	services *Services
	decks    *DeckFacade
}

// NewAssistantFacade creates a new AssistantFacade with the given services.
func NewAssistantFacade(services *Services) *AssistantFacade {
	return &AssistantFacade{services: services, decks: NewDeckFacade(services)}
}

// AskInput is a question from a user.
type AskInput struct {
	Mode      string   `json:"mode"`
	Question  string   `json:"question"`
	DeckID    *string  `json:"deckId,omitempty"`
	Selection []string `json:"selection,omitempty"`
}

// Ask sends a question to the assistant. When a deck is given, its snapshot
// is sent along; the deck must be readable by the user.
func (a *AssistantFacade) Ask(ctx context.Context, userID string, input AskInput) (*assistant.AskResponse, error) {
	if a.services.Assistant == nil {
		return nil, &AppError{Message: "Assistant is not configured", Err: ErrAssistantUnavailable}
	}

	mode, err := assistant.ParseMode(input.Mode)
	if err != nil {
		return nil, invalidInput("Mode must be coach or judge")
	}
	if strings.TrimSpace(input.Question) == "" {
		return nil, invalidInput("Question cannot be empty")
	}

	req := &assistant.AskRequest{
		Mode:      mode,
		Question:  strings.TrimSpace(input.Question),
		Selection: input.Selection,
	}
	if input.DeckID != nil && *input.DeckID != "" {
		deck, items, err := a.decks.load(ctx, userID, *input.DeckID)
		if err != nil {
			return nil, err
		}
		req.DeckID = &deck.ID
		req.DeckSnapshot = assistant.BuildSnapshot(deck, items)
	}

	resp, err := a.services.Assistant.Ask(ctx, req)
	if err != nil {
		var serverErr *assistant.ServerError
		if errors.As(err, &serverErr) && serverErr.StatusCode < 500 && serverErr.StatusCode != 429 {
			return nil, &AppError{Message: fmt.Sprintf("Assistant rejected the question: %v", err), Err: fmt.Errorf("%w: %w", ErrInvalidInput, err)}
		}
		return nil, &AppError{
			Message: fmt.Sprintf("Assistant request failed: %v", err),
			Err:     fmt.Errorf("%w: %w: %w", ErrAssistantUnavailable, storage.ErrNetwork, err),
		}
	}
	return resp, nil
}
