package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ramonehamilton/Riftbound-Companion/internal/api/auth"
	"github.com/ramonehamilton/Riftbound-Companion/internal/api/handlers"
	"github.com/ramonehamilton/Riftbound-Companion/internal/api/response"
	"github.com/ramonehamilton/Riftbound-Companion/internal/version"
)

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check endpoint (no versioning)
	s.router.Get("/health", s.healthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		// User routes
		userHandler := handlers.NewUserHandler(s.userFacade, s.jwtSecret, s.tokenTTL)
		r.Route("/users", func(r chi.Router) {
			r.Post("/register", userHandler.Register)
			r.Get("/available", userHandler.CheckAvailability)
			r.With(auth.RequireUser).Get("/me", userHandler.Me)
			r.With(auth.RequireUser).Put("/me", userHandler.Rename)
		})

		// Card routes
		cardHandler := handlers.NewCardHandler(s.cardFacade)
		r.Route("/cards", func(r chi.Router) {
			r.Get("/", cardHandler.SearchCards)
			r.Post("/bulk", cardHandler.GetCardsBulk)
			r.Get("/{cardID}", cardHandler.GetCard)
		})

		// Deck routes. Public decks are readable anonymously.
		deckHandler := handlers.NewDeckHandler(s.deckFacade)
		r.Route("/decks", func(r chi.Router) {
			r.Get("/{deckID}", deckHandler.GetDeck)
			r.Get("/{deckID}/export", deckHandler.ExportDeck)
			r.Get("/{deckID}/validation", deckHandler.ValidateDeck)

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireUser)
				r.Get("/", deckHandler.GetDecks)
				r.Post("/", deckHandler.CreateDeck)
				r.Post("/import", deckHandler.ImportDeck)
				r.Put("/{deckID}", deckHandler.UpdateDeck)
				r.Delete("/{deckID}", deckHandler.DeleteDeck)
				r.Put("/{deckID}/visibility", deckHandler.SetVisibility)
				r.Post("/{deckID}/items", deckHandler.AddCards)
				r.Patch("/{deckID}/items/{itemID}", deckHandler.AdjustQuantity)
				r.Post("/{deckID}/items/{itemID}/move", deckHandler.MoveItem)
				r.Delete("/{deckID}/items/{itemID}", deckHandler.RemoveItem)
			})
		})

		// Public deck routes
		publicHandler := handlers.NewPublicDeckHandler(s.publicDeckFacade)
		r.Route("/public-decks", func(r chi.Router) {
			r.Get("/", publicHandler.GetPublicDecks)
			r.With(auth.RequireUser).Post("/{deckID}/vote", publicHandler.ToggleVote)
		})

		// Assistant routes
		assistantHandler := handlers.NewAssistantHandler(s.assistantFacade)
		r.With(auth.RequireUser).Post("/assistant/ask", assistantHandler.Ask)

		// Game session routes
		gameHandler := handlers.NewGameHandler(s.gameFacade)
		r.Route("/games", func(r chi.Router) {
			r.Use(auth.RequireUser)
			r.Get("/", gameHandler.GetGames)
			r.Post("/", gameHandler.CreateGame)
			r.Get("/stats", gameHandler.GetStats)
			r.Get("/{gameID}", gameHandler.GetGame)
			r.Put("/{gameID}", gameHandler.UpdateGame)
			r.Delete("/{gameID}", gameHandler.DeleteGame)
		})
	})
}

// healthCheck returns server health status.
func (s *Server) healthCheck(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "riftbound-companion-api",
		"version": version.GetVersion(),
	})
}
