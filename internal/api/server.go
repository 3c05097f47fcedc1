// Package api serves the Riftbound Companion HTTP API.
package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ramonehamilton/Riftbound-Companion/internal/api/auth"
	"github.com/ramonehamilton/Riftbound-Companion/internal/facade"
)

// Server represents the REST API server.
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	port       int

	allowedOrigins []string
	requestTimeout time.Duration
	jwtSecret      []byte
	tokenTTL       time.Duration

	deckFacade       *facade.DeckFacade
	publicDeckFacade *facade.PublicDeckFacade
	cardFacade       *facade.CardFacade
	assistantFacade  *facade.AssistantFacade
	gameFacade       *facade.GameFacade
	userFacade       *facade.UserFacade
}

// Config holds configuration for the API server.
type Config struct {
	Port           int
	AllowedOrigins []string      // CORS origins; wildcards allowed
	RequestTimeout time.Duration // Per-request deadline
	JWTSecret      []byte        // Session token signing key
	TokenTTL       time.Duration // Session token lifetime
}

// DefaultConfig returns the default API server configuration.
func DefaultConfig() *Config {
	return &Config{
		Port:           8080,
		AllowedOrigins: []string{"http://localhost:*"},
		RequestTimeout: 30 * time.Second,
		TokenTTL:       30 * 24 * time.Hour,
	}
}

// NewServer creates a new API server over the shared services.
func NewServer(cfg *Config, services *facade.Services) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 30 * 24 * time.Hour
	}

	s := &Server{
		router:           chi.NewRouter(),
		port:             cfg.Port,
		allowedOrigins:   cfg.AllowedOrigins,
		requestTimeout:   cfg.RequestTimeout,
		jwtSecret:        cfg.JWTSecret,
		tokenTTL:         cfg.TokenTTL,
		deckFacade:       facade.NewDeckFacade(services),
		publicDeckFacade: facade.NewPublicDeckFacade(services),
		cardFacade:       facade.NewCardFacade(services),
		assistantFacade:  facade.NewAssistantFacade(services),
		gameFacade:       facade.NewGameFacade(services),
		userFacade:       facade.NewUserFacade(services),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	// Request ID for tracing
	s.router.Use(middleware.RequestID)

	// Real IP detection
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(middleware.Logger)

	// Panic recovery
	s.router.Use(middleware.Recoverer)

	// Request timeout
	s.router.Use(middleware.Timeout(s.requestTimeout))

	// CORS configuration
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Content-Type enforcement for POST/PUT/PATCH only (not GET/DELETE/OPTIONS)
	s.router.Use(s.jsonContentTypeMiddleware)

	// Bearer tokens are optional here; route groups require them where needed.
	s.router.Use(auth.Authenticate(s.jwtSecret))
}

// jsonContentTypeMiddleware enforces application/json content-type for requests with bodies.
func (s *Server) jsonContentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			if r.ContentLength == 0 {
				next.ServeHTTP(w, r)
				return
			}

			contentType := r.Header.Get("Content-Type")
			if contentType == "" || (contentType != "application/json" && !strings.HasPrefix(contentType, "application/json;")) {
				http.Error(w, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the API server in a goroutine.
func (s *Server) Start() error {
	if len(s.jwtSecret) == 0 {
		return fmt.Errorf("JWT secret is required to start the API server")
	}

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      s.requestTimeout + 30*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.Printf("API server starting on port %d", s.port)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("API server error: %v", err)
		}
	}()

	return nil
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	log.Println("Shutting down API server...")
	return s.httpServer.Shutdown(ctx)
}

// Port returns the port the server is configured to listen on.
func (s *Server) Port() int {
	return s.port
}
