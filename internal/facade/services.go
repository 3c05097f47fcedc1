// Package facade holds the application operations shared by the HTTP API
// and the CLI. Each facade validates input, checks ownership and runs its
// storage work through the repositories.
package facade

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ramonehamilton/Riftbound-Companion/internal/assistant"
	"github.com/ramonehamilton/Riftbound-Companion/internal/riftbound/cards"
	"github.com/ramonehamilton/Riftbound-Companion/internal/riftbound/validator"
	"github.com/ramonehamilton/Riftbound-Companion/internal/storage"
)

// AssistantClient asks the assistant API a question.
type AssistantClient interface {
	Ask(ctx context.Context, req *assistant.AskRequest) (*assistant.AskResponse, error)
}

// RuleSet holds the active deck construction rules. It is safe for
// concurrent use and can be swapped while the server runs.
type RuleSet struct {
	mu    sync.RWMutex
	rules validator.Rules
}

// NewRuleSet creates a rule set.
func NewRuleSet(rules validator.Rules) *RuleSet {
	return &RuleSet{rules: rules}
}

// Rules returns the active rules.
func (r *RuleSet) Rules() validator.Rules {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rules
}

// Set replaces the active rules.
func (r *RuleSet) Set(rules validator.Rules) error {
	if err := rules.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	r.rules = rules
	r.mu.Unlock()
	return nil
}

// Services contains all shared services needed by facades.
type Services struct {
	// Storage for database operations
	DB *storage.DB

	// Card catalog cache
	Cards *cards.Cache

	// Assistant API client (optional)
	Assistant AssistantClient

	// Active deck construction rules
	Rules *RuleSet

	// Clock for trending scores; defaults to time.Now
	Clock func() time.Time
}

func (s *Services) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

// ErrInvalidInput marks errors caused by bad caller input.
var ErrInvalidInput = errors.New("invalid input")

// AppError represents an application error with a user-friendly message.
type AppError struct {
	Message string `json:"message"`
	Err     error  `json:"-"` // Wrapped error for errors.Is/As chain
}

func (e *AppError) Error() string {
	return e.Message
}

// Unwrap returns the wrapped error for errors.Is/As chain.
func (e *AppError) Unwrap() error {
	return e.Err
}

func invalidInput(format string, args ...interface{}) *AppError {
	msg := fmt.Sprintf(format, args...)
	return &AppError{Message: msg, Err: fmt.Errorf("%w: %s", ErrInvalidInput, msg)}
}

func notFound(what string) *AppError {
	return &AppError{Message: what + " not found", Err: storage.ErrNotFound}
}

func forbidden(message string) *AppError {
	return &AppError{Message: message, Err: storage.ErrPermission}
}

// storeError wraps a storage failure. AppErrors raised inside a transaction
// pass through unchanged.
func storeError(action string, err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return &AppError{Message: fmt.Sprintf("Failed to %s: %v", action, err), Err: storage.Classify(err)}
}
