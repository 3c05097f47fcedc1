package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/Riftbound-Companion/internal/facade"
	"github.com/ramonehamilton/Riftbound-Companion/internal/identity"
	"github.com/ramonehamilton/Riftbound-Companion/internal/riftbound/cards"
	"github.com/ramonehamilton/Riftbound-Companion/internal/riftbound/validator"
	"github.com/ramonehamilton/Riftbound-Companion/internal/storage"
	"github.com/ramonehamilton/Riftbound-Companion/internal/storage/models"
	"github.com/ramonehamilton/Riftbound-Companion/internal/storage/repository"
)

var testSecret = []byte("test-secret")

func intPtr(v int) *int { return &v }

func newTestServer(t *testing.T) *Server {
	t.Helper()

	db := storage.OpenTestDB(t)
	repo := repository.NewCardRepository(db.Conn())
	require.NoError(t, repo.SaveBatch(context.Background(), []*models.Card{
		{ID: "OGN-001", Number: "001", Name: "Jinx, Rebel", Type: models.CardTypeChampion, Domains: []string{"Fury"}, EnergyCost: intPtr(5), SetCode: "OGN"},
		{ID: "OGN-003", Number: "003", Name: "Get Excited", Type: models.CardTypeSpell, Domains: []string{"Chaos"}, EnergyCost: intPtr(1), SetCode: "OGN"},
		{ID: "OGN-300", Number: "300", Name: "Fury Rune", Type: models.CardTypeRune, Domains: []string{"Fury"}, SetCode: "OGN", IsRune: true},
	}))

	cache, err := cards.NewCache(cards.CacheConfig{
		Store:  repo,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)

	services := &facade.Services{
		DB:    db,
		Cards: cache,
		Rules: facade.NewRuleSet(validator.DefaultRules()),
	}
	cfg := DefaultConfig()
	cfg.JWTSecret = testSecret
	return NewServer(cfg, services)
}

func tokenFor(t *testing.T, userID string) string {
	t.Helper()
	token, err := identity.GenerateToken(userID, "Tester", testSecret, time.Hour)
	require.NoError(t, err)
	return token
}

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Code    int             `json:"code"`
}

func do(t *testing.T, s *Server, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") == "application/json" {
		_ = json.Unmarshal(rec.Body.Bytes(), &env)
	}
	return rec, env
}

func TestNewServer_NilConfig(t *testing.T) {
	server := NewServer(nil, &facade.Services{})

	require.NotNil(t, server)
	assert.Equal(t, 8080, server.Port())
	assert.Error(t, server.Start(), "starting without a JWT secret must fail")
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t)

	rec, _ := do(t, s, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
	assert.Contains(t, rec.Body.String(), `"version"`)
}

func TestAuth(t *testing.T) {
	s := newTestServer(t)

	rec, _ := do(t, s, http.MethodGet, "/api/v1/decks", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = do(t, s, http.MethodGet, "/api/v1/decks", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	forged, err := identity.GenerateToken("user_a", "A", []byte("other"), time.Hour)
	require.NoError(t, err)
	rec, _ = do(t, s, http.MethodGet, "/api/v1/decks", forged, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = do(t, s, http.MethodGet, "/api/v1/decks", tokenFor(t, "user_a"), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestContentTypeEnforced(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/decks", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, "user_a"))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestRegisterAndMe(t *testing.T) {
	s := newTestServer(t)

	rec, env := do(t, s, http.MethodPost, "/api/v1/users/register", "", map[string]string{
		"subject": "apple|001", "displayName": "Teemo",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var session struct {
		User  models.User `json:"user"`
		Token string      `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &session))
	assert.Equal(t, "Teemo", session.User.DisplayName)
	require.NotEmpty(t, session.Token)

	rec, env = do(t, s, http.MethodGet, "/api/v1/users/me", session.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me models.User
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, session.User.ID, me.ID)

	rec, env = do(t, s, http.MethodPost, "/api/v1/users/register", "", map[string]string{
		"subject": "apple|002", "displayName": "teemo",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "This username is already taken", env.Message)

	rec, env = do(t, s, http.MethodGet, "/api/v1/users/available?name=Annie", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"available": true}`, string(env.Data))
}

func TestDeckFlow(t *testing.T) {
	s := newTestServer(t)
	owner := tokenFor(t, "user_a")
	other := tokenFor(t, "user_b")

	rec, env := do(t, s, http.MethodPost, "/api/v1/decks", owner, map[string]interface{}{
		"title": "Jinx Burn", "legendChampionTag": "Jinx", "legendDomains": []string{"Fury", "Chaos"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var deck models.Deck
	require.NoError(t, json.Unmarshal(env.Data, &deck))

	rec, _ = do(t, s, http.MethodPost, "/api/v1/decks", owner, map[string]interface{}{"title": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env = do(t, s, http.MethodPost, "/api/v1/decks/"+deck.ID+"/items", owner, map[string]interface{}{
		"cards": []map[string]interface{}{
			{"cardId": "OGN-001", "section": "main", "qty": 3},
			{"cardId": "OGN-003", "section": "side", "qty": 1},
			{"cardId": "OGN-300", "section": "rune", "qty": 12},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, &deck))
	assert.Equal(t, 3, deck.CountMain)
	assert.Equal(t, 12, deck.CountRunes)

	itemPath := "/api/v1/decks/" + deck.ID + "/items/" + models.DeckItemID(deck.ID, "OGN-003", models.SectionSide)
	rec, env = do(t, s, http.MethodPost, itemPath+"/move", owner, map[string]string{"section": "main"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, &deck))
	assert.Equal(t, 4, deck.CountMain)

	// Private decks are invisible to others.
	rec, _ = do(t, s, http.MethodGet, "/api/v1/decks/"+deck.ID, other, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, env = do(t, s, http.MethodGet, "/api/v1/decks/"+deck.ID+"/validation", owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var report facade.DeckValidation
	require.NoError(t, json.Unmarshal(env.Data, &report))
	assert.False(t, report.Result.IsValid)
	assert.True(t, report.Result.HasError(validator.CodeMainDeckTooSmall))

	rec, _ = do(t, s, http.MethodPut, "/api/v1/decks/"+deck.ID, owner, map[string]interface{}{
		"title": "Renamed", "legendChampionTag": "Jinx", "legendDomains": []string{"Fury"}, "version": 1,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = do(t, s, http.MethodPut, "/api/v1/decks/"+deck.ID+"/visibility", owner, map[string]bool{"public": true})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, s, http.MethodGet, "/api/v1/decks/"+deck.ID, "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, s, http.MethodDelete, "/api/v1/decks/"+deck.ID, other, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, env = do(t, s, http.MethodPost, "/api/v1/public-decks/"+deck.ID+"/vote", other, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"deckId": "`+deck.ID+`", "voteCount": 1, "hasVoted": true}`, string(env.Data))

	rec, env = do(t, s, http.MethodGet, "/api/v1/public-decks?sort=top", other, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []struct {
		VoteCount int  `json:"voteCount"`
		HasVoted  bool `json:"hasVoted"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, 1, listed[0].VoteCount)
	assert.True(t, listed[0].HasVoted)

	rec, _ = do(t, s, http.MethodGet, "/api/v1/public-decks?sort=hot", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, s, http.MethodDelete, "/api/v1/decks/"+deck.ID, owner, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestDeckExportImport(t *testing.T) {
	s := newTestServer(t)
	owner := tokenFor(t, "user_a")

	rec, env := do(t, s, http.MethodPost, "/api/v1/decks", owner, map[string]interface{}{
		"title": "Jinx Burn", "legendChampionTag": "Jinx", "legendDomains": []string{"Fury"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var deck models.Deck
	require.NoError(t, json.Unmarshal(env.Data, &deck))

	rec, _ = do(t, s, http.MethodPost, "/api/v1/decks/"+deck.ID+"/items", owner, map[string]interface{}{
		"cards": []map[string]interface{}{{"cardId": "OGN-001", "section": "main", "qty": 2}},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, s, http.MethodGet, "/api/v1/decks/"+deck.ID+"/export", owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	exported := rec.Body.String()
	assert.Contains(t, exported, `"OGN-001"`)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/decks/import", bytes.NewReader([]byte(exported)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, "user_b"))
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var imported envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &imported))
	var detail facade.DeckDetail
	require.NoError(t, json.Unmarshal(imported.Data, &detail))
	assert.Equal(t, "user_b", detail.Deck.OwnerUserID)
	assert.Equal(t, 2, detail.Deck.CountMain)
}

func TestCardRoutes(t *testing.T) {
	s := newTestServer(t)

	rec, env := do(t, s, http.MethodGet, "/api/v1/cards?domains=Fury&sort=cost", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []models.Card
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 2)
	assert.Equal(t, "OGN-300", list[0].ID)

	rec, _ = do(t, s, http.MethodGet, "/api/v1/cards?minCost=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, s, http.MethodGet, "/api/v1/cards/OGN-001", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = do(t, s, http.MethodGet, "/api/v1/cards/NOPE", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, env = do(t, s, http.MethodPost, "/api/v1/cards/bulk", "", map[string][]string{"ids": {"OGN-001", "NOPE"}})
	require.Equal(t, http.StatusOK, rec.Code)
	var bulk struct {
		Cards   map[string]models.Card `json:"cards"`
		Unknown []string               `json:"unknown"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &bulk))
	assert.Contains(t, bulk.Cards, "OGN-001")
	assert.Equal(t, []string{"NOPE"}, bulk.Unknown)
}

func TestCardCatalogIsReadOnlyOverHTTP(t *testing.T) {
	s := newTestServer(t)
	user := tokenFor(t, "user_a")

	payload := map[string]interface{}{
		"cards": []map[string]interface{}{{"id": "OGN-001", "name": "Jinx", "domains": []string{"Calm"}, "isSignature": true}},
	}
	rec, _ := do(t, s, http.MethodPost, "/api/v1/cards/import", user, payload)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec, env := do(t, s, http.MethodGet, "/api/v1/cards/OGN-001", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var card models.Card
	require.NoError(t, json.Unmarshal(env.Data, &card))
	assert.NotContains(t, card.Domains, "Calm")
	assert.False(t, card.IsSignature)
}

func TestGameRoutes(t *testing.T) {
	s := newTestServer(t)
	owner := tokenFor(t, "user_a")

	rec, env := do(t, s, http.MethodPost, "/api/v1/games", owner, map[string]interface{}{
		"player1": map[string]interface{}{"name": "Me", "legendChampionTag": "Jinx"},
		"player2": map[string]interface{}{"name": "You", "legendChampionTag": "Vi"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var session models.GameSession
	require.NoError(t, json.Unmarshal(env.Data, &session))
	assert.Equal(t, 25, session.Player1.Score)

	rec, _ = do(t, s, http.MethodPut, "/api/v1/games/"+session.ID, owner, map[string]interface{}{"complete": true, "winner": 1})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, env = do(t, s, http.MethodGet, "/api/v1/games/stats", owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var summary struct {
		TotalGames int     `json:"totalGames"`
		WinRate    float64 `json:"winRate"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &summary))
	assert.Equal(t, 1, summary.TotalGames)

	rec, _ = do(t, s, http.MethodGet, "/api/v1/games/stats?period=week", owner, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = do(t, s, http.MethodGet, "/api/v1/games/stats?period=decade", owner, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 1.0, summary.WinRate)

	rec, _ = do(t, s, http.MethodGet, "/api/v1/games/"+session.ID, tokenFor(t, "user_b"), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = do(t, s, http.MethodDelete, "/api/v1/games/"+session.ID, owner, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAssistantUnavailable(t *testing.T) {
	s := newTestServer(t)

	rec, _ := do(t, s, http.MethodPost, "/api/v1/assistant/ask", tokenFor(t, "user_a"), map[string]string{
		"mode": "judge", "question": "Can I respond to a spell?",
	})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
