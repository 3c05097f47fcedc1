package stats

import (
	"math"
	"testing"

	"github.com/ramonehamilton/Riftbound-Companion/internal/storage/models"
)

func session(legend, deck, opponent string, complete bool, winner *int) *models.GameSession {
	s := &models.GameSession{
		Player1:    models.GamePlayer{LegendChampionTag: legend},
		Player2:    models.GamePlayer{LegendChampionTag: opponent},
		IsComplete: complete,
		Winner:     winner,
	}
	if deck != "" {
		s.Player1.DeckTitle = &deck
	}
	return s
}

func w(i int) *int { return &i }

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestCalculate_Empty(t *testing.T) {
	stats := Calculate(nil)
	if stats.TotalGames != 0 || stats.WinRate != 0 {
		t.Errorf("unexpected stats %+v", stats)
	}
	if stats.ByLegend == nil || stats.ByDeck == nil || stats.VsLegend == nil {
		t.Error("maps should be initialized")
	}
}

func TestCalculate(t *testing.T) {
	sessions := []*models.GameSession{
		session("Jinx", "Jinx Burn", "Viktor", true, w(1)),
		session("Jinx", "Jinx Burn", "Viktor", true, w(2)),
		session("Jinx", "", "Ahri", true, w(1)),
		session("Darius", "Darius Rush", "Ahri", true, nil),
		session("Darius", "Darius Rush", "Viktor", false, nil),
		nil,
	}

	stats := Calculate(sessions)

	if stats.TotalGames != 4 || stats.Wins != 2 || stats.Losses != 1 || stats.Draws != 1 {
		t.Fatalf("unexpected totals %+v", stats)
	}
	if !approx(stats.WinRate, 0.5) {
		t.Errorf("win rate = %v, want 0.5", stats.WinRate)
	}

	jinx := stats.ByLegend["Jinx"]
	if jinx.Games != 3 || jinx.Wins != 2 || jinx.Losses != 1 || !approx(jinx.WinRate, 2.0/3.0) {
		t.Errorf("Jinx record = %+v", jinx)
	}
	darius := stats.ByLegend["Darius"]
	if darius.Games != 1 || darius.Wins != 0 || darius.Losses != 0 {
		t.Errorf("Darius record = %+v", darius)
	}

	if len(stats.ByDeck) != 2 {
		t.Errorf("empty deck titles should be skipped: %v", stats.ByDeck)
	}
	if burn := stats.ByDeck["Jinx Burn"]; burn.Games != 2 || !approx(burn.WinRate, 0.5) {
		t.Errorf("Jinx Burn record = %+v", burn)
	}

	if viktor := stats.VsLegend["Viktor"]; viktor.Games != 2 || viktor.Wins != 1 || viktor.Losses != 1 {
		t.Errorf("vs Viktor record = %+v", viktor)
	}
	if ahri := stats.VsLegend["Ahri"]; ahri.Games != 2 || ahri.Wins != 1 {
		t.Errorf("vs Ahri record = %+v", ahri)
	}
}
