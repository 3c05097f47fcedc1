// Package stats summarizes completed score-counter games from player 1's
// point of view.
package stats

import (
	"github.com/ramonehamilton/Riftbound-Companion/internal/storage/models"
)

// Record is a win/loss tally for one grouping.
type Record struct {
	Games   int     `json:"games"`
	Wins    int     `json:"wins"`
	Losses  int     `json:"losses"`
	WinRate float64 `json:"winRate"`
}

func (r *Record) add(winner *int) {
	r.Games++
	if winner == nil {
		return
	}
	switch *winner {
	case models.WinnerPlayer1:
		r.Wins++
	case models.WinnerPlayer2:
		r.Losses++
	}
}

func (r *Record) finish() {
	r.WinRate = winRate(r.Wins, r.Games)
}

// GameStats is the summary of a player's completed games.
type GameStats struct {
	TotalGames int               `json:"totalGames"`
	Wins       int               `json:"wins"`
	Losses     int               `json:"losses"`
	Draws      int               `json:"draws"`
	WinRate    float64           `json:"winRate"`
	ByLegend   map[string]Record `json:"byLegend"` // Player 1's legend
	ByDeck     map[string]Record `json:"byDeck"`   // Player 1's deck title
	VsLegend   map[string]Record `json:"vsLegend"` // Opponent's legend
	Streaks    Streaks           `json:"streaks"`
	Period     *TimeRange        `json:"period,omitempty"`
}

// Calculate summarizes the completed sessions. In-progress sessions are ignored.
// A completed session without a winner counts as a draw.
func Calculate(sessions []*models.GameSession) GameStats {
	stats := GameStats{
		ByLegend: make(map[string]Record),
		ByDeck:   make(map[string]Record),
		VsLegend: make(map[string]Record),
	}

	for _, s := range sessions {
		if s == nil || !s.IsComplete {
			continue
		}
		stats.TotalGames++
		switch {
		case s.Winner == nil:
			stats.Draws++
		case *s.Winner == models.WinnerPlayer1:
			stats.Wins++
		case *s.Winner == models.WinnerPlayer2:
			stats.Losses++
		}

		tally(stats.ByLegend, s.Player1.LegendChampionTag, s.Winner)
		if s.Player1.DeckTitle != nil && *s.Player1.DeckTitle != "" {
			tally(stats.ByDeck, *s.Player1.DeckTitle, s.Winner)
		}
		tally(stats.VsLegend, s.Player2.LegendChampionTag, s.Winner)
	}

	stats.WinRate = winRate(stats.Wins, stats.TotalGames)
	stats.Streaks = CalculateStreaks(sessions)
	for _, m := range []map[string]Record{stats.ByLegend, stats.ByDeck, stats.VsLegend} {
		for k, r := range m {
			r.finish()
			m[k] = r
		}
	}
	return stats
}

func tally(m map[string]Record, key string, winner *int) {
	r := m[key]
	r.add(winner)
	m[key] = r
}

func winRate(wins, games int) float64 {
	if games == 0 {
		return 0
	}
	return float64(wins) / float64(games)
}
