package stats

import (
	"fmt"
	"sort"
	"time"

	"github.com/ramonehamilton/Riftbound-Companion/internal/storage/models"
)

// Streaks tracks consecutive results from player 1's point of view.
type Streaks struct {
	// Current is positive for a win streak and negative for a loss streak.
	Current           int `json:"current"`
	LongestWinStreak  int `json:"longestWinStreak"`
	LongestLossStreak int `json:"longestLossStreak"`
}

// CalculateStreaks walks the completed sessions in completion order.
// A draw breaks any running streak.
func CalculateStreaks(sessions []*models.GameSession) Streaks {
	completed := make([]*models.GameSession, 0, len(sessions))
	for _, s := range sessions {
		if s != nil && s.IsComplete {
			completed = append(completed, s)
		}
	}
	sort.SliceStable(completed, func(i, j int) bool {
		return finishedAt(completed[i]).Before(finishedAt(completed[j]))
	})

	var st Streaks
	wins, losses := 0, 0
	for _, s := range completed {
		switch {
		case s.Winner != nil && *s.Winner == models.WinnerPlayer1:
			wins++
			losses = 0
			if wins > st.LongestWinStreak {
				st.LongestWinStreak = wins
			}
		case s.Winner != nil && *s.Winner == models.WinnerPlayer2:
			losses++
			wins = 0
			if losses > st.LongestLossStreak {
				st.LongestLossStreak = losses
			}
		default:
			wins, losses = 0, 0
		}
	}

	switch {
	case wins > 0:
		st.Current = wins
	case losses > 0:
		st.Current = -losses
	}
	return st
}

// FormatCurrent returns a human-readable description of the current streak.
func (s Streaks) FormatCurrent() string {
	switch {
	case s.Current == 0:
		return "No active streak"
	case s.Current == 1:
		return "1 win streak"
	case s.Current > 1:
		return fmt.Sprintf("%d win streak", s.Current)
	case s.Current == -1:
		return "1 loss streak"
	default:
		return fmt.Sprintf("%d loss streak", -s.Current)
	}
}

func finishedAt(s *models.GameSession) time.Time {
	if s.CompletedAt != nil {
		return *s.CompletedAt
	}
	return s.CreatedAt
}
