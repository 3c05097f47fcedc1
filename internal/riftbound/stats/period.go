package stats

import (
	"fmt"
	"strings"
	"time"

	"github.com/ramonehamilton/Riftbound-Companion/internal/storage/models"
)

// TimeRange is a half-open [Start, End) period.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the range.
func (tr TimeRange) Contains(t time.Time) bool {
	return !t.Before(tr.Start) && t.Before(tr.End)
}

// FormatPeriod returns the inclusive dates of the range.
func (tr TimeRange) FormatPeriod() string {
	start := tr.Start.Format("2006-01-02")
	end := tr.End.AddDate(0, 0, -1).Format("2006-01-02")
	return fmt.Sprintf("%s to %s", start, end)
}

// WeekRangeFrom returns the Monday-to-Sunday week containing ref, shifted by
// offset weeks (-1 is the previous week).
func WeekRangeFrom(ref time.Time, offset int) TimeRange {
	weekday := int(ref.Weekday())
	if weekday == 0 {
		weekday = 7 // ISO 8601: Sunday ends the week
	}
	day := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, ref.Location())
	start := day.AddDate(0, 0, -weekday+1+offset*7)
	return TimeRange{Start: start, End: start.AddDate(0, 0, 7)}
}

// MonthRangeFrom returns the calendar month containing ref, shifted by
// offset months.
func MonthRangeFrom(ref time.Time, offset int) TimeRange {
	start := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location()).AddDate(0, offset, 0)
	return TimeRange{Start: start, End: start.AddDate(0, 1, 0)}
}

// ParsePeriod maps "all", "week", "last-week", "month" and "last-month" to a
// range around now. "all" and "" return nil.
func ParsePeriod(period string, now time.Time) (*TimeRange, error) {
	var tr TimeRange
	switch strings.ToLower(strings.TrimSpace(period)) {
	case "", "all":
		return nil, nil
	case "week":
		tr = WeekRangeFrom(now, 0)
	case "last-week":
		tr = WeekRangeFrom(now, -1)
	case "month":
		tr = MonthRangeFrom(now, 0)
	case "last-month":
		tr = MonthRangeFrom(now, -1)
	default:
		return nil, fmt.Errorf("unknown period %q", period)
	}
	return &tr, nil
}

// InRange keeps the sessions created inside tr. A nil range keeps all.
func InRange(sessions []*models.GameSession, tr *TimeRange) []*models.GameSession {
	if tr == nil {
		return sessions
	}
	kept := make([]*models.GameSession, 0, len(sessions))
	for _, s := range sessions {
		if s != nil && tr.Contains(s.CreatedAt) {
			kept = append(kept, s)
		}
	}
	return kept
}
