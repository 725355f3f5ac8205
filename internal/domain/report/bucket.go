package report

import (
	"fmt"
	"time"
)

// DayKey returns the daily grouping key (YYYY-MM-DD) for a timestamp.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// WeekKey returns the weekly grouping key (YYYY-Www) for a timestamp.
//
// The week number is the ceiling of (weekday + 1 + days elapsed since
// January 1st) / 7, where weekday counts Sunday as 0. Weeks therefore
// do not follow ISO 8601; dashboards and historical exports depend on
// this numbering, so it must not change.
func WeekKey(t time.Time) string {
	days := t.YearDay() - 1
	week := (int(t.Weekday()) + 1 + days + 6) / 7
	return fmt.Sprintf("%d-W%02d", t.Year(), week)
}

// MonthKey returns the monthly grouping key (YYYY-MM) for a timestamp.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}
