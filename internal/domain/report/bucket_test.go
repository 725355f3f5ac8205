package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDayKey(t *testing.T) {
	ts := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-01-15", DayKey(ts))
}

func TestWeekKey(t *testing.T) {
	tests := []struct {
		name string
		ts   time.Time
		want string
	}{
		{"january 1st on a thursday", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), "2026-W01"},
		{"mid january", time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC), "2026-W03"},
		{"sunday counts as day zero", time.Date(2026, 1, 18, 12, 0, 0, 0, time.UTC), "2026-W03"},
		{"monday after that sunday", time.Date(2026, 1, 19, 12, 0, 0, 0, time.UTC), "2026-W03"},
		{"tuesday rolls the week", time.Date(2026, 1, 20, 12, 0, 0, 0, time.UTC), "2026-W04"},
		{"end of year", time.Date(2026, 12, 31, 23, 0, 0, 0, time.UTC), "2026-W53"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WeekKey(tt.ts))
		})
	}
}

func TestMonthKey(t *testing.T) {
	ts := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-01", MonthKey(ts))
}
