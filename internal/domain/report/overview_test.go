package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTodaySnapshot(t *testing.T) {
	now := time.Date(2026, 1, 16, 18, 30, 0, 0, time.UTC)
	snap := TodaySnapshot(fixtureOrders(), now)

	assert.Equal(t, "2026-01-16", snap.Date)
	assert.Equal(t, int64(2), snap.Orders)
	assert.True(t, snap.Revenue.Equal(dec("275.00")), "got %s", snap.Revenue)
	assert.Equal(t, int64(8), snap.ItemsSold)
}

func TestTodaySnapshot_NoMatchingOrders(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	snap := TodaySnapshot(fixtureOrders(), now)

	assert.Equal(t, "2026-03-01", snap.Date)
	assert.Zero(t, snap.Orders)
	assert.True(t, snap.Revenue.IsZero())
}

func TestThisWeekSnapshot(t *testing.T) {
	// Friday of the week containing all fixture orders.
	now := time.Date(2026, 1, 16, 12, 0, 0, 0, time.UTC)
	snap := ThisWeekSnapshot(fixtureOrders(), now)

	assert.Equal(t, "2026-W03", snap.Week)
	assert.Equal(t, "2026-01-12", snap.StartDate)
	assert.Equal(t, int64(4), snap.Orders)
	assert.True(t, snap.Revenue.Equal(dec("525.00")))
	assert.Equal(t, int64(15), snap.ItemsSold)
}

func TestThisWeekSnapshot_SundayStartDate(t *testing.T) {
	// Sunday belongs to the week that started the previous Monday.
	now := time.Date(2026, 1, 18, 12, 0, 0, 0, time.UTC)
	snap := ThisWeekSnapshot(fixtureOrders(), now)

	assert.Equal(t, "2026-W03", snap.Week)
	assert.Equal(t, "2026-01-12", snap.StartDate)
	assert.Equal(t, int64(4), snap.Orders)
}

func TestThisMonthSnapshot(t *testing.T) {
	now := time.Date(2026, 1, 31, 12, 0, 0, 0, time.UTC)
	snap := ThisMonthSnapshot(fixtureOrders(), now)

	assert.Equal(t, "2026-01", snap.Month)
	assert.Equal(t, "2026-01-01", snap.StartDate)
	assert.Equal(t, int64(5), snap.Orders)
	assert.True(t, snap.Revenue.Equal(dec("650.00")))
	assert.Equal(t, int64(18), snap.ItemsSold)

	february := ThisMonthSnapshot(fixtureOrders(), time.Date(2026, 2, 15, 12, 0, 0, 0, time.UTC))
	assert.Equal(t, "2026-02", february.Month)
	assert.Zero(t, february.Orders)
}
