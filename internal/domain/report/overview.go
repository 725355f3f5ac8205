package report

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mayasquare/sales-analytics/internal/domain/order"
)

// DaySnapshot summarizes the orders placed on a single calendar day.
type DaySnapshot struct {
	Date      string
	Orders    int64
	Revenue   decimal.Decimal
	ItemsSold int64
}

// WeekSnapshot summarizes the orders placed in the current week.
type WeekSnapshot struct {
	Week      string
	StartDate string
	Orders    int64
	Revenue   decimal.Decimal
	ItemsSold int64
}

// MonthSnapshot summarizes the orders placed in the current month.
type MonthSnapshot struct {
	Month     string
	StartDate string
	Orders    int64
	Revenue   decimal.Decimal
	ItemsSold int64
}

// TodaySnapshot returns the stats for orders whose day key matches the
// day key of now.
func TodaySnapshot(orders []order.Order, now time.Time) DaySnapshot {
	key := DayKey(now)
	snap := DaySnapshot{Date: key}

	for i := range orders {
		o := &orders[i]
		if DayKey(o.CreatedAt) != key {
			continue
		}
		snap.Orders++
		snap.Revenue = snap.Revenue.Add(o.Total)
		snap.ItemsSold += o.ItemsSold()
	}

	return snap
}

// ThisWeekSnapshot returns the stats for orders whose week key matches
// the week key of now. StartDate is the Monday of the current week.
func ThisWeekSnapshot(orders []order.Order, now time.Time) WeekSnapshot {
	key := WeekKey(now)
	snap := WeekSnapshot{
		Week:      key,
		StartDate: DayKey(mondayOf(now)),
	}

	for i := range orders {
		o := &orders[i]
		if WeekKey(o.CreatedAt) != key {
			continue
		}
		snap.Orders++
		snap.Revenue = snap.Revenue.Add(o.Total)
		snap.ItemsSold += o.ItemsSold()
	}

	return snap
}

// ThisMonthSnapshot returns the stats for orders whose month key
// matches the month key of now.
func ThisMonthSnapshot(orders []order.Order, now time.Time) MonthSnapshot {
	key := MonthKey(now)
	snap := MonthSnapshot{
		Month:     key,
		StartDate: fmt.Sprintf("%04d-%02d-01", now.Year(), int(now.Month())),
	}

	for i := range orders {
		o := &orders[i]
		if MonthKey(o.CreatedAt) != key {
			continue
		}
		snap.Orders++
		snap.Revenue = snap.Revenue.Add(o.Total)
		snap.ItemsSold += o.ItemsSold()
	}

	return snap
}

// mondayOf returns the Monday of the week containing t. Sunday counts
// as the last day of the week.
func mondayOf(t time.Time) time.Time {
	dow := int(t.Weekday())
	offset := 1 - dow
	if dow == 0 {
		offset = -6
	}
	return t.AddDate(0, 0, offset)
}
