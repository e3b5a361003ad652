// Package metrics is the deterministic computation layer that turns a raw
// ledger of transactions into budget status, category analytics and goal
// projections. Every function takes "now" as an explicit parameter and works
// over an already-fetched in-memory snapshot; nothing here touches storage.
package metrics

import (
	"math"
	"time"

	"finpulse/internal/core"
)

// PeriodStart returns the first day of the period containing now.
// Weekly periods start on the most recent Sunday on or before now, monthly
// on the first of the month, yearly on January 1.
func PeriodStart(period core.BudgetPeriod, now time.Time) core.Date {
	switch period {
	case core.Weekly:
		day := core.DateOf(now)
		return core.Date{Time: day.AddDate(0, 0, -int(day.Weekday()))}
	case core.Yearly:
		return core.NewDate(now.Year(), 1, 1)
	default: // monthly
		return core.NewDate(now.Year(), int(now.Month()), 1)
	}
}

// DaysInPeriod returns the total day count of the period containing now.
// Monthly lengths come from calendar arithmetic (28-31); yearly honors the
// standard leap-year rule.
func DaysInPeriod(period core.BudgetPeriod, now time.Time) int {
	switch period {
	case core.Weekly:
		return 7
	case core.Yearly:
		if isLeapYear(now.Year()) {
			return 366
		}
		return 365
	default:
		firstOfMonth := core.NewDate(now.Year(), int(now.Month()), 1)
		return firstOfMonth.AddDate(0, 1, -1).Day()
	}
}

// DaysElapsed counts days from the period start through now, with the start
// day itself counting as day 1. The +1 convention feeds every downstream
// pace projection and must not change.
func DaysElapsed(period core.BudgetPeriod, now time.Time) int {
	start := PeriodStart(period, now)
	return int(math.Ceil(now.Sub(start.Time).Hours()/24)) + 1
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
