package metrics

import (
	"sort"

	"finpulse/internal/core"
)

// DateRange bounds an analysis window, inclusive on both ends. A zero From
// or To leaves that end unbounded.
type DateRange struct {
	From core.Date
	To   core.Date
}

// Contains reports whether the date falls inside the range.
func (r DateRange) Contains(d core.Date) bool {
	if !r.From.IsZero() && d.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && d.After(r.To) {
		return false
	}
	return true
}

// CategoryAnalyses breaks down expense spending by category over the given
// window. The per-category trend compares the first half of that category's
// transactions against the second half, split at the midpoint of the
// date-sorted list rather than at a calendar boundary.
func CategoryAnalyses(txns []core.Transaction, window *DateRange) []core.CategoryAnalysis {
	expenses := filterExpenses(txns, window)
	if len(expenses) == 0 {
		return []core.CategoryAnalysis{}
	}
	sort.SliceStable(expenses, func(i, j int) bool {
		return expenses[i].Date.Time.Before(expenses[j].Date.Time)
	})

	totals := AggregateByCategory(expenses, core.Expense)
	percentages := CategoryPercentages(totals)

	byCategory := make(map[string][]core.Transaction)
	for _, t := range expenses {
		cat := t.CategoryOrDefault()
		byCategory[cat] = append(byCategory[cat], t)
	}

	out := make([]core.CategoryAnalysis, 0, len(totals))
	for cat, agg := range totals {
		analysis := core.CategoryAnalysis{
			Category:         cat,
			TotalAmount:      agg.Total,
			TransactionCount: agg.Count,
			Percentage:       percentages[cat],
			Trend:            halvesTrend(byCategory[cat]),
		}
		if agg.Count > 0 {
			analysis.AverageTransaction = core.Money{Cents: agg.Total.Cents / int64(agg.Count)}
		}
		if months := distinctMonths(byCategory[cat]); months > 0 {
			analysis.MonthlyAverage = core.Money{Cents: agg.Total.Cents / int64(months)}
		}
		out = append(out, analysis)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalAmount.Cents != out[j].TotalAmount.Cents {
			return out[i].TotalAmount.Cents > out[j].TotalAmount.Cents
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// TimeSeries buckets the windowed ledger by day, Sunday-start week or month,
// each point carrying income, expenses, net and transaction count, sorted
// ascending by bucket key.
func TimeSeries(txns []core.Transaction, bucket core.TimeBucket, window *DateRange) []core.TimeSeriesPoint {
	points := make(map[string]*core.TimeSeriesPoint)
	for _, t := range txns {
		if window != nil && !window.Contains(t.Date) {
			continue
		}
		key := bucketKey(t.Date, bucket)
		point, ok := points[key]
		if !ok {
			point = &core.TimeSeriesPoint{Key: key}
			points[key] = point
		}
		switch t.Type {
		case core.Income:
			point.Income = point.Income.Add(t.Amount)
		case core.Expense:
			point.Expenses = point.Expenses.Add(t.Amount)
		default:
			continue
		}
		point.TransactionCount++
	}

	out := make([]core.TimeSeriesPoint, 0, len(points))
	for _, p := range points {
		p.Net = p.Income.Sub(p.Expenses)
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func bucketKey(d core.Date, bucket core.TimeBucket) string {
	switch bucket {
	case core.BucketDaily:
		return d.Format("2006-01-02")
	case core.BucketWeekly:
		sunday := d.AddDate(0, 0, -int(d.Weekday()))
		return sunday.Format("2006-01-02")
	default: // monthly
		return d.Format("2006-01")
	}
}

func filterExpenses(txns []core.Transaction, window *DateRange) []core.Transaction {
	out := make([]core.Transaction, 0, len(txns))
	for _, t := range txns {
		if t.Type != core.Expense {
			continue
		}
		if window != nil && !window.Contains(t.Date) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// halvesTrend splits a date-sorted transaction list at its midpoint index
// and classifies the movement between the two halves' totals.
func halvesTrend(sorted []core.Transaction) core.Trend {
	if len(sorted) < 2 {
		return core.TrendStable
	}
	mid := len(sorted) / 2
	var first, second core.Money
	for _, t := range sorted[:mid] {
		first = first.Add(t.Amount)
	}
	for _, t := range sorted[mid:] {
		second = second.Add(t.Amount)
	}
	return ClassifyTrend(first.Units(), second.Units())
}

func distinctMonths(txns []core.Transaction) int {
	seen := make(map[string]struct{})
	for _, t := range txns {
		seen[t.Date.Format("2006-01")] = struct{}{}
	}
	return len(seen)
}
