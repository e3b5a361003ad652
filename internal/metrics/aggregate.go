package metrics

import "finpulse/internal/core"

// CategoryTotal is the per-category accumulation produced by
// AggregateByCategory.
type CategoryTotal struct {
	Total core.Money
	Count int
}

// AggregateByCategory groups transactions of one type by category, coercing
// empty categories to core.DefaultCategory. Income and expenses are never
// mixed in a single aggregation.
func AggregateByCategory(txns []core.Transaction, typ core.TransactionType) map[string]CategoryTotal {
	out := make(map[string]CategoryTotal)
	for _, t := range txns {
		if t.Type != typ {
			continue
		}
		cat := t.CategoryOrDefault()
		agg := out[cat]
		agg.Total = agg.Total.Add(t.Amount)
		agg.Count++
		out[cat] = agg
	}
	return out
}

// CategoryPercentages derives each category's share of the aggregate total,
// in percent. A zero denominator yields an empty map rather than a division
// by zero.
func CategoryPercentages(totals map[string]CategoryTotal) map[string]float64 {
	var sum int64
	for _, agg := range totals {
		sum += agg.Total.Cents
	}
	if sum == 0 {
		return map[string]float64{}
	}
	out := make(map[string]float64, len(totals))
	for cat, agg := range totals {
		out[cat] = float64(agg.Total.Cents) / float64(sum) * 100
	}
	return out
}
