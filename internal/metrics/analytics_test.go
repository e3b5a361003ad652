package metrics

import (
	"testing"

	"finpulse/internal/core"
)

func TestCategoryAnalysesBreakdown(t *testing.T) {
	txns := []core.Transaction{
		txn(core.NewDate(2025, 3, 3), 300_00, core.Expense, "Food"),
		txn(core.NewDate(2025, 3, 10), 100_00, core.Expense, "Food"),
		txn(core.NewDate(2025, 3, 12), 600_00, core.Expense, "Rent"),
		txn(core.NewDate(2025, 3, 15), 2000_00, core.Income, "Salary"),
	}

	analyses := CategoryAnalyses(txns, nil)
	if len(analyses) != 2 {
		t.Fatalf("expected 2 expense categories, got %d", len(analyses))
	}
	// Sorted by total descending.
	if analyses[0].Category != "Rent" || analyses[1].Category != "Food" {
		t.Fatalf("unexpected order: %s, %s", analyses[0].Category, analyses[1].Category)
	}
	food := analyses[1]
	if food.TotalAmount.Cents != 400_00 || food.TransactionCount != 2 {
		t.Fatalf("Food = %+v, want total 40000 count 2", food)
	}
	if food.Percentage != 40 {
		t.Fatalf("Food percentage = %v, want 40", food.Percentage)
	}
	if food.AverageTransaction.Cents != 200_00 {
		t.Fatalf("Food averageTransaction = %d, want 20000", food.AverageTransaction.Cents)
	}
	if food.MonthlyAverage.Cents != 400_00 {
		t.Fatalf("Food monthlyAverage = %d, want 40000 over one month", food.MonthlyAverage.Cents)
	}
}

func TestCategoryAnalysesWindowFilter(t *testing.T) {
	txns := []core.Transaction{
		txn(core.NewDate(2025, 2, 27), 999_00, core.Expense, "Food"),
		txn(core.NewDate(2025, 3, 3), 300_00, core.Expense, "Food"),
		txn(core.NewDate(2025, 4, 1), 999_00, core.Expense, "Food"),
	}
	window := &DateRange{From: core.NewDate(2025, 3, 1), To: core.NewDate(2025, 3, 31)}

	analyses := CategoryAnalyses(txns, window)
	if len(analyses) != 1 || analyses[0].TotalAmount.Cents != 300_00 {
		t.Fatalf("window filter leaked transactions: %+v", analyses)
	}
}

// Trend splits the date-sorted list at its midpoint index, not at a calendar
// boundary.
func TestCategoryAnalysesHalvesTrend(t *testing.T) {
	up := []core.Transaction{
		txn(core.NewDate(2025, 3, 1), 100_00, core.Expense, "Food"),
		txn(core.NewDate(2025, 3, 2), 100_00, core.Expense, "Food"),
		txn(core.NewDate(2025, 3, 20), 200_00, core.Expense, "Food"),
		txn(core.NewDate(2025, 3, 21), 200_00, core.Expense, "Food"),
	}
	analyses := CategoryAnalyses(up, nil)
	if analyses[0].Trend != core.TrendUp {
		t.Fatalf("trend = %s, want up", analyses[0].Trend)
	}

	flat := []core.Transaction{
		txn(core.NewDate(2025, 3, 1), 100_00, core.Expense, "Food"),
		txn(core.NewDate(2025, 3, 20), 105_00, core.Expense, "Food"),
	}
	analyses = CategoryAnalyses(flat, nil)
	if analyses[0].Trend != core.TrendStable {
		t.Fatalf("trend = %s, want stable inside the band", analyses[0].Trend)
	}

	single := CategoryAnalyses(flat[:1], nil)
	if single[0].Trend != core.TrendStable {
		t.Fatalf("trend = %s, want stable for a single transaction", single[0].Trend)
	}
}

func TestCategoryAnalysesEmptyWindow(t *testing.T) {
	analyses := CategoryAnalyses(nil, nil)
	if len(analyses) != 0 {
		t.Fatalf("expected empty analysis list, got %+v", analyses)
	}
}

func TestTimeSeriesBuckets(t *testing.T) {
	txns := []core.Transaction{
		txn(core.NewDate(2025, 3, 3), 100_00, core.Expense, "Food"),  // Monday
		txn(core.NewDate(2025, 3, 4), 50_00, core.Expense, "Food"),   // Tuesday, same week
		txn(core.NewDate(2025, 3, 4), 400_00, core.Income, "Salary"), // same day
		txn(core.NewDate(2025, 3, 12), 75_00, core.Expense, "Food"),  // next week
		txn(core.NewDate(2025, 4, 2), 30_00, core.Expense, "Food"),   // next month
	}

	daily := TimeSeries(txns, core.BucketDaily, nil)
	if len(daily) != 4 {
		t.Fatalf("expected 4 daily buckets, got %d", len(daily))
	}
	if daily[0].Key != "2025-03-03" || daily[len(daily)-1].Key != "2025-04-02" {
		t.Fatalf("daily buckets not sorted ascending: %v", daily)
	}
	march4 := daily[1]
	if march4.Income.Cents != 400_00 || march4.Expenses.Cents != 50_00 || march4.Net.Cents != 350_00 || march4.TransactionCount != 2 {
		t.Fatalf("march 4 bucket = %+v", march4)
	}

	weekly := TimeSeries(txns, core.BucketWeekly, nil)
	if len(weekly) != 3 {
		t.Fatalf("expected 3 weekly buckets, got %d", len(weekly))
	}
	// Week of Mar 3-4 starts on Sunday Mar 2.
	if weekly[0].Key != "2025-03-02" {
		t.Fatalf("weekly bucket key = %s, want 2025-03-02", weekly[0].Key)
	}

	monthly := TimeSeries(txns, core.BucketMonthly, nil)
	if len(monthly) != 2 {
		t.Fatalf("expected 2 monthly buckets, got %d", len(monthly))
	}
	if monthly[0].Key != "2025-03" || monthly[0].Expenses.Cents != 225_00 {
		t.Fatalf("march bucket = %+v", monthly[0])
	}
}

func TestTimeSeriesEmpty(t *testing.T) {
	if points := TimeSeries(nil, core.BucketDaily, nil); len(points) != 0 {
		t.Fatalf("expected no buckets, got %v", points)
	}
}
