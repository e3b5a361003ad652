package metrics

import (
	"fmt"
	"sort"
	"time"

	"finpulse/internal/core"
)

// Recommendation rule thresholds. The trend band itself lives in trend.go.
const (
	lowSavingsRate      = 10.0
	highSavingsRate     = 30.0
	dominantCategoryPct = 40.0
	surgingCategoryPct  = 20.0
	maxRecommendations  = 3
)

// Insights composes the current-vs-previous calendar month picture from the
// transaction snapshot: totals, growth percentages, daily spending pace and
// a small rule-driven recommendation list.
func Insights(txns []core.Transaction, now time.Time) core.FinancialInsights {
	currentStart := core.NewDate(now.Year(), int(now.Month()), 1)
	currentEnd := core.Date{Time: currentStart.AddDate(0, 1, -1)}
	previousStart := core.Date{Time: currentStart.AddDate(0, -1, 0)}
	previousEnd := core.Date{Time: currentStart.AddDate(0, 0, -1)}

	current := monthTotals(txns, DateRange{From: currentStart, To: currentEnd})
	previous := monthTotals(txns, DateRange{From: previousStart, To: previousEnd})

	insights := core.FinancialInsights{
		Comparison: core.MonthComparison{
			CurrentIncome:    current.income,
			CurrentExpenses:  current.expenses,
			PreviousIncome:   previous.income,
			PreviousExpenses: previous.expenses,
			IncomeGrowth:     PercentChange(previous.income.Units(), current.income.Units()),
			ExpenseGrowth:    PercentChange(previous.expenses.Units(), current.expenses.Units()),
		},
	}

	dayOfMonth := now.Day()
	if dayOfMonth > 0 {
		avgDaily := current.expenses.Units() / float64(dayOfMonth)
		insights.AverageDailySpending = core.CentsOf(avgDaily)
		insights.ProjectedMonthlySpending = core.CentsOf(avgDaily * 30)
	}

	if current.income.Cents > 0 {
		net := current.income.Sub(current.expenses)
		insights.SavingsRate = net.Units() / current.income.Units() * 100
	}

	insights.Recommendations = recommendations(insights, txns, DateRange{From: currentStart, To: currentEnd}, DateRange{From: previousStart, To: previousEnd})
	return insights
}

type incomeExpense struct {
	income   core.Money
	expenses core.Money
}

func monthTotals(txns []core.Transaction, window DateRange) incomeExpense {
	var out incomeExpense
	for _, t := range txns {
		if !window.Contains(t.Date) {
			continue
		}
		switch t.Type {
		case core.Income:
			out.income = out.income.Add(t.Amount)
		case core.Expense:
			out.expenses = out.expenses.Add(t.Amount)
		}
	}
	return out
}

// recommendations applies the fixed rule thresholds in a stable order and
// caps the list at maxRecommendations. When no rule fires it emits a single
// generic stability message.
func recommendations(insights core.FinancialInsights, txns []core.Transaction, currentWindow, previousWindow DateRange) []core.Recommendation {
	var recs []core.Recommendation

	// A month with no income reports a 0% savings rate, so this rule still
	// fires first when only expenses were recorded.
	if insights.SavingsRate < lowSavingsRate {
		recs = append(recs, core.Recommendation{
			Kind:    "savings",
			Message: fmt.Sprintf("Your savings rate is %.1f%% this month. Aim for at least 10%% by trimming discretionary spending.", insights.SavingsRate),
		})
	}
	if insights.SavingsRate > highSavingsRate {
		recs = append(recs, core.Recommendation{
			Kind:    "invest",
			Message: fmt.Sprintf("You are saving %.1f%% of your income. Consider putting the surplus to work in investments.", insights.SavingsRate),
		})
	}

	currentTotals := AggregateByCategory(filterExpenses(txns, &currentWindow), core.Expense)
	if top, pct, ok := topCategoryShare(currentTotals); ok && pct > dominantCategoryPct {
		recs = append(recs, core.Recommendation{
			Kind:    "budget",
			Message: fmt.Sprintf("%s accounts for %.1f%% of this month's expenses. Setting a budget for it would help.", top, pct),
		})
	}

	previousTotals := AggregateByCategory(filterExpenses(txns, &previousWindow), core.Expense)
	for _, cat := range sortedCategories(currentTotals) {
		prev := previousTotals[cat].Total.Units()
		cur := currentTotals[cat].Total.Units()
		change := PercentChange(prev, cur)
		if ClassifyTrend(prev, cur) == core.TrendUp && change > surgingCategoryPct {
			recs = append(recs, core.Recommendation{
				Kind:    "trend",
				Message: fmt.Sprintf("Spending on %s is up %.1f%% compared to last month.", cat, change),
			})
		}
	}

	if len(recs) == 0 {
		recs = append(recs, core.Recommendation{
			Kind:    "stable",
			Message: "Your finances look stable this month. Keep up the consistent habits.",
		})
	}
	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}
	return recs
}

func topCategoryShare(totals map[string]CategoryTotal) (string, float64, bool) {
	percentages := CategoryPercentages(totals)
	if len(percentages) == 0 {
		return "", 0, false
	}
	var topCat string
	var topPct float64
	for _, cat := range sortedCategories(totals) {
		if percentages[cat] > topPct {
			topCat = cat
			topPct = percentages[cat]
		}
	}
	return topCat, topPct, true
}

// sortedCategories keeps rule evaluation deterministic across map iteration
// order, largest spend first.
func sortedCategories(totals map[string]CategoryTotal) []string {
	cats := make([]string, 0, len(totals))
	for cat := range totals {
		cats = append(cats, cat)
	}
	sort.Slice(cats, func(i, j int) bool {
		if totals[cats[i]].Total.Cents != totals[cats[j]].Total.Cents {
			return totals[cats[i]].Total.Cents > totals[cats[j]].Total.Cents
		}
		return cats[i] < cats[j]
	})
	return cats
}
