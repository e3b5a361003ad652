package metrics

import (
	"time"

	"finpulse/internal/core"
)

// EvaluateBudget computes the period standing of one budget against the
// transaction snapshot. It returns the status plus, when the budget's cached
// CurrentSpent has drifted from the freshly computed value, a SpentDrift
// descriptor the caller may apply to storage. The computation itself is pure
// and never fails for well-typed input.
func EvaluateBudget(budget core.Budget, txns []core.Transaction, now time.Time) (core.BudgetStatus, *core.SpentDrift) {
	start := PeriodStart(budget.Period, now)
	today := core.DateOf(now)

	var spent core.Money
	for _, t := range txns {
		if t.Type != core.Expense || t.CategoryOrDefault() != budget.Category {
			continue
		}
		if t.Date.Before(start) || t.Date.After(today) {
			continue
		}
		if t.Amount.Cents < 0 {
			spent.Cents += -t.Amount.Cents
		} else {
			spent.Cents += t.Amount.Cents
		}
	}

	status := core.BudgetStatus{
		Budget:       budget,
		CurrentSpent: spent,
	}

	if budget.Limit.Cents > 0 {
		status.SpentPercentage = spent.Units() / budget.Limit.Units() * 100
		status.IsOverBudget = spent.Cents > budget.Limit.Cents
		if remaining := budget.Limit.Sub(spent); remaining.Cents > 0 {
			status.RemainingAmount = remaining
		}
	} else {
		// Malformed limit: degenerate result instead of NaN propagation.
		status.SpentPercentage = 0
		status.IsOverBudget = spent.Cents > 0
	}
	status.ShouldAlert = status.SpentPercentage >= budget.AlertThreshold

	elapsed := DaysElapsed(budget.Period, now)
	total := DaysInPeriod(budget.Period, now)
	if elapsed > 0 {
		dailyAverage := spent.Units() / float64(elapsed)
		status.ProjectedSpending = core.CentsOf(dailyAverage * float64(total))
	}
	if remaining := total - elapsed; remaining > 0 {
		status.DaysRemainingInPeriod = remaining
	}

	var drift *core.SpentDrift
	if spent != budget.CurrentSpent {
		drift = &core.SpentDrift{BudgetID: budget.ID, Spent: spent}
	}
	return status, drift
}
