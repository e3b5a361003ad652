package core

import (
	"time"

	"github.com/google/uuid"
)

// Trend classifies the direction of a metric between two observations.
type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// TimeBucket selects the granularity of a time series.
type TimeBucket string

const (
	BucketDaily   TimeBucket = "daily"
	BucketWeekly  TimeBucket = "weekly"
	BucketMonthly TimeBucket = "monthly"
)

// BudgetStatus wraps a budget with its evaluated period standing. Computed
// fresh from the transaction snapshot on every call, never persisted.
type BudgetStatus struct {
	Budget                Budget  `json:"budget"`
	CurrentSpent          Money   `json:"currentSpent"`
	SpentPercentage       float64 `json:"spentPercentage"`
	RemainingAmount       Money   `json:"remainingAmount"`
	IsOverBudget          bool    `json:"isOverBudget"`
	ShouldAlert           bool    `json:"shouldAlert"`
	ProjectedSpending     Money   `json:"projectedSpending"`
	DaysRemainingInPeriod int     `json:"daysRemainingInPeriod"`
}

// SpentDrift is the dirty-write descriptor produced when a budget's cached
// CurrentSpent no longer matches the freshly computed value. Applying it is
// the caller's concern and always best-effort.
type SpentDrift struct {
	BudgetID uuid.UUID
	Spent    Money
}

// GoalProgress wraps a goal with its evaluated standing.
type GoalProgress struct {
	Goal                Goal       `json:"goal"`
	ProgressPercentage  float64    `json:"progressPercentage"`
	RemainingAmount     Money      `json:"remainingAmount"`
	DaysRemaining       int        `json:"daysRemaining"`
	MonthlyTargetAmount Money      `json:"monthlyTargetAmount"`
	OnTrack             bool       `json:"onTrack"`
	ProjectedCompletion *time.Time `json:"projectedCompletion,omitempty"`
}

// CategoryAnalysis summarizes one expense category over an analysis window.
type CategoryAnalysis struct {
	Category           string  `json:"category"`
	TotalAmount        Money   `json:"totalAmount"`
	TransactionCount   int     `json:"transactionCount"`
	Percentage         float64 `json:"percentage"`
	AverageTransaction Money   `json:"averageTransaction"`
	Trend              Trend   `json:"trend"`
	MonthlyAverage     Money   `json:"monthlyAverage"`
}

// TimeSeriesPoint is one aggregation bucket of the ledger.
type TimeSeriesPoint struct {
	Key              string `json:"key"`
	Income           Money  `json:"income"`
	Expenses         Money  `json:"expenses"`
	Net              Money  `json:"net"`
	TransactionCount int    `json:"transactionCount"`
}

// MonthComparison holds current-vs-previous calendar month totals with
// zero-guarded growth percentages.
type MonthComparison struct {
	CurrentIncome    Money   `json:"currentIncome"`
	CurrentExpenses  Money   `json:"currentExpenses"`
	PreviousIncome   Money   `json:"previousIncome"`
	PreviousExpenses Money   `json:"previousExpenses"`
	IncomeGrowth     float64 `json:"incomeGrowth"`
	ExpenseGrowth    float64 `json:"expenseGrowth"`
}

// Recommendation is one rule-driven suggestion attached to the insights.
type Recommendation struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// FinancialInsights is the composite month-over-month picture returned by
// the analytics aggregator.
type FinancialInsights struct {
	Comparison               MonthComparison  `json:"comparison"`
	AverageDailySpending     Money            `json:"averageDailySpending"`
	ProjectedMonthlySpending Money            `json:"projectedMonthlySpending"`
	SavingsRate              float64          `json:"savingsRate"`
	Recommendations          []Recommendation `json:"recommendations"`
}
