package core

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	Weekly  BudgetPeriod = "weekly"
	Monthly BudgetPeriod = "monthly"
	Yearly  BudgetPeriod = "yearly"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	GoalActive    GoalStatus = "active"
	GoalCompleted GoalStatus = "completed"
	GoalPaused    GoalStatus = "paused"
)

// DefaultCategory is the fallback for transactions saved without a category.
const DefaultCategory = "Other"

type (
	BudgetPeriod    string
	TransactionType string
	GoalStatus      string
	GoalCategory    string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64 `json:"cents"`
	}

	// Transaction is a single ledger entry. Amount is a non-negative
	// magnitude; direction comes from Type, never from the sign.
	Transaction struct {
		ID       uuid.UUID       `json:"id"`
		Date     Date            `json:"date"`
		Amount   Money           `json:"amount"`
		Type     TransactionType `json:"type"`
		Category string          `json:"category"`
		Note     string          `json:"note,omitempty"`
	}

	// Budget is a recurring spending limit for one category. CurrentSpent is
	// a derived cache refreshed by the budget evaluator, not a source of
	// truth.
	Budget struct {
		ID             uuid.UUID    `json:"id"`
		Category       string       `json:"category"`
		Limit          Money        `json:"limit"`
		Period         BudgetPeriod `json:"period"`
		AlertThreshold float64      `json:"alertThreshold"` // percent of limit, 0-100
		Active         bool         `json:"active"`
		CurrentSpent   Money        `json:"currentSpent"`
	}

	// Milestone is an ordered sub-target inside a goal.
	Milestone struct {
		Title     string `json:"title"`
		Amount    Money  `json:"amount"`
		Completed bool   `json:"completed"`
	}

	// Goal is a savings target with a deadline. Status moves to completed
	// exactly when CurrentAmount reaches TargetAmount and never regresses
	// automatically.
	Goal struct {
		ID            uuid.UUID    `json:"id"`
		Title         string       `json:"title"`
		TargetAmount  Money        `json:"targetAmount"`
		CurrentAmount Money        `json:"currentAmount"`
		Deadline      Date         `json:"deadline"`
		Category      GoalCategory `json:"category,omitempty"`
		Status        GoalStatus   `json:"status"`
		Milestones    []Milestone  `json:"milestones,omitempty"`
		CreatedAt     time.Time    `json:"createdAt"`
	}
)

var (
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidType     = errors.New("invalid transaction type")
	ErrInvalidPeriod   = errors.New("invalid budget period")
	ErrInvalidStatus   = errors.New("invalid goal status")
	ErrEmptyTitle      = errors.New("empty title")
	ErrInvalidDeadline = errors.New("invalid deadline")
)

// NewDate creates a Date at UTC midnight from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a timestamp to its calendar date at UTC midnight.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Before reports whether d falls on an earlier calendar day than other.
func (d Date) Before(other Date) bool { return d.Time.Before(other.Time) }

// After reports whether d falls on a later calendar day than other.
func (d Date) After(other Date) bool { return d.Time.After(other.Time) }

// String renders the date as YYYY-MM-DD, the storage wire format.
func (d Date) String() string { return d.Format("2006-01-02") }

// MarshalJSON renders the date as a quoted YYYY-MM-DD string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON accepts a quoted YYYY-MM-DD string.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		return ErrInvalidDate
	}
	*d = DateOf(t)
	return nil
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if t.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	switch t.Type {
	case Income, Expense:
	default:
		return ErrInvalidType
	}
	return nil
}

// CategoryOrDefault returns the transaction category, falling back to
// DefaultCategory when it is empty or whitespace.
func (t Transaction) CategoryOrDefault() string {
	if strings.TrimSpace(t.Category) == "" {
		return DefaultCategory
	}
	return t.Category
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.Category) == "" {
		return errors.New("empty budget category")
	}
	switch b.Period {
	case Weekly, Monthly, Yearly:
	default:
		return ErrInvalidPeriod
	}
	if b.AlertThreshold < 0 || b.AlertThreshold > 100 {
		return errors.New("alert threshold must be between 0 and 100")
	}
	return nil
}

func (g Goal) Validate() error {
	if len(strings.TrimSpace(g.Title)) == 0 {
		return ErrEmptyTitle
	}
	if g.TargetAmount.Cents <= 0 {
		return ErrInvalidAmount
	}
	if g.CurrentAmount.Cents < 0 {
		return ErrInvalidAmount
	}
	if err := g.Deadline.Validate(); err != nil {
		return ErrInvalidDeadline
	}
	switch g.Status {
	case GoalActive, GoalCompleted, GoalPaused:
	default:
		return ErrInvalidStatus
	}
	return nil
}
