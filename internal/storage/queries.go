package storage

import (
	"context"
	"database/sql"
	"time"
)

type Queries struct {
	db *sql.DB
}

func New(db *sql.DB) *Queries {
	return &Queries{db: db}
}

type TransactionRow struct {
	ID          string
	Date        string
	AmountCents int64
	Type        string
	Category    string
	Note        string
	CreatedAt   time.Time
}

type BudgetRow struct {
	ID                string
	Category          string
	LimitCents        int64
	Period            string
	AlertThreshold    float64
	Active            bool
	CurrentSpentCents int64
	CreatedAt         time.Time
}

type GoalRow struct {
	ID           string
	Title        string
	TargetCents  int64
	CurrentCents int64
	Deadline     string
	Category     string
	Status       string
	CreatedAt    time.Time
}

type MilestoneRow struct {
	GoalID      string
	Position    int64
	Title       string
	AmountCents int64
	Completed   bool
}

const createTransaction = `
INSERT INTO transactions (id, date, amount_cents, type, category, note)
VALUES (?, ?, ?, ?, ?, ?)
`

type CreateTransactionParams struct {
	ID          string
	Date        string
	AmountCents int64
	Type        string
	Category    string
	Note        string
}

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) error {
	_, err := q.db.ExecContext(ctx, createTransaction,
		arg.ID, arg.Date, arg.AmountCents, arg.Type, arg.Category, arg.Note)
	return err
}

const listTransactions = `
SELECT id, date, amount_cents, type, category, note, created_at
FROM transactions
ORDER BY date, created_at
`

const listTransactionsInRange = `
SELECT id, date, amount_cents, type, category, note, created_at
FROM transactions
WHERE date >= ? AND date <= ?
ORDER BY date, created_at
`

func (q *Queries) ListTransactions(ctx context.Context) ([]TransactionRow, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTransactions(rows)
}

func (q *Queries) ListTransactionsInRange(ctx context.Context, from, to string) ([]TransactionRow, error) {
	rows, err := q.db.QueryContext(ctx, listTransactionsInRange, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTransactions(rows)
}

func scanTransactions(rows *sql.Rows) ([]TransactionRow, error) {
	var out []TransactionRow
	for rows.Next() {
		var t TransactionRow
		if err := rows.Scan(&t.ID, &t.Date, &t.AmountCents, &t.Type, &t.Category, &t.Note, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

const createBudget = `
INSERT INTO budgets (id, category, limit_cents, period, alert_threshold, active, current_spent_cents)
VALUES (?, ?, ?, ?, ?, ?, ?)
`

type CreateBudgetParams struct {
	ID                string
	Category          string
	LimitCents        int64
	Period            string
	AlertThreshold    float64
	Active            bool
	CurrentSpentCents int64
}

func (q *Queries) CreateBudget(ctx context.Context, arg CreateBudgetParams) error {
	_, err := q.db.ExecContext(ctx, createBudget,
		arg.ID, arg.Category, arg.LimitCents, arg.Period, arg.AlertThreshold, arg.Active, arg.CurrentSpentCents)
	return err
}

const listBudgets = `
SELECT id, category, limit_cents, period, alert_threshold, active, current_spent_cents, created_at
FROM budgets
ORDER BY category
`

const listActiveBudgets = `
SELECT id, category, limit_cents, period, alert_threshold, active, current_spent_cents, created_at
FROM budgets
WHERE active = 1
ORDER BY category
`

func (q *Queries) ListBudgets(ctx context.Context, activeOnly bool) ([]BudgetRow, error) {
	query := listBudgets
	if activeOnly {
		query = listActiveBudgets
	}
	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BudgetRow
	for rows.Next() {
		var b BudgetRow
		if err := rows.Scan(&b.ID, &b.Category, &b.LimitCents, &b.Period, &b.AlertThreshold, &b.Active, &b.CurrentSpentCents, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

const getBudget = `
SELECT id, category, limit_cents, period, alert_threshold, active, current_spent_cents, created_at
FROM budgets
WHERE id = ?
`

func (q *Queries) GetBudget(ctx context.Context, id string) (BudgetRow, error) {
	var b BudgetRow
	err := q.db.QueryRowContext(ctx, getBudget, id).
		Scan(&b.ID, &b.Category, &b.LimitCents, &b.Period, &b.AlertThreshold, &b.Active, &b.CurrentSpentCents, &b.CreatedAt)
	return b, err
}

const updateBudgetSpent = `
UPDATE budgets SET current_spent_cents = ? WHERE id = ?
`

func (q *Queries) UpdateBudgetSpent(ctx context.Context, id string, spentCents int64) error {
	_, err := q.db.ExecContext(ctx, updateBudgetSpent, spentCents, id)
	return err
}

const createGoal = `
INSERT INTO goals (id, title, target_cents, current_cents, deadline, category, status)
VALUES (?, ?, ?, ?, ?, ?, ?)
`

type CreateGoalParams struct {
	ID           string
	Title        string
	TargetCents  int64
	CurrentCents int64
	Deadline     string
	Category     string
	Status       string
}

func (q *Queries) CreateGoal(ctx context.Context, arg CreateGoalParams) error {
	_, err := q.db.ExecContext(ctx, createGoal,
		arg.ID, arg.Title, arg.TargetCents, arg.CurrentCents, arg.Deadline, arg.Category, arg.Status)
	return err
}

const listGoals = `
SELECT id, title, target_cents, current_cents, deadline, category, status, created_at
FROM goals
ORDER BY deadline
`

func (q *Queries) ListGoals(ctx context.Context) ([]GoalRow, error) {
	rows, err := q.db.QueryContext(ctx, listGoals)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GoalRow
	for rows.Next() {
		var g GoalRow
		if err := rows.Scan(&g.ID, &g.Title, &g.TargetCents, &g.CurrentCents, &g.Deadline, &g.Category, &g.Status, &g.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

const updateGoalProgress = `
UPDATE goals SET current_cents = ? WHERE id = ?
`

func (q *Queries) UpdateGoalProgress(ctx context.Context, id string, currentCents int64) error {
	_, err := q.db.ExecContext(ctx, updateGoalProgress, currentCents, id)
	return err
}

const updateGoalStatus = `
UPDATE goals SET status = ? WHERE id = ?
`

func (q *Queries) UpdateGoalStatus(ctx context.Context, id string, status string) error {
	_, err := q.db.ExecContext(ctx, updateGoalStatus, status, id)
	return err
}

const createMilestone = `
INSERT INTO goal_milestones (goal_id, position, title, amount_cents, completed)
VALUES (?, ?, ?, ?, ?)
`

func (q *Queries) CreateMilestone(ctx context.Context, arg MilestoneRow) error {
	_, err := q.db.ExecContext(ctx, createMilestone,
		arg.GoalID, arg.Position, arg.Title, arg.AmountCents, arg.Completed)
	return err
}

const listMilestonesByGoal = `
SELECT goal_id, position, title, amount_cents, completed
FROM goal_milestones
WHERE goal_id = ?
ORDER BY position
`

func (q *Queries) ListMilestonesByGoal(ctx context.Context, goalID string) ([]MilestoneRow, error) {
	rows, err := q.db.QueryContext(ctx, listMilestonesByGoal, goalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MilestoneRow
	for rows.Next() {
		var m MilestoneRow
		if err := rows.Scan(&m.GoalID, &m.Position, &m.Title, &m.AmountCents, &m.Completed); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
