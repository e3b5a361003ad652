package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"finpulse/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	repo := &SQLiteRepository{
		db:      db,
		queries: New(db),
	}

	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) error {
	if err := r.queries.CreateTransaction(ctx, CreateTransactionParams{
		ID:          t.ID.String(),
		Date:        t.Date.String(),
		AmountCents: t.Amount.Cents,
		Type:        string(t.Type),
		Category:    t.CategoryOrDefault(),
		Note:        t.Note,
	}); err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", t.ID,
		"type", t.Type,
		"category", t.CategoryOrDefault(),
		"amount_cents", t.Amount.Cents,
		"date", t.Date.String())

	return nil
}

// ListTransactions returns the full ledger in date order. When from and to
// are non-nil, only transactions on days inside the inclusive range are
// returned.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, from, to *core.Date) ([]core.Transaction, error) {
	var (
		rows []TransactionRow
		err  error
	)
	if from != nil && to != nil {
		rows, err = r.queries.ListTransactionsInRange(ctx, from.String(), to.String())
	} else {
		rows, err = r.queries.ListTransactions(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	txns := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		t, err := transactionFromRow(row)
		if err != nil {
			return nil, fmt.Errorf("decode transaction %s: %w", row.ID, err)
		}
		txns = append(txns, t)
	}
	return txns, nil
}

func (r *SQLiteRepository) CreateBudget(ctx context.Context, b core.Budget) error {
	if err := r.queries.CreateBudget(ctx, CreateBudgetParams{
		ID:                b.ID.String(),
		Category:          b.Category,
		LimitCents:        b.Limit.Cents,
		Period:            string(b.Period),
		AlertThreshold:    b.AlertThreshold,
		Active:            b.Active,
		CurrentSpentCents: b.CurrentSpent.Cents,
	}); err != nil {
		return fmt.Errorf("create budget: %w", err)
	}

	slog.InfoContext(ctx, "Budget saved",
		"id", b.ID,
		"category", b.Category,
		"period", b.Period,
		"limit_cents", b.Limit.Cents)

	return nil
}

func (r *SQLiteRepository) ListBudgets(ctx context.Context, activeOnly bool) ([]core.Budget, error) {
	rows, err := r.queries.ListBudgets(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}

	budgets := make([]core.Budget, 0, len(rows))
	for _, row := range rows {
		b, err := budgetFromRow(row)
		if err != nil {
			return nil, fmt.Errorf("decode budget %s: %w", row.ID, err)
		}
		budgets = append(budgets, b)
	}
	return budgets, nil
}

func (r *SQLiteRepository) GetBudget(ctx context.Context, id uuid.UUID) (core.Budget, error) {
	row, err := r.queries.GetBudget(ctx, id.String())
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget %s: %w", id, err)
	}
	return budgetFromRow(row)
}

// UpdateBudgetSpent overwrites the cached spent figure for a budget. The
// value is derived from the ledger, so a lost update is repaired on the next
// refresh.
func (r *SQLiteRepository) UpdateBudgetSpent(ctx context.Context, id uuid.UUID, spent core.Money) error {
	if err := r.queries.UpdateBudgetSpent(ctx, id.String(), spent.Cents); err != nil {
		return fmt.Errorf("update budget spent: %w", err)
	}

	slog.InfoContext(ctx, "Budget spent cache refreshed",
		"budget_id", id,
		"spent_cents", spent.Cents)

	return nil
}

func (r *SQLiteRepository) CreateGoal(ctx context.Context, g core.Goal) error {
	if err := r.queries.CreateGoal(ctx, CreateGoalParams{
		ID:           g.ID.String(),
		Title:        g.Title,
		TargetCents:  g.TargetAmount.Cents,
		CurrentCents: g.CurrentAmount.Cents,
		Deadline:     g.Deadline.String(),
		Category:     string(g.Category),
		Status:       string(g.Status),
	}); err != nil {
		return fmt.Errorf("create goal: %w", err)
	}

	for i, m := range g.Milestones {
		if err := r.queries.CreateMilestone(ctx, MilestoneRow{
			GoalID:      g.ID.String(),
			Position:    int64(i),
			Title:       m.Title,
			AmountCents: m.Amount.Cents,
			Completed:   m.Completed,
		}); err != nil {
			return fmt.Errorf("create goal milestone: %w", err)
		}
	}

	slog.InfoContext(ctx, "Goal saved",
		"id", g.ID,
		"title", g.Title,
		"target_cents", g.TargetAmount.Cents,
		"deadline", g.Deadline.String())

	return nil
}

func (r *SQLiteRepository) ListGoals(ctx context.Context) ([]core.Goal, error) {
	rows, err := r.queries.ListGoals(ctx)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}

	goals := make([]core.Goal, 0, len(rows))
	for _, row := range rows {
		g, err := goalFromRow(row)
		if err != nil {
			return nil, fmt.Errorf("decode goal %s: %w", row.ID, err)
		}

		milestones, err := r.queries.ListMilestonesByGoal(ctx, row.ID)
		if err != nil {
			return nil, fmt.Errorf("list goal milestones: %w", err)
		}
		for _, m := range milestones {
			g.Milestones = append(g.Milestones, core.Milestone{
				Title:     m.Title,
				Amount:    core.Money{Cents: m.AmountCents},
				Completed: m.Completed,
			})
		}

		goals = append(goals, g)
	}
	return goals, nil
}

func (r *SQLiteRepository) UpdateGoalProgress(ctx context.Context, id uuid.UUID, current core.Money) error {
	if err := r.queries.UpdateGoalProgress(ctx, id.String(), current.Cents); err != nil {
		return fmt.Errorf("update goal progress: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) UpdateGoalStatus(ctx context.Context, id uuid.UUID, status core.GoalStatus) error {
	if err := r.queries.UpdateGoalStatus(ctx, id.String(), string(status)); err != nil {
		return fmt.Errorf("update goal status: %w", err)
	}

	slog.InfoContext(ctx, "Goal status updated", "goal_id", id, "status", status)
	return nil
}

func transactionFromRow(row TransactionRow) (core.Transaction, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse id: %w", err)
	}
	date, err := parseDate(row.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	return core.Transaction{
		ID:       id,
		Date:     date,
		Amount:   core.Money{Cents: row.AmountCents},
		Type:     core.TransactionType(row.Type),
		Category: row.Category,
		Note:     row.Note,
	}, nil
}

func budgetFromRow(row BudgetRow) (core.Budget, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return core.Budget{}, fmt.Errorf("parse id: %w", err)
	}
	return core.Budget{
		ID:             id,
		Category:       row.Category,
		Limit:          core.Money{Cents: row.LimitCents},
		Period:         core.BudgetPeriod(row.Period),
		AlertThreshold: row.AlertThreshold,
		Active:         row.Active,
		CurrentSpent:   core.Money{Cents: row.CurrentSpentCents},
	}, nil
}

func goalFromRow(row GoalRow) (core.Goal, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return core.Goal{}, fmt.Errorf("parse id: %w", err)
	}
	deadline, err := parseDate(row.Deadline)
	if err != nil {
		return core.Goal{}, err
	}
	return core.Goal{
		ID:            id,
		Title:         row.Title,
		TargetAmount:  core.Money{Cents: row.TargetCents},
		CurrentAmount: core.Money{Cents: row.CurrentCents},
		Deadline:      deadline,
		Category:      core.GoalCategory(row.Category),
		Status:        core.GoalStatus(row.Status),
		CreatedAt:     row.CreatedAt,
	}, nil
}

func parseDate(s string) (core.Date, error) {
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		return core.Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return core.DateOf(t), nil
}
