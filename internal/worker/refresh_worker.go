package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"finpulse/internal/amqp"
	"finpulse/internal/core"
	"finpulse/internal/metrics"
)

// Store is the storage surface the refresh worker needs.
type Store interface {
	ListBudgets(ctx context.Context, activeOnly bool) ([]core.Budget, error)
	ListTransactions(ctx context.Context, from, to *core.Date) ([]core.Transaction, error)
	UpdateBudgetSpent(ctx context.Context, id uuid.UUID, spent core.Money) error
}

// RefreshWorker keeps the budgets' cached spent figures in line with the
// ledger. Messages carry individual recomputed values; the periodic sweep is
// a backup mechanism in case AMQP messages are lost.
type RefreshWorker struct {
	store Store
}

func NewRefreshWorker(store Store) *RefreshWorker {
	return &RefreshWorker{store: store}
}

// HandleSpentMessage applies a single spent-cache refresh message from AMQP
func (w *RefreshWorker) HandleSpentMessage(ctx context.Context, msg *amqp.BudgetSpentMessage) error {
	slog.InfoContext(ctx, "Processing spent refresh message",
		"budget_id", msg.BudgetID,
		"spent_cents", msg.SpentCents)

	if err := w.store.UpdateBudgetSpent(ctx, msg.BudgetID, core.Money{Cents: msg.SpentCents}); err != nil {
		return fmt.Errorf("apply spent message: %w", err)
	}
	return nil
}

// RefreshAll recomputes the current-period spend for every active budget
// from the ledger and overwrites the cached value where it drifted.
func (w *RefreshWorker) RefreshAll(ctx context.Context, now time.Time) error {
	budgets, err := w.store.ListBudgets(ctx, true)
	if err != nil {
		return fmt.Errorf("list budgets: %w", err)
	}
	if len(budgets) == 0 {
		return nil
	}

	txns, err := w.store.ListTransactions(ctx, nil, nil)
	if err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}

	refreshed := 0
	for _, budget := range budgets {
		_, drift := metrics.EvaluateBudget(budget, txns, now)
		if drift == nil {
			continue
		}
		if err := w.store.UpdateBudgetSpent(ctx, drift.BudgetID, drift.Spent); err != nil {
			slog.ErrorContext(ctx, "Failed to refresh budget spent",
				"budget_id", drift.BudgetID, "error", err)
			continue
		}
		refreshed++
	}

	slog.InfoContext(ctx, "Budget spent sweep completed",
		"budgets", len(budgets),
		"refreshed", refreshed)

	return nil
}

// StartupCheck runs one full sweep at worker startup. This recovers from
// messages missed during worker downtime.
func (w *RefreshWorker) StartupCheck(ctx context.Context) error {
	slog.InfoContext(ctx, "Running startup spent sweep")
	return w.RefreshAll(ctx, time.Now())
}
