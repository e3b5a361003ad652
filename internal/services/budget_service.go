package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"finpulse/internal/amqp"
	"finpulse/internal/core"
	"finpulse/internal/metrics"
)

// BudgetStore is the storage surface budget evaluation needs.
type BudgetStore interface {
	CreateBudget(ctx context.Context, b core.Budget) error
	ListBudgets(ctx context.Context, activeOnly bool) ([]core.Budget, error)
	ListTransactions(ctx context.Context, from, to *core.Date) ([]core.Transaction, error)
	UpdateBudgetSpent(ctx context.Context, id uuid.UUID, spent core.Money) error
}

// SpentPublisher hands recomputed spent figures to the write-back pipeline.
type SpentPublisher interface {
	PublishBudgetSpent(ctx context.Context, msg *amqp.BudgetSpentMessage) error
}

// BudgetService orchestrates budget evaluation across storage and AMQP.
type BudgetService struct {
	store     BudgetStore
	publisher SpentPublisher
}

func NewBudgetService(store BudgetStore, publisher SpentPublisher) *BudgetService {
	return &BudgetService{
		store:     store,
		publisher: publisher,
	}
}

func (s *BudgetService) Create(ctx context.Context, b core.Budget) (core.Budget, error) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if err := b.Validate(); err != nil {
		return core.Budget{}, fmt.Errorf("validate budget: %w", err)
	}
	if err := s.store.CreateBudget(ctx, b); err != nil {
		return core.Budget{}, err
	}
	return b, nil
}

// Active lists the budgets currently under evaluation.
func (s *BudgetService) Active(ctx context.Context) ([]core.Budget, error) {
	budgets, err := s.store.ListBudgets(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	return budgets, nil
}

// Statuses evaluates every active budget against a single transaction
// snapshot taken for the evaluation instant. Budgets and the snapshot are
// fetched in parallel; the snapshot covers the widest period start any
// budget can have at now.
func (s *BudgetService) Statuses(ctx context.Context, now time.Time) ([]core.BudgetStatus, error) {
	var (
		budgets []core.Budget
		txns    []core.Transaction
	)

	from := earliestPeriodStart(now)
	to := core.DateOf(now)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		budgets, err = s.store.ListBudgets(gctx, true)
		return err
	})
	g.Go(func() error {
		var err error
		txns, err = s.store.ListTransactions(gctx, &from, &to)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetch budget snapshot: %w", err)
	}

	statuses := make([]core.BudgetStatus, 0, len(budgets))
	var drifts []*core.SpentDrift
	for _, budget := range budgets {
		status, drift := metrics.EvaluateBudget(budget, txns, now)
		statuses = append(statuses, status)
		if drift != nil {
			drifts = append(drifts, drift)
		}
	}

	if len(drifts) > 0 {
		// Cache repair is fire-and-forget; the caller's response never
		// waits on it and never fails because of it.
		go s.applyDrifts(context.WithoutCancel(ctx), drifts)
	}

	return statuses, nil
}

func (s *BudgetService) applyDrifts(ctx context.Context, drifts []*core.SpentDrift) {
	for _, drift := range drifts {
		if s.publisher != nil {
			msg := amqp.NewBudgetSpentMessage(drift.BudgetID, drift.Spent.Cents)
			if err := s.publisher.PublishBudgetSpent(ctx, msg); err != nil {
				slog.ErrorContext(ctx, "Failed to publish spent refresh",
					"budget_id", drift.BudgetID, "error", err)
			}
			continue
		}

		if err := s.store.UpdateBudgetSpent(ctx, drift.BudgetID, drift.Spent); err != nil {
			slog.ErrorContext(ctx, "Failed to write spent refresh",
				"budget_id", drift.BudgetID, "error", err)
		}
	}
}

// earliestPeriodStart returns the earliest calendar day any budget period
// can start on at now. The weekly start can fall in the previous year, so
// it is compared against the yearly start explicitly.
func earliestPeriodStart(now time.Time) core.Date {
	yearly := metrics.PeriodStart(core.Yearly, now)
	weekly := metrics.PeriodStart(core.Weekly, now)
	if weekly.Before(yearly) {
		return weekly
	}
	return yearly
}
