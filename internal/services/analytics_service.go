package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"finpulse/internal/core"
	"finpulse/internal/metrics"
)

// LedgerStore is the storage surface analytics needs.
type LedgerStore interface {
	CreateTransaction(ctx context.Context, t core.Transaction) error
	ListTransactions(ctx context.Context, from, to *core.Date) ([]core.Transaction, error)
}

// AnalyticsService answers the read-side analytics queries. Each call takes
// one ledger snapshot and hands it to the evaluators; nothing here re-fetches
// mid-computation.
type AnalyticsService struct {
	store LedgerStore
}

func NewAnalyticsService(store LedgerStore) *AnalyticsService {
	return &AnalyticsService{store: store}
}

// RecordTransaction validates and appends one ledger entry.
func (s *AnalyticsService) RecordTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("validate transaction: %w", err)
	}
	if err := s.store.CreateTransaction(ctx, t); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

// LedgerSnapshot exposes one raw range read, used by callers that hand the
// ledger to external collaborators.
func (s *AnalyticsService) LedgerSnapshot(ctx context.Context, from, to *core.Date) ([]core.Transaction, error) {
	txns, err := s.store.ListTransactions(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txns, nil
}

func (s *AnalyticsService) CategoryAnalyses(ctx context.Context, window *metrics.DateRange) ([]core.CategoryAnalysis, error) {
	txns, err := s.fetch(ctx, window)
	if err != nil {
		return nil, err
	}
	return metrics.CategoryAnalyses(txns, window), nil
}

func (s *AnalyticsService) TimeSeries(ctx context.Context, bucket core.TimeBucket, window *metrics.DateRange) ([]core.TimeSeriesPoint, error) {
	txns, err := s.fetch(ctx, window)
	if err != nil {
		return nil, err
	}
	return metrics.TimeSeries(txns, bucket, window), nil
}

func (s *AnalyticsService) Insights(ctx context.Context, now time.Time) (core.FinancialInsights, error) {
	// Insights compare the current month to the previous one; fetch both in
	// one range read.
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	from := core.DateOf(monthStart.AddDate(0, -1, 0))
	to := core.DateOf(now)

	txns, err := s.store.ListTransactions(ctx, &from, &to)
	if err != nil {
		return core.FinancialInsights{}, fmt.Errorf("list transactions: %w", err)
	}
	return metrics.Insights(txns, now), nil
}

func (s *AnalyticsService) fetch(ctx context.Context, window *metrics.DateRange) ([]core.Transaction, error) {
	// A zero From or To leaves that end unbounded; the repository only sees
	// the bounds that are actually set.
	var from, to *core.Date
	if window != nil {
		if !window.From.IsZero() {
			from = &window.From
		}
		if !window.To.IsZero() {
			to = &window.To
		}
	}
	txns, err := s.store.ListTransactions(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txns, nil
}
