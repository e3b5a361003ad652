package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"finpulse/internal/amqp"
	"finpulse/internal/core"
)

type stubStore struct {
	mu       sync.Mutex
	budgets  []core.Budget
	goals    []core.Goal
	txns     []core.Transaction
	spent    map[uuid.UUID]int64
	status   map[uuid.UUID]core.GoalStatus
	listFrom *core.Date
	listTo   *core.Date
	wrote    chan struct{}
}

func newStubStore() *stubStore {
	return &stubStore{
		spent:  make(map[uuid.UUID]int64),
		status: make(map[uuid.UUID]core.GoalStatus),
		wrote:  make(chan struct{}, 16),
	}
}

func (s *stubStore) CreateBudget(_ context.Context, b core.Budget) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budgets = append(s.budgets, b)
	return nil
}

func (s *stubStore) ListBudgets(_ context.Context, activeOnly bool) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !activeOnly {
		return s.budgets, nil
	}
	var out []core.Budget
	for _, b := range s.budgets {
		if b.Active {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *stubStore) ListTransactions(_ context.Context, from, to *core.Date) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listFrom, s.listTo = from, to
	return s.txns, nil
}

func (s *stubStore) CreateTransaction(_ context.Context, t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txns = append(s.txns, t)
	return nil
}

func (s *stubStore) UpdateBudgetSpent(_ context.Context, id uuid.UUID, spent core.Money) error {
	s.mu.Lock()
	s.spent[id] = spent.Cents
	s.mu.Unlock()
	s.wrote <- struct{}{}
	return nil
}

func (s *stubStore) CreateGoal(_ context.Context, g core.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.goals = append(s.goals, g)
	return nil
}

func (s *stubStore) ListGoals(_ context.Context) ([]core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.goals, nil
}

func (s *stubStore) UpdateGoalStatus(_ context.Context, id uuid.UUID, status core.GoalStatus) error {
	s.mu.Lock()
	s.status[id] = status
	s.mu.Unlock()
	s.wrote <- struct{}{}
	return nil
}

type stubPublisher struct {
	mu        sync.Mutex
	published []*amqp.BudgetSpentMessage
	err       error
	got       chan struct{}
}

func newStubPublisher() *stubPublisher {
	return &stubPublisher{got: make(chan struct{}, 16)}
}

func (p *stubPublisher) PublishBudgetSpent(_ context.Context, msg *amqp.BudgetSpentMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.got <- struct{}{}
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, msg)
	return nil
}

func waitSignal(t *testing.T, ch chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for async write")
	}
}

func TestBudgetServiceStatusesPublishesDrift(t *testing.T) {
	store := newStubStore()
	pub := newStubPublisher()
	now := time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)

	budget := core.Budget{
		ID:       uuid.New(),
		Category: "Groceries",
		Limit:    core.Money{Cents: 100000},
		Period:   core.Monthly,
		Active:   true,
	}
	store.budgets = []core.Budget{budget}
	store.txns = []core.Transaction{
		{ID: uuid.New(), Date: core.NewDate(2025, 6, 5), Amount: core.Money{Cents: 8500}, Type: core.Expense, Category: "Groceries"},
	}

	svc := NewBudgetService(store, pub)
	statuses, err := svc.Statuses(context.Background(), now)
	if err != nil {
		t.Fatalf("Statuses: %v", err)
	}
	if len(statuses) != 1 {
		t.Fatalf("expected 1 status, got %d", len(statuses))
	}
	if statuses[0].CurrentSpent.Cents != 8500 {
		t.Errorf("current spent = %d, want 8500", statuses[0].CurrentSpent.Cents)
	}

	waitSignal(t, pub.got)
	pub.mu.Lock()
	defer pub.mu.Unlock()
	if len(pub.published) != 1 {
		t.Fatalf("expected 1 published drift, got %d", len(pub.published))
	}
	if pub.published[0].BudgetID != budget.ID || pub.published[0].SpentCents != 8500 {
		t.Errorf("published drift = %+v", pub.published[0])
	}
}

func TestBudgetServiceStatusesDirectWriteWithoutPublisher(t *testing.T) {
	store := newStubStore()
	now := time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)

	budget := core.Budget{
		ID:       uuid.New(),
		Category: "Dining",
		Limit:    core.Money{Cents: 50000},
		Period:   core.Monthly,
		Active:   true,
	}
	store.budgets = []core.Budget{budget}
	store.txns = []core.Transaction{
		{ID: uuid.New(), Date: core.NewDate(2025, 6, 10), Amount: core.Money{Cents: 2000}, Type: core.Expense, Category: "Dining"},
	}

	svc := NewBudgetService(store, nil)
	if _, err := svc.Statuses(context.Background(), now); err != nil {
		t.Fatalf("Statuses: %v", err)
	}

	waitSignal(t, store.wrote)
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.spent[budget.ID] != 2000 {
		t.Errorf("stored spent = %d, want 2000", store.spent[budget.ID])
	}
}

func TestBudgetServiceStatusesSurvivesPublishFailure(t *testing.T) {
	store := newStubStore()
	pub := newStubPublisher()
	pub.err = errors.New("broker down")
	now := time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)

	store.budgets = []core.Budget{{
		ID:       uuid.New(),
		Category: "Misc",
		Limit:    core.Money{Cents: 1000},
		Period:   core.Weekly,
		Active:   true,
	}}
	store.txns = []core.Transaction{
		{ID: uuid.New(), Date: core.DateOf(now), Amount: core.Money{Cents: 500}, Type: core.Expense, Category: "Misc"},
	}

	svc := NewBudgetService(store, pub)
	statuses, err := svc.Statuses(context.Background(), now)
	if err != nil {
		t.Fatalf("Statuses should not fail on publish error: %v", err)
	}
	if len(statuses) != 1 {
		t.Fatalf("expected 1 status, got %d", len(statuses))
	}
	waitSignal(t, pub.got)
}

func TestBudgetServiceCreate(t *testing.T) {
	store := newStubStore()
	svc := NewBudgetService(store, nil)

	created, err := svc.Create(context.Background(), core.Budget{
		Category:       "Groceries",
		Limit:          core.Money{Cents: 100000},
		Period:         core.Monthly,
		AlertThreshold: 80,
		Active:         true,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Error("expected an assigned id")
	}

	if _, err := svc.Create(context.Background(), core.Budget{Category: "X", Period: "fortnightly"}); err == nil {
		t.Error("expected validation error for unknown period")
	}
}

func TestEarliestPeriodStart(t *testing.T) {
	// Jan 2 2025 is a Thursday; the week began Sunday Dec 29 2024.
	now := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	if got := earliestPeriodStart(now); got.String() != "2024-12-29" {
		t.Errorf("earliestPeriodStart = %s, want 2024-12-29", got)
	}

	mid := time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)
	if got := earliestPeriodStart(mid); got.String() != "2025-01-01" {
		t.Errorf("earliestPeriodStart = %s, want 2025-01-01", got)
	}
}
