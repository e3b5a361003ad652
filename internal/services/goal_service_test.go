package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"finpulse/internal/core"
)

func TestGoalServiceCreateDefaults(t *testing.T) {
	store := newStubStore()
	svc := NewGoalService(store)

	created, err := svc.Create(context.Background(), core.Goal{
		Title:        "Emergency fund",
		TargetAmount: core.Money{Cents: 600000},
		Deadline:     core.NewDate(2026, 6, 1),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Error("expected an assigned id")
	}
	if created.Status != core.GoalActive {
		t.Errorf("status = %s, want active", created.Status)
	}
	if created.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}

	if _, err := svc.Create(context.Background(), core.Goal{TargetAmount: core.Money{Cents: 1}}); err == nil {
		t.Error("expected validation error for empty title")
	}
}

func TestGoalServiceProgressCompletesReachedGoals(t *testing.T) {
	store := newStubStore()
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	reached := core.Goal{
		ID:            uuid.New(),
		Title:         "Laptop",
		TargetAmount:  core.Money{Cents: 150000},
		CurrentAmount: core.Money{Cents: 150000},
		Deadline:      core.NewDate(2025, 12, 1),
		Status:        core.GoalActive,
		CreatedAt:     now.AddDate(0, -3, 0),
	}
	partial := core.Goal{
		ID:            uuid.New(),
		Title:         "Vacation",
		TargetAmount:  core.Money{Cents: 200000},
		CurrentAmount: core.Money{Cents: 50000},
		Deadline:      core.NewDate(2025, 12, 1),
		Status:        core.GoalActive,
		CreatedAt:     now.AddDate(0, -2, 0),
	}
	store.goals = []core.Goal{reached, partial}

	svc := NewGoalService(store)
	reports, err := svc.Progress(context.Background(), now)
	if err != nil {
		t.Fatalf("Progress: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(reports))
	}

	if reports[0].Goal.Status != core.GoalCompleted {
		t.Errorf("reached goal status = %s, want completed", reports[0].Goal.Status)
	}
	if reports[1].Goal.Status != core.GoalActive {
		t.Errorf("partial goal status = %s, want active", reports[1].Goal.Status)
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	if store.status[reached.ID] != core.GoalCompleted {
		t.Error("completion was not persisted")
	}
	if _, ok := store.status[partial.ID]; ok {
		t.Error("partial goal status should not be written")
	}
}

func TestGoalServiceCompletionNeverRegresses(t *testing.T) {
	store := newStubStore()
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	// Completed earlier; the amount has since been withdrawn below target.
	done := core.Goal{
		ID:            uuid.New(),
		Title:         "Car",
		TargetAmount:  core.Money{Cents: 100000},
		CurrentAmount: core.Money{Cents: 40000},
		Deadline:      core.NewDate(2025, 12, 1),
		Status:        core.GoalCompleted,
		CreatedAt:     now.AddDate(-1, 0, 0),
	}
	paused := core.Goal{
		ID:            uuid.New(),
		Title:         "Boat",
		TargetAmount:  core.Money{Cents: 100000},
		CurrentAmount: core.Money{Cents: 100000},
		Deadline:      core.NewDate(2025, 12, 1),
		Status:        core.GoalPaused,
		CreatedAt:     now.AddDate(-1, 0, 0),
	}
	store.goals = []core.Goal{done, paused}

	svc := NewGoalService(store)
	reports, err := svc.Progress(context.Background(), now)
	if err != nil {
		t.Fatalf("Progress: %v", err)
	}

	if reports[0].Goal.Status != core.GoalCompleted {
		t.Errorf("completed goal regressed to %s", reports[0].Goal.Status)
	}
	if reports[1].Goal.Status != core.GoalPaused {
		t.Errorf("paused goal changed to %s", reports[1].Goal.Status)
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	if len(store.status) != 0 {
		t.Errorf("no status writes expected, got %v", store.status)
	}
}
