package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"finpulse/internal/core"
	"finpulse/internal/metrics"
)

// GoalStore is the storage surface goal evaluation needs.
type GoalStore interface {
	CreateGoal(ctx context.Context, g core.Goal) error
	ListGoals(ctx context.Context) ([]core.Goal, error)
	UpdateGoalStatus(ctx context.Context, id uuid.UUID, status core.GoalStatus) error
}

type GoalService struct {
	store GoalStore
}

func NewGoalService(store GoalStore) *GoalService {
	return &GoalService{store: store}
}

func (s *GoalService) Create(ctx context.Context, g core.Goal) (core.Goal, error) {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	if g.Status == "" {
		g.Status = core.GoalActive
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}
	if err := g.Validate(); err != nil {
		return core.Goal{}, fmt.Errorf("validate goal: %w", err)
	}
	if err := s.store.CreateGoal(ctx, g); err != nil {
		return core.Goal{}, err
	}
	return g, nil
}

// All lists every goal regardless of status.
func (s *GoalService) All(ctx context.Context) ([]core.Goal, error) {
	goals, err := s.store.ListGoals(ctx)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	return goals, nil
}

// Progress evaluates every goal at now. Before evaluation it runs the
// completion check so the reported status is already settled.
func (s *GoalService) Progress(ctx context.Context, now time.Time) ([]core.GoalProgress, error) {
	goals, err := s.store.ListGoals(ctx)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}

	reports := make([]core.GoalProgress, 0, len(goals))
	for _, goal := range goals {
		goal = s.completeCheck(ctx, goal)
		reports = append(reports, metrics.EvaluateGoal(goal, now))
	}
	return reports, nil
}

// completeCheck flips an active goal to completed once the saved amount
// reaches the target. Completion never regresses, even if the amount later
// drops below the target.
func (s *GoalService) completeCheck(ctx context.Context, goal core.Goal) core.Goal {
	if goal.Status != core.GoalActive {
		return goal
	}
	if goal.CurrentAmount.Cents < goal.TargetAmount.Cents {
		return goal
	}

	goal.Status = core.GoalCompleted
	if err := s.store.UpdateGoalStatus(ctx, goal.ID, core.GoalCompleted); err != nil {
		slog.ErrorContext(ctx, "Failed to persist goal completion",
			"goal_id", goal.ID, "error", err)
	}
	return goal
}
