package metrics

import (
	"math"
	"time"

	"finpulse/internal/core"
)

// onTrackTolerance is the fraction of the straight-line expected progress a
// goal may lag behind and still count as on track.
const onTrackTolerance = 0.8

// EvaluateGoal computes percent-complete, run-rate targets and a pace-based
// completion projection for one goal. Identical inputs with the same now
// always yield identical output.
//
// The expected-progress benchmark measures against a fixed 365-day horizon
// regardless of the goal's own deadline distance. That is a deliberately
// coarse heuristic preserved for compatibility, not calendar math.
func EvaluateGoal(goal core.Goal, now time.Time) core.GoalProgress {
	progress := core.GoalProgress{Goal: goal}

	if goal.TargetAmount.Cents > 0 {
		pct := goal.CurrentAmount.Units() / goal.TargetAmount.Units() * 100
		progress.ProgressPercentage = math.Min(pct, 100)
		if remaining := goal.TargetAmount.Sub(goal.CurrentAmount); remaining.Cents > 0 {
			progress.RemainingAmount = remaining
		}
	}

	// May be negative when the deadline has passed; surfaced as-is to signal
	// an overdue goal.
	daysRemaining := int(math.Ceil(goal.Deadline.Sub(now).Hours() / 24))
	progress.DaysRemaining = daysRemaining

	monthsRemaining := math.Max(float64(daysRemaining)/30, 1)
	progress.MonthlyTargetAmount = core.CentsOf(progress.RemainingAmount.Units() / monthsRemaining)

	expectedProgress := math.Max(0, 100-(float64(daysRemaining)/365)*100)
	progress.OnTrack = progress.ProgressPercentage >= expectedProgress*onTrackTolerance

	if goal.CurrentAmount.Cents > 0 && progress.RemainingAmount.Cents > 0 {
		monthsElapsed := math.Max(now.Sub(goal.CreatedAt).Hours()/24/30, 1)
		pace := goal.CurrentAmount.Units() / monthsElapsed
		monthsToComplete := progress.RemainingAmount.Units() / pace
		projected := now.AddDate(0, 0, int(math.Ceil(monthsToComplete*30)))
		progress.ProjectedCompletion = &projected
	}

	return progress
}
