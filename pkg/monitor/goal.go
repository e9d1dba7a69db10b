package monitor

import (
	"context"
	"log/slog"
	"sync"

	"github.com/finwatch-app/finwatch/pkg/dispatch"
	"github.com/finwatch-app/finwatch/pkg/model"
	"github.com/finwatch-app/finwatch/pkg/storage"
)

// minMotivationDays is the staleness floor below which no motivation
// reminder is sent.
const minMotivationDays = 7

// GoalTracker watches savings goals and notifies on milestone crossings.
// A (goal, milestone) pair notifies at most once for the lifetime of the
// tracker; the notified set only grows, except through an explicit Reset.
type GoalTracker struct {
	data     storage.DataProvider
	settings storage.SettingsProvider
	gateway  *dispatch.Gateway
	logger   *slog.Logger

	mu       sync.Mutex
	notified map[string]map[int]bool
}

// NewGoalTracker creates a goal tracker with empty milestone state.
func NewGoalTracker(data storage.DataProvider, settings storage.SettingsProvider, gateway *dispatch.Gateway, logger *slog.Logger) *GoalTracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &GoalTracker{
		data:     data,
		settings: settings,
		gateway:  gateway,
		logger:   logger,
		notified: make(map[string]map[int]bool),
	}
}

// TrackAll evaluates every savings goal for the user, notifying on each
// newly reached milestone, and returns the derived progress list. The whole
// check is skipped when the master switch or the saving-goal feature flag
// is off.
func (t *GoalTracker) TrackAll(ctx context.Context, userID string) []model.SavingGoalProgress {
	settings := t.loadSettings(ctx, userID)
	if settings == nil || !settings.NotificationEnabled || !settings.SavingGoalAlerts {
		return nil
	}

	goals, err := t.data.GetSavingGoals(ctx, userID)
	if err != nil {
		t.logger.Error("load saving goals", "user", userID, "error", err)
		return nil
	}

	progress := make([]model.SavingGoalProgress, 0, len(goals))
	for _, g := range goals {
		p := t.observe(g)
		if p.ShouldNotify {
			t.celebrate(ctx, userID, g, p.MilestoneReached)
		}
		progress = append(progress, p)
	}
	return progress
}

// UpdateProgress writes a goal's new saved amount through the data provider,
// recomputes its progress and notifies if a new milestone was reached.
// It returns nil when the goal does not exist or the write fails.
func (t *GoalTracker) UpdateProgress(ctx context.Context, userID, goalID string, newAmount float64) *model.SavingGoalProgress {
	settings := t.loadSettings(ctx, userID)
	if settings == nil {
		return nil
	}

	goal, err := t.data.UpdateSavingGoalAmount(ctx, goalID, newAmount)
	if err != nil {
		t.logger.Error("update saving goal", "goal", goalID, "error", err)
		return nil
	}

	if !settings.NotificationEnabled || !settings.SavingGoalAlerts {
		pct := model.Percentage(goal.CurrentAmount, goal.TargetAmount)
		return &model.SavingGoalProgress{
			ID:                 goal.ID,
			Name:               goal.Name,
			TargetAmount:       goal.TargetAmount,
			CurrentAmount:      goal.CurrentAmount,
			ProgressPercentage: pct,
			MilestoneReached:   model.MilestoneFor(pct),
		}
	}

	p := t.observe(*goal)
	if p.ShouldNotify {
		t.celebrate(ctx, userID, *goal, p.MilestoneReached)
	}
	return &p
}

// SendCompletionCelebration sends the goal-completed notification directly.
func (t *GoalTracker) SendCompletionCelebration(ctx context.Context, userID, name string, target float64) bool {
	settings := t.loadSettings(ctx, userID)
	if settings == nil || !settings.SavingGoalAlerts {
		return false
	}
	return t.gateway.SendGoalCompletion(ctx, userID, name, target)
}

// SendMotivationReminder nudges the user about a goal with no progress for
// daysStale days. Below seven days nothing is sent and false is returned.
func (t *GoalTracker) SendMotivationReminder(ctx context.Context, userID, name string, daysStale int) bool {
	if daysStale < minMotivationDays {
		return false
	}

	settings := t.loadSettings(ctx, userID)
	if settings == nil || !settings.SavingGoalAlerts {
		return false
	}
	return t.gateway.SendGoalMotivation(ctx, userID, name, daysStale)
}

// ProgressSummary aggregates the user's goals. It returns nil on provider
// failure.
func (t *GoalTracker) ProgressSummary(ctx context.Context, userID string) *model.GoalSummary {
	goals, err := t.data.GetSavingGoals(ctx, userID)
	if err != nil {
		t.logger.Error("load saving goals", "user", userID, "error", err)
		return nil
	}

	summary := &model.GoalSummary{TotalGoals: len(goals)}
	for _, g := range goals {
		summary.TotalTarget += g.TargetAmount
		summary.TotalCurrent += g.CurrentAmount
		if g.TargetAmount > 0 && g.CurrentAmount >= g.TargetAmount {
			summary.CompletedGoals++
		}
	}
	summary.OverallProgressPct = model.Percentage(summary.TotalCurrent, summary.TotalTarget)
	return summary
}

// Reset clears the notified-milestone set for a goal. This is the only way
// milestone state shrinks.
func (t *GoalTracker) Reset(goalID string) {
	t.mu.Lock()
	delete(t.notified, goalID)
	t.mu.Unlock()
}

func (t *GoalTracker) loadSettings(ctx context.Context, userID string) *model.UserSettings {
	settings, err := t.settings.GetUserSettings(ctx, userID)
	if err != nil {
		t.logger.Error("load settings", "user", userID, "error", err)
		return nil
	}
	if settings == nil {
		settings = model.DefaultSettings(userID)
	}
	return settings
}

// observe derives a goal's progress and, when a not-yet-notified milestone
// is reached, marks it notified and flags ShouldNotify. Marking happens on
// observation, so a later manual decrease and re-crossing never re-notifies.
func (t *GoalTracker) observe(g model.SavingGoal) model.SavingGoalProgress {
	pct := model.Percentage(g.CurrentAmount, g.TargetAmount)
	milestone := model.MilestoneFor(pct)

	shouldNotify := false
	if milestone > 0 {
		t.mu.Lock()
		seen := t.notified[g.ID]
		if seen == nil {
			seen = make(map[int]bool)
			t.notified[g.ID] = seen
		}
		if !seen[milestone] {
			shouldNotify = true
		}
		// Mark every band at or below the one reached, so a manual decrease
		// and re-crossing of a lower band never re-notifies.
		for _, band := range model.Milestones {
			if band <= milestone {
				seen[band] = true
			}
		}
		t.mu.Unlock()
	}

	return model.SavingGoalProgress{
		ID:                 g.ID,
		Name:               g.Name,
		TargetAmount:       g.TargetAmount,
		CurrentAmount:      g.CurrentAmount,
		ProgressPercentage: pct,
		MilestoneReached:   milestone,
		ShouldNotify:       shouldNotify,
	}
}

func (t *GoalTracker) celebrate(ctx context.Context, userID string, g model.SavingGoal, milestone int) {
	if milestone >= 100 {
		t.gateway.SendGoalCompletion(ctx, userID, g.Name, g.TargetAmount)
		return
	}
	t.gateway.SendSavingGoalProgress(ctx, userID, g.Name, milestone)
}
