// Package monitor implements the proactive monitors that periodically
// evaluate budgets, savings goals and transaction-recording habits, decide
// whether the user should be notified, and hand events to the dispatch
// gateway. Each monitor owns its own dedup/cooldown state; nothing here is
// persisted across process restarts.
package monitor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/finwatch-app/finwatch/pkg/dispatch"
	"github.com/finwatch-app/finwatch/pkg/model"
	"github.com/finwatch-app/finwatch/pkg/storage"
)

// DefaultAlertCooldown is the minimum time between alerts for the same budget.
const DefaultAlertCooldown = 24 * time.Hour

// BudgetMonitor checks category budgets against the user's alert threshold
// and dispatches severity-graded alerts with a per-budget cooldown.
type BudgetMonitor struct {
	data     storage.DataProvider
	settings storage.SettingsProvider
	gateway  *dispatch.Gateway
	cooldown time.Duration
	logger   *slog.Logger
	now      func() time.Time

	mu        sync.Mutex
	lastAlert map[string]time.Time
}

// NewBudgetMonitor creates a budget monitor with the default 24h cooldown.
func NewBudgetMonitor(data storage.DataProvider, settings storage.SettingsProvider, gateway *dispatch.Gateway, logger *slog.Logger) *BudgetMonitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &BudgetMonitor{
		data:      data,
		settings:  settings,
		gateway:   gateway,
		cooldown:  DefaultAlertCooldown,
		logger:    logger,
		now:       time.Now,
		lastAlert: make(map[string]time.Time),
	}
}

// SetCooldown overrides the per-budget alert cooldown.
func (m *BudgetMonitor) SetCooldown(d time.Duration) {
	m.mu.Lock()
	m.cooldown = d
	m.mu.Unlock()
}

// CheckThresholds evaluates every budget for the user and dispatches an
// alert for each one over threshold whose cooldown has elapsed. It returns
// the derived statuses. When the user's master notification switch is off
// the whole check is skipped and the result is empty.
func (m *BudgetMonitor) CheckThresholds(ctx context.Context, userID string) []model.BudgetStatus {
	settings := m.loadSettings(ctx, userID)
	if settings == nil || !settings.NotificationEnabled {
		return nil
	}

	budgets, err := m.data.GetBudgets(ctx, userID)
	if err != nil {
		m.logger.Error("load budgets", "user", userID, "error", err)
		return nil
	}

	statuses := make([]model.BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		status, err := m.evaluate(ctx, userID, b.ID, b.CategoryID, b.CategoryName, b.Amount, settings.BudgetAlertThreshold)
		if err != nil {
			m.logger.Error("check budget", "budget", b.ID, "category", b.CategoryName, "error", err)
			continue
		}

		if status.ShouldAlert {
			m.alert(ctx, userID, *status)
		}
		statuses = append(statuses, *status)
	}
	return statuses
}

// CheckBudget evaluates a single category against an explicit budget amount,
// dispatching an alert when warranted. It returns nil on provider failure.
// The cooldown for ad-hoc checks is keyed by category id.
func (m *BudgetMonitor) CheckBudget(ctx context.Context, userID, categoryID string, budgetAmount float64) *model.BudgetStatus {
	settings := m.loadSettings(ctx, userID)
	if settings == nil || !settings.NotificationEnabled {
		return nil
	}

	status, err := m.evaluate(ctx, userID, categoryID, categoryID, categoryID, budgetAmount, settings.BudgetAlertThreshold)
	if err != nil {
		m.logger.Error("check budget", "category", categoryID, "error", err)
		return nil
	}

	if status.ShouldAlert {
		m.alert(ctx, userID, *status)
	}
	return status
}

// Statuses computes the current status of every budget without dispatching
// anything. ShouldAlert reflects what a check would do, but no cooldown is
// stamped and no notification is sent.
func (m *BudgetMonitor) Statuses(ctx context.Context, userID string) []model.BudgetStatus {
	settings := m.loadSettings(ctx, userID)
	if settings == nil {
		return nil
	}

	budgets, err := m.data.GetBudgets(ctx, userID)
	if err != nil {
		m.logger.Error("load budgets", "user", userID, "error", err)
		return nil
	}

	statuses := make([]model.BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		status, err := m.evaluate(ctx, userID, b.ID, b.CategoryID, b.CategoryName, b.Amount, settings.BudgetAlertThreshold)
		if err != nil {
			m.logger.Error("compute budget status", "budget", b.ID, "error", err)
			continue
		}
		statuses = append(statuses, *status)
	}
	return statuses
}

// ResetCooldown clears the alert cooldown for a budget id, allowing the next
// over-threshold check to alert immediately.
func (m *BudgetMonitor) ResetCooldown(budgetID string) {
	m.mu.Lock()
	delete(m.lastAlert, budgetID)
	m.mu.Unlock()
}

func (m *BudgetMonitor) loadSettings(ctx context.Context, userID string) *model.UserSettings {
	settings, err := m.settings.GetUserSettings(ctx, userID)
	if err != nil {
		m.logger.Error("load settings", "user", userID, "error", err)
		return nil
	}
	if settings == nil {
		settings = model.DefaultSettings(userID)
	}
	return settings
}

func (m *BudgetMonitor) evaluate(ctx context.Context, userID, budgetID, categoryID, categoryName string, amount, threshold float64) (*model.BudgetStatus, error) {
	start, end := model.MonthBounds(m.now())
	spent, err := m.data.GetBudgetSpending(ctx, userID, categoryID, start, end)
	if err != nil {
		return nil, err
	}

	pct := model.Percentage(spent, amount)
	over := pct >= threshold

	m.mu.Lock()
	last, seen := m.lastAlert[budgetID]
	cooldownOver := !seen || m.now().Sub(last) > m.cooldown
	m.mu.Unlock()

	return &model.BudgetStatus{
		ID:              budgetID,
		CategoryName:    categoryName,
		Amount:          amount,
		Spent:           spent,
		Percentage:      pct,
		RemainingAmount: amount - spent,
		IsOverThreshold: over,
		ShouldAlert:     over && cooldownOver,
	}, nil
}

// alert dispatches a budget alert and stamps the cooldown. The stamp is only
// written on a successful send so a sink failure can retry on a later cycle.
func (m *BudgetMonitor) alert(ctx context.Context, userID string, status model.BudgetStatus) {
	if !m.gateway.SendBudgetAlert(ctx, userID, status.CategoryName, status.Percentage, status.RemainingAmount) {
		return
	}

	m.mu.Lock()
	m.lastAlert[status.ID] = m.now()
	m.mu.Unlock()
}
