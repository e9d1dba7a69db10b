// Package dispatch implements the notification dispatch gateway: the single
// component allowed to hand content to the notification sink. It enforces the
// user's master notification switch and owns all payload formatting.
package dispatch

import (
	"context"
	"log/slog"
	"math"
	"strconv"

	"github.com/finwatch-app/finwatch/pkg/model"
	"github.com/finwatch-app/finwatch/pkg/notify"
	"github.com/finwatch-app/finwatch/pkg/storage"
)

// Gateway formats domain events into notification payloads and forwards them
// to the sink. It holds no domain state of its own.
type Gateway struct {
	sink     notify.Sink
	settings storage.SettingsProvider
	catalog  *Catalog
	logger   *slog.Logger
}

// NewGateway creates a gateway. A nil catalog falls back to the built-in
// messages. The sink may be nil, in which case every send is a silent no-op.
func NewGateway(sink notify.Sink, settings storage.SettingsProvider, catalog *Catalog, logger *slog.Logger) *Gateway {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		sink:     sink,
		settings: settings,
		catalog:  catalog,
		logger:   logger,
	}
}

// allowed is the two-step gate run before any send or schedule: a sink must
// be registered and the user's master switch must be on. A missing settings
// row counts as enabled (the documented default); a settings lookup failure
// counts as disabled for this attempt.
func (g *Gateway) allowed(ctx context.Context, userID string) bool {
	if g.sink == nil {
		return false
	}

	settings, err := g.settings.GetUserSettings(ctx, userID)
	if err != nil {
		g.logger.Error("load settings for dispatch", "user", userID, "error", err)
		return false
	}
	if settings == nil {
		settings = model.DefaultSettings(userID)
	}
	return settings.NotificationEnabled
}

func (g *Gateway) send(ctx context.Context, userID, key string, vars map[string]string, data map[string]any) bool {
	if !g.allowed(ctx, userID) {
		return false
	}

	p, ok := g.payload(key, vars, data)
	if !ok {
		return false
	}

	if _, err := g.sink.Send(ctx, p); err != nil {
		g.logger.Error("send notification", "type", key, "user", userID, "error", err)
		return false
	}

	g.logger.Info("notification sent", "type", key, "user", userID)
	return true
}

func (g *Gateway) payload(key string, vars map[string]string, data map[string]any) (notify.Payload, bool) {
	title, body, ok := g.catalog.Render(key, vars)
	if !ok {
		g.logger.Error("unknown notification type", "type", key)
		return notify.Payload{}, false
	}

	if data == nil {
		data = make(map[string]any, 1)
	}
	data["type"] = key
	return notify.Payload{Title: title, Body: body, Data: data}, true
}

// SendBudgetAlert notifies the user that a category budget crossed its alert
// threshold. The message tier is graded by the spend percentage.
func (g *Gateway) SendBudgetAlert(ctx context.Context, userID, categoryName string, pct, remaining float64) bool {
	var key string
	switch {
	case pct >= 100:
		key = "budget_exceeded"
	case pct >= 90:
		key = "budget_critical"
	case pct >= 75:
		key = "budget_warning"
	default:
		key = "budget_info"
	}

	return g.send(ctx, userID, key, map[string]string{
		"category":  categoryName,
		"percent":   strconv.Itoa(int(math.Round(pct))),
		"remaining": FormatAmount(remaining),
	}, map[string]any{"category": categoryName, "percent": pct})
}

// SendSavingGoalProgress notifies the user that a savings goal reached a new
// milestone band.
func (g *Gateway) SendSavingGoalProgress(ctx context.Context, userID, goalName string, milestone int) bool {
	return g.send(ctx, userID, "saving_goal_progress", map[string]string{
		"name":      goalName,
		"milestone": strconv.Itoa(milestone),
	}, map[string]any{"goal": goalName, "milestone": milestone})
}

// SendGoalCompletion celebrates a completed savings goal.
func (g *Gateway) SendGoalCompletion(ctx context.Context, userID, goalName string, target float64) bool {
	return g.send(ctx, userID, "saving_goal_completed", map[string]string{
		"name":   goalName,
		"target": FormatAmount(target),
	}, map[string]any{"goal": goalName})
}

// SendGoalMotivation nudges the user about a goal with no recent progress.
// The message tier is graded by how long the goal has been stale.
func (g *Gateway) SendGoalMotivation(ctx context.Context, userID, goalName string, daysStale int) bool {
	var key string
	switch {
	case daysStale >= 30:
		key = "goal_motivation_30"
	case daysStale >= 14:
		key = "goal_motivation_14"
	default:
		key = "goal_motivation_7"
	}

	return g.send(ctx, userID, key, map[string]string{
		"name": goalName,
		"days": strconv.Itoa(daysStale),
	}, map[string]any{"goal": goalName, "days_stale": daysStale})
}

// SendTransactionReminder nudges the user to record today's transactions.
func (g *Gateway) SendTransactionReminder(ctx context.Context, userID string) bool {
	return g.send(ctx, userID, "transaction_reminder", nil, nil)
}

// SendWeeklySummary reports the past week's recorded activity.
func (g *Gateway) SendWeeklySummary(ctx context.Context, userID string, totalSpent float64, txCount int) bool {
	return g.send(ctx, userID, "weekly_summary", map[string]string{
		"total": FormatAmount(totalSpent),
		"count": strconv.Itoa(txCount),
	}, map[string]any{"total": totalSpent, "count": txCount})
}

// SendChallengeReminder nudges the user about an ending savings challenge.
func (g *Gateway) SendChallengeReminder(ctx context.Context, userID, challengeName string, daysLeft int) bool {
	return g.send(ctx, userID, "challenge_reminder", map[string]string{
		"name": challengeName,
		"days": strconv.Itoa(daysLeft),
	}, map[string]any{"challenge": challengeName, "days_left": daysLeft})
}

// SendChallengeCompletion celebrates a finished savings challenge.
func (g *Gateway) SendChallengeCompletion(ctx context.Context, userID, challengeName string, reward float64) bool {
	return g.send(ctx, userID, "challenge_completed", map[string]string{
		"name":   challengeName,
		"reward": FormatAmount(reward),
	}, map[string]any{"challenge": challengeName})
}

// SendAccountUpdate confirms a settings or account change.
func (g *Gateway) SendAccountUpdate(ctx context.Context, userID, action string) bool {
	return g.send(ctx, userID, "account_update", map[string]string{
		"action": action,
	}, nil)
}

// Schedule registers a payload for future delivery through the sink. It
// returns the sink's schedule id and whether scheduling happened.
func (g *Gateway) Schedule(ctx context.Context, userID string, p notify.Payload, s notify.Schedule) (string, bool) {
	if !g.allowed(ctx, userID) {
		return "", false
	}
	if p.Data == nil {
		p.Data = map[string]any{"type": "scheduled"}
	}

	id, err := g.sink.Schedule(ctx, p, s)
	if err != nil {
		g.logger.Error("schedule notification", "type", p.Type(), "user", userID, "error", err)
		return "", false
	}
	return id, true
}

// ScheduleDailyReminder registers the recurring daily transaction reminder
// at the given local time and returns its schedule id.
func (g *Gateway) ScheduleDailyReminder(ctx context.Context, userID string, hour, minute int) (string, bool) {
	p, ok := g.payload("transaction_reminder", nil, nil)
	if !ok {
		return "", false
	}
	return g.Schedule(ctx, userID, p, notify.DailyAt(hour, minute))
}

// ScheduleWeeklySummary registers the recurring weekly summary notification
// and returns its schedule id.
func (g *Gateway) ScheduleWeeklySummary(ctx context.Context, userID string, weekday, hour, minute int) (string, bool) {
	p, ok := g.payload("weekly_summary", map[string]string{"total": "-", "count": "-"}, nil)
	if !ok {
		return "", false
	}
	return g.Schedule(ctx, userID, p, notify.WeeklyAt(weekday, hour, minute))
}

// Cancel removes a pending scheduled notification. It only requires a
// registered sink: users must be able to clear schedules even after turning
// notifications off.
func (g *Gateway) Cancel(ctx context.Context, id string) bool {
	if g.sink == nil {
		return false
	}
	if err := g.sink.Cancel(ctx, id); err != nil {
		g.logger.Error("cancel notification", "id", id, "error", err)
		return false
	}
	return true
}

// CancelAll removes every pending scheduled notification.
func (g *Gateway) CancelAll(ctx context.Context) bool {
	if g.sink == nil {
		return false
	}
	if err := g.sink.CancelAll(ctx); err != nil {
		g.logger.Error("cancel all notifications", "error", err)
		return false
	}
	return true
}

// FormatAmount renders a monetary amount for notification text. Malformed
// inputs (negative, NaN, infinite) are clamped to zero so an upstream
// computation error never produces a nonsensical string.
func FormatAmount(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		v = 0
	}

	n := int64(math.Round(v))
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var out []byte
	for i, d := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, d)
	}
	return string(out)
}
