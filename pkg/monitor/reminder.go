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

// Reminder schedule defaults: daily nudge at 20:00 local, weekly summary on
// Sunday at 19:00 local. The evening window for the smart reminder is hours
// 19 through 21 inclusive.
const (
	dailyReminderHour  = 20
	weeklySummaryHour  = 19
	sundayWeekday      = 1
	eveningWindowStart = 19
	eveningWindowEnd   = 21
)

// TransactionReminder nudges users who have not recorded any transaction
// today, at most once per calendar day, and owns the recurring daily and
// weekly notification schedules.
type TransactionReminder struct {
	data     storage.DataProvider
	settings storage.SettingsProvider
	gateway  *dispatch.Gateway
	logger   *slog.Logger
	now      func() time.Time

	mu                 sync.Mutex
	lastReminderDate   string
	reminderScheduleID string
	summaryScheduleID  string
}

// NewTransactionReminder creates a transaction reminder service.
func NewTransactionReminder(data storage.DataProvider, settings storage.SettingsProvider, gateway *dispatch.Gateway, logger *slog.Logger) *TransactionReminder {
	if logger == nil {
		logger = slog.Default()
	}
	return &TransactionReminder{
		data:     data,
		settings: settings,
		gateway:  gateway,
		logger:   logger,
		now:      time.Now,
	}
}

// SetupDailyReminder registers the recurring 20:00 daily reminder with the
// sink, replacing any schedule this service created before. It returns false
// when the feature flag is off or scheduling fails.
func (r *TransactionReminder) SetupDailyReminder(ctx context.Context, userID string) bool {
	settings := r.loadSettings(ctx, userID)
	if settings == nil || !settings.DailyReminderEnabled {
		return false
	}

	r.mu.Lock()
	prior := r.reminderScheduleID
	r.mu.Unlock()
	if prior != "" {
		r.gateway.Cancel(ctx, prior)
	}

	id, ok := r.gateway.ScheduleDailyReminder(ctx, userID, dailyReminderHour, 0)
	if !ok {
		return false
	}

	r.mu.Lock()
	r.reminderScheduleID = id
	r.mu.Unlock()
	return true
}

// CancelReminder removes the recurring daily reminder schedule, if any.
func (r *TransactionReminder) CancelReminder(ctx context.Context) bool {
	r.mu.Lock()
	id := r.reminderScheduleID
	r.mu.Unlock()
	if id == "" {
		return false
	}

	if !r.gateway.Cancel(ctx, id) {
		return false
	}

	r.mu.Lock()
	r.reminderScheduleID = ""
	r.mu.Unlock()
	return true
}

// SetupWeeklySummary registers the recurring Sunday 19:00 weekly summary,
// replacing any prior schedule.
func (r *TransactionReminder) SetupWeeklySummary(ctx context.Context, userID string) bool {
	settings := r.loadSettings(ctx, userID)
	if settings == nil || !settings.WeeklySummaryEnabled {
		return false
	}

	r.mu.Lock()
	prior := r.summaryScheduleID
	r.mu.Unlock()
	if prior != "" {
		r.gateway.Cancel(ctx, prior)
	}

	id, ok := r.gateway.ScheduleWeeklySummary(ctx, userID, sundayWeekday, weeklySummaryHour, 0)
	if !ok {
		return false
	}

	r.mu.Lock()
	r.summaryScheduleID = id
	r.mu.Unlock()
	return true
}

// CheckTodayTransactions reports whether the user recorded at least one
// transaction in the current local calendar day. Provider failures count as
// no activity.
func (r *TransactionReminder) CheckTodayTransactions(ctx context.Context, userID string) bool {
	n, err := r.countToday(ctx, userID)
	if err != nil {
		r.logger.Error("count today's transactions", "user", userID, "error", err)
		return false
	}
	return n > 0
}

// SendSmartReminder sends the once-per-day nudge when the user has recorded
// nothing today. The day stamp is written only on a successful send, so a
// delivery failure can retry later the same day.
func (r *TransactionReminder) SendSmartReminder(ctx context.Context, userID string) bool {
	settings := r.loadSettings(ctx, userID)
	if settings == nil || !settings.NotificationEnabled || !settings.TransactionReminders {
		return false
	}

	today := model.DayKey(r.now())
	r.mu.Lock()
	alreadySent := r.lastReminderDate == today
	r.mu.Unlock()
	if alreadySent {
		return false
	}

	n, err := r.countToday(ctx, userID)
	if err != nil {
		r.logger.Error("count today's transactions", "user", userID, "error", err)
		return false
	}
	if n > 0 {
		return false
	}

	if !r.gateway.SendTransactionReminder(ctx, userID) {
		return false
	}

	r.mu.Lock()
	r.lastReminderDate = today
	r.mu.Unlock()
	return true
}

// SendWeeklySummary computes this week's recorded activity and sends the
// summary notification.
func (r *TransactionReminder) SendWeeklySummary(ctx context.Context, userID string) bool {
	settings := r.loadSettings(ctx, userID)
	if settings == nil || !settings.NotificationEnabled || !settings.WeeklySummaryEnabled {
		return false
	}

	start, _ := model.WeekBounds(r.now())
	txs, err := r.data.GetTransactions(ctx, userID, storage.TransactionQuery{Start: start, End: r.now()})
	if err != nil {
		r.logger.Error("load week's transactions", "user", userID, "error", err)
		return false
	}

	var total float64
	for _, tx := range txs {
		if tx.Type == "expense" {
			total += tx.Amount
		}
	}
	return r.gateway.SendWeeklySummary(ctx, userID, total, len(txs))
}

// ShouldSendEveningReminder is the pure scheduling predicate: true only
// inside the 19-21 local evening window and only if no reminder was sent
// today. It reads no providers and sends nothing.
func (r *TransactionReminder) ShouldSendEveningReminder() bool {
	now := r.now()
	hour := now.Hour()
	if hour < eveningWindowStart || hour > eveningWindowEnd {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastReminderDate != model.DayKey(now)
}

func (r *TransactionReminder) loadSettings(ctx context.Context, userID string) *model.UserSettings {
	settings, err := r.settings.GetUserSettings(ctx, userID)
	if err != nil {
		r.logger.Error("load settings", "user", userID, "error", err)
		return nil
	}
	if settings == nil {
		settings = model.DefaultSettings(userID)
	}
	return settings
}

func (r *TransactionReminder) countToday(ctx context.Context, userID string) (int, error) {
	start, end := model.DayBounds(r.now())
	txs, err := r.data.GetTransactions(ctx, userID, storage.TransactionQuery{Start: start, End: end, Limit: 1})
	if err != nil {
		return 0, err
	}
	return len(txs), nil
}
