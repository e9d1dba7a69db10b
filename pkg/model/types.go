package model

import "time"

// Budget defines a spending cap for a category over a period.
type Budget struct {
	ID           string    `json:"id" db:"id"`
	UserID       string    `json:"user_id" db:"user_id"`
	CategoryID   string    `json:"category_id" db:"category_id"`
	CategoryName string    `json:"category_name" db:"category_name"`
	Amount       float64   `json:"amount" db:"amount"`
	Period       string    `json:"period" db:"period"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Category is a transaction/budget category.
type Category struct {
	ID   string `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
	Kind string `json:"kind" db:"kind"` // "expense" or "income"
}

// Transaction represents a single recorded expense or income.
type Transaction struct {
	ID         string    `json:"id" db:"id"`
	UserID     string    `json:"user_id" db:"user_id"`
	CategoryID string    `json:"category_id" db:"category_id"`
	Amount     float64   `json:"amount" db:"amount"`
	Type       string    `json:"type" db:"type"` // "expense" or "income"
	Note       string    `json:"note,omitempty" db:"note"`
	Date       time.Time `json:"date" db:"date"`
}

// SavingGoal is a user savings target.
type SavingGoal struct {
	ID            string    `json:"id" db:"id"`
	UserID        string    `json:"user_id" db:"user_id"`
	Name          string    `json:"name" db:"name"`
	TargetAmount  float64   `json:"target_amount" db:"target_amount"`
	CurrentAmount float64   `json:"current_amount" db:"current_amount"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// UserSettings holds a user's notification preferences.
type UserSettings struct {
	UserID               string  `json:"user_id" db:"user_id"`
	NotificationEnabled  bool    `json:"notification_enabled" db:"notification_enabled"`
	BudgetAlertThreshold float64 `json:"budget_alert_threshold" db:"budget_alert_threshold"`
	DailyReminderEnabled bool    `json:"daily_reminder_enabled" db:"daily_reminder_enabled"`
	WeeklySummaryEnabled bool    `json:"weekly_summary_enabled" db:"weekly_summary_enabled"`
	SavingGoalAlerts     bool    `json:"saving_goal_alerts" db:"saving_goal_alerts"`
	TransactionReminders bool    `json:"transaction_reminders" db:"transaction_reminders"`
}

// DefaultBudgetAlertThreshold applies when a user has no settings row.
const DefaultBudgetAlertThreshold = 80.0

// DefaultSettings returns the preferences assumed for a user with no stored
// settings row: notifications on with the default threshold, goal and
// transaction alerts on, scheduled reminders off until explicitly enabled.
func DefaultSettings(userID string) *UserSettings {
	return &UserSettings{
		UserID:               userID,
		NotificationEnabled:  true,
		BudgetAlertThreshold: DefaultBudgetAlertThreshold,
		DailyReminderEnabled: false,
		WeeklySummaryEnabled: false,
		SavingGoalAlerts:     true,
		TransactionReminders: true,
	}
}

// BudgetStatus is the per-check derived view of a budget. It is computed
// fresh each cycle and never persisted.
type BudgetStatus struct {
	ID              string  `json:"id"`
	CategoryName    string  `json:"category_name"`
	Amount          float64 `json:"amount"`
	Spent           float64 `json:"spent"`
	Percentage      float64 `json:"percentage"`
	RemainingAmount float64 `json:"remaining_amount"`
	IsOverThreshold bool    `json:"is_over_threshold"`
	ShouldAlert     bool    `json:"should_alert"`
}

// SavingGoalProgress is the per-check derived view of a savings goal.
type SavingGoalProgress struct {
	ID                 string  `json:"id"`
	Name               string  `json:"name"`
	TargetAmount       float64 `json:"target_amount"`
	CurrentAmount      float64 `json:"current_amount"`
	ProgressPercentage float64 `json:"progress_percentage"`
	MilestoneReached   int     `json:"milestone_reached"` // 0, 25, 50, 75 or 100
	ShouldNotify       bool    `json:"should_notify"`
}

// GoalSummary aggregates a user's savings goals.
type GoalSummary struct {
	TotalGoals         int     `json:"total_goals"`
	CompletedGoals     int     `json:"completed_goals"`
	TotalTarget        float64 `json:"total_target"`
	TotalCurrent       float64 `json:"total_current"`
	OverallProgressPct float64 `json:"overall_progress_pct"`
}

// Milestones are the fixed progress bands for savings goals, ascending.
var Milestones = []int{25, 50, 75, 100}

// MilestoneFor returns the highest milestone band at or below pct, or 0.
func MilestoneFor(pct float64) int {
	reached := 0
	for _, m := range Milestones {
		if pct >= float64(m) {
			reached = m
		}
	}
	return reached
}

// Percentage computes spent/amount*100, returning 0 when amount is not positive.
func Percentage(spent, amount float64) float64 {
	if amount <= 0 {
		return 0
	}
	return spent / amount * 100
}

// MonthBounds returns the current calendar month window [first, firstOfNext)
// in now's location.
func MonthBounds(now time.Time) (start, end time.Time) {
	start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end = start.AddDate(0, 1, 0)
	return start, end
}

// DayBounds returns the local calendar day window [startOfDay, startOfNextDay).
func DayBounds(now time.Time) (start, end time.Time) {
	start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end = start.AddDate(0, 0, 1)
	return start, end
}

// WeekBounds returns the Monday-based week window containing now.
func WeekBounds(now time.Time) (start, end time.Time) {
	weekday := int(now.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	start = time.Date(now.Year(), now.Month(), now.Day()-weekday+1, 0, 0, 0, 0, now.Location())
	end = start.AddDate(0, 0, 7)
	return start, end
}

// DayKey formats a timestamp as its local calendar date, used for
// once-per-day reminder stamps.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
