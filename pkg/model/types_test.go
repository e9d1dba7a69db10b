package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/finwatch-app/finwatch/pkg/model"
)

func TestMonthBounds(t *testing.T) {
	now := time.Date(2024, time.March, 17, 15, 4, 5, 0, time.Local)
	start, end := model.MonthBounds(now)
	assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.Local), start)
	assert.Equal(t, time.Date(2024, time.April, 1, 0, 0, 0, 0, time.Local), end)
}

func TestMonthBounds_December(t *testing.T) {
	now := time.Date(2024, time.December, 31, 23, 59, 0, 0, time.Local)
	start, end := model.MonthBounds(now)
	assert.Equal(t, time.December, start.Month())
	assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.Local), end)
}

func TestDayBounds(t *testing.T) {
	now := time.Date(2024, time.March, 17, 21, 30, 0, 0, time.Local)
	start, end := model.DayBounds(now)
	assert.Equal(t, 0, start.Hour())
	assert.Equal(t, 24*time.Hour, end.Sub(start))
	assert.Equal(t, 17, start.Day())
}

func TestWeekBounds(t *testing.T) {
	// 2024-03-17 is a Sunday; the Monday-based week started on the 11th.
	now := time.Date(2024, time.March, 17, 12, 0, 0, 0, time.Local)
	start, end := model.WeekBounds(now)
	assert.Equal(t, time.Monday, start.Weekday())
	assert.Equal(t, 11, start.Day())
	assert.Equal(t, 7*24*time.Hour, end.Sub(start))
}

func TestMilestoneFor(t *testing.T) {
	assert.Equal(t, 0, model.MilestoneFor(0))
	assert.Equal(t, 0, model.MilestoneFor(24.9))
	assert.Equal(t, 25, model.MilestoneFor(25))
	assert.Equal(t, 25, model.MilestoneFor(49.9))
	assert.Equal(t, 50, model.MilestoneFor(50))
	assert.Equal(t, 75, model.MilestoneFor(99.9))
	assert.Equal(t, 100, model.MilestoneFor(100))
	assert.Equal(t, 100, model.MilestoneFor(250))
}

func TestPercentage(t *testing.T) {
	assert.InDelta(t, 95, model.Percentage(950_000, 1_000_000), 0.001)
	assert.Zero(t, model.Percentage(100, 0))
	assert.Zero(t, model.Percentage(100, -5))
}

func TestDefaultSettings(t *testing.T) {
	s := model.DefaultSettings("u1")
	assert.Equal(t, "u1", s.UserID)
	assert.True(t, s.NotificationEnabled)
	assert.InDelta(t, 80.0, s.BudgetAlertThreshold, 0.001)
	assert.True(t, s.SavingGoalAlerts)
	assert.True(t, s.TransactionReminders)
	assert.False(t, s.DailyReminderEnabled)
	assert.False(t, s.WeeklySummaryEnabled)
}

func TestDayKey(t *testing.T) {
	assert.Equal(t, "2024-03-17", model.DayKey(time.Date(2024, time.March, 17, 23, 0, 0, 0, time.Local)))
}
