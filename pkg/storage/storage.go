package storage

import (
	"context"
	"errors"
	"time"

	"github.com/finwatch-app/finwatch/pkg/model"
)

// ErrNotFound is returned when a referenced row does not exist.
var ErrNotFound = errors.New("not found")

// TransactionQuery filters transaction reads.
type TransactionQuery struct {
	Start time.Time
	End   time.Time
	Limit int
}

// DataProvider is the read/write surface the monitors consume for budgets,
// spending, goals and transactions.
type DataProvider interface {
	// GetBudgets returns all budgets belonging to a user.
	GetBudgets(ctx context.Context, userID string) ([]model.Budget, error)

	// GetBudgetSpending sums expense transactions for a category in [start, end).
	GetBudgetSpending(ctx context.Context, userID, categoryID string, start, end time.Time) (float64, error)

	// GetCategories returns categories, optionally filtered by kind.
	GetCategories(ctx context.Context, kind string) ([]model.Category, error)

	// GetSavingGoals returns all savings goals belonging to a user.
	GetSavingGoals(ctx context.Context, userID string) ([]model.SavingGoal, error)

	// UpdateSavingGoalAmount sets a goal's current amount and returns the
	// updated goal, or ErrNotFound.
	UpdateSavingGoalAmount(ctx context.Context, id string, amount float64) (*model.SavingGoal, error)

	// GetTransactions returns a user's transactions matching the query,
	// newest first.
	GetTransactions(ctx context.Context, userID string, q TransactionQuery) ([]model.Transaction, error)
}

// SettingsProvider yields and updates per-user notification preferences.
type SettingsProvider interface {
	// GetUserSettings returns the user's stored settings, or (nil, nil) when
	// no row exists; callers fall back to model.DefaultSettings.
	GetUserSettings(ctx context.Context, userID string) (*model.UserSettings, error)

	// SaveUserSettings creates or replaces the user's settings row.
	SaveUserSettings(ctx context.Context, s *model.UserSettings) error
}

// Store is the full persistence surface: both provider views plus the write
// operations the CLI uses to seed and maintain data.
type Store interface {
	DataProvider
	SettingsProvider

	// SaveCategory creates or updates a category.
	SaveCategory(ctx context.Context, c *model.Category) error

	// SaveBudget creates or updates a budget (unique per user+category).
	SaveBudget(ctx context.Context, b *model.Budget) error

	// SaveSavingGoal creates or updates a savings goal.
	SaveSavingGoal(ctx context.Context, g *model.SavingGoal) error

	// AddTransaction persists a single transaction.
	AddTransaction(ctx context.Context, t *model.Transaction) error

	// Close releases resources.
	Close() error
}
