package storage_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finwatch-app/finwatch/pkg/model"
	"github.com/finwatch-app/finwatch/pkg/storage"
)

func newTestDB(t *testing.T) *storage.SQLite {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := storage.NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func seedCategory(t *testing.T, db *storage.SQLite, name string) *model.Category {
	t.Helper()
	c := &model.Category{Name: name, Kind: "expense"}
	require.NoError(t, db.SaveCategory(context.Background(), c))
	return c
}

func TestSQLite_SaveBudget_Upsert(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	cat := seedCategory(t, db, "Food")

	b := &model.Budget{UserID: "u1", CategoryID: cat.ID, Amount: 1_000_000}
	require.NoError(t, db.SaveBudget(ctx, b))
	assert.NotEmpty(t, b.ID)

	// Same user+category updates the amount instead of duplicating.
	b2 := &model.Budget{UserID: "u1", CategoryID: cat.ID, Amount: 2_000_000}
	require.NoError(t, db.SaveBudget(ctx, b2))

	budgets, err := db.GetBudgets(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, budgets, 1)
	assert.InDelta(t, 2_000_000, budgets[0].Amount, 0.001)
	assert.Equal(t, "Food", budgets[0].CategoryName)
	assert.Equal(t, "monthly", budgets[0].Period)
}

func TestSQLite_GetBudgets_OtherUserInvisible(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	cat := seedCategory(t, db, "Transport")

	require.NoError(t, db.SaveBudget(ctx, &model.Budget{UserID: "u1", CategoryID: cat.ID, Amount: 100}))

	budgets, err := db.GetBudgets(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, budgets)
}

func TestSQLite_GetBudgetSpending(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	cat := seedCategory(t, db, "Food")

	now := time.Now().UTC()
	start, end := model.MonthBounds(now)

	txs := []*model.Transaction{
		{UserID: "u1", CategoryID: cat.ID, Amount: 400_000, Type: "expense", Date: now},
		{UserID: "u1", CategoryID: cat.ID, Amount: 150_000, Type: "expense", Date: now.Add(-time.Hour)},
		// Income and out-of-window rows are excluded.
		{UserID: "u1", CategoryID: cat.ID, Amount: 999_999, Type: "income", Date: now},
		{UserID: "u1", CategoryID: cat.ID, Amount: 500_000, Type: "expense", Date: start.AddDate(0, -1, 0)},
		{UserID: "u2", CategoryID: cat.ID, Amount: 77_000, Type: "expense", Date: now},
	}
	for _, tx := range txs {
		require.NoError(t, db.AddTransaction(ctx, tx))
	}

	total, err := db.GetBudgetSpending(ctx, "u1", cat.ID, start, end)
	require.NoError(t, err)
	assert.InDelta(t, 550_000, total, 0.001)
}

func TestSQLite_GetTransactions_WindowAndLimit(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	cat := seedCategory(t, db, "Misc")

	base := time.Date(2024, time.March, 17, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, db.AddTransaction(ctx, &model.Transaction{
			UserID: "u1", CategoryID: cat.ID, Amount: float64(i + 1), Date: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	got, err := db.GetTransactions(ctx, "u1", storage.TransactionQuery{
		Start: base.Add(time.Hour),
		End:   base.Add(4 * time.Hour),
	})
	require.NoError(t, err)
	require.Len(t, got, 3)
	// Newest first.
	assert.True(t, got[0].Date.After(got[1].Date))

	limited, err := db.GetTransactions(ctx, "u1", storage.TransactionQuery{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestSQLite_SavingGoals(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	g := &model.SavingGoal{UserID: "u1", Name: "Emergency fund", TargetAmount: 1_000_000, CurrentAmount: 250_000}
	require.NoError(t, db.SaveSavingGoal(ctx, g))
	assert.NotEmpty(t, g.ID)

	goals, err := db.GetSavingGoals(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.InDelta(t, 250_000, goals[0].CurrentAmount, 0.001)

	updated, err := db.UpdateSavingGoalAmount(ctx, g.ID, 600_000)
	require.NoError(t, err)
	assert.InDelta(t, 600_000, updated.CurrentAmount, 0.001)
	assert.Equal(t, "Emergency fund", updated.Name)
}

func TestSQLite_UpdateSavingGoalAmount_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.UpdateSavingGoalAmount(context.Background(), "missing", 100)
	require.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestSQLite_UserSettings_MissingRowIsNil(t *testing.T) {
	db := newTestDB(t)

	got, err := db.GetUserSettings(context.Background(), "u1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLite_UserSettings_Upsert(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	s := model.DefaultSettings("u1")
	s.BudgetAlertThreshold = 75
	require.NoError(t, db.SaveUserSettings(ctx, s))

	s.NotificationEnabled = false
	require.NoError(t, db.SaveUserSettings(ctx, s))

	got, err := db.GetUserSettings(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.False(t, got.NotificationEnabled)
	assert.InDelta(t, 75, got.BudgetAlertThreshold, 0.001)
	assert.True(t, got.TransactionReminders)
}

func TestSQLite_GetCategories_KindFilter(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.SaveCategory(ctx, &model.Category{Name: "Salary", Kind: "income"}))
	seedCategory(t, db, "Food")

	expenses, err := db.GetCategories(ctx, "expense")
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	assert.Equal(t, "Food", expenses[0].Name)

	all, err := db.GetCategories(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
