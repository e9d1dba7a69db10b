package monitor

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/finwatch-app/finwatch/pkg/dispatch"
	"github.com/finwatch-app/finwatch/pkg/model"
	"github.com/finwatch-app/finwatch/pkg/notify"
	"github.com/finwatch-app/finwatch/pkg/storage"
)

// fakeData is an in-memory DataProvider for monitor tests.
type fakeData struct {
	budgets     []model.Budget
	budgetsErr  error
	spending    map[string]float64 // category id -> period spend
	spendingErr map[string]error   // category id -> injected failure
	goals       map[string]*model.SavingGoal
	goalsErr    error
	txs         []model.Transaction
	txErr       error
}

func newFakeData() *fakeData {
	return &fakeData{
		spending:    make(map[string]float64),
		spendingErr: make(map[string]error),
		goals:       make(map[string]*model.SavingGoal),
	}
}

func (f *fakeData) GetBudgets(_ context.Context, userID string) ([]model.Budget, error) {
	if f.budgetsErr != nil {
		return nil, f.budgetsErr
	}
	var out []model.Budget
	for _, b := range f.budgets {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeData) GetBudgetSpending(_ context.Context, _, categoryID string, _, _ time.Time) (float64, error) {
	if err := f.spendingErr[categoryID]; err != nil {
		return 0, err
	}
	return f.spending[categoryID], nil
}

func (f *fakeData) GetCategories(_ context.Context, _ string) ([]model.Category, error) {
	return nil, nil
}

func (f *fakeData) GetSavingGoals(_ context.Context, userID string) ([]model.SavingGoal, error) {
	if f.goalsErr != nil {
		return nil, f.goalsErr
	}
	var out []model.SavingGoal
	for _, g := range f.goals {
		if g.UserID == userID {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (f *fakeData) UpdateSavingGoalAmount(_ context.Context, id string, amount float64) (*model.SavingGoal, error) {
	g, ok := f.goals[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	g.CurrentAmount = amount
	out := *g
	return &out, nil
}

func (f *fakeData) GetTransactions(_ context.Context, userID string, q storage.TransactionQuery) ([]model.Transaction, error) {
	if f.txErr != nil {
		return nil, f.txErr
	}
	var out []model.Transaction
	for _, tx := range f.txs {
		if tx.UserID != userID {
			continue
		}
		if !q.Start.IsZero() && tx.Date.Before(q.Start) {
			continue
		}
		if !q.End.IsZero() && !tx.Date.Before(q.End) {
			continue
		}
		out = append(out, tx)
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out, nil
}

// fakeSettings is an in-memory SettingsProvider.
type fakeSettings struct {
	rows map[string]*model.UserSettings
	err  error
}

func newFakeSettings(rows ...*model.UserSettings) *fakeSettings {
	f := &fakeSettings{rows: make(map[string]*model.UserSettings)}
	for _, r := range rows {
		f.rows[r.UserID] = r
	}
	return f
}

func (f *fakeSettings) GetUserSettings(_ context.Context, userID string) (*model.UserSettings, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rows[userID], nil
}

func (f *fakeSettings) SaveUserSettings(_ context.Context, u *model.UserSettings) error {
	f.rows[u.UserID] = u
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestGateway(sink notify.Sink, settings storage.SettingsProvider) *dispatch.Gateway {
	return dispatch.NewGateway(sink, settings, nil, testLogger())
}
