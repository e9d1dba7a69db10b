package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finwatch-app/finwatch/pkg/model"
	"github.com/finwatch-app/finwatch/pkg/notify"
)

func newBudgetFixture(settings *model.UserSettings) (*BudgetMonitor, *fakeData, *notify.MemorySink) {
	data := newFakeData()
	var sp *fakeSettings
	if settings != nil {
		sp = newFakeSettings(settings)
	} else {
		sp = newFakeSettings()
	}
	sink := notify.NewMemorySink()
	m := NewBudgetMonitor(data, sp, newTestGateway(sink, sp), testLogger())
	return m, data, sink
}

func TestBudgetMonitor_DerivedStatus(t *testing.T) {
	m, data, sink := newBudgetFixture(model.DefaultSettings("u1"))
	data.budgets = []model.Budget{{ID: "b1", UserID: "u1", CategoryID: "c1", CategoryName: "Food", Amount: 1_000_000}}
	data.spending["c1"] = 950_000

	statuses := m.CheckThresholds(context.Background(), "u1")
	require.Len(t, statuses, 1)

	s := statuses[0]
	assert.InDelta(t, 95, s.Percentage, 0.001)
	assert.InDelta(t, 50_000, s.RemainingAmount, 0.001)
	assert.True(t, s.IsOverThreshold)
	assert.True(t, s.ShouldAlert)

	delivered := sink.Delivered()
	require.Len(t, delivered, 1)
	// 95% selects the critical tier.
	assert.Equal(t, "Budget almost gone", delivered[0].Payload.Title)
	assert.Equal(t, "budget_critical", delivered[0].Payload.Type())
}

func TestBudgetMonitor_UnderThreshold_NoAlert(t *testing.T) {
	m, data, sink := newBudgetFixture(model.DefaultSettings("u1"))
	data.budgets = []model.Budget{{ID: "b1", UserID: "u1", CategoryID: "c1", CategoryName: "Food", Amount: 1_000_000}}
	data.spending["c1"] = 500_000

	statuses := m.CheckThresholds(context.Background(), "u1")
	require.Len(t, statuses, 1)
	assert.False(t, statuses[0].IsOverThreshold)
	assert.False(t, statuses[0].ShouldAlert)
	assert.Empty(t, sink.Delivered())
}

func TestBudgetMonitor_CooldownSuppressesSecondAlert(t *testing.T) {
	m, data, sink := newBudgetFixture(model.DefaultSettings("u1"))
	data.budgets = []model.Budget{{ID: "b1", UserID: "u1", CategoryID: "c1", CategoryName: "Food", Amount: 100}}
	data.spending["c1"] = 90

	base := time.Date(2024, time.March, 17, 10, 0, 0, 0, time.Local)
	m.now = func() time.Time { return base }
	ctx := context.Background()

	m.CheckThresholds(ctx, "u1")
	require.Len(t, sink.Delivered(), 1)

	// Still over threshold an hour later: cooldown holds.
	m.now = func() time.Time { return base.Add(time.Hour) }
	statuses := m.CheckThresholds(ctx, "u1")
	require.Len(t, statuses, 1)
	assert.True(t, statuses[0].IsOverThreshold)
	assert.False(t, statuses[0].ShouldAlert)
	assert.Len(t, sink.Delivered(), 1)

	// After 24h the same condition alerts again.
	m.now = func() time.Time { return base.Add(25 * time.Hour) }
	m.CheckThresholds(ctx, "u1")
	assert.Len(t, sink.Delivered(), 2)
}

func TestBudgetMonitor_CooldownIsPerBudget(t *testing.T) {
	m, data, sink := newBudgetFixture(model.DefaultSettings("u1"))
	data.budgets = []model.Budget{
		{ID: "b1", UserID: "u1", CategoryID: "c1", CategoryName: "Food", Amount: 100},
		{ID: "b2", UserID: "u1", CategoryID: "c2", CategoryName: "Transport", Amount: 100},
	}
	data.spending["c1"] = 95
	data.spending["c2"] = 85

	m.CheckThresholds(context.Background(), "u1")
	assert.Len(t, sink.Delivered(), 2)
}

func TestBudgetMonitor_MasterSwitchOff_SkipsCheck(t *testing.T) {
	settings := model.DefaultSettings("u1")
	settings.NotificationEnabled = false
	m, data, sink := newBudgetFixture(settings)
	data.budgets = []model.Budget{{ID: "b1", UserID: "u1", CategoryID: "c1", CategoryName: "Food", Amount: 100}}
	data.spending["c1"] = 150

	statuses := m.CheckThresholds(context.Background(), "u1")
	assert.Empty(t, statuses)
	assert.Empty(t, sink.Delivered())
}

func TestBudgetMonitor_MissingSettings_DefaultThreshold(t *testing.T) {
	m, data, sink := newBudgetFixture(nil) // no settings row at all
	data.budgets = []model.Budget{{ID: "b1", UserID: "u1", CategoryID: "c1", CategoryName: "Food", Amount: 100}}
	data.spending["c1"] = 85 // over the default 80, under anything stricter

	statuses := m.CheckThresholds(context.Background(), "u1")
	require.Len(t, statuses, 1)
	assert.True(t, statuses[0].IsOverThreshold)
	assert.Len(t, sink.Delivered(), 1)
}

func TestBudgetMonitor_ProviderFailureSkipsItemNotBatch(t *testing.T) {
	m, data, sink := newBudgetFixture(model.DefaultSettings("u1"))
	data.budgets = []model.Budget{
		{ID: "b1", UserID: "u1", CategoryID: "c1", CategoryName: "Food", Amount: 100},
		{ID: "b2", UserID: "u1", CategoryID: "c2", CategoryName: "Transport", Amount: 100},
	}
	data.spendingErr["c1"] = errors.New("backend timeout")
	data.spending["c2"] = 90

	statuses := m.CheckThresholds(context.Background(), "u1")
	require.Len(t, statuses, 1)
	assert.Equal(t, "b2", statuses[0].ID)
	assert.Len(t, sink.Delivered(), 1)
}

func TestBudgetMonitor_SinkFailureAllowsRetry(t *testing.T) {
	m, data, sink := newBudgetFixture(model.DefaultSettings("u1"))
	data.budgets = []model.Budget{{ID: "b1", UserID: "u1", CategoryID: "c1", CategoryName: "Food", Amount: 100}}
	data.spending["c1"] = 95
	ctx := context.Background()

	sink.Err = errors.New("permission denied")
	m.CheckThresholds(ctx, "u1")
	assert.Empty(t, sink.Delivered())

	// Cooldown was not stamped on failure, so the next cycle delivers.
	sink.Err = nil
	m.CheckThresholds(ctx, "u1")
	assert.Len(t, sink.Delivered(), 1)
}

func TestBudgetMonitor_Statuses_NeverAlerts(t *testing.T) {
	m, data, sink := newBudgetFixture(model.DefaultSettings("u1"))
	data.budgets = []model.Budget{{ID: "b1", UserID: "u1", CategoryID: "c1", CategoryName: "Food", Amount: 100}}
	data.spending["c1"] = 95
	ctx := context.Background()

	statuses := m.Statuses(ctx, "u1")
	require.Len(t, statuses, 1)
	assert.True(t, statuses[0].ShouldAlert)
	assert.Empty(t, sink.Delivered())

	// The read did not stamp the cooldown; a real check still alerts.
	m.CheckThresholds(ctx, "u1")
	assert.Len(t, sink.Delivered(), 1)
}

func TestBudgetMonitor_ResetCooldown(t *testing.T) {
	m, data, sink := newBudgetFixture(model.DefaultSettings("u1"))
	data.budgets = []model.Budget{{ID: "b1", UserID: "u1", CategoryID: "c1", CategoryName: "Food", Amount: 100}}
	data.spending["c1"] = 95
	ctx := context.Background()

	m.CheckThresholds(ctx, "u1")
	m.ResetCooldown("b1")
	m.CheckThresholds(ctx, "u1")
	assert.Len(t, sink.Delivered(), 2)
}

func TestBudgetMonitor_CheckBudget(t *testing.T) {
	m, data, sink := newBudgetFixture(model.DefaultSettings("u1"))
	data.spending["c9"] = 120

	status := m.CheckBudget(context.Background(), "u1", "c9", 100)
	require.NotNil(t, status)
	assert.InDelta(t, 120, status.Percentage, 0.001)
	assert.True(t, status.ShouldAlert)

	delivered := sink.Delivered()
	require.Len(t, delivered, 1)
	assert.Equal(t, "budget_exceeded", delivered[0].Payload.Type())
}

func TestBudgetMonitor_CheckBudget_ProviderFailure(t *testing.T) {
	m, data, _ := newBudgetFixture(model.DefaultSettings("u1"))
	data.spendingErr["c9"] = errors.New("backend down")

	assert.Nil(t, m.CheckBudget(context.Background(), "u1", "c9", 100))
}

func TestBudgetMonitor_ZeroAmountBudget(t *testing.T) {
	m, data, sink := newBudgetFixture(model.DefaultSettings("u1"))
	data.budgets = []model.Budget{{ID: "b1", UserID: "u1", CategoryID: "c1", CategoryName: "Broken", Amount: 0}}
	data.spending["c1"] = 500

	statuses := m.CheckThresholds(context.Background(), "u1")
	require.Len(t, statuses, 1)
	assert.Zero(t, statuses[0].Percentage)
	assert.False(t, statuses[0].IsOverThreshold)
	assert.Empty(t, sink.Delivered())
}
