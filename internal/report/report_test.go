package report

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mohamed-apdi/expenditure-core/internal/common"
	"github.com/Mohamed-apdi/expenditure-core/internal/model"
	"github.com/Mohamed-apdi/expenditure-core/internal/storage"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestService(t *testing.T) (*Service, *storage.SQLiteStorage) {
	t.Helper()

	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(context.Background()))

	return New(store), store
}

// seedRecord writes a record directly; reports read whatever the ledger
// stored, so balance effects are irrelevant here.
func seedRecord(t *testing.T, store *storage.SQLiteStorage, rec *model.LedgerRecord) {
	t.Helper()
	require.NoError(t, store.SaveRecord(context.Background(), rec))
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func TestMonthlySummary(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	seedRecord(t, store, model.NewIncome("acc-a", "Salary", dec("3000"), day(2026, 8, 1), ""))
	seedRecord(t, store, model.NewIncome("acc-a", "Interest", dec("12.50"), day(2026, 8, 20), ""))
	seedRecord(t, store, model.NewExpense("acc-a", "Groceries", dec("420.10"), day(2026, 8, 5), ""))
	seedRecord(t, store, model.NewExpense("acc-a", "Rent", dec("1500"), day(2026, 8, 2), ""))
	seedRecord(t, store, model.NewTransfer("acc-a", "acc-b", dec("200"), day(2026, 8, 10), ""))
	// Outside the month, must not count.
	seedRecord(t, store, model.NewExpense("acc-a", "Groceries", dec("999"), day(2026, 7, 31), ""))
	seedRecord(t, store, model.NewExpense("acc-a", "Groceries", dec("999"), day(2026, 9, 1), ""))

	summary, err := svc.MonthlySummary(ctx, "2026-08")
	require.NoError(t, err)

	assert.Equal(t, "2026-08", summary.Month)
	assert.True(t, summary.Income.Equal(dec("3012.50")), "income: %s", summary.Income)
	assert.True(t, summary.Expenses.Equal(dec("1920.10")), "expenses: %s", summary.Expenses)
	assert.True(t, summary.Net.Equal(dec("1092.40")), "net: %s", summary.Net)
	assert.True(t, summary.Transfers.Equal(dec("200")), "transfers count toward neither income nor expenses")
}

func TestMonthlySummary_BadMonth(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.MonthlySummary(context.Background(), "August")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestCategoryBreakdown(t *testing.T) {
	svc, store := newTestService(t)

	seedRecord(t, store, model.NewExpense("acc-a", "Groceries", dec("100"), day(2026, 8, 1), ""))
	seedRecord(t, store, model.NewExpense("acc-a", "Groceries", dec("50"), day(2026, 8, 15), ""))
	seedRecord(t, store, model.NewExpense("acc-a", "Rent", dec("1500"), day(2026, 8, 2), ""))
	seedRecord(t, store, model.NewExpense("acc-a", "Dining", dec("75"), day(2026, 8, 20), ""))
	// Income with the same category name must not appear in the breakdown.
	seedRecord(t, store, model.NewIncome("acc-a", "Dining", dec("999"), day(2026, 8, 21), ""))

	totals, err := svc.CategoryBreakdown(context.Background(), day(2026, 8, 1), day(2026, 9, 1))
	require.NoError(t, err)
	require.Len(t, totals, 3)

	assert.Equal(t, "Rent", totals[0].Category)
	assert.True(t, totals[0].Total.Equal(dec("1500")))
	assert.Equal(t, "Groceries", totals[1].Category)
	assert.True(t, totals[1].Total.Equal(dec("150")))
	assert.Equal(t, "Dining", totals[2].Category)
	assert.True(t, totals[2].Total.Equal(dec("75")))
}

func TestBudgetPerformance(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertBudget(ctx, &model.Budget{
		Category: "Groceries", Month: "2026-08", Limit: dec("400"),
	}))
	require.NoError(t, store.UpsertBudget(ctx, &model.Budget{
		Category: "Dining", Month: "2026-08", Limit: dec("100"),
	}))
	require.NoError(t, store.UpsertBudget(ctx, &model.Budget{
		Category: "Transport", Month: "2026-08", Limit: dec("60"),
	}))

	seedRecord(t, store, model.NewExpense("acc-a", "Groceries", dec("250"), day(2026, 8, 5), ""))
	seedRecord(t, store, model.NewExpense("acc-a", "Dining", dec("130"), day(2026, 8, 8), ""))

	statuses, err := svc.BudgetPerformance(ctx, "2026-08")
	require.NoError(t, err)
	require.Len(t, statuses, 3)

	byCategory := make(map[string]BudgetStatus, len(statuses))
	for _, s := range statuses {
		byCategory[s.Category] = s
	}

	groceries := byCategory["Groceries"]
	assert.True(t, groceries.Spent.Equal(dec("250")))
	assert.True(t, groceries.Remaining.Equal(dec("150")))
	assert.False(t, groceries.Over)

	dining := byCategory["Dining"]
	assert.True(t, dining.Spent.Equal(dec("130")))
	assert.True(t, dining.Remaining.Equal(dec("-30")))
	assert.True(t, dining.Over)

	transport := byCategory["Transport"]
	assert.True(t, transport.Spent.IsZero(), "unspent budget reports zero, not missing")
	assert.False(t, transport.Over)
}

func TestForecastNextMonth(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	// Two complete months before August: June 300, July 500.
	seedRecord(t, store, model.NewExpense("acc-a", "Groceries", dec("300"), day(2026, 6, 15), ""))
	seedRecord(t, store, model.NewExpense("acc-a", "Groceries", dec("200"), day(2026, 7, 10), ""))
	seedRecord(t, store, model.NewExpense("acc-a", "Rent", dec("300"), day(2026, 7, 20), ""))
	// Current-month spending is excluded from the average.
	seedRecord(t, store, model.NewExpense("acc-a", "Groceries", dec("9999"), day(2026, 8, 1), ""))

	forecast, err := svc.ForecastNextMonth(ctx, day(2026, 8, 15), 2)
	require.NoError(t, err)
	assert.True(t, forecast.Equal(dec("400")), "forecast: %s", forecast)
}

func TestForecastNextMonth_NoHistory(t *testing.T) {
	svc, _ := newTestService(t)

	forecast, err := svc.ForecastNextMonth(context.Background(), day(2026, 8, 15), 3)
	require.NoError(t, err)
	assert.True(t, forecast.IsZero())
}
