// Package report aggregates ledger records into summaries. All money
// arithmetic happens here in decimals; SQL never sums amounts.
package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Mohamed-apdi/expenditure-core/internal/common"
	"github.com/Mohamed-apdi/expenditure-core/internal/model"
	"github.com/Mohamed-apdi/expenditure-core/internal/service"
)

// Service produces reports from stored ledger records.
type Service struct {
	store service.Storage
}

// New creates a report service backed by the given storage.
func New(store service.Storage) *Service {
	return &Service{store: store}
}

// MonthlySummary totals one calendar month of activity.
type MonthlySummary struct {
	Month     string
	Income    decimal.Decimal
	Expenses  decimal.Decimal
	Net       decimal.Decimal
	Transfers decimal.Decimal
}

// CategoryTotal is the expense total for one category.
type CategoryTotal struct {
	Category string
	Total    decimal.Decimal
}

// BudgetStatus compares a month's spending in a category against its budget.
type BudgetStatus struct {
	Category  string
	Limit     decimal.Decimal
	Spent     decimal.Decimal
	Remaining decimal.Decimal
	Over      bool
}

// MonthlySummary returns income, expense, net, and transfer totals for a
// month given as YYYY-MM.
func (s *Service) MonthlySummary(ctx context.Context, month string) (*MonthlySummary, error) {
	start, end, err := monthRange(month)
	if err != nil {
		return nil, err
	}

	records, err := s.store.ListRecords(ctx, service.RecordFilter{StartDate: &start, EndDate: &end})
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	summary := &MonthlySummary{Month: month}
	for _, rec := range records {
		switch rec.Type {
		case model.RecordTypeIncome:
			summary.Income = summary.Income.Add(rec.Amount)
		case model.RecordTypeExpense:
			summary.Expenses = summary.Expenses.Add(rec.Amount)
		case model.RecordTypeTransfer:
			summary.Transfers = summary.Transfers.Add(rec.Amount)
		}
	}
	summary.Net = summary.Income.Sub(summary.Expenses)

	return summary, nil
}

// CategoryBreakdown returns expense totals per category over [start, end),
// largest first.
func (s *Service) CategoryBreakdown(ctx context.Context, start, end time.Time) ([]CategoryTotal, error) {
	records, err := s.store.ListRecords(ctx, service.RecordFilter{
		StartDate: &start,
		EndDate:   &end,
		Type:      model.RecordTypeExpense,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	byCategory := make(map[string]decimal.Decimal)
	for _, rec := range records {
		byCategory[rec.Category] = byCategory[rec.Category].Add(rec.Amount)
	}

	totals := make([]CategoryTotal, 0, len(byCategory))
	for category, total := range byCategory {
		totals = append(totals, CategoryTotal{Category: category, Total: total})
	}

	sort.Slice(totals, func(i, j int) bool {
		if !totals[i].Total.Equal(totals[j].Total) {
			return totals[i].Total.GreaterThan(totals[j].Total)
		}
		return totals[i].Category < totals[j].Category
	})
	return totals, nil
}

// BudgetPerformance compares each budget set for a month against the actual
// expense totals of that month.
func (s *Service) BudgetPerformance(ctx context.Context, month string) ([]BudgetStatus, error) {
	start, end, err := monthRange(month)
	if err != nil {
		return nil, err
	}

	budgets, err := s.store.GetBudgets(ctx, month)
	if err != nil {
		return nil, fmt.Errorf("failed to load budgets: %w", err)
	}

	totals, err := s.CategoryBreakdown(ctx, start, end)
	if err != nil {
		return nil, err
	}
	spent := make(map[string]decimal.Decimal, len(totals))
	for _, t := range totals {
		spent[t.Category] = t.Total
	}

	statuses := make([]BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		used := spent[b.Category]
		statuses = append(statuses, BudgetStatus{
			Category:  b.Category,
			Limit:     b.Limit,
			Spent:     used,
			Remaining: b.Limit.Sub(used),
			Over:      used.GreaterThan(b.Limit),
		})
	}
	return statuses, nil
}

// ForecastNextMonth predicts next month's total expenses as the mean of the
// last `months` complete calendar months before the month containing now.
func (s *Service) ForecastNextMonth(ctx context.Context, now time.Time, months int) (decimal.Decimal, error) {
	if months <= 0 {
		months = 3
	}

	currentMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	start := currentMonth.AddDate(0, -months, 0)

	records, err := s.store.ListRecords(ctx, service.RecordFilter{
		StartDate: &start,
		EndDate:   &currentMonth,
		Type:      model.RecordTypeExpense,
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to list records: %w", err)
	}

	var total decimal.Decimal
	for _, rec := range records {
		total = total.Add(rec.Amount)
	}

	return total.Div(decimal.NewFromInt(int64(months))).Round(2), nil
}

func monthRange(month string) (start, end time.Time, err error) {
	start, err = time.Parse(model.MonthLayout, month)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: month must be YYYY-MM, got %q", common.ErrValidation, month)
	}
	return start, start.AddDate(0, 1, 0), nil
}
