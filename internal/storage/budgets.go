package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/Mohamed-apdi/expenditure-core/internal/model"
)

// UpsertBudget creates or replaces the budget for a category and month.
func (s *SQLiteStorage) UpsertBudget(ctx context.Context, budget *model.Budget) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateBudget(budget); err != nil {
		return err
	}

	query := `
		INSERT INTO budgets (category, month, limit_amount)
		VALUES (?, ?, ?)
		ON CONFLICT(category, month) DO UPDATE SET
			limit_amount = excluded.limit_amount,
			updated_at = CURRENT_TIMESTAMP`

	_, err := s.db.ExecContext(ctx, query, budget.Category, budget.Month, budget.Limit.String())
	if err != nil {
		return fmt.Errorf("failed to upsert budget: %w", err)
	}

	slog.Debug("saved budget", "category", budget.Category, "month", budget.Month)
	return nil
}

// GetBudgets returns all budgets for a month ordered by category.
func (s *SQLiteStorage) GetBudgets(ctx context.Context, month string) ([]model.Budget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(month, "month"); err != nil {
		return nil, err
	}

	query := `
		SELECT category, month, limit_amount, created_at, updated_at
		FROM budgets
		WHERE month = ?
		ORDER BY category`

	rows, err := s.db.QueryContext(ctx, query, month)
	if err != nil {
		return nil, fmt.Errorf("failed to query budgets: %w", err)
	}
	defer rows.Close()

	var budgets []model.Budget
	for rows.Next() {
		var budget model.Budget
		var limit string
		if err := rows.Scan(&budget.Category, &budget.Month, &limit, &budget.CreatedAt, &budget.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}

		parsed, parseErr := decimal.NewFromString(limit)
		if parseErr != nil {
			return nil, fmt.Errorf("failed to parse stored limit %q: %w", limit, parseErr)
		}
		budget.Limit = parsed
		budgets = append(budgets, budget)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating budgets: %w", err)
	}

	return budgets, nil
}
