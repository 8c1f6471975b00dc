package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// MonthLayout is the format used for budget month keys.
const MonthLayout = "2006-01"

// Budget is a per-category spending limit for one calendar month.
type Budget struct {
	CreatedAt time.Time
	UpdatedAt time.Time
	Category  string
	Month     string // YYYY-MM
	Limit     decimal.Decimal
}

// Validate checks the budget's required fields.
func (b *Budget) Validate() error {
	if b == nil {
		return fmt.Errorf("%w: budget is nil", ErrInvalidBudget)
	}
	if b.Category == "" {
		return fmt.Errorf("%w: missing category", ErrInvalidBudget)
	}
	if _, err := time.Parse(MonthLayout, b.Month); err != nil {
		return fmt.Errorf("%w: month must be YYYY-MM, got %q", ErrInvalidBudget, b.Month)
	}
	if !b.Limit.IsPositive() {
		return fmt.Errorf("%w: limit must be positive, got %s", ErrInvalidBudget, b.Limit)
	}
	return nil
}
