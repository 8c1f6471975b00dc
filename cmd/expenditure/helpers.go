package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/Mohamed-apdi/expenditure-core/internal/common"
	"github.com/Mohamed-apdi/expenditure-core/internal/config"
	"github.com/Mohamed-apdi/expenditure-core/internal/service"
	"github.com/Mohamed-apdi/expenditure-core/internal/storage"
)

const dateLayout = "2006-01-02"

// initStorage opens the ledger database and brings the schema up to date.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = config.DefaultDBPath()
	}
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: amount %q is not a number", common.ErrValidation, s)
	}
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: amount must be positive, got %s", common.ErrValidation, amount)
	}
	return amount, nil
}

func parseBalance(s string) (decimal.Decimal, error) {
	balance, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: balance %q is not a number", common.ErrValidation, s)
	}
	return balance, nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Now().UTC(), nil
	}
	date, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must be YYYY-MM-DD, got %q", common.ErrValidation, s)
	}
	return date, nil
}

// runWithRetry executes a ledger operation, optionally retrying persistence
// failures. Balance adjustments carry idempotency keys, so a retried
// operation never double-applies.
func runWithRetry(ctx context.Context, retry bool, op func() error) error {
	if !retry {
		return op()
	}
	return common.WithRetry(ctx, op, service.RetryOptions{MaxAttempts: 3})
}

func promptYesNo(prompt string) (bool, error) {
	fmt.Printf("%s [y/N]: ", prompt) //nolint:forbidigo // User-facing output

	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return false, err
	}

	input = strings.ToLower(strings.TrimSpace(input))
	return input == "y" || input == "yes", nil
}
