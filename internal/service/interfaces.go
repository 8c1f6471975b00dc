// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Mohamed-apdi/expenditure-core/internal/model"
)

// RecordFilter defines filtering options for ledger record queries.
type RecordFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	AccountID string
	Category  string
	Type      model.RecordType
	Limit     int
	Offset    int
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Account operations
	CreateAccount(ctx context.Context, account *model.Account) error
	GetAccount(ctx context.Context, id string) (*model.Account, error)
	ListAccounts(ctx context.Context) ([]model.Account, error)

	// AdjustBalance applies a signed delta to an account balance as a single
	// atomic operation. The idempotency key is journaled alongside the
	// adjustment: replaying a key that was already applied is a no-op, which
	// makes a sequence of adjustments safe to retry.
	AdjustBalance(ctx context.Context, accountID string, delta decimal.Decimal, key string) error

	// GetBalanceMutation reports the delta journaled under an idempotency
	// key, or nil if the key was never applied. Lets callers recognize which
	// parts of an interrupted adjustment sequence already landed.
	GetBalanceMutation(ctx context.Context, key string) (*decimal.Decimal, error)

	// SetAccountBalance overwrites a balance. Administrative correction only;
	// ledger mutations go through AdjustBalance.
	SetAccountBalance(ctx context.Context, accountID string, balance decimal.Decimal) error

	// Ledger record operations
	SaveRecord(ctx context.Context, record *model.LedgerRecord) error
	GetRecordByID(ctx context.Context, id string) (*model.LedgerRecord, error)
	DeleteRecord(ctx context.Context, id string) error
	ListRecords(ctx context.Context, filter RecordFilter) ([]model.LedgerRecord, error)

	// Budget operations
	UpsertBudget(ctx context.Context, budget *model.Budget) error
	GetBudgets(ctx context.Context, month string) ([]model.Budget, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
