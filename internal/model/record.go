// Package model defines the core domain types: accounts, ledger records, and
// budgets.
package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecordType identifies a ledger record variant.
type RecordType string

const (
	RecordTypeIncome   RecordType = "income"
	RecordTypeExpense  RecordType = "expense"
	RecordTypeTransfer RecordType = "transfer"
)

// Model validation errors.
var (
	ErrInvalidRecord  = errors.New("invalid ledger record")
	ErrInvalidAccount = errors.New("invalid account")
	ErrInvalidBudget  = errors.New("invalid budget")
)

// LedgerRecord is a persisted income, expense, or transfer entry.
//
// Income and Expense reference a single account via AccountID and carry a
// Category. Transfer references a FromAccountID/ToAccountID pair and has no
// category. Fields of the other variant stay empty; Validate enforces this.
type LedgerRecord struct {
	Date          time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
	ID            string
	Type          RecordType
	Description   string
	Category      string
	AccountID     string
	FromAccountID string
	ToAccountID   string
	Amount        decimal.Decimal
}

// NewIncome creates an income record against a single account.
func NewIncome(accountID, category string, amount decimal.Decimal, date time.Time, description string) *LedgerRecord {
	return newRecord(RecordTypeIncome, accountID, "", "", category, amount, date, description)
}

// NewExpense creates an expense record against a single account.
func NewExpense(accountID, category string, amount decimal.Decimal, date time.Time, description string) *LedgerRecord {
	return newRecord(RecordTypeExpense, accountID, "", "", category, amount, date, description)
}

// NewTransfer creates a transfer record between two accounts.
func NewTransfer(fromAccountID, toAccountID string, amount decimal.Decimal, date time.Time, description string) *LedgerRecord {
	return newRecord(RecordTypeTransfer, "", fromAccountID, toAccountID, "", amount, date, description)
}

func newRecord(recordType RecordType, accountID, fromID, toID, category string, amount decimal.Decimal, date time.Time, description string) *LedgerRecord {
	now := time.Now().UTC()
	return &LedgerRecord{
		ID:            uuid.NewString(),
		Type:          recordType,
		Amount:        amount,
		Date:          date,
		Description:   description,
		Category:      category,
		AccountID:     accountID,
		FromAccountID: fromID,
		ToAccountID:   toID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// IsTransfer reports whether the record is a transfer.
func (r *LedgerRecord) IsTransfer() bool {
	return r.Type == RecordTypeTransfer
}

// Accounts returns the IDs of every account the record references.
func (r *LedgerRecord) Accounts() []string {
	if r.IsTransfer() {
		return []string{r.FromAccountID, r.ToAccountID}
	}
	return []string{r.AccountID}
}

// Validate checks the record's shape, including variant-specific field
// presence.
func (r *LedgerRecord) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidRecord)
	}
	if r.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidRecord)
	}
	if r.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidRecord)
	}
	if !r.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive, got %s", ErrInvalidRecord, r.Amount)
	}

	switch r.Type {
	case RecordTypeIncome, RecordTypeExpense:
		if r.AccountID == "" {
			return fmt.Errorf("%w: missing account ID", ErrInvalidRecord)
		}
		if r.Category == "" {
			return fmt.Errorf("%w: missing category", ErrInvalidRecord)
		}
		if r.FromAccountID != "" || r.ToAccountID != "" {
			return fmt.Errorf("%w: transfer accounts set on %s record", ErrInvalidRecord, r.Type)
		}
	case RecordTypeTransfer:
		if r.FromAccountID == "" || r.ToAccountID == "" {
			return fmt.Errorf("%w: transfer requires both from and to accounts", ErrInvalidRecord)
		}
		if r.FromAccountID == r.ToAccountID {
			return fmt.Errorf("%w: from and to accounts must differ", ErrInvalidRecord)
		}
		if r.AccountID != "" {
			return fmt.Errorf("%w: account ID set on transfer record", ErrInvalidRecord)
		}
		if r.Category != "" {
			return fmt.Errorf("%w: category set on transfer record", ErrInvalidRecord)
		}
	default:
		return fmt.Errorf("%w: unknown record type %q", ErrInvalidRecord, r.Type)
	}

	return nil
}
