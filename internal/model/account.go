package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountType classifies accounts.
type AccountType string

const (
	AccountTypeChecking AccountType = "checking"
	AccountTypeSavings  AccountType = "savings"
	AccountTypeCash     AccountType = "cash"
	AccountTypeCard     AccountType = "card"
)

// Account holds the current balance for one account. The balance is
// maintained incrementally: it equals the sum of the signed effects of every
// non-deleted ledger record referencing the account. It may be negative
// (overdraft).
type Account struct {
	CreatedAt time.Time
	UpdatedAt time.Time
	ID        string
	Name      string
	Type      AccountType
	Balance   decimal.Decimal
}

// NewAccount creates an account with a fresh ID and an opening balance.
func NewAccount(name string, accountType AccountType, opening decimal.Decimal) *Account {
	now := time.Now().UTC()
	return &Account{
		ID:        uuid.NewString(),
		Name:      name,
		Type:      accountType,
		Balance:   opening,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate checks the account's required fields.
func (a *Account) Validate() error {
	if a == nil {
		return fmt.Errorf("%w: account is nil", ErrInvalidAccount)
	}
	if a.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidAccount)
	}
	if a.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidAccount)
	}
	if a.Type == "" {
		return fmt.Errorf("%w: missing type", ErrInvalidAccount)
	}
	return nil
}
