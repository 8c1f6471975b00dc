package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/Mohamed-apdi/expenditure-core/internal/model"
)

// CreateAccount inserts a new account row.
func (s *SQLiteStorage) CreateAccount(ctx context.Context, account *model.Account) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateAccount(account); err != nil {
		return err
	}

	query := `
		INSERT INTO accounts (id, name, account_type, balance, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		account.ID,
		account.Name,
		string(account.Type),
		account.Balance.String(),
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}

	slog.Debug("created account", "id", account.ID, "name", account.Name)
	return nil
}

// GetAccount returns an account by ID, or nil if it does not exist.
func (s *SQLiteStorage) GetAccount(ctx context.Context, id string) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	query := `
		SELECT id, name, account_type, balance, created_at, updated_at
		FROM accounts
		WHERE id = ?`

	account, err := scanAccount(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Account not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query account: %w", err)
	}

	return account, nil
}

// ListAccounts returns all accounts ordered by name.
func (s *SQLiteStorage) ListAccounts(ctx context.Context) ([]model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT id, name, account_type, balance, created_at, updated_at
		FROM accounts
		ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []model.Account
	for rows.Next() {
		account, scanErr := scanAccount(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan account: %w", scanErr)
		}
		accounts = append(accounts, *account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}

	slog.Debug("retrieved accounts", "count", len(accounts))
	return accounts, nil
}

// AdjustBalance applies a signed delta to an account balance. The journal
// claim and the balance write happen in one database transaction, so each
// adjustment is atomic on its own and a key that was already applied is
// skipped without touching the balance.
func (s *SQLiteStorage) AdjustBalance(ctx context.Context, accountID string, delta decimal.Decimal, key string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(accountID, "accountID"); err != nil {
		return err
	}
	if err := validateString(key, "key"); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO balance_mutations (mutation_key, account_id, delta)
		VALUES (?, ?, ?)`,
		key, accountID, delta.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to journal balance mutation: %w", err)
	}

	claimed, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check mutation claim: %w", err)
	}
	if claimed == 0 {
		slog.Debug("balance mutation already applied", "key", key, "account", accountID)
		return tx.Commit()
	}

	var raw string
	err = tx.QueryRowContext(ctx, `SELECT balance FROM accounts WHERE id = ?`, accountID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrAccountNotFound, accountID)
	}
	if err != nil {
		return fmt.Errorf("failed to read balance: %w", err)
	}

	balance, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("failed to parse stored balance %q: %w", raw, err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE accounts SET balance = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		balance.Add(delta).String(), accountID,
	)
	if err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit balance adjustment: %w", err)
	}

	slog.Debug("adjusted balance", "account", accountID, "delta", delta.String())
	return nil
}

// GetBalanceMutation returns the journaled delta for an idempotency key, or
// nil if the key was never applied.
func (s *SQLiteStorage) GetBalanceMutation(ctx context.Context, key string) (*decimal.Decimal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(key, "key"); err != nil {
		return nil, err
	}

	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT delta FROM balance_mutations WHERE mutation_key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Key never applied
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query balance mutation: %w", err)
	}

	delta, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse stored delta %q: %w", raw, err)
	}
	return &delta, nil
}

// SetAccountBalance overwrites an account balance directly.
func (s *SQLiteStorage) SetAccountBalance(ctx context.Context, accountID string, balance decimal.Decimal) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(accountID, "accountID"); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE accounts SET balance = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		balance.String(), accountID,
	)
	if err != nil {
		return fmt.Errorf("failed to set balance: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrAccountNotFound, accountID)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*model.Account, error) {
	var account model.Account
	var accountType, balance string

	if err := row.Scan(
		&account.ID,
		&account.Name,
		&accountType,
		&balance,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		return nil, err
	}

	parsed, err := decimal.NewFromString(balance)
	if err != nil {
		return nil, fmt.Errorf("failed to parse stored balance %q: %w", balance, err)
	}

	account.Type = model.AccountType(accountType)
	account.Balance = parsed
	return &account, nil
}
