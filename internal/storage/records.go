package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/Mohamed-apdi/expenditure-core/internal/model"
	"github.com/Mohamed-apdi/expenditure-core/internal/service"
)

// SaveRecord inserts or replaces a ledger record by ID.
func (s *SQLiteStorage) SaveRecord(ctx context.Context, record *model.LedgerRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRecord(record); err != nil {
		return err
	}

	query := `
		INSERT INTO ledger_records (
			id, record_type, amount, date, description, category,
			account_id, from_account_id, to_account_id, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			record_type = excluded.record_type,
			amount = excluded.amount,
			date = excluded.date,
			description = excluded.description,
			category = excluded.category,
			account_id = excluded.account_id,
			from_account_id = excluded.from_account_id,
			to_account_id = excluded.to_account_id,
			updated_at = excluded.updated_at`

	_, err := s.db.ExecContext(ctx, query,
		record.ID,
		string(record.Type),
		record.Amount.String(),
		record.Date,
		record.Description,
		record.Category,
		record.AccountID,
		record.FromAccountID,
		record.ToAccountID,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save ledger record: %w", err)
	}

	slog.Debug("saved ledger record", "id", record.ID, "type", record.Type)
	return nil
}

// GetRecordByID returns a ledger record by ID, or nil if it does not exist.
func (s *SQLiteStorage) GetRecordByID(ctx context.Context, id string) (*model.LedgerRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	query := `
		SELECT id, record_type, amount, date, description, category,
			account_id, from_account_id, to_account_id, created_at, updated_at
		FROM ledger_records
		WHERE id = ?`

	record, err := scanRecord(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Record not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger record: %w", err)
	}

	return record, nil
}

// DeleteRecord removes a ledger record row. Deleting an absent row is not an
// error, which keeps the delete path safe to retry.
func (s *SQLiteStorage) DeleteRecord(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `DELETE FROM ledger_records WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete ledger record: %w", err)
	}

	return nil
}

// ListRecords returns ledger records matching the filter, newest first.
func (s *SQLiteStorage) ListRecords(ctx context.Context, filter service.RecordFilter) ([]model.LedgerRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return nil, fmt.Errorf("%w: %v is after %v", ErrInvalidDateRange, filter.StartDate, filter.EndDate)
	}

	query := `
		SELECT id, record_type, amount, date, description, category,
			account_id, from_account_id, to_account_id, created_at, updated_at
		FROM ledger_records
		WHERE 1=1`
	var args []any

	if filter.StartDate != nil {
		query += ` AND date >= ?`
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil {
		query += ` AND date < ?`
		args = append(args, *filter.EndDate)
	}
	if filter.AccountID != "" {
		query += ` AND (account_id = ? OR from_account_id = ? OR to_account_id = ?)`
		args = append(args, filter.AccountID, filter.AccountID, filter.AccountID)
	}
	if filter.Category != "" {
		query += ` AND category = ?`
		args = append(args, filter.Category)
	}
	if filter.Type != "" {
		query += ` AND record_type = ?`
		args = append(args, string(filter.Type))
	}

	query += ` ORDER BY date DESC, id`

	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += ` OFFSET ?`
			args = append(args, filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger records: %w", err)
	}
	defer rows.Close()

	var records []model.LedgerRecord
	for rows.Next() {
		record, scanErr := scanRecord(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan ledger record: %w", scanErr)
		}
		records = append(records, *record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger records: %w", err)
	}

	slog.Debug("retrieved ledger records", "count", len(records))
	return records, nil
}

func scanRecord(row rowScanner) (*model.LedgerRecord, error) {
	var record model.LedgerRecord
	var recordType, amount string

	if err := row.Scan(
		&record.ID,
		&recordType,
		&amount,
		&record.Date,
		&record.Description,
		&record.Category,
		&record.AccountID,
		&record.FromAccountID,
		&record.ToAccountID,
		&record.CreatedAt,
		&record.UpdatedAt,
	); err != nil {
		return nil, err
	}

	parsed, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("failed to parse stored amount %q: %w", amount, err)
	}

	record.Type = model.RecordType(recordType)
	record.Amount = parsed
	return &record, nil
}
