package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Mohamed-apdi/expenditure-core/internal/model"
	"github.com/Mohamed-apdi/expenditure-core/internal/service"
)

func testExpense(id, accountID, amount string, date time.Time) *model.LedgerRecord {
	rec := model.NewExpense(accountID, "Groceries", decimal.RequireFromString(amount), date, "test expense")
	rec.ID = id
	return rec
}

func TestSQLiteStorage_SaveAndGetRecord(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	date := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	rec := testExpense("rec-1", "acc-1", "25.50", date)
	if err := store.SaveRecord(ctx, rec); err != nil {
		t.Fatalf("Failed to save record: %v", err)
	}

	got, err := store.GetRecordByID(ctx, "rec-1")
	if err != nil {
		t.Fatalf("Failed to get record: %v", err)
	}
	if got == nil {
		t.Fatal("Expected record, got nil")
	}
	if got.Type != model.RecordTypeExpense {
		t.Errorf("Expected expense, got %s", got.Type)
	}
	if !got.Amount.Equal(decimal.RequireFromString("25.50")) {
		t.Errorf("Expected amount 25.50, got %s", got.Amount)
	}
	if got.AccountID != "acc-1" {
		t.Errorf("Expected account acc-1, got %s", got.AccountID)
	}
	if !got.Date.Equal(date) {
		t.Errorf("Expected date %v, got %v", date, got.Date)
	}
}

func TestSQLiteStorage_GetRecordNotFound(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	got, err := store.GetRecordByID(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil for missing record, got %+v", got)
	}
}

func TestSQLiteStorage_SaveRecordUpsertsByID(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	date := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	rec := testExpense("rec-1", "acc-1", "50", date)
	if err := store.SaveRecord(ctx, rec); err != nil {
		t.Fatalf("Failed to save record: %v", err)
	}

	rec.Amount = decimal.RequireFromString("80")
	rec.Category = "Dining"
	if err := store.SaveRecord(ctx, rec); err != nil {
		t.Fatalf("Failed to re-save record: %v", err)
	}

	records, err := store.ListRecords(ctx, service.RecordFilter{})
	if err != nil {
		t.Fatalf("Failed to list records: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 record after upsert, got %d", len(records))
	}
	if !records[0].Amount.Equal(decimal.RequireFromString("80")) {
		t.Errorf("Expected amount 80, got %s", records[0].Amount)
	}
	if records[0].Category != "Dining" {
		t.Errorf("Expected category Dining, got %s", records[0].Category)
	}
}

func TestSQLiteStorage_DeleteRecord(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	rec := testExpense("rec-1", "acc-1", "10", time.Now().UTC())
	if err := store.SaveRecord(ctx, rec); err != nil {
		t.Fatalf("Failed to save record: %v", err)
	}

	if err := store.DeleteRecord(ctx, "rec-1"); err != nil {
		t.Fatalf("Failed to delete record: %v", err)
	}

	got, err := store.GetRecordByID(ctx, "rec-1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != nil {
		t.Error("Expected record to be gone after delete")
	}

	// Deleting again is not an error.
	if err := store.DeleteRecord(ctx, "rec-1"); err != nil {
		t.Errorf("Repeated delete should succeed, got %v", err)
	}
}

func TestSQLiteStorage_ListRecordsFilters(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	july := time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)
	august := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)

	records := []*model.LedgerRecord{
		testExpense("rec-1", "acc-1", "10", july),
		testExpense("rec-2", "acc-2", "20", august),
	}
	income := model.NewIncome("acc-1", "Salary", decimal.RequireFromString("1000"), august, "payday")
	income.ID = "rec-3"
	transfer := model.NewTransfer("acc-1", "acc-2", decimal.RequireFromString("50"), august, "move")
	transfer.ID = "rec-4"
	records = append(records, income, transfer)

	for _, rec := range records {
		if err := store.SaveRecord(ctx, rec); err != nil {
			t.Fatalf("Failed to save %s: %v", rec.ID, err)
		}
	}

	tests := []struct {
		name    string
		filter  service.RecordFilter
		wantIDs map[string]bool
	}{
		{
			name:    "no filter returns everything",
			filter:  service.RecordFilter{},
			wantIDs: map[string]bool{"rec-1": true, "rec-2": true, "rec-3": true, "rec-4": true},
		},
		{
			name: "date range selects one month",
			filter: service.RecordFilter{
				StartDate: timePtr(time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)),
				EndDate:   timePtr(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)),
			},
			wantIDs: map[string]bool{"rec-2": true, "rec-3": true, "rec-4": true},
		},
		{
			name:   "account filter matches transfer endpoints",
			filter: service.RecordFilter{AccountID: "acc-2"},
			wantIDs: map[string]bool{
				"rec-2": true,
				"rec-4": true, // transfer references acc-2 as destination
			},
		},
		{
			name:    "category filter",
			filter:  service.RecordFilter{Category: "Salary"},
			wantIDs: map[string]bool{"rec-3": true},
		},
		{
			name:    "type filter",
			filter:  service.RecordFilter{Type: model.RecordTypeTransfer},
			wantIDs: map[string]bool{"rec-4": true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.ListRecords(ctx, tt.filter)
			if err != nil {
				t.Fatalf("Failed to list records: %v", err)
			}
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("Expected %d records, got %d", len(tt.wantIDs), len(got))
			}
			for _, rec := range got {
				if !tt.wantIDs[rec.ID] {
					t.Errorf("Unexpected record %s in result", rec.ID)
				}
			}
		})
	}
}

func TestSQLiteStorage_ListRecordsOrderAndLimit(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		rec := testExpense(string(rune('a'+i)), "acc-1", "10", base.AddDate(0, 0, i))
		if err := store.SaveRecord(ctx, rec); err != nil {
			t.Fatalf("Failed to save: %v", err)
		}
	}

	got, err := store.ListRecords(ctx, service.RecordFilter{Limit: 2})
	if err != nil {
		t.Fatalf("Failed to list records: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(got))
	}
	// Newest first.
	if got[0].ID != "e" || got[1].ID != "d" {
		t.Errorf("Expected [e d], got [%s %s]", got[0].ID, got[1].ID)
	}

	got, err = store.ListRecords(ctx, service.RecordFilter{Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("Failed to list with offset: %v", err)
	}
	if len(got) != 2 || got[0].ID != "c" {
		t.Errorf("Expected offset page starting at c, got %+v", got)
	}
}

func TestSQLiteStorage_ListRecordsInvalidDateRange(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	_, err := store.ListRecords(context.Background(), service.RecordFilter{
		StartDate: timePtr(time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)),
		EndDate:   timePtr(time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)),
	})
	if !errors.Is(err, ErrInvalidDateRange) {
		t.Errorf("Expected ErrInvalidDateRange, got %v", err)
	}
}

func TestSQLiteStorage_TransferRoundTrip(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	transfer := model.NewTransfer("acc-1", "acc-2", decimal.RequireFromString("75.25"),
		time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC), "savings")
	if err := store.SaveRecord(ctx, transfer); err != nil {
		t.Fatalf("Failed to save transfer: %v", err)
	}

	got, err := store.GetRecordByID(ctx, transfer.ID)
	if err != nil {
		t.Fatalf("Failed to get transfer: %v", err)
	}
	if got.FromAccountID != "acc-1" || got.ToAccountID != "acc-2" {
		t.Errorf("Transfer endpoints lost: %s -> %s", got.FromAccountID, got.ToAccountID)
	}
	if got.AccountID != "" || got.Category != "" {
		t.Errorf("Single-account fields should stay empty, got %q / %q", got.AccountID, got.Category)
	}
}

func timePtr(t time.Time) *time.Time {
	return &t
}
