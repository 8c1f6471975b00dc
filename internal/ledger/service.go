// Package ledger implements the ledger record editor: it validates proposed
// records, snapshots the implicated account balances, asks the reconcile
// planner for the balance deltas, and applies them in a fixed order before
// persisting the record.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Mohamed-apdi/expenditure-core/internal/common"
	"github.com/Mohamed-apdi/expenditure-core/internal/model"
	"github.com/Mohamed-apdi/expenditure-core/internal/reconcile"
	"github.com/Mohamed-apdi/expenditure-core/internal/service"
)

// Service coordinates reconciliation against a Storage.
type Service struct {
	store service.Storage
}

// New creates a ledger service backed by the given storage.
func New(store service.Storage) *Service {
	return &Service{store: store}
}

// CreateRecord applies a new record's balance effects and persists it.
func (s *Service) CreateRecord(ctx context.Context, rec *model.LedgerRecord) error {
	if rec == nil {
		return fmt.Errorf("%w: record is nil", common.ErrValidation)
	}
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}

	existing, err := s.store.GetRecordByID(ctx, rec.ID)
	if err != nil {
		return persistErr("load record", err)
	}
	if existing != nil {
		return fmt.Errorf("%w: ledger record %s", common.ErrDuplicateEntry, rec.ID)
	}

	stampVersion(rec, time.Time{})

	snap, err := s.snapshot(ctx, rec.Accounts())
	if err != nil {
		return err
	}
	if err := s.discountApplied(ctx, snap, rec); err != nil {
		return err
	}

	plan, err := reconcile.PlanCreate(rec, snap)
	if err != nil {
		return err
	}

	return s.apply(ctx, plan, applySave)
}

// EditRecord replaces a stored record with the updated version after
// reconciling the balance difference. The updated record keeps the stored
// record's ID and creation time; every other field may change, including the
// type and the referenced accounts.
func (s *Service) EditRecord(ctx context.Context, updated *model.LedgerRecord) error {
	if updated == nil || updated.ID == "" {
		return fmt.Errorf("%w: record ID is required", common.ErrValidation)
	}

	old, err := s.store.GetRecordByID(ctx, updated.ID)
	if err != nil {
		return persistErr("load record", err)
	}
	if old == nil {
		return fmt.Errorf("%w: ledger record %s", common.ErrNotFound, updated.ID)
	}

	updated.CreatedAt = old.CreatedAt
	stampVersion(updated, old.UpdatedAt)

	snap, err := s.snapshot(ctx, union(old.Accounts(), updated.Accounts()))
	if err != nil {
		return err
	}
	if err := s.discountApplied(ctx, snap, updated); err != nil {
		return err
	}

	plan, err := reconcile.PlanEdit(old, updated, snap)
	if err != nil {
		return err
	}

	return s.apply(ctx, plan, applySave)
}

// DeleteRecord reverses a stored record's balance effects and removes it.
func (s *Service) DeleteRecord(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: record ID is required", common.ErrValidation)
	}

	rec, err := s.store.GetRecordByID(ctx, id)
	if err != nil {
		return persistErr("load record", err)
	}
	if rec == nil {
		return fmt.Errorf("%w: ledger record %s", common.ErrNotFound, id)
	}

	plan, err := reconcile.PlanDelete(rec)
	if err != nil {
		return err
	}

	return s.apply(ctx, plan, applyDelete)
}

// GetRecord loads a record by ID.
func (s *Service) GetRecord(ctx context.Context, id string) (*model.LedgerRecord, error) {
	rec, err := s.store.GetRecordByID(ctx, id)
	if err != nil {
		return nil, persistErr("load record", err)
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: ledger record %s", common.ErrNotFound, id)
	}
	return rec, nil
}

// ListRecords returns records matching the filter.
func (s *Service) ListRecords(ctx context.Context, filter service.RecordFilter) ([]model.LedgerRecord, error) {
	records, err := s.store.ListRecords(ctx, filter)
	if err != nil {
		return nil, persistErr("list records", err)
	}
	return records, nil
}

type applyMode int

const (
	applySave applyMode = iota
	applyDelete
)

// apply issues the plan's balance adjustments in plan order and then
// persists (or deletes) the record. Each storage call is atomic on its own;
// there is no cross-call transaction. A failure mid-sequence surfaces as a
// retryable persistence error, and replaying the same plan is safe because
// every adjustment carries an idempotency key derived from the record ID and
// its stamped version.
func (s *Service) apply(ctx context.Context, plan *reconcile.Plan, mode applyMode) error {
	rec := plan.Record

	for _, d := range plan.Deltas {
		key := mutationKey(rec, d.AccountID, mode)
		if err := s.store.AdjustBalance(ctx, d.AccountID, d.Amount, key); err != nil {
			return persistErr(fmt.Sprintf("adjust balance of account %s", d.AccountID), err)
		}
	}

	switch mode {
	case applySave:
		if err := s.store.SaveRecord(ctx, rec); err != nil {
			return persistErr("save record", err)
		}
	case applyDelete:
		if err := s.store.DeleteRecord(ctx, rec.ID); err != nil {
			return persistErr("delete record", err)
		}
	}

	slog.Debug("applied ledger plan",
		"record", rec.ID,
		"type", rec.Type,
		"adjustments", len(plan.Deltas))
	return nil
}

// discountApplied backs out of the snapshot any adjustment of this record
// version that is already journaled. After a mid-sequence failure the stored
// balances include the deltas that landed before the failure; planning a
// retry against those balances would count them twice — the funds check in
// particular would see the transfer's own debit as missing money and refuse
// a retry it must allow.
func (s *Service) discountApplied(ctx context.Context, snap reconcile.Snapshot, rec *model.LedgerRecord) error {
	for id := range snap {
		applied, err := s.store.GetBalanceMutation(ctx, mutationKey(rec, id, applySave))
		if err != nil {
			return persistErr("load balance mutation", err)
		}
		if applied != nil {
			snap[id] = snap[id].Sub(*applied)
		}
	}
	return nil
}

func (s *Service) snapshot(ctx context.Context, accountIDs []string) (reconcile.Snapshot, error) {
	snap := make(reconcile.Snapshot, len(accountIDs))
	for _, id := range accountIDs {
		account, err := s.store.GetAccount(ctx, id)
		if err != nil {
			return nil, persistErr("load account", err)
		}
		if account == nil {
			return nil, fmt.Errorf("%w: unknown account %s", common.ErrValidation, id)
		}
		snap[id] = account.Balance
	}
	return snap, nil
}

// stampVersion assigns the record version used in idempotency keys. The
// version must strictly exceed the stored record's, and a record that was
// already stamped by a previous attempt keeps its stamp so a retry reuses
// the same keys.
func stampVersion(rec *model.LedgerRecord, prior time.Time) {
	if rec.UpdatedAt.After(prior) {
		return
	}
	now := time.Now().UTC()
	if !now.After(prior) {
		now = prior.Add(time.Nanosecond)
	}
	rec.UpdatedAt = now
}

func mutationKey(rec *model.LedgerRecord, accountID string, mode applyMode) string {
	if mode == applyDelete {
		return fmt.Sprintf("del:%s:%d:%s", rec.ID, rec.UpdatedAt.UnixNano(), accountID)
	}
	return fmt.Sprintf("%s:%d:%s", rec.ID, rec.UpdatedAt.UnixNano(), accountID)
}

func persistErr(stage string, err error) error {
	return &common.RetryableError{
		Retryable: true,
		Err:       fmt.Errorf("%w: %s: %v", common.ErrPersistence, stage, err),
	}
}

func union(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	var ids []string
	for _, id := range append(a, b...) {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}
