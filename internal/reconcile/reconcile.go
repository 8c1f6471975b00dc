// Package reconcile computes the account-balance deltas implied by creating,
// editing, or deleting a ledger record.
//
// The planner is pure: it owns no state and performs no I/O. Given the prior
// and proposed state of a record plus a snapshot of current balances, it
// produces the signed per-account adjustments that move the system from "old
// record applied" to "new record applied". Edits always reverse the complete
// old effect and apply the complete new effect, merged per account, so an
// edit that changes which accounts are involved never strands the old
// effect on a previously selected account.
package reconcile

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/Mohamed-apdi/expenditure-core/internal/common"
	"github.com/Mohamed-apdi/expenditure-core/internal/model"
)

// Delta is a signed adjustment to one account's balance.
type Delta struct {
	AccountID string
	Amount    decimal.Decimal
}

// Plan is the outcome of reconciliation: the adjustments to apply, in a
// deterministic order, and the record to persist afterwards.
type Plan struct {
	Record *model.LedgerRecord
	Deltas []Delta
}

// Snapshot maps account IDs to their current balances. It must cover every
// account referenced by the records being reconciled.
type Snapshot map[string]decimal.Decimal

// Effects returns the signed per-account effect of a record as written:
// an expense decreases its account, an income increases it, and a transfer
// decreases the source and increases the destination.
func Effects(rec *model.LedgerRecord) []Delta {
	switch rec.Type {
	case model.RecordTypeIncome:
		return []Delta{{AccountID: rec.AccountID, Amount: rec.Amount}}
	case model.RecordTypeExpense:
		return []Delta{{AccountID: rec.AccountID, Amount: rec.Amount.Neg()}}
	case model.RecordTypeTransfer:
		return []Delta{
			{AccountID: rec.FromAccountID, Amount: rec.Amount.Neg()},
			{AccountID: rec.ToAccountID, Amount: rec.Amount},
		}
	}
	return nil
}

// PlanCreate plans the application of a new record.
func PlanCreate(rec *model.LedgerRecord, snap Snapshot) (*Plan, error) {
	if err := rec.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	if err := snap.covers(rec.Accounts()); err != nil {
		return nil, err
	}

	deltas := merge(Effects(rec))
	if err := checkFunds(rec, deltas, snap); err != nil {
		return nil, err
	}

	return &Plan{Record: rec, Deltas: deltas}, nil
}

// PlanDelete plans the symmetric reversal of an applied record.
func PlanDelete(rec *model.LedgerRecord) (*Plan, error) {
	if err := rec.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	return &Plan{Record: rec, Deltas: merge(invert(Effects(rec)))}, nil
}

// PlanEdit plans the replacement of old by updated: the complete old effect
// is reversed and the complete new effect applied, merged per account with
// zero-valued adjustments elided. Editing a record back to its prior state
// therefore restores the exact prior balances, and a no-op edit produces no
// adjustments at all.
func PlanEdit(old, updated *model.LedgerRecord, snap Snapshot) (*Plan, error) {
	if old.ID != updated.ID {
		return nil, fmt.Errorf("%w: record ID changed from %s to %s", common.ErrValidation, old.ID, updated.ID)
	}
	if err := updated.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	if err := snap.covers(old.Accounts()); err != nil {
		return nil, err
	}
	if err := snap.covers(updated.Accounts()); err != nil {
		return nil, err
	}

	deltas := merge(append(invert(Effects(old)), Effects(updated)...))
	if err := checkFunds(updated, deltas, snap); err != nil {
		return nil, err
	}

	return &Plan{Record: updated, Deltas: deltas}, nil
}

// checkFunds rejects a transfer whose source account would be driven below
// zero by the plan. The projection includes the reversal of the old effect,
// so raising a transfer's own amount is checked against the balance the
// source would have once the old transfer is backed out. Expenses are not
// gated; overdraft is legal for them.
func checkFunds(rec *model.LedgerRecord, deltas []Delta, snap Snapshot) error {
	if !rec.IsTransfer() {
		return nil
	}

	projected := snap[rec.FromAccountID]
	for _, d := range deltas {
		if d.AccountID == rec.FromAccountID {
			projected = projected.Add(d.Amount)
		}
	}

	if projected.IsNegative() {
		return fmt.Errorf("%w: transfer of %s would leave account %s at %s",
			common.ErrInsufficientFunds, rec.Amount, rec.FromAccountID, projected)
	}
	return nil
}

func (s Snapshot) covers(accountIDs []string) error {
	for _, id := range accountIDs {
		if _, ok := s[id]; !ok {
			return fmt.Errorf("%w: no balance snapshot for account %s", common.ErrValidation, id)
		}
	}
	return nil
}

func invert(deltas []Delta) []Delta {
	inverted := make([]Delta, len(deltas))
	for i, d := range deltas {
		inverted[i] = Delta{AccountID: d.AccountID, Amount: d.Amount.Neg()}
	}
	return inverted
}

// merge sums deltas per account, drops the ones that net to zero, and orders
// the rest by account ID so plans apply in a deterministic sequence.
func merge(deltas []Delta) []Delta {
	totals := make(map[string]decimal.Decimal, len(deltas))
	for _, d := range deltas {
		totals[d.AccountID] = totals[d.AccountID].Add(d.Amount)
	}

	merged := make([]Delta, 0, len(totals))
	for id, amount := range totals {
		if amount.IsZero() {
			continue
		}
		merged = append(merged, Delta{AccountID: id, Amount: amount})
	}

	sort.Slice(merged, func(i, j int) bool {
		return merged[i].AccountID < merged[j].AccountID
	})
	return merged
}
