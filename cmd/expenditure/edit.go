package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Mohamed-apdi/expenditure-core/internal/cli"
	"github.com/Mohamed-apdi/expenditure-core/internal/common"
	"github.com/Mohamed-apdi/expenditure-core/internal/ledger"
	"github.com/Mohamed-apdi/expenditure-core/internal/model"
)

func editCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <record-id>",
		Short: "Edit an existing ledger record",
		Long: `Edit an existing ledger record. Only the provided flags change; every
other field keeps its current value. The balance difference between the old
and new state is reconciled on the implicated accounts: the old effect is
fully reversed and the new effect applied, even when the accounts change.`,
		Args: cobra.ExactArgs(1),
		RunE: runEdit,
	}

	cmd.Flags().String("type", "", "record type (expense, income, transfer)")
	cmd.Flags().String("amount", "", "new amount")
	cmd.Flags().String("account", "", "new account ID (expense/income)")
	cmd.Flags().String("category", "", "new category (expense/income)")
	cmd.Flags().String("from", "", "new source account ID (transfer)")
	cmd.Flags().String("to", "", "new destination account ID (transfer)")
	cmd.Flags().String("date", "", "new date as YYYY-MM-DD")
	cmd.Flags().String("description", "", "new description")
	cmd.Flags().Bool("yes", false, "apply without confirmation")
	cmd.Flags().Bool("retry", false, "retry on persistence failures")

	return cmd
}

func runEdit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	flags := cmd.Flags()

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("failed to close storage", "error", closeErr)
		}
	}()

	svc := ledger.New(store)

	rec, err := svc.GetRecord(ctx, args[0])
	if err != nil {
		return err
	}
	updated := *rec

	if flags.Changed("type") {
		typeStr, _ := flags.GetString("type")
		if err := changeType(&updated, model.RecordType(typeStr), flags.Changed("from") && flags.Changed("to"), flags.Changed("account") && flags.Changed("category")); err != nil {
			return err
		}
	}

	if flags.Changed("amount") {
		amountStr, _ := flags.GetString("amount")
		amount, amtErr := parseAmount(amountStr)
		if amtErr != nil {
			return amtErr
		}
		updated.Amount = amount
	}
	if flags.Changed("date") {
		dateStr, _ := flags.GetString("date")
		date, dateErr := parseDate(dateStr)
		if dateErr != nil {
			return dateErr
		}
		updated.Date = date
	}
	if flags.Changed("description") {
		updated.Description, _ = flags.GetString("description")
	}
	if flags.Changed("category") {
		updated.Category, _ = flags.GetString("category")
	}
	if flags.Changed("account") {
		updated.AccountID, _ = flags.GetString("account")
	}
	if flags.Changed("from") {
		updated.FromAccountID, _ = flags.GetString("from")
	}
	if flags.Changed("to") {
		updated.ToAccountID, _ = flags.GetString("to")
	}

	fmt.Println(cli.FormatTitle("Edit Ledger Record")) //nolint:forbidigo // User-facing output
	printRecordDiff(rec, &updated)

	yes, _ := flags.GetBool("yes")
	if !yes {
		confirm, promptErr := promptYesNo("Save changes?")
		if promptErr != nil {
			return fmt.Errorf("failed to get confirmation: %w", promptErr)
		}
		if !confirm {
			fmt.Println("Changes discarded.") //nolint:forbidigo // User-facing output
			return nil
		}
	}

	retry, _ := flags.GetBool("retry")
	if err := runWithRetry(ctx, retry, func() error {
		return svc.EditRecord(ctx, &updated)
	}); err != nil {
		return err
	}

	fmt.Println(cli.FormatSuccess("✓ Record updated")) //nolint:forbidigo // User-facing output
	return nil
}

// changeType switches a record between variants, clearing the fields of the
// variant being left behind. Moving to or from the transfer variant requires
// the flags of the target variant so the record stays complete.
func changeType(rec *model.LedgerRecord, newType model.RecordType, haveTransferAccounts, haveSingleAccount bool) error {
	if rec.Type == newType {
		return nil
	}

	switch newType {
	case model.RecordTypeIncome, model.RecordTypeExpense:
		if rec.IsTransfer() {
			if !haveSingleAccount {
				return fmt.Errorf("%w: changing a transfer to %s requires --account and --category", common.ErrValidation, newType)
			}
			rec.FromAccountID = ""
			rec.ToAccountID = ""
		}
		rec.Type = newType
	case model.RecordTypeTransfer:
		if !haveTransferAccounts {
			return fmt.Errorf("%w: changing to a transfer requires --from and --to", common.ErrValidation)
		}
		rec.AccountID = ""
		rec.Category = ""
		rec.Type = newType
	default:
		return fmt.Errorf("%w: unknown record type %q", common.ErrValidation, newType)
	}

	return nil
}

func printRecordDiff(old, updated *model.LedgerRecord) {
	printChange := func(label, before, after string) {
		if before == after {
			return
		}
		fmt.Printf("  %s: %s → %s\n", label, before, after) //nolint:forbidigo // User-facing output
	}

	printChange("Type", string(old.Type), string(updated.Type))
	printChange("Amount", old.Amount.StringFixed(2), updated.Amount.StringFixed(2))
	printChange("Date", old.Date.Format(dateLayout), updated.Date.Format(dateLayout))
	printChange("Description", old.Description, updated.Description)
	printChange("Category", old.Category, updated.Category)
	printChange("Account", old.AccountID, updated.AccountID)
	printChange("From", old.FromAccountID, updated.FromAccountID)
	printChange("To", old.ToAccountID, updated.ToAccountID)
}
