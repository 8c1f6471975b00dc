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

func addCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record an expense or income",
		Long: `Record an expense or income against an account. The account's
balance is adjusted as part of the same operation.`,
		RunE: runAdd,
	}

	cmd.Flags().String("type", string(model.RecordTypeExpense), "record type (expense, income)")
	cmd.Flags().String("account", "", "account ID (required)")
	cmd.Flags().String("amount", "", "amount, e.g. 12.50 (required)")
	cmd.Flags().String("category", "", "category (required)")
	cmd.Flags().String("date", "", "date as YYYY-MM-DD (default: today)")
	cmd.Flags().String("description", "", "free-form description")
	cmd.Flags().Bool("retry", false, "retry on persistence failures")
	_ = cmd.MarkFlagRequired("account")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

func runAdd(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	recordType, _ := cmd.Flags().GetString("type")
	accountID, _ := cmd.Flags().GetString("account")
	amountStr, _ := cmd.Flags().GetString("amount")
	category, _ := cmd.Flags().GetString("category")
	dateStr, _ := cmd.Flags().GetString("date")
	description, _ := cmd.Flags().GetString("description")
	retry, _ := cmd.Flags().GetBool("retry")

	amount, err := parseAmount(amountStr)
	if err != nil {
		return err
	}
	date, err := parseDate(dateStr)
	if err != nil {
		return err
	}

	var rec *model.LedgerRecord
	switch model.RecordType(recordType) {
	case model.RecordTypeExpense:
		rec = model.NewExpense(accountID, category, amount, date, description)
	case model.RecordTypeIncome:
		rec = model.NewIncome(accountID, category, amount, date, description)
	default:
		return fmt.Errorf("%w: type must be expense or income, got %q (use 'transfer' for transfers)", common.ErrValidation, recordType)
	}

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
	if err := runWithRetry(ctx, retry, func() error {
		return svc.CreateRecord(ctx, rec)
	}); err != nil {
		return err
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("✓ Recorded %s of %s (%s)", rec.Type, rec.Amount.StringFixed(2), rec.ID))) //nolint:forbidigo // User-facing output
	return nil
}
