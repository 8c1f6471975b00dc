package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Mohamed-apdi/expenditure-core/internal/cli"
	"github.com/Mohamed-apdi/expenditure-core/internal/common"
	"github.com/Mohamed-apdi/expenditure-core/internal/ledger"
	"github.com/Mohamed-apdi/expenditure-core/internal/model"
)

func transferCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Move money between two accounts",
		Long: `Move money between two accounts. The transfer is rejected with an
insufficient-funds error if the amount exceeds the source balance.`,
		RunE: runTransfer,
	}

	cmd.Flags().String("from", "", "source account ID (required)")
	cmd.Flags().String("to", "", "destination account ID (required)")
	cmd.Flags().String("amount", "", "amount, e.g. 100.00 (required)")
	cmd.Flags().String("date", "", "date as YYYY-MM-DD (default: today)")
	cmd.Flags().String("description", "", "free-form description")
	cmd.Flags().Bool("retry", false, "retry on persistence failures")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func runTransfer(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	amountStr, _ := cmd.Flags().GetString("amount")
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

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("failed to close storage", "error", closeErr)
		}
	}()

	rec := model.NewTransfer(from, to, amount, date, description)

	svc := ledger.New(store)
	if err := runWithRetry(ctx, retry, func() error {
		return svc.CreateRecord(ctx, rec)
	}); err != nil {
		if errors.Is(err, common.ErrInsufficientFunds) {
			return common.NewUserError(
				fmt.Sprintf("Transfer rejected: account %s does not hold %s", from, amount.StringFixed(2)), err)
		}
		return err
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("✓ Transferred %s (%s)", rec.Amount.StringFixed(2), rec.ID))) //nolint:forbidigo // User-facing output
	return nil
}
