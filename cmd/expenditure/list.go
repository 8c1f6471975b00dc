package main

import (
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Mohamed-apdi/expenditure-core/internal/cli"
	"github.com/Mohamed-apdi/expenditure-core/internal/ledger"
	"github.com/Mohamed-apdi/expenditure-core/internal/model"
	"github.com/Mohamed-apdi/expenditure-core/internal/service"
)

func listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List ledger records",
		RunE:  runList,
	}

	cmd.Flags().String("account", "", "filter by account ID")
	cmd.Flags().String("category", "", "filter by category")
	cmd.Flags().String("type", "", "filter by record type (expense, income, transfer)")
	cmd.Flags().String("from", "", "start date (YYYY-MM-DD, inclusive)")
	cmd.Flags().String("to", "", "end date (YYYY-MM-DD, exclusive)")
	cmd.Flags().Int("limit", 50, "maximum number of records")

	return cmd
}

func runList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	filter, err := buildFilter(cmd)
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

	records, err := ledger.New(store).ListRecords(ctx, filter)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Println("No matching records.") //nolint:forbidigo // User-facing output
		return nil
	}

	for _, rec := range records {
		fmt.Printf("%s  %s  %-8s %10s  %s\n", //nolint:forbidigo // User-facing output
			rec.ID,
			rec.Date.Format(dateLayout),
			rec.Type,
			cli.FormatBalance(signedAmount(&rec)),
			describeRecord(&rec))
	}

	return nil
}

func buildFilter(cmd *cobra.Command) (service.RecordFilter, error) {
	flags := cmd.Flags()

	var filter service.RecordFilter
	filter.AccountID, _ = flags.GetString("account")
	filter.Category, _ = flags.GetString("category")
	filter.Limit, _ = flags.GetInt("limit")

	if typeStr, _ := flags.GetString("type"); typeStr != "" {
		filter.Type = model.RecordType(typeStr)
	}
	if fromStr, _ := flags.GetString("from"); fromStr != "" {
		from, err := parseDate(fromStr)
		if err != nil {
			return filter, err
		}
		filter.StartDate = &from
	}
	if toStr, _ := flags.GetString("to"); toStr != "" {
		to, err := parseDate(toStr)
		if err != nil {
			return filter, err
		}
		filter.EndDate = &to
	}

	return filter, nil
}

// signedAmount renders expenses as negative for display.
func signedAmount(rec *model.LedgerRecord) decimal.Decimal {
	if rec.Type == model.RecordTypeExpense {
		return rec.Amount.Neg()
	}
	return rec.Amount
}

func describeRecord(rec *model.LedgerRecord) string {
	switch rec.Type {
	case model.RecordTypeTransfer:
		return fmt.Sprintf("%s → %s  %s", rec.FromAccountID, rec.ToAccountID, rec.Description)
	default:
		return fmt.Sprintf("%s  [%s]  %s", rec.AccountID, rec.Category, rec.Description)
	}
}
