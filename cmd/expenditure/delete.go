package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Mohamed-apdi/expenditure-core/internal/cli"
	"github.com/Mohamed-apdi/expenditure-core/internal/ledger"
)

func deleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <record-id>",
		Short: "Delete a ledger record",
		Long: `Delete a ledger record. Its balance effect is symmetrically reversed
on the implicated accounts before the record is removed.`,
		Args: cobra.ExactArgs(1),
		RunE: runDelete,
	}

	cmd.Flags().Bool("yes", false, "delete without confirmation")
	cmd.Flags().Bool("retry", false, "retry on persistence failures")

	return cmd
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

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

	yes, _ := cmd.Flags().GetBool("yes")
	if !yes {
		prompt := fmt.Sprintf("Delete %s of %s dated %s?", rec.Type, rec.Amount.StringFixed(2), rec.Date.Format(dateLayout))
		confirm, promptErr := promptYesNo(prompt)
		if promptErr != nil {
			return fmt.Errorf("failed to get confirmation: %w", promptErr)
		}
		if !confirm {
			fmt.Println("Aborted.") //nolint:forbidigo // User-facing output
			return nil
		}
	}

	retry, _ := cmd.Flags().GetBool("retry")
	if err := runWithRetry(ctx, retry, func() error {
		return svc.DeleteRecord(ctx, rec.ID)
	}); err != nil {
		return err
	}

	fmt.Println(cli.FormatSuccess("✓ Record deleted and balances restored")) //nolint:forbidigo // User-facing output
	return nil
}
