package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/Mohamed-apdi/expenditure-core/internal/cli"
	"github.com/Mohamed-apdi/expenditure-core/internal/common"
	"github.com/Mohamed-apdi/expenditure-core/internal/ledger"
	"github.com/Mohamed-apdi/expenditure-core/internal/ofx"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file.ofx>",
		Short: "Import an OFX/QFX bank statement into an account",
		Long: `Import an OFX/QFX bank statement into an account. Each statement row
becomes an expense or income record and adjusts the account balance through
the normal reconciliation path. Rows already imported (same FITID) are
skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: runImport,
	}

	cmd.Flags().String("account", "", "account ID to import into (required)")
	cmd.Flags().Bool("retry", false, "retry rows that fail with persistence errors")
	_ = cmd.MarkFlagRequired("account")

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	accountID, _ := cmd.Flags().GetString("account")
	retry, _ := cmd.Flags().GetBool("retry")

	file, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open statement file: %w", err)
	}
	defer func() { _ = file.Close() }()

	records, err := ofx.NewParser().ParseFile(ctx, file, accountID)
	if err != nil {
		return fmt.Errorf("failed to parse statement: %w", err)
	}
	if len(records) == 0 {
		fmt.Println("No transactions found in statement.") //nolint:forbidigo // User-facing output
		return nil
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

	bar := progressbar.NewOptions(len(records),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Importing statement..."),
	)

	var imported, skipped, failed int
	for _, rec := range records {
		err := runWithRetry(ctx, retry, func() error {
			return svc.CreateRecord(ctx, rec)
		})
		switch {
		case err == nil:
			imported++
		case errors.Is(err, common.ErrDuplicateEntry):
			skipped++
		default:
			failed++
			slog.Warn("failed to import statement row",
				"record", rec.ID,
				"error", err)
		}
		_ = bar.Add(1)
	}
	fmt.Println() //nolint:forbidigo // User-facing output

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("✓ Imported %d records (%d duplicates skipped, %d failed)", //nolint:forbidigo // User-facing output
		imported, skipped, failed)))

	if failed > 0 {
		return fmt.Errorf("%d statement rows failed to import", failed)
	}
	return nil
}
