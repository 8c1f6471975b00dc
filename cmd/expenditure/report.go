package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/Mohamed-apdi/expenditure-core/internal/cli"
	"github.com/Mohamed-apdi/expenditure-core/internal/model"
	"github.com/Mohamed-apdi/expenditure-core/internal/report"
	"github.com/Mohamed-apdi/expenditure-core/internal/storage"
)

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summaries, budget performance, and forecasts",
	}

	cmd.AddCommand(reportMonthCmd())
	cmd.AddCommand(reportCategoriesCmd())
	cmd.AddCommand(reportBudgetCmd())
	cmd.AddCommand(reportForecastCmd())

	return cmd
}

func reportMonthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "month [YYYY-MM]",
		Short: "Income, expense, and transfer totals for one month",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			month := time.Now().UTC().Format(model.MonthLayout)
			if len(args) == 1 {
				month = args[0]
			}

			return withReportService(cmd, func(svc *report.Service) error {
				summary, err := svc.MonthlySummary(cmd.Context(), month)
				if err != nil {
					return err
				}

				fmt.Println(cli.FormatTitle(fmt.Sprintf("Summary for %s", summary.Month)))       //nolint:forbidigo // User-facing output
				fmt.Printf("  Income:    %s\n", cli.FormatBalance(summary.Income))               //nolint:forbidigo // User-facing output
				fmt.Printf("  Expenses:  %s\n", cli.FormatBalance(summary.Expenses.Neg()))       //nolint:forbidigo // User-facing output
				fmt.Printf("  Net:       %s\n", cli.FormatBalance(summary.Net))                  //nolint:forbidigo // User-facing output
				fmt.Printf("  Transfers: %s moved between accounts\n", summary.Transfers.String()) //nolint:forbidigo // User-facing output
				return nil
			})
		},
	}
}

func reportCategoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Expense totals per category over a date range",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fromStr, _ := cmd.Flags().GetString("from")
			toStr, _ := cmd.Flags().GetString("to")

			from, err := parseDate(fromStr)
			if err != nil {
				return err
			}
			to, err := parseDate(toStr)
			if err != nil {
				return err
			}

			return withReportService(cmd, func(svc *report.Service) error {
				totals, err := svc.CategoryBreakdown(cmd.Context(), from, to)
				if err != nil {
					return err
				}

				fmt.Println(cli.FormatTitle("Spending by category")) //nolint:forbidigo // User-facing output
				for _, t := range totals {
					fmt.Printf("  %-24s %s\n", t.Category, t.Total.StringFixed(2)) //nolint:forbidigo // User-facing output
				}
				return nil
			})
		},
	}

	cmd.Flags().String("from", "", "start date (YYYY-MM-DD, required)")
	cmd.Flags().String("to", "", "end date (YYYY-MM-DD, exclusive; default: today)")
	_ = cmd.MarkFlagRequired("from")

	return cmd
}

func reportBudgetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "budget [YYYY-MM]",
		Short: "Budget performance for one month",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			month := time.Now().UTC().Format(model.MonthLayout)
			if len(args) == 1 {
				month = args[0]
			}

			return withReportService(cmd, func(svc *report.Service) error {
				statuses, err := svc.BudgetPerformance(cmd.Context(), month)
				if err != nil {
					return err
				}
				if len(statuses) == 0 {
					fmt.Printf("No budgets set for %s.\n", month) //nolint:forbidigo // User-facing output
					return nil
				}

				fmt.Println(cli.FormatTitle(fmt.Sprintf("Budgets for %s", month))) //nolint:forbidigo // User-facing output
				for _, st := range statuses {
					line := fmt.Sprintf("  %-24s spent %s of %s (remaining %s)",
						st.Category, st.Spent.StringFixed(2), st.Limit.StringFixed(2), st.Remaining.StringFixed(2))
					if st.Over {
						line = cli.FormatWarning(line + "  OVER BUDGET")
					}
					fmt.Println(line) //nolint:forbidigo // User-facing output
				}
				return nil
			})
		},
	}
}

func reportForecastCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Predict next month's expenses from recent history",
		RunE: func(cmd *cobra.Command, _ []string) error {
			months, _ := cmd.Flags().GetInt("months")

			return withReportService(cmd, func(svc *report.Service) error {
				forecast, err := svc.ForecastNextMonth(cmd.Context(), time.Now().UTC(), months)
				if err != nil {
					return err
				}

				fmt.Printf("Projected expenses next month: %s (mean of last %d months)\n", //nolint:forbidigo // User-facing output
					forecast.StringFixed(2), months)
				return nil
			})
		},
	}

	cmd.Flags().Int("months", 3, "number of past months to average")

	return cmd
}

func withReportService(cmd *cobra.Command, fn func(*report.Service) error) error {
	store, err := initStorage(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func(store *storage.SQLiteStorage) {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("failed to close storage", "error", closeErr)
		}
	}(store)

	return fn(report.New(store))
}
