package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/Mohamed-apdi/expenditure-core/internal/cli"
	"github.com/Mohamed-apdi/expenditure-core/internal/model"
)

func budgetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Manage monthly category budgets",
	}

	cmd.AddCommand(budgetSetCmd())
	cmd.AddCommand(budgetListCmd())

	return cmd
}

func budgetSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set the spending limit for a category and month",
		RunE:  runBudgetSet,
	}

	cmd.Flags().String("category", "", "category name (required)")
	cmd.Flags().String("month", "", "month as YYYY-MM (default: current month)")
	cmd.Flags().String("limit", "", "spending limit (required)")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("limit")

	return cmd
}

func budgetListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List budgets for a month",
		RunE:  runBudgetList,
	}

	cmd.Flags().String("month", "", "month as YYYY-MM (default: current month)")

	return cmd
}

func runBudgetSet(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	category, _ := cmd.Flags().GetString("category")
	month, _ := cmd.Flags().GetString("month")
	limitStr, _ := cmd.Flags().GetString("limit")

	if month == "" {
		month = time.Now().UTC().Format(model.MonthLayout)
	}
	limit, err := parseAmount(limitStr)
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

	budget := &model.Budget{Category: category, Month: month, Limit: limit}
	if err := store.UpsertBudget(ctx, budget); err != nil {
		return fmt.Errorf("failed to save budget: %w", err)
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("✓ Budget for %s in %s set to %s", category, month, limit.StringFixed(2)))) //nolint:forbidigo // User-facing output
	return nil
}

func runBudgetList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	month, _ := cmd.Flags().GetString("month")
	if month == "" {
		month = time.Now().UTC().Format(model.MonthLayout)
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

	budgets, err := store.GetBudgets(ctx, month)
	if err != nil {
		return fmt.Errorf("failed to list budgets: %w", err)
	}

	if len(budgets) == 0 {
		fmt.Printf("No budgets set for %s.\n", month) //nolint:forbidigo // User-facing output
		return nil
	}

	fmt.Println(cli.FormatTitle(fmt.Sprintf("Budgets for %s", month))) //nolint:forbidigo // User-facing output
	for _, budget := range budgets {
		fmt.Printf("  %-24s %s\n", budget.Category, budget.Limit.StringFixed(2)) //nolint:forbidigo // User-facing output
	}

	return nil
}
