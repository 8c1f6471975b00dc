package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Mohamed-apdi/expenditure-core/internal/cli"
	"github.com/Mohamed-apdi/expenditure-core/internal/model"
)

func accountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage accounts",
	}

	cmd.AddCommand(accountsListCmd())
	cmd.AddCommand(accountsAddCmd())

	return cmd
}

func accountsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all accounts with their current balances",
		RunE:  runAccountsList,
	}
}

func accountsAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a new account",
		RunE:  runAccountsAdd,
	}

	cmd.Flags().String("name", "", "account name (required)")
	cmd.Flags().String("type", string(model.AccountTypeChecking), "account type (checking, savings, cash, card)")
	cmd.Flags().String("balance", "0", "opening balance")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func runAccountsList(cmd *cobra.Command, _ []string) error {
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

	accounts, err := store.ListAccounts(ctx)
	if err != nil {
		return fmt.Errorf("failed to list accounts: %w", err)
	}

	if len(accounts) == 0 {
		fmt.Println("No accounts yet. Create one with 'expenditure accounts add'.") //nolint:forbidigo // User-facing output
		return nil
	}

	fmt.Println(cli.FormatTitle("Accounts")) //nolint:forbidigo // User-facing output
	for _, account := range accounts {
		fmt.Printf("  %s  %-20s %-10s %s\n", //nolint:forbidigo // User-facing output
			account.ID,
			account.Name,
			account.Type,
			cli.FormatBalance(account.Balance))
	}

	return nil
}

func runAccountsAdd(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	name, _ := cmd.Flags().GetString("name")
	accountType, _ := cmd.Flags().GetString("type")
	balanceStr, _ := cmd.Flags().GetString("balance")

	balance, err := parseBalance(balanceStr)
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

	account := model.NewAccount(name, model.AccountType(accountType), balance)
	if err := store.CreateAccount(ctx, account); err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("✓ Created account %s (%s)", account.Name, account.ID))) //nolint:forbidigo // User-facing output
	return nil
}
