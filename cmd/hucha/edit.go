package main

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/hucha-app/hucha/internal/cli"
	"github.com/hucha-app/hucha/internal/model"
)

func editCmd() *cobra.Command {
	var (
		description string
		amountStr   string
		category    string
		dateStr     string
		kindStr     string
		shared      bool
		recurring   bool
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a transaction",
		Long: `Change a stored transaction. Only the flags you pass are updated.
Projected recurring occurrences cannot be edited; edit the recurring
entry they come from instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id := args[0]

			led, _, cleanup, err := openLedger(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			txns := led.Transactions()
			idx := -1
			for i := range txns {
				if txns[i].ID == id {
					idx = i
					break
				}
			}
			if idx < 0 {
				return fmt.Errorf("transaction %s not found", id)
			}
			updated := txns[idx]

			if cmd.Flags().Changed("description") {
				updated.Description = description
			}
			if cmd.Flags().Changed("amount") {
				amount, err := decimal.NewFromString(amountStr)
				if err != nil || !amount.IsPositive() {
					return fmt.Errorf("--amount must be a positive decimal, got %q", amountStr)
				}
				updated.Amount = amount
			}
			if cmd.Flags().Changed("category") {
				updated.Category = category
			}
			if cmd.Flags().Changed("date") {
				date, err := time.Parse(dateLayout, dateStr)
				if err != nil {
					return fmt.Errorf("--date must be YYYY-MM-DD, got %q", dateStr)
				}
				updated.Date = date
			}
			if cmd.Flags().Changed("kind") {
				updated.Kind = model.TransactionKind(kindStr)
			}
			if cmd.Flags().Changed("shared") {
				updated.Shared = shared
			}
			if cmd.Flags().Changed("recurring") {
				updated.Recurring = recurring
			}

			if err := led.EditTransaction(ctx, id, updated); err != nil {
				return fmt.Errorf("failed to edit transaction: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Updated %q", updated.Description)))
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "new description")
	cmd.Flags().StringVarP(&amountStr, "amount", "a", "", "new amount")
	cmd.Flags().StringVarP(&category, "category", "c", "", "new category name")
	cmd.Flags().StringVarP(&dateStr, "date", "d", "", "new date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&kindStr, "kind", "k", "", "new kind (income, expense, saving)")
	cmd.Flags().BoolVar(&shared, "shared", true, "share with the group")
	cmd.Flags().BoolVar(&recurring, "recurring", false, "repeats monthly")

	return cmd
}
