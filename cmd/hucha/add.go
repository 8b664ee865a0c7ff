package main

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/hucha-app/hucha/internal/cli"
	"github.com/hucha-app/hucha/internal/model"
)

const dateLayout = "2006-01-02"

func addCmd() *cobra.Command {
	var (
		amountStr string
		category  string
		dateStr   string
		kindStr   string
		curr      string
		shared    bool
		recurring bool
		syncCal   bool
	)

	cmd := &cobra.Command{
		Use:   "add <description>",
		Short: "Add a transaction",
		Long: `Record a new income, expense, or saving entry. Recurring entries repeat
monthly on the same day of the month and show up as projected occurrences
on the calendar and upcoming views.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			amount, err := decimal.NewFromString(amountStr)
			if err != nil || !amount.IsPositive() {
				return fmt.Errorf("--amount must be a positive decimal, got %q", amountStr)
			}

			date := time.Now()
			if dateStr != "" {
				date, err = time.Parse(dateLayout, dateStr)
				if err != nil {
					return fmt.Errorf("--date must be YYYY-MM-DD, got %q", dateStr)
				}
			}

			led, queue, cleanup, err := openLedger(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			txn := model.Transaction{
				Description: args[0],
				Amount:      amount,
				Category:    category,
				Date:        date,
				Currency:    curr,
				Kind:        model.TransactionKind(kindStr),
				Status:      model.StatusPending,
				Shared:      shared,
				Recurring:   recurring,
			}

			saved, err := led.AddTransaction(ctx, txn, syncCal)
			if err != nil {
				return fmt.Errorf("failed to add transaction: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Added %q (%s)", saved.Description, saved.ID)))
			if saved.CalendarLink.PendingSync() {
				fmt.Println(cli.FormatWarning("No calendar session; event creation deferred. Run 'hucha sync sweep' after 'hucha sync auth'."))
			}

			// Let the queued calendar write finish before the process exits.
			queue.Stop()
			drainResults(queue)
			return nil
		},
	}

	cmd.Flags().StringVarP(&amountStr, "amount", "a", "", "amount (decimal, required)")
	cmd.Flags().StringVarP(&category, "category", "c", "", "category name")
	cmd.Flags().StringVarP(&dateStr, "date", "d", "", "date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVarP(&kindStr, "kind", "k", "expense", "kind (income, expense, saving)")
	cmd.Flags().StringVar(&curr, "currency", "", "currency code (default from config)")
	cmd.Flags().BoolVar(&shared, "shared", true, "share with the group")
	cmd.Flags().BoolVar(&recurring, "recurring", false, "repeats monthly on this day")
	cmd.Flags().BoolVar(&syncCal, "sync-calendar", false, "create a Google Calendar event")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}
