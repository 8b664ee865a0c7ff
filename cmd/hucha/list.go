package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/hucha-app/hucha/internal/cli"
	"github.com/hucha-app/hucha/internal/model"
)

func listCmd() *cobra.Command {
	var (
		fromStr string
		toStr   string
		kindStr string
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions",
		Long:  `Display the group's transactions, newest first.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			led, _, cleanup, err := openLedger(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			txns := led.Transactions()
			txns, err = filterTransactions(txns, fromStr, toStr, kindStr, limit)
			if err != nil {
				return err
			}

			if len(txns) == 0 {
				fmt.Println(cli.FormatInfo("No transactions found. Use 'hucha add' to create one."))
				return nil
			}

			printTransactionTable(txns)
			return nil
		},
	}

	cmd.Flags().StringVar(&fromStr, "from", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&toStr, "to", "", "end date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&kindStr, "kind", "k", "", "filter by kind (income, expense, saving)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum rows (0 = all)")

	return cmd
}

func filterTransactions(txns []model.Transaction, fromStr, toStr, kindStr string, limit int) ([]model.Transaction, error) {
	var from, to time.Time
	var err error
	if fromStr != "" {
		from, err = time.Parse(dateLayout, fromStr)
		if err != nil {
			return nil, fmt.Errorf("--from must be YYYY-MM-DD, got %q", fromStr)
		}
	}
	if toStr != "" {
		to, err = time.Parse(dateLayout, toStr)
		if err != nil {
			return nil, fmt.Errorf("--to must be YYYY-MM-DD, got %q", toStr)
		}
	}

	var out []model.Transaction
	for _, t := range txns {
		if !from.IsZero() && t.Date.Before(from) {
			continue
		}
		if !to.IsZero() && t.Date.After(to.AddDate(0, 0, 1)) {
			continue
		}
		if kindStr != "" && t.Kind != model.TransactionKind(kindStr) {
			continue
		}
		out = append(out, t)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func printTransactionTable(txns []model.Transaction) {
	formatter := formatterFromConfig()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer func() { _ = w.Flush() }()

	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
		cli.BoldStyle.Render("Date"),
		cli.BoldStyle.Render("Description"),
		cli.BoldStyle.Render("Category"),
		cli.BoldStyle.Render("Amount"),
		cli.BoldStyle.Render("Kind"),
		cli.BoldStyle.Render("Status"),
		cli.BoldStyle.Render("ID"))

	for _, t := range txns {
		amount := formatter.FormatSigned(t.Amount, t.Kind == model.KindIncome)
		if t.Kind == model.KindIncome {
			amount = cli.IncomeStyle.Render(amount)
		}
		status := string(t.Status)
		if t.Status == model.StatusPending {
			status = cli.PendingStyle.Render(status)
		}
		desc := t.Description
		if t.Recurring {
			desc += " ↻"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			t.Date.Format(dateLayout), desc, t.Category, amount, t.Kind, status,
			cli.StyleSubtle(t.ID))
	}
}
