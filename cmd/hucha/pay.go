package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hucha-app/hucha/internal/cli"
	"github.com/hucha-app/hucha/internal/model"
)

func payCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pay <id>",
		Short: "Mark a transaction as paid",
		Long: `Settle a pending transaction. The id may be a projected occurrence id
from the calendar or upcoming views; paying one records a concrete paid
entry for that day while the recurring entry keeps projecting future
months.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			led, _, cleanup, err := openLedger(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			paid, err := led.MarkPaid(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to mark paid: %w", err)
			}

			if model.IsVirtualID(args[0]) {
				fmt.Println(cli.FormatSuccess(fmt.Sprintf(
					"Recorded %q as paid for %s (%s)",
					paid.Description, paid.Date.Format(dateLayout), paid.ID)))
			} else {
				fmt.Println(cli.FormatSuccess(fmt.Sprintf("Marked %q as paid", paid.Description)))
			}
			return nil
		},
	}
}
