package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hucha-app/hucha/internal/cli"
)

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction",
		Long: `Remove a stored transaction. A linked calendar event is deleted in the
background. Projected recurring occurrences cannot be deleted; delete the
recurring entry they come from instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			led, queue, cleanup, err := openLedger(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := led.DeleteTransaction(ctx, args[0]); err != nil {
				return fmt.Errorf("failed to delete transaction: %w", err)
			}

			fmt.Println(cli.FormatSuccess("Transaction deleted"))
			queue.Stop()
			drainResults(queue)
			return nil
		},
	}
}
