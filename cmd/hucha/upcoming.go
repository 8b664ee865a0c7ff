package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hucha-app/hucha/internal/cli"
	"github.com/hucha-app/hucha/internal/model"
	"github.com/hucha-app/hucha/internal/recur"
)

func upcomingCmd() *cobra.Command {
	var horizon int

	cmd := &cobra.Command{
		Use:   "upcoming",
		Short: "Show unpaid transactions due soon",
		Long: `List pending transactions and projected recurring occurrences inside the
horizon, with entries due today or tomorrow called out first.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			led, _, cleanup, err := openLedger(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			agenda := led.Upcoming(time.Now(), horizon)

			if len(agenda.Urgent) == 0 && len(agenda.Later) == 0 {
				fmt.Println(cli.FormatSuccess("Nothing due in the next days. Enjoy!"))
				return nil
			}

			if len(agenda.Urgent) > 0 {
				fmt.Println(cli.FormatTitle(cli.BellIcon + " Due today or tomorrow"))
				printAgenda(agenda.Urgent, true)
				fmt.Println()
			}
			if len(agenda.Later) > 0 {
				fmt.Println(cli.SubtitleStyle.Render("Coming up"))
				printAgenda(agenda.Later, false)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&horizon, "days", "n", recur.DefaultHorizonDays, "horizon in days")
	return cmd
}

func printAgenda(txns []model.Transaction, urgent bool) {
	formatter := formatterFromConfig()
	for _, t := range txns {
		line := fmt.Sprintf("%s  %s  %s  %s",
			t.Date.Format(dateLayout), t.Description,
			formatter.Format(t.Amount), cli.StyleSubtle(t.ID))
		if urgent {
			line = cli.PendingStyle.Render(line)
		}
		fmt.Println("  " + line)
	}
}
