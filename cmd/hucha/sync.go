package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hucha-app/hucha/internal/cli"
	"github.com/hucha-app/hucha/internal/config"
	"github.com/hucha-app/hucha/internal/gcal"
)

func syncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Google Calendar integration",
		Long: `Authenticate with Google Calendar, push deferred events, and back-fill
links between existing transactions and events.`,
	}

	cmd.AddCommand(syncAuthCmd())
	cmd.AddCommand(syncSweepCmd())
	cmd.AddCommand(syncAutoLinkCmd())

	return cmd
}

func syncAuthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with Google Calendar",
		Long: `Run the interactive OAuth flow in the browser and cache the token for
later commands.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			calConfig, err := config.LoadCalendarConfig()
			if err != nil {
				return fmt.Errorf("calendar is not configured: %w", err)
			}

			token, err := gcal.AuthenticateInteractive(ctx, *calConfig)
			if err != nil {
				return fmt.Errorf("authentication failed: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf(
				"Authenticated with Google Calendar (token valid until %s)",
				token.Expiry.Format(time.RFC822))))
			return nil
		},
	}
}

func syncSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Create events for transactions awaiting calendar sync",
		Long: `Push every transaction whose calendar event was deferred because no
session was available at the time it was added.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			led, queue, cleanup, err := openLedger(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			queued, err := led.SweepPendingSync(ctx)
			if err != nil {
				return fmt.Errorf("sweep failed: %w", err)
			}
			if queued == 0 {
				fmt.Println(cli.FormatInfo("Nothing awaiting calendar sync."))
				return nil
			}

			// Wait for the queued event creations to run.
			queue.Stop()
			drainResults(queue)

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Calendar sync queued for %d transaction(s)", queued)))
			return nil
		},
	}
}

func syncAutoLinkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "autolink",
		Short: "Back-fill links between transactions and existing events",
		Long: `Scan the calendar around today and link unlinked transactions to
same-day events whose title matches the description. Linked pairs then
reconcile by id instead of by title.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			led, _, cleanup, err := openLedger(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			client := calendarClient(ctx)
			if client == nil {
				return fmt.Errorf("no calendar session; run 'hucha sync auth' first")
			}

			now := time.Now()
			events, err := client.ListEvents(ctx, now.AddDate(0, -1, 0), now.AddDate(0, 1, 0))
			if err != nil {
				return fmt.Errorf("failed to list events: %w", err)
			}

			linked, err := led.AutoLinkEvents(ctx, events)
			if err != nil {
				return fmt.Errorf("autolink failed: %w", err)
			}

			if linked == 0 {
				fmt.Println(cli.FormatInfo("No new links found."))
			} else {
				fmt.Println(cli.FormatSuccess(fmt.Sprintf("%s Linked %d transaction(s)", cli.LinkIcon, linked)))
			}
			return nil
		},
	}
}
