package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/hucha-app/hucha/internal/cli"
	"github.com/hucha-app/hucha/internal/ledger"
	"github.com/hucha-app/hucha/internal/model"
	"github.com/hucha-app/hucha/internal/recur"
	"github.com/hucha-app/hucha/internal/service"
)

func calendarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Calendar views of the ledger",
		Long: `Project stored and recurring transactions onto the calendar, merged with
the group's Google Calendar events when a session is available.`,
	}

	cmd.AddCommand(calendarMonthCmd())
	cmd.AddCommand(calendarDayCmd())

	return cmd
}

func calendarMonthCmd() *cobra.Command {
	var monthStr string

	cmd := &cobra.Command{
		Use:   "month",
		Short: "Show a month overview",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			ref := time.Now()
			if monthStr != "" {
				var err error
				ref, err = time.Parse("2006-01", monthStr)
				if err != nil {
					return fmt.Errorf("--month must be YYYY-MM, got %q", monthStr)
				}
			}

			led, _, cleanup, err := openLedger(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			printMonth(led, ref)
			return nil
		},
	}

	cmd.Flags().StringVarP(&monthStr, "month", "m", "", "month to show (YYYY-MM, default current)")
	return cmd
}

func calendarDayCmd() *cobra.Command {
	var dateStr string

	cmd := &cobra.Command{
		Use:   "day",
		Short: "Show one day in detail",
		Long: `List the day's transactions, including projected recurring occurrences,
annotated with their calendar sync state, plus any calendar events that
have no matching transaction.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			date := time.Now()
			if dateStr != "" {
				var err error
				date, err = time.Parse(dateLayout, dateStr)
				if err != nil {
					return fmt.Errorf("--date must be YYYY-MM-DD, got %q", dateStr)
				}
			}

			led, _, cleanup, err := openLedger(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			events := fetchEventsAround(ctx, date)
			printDay(led, date, events)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dateStr, "date", "d", "", "date to show (YYYY-MM-DD, default today)")
	return cmd
}

// fetchEventsAround lists calendar events in a window widened one month to
// each side of the date, so recurring instances near month boundaries are
// included. Offline mode returns no events.
func fetchEventsAround(ctx context.Context, date time.Time) []service.Event {
	client := calendarClient(ctx)
	if client == nil {
		return nil
	}

	events, err := client.ListEvents(ctx, date.AddDate(0, -1, 0), date.AddDate(0, 1, 0))
	if err != nil {
		fmt.Println(cli.FormatWarning("Calendar unavailable, showing transactions only"))
		return nil
	}
	return events
}

func printMonth(led *ledger.Store, ref time.Time) {
	first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
	last := first.AddDate(0, 1, -1)

	projected := recur.ProjectRange(led.Transactions(), first, last)
	byDay := make(map[int][]model.Transaction)
	for _, t := range projected {
		if t.Date.Month() == ref.Month() && t.Date.Year() == ref.Year() {
			byDay[t.Date.Day()] = append(byDay[t.Date.Day()], t)
		}
	}

	fmt.Println(cli.FormatTitle(first.Format("January 2006")))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer func() { _ = w.Flush() }()

	formatter := formatterFromConfig()
	for day := 1; day <= last.Day(); day++ {
		entries := byDay[day]
		if len(entries) == 0 {
			continue
		}
		var parts []string
		for _, t := range entries {
			label := fmt.Sprintf("%s %s", t.Description, formatter.Format(t.Amount))
			if t.IsVirtual() {
				label = cli.StyleSubtle(label + " ↻")
			} else if t.Status == model.StatusPending {
				label = cli.PendingStyle.Render(label)
			}
			parts = append(parts, label)
		}
		fmt.Fprintf(w, "%2d\t%s\n", day, strings.Join(parts, ", "))
	}
}

func printDay(led *ledger.Store, date time.Time, events []service.Event) {
	result := led.Day(date, events)
	formatter := formatterFromConfig()

	fmt.Println(cli.FormatTitle(date.Format("Monday, 2 January 2006")))

	if len(result.Transactions) == 0 && len(result.Standalone) == 0 {
		fmt.Println(cli.FormatInfo("Nothing scheduled for this day."))
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, a := range result.Transactions {
		t := a.Transaction
		sync := cli.StyleSubtle("–")
		if a.Synced {
			sync = cli.StyleSuccess(cli.LinkIcon)
		} else if t.CalendarLink.PendingSync() {
			sync = cli.PendingStyle.Render("…")
		}
		id := t.ID
		if t.IsVirtual() {
			id = cli.StyleSubtle(id)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			sync, t.Description, t.Category,
			formatter.FormatSigned(t.Amount, t.Kind == model.KindIncome),
			t.Status, id)
	}
	_ = w.Flush()

	if len(result.Standalone) > 0 {
		fmt.Println()
		fmt.Println(cli.SubtitleStyle.Render("Calendar events without a transaction:"))
		for _, e := range result.Standalone {
			fmt.Printf("  %s %s\n", cli.CalendarIcon, e.Summary)
		}
	}
}
