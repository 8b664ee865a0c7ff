package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/hucha-app/hucha/internal/analysis"
	"github.com/hucha-app/hucha/internal/cli"
	"github.com/hucha-app/hucha/internal/model"
)

func analysisCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analysis",
		Short: "Spending analytics",
		Long: `Aggregate views over the group's ledger. Paid transactions always count;
pending ones count once their date has arrived. Future pending entries are
plans, not spending.`,
	}

	cmd.AddCommand(analysisSummaryCmd())
	cmd.AddCommand(analysisCategoriesCmd())
	cmd.AddCommand(analysisMembersCmd())
	cmd.AddCommand(analysisMonthlyCmd())
	cmd.AddCommand(analysisCompareCmd())

	return cmd
}

func analysisSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Income, expenses, savings, and balance",
		RunE: func(cmd *cobra.Command, _ []string) error {
			led, _, cleanup, err := openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			sum := analysis.Summarize(led.Transactions(), time.Now())
			formatter := formatterFromConfig()

			content := fmt.Sprintf("Income    %s\nExpenses  %s\nSavings   %s\nBalance   %s",
				cli.IncomeStyle.Render(formatter.Format(sum.Income)),
				cli.ErrorStyle.Render(formatter.Format(sum.Expenses)),
				formatter.Format(sum.Savings),
				cli.BoldStyle.Render(formatter.Format(sum.Balance)))
			fmt.Println(cli.RenderBox(cli.ChartIcon+" Summary", content))
			return nil
		},
	}
}

func analysisCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "Expenses by category",
		RunE: func(cmd *cobra.Command, _ []string) error {
			led, _, cleanup, err := openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			totals := analysis.ByCategory(led.Transactions(), time.Now())
			if len(totals) == 0 {
				fmt.Println(cli.FormatInfo("No expenses recorded yet."))
				return nil
			}

			icons := categoryIcons(led.Categories())
			formatter := formatterFromConfig()

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()
			for _, t := range totals {
				name := t.Category
				if icon, ok := icons[t.Category]; ok && icon != "" {
					name = icon + " " + name
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n",
					name, formatter.Format(t.Total),
					cli.StyleSubtle(fmt.Sprintf("%d entries", t.Count)))
			}
			return nil
		},
	}
}

func analysisMembersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "members",
		Short: "Expenses per member, shared versus individual",
		RunE: func(cmd *cobra.Command, _ []string) error {
			led, _, cleanup, err := openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			now := time.Now()
			txns := led.Transactions()
			totals := analysis.ByMember(txns, now)
			split := analysis.SplitShared(txns, now)
			formatter := formatterFromConfig()

			names := make(map[string]string)
			for _, m := range led.Members() {
				names[m.ID] = m.Name
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			for _, t := range totals {
				name := names[t.ProfileID]
				if name == "" {
					name = t.ProfileID
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n",
					name, formatter.Format(t.Total),
					cli.StyleSubtle(fmt.Sprintf("%d entries", t.Count)))
			}
			_ = w.Flush()

			fmt.Println()
			fmt.Printf("Shared %s  %s  Individual %s\n",
				formatter.Format(split.Shared),
				cli.StyleSubtle("|"),
				formatter.Format(split.Individual))
			return nil
		},
	}
}

func analysisMonthlyCmd() *cobra.Command {
	var year int

	cmd := &cobra.Command{
		Use:   "monthly",
		Short: "Monthly totals for a year",
		RunE: func(cmd *cobra.Command, _ []string) error {
			led, _, cleanup, err := openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			if year == 0 {
				year = time.Now().Year()
			}

			series := analysis.MonthlySeries(led.Transactions(), year, time.Now())
			formatter := formatterFromConfig()

			fmt.Println(cli.FormatTitle(fmt.Sprintf("%s %d", cli.ChartIcon, year)))
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				cli.BoldStyle.Render("Month"),
				cli.BoldStyle.Render("Income"),
				cli.BoldStyle.Render("Expenses"),
				cli.BoldStyle.Render("Savings"))
			for _, p := range series {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					strings.ToLower(p.Month.String()[:3]),
					formatter.Format(p.Income),
					formatter.Format(p.Expenses),
					formatter.Format(p.Savings))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&year, "year", "y", 0, "year (default current)")
	return cmd
}

func analysisCompareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare",
		Short: "This month's expenses versus last month",
		RunE: func(cmd *cobra.Command, _ []string) error {
			led, _, cleanup, err := openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			now := time.Now()
			cmp := analysis.CompareMonths(led.Transactions(), now, now)
			formatter := formatterFromConfig()

			direction := cli.StyleSuccess("▼")
			if cmp.Delta.IsPositive() {
				direction = cli.StyleError("▲")
			}
			fmt.Printf("This month  %s\nLast month  %s\nChange      %s %s (%s%%)\n",
				formatter.Format(cmp.Current),
				formatter.Format(cmp.Previous),
				direction,
				formatter.Format(cmp.Delta.Abs()),
				cmp.DeltaPercent.String())
			return nil
		},
	}
}

func categoryIcons(cats []model.Category) map[string]string {
	icons := make(map[string]string, len(cats))
	for _, c := range cats {
		icons[c.Name] = c.Icon
	}
	return icons
}
