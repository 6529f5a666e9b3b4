package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/finsift/finsift/internal/analytics"
	"github.com/finsift/finsift/internal/cli"
	"github.com/finsift/finsift/internal/model"
	"github.com/finsift/finsift/internal/service"
)

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Spending reports over the stored transactions",
	}

	cmd.AddCommand(reportCategoriesCmd())
	cmd.AddCommand(reportTrendsCmd())
	cmd.AddCommand(reportVendorsCmd())
	cmd.AddCommand(reportInsightsCmd())

	return cmd
}

// snapshot loads the full transaction collection for read-only analytics.
func snapshot(cmd *cobra.Command) ([]model.Transaction, func(), error) {
	ctx := cmd.Context()
	store, err := initStorage(ctx)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() { _ = store.Close() }

	txns, err := store.GetTransactions(ctx, service.TransactionFilter{})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	return txns, cleanup, nil
}

func reportCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "Debit spend per category with percentages",
		RunE: func(cmd *cobra.Command, _ []string) error {
			txns, cleanup, err := snapshot(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			summaries := analytics.SpendingByCategory(txns)
			if len(summaries) == 0 {
				fmt.Println(cli.SubtleStyle.Render("No spending recorded yet."))
				return nil
			}

			fmt.Println(cli.TitleStyle.Render("Spending by category"))
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				cli.HeaderStyle.Render("Category"),
				cli.HeaderStyle.Render("Total"),
				cli.HeaderStyle.Render("Share"),
				cli.HeaderStyle.Render("Count"))
			for _, s := range summaries {
				fmt.Fprintf(w, "%s\t%.2f\t%.1f%%\t%d\n", s.Category, s.Total, s.Percentage, s.Count)
			}
			return nil
		},
	}
}

func reportTrendsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trends",
		Short: "Monthly debit and credit totals",
		RunE: func(cmd *cobra.Command, _ []string) error {
			txns, cleanup, err := snapshot(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			trends := analytics.MonthlyTrends(txns)
			if len(trends) == 0 {
				fmt.Println(cli.SubtleStyle.Render("No transactions recorded yet."))
				return nil
			}

			fmt.Println(cli.TitleStyle.Render("Monthly trends"))
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				cli.HeaderStyle.Render("Month"),
				cli.HeaderStyle.Render("Debits"),
				cli.HeaderStyle.Render("Credits"),
				cli.HeaderStyle.Render("Count"))
			for _, t := range trends {
				fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%d\n", t.Month, t.Debits, t.Credits, t.Count)
			}
			return nil
		},
	}
}

func reportVendorsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "vendors",
		Short: "Top vendors by debit spend",
		RunE: func(cmd *cobra.Command, _ []string) error {
			txns, cleanup, err := snapshot(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			vendors := analytics.TopVendors(txns, limit)
			if len(vendors) == 0 {
				fmt.Println(cli.SubtleStyle.Render("No spending recorded yet."))
				return nil
			}

			fmt.Println(cli.TitleStyle.Render("Top vendors"))
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintf(w, "%s\t%s\t%s\n",
				cli.HeaderStyle.Render("Vendor"),
				cli.HeaderStyle.Render("Total"),
				cli.HeaderStyle.Render("Count"))
			for _, v := range vendors {
				fmt.Fprintf(w, "%s\t%.2f\t%d\n", v.Vendor, v.Total, v.Count)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "number of vendors to show")

	return cmd
}

func reportInsightsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "insights",
		Short: "Qualitative spending insights",
		RunE: func(cmd *cobra.Command, _ []string) error {
			txns, cleanup, err := snapshot(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if len(txns) == 0 {
				fmt.Println(cli.SubtleStyle.Render("No transactions recorded yet."))
				return nil
			}

			in := analytics.BuildInsights(txns)
			fmt.Println(cli.TitleStyle.Render("Insights"))
			fmt.Printf("  Top category:         %s (%.2f)\n", in.TopCategory, in.TopCategorySpend)
			fmt.Printf("  Average transaction:  %.2f\n", in.AverageTransaction)
			fmt.Printf("  Transactions per day: %.2f\n", in.TransactionsPerDay)
			fmt.Printf("  Weekend/weekday:      %.2f\n", in.WeekendWeekdayRatio)
			fmt.Printf("  Total spend:          %.2f\n", in.TotalSpend)
			fmt.Printf("  Total income:         %.2f\n", in.TotalIncome)

			net := fmt.Sprintf("  Net cash flow:        %.2f", in.NetCashFlow)
			if in.NetCashFlow < 0 {
				fmt.Println(cli.ErrorStyle.Render(net))
			} else {
				fmt.Println(cli.SuccessStyle.Render(net))
			}

			recurring := analytics.MarkRecurring(txns)
			var names []string
			seen := make(map[string]struct{})
			for i := range recurring {
				if recurring[i].IsRecurring {
					if _, ok := seen[recurring[i].Vendor]; !ok {
						seen[recurring[i].Vendor] = struct{}{}
						names = append(names, recurring[i].Vendor)
					}
				}
			}
			if len(names) > 0 {
				fmt.Printf("  Recurring vendors:    %s\n", strings.Join(names, ", "))
			}

			return nil
		},
	}
}
