package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/finsift/finsift/internal/cli"
	"github.com/finsift/finsift/internal/forecast"
	"github.com/finsift/finsift/internal/model"
)

func forecastCmd() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Project next-month category spend from monthly history",
		RunE: func(cmd *cobra.Command, _ []string) error {
			txns, cleanup, err := snapshot(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if category != "" && !model.ValidCategory(category) {
				return fmt.Errorf("unknown category %q; valid: %s",
					category, strings.Join(model.Categories(), ", "))
			}

			forecasts := forecast.Project(txns, category)
			if len(forecasts) == 0 {
				fmt.Println(cli.SubtleStyle.Render("No spending history to forecast from."))
				return nil
			}

			fmt.Println(cli.TitleStyle.Render("Forecast"))
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				cli.HeaderStyle.Render("Category"),
				cli.HeaderStyle.Render("This month"),
				cli.HeaderStyle.Render("Next month"),
				cli.HeaderStyle.Render("Trend"),
				cli.HeaderStyle.Render("Confidence"))
			for _, f := range forecasts {
				fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%s\t%.2f\n",
					f.Category, f.CurrentMonthPredict, f.NextMonthPredict, f.Trend, f.ConfidenceScore)
			}
			_ = w.Flush()

			for _, f := range forecasts {
				fmt.Println(cli.SubtleStyle.Render("  " + f.Recommendation))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "forecast a single category")

	return cmd
}

func goalCmd() *cobra.Command {
	var (
		target   float64
		months   int
		income   float64
		expenses float64
	)

	cmd := &cobra.Command{
		Use:   "goal",
		Short: "Evaluate a savings goal against current income and expenses",
		RunE: func(_ *cobra.Command, _ []string) error {
			report := forecast.SavingsGoal(target, months, income, expenses)

			fmt.Println(cli.TitleStyle.Render("Savings goal"))
			fmt.Printf("  Monthly required: %.2f\n", report.MonthlyRequired)
			if report.Achievable {
				fmt.Println(cli.SuccessStyle.Render("  Achievable: yes"))
			} else {
				fmt.Println(cli.ErrorStyle.Render("  Achievable: no"))
			}
			fmt.Println(cli.SubtleStyle.Render("  " + report.Recommendation))
			return nil
		},
	}

	cmd.Flags().Float64Var(&target, "target", 0, "target amount to save")
	cmd.Flags().IntVar(&months, "months", 0, "months to reach the target")
	cmd.Flags().Float64Var(&income, "income", 0, "current monthly income")
	cmd.Flags().Float64Var(&expenses, "expenses", 0, "current monthly expenses")
	_ = cmd.MarkFlagRequired("target")
	_ = cmd.MarkFlagRequired("months")

	return cmd
}

func budgetCmd() *cobra.Command {
	var (
		limits  []string
		showAll bool
	)

	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Check category spending against budget limits",
		Long: `Compare current category spending against limits given as
"Category=Amount" pairs, e.g. --limit "Food & Dining=5000".`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			parsed, err := parseLimits(limits)
			if err != nil {
				return err
			}

			txns, cleanup, err := snapshot(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			alerts := forecast.BudgetAlerts(txns, parsed)
			shown := 0
			for _, a := range alerts {
				if a.Level == model.AlertOK && !showAll {
					continue
				}
				shown++
				line := fmt.Sprintf("%s: %.2f of %.2f (%.1f%%)",
					a.Category, a.CurrentSpending, a.Limit, a.PercentageUsed)
				switch a.Level {
				case model.AlertCritical:
					fmt.Println(cli.ErrorStyle.Render("  critical  " + line))
				case model.AlertWarning:
					fmt.Println(cli.WarningStyle.Render("  warning   " + line))
				default:
					fmt.Println(cli.SuccessStyle.Render("  ok        " + line))
				}
			}
			if shown == 0 {
				fmt.Println(cli.SuccessStyle.Render("All budgets within limits."))
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&limits, "limit", nil, `budget limit as "Category=Amount" (repeatable)`)
	cmd.Flags().BoolVar(&showAll, "all", false, "show ok-level alerts too")
	_ = cmd.MarkFlagRequired("limit")

	return cmd
}

func parseLimits(pairs []string) (map[string]float64, error) {
	limits := make(map[string]float64, len(pairs))
	for _, pair := range pairs {
		idx := strings.LastIndex(pair, "=")
		if idx <= 0 {
			return nil, fmt.Errorf("invalid limit %q (want Category=Amount)", pair)
		}
		category := strings.TrimSpace(pair[:idx])
		if !model.ValidCategory(category) {
			return nil, fmt.Errorf("unknown category %q; valid: %s",
				category, strings.Join(model.Categories(), ", "))
		}
		amount, err := strconv.ParseFloat(strings.TrimSpace(pair[idx+1:]), 64)
		if err != nil || amount <= 0 {
			return nil, fmt.Errorf("invalid amount in limit %q", pair)
		}
		limits[category] = amount
	}
	return limits, nil
}
