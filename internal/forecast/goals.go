package forecast

import (
	"fmt"
	"sort"

	"github.com/finsift/finsift/internal/analytics"
	"github.com/finsift/finsift/internal/model"
)

// SavingsGoal evaluates whether a savings target is reachable from the
// current monthly surplus.
func SavingsGoal(targetAmount float64, targetMonths int, currentIncome, currentExpenses float64) model.SavingsGoalReport {
	report := model.SavingsGoalReport{
		TargetAmount: targetAmount,
		TargetMonths: targetMonths,
	}
	if targetMonths <= 0 {
		report.Recommendation = "target period must be at least one month"
		return report
	}

	report.MonthlyRequired = targetAmount / float64(targetMonths)
	surplus := currentIncome - currentExpenses
	report.Achievable = surplus > 0 && report.MonthlyRequired <= surplus

	switch {
	case surplus <= 0:
		report.Recommendation = "expenses meet or exceed income; there is no surplus to save from"
	case report.Achievable:
		pct := report.MonthlyRequired / surplus * 100
		report.Recommendation = fmt.Sprintf("save %.2f per month, %.0f%% of your current surplus", report.MonthlyRequired, pct)
	default:
		pct := report.MonthlyRequired / surplus * 100
		report.Recommendation = fmt.Sprintf("requires %.2f per month, %.0f%% of surplus; extend the timeline or cut expenses", report.MonthlyRequired, pct)
	}
	return report
}

// BudgetAlerts grades current category spending against configured limits.
// Every limit produces an alert; callers typically surface only the non-ok
// levels.
func BudgetAlerts(txns []model.Transaction, limits map[string]float64) []model.BudgetAlert {
	spend := make(map[string]float64)
	for _, s := range analytics.SpendingByCategory(txns) {
		spend[s.Category] = s.Total
	}

	categories := make([]string, 0, len(limits))
	for c := range limits {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	alerts := make([]model.BudgetAlert, 0, len(categories))
	for _, category := range categories {
		limit := limits[category]
		if limit <= 0 {
			continue
		}
		alert := model.BudgetAlert{
			Category:        category,
			Limit:           limit,
			CurrentSpending: spend[category],
			PercentageUsed:  spend[category] / limit * 100,
		}
		switch {
		case alert.PercentageUsed >= 100:
			alert.Level = model.AlertCritical
		case alert.PercentageUsed >= 80:
			alert.Level = model.AlertWarning
		default:
			alert.Level = model.AlertOK
		}
		alerts = append(alerts, alert)
	}
	return alerts
}
