package model

// Trend is a coarse slope classification over monthly category totals.
type Trend string

const (
	// TrendIncreasing means spend is growing month over month.
	TrendIncreasing Trend = "increasing"
	// TrendDecreasing means spend is shrinking month over month.
	TrendDecreasing Trend = "decreasing"
	// TrendStable means no significant slope, or not enough history.
	TrendStable Trend = "stable"
)

// Forecast projects near-future spend for one category.
type Forecast struct {
	Category            string
	Recommendation      string
	Trend               Trend
	CurrentMonthPredict float64
	NextMonthPredict    float64
	ConfidenceScore     float64
}

// AlertLevel grades how close spending is to a budget limit.
type AlertLevel string

const (
	// AlertOK means spending is comfortably under the limit.
	AlertOK AlertLevel = "ok"
	// AlertWarning means spending has reached 80% of the limit.
	AlertWarning AlertLevel = "warning"
	// AlertCritical means the limit is met or exceeded.
	AlertCritical AlertLevel = "critical"
)

// BudgetAlert reports one category's position against its configured limit.
type BudgetAlert struct {
	Category        string
	Level           AlertLevel
	Limit           float64
	CurrentSpending float64
	PercentageUsed  float64
}

// SavingsGoalReport evaluates whether a savings target is reachable from the
// current income/expense balance.
type SavingsGoalReport struct {
	Recommendation  string
	TargetAmount    float64
	TargetMonths    int
	MonthlyRequired float64
	Achievable      bool
}

// CategoryFit is one entry of the per-category fit report produced by
// retraining the classifier's statistical fallback.
type CategoryFit struct {
	Category     string
	Observations int
	FitScore     float64
}
