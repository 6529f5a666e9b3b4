// Package forecast projects near-future category spend from monthly history
// and evaluates budgets and savings goals against it.
package forecast

import (
	"fmt"
	"sort"

	"github.com/finsift/finsift/internal/model"
)

const (
	// trendEpsilon is the slope magnitude below which a trend counts as stable.
	trendEpsilon = 5.0
	// confidenceFloor is assigned when fewer than two months of history exist.
	confidenceFloor = 0.3
	// confidenceCap bounds the confidence gained from a long history.
	confidenceCap = 0.9
	// historyWindow is the number of trailing months fed into the regression.
	historyWindow = 6
)

// Project forecasts next-month spend per category. When category is empty all
// categories present in the snapshot are forecast, in stable order.
func Project(txns []model.Transaction, category string) []model.Forecast {
	byCategory := monthlySeriesByCategory(txns)

	var categories []string
	if category != "" {
		categories = []string{category}
	} else {
		for c := range byCategory {
			categories = append(categories, c)
		}
		sort.Strings(categories)
	}

	forecasts := make([]model.Forecast, 0, len(categories))
	for _, c := range categories {
		forecasts = append(forecasts, projectOne(c, byCategory[c]))
	}
	return forecasts
}

// projectOne fits a least-squares line over the trailing monthly totals.
// Under two months of history degrades to a stable forecast at the
// confidence floor rather than failing.
func projectOne(category string, series []float64) model.Forecast {
	if len(series) > historyWindow {
		series = series[len(series)-historyWindow:]
	}

	f := model.Forecast{Category: category, Trend: model.TrendStable, ConfidenceScore: confidenceFloor}
	if len(series) > 0 {
		f.CurrentMonthPredict = series[len(series)-1]
	}
	if len(series) < 2 {
		f.NextMonthPredict = f.CurrentMonthPredict
		f.Recommendation = recommend(f.Trend, category)
		return f
	}

	slope := linearSlope(series)
	switch {
	case slope > trendEpsilon:
		f.Trend = model.TrendIncreasing
	case slope < -trendEpsilon:
		f.Trend = model.TrendDecreasing
	}

	f.NextMonthPredict = f.CurrentMonthPredict + slope
	if f.NextMonthPredict < 0 {
		f.NextMonthPredict = 0
	}

	// More history means more confidence, capped.
	f.ConfidenceScore = confidenceFloor + 0.1*float64(len(series)-1)
	if f.ConfidenceScore > confidenceCap {
		f.ConfidenceScore = confidenceCap
	}

	f.Recommendation = recommend(f.Trend, category)
	return f
}

// linearSlope is the least-squares slope of series against month index.
func linearSlope(series []float64) float64 {
	n := float64(len(series))
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range series {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}

func recommend(trend model.Trend, category string) string {
	switch trend {
	case model.TrendIncreasing:
		return fmt.Sprintf("%s spending is trending up; review recent purchases in this category", category)
	case model.TrendDecreasing:
		return fmt.Sprintf("%s spending is trending down; current habits are on track", category)
	default:
		return fmt.Sprintf("%s spending is stable; no change needed", category)
	}
}

// monthlySeriesByCategory builds each category's chronological monthly debit
// totals from a snapshot.
func monthlySeriesByCategory(txns []model.Transaction) map[string][]float64 {
	type bucket struct {
		month string
		total float64
	}
	perCategory := make(map[string]map[string]float64)

	for i := range txns {
		t := &txns[i]
		if !t.IsDebit() {
			continue
		}
		category := t.Category
		if category == "" {
			category = model.CategoryOther
		}
		if perCategory[category] == nil {
			perCategory[category] = make(map[string]float64)
		}
		perCategory[category][t.OccurredAt.Format("2006-01")] += t.Amount
	}

	series := make(map[string][]float64, len(perCategory))
	for category, byMonth := range perCategory {
		buckets := make([]bucket, 0, len(byMonth))
		for m, total := range byMonth {
			buckets = append(buckets, bucket{month: m, total: total})
		}
		sort.Slice(buckets, func(i, j int) bool { return buckets[i].month < buckets[j].month })
		for _, b := range buckets {
			series[category] = append(series[category], b.total)
		}
	}
	return series
}
