// Package analytics derives read-only aggregates from transaction snapshots.
// Every function takes an immutable slice and never mutates it; spending
// figures cover DEBIT transactions only.
package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/finsift/finsift/internal/model"
)

// CategorySummary totals one category's debit spend.
type CategorySummary struct {
	Category   string
	Total      float64
	Percentage float64
	Count      int
}

// MonthlyTrend totals spend per calendar month of occurred_at.
type MonthlyTrend struct {
	Month   string // YYYY-MM
	Debits  float64
	Credits float64
	Count   int
}

// VendorSummary totals debit spend per vendor.
type VendorSummary struct {
	Vendor string
	Total  float64
	Count  int
}

// Insights is a qualitative digest of a transaction snapshot.
type Insights struct {
	TopCategory         string
	TopCategorySpend    float64
	AverageTransaction  float64
	TransactionsPerDay  float64
	WeekendWeekdayRatio float64
	TotalSpend          float64
	TotalIncome         float64
	NetCashFlow         float64
}

// SpendingByCategory aggregates debit spend per category. Categories with
// zero spend are excluded; percentages are of total debit spend and sum to
// 100 across the returned entries.
func SpendingByCategory(txns []model.Transaction) []CategorySummary {
	totals := make(map[string]float64)
	counts := make(map[string]int)
	var grand float64

	for i := range txns {
		t := &txns[i]
		if !t.IsDebit() {
			continue
		}
		category := t.Category
		if category == "" {
			category = model.CategoryOther
		}
		totals[category] += t.Amount
		counts[category]++
		grand += t.Amount
	}

	summaries := make([]CategorySummary, 0, len(totals))
	for category, total := range totals {
		s := CategorySummary{Category: category, Total: total, Count: counts[category]}
		if grand > 0 {
			s.Percentage = total / grand * 100
		}
		summaries = append(summaries, s)
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].Total != summaries[j].Total {
			return summaries[i].Total > summaries[j].Total
		}
		return summaries[i].Category < summaries[j].Category
	})
	return summaries
}

// MonthlyTrends buckets transactions by the calendar month of occurred_at,
// oldest month first.
func MonthlyTrends(txns []model.Transaction) []MonthlyTrend {
	buckets := make(map[string]*MonthlyTrend)

	for i := range txns {
		t := &txns[i]
		month := t.OccurredAt.Format("2006-01")
		b, ok := buckets[month]
		if !ok {
			b = &MonthlyTrend{Month: month}
			buckets[month] = b
		}
		if t.IsDebit() {
			b.Debits += t.Amount
		} else {
			b.Credits += t.Amount
		}
		b.Count++
	}

	trends := make([]MonthlyTrend, 0, len(buckets))
	for _, b := range buckets {
		trends = append(trends, *b)
	}
	sort.Slice(trends, func(i, j int) bool { return trends[i].Month < trends[j].Month })
	return trends
}

// TopVendors returns vendors sorted descending by debit spend, cut to limit.
func TopVendors(txns []model.Transaction, limit int) []VendorSummary {
	totals := make(map[string]*VendorSummary)

	for i := range txns {
		t := &txns[i]
		if !t.IsDebit() || t.Vendor == "" {
			continue
		}
		v, ok := totals[t.Vendor]
		if !ok {
			v = &VendorSummary{Vendor: t.Vendor}
			totals[t.Vendor] = v
		}
		v.Total += t.Amount
		v.Count++
	}

	vendors := make([]VendorSummary, 0, len(totals))
	for _, v := range totals {
		vendors = append(vendors, *v)
	}
	sort.Slice(vendors, func(i, j int) bool {
		if vendors[i].Total != vendors[j].Total {
			return vendors[i].Total > vendors[j].Total
		}
		return vendors[i].Vendor < vendors[j].Vendor
	})

	if limit > 0 && len(vendors) > limit {
		vendors = vendors[:limit]
	}
	return vendors
}

// BuildInsights produces the qualitative digest for a snapshot.
func BuildInsights(txns []model.Transaction) Insights {
	var in Insights
	if len(txns) == 0 {
		return in
	}

	var (
		debitCount       int
		weekend, weekday float64
		earliest, latest time.Time
	)

	for i := range txns {
		t := &txns[i]
		if earliest.IsZero() || t.OccurredAt.Before(earliest) {
			earliest = t.OccurredAt
		}
		if t.OccurredAt.After(latest) {
			latest = t.OccurredAt
		}

		if !t.IsDebit() {
			in.TotalIncome += t.Amount
			continue
		}
		in.TotalSpend += t.Amount
		debitCount++

		switch t.OccurredAt.Weekday() {
		case time.Saturday, time.Sunday:
			weekend += t.Amount
		default:
			weekday += t.Amount
		}
	}

	in.NetCashFlow = in.TotalIncome - in.TotalSpend
	if debitCount > 0 {
		in.AverageTransaction = in.TotalSpend / float64(debitCount)
	}
	if weekday > 0 {
		in.WeekendWeekdayRatio = weekend / weekday
	}

	if byCategory := SpendingByCategory(txns); len(byCategory) > 0 {
		in.TopCategory = byCategory[0].Category
		in.TopCategorySpend = byCategory[0].Total
	}

	days := latest.Sub(earliest).Hours()/24 + 1
	if days < 1 {
		days = 1
	}
	in.TransactionsPerDay = float64(len(txns)) / days

	return in
}

// recurringAmountTolerance is how far two amounts may drift while still
// counting as the same recurring charge.
const recurringAmountTolerance = 1.0

// MarkRecurring flags transactions whose vendor and near-equal amount appear
// in at least three distinct calendar months. The input is copied, not
// mutated.
func MarkRecurring(txns []model.Transaction) []model.Transaction {
	out := make([]model.Transaction, len(txns))
	copy(out, txns)

	for i := range out {
		months := make(map[string]struct{})
		for j := range txns {
			if txns[j].Vendor != out[i].Vendor {
				continue
			}
			if math.Abs(txns[j].Amount-out[i].Amount) > recurringAmountTolerance {
				continue
			}
			months[txns[j].OccurredAt.Format("2006-01")] = struct{}{}
		}
		out[i].IsRecurring = len(months) >= 3
	}
	return out
}
