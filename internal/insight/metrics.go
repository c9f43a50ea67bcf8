package insight

import (
	"sort"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/shopspring/decimal"
)

// Aggregate computes the numeric summary of a transaction snapshot in a single
// pass. Records that fail validation are counted in Skipped and otherwise
// ignored. The input slice is not modified.
func Aggregate(transactions []domain.TransactionRecord) MetricsSummary {
	summary := MetricsSummary{
		TotalIncome:    decimal.Zero,
		TotalExpense:   decimal.Zero,
		NetBalance:     decimal.Zero,
		CategoryTotals: []CategoryTotal{},
	}

	byCategory := make(map[domain.Category]decimal.Decimal)
	var latest civil.Date

	for _, tx := range transactions {
		if err := tx.Validate(); err != nil {
			summary.Skipped++
			continue
		}
		summary.TransactionCount++

		switch tx.Kind {
		case domain.KindIncome:
			summary.TotalIncome = summary.TotalIncome.Add(tx.Amount)
		case domain.KindExpense:
			summary.TotalExpense = summary.TotalExpense.Add(tx.Amount)
			byCategory[tx.Category] = byCategory[tx.Category].Add(tx.Amount)
		}

		if latest.IsZero() || tx.OccurredOn.After(latest) {
			latest = tx.OccurredOn
		}
	}

	summary.NetBalance = summary.TotalIncome.Sub(summary.TotalExpense)
	if summary.TotalIncome.IsPositive() {
		summary.SavingsRate = summary.NetBalance.Div(summary.TotalIncome).InexactFloat64()
	}

	for cat, amount := range byCategory {
		summary.CategoryTotals = append(summary.CategoryTotals, CategoryTotal{Category: cat, Amount: amount})
	}
	sort.Slice(summary.CategoryTotals, func(i, j int) bool {
		a, b := summary.CategoryTotals[i], summary.CategoryTotals[j]
		if cmp := a.Amount.Cmp(b.Amount); cmp != 0 {
			return cmp > 0
		}
		return a.Category < b.Category
	})

	if !latest.IsZero() {
		summary.AsOf = latest
		summary.PeriodStart = civil.Date{Year: latest.Year, Month: latest.Month, Day: 1}
		summary.ElapsedDays = latest.Day
		summary.PeriodDays = daysInMonth(latest.Year, latest.Month)
	}

	return summary
}

func daysInMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
