// Package insight turns a transaction snapshot into a financial insight using
// deterministic rules only. It never performs I/O.
package insight

import (
	"cloud.google.com/go/civil"
	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/shopspring/decimal"
)

// Source tags where the fields of an Insight came from.
type Source string

const (
	SourceLocal          Source = "LOCAL"
	SourceRemote         Source = "REMOTE"
	SourceRemoteDegraded Source = "REMOTE_DEGRADED"
)

// Tier is the coarse classification of a health score.
type Tier string

const (
	TierElite          Tier = "ELITE"
	TierStable         Tier = "STABLE"
	TierActionRequired Tier = "ACTION REQUIRED"
)

// CategoryTotal is the summed expense amount of one category.
type CategoryTotal struct {
	Category domain.Category `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// MetricsSummary is derived from a transaction snapshot on every call.
type MetricsSummary struct {
	TotalIncome  decimal.Decimal `json:"totalIncome"`
	TotalExpense decimal.Decimal `json:"totalExpense"`
	NetBalance   decimal.Decimal `json:"netBalance"`

	// SavingsRate is NetBalance / TotalIncome, or 0 when there is no income.
	SavingsRate float64 `json:"savingsRate"`

	// CategoryTotals holds expense categories only, sorted by amount descending.
	CategoryTotals []CategoryTotal `json:"categoryTotals"`

	TransactionCount int `json:"transactionCount"`
	Skipped          int `json:"skipped"` // records that failed validation

	// Forecast period: the calendar month of the latest record.
	PeriodStart civil.Date `json:"periodStart"`
	AsOf        civil.Date `json:"asOf"`
	ElapsedDays int        `json:"elapsedDays"`
	PeriodDays  int        `json:"periodDays"`
}

// HasIncome reports whether any income was logged.
func (s MetricsSummary) HasIncome() bool {
	return s.TotalIncome.IsPositive()
}

// HasExpense reports whether any expense was logged.
func (s MetricsSummary) HasExpense() bool {
	return s.TotalExpense.IsPositive()
}

// TopCategory returns the largest expense category and its share of total expense.
func (s MetricsSummary) TopCategory() (CategoryTotal, float64, bool) {
	if len(s.CategoryTotals) == 0 || !s.HasExpense() {
		return CategoryTotal{}, 0, false
	}
	top := s.CategoryTotals[0]
	share := top.Amount.Div(s.TotalExpense).InexactFloat64()
	return top, share, true
}

// Insight is the pipeline's output. Every field is always populated;
// DegradationReason is set whenever Source is not REMOTE.
type Insight struct {
	HealthScore       int      `json:"healthScore"`
	Tier              Tier     `json:"tier"`
	Analysis          string   `json:"analysis"`
	Forecast          string   `json:"forecast"`
	Recommendations   []string `json:"recommendations"`
	SavingsPotential  string   `json:"savingsPotential"`
	Source            Source   `json:"source"`
	DegradationReason string   `json:"degradationReason,omitempty"`
}

// Clone returns a deep copy so callers can alter recommendations safely.
func (i Insight) Clone() Insight {
	out := i
	out.Recommendations = append([]string(nil), i.Recommendations...)
	return out
}
