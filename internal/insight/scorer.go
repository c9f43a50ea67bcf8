package insight

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Scorer produces a LOCAL insight from a MetricsSummary using fixed rules.
// It has no failure modes and no hidden state: the same summary always yields
// the same insight.
type Scorer struct {
	// CurrencySymbol prefixes every money string. Empty means DefaultCurrencySymbol.
	CurrencySymbol string
}

// DefaultScorer formats money with DefaultCurrencySymbol.
var DefaultScorer = Scorer{CurrencySymbol: DefaultCurrencySymbol}

// Score is DefaultScorer.Score.
func Score(summary MetricsSummary) Insight {
	return DefaultScorer.Score(summary)
}

// Score applies the heuristic rules to summary.
func (s Scorer) Score(summary MetricsSummary) Insight {
	score := HealthScore(summary)
	return Insight{
		HealthScore:      score,
		Tier:             Classify(score),
		Analysis:         s.analysis(summary),
		Forecast:         s.forecast(summary),
		Recommendations:  s.recommendations(summary),
		SavingsPotential: s.money(SavingsPotential(summary)),
		Source:           SourceLocal,
	}
}

func (s Scorer) money(d decimal.Decimal) string {
	symbol := s.CurrencySymbol
	if symbol == "" {
		symbol = DefaultCurrencySymbol
	}
	return FormatMoney(symbol, d)
}

// HealthScore derives the 0-100 score from the savings rate.
func HealthScore(summary MetricsSummary) int {
	switch {
	case summary.HasIncome():
		return clamp(int(math.Round(summary.SavingsRate*100))+baseScoreBonus, 0, 100)
	case summary.HasExpense():
		return noIncomeScore
	default:
		return noDataScore
	}
}

// Classify maps a score onto a tier. Lower bounds are exclusive: 80 is
// STABLE and 50 is ACTION REQUIRED.
func Classify(score int) Tier {
	switch {
	case score > eliteThreshold:
		return TierElite
	case score > stableThreshold:
		return TierStable
	default:
		return TierActionRequired
	}
}

// SavingsPotential sums the recoverable share of every flexible category.
func SavingsPotential(summary MetricsSummary) decimal.Decimal {
	total := decimal.Zero
	for _, ct := range summary.CategoryTotals {
		if fraction, ok := flexibleCategories[ct.Category]; ok {
			total = total.Add(ct.Amount.Mul(fraction))
		}
	}
	return total.Round(2)
}

// analysis picks the first matching rule.
func (s Scorer) analysis(summary MetricsSummary) string {
	if summary.TotalExpense.GreaterThan(summary.TotalIncome) {
		overspend := summary.TotalExpense.Sub(summary.TotalIncome)
		return fmt.Sprintf("You spent %s more than you earned this period. Cut back on non-essential spending to return to a positive balance.",
			s.money(overspend))
	}
	if summary.SavingsRate > strongSavingsRate {
		return fmt.Sprintf("Great work: you are saving %s of your income, well above the recommended 20%%.",
			FormatPercent(summary.SavingsRate))
	}
	if top, share, ok := summary.TopCategory(); ok && share > concentrationShare {
		return fmt.Sprintf("%s accounts for %s of your spending. Keeping it in check is the fastest way to improve your savings.",
			top.Category, FormatPercent(share))
	}
	return "Your finances look stable. Income covers your spending with room to spare."
}

// forecast projects the current daily burn rate over the whole period.
func (s Scorer) forecast(summary MetricsSummary) string {
	if !summary.HasExpense() || summary.ElapsedDays <= 0 {
		return "No spending has been recorded yet, so there is nothing to project for this period."
	}

	elapsed := decimal.NewFromInt(int64(summary.ElapsedDays))
	period := decimal.NewFromInt(int64(summary.PeriodDays))

	burn := summary.TotalExpense.Div(elapsed)
	projectedExpense := burn.Mul(period)
	projectedBalance := summary.TotalIncome.Sub(projectedExpense)

	return fmt.Sprintf("At %s per day you are on track to spend %s by the end of the period, leaving a projected balance of %s.",
		s.money(burn), s.money(projectedExpense), s.money(projectedBalance))
}

// recommendations returns exactly RecommendationCount tips: triggered rules
// first in priority order, then generic fillers.
func (s Scorer) recommendations(summary MetricsSummary) []string {
	recs := make([]string, 0, RecommendationCount)

	if top, share, ok := summary.TopCategory(); ok && share > concentrationShare {
		trim := top.Amount.Mul(decimal.RequireFromString("0.10"))
		recs = append(recs, fmt.Sprintf("Set a monthly cap for %s; trimming it by 10%% would free up %s.",
			top.Category, s.money(trim)))
	}

	if summary.HasIncome() && summary.SavingsRate < targetSavingsRate {
		recs = append(recs, fmt.Sprintf("Aim to save at least 20%% of your income; you are currently at %s.",
			FormatPercent(summary.SavingsRate)))
	}

	if !summary.HasIncome() && summary.HasExpense() {
		recs = append(recs, "Log your income so your savings rate and health score reflect reality.")
	}

	return padRecommendations(recs)
}

// padRecommendations trims or fills recs to exactly RecommendationCount
// entries using fillerRecommendations, skipping duplicates.
func padRecommendations(recs []string) []string {
	out := make([]string, 0, RecommendationCount)
	seen := make(map[string]bool)
	for _, r := range recs {
		if len(out) == RecommendationCount {
			break
		}
		if r == "" || seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	for _, filler := range fillerRecommendations {
		if len(out) == RecommendationCount {
			break
		}
		if !seen[filler] {
			seen[filler] = true
			out = append(out, filler)
		}
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
