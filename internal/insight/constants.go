package insight

import (
	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/shopspring/decimal"
)

// Scoring thresholds.
const (
	// baseScoreBonus is added to the savings percentage when income exists.
	baseScoreBonus = 20

	// noIncomeScore is the flat score when expenses exist but no income was logged.
	noIncomeScore = 20

	// noDataScore is the score when nothing at all was logged.
	noDataScore = 100

	eliteThreshold  = 80
	stableThreshold = 50

	// concentrationShare is the share of total expense above which one
	// category is called out.
	concentrationShare = 0.40

	// strongSavingsRate triggers the congratulatory analysis.
	strongSavingsRate = 0.30

	// targetSavingsRate triggers the savings-rate recommendation when not met.
	targetSavingsRate = 0.20

	// RecommendationCount is the exact number of recommendations in an Insight.
	RecommendationCount = 3

	// DefaultCurrencySymbol prefixes formatted money strings.
	DefaultCurrencySymbol = "$"
)

// flexibleCategories are discretionary categories and the fraction of their
// spend considered recoverable.
var flexibleCategories = map[domain.Category]decimal.Decimal{
	domain.CategoryEntertainment: decimal.RequireFromString("0.25"),
	domain.CategoryShopping:      decimal.RequireFromString("0.20"),
	domain.CategoryTravel:        decimal.RequireFromString("0.15"),
	domain.CategoryFood:          decimal.RequireFromString("0.10"),
}

// fillerRecommendations pad the recommendation list, in order.
var fillerRecommendations = []string{
	"Build an emergency fund that covers three to six months of expenses.",
	"Automate a fixed transfer to savings on the day your income arrives.",
	"Review recurring subscriptions each month and cancel the ones you no longer use.",
}
