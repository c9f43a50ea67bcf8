package insight

import "github.com/shopspring/decimal"

// Static is the last-resort insight returned when even local scoring could
// not run. It carries no numbers derived from user data.
func Static(reason string) Insight {
	return Insight{
		HealthScore: noDataScore / 2,
		Tier:        Classify(noDataScore / 2),
		Analysis:    "We could not analyse your transactions right now.",
		Forecast:    "A forecast will be available once your transactions can be processed.",
		Recommendations: []string{
			fillerRecommendations[0],
			fillerRecommendations[1],
			fillerRecommendations[2],
		},
		SavingsPotential:  FormatMoney(DefaultCurrencySymbol, decimal.Zero),
		Source:            SourceLocal,
		DegradationReason: reason,
	}
}
