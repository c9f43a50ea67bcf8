package augment

// FieldType is the JSON type a reply field must have.
type FieldType string

const (
	FieldString      FieldType = "string"
	FieldInteger     FieldType = "integer"
	FieldStringArray FieldType = "string_array"
)

// Field describes one property of the expected reply object.
type Field struct {
	Name        string
	Type        FieldType
	Description string
	// Items is the exact array length for FieldStringArray.
	Items int
}

// Reply field names.
const (
	FieldNameHealthScore      = "healthScore"
	FieldNameAnalysis         = "analysis"
	FieldNameForecast         = "forecast"
	FieldNameRecommendations  = "recommendations"
	FieldNameSavingsPotential = "savingsPotential"
)

// InsightSchema is the reply contract every provider is asked to honour.
var InsightSchema = []Field{
	{Name: FieldNameHealthScore, Type: FieldInteger, Description: "Financial health score from 0 to 100."},
	{Name: FieldNameAnalysis, Type: FieldString, Description: "One or two sentences assessing the user's finances."},
	{Name: FieldNameForecast, Type: FieldString, Description: "A short projection for the end of the current month."},
	{Name: FieldNameRecommendations, Type: FieldStringArray, Items: 3, Description: "Exactly three concrete, actionable tips."},
	{Name: FieldNameSavingsPotential, Type: FieldString, Description: "Estimated monthly amount that could be saved, formatted as money."},
}
