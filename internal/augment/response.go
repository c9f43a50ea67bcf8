package augment

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dvloznov/finance-insights/internal/insight"
	"github.com/shopspring/decimal"
)

// RemoteInsight is a validated but partially trusted reply. Fields that
// failed validation are left zero and listed in InvalidFields.
type RemoteInsight struct {
	HealthScore      *int
	Analysis         string
	Forecast         string
	Recommendations  []string
	SavingsPotential string

	// InvalidFields names every missing or rejected field in schema order.
	InvalidFields []string
	// Problems holds one human-readable reason per invalid field.
	Problems []string
}

// Partial reports whether some fields were rejected.
func (r *RemoteInsight) Partial() bool {
	return len(r.InvalidFields) > 0
}

func (r *RemoteInsight) reject(field string, err error) {
	r.InvalidFields = append(r.InvalidFields, field)
	r.Problems = append(r.Problems, err.Error())
}

// ParseReply validates raw provider text. An empty reply, a reply that is
// not a JSON object, or an object with no usable field is a *Failure.
func ParseReply(raw, currencySymbol string) (*RemoteInsight, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, &Failure{Kind: KindEmptyResponse, Err: fmt.Errorf("ParseReply: empty reply")}
	}

	clean := cleanModelJSON(raw)

	dec := json.NewDecoder(bytes.NewReader([]byte(clean)))
	dec.UseNumber()
	var parsed interface{}
	if err := dec.Decode(&parsed); err != nil {
		return nil, &Failure{Kind: KindMalformedResponse, Err: fmt.Errorf("ParseReply: unmarshal JSON: %w", err)}
	}
	obj, ok := parsed.(map[string]interface{})
	if !ok {
		return nil, &Failure{Kind: KindMalformedResponse, Err: fmt.Errorf("ParseReply: reply is %T, want object", parsed)}
	}

	r := &RemoteInsight{}

	if score, err := getScoreField(obj, FieldNameHealthScore); err != nil {
		r.reject(FieldNameHealthScore, err)
	} else {
		r.HealthScore = &score
	}

	if s, err := getStringField(obj, FieldNameAnalysis); err != nil {
		r.reject(FieldNameAnalysis, err)
	} else {
		r.Analysis = s
	}

	if s, err := getStringField(obj, FieldNameForecast); err != nil {
		r.reject(FieldNameForecast, err)
	} else {
		r.Forecast = s
	}

	if recs, err := getStringArrayField(obj, FieldNameRecommendations, insight.RecommendationCount); err != nil {
		r.reject(FieldNameRecommendations, err)
	} else {
		r.Recommendations = recs
	}

	if s, err := getMoneyField(obj, FieldNameSavingsPotential, currencySymbol); err != nil {
		r.reject(FieldNameSavingsPotential, err)
	} else {
		r.SavingsPotential = s
	}

	if len(r.InvalidFields) == len(InsightSchema) {
		return nil, &Failure{
			Kind: KindMalformedResponse,
			Err:  fmt.Errorf("ParseReply: no usable field: %s", strings.Join(r.Problems, "; ")),
		}
	}
	return r, nil
}

// cleanModelJSON strips Markdown fences and any prose around the outermost
// JSON object.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		// Drop the opening fence line (``` or ```json).
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}

	return s
}

func getStringField(m map[string]interface{}, key string) (string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return "", fmt.Errorf("missing required field %q", key)
	}
	val, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %q has type %T, want string", key, v)
	}
	val = strings.TrimSpace(val)
	if val == "" {
		return "", fmt.Errorf("required field %q is empty", key)
	}
	return val, nil
}

func getStringArrayField(m map[string]interface{}, key string, want int) ([]string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, fmt.Errorf("missing required field %q", key)
	}
	items, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("field %q has type %T, want array", key, v)
	}
	if len(items) != want {
		return nil, fmt.Errorf("field %q has %d items, want %d", key, len(items), want)
	}
	out := make([]string, 0, want)
	for i, item := range items {
		s, ok := item.(string)
		if !ok || strings.TrimSpace(s) == "" {
			return nil, fmt.Errorf("field %q item %d is not a non-empty string", key, i)
		}
		out = append(out, strings.TrimSpace(s))
	}
	return out, nil
}

// getScoreField accepts an integral number or a numeric string in [0,100].
func getScoreField(m map[string]interface{}, key string) (int, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return 0, fmt.Errorf("missing required field %q", key)
	}

	var f float64
	switch val := v.(type) {
	case json.Number:
		parsed, err := val.Float64()
		if err != nil {
			return 0, fmt.Errorf("field %q: %w", key, err)
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, fmt.Errorf("field %q is not numeric: %q", key, val)
		}
		f = parsed
	default:
		return 0, fmt.Errorf("field %q has type %T, want number", key, v)
	}

	if math.IsNaN(f) || math.Trunc(f) != f {
		return 0, fmt.Errorf("field %q is not an integer: %v", key, f)
	}
	if f < 0 || f > 100 {
		return 0, fmt.Errorf("field %q out of range: %v", key, f)
	}
	return int(f), nil
}

// getMoneyField accepts a non-empty string as-is, or formats a
// non-negative number as money.
func getMoneyField(m map[string]interface{}, key, symbol string) (string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return "", fmt.Errorf("missing required field %q", key)
	}
	switch val := v.(type) {
	case string:
		if strings.TrimSpace(val) == "" {
			return "", fmt.Errorf("required field %q is empty", key)
		}
		return strings.TrimSpace(val), nil
	case json.Number:
		d, err := decimal.NewFromString(val.String())
		if err != nil {
			return "", fmt.Errorf("field %q: %w", key, err)
		}
		if d.IsNegative() {
			return "", fmt.Errorf("field %q is negative: %s", key, d)
		}
		return insight.FormatMoney(symbol, d), nil
	default:
		return "", fmt.Errorf("field %q has type %T, want string or number", key, v)
	}
}
