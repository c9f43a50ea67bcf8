package augment

import (
	"strings"
	"testing"
)

const validReply = `{
  "healthScore": 72,
  "analysis": "Solid month overall.",
  "forecast": "You will end the month ahead.",
  "recommendations": ["Cook at home", "Cancel one subscription", "Move savings to a high-yield account"],
  "savingsPotential": "$420.00"
}`

func TestParseReply_Valid(t *testing.T) {
	r, err := ParseReply(validReply, "$")
	if err != nil {
		t.Fatalf("ParseReply() error = %v", err)
	}
	if r.Partial() {
		t.Errorf("expected full reply, invalid fields: %v", r.InvalidFields)
	}
	if r.HealthScore == nil || *r.HealthScore != 72 {
		t.Errorf("HealthScore = %v, want 72", r.HealthScore)
	}
	if r.SavingsPotential != "$420.00" || len(r.Recommendations) != 3 {
		t.Errorf("unexpected reply: %+v", r)
	}
}

func TestParseReply_Failures(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Kind
	}{
		{"empty", "", KindEmptyResponse},
		{"whitespace", "  \n\t ", KindEmptyResponse},
		{"not json", "I'm sorry, I can't help with that.", KindMalformedResponse},
		{"truncated", `{"healthScore": 7`, KindMalformedResponse},
		{"array", `[1, 2, 3]`, KindMalformedResponse},
		{"string", `"hello"`, KindMalformedResponse},
		{"no usable field", `{"score": 10, "text": "hi"}`, KindMalformedResponse},
		{"every field wrong", `{"healthScore": 500, "analysis": "", "forecast": 3, "recommendations": [], "savingsPotential": null}`, KindMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseReply(tt.raw, "$")
			if err == nil {
				t.Fatal("expected error")
			}
			if got := KindOf(err); got != tt.want {
				t.Errorf("KindOf() = %s, want %s (err: %v)", got, tt.want, err)
			}
		})
	}
}

func TestParseReply_PartialValidity(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		wantInvalid []string
	}{
		{
			name:        "score out of range",
			raw:         strings.Replace(validReply, `"healthScore": 72`, `"healthScore": 500`, 1),
			wantInvalid: []string{FieldNameHealthScore},
		},
		{
			name:        "fractional score",
			raw:         strings.Replace(validReply, `"healthScore": 72`, `"healthScore": 72.5`, 1),
			wantInvalid: []string{FieldNameHealthScore},
		},
		{
			name:        "missing analysis",
			raw:         strings.Replace(validReply, `"analysis": "Solid month overall.",`, ``, 1),
			wantInvalid: []string{FieldNameAnalysis},
		},
		{
			name:        "two recommendations",
			raw:         strings.Replace(validReply, `"Cook at home", `, ``, 1),
			wantInvalid: []string{FieldNameRecommendations},
		},
		{
			name:        "blank recommendation and empty forecast",
			raw:         strings.NewReplacer(`"Cook at home"`, `"  "`, `"You will end the month ahead."`, `""`).Replace(validReply),
			wantInvalid: []string{FieldNameForecast, FieldNameRecommendations},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ParseReply(tt.raw, "$")
			if err != nil {
				t.Fatalf("ParseReply() error = %v", err)
			}
			if strings.Join(r.InvalidFields, ",") != strings.Join(tt.wantInvalid, ",") {
				t.Errorf("InvalidFields = %v, want %v", r.InvalidFields, tt.wantInvalid)
			}
			if len(r.Problems) != len(r.InvalidFields) {
				t.Errorf("expected one problem per invalid field, got %v", r.Problems)
			}
		})
	}
}

func TestParseReply_Coercions(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		wantScore   int
		wantSavings string
	}{
		{"numeric string score", `{"healthScore": " 64 ", "savingsPotential": "about $50"}`, 64, "about $50"},
		{"float with zero fraction", `{"healthScore": 80.0, "savingsPotential": 1234.5}`, 80, "€1,234.50"},
		{"boundary zero", `{"healthScore": 0, "savingsPotential": 0}`, 0, "€0.00"},
		{"boundary hundred", `{"healthScore": "100", "savingsPotential": "€10"}`, 100, "€10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ParseReply(tt.raw, "€")
			if err != nil {
				t.Fatalf("ParseReply() error = %v", err)
			}
			if r.HealthScore == nil || *r.HealthScore != tt.wantScore {
				t.Errorf("HealthScore = %v, want %d", r.HealthScore, tt.wantScore)
			}
			if r.SavingsPotential != tt.wantSavings {
				t.Errorf("SavingsPotential = %q, want %q", r.SavingsPotential, tt.wantSavings)
			}
		})
	}
}

func TestParseReply_RejectsNegativeSavings(t *testing.T) {
	r, err := ParseReply(`{"healthScore": 50, "savingsPotential": -20}`, "$")
	if err != nil {
		t.Fatalf("ParseReply() error = %v", err)
	}
	if r.SavingsPotential != "" {
		t.Errorf("negative savings should be rejected, got %q", r.SavingsPotential)
	}
}

func TestCleanModelJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding prose", "Here you go:\n{\"a\":{\"b\":2}}\nHope this helps!", `{"a":{"b":2}}`},
		{"no object", "nothing here", "nothing here"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanModelJSON(tt.in); got != tt.want {
				t.Errorf("cleanModelJSON() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInsightSchema_AnalysisLength(t *testing.T) {
	for _, f := range InsightSchema {
		if f.Name != FieldNameAnalysis {
			continue
		}
		if !strings.HasPrefix(f.Description, "One or two sentences") {
			t.Errorf("analysis description = %q, want one or two sentences", f.Description)
		}
		return
	}
	t.Fatal("analysis field missing from schema")
}
