package domain

import (
	"encoding/json"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

func TestTransactionRecord_Validate(t *testing.T) {
	day := civil.Date{Year: 2024, Month: 3, Day: 5}

	tests := []struct {
		name    string
		rec     TransactionRecord
		wantErr bool
	}{
		{
			name: "valid expense",
			rec:  TransactionRecord{ID: "1", Kind: KindExpense, Amount: decimal.NewFromInt(10), Category: CategoryFood, OccurredOn: day},
		},
		{
			name: "valid income",
			rec:  TransactionRecord{ID: "2", Kind: KindIncome, Amount: decimal.RequireFromString("0.01"), Category: CategorySalary, OccurredOn: day},
		},
		{
			name:    "zero amount",
			rec:     TransactionRecord{ID: "3", Kind: KindExpense, Amount: decimal.Zero, Category: CategoryFood, OccurredOn: day},
			wantErr: true,
		},
		{
			name:    "negative amount",
			rec:     TransactionRecord{ID: "4", Kind: KindExpense, Amount: decimal.NewFromInt(-5), Category: CategoryFood, OccurredOn: day},
			wantErr: true,
		},
		{
			name:    "income category on expense",
			rec:     TransactionRecord{ID: "5", Kind: KindExpense, Amount: decimal.NewFromInt(5), Category: CategorySalary, OccurredOn: day},
			wantErr: true,
		},
		{
			name:    "unknown kind",
			rec:     TransactionRecord{ID: "6", Kind: "TRANSFER", Amount: decimal.NewFromInt(5), Category: CategoryFood, OccurredOn: day},
			wantErr: true,
		},
		{
			name:    "invalid date",
			rec:     TransactionRecord{ID: "7", Kind: KindExpense, Amount: decimal.NewFromInt(5), Category: CategoryFood, OccurredOn: civil.Date{Year: 2024, Month: 2, Day: 31}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rec.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		input   string
		want    Kind
		wantErr bool
	}{
		{"INCOME", KindIncome, false},
		{" expense ", KindExpense, false},
		{"Income", KindIncome, false},
		{"transfer", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseKind(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseKind(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseKind(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeCategory(t *testing.T) {
	tests := []struct {
		kind  Kind
		input string
		want  Category
	}{
		{KindExpense, "food", CategoryFood},
		{KindExpense, "  ENTERTAINMENT ", CategoryEntertainment},
		{KindExpense, "Groceries", CategoryOther},
		{KindIncome, "salary", CategorySalary},
		{KindIncome, "Lottery", CategoryOtherIncome},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind)+"/"+tt.input, func(t *testing.T) {
			if got := NormalizeCategory(tt.kind, tt.input); got != tt.want {
				t.Errorf("NormalizeCategory(%s, %q) = %q, want %q", tt.kind, tt.input, got, tt.want)
			}
		})
	}
}

func TestCategories_ReturnsCopy(t *testing.T) {
	cats := Categories(KindExpense)
	cats[0] = "Mutated"

	if Categories(KindExpense)[0] != CategoryFood {
		t.Error("Categories must not expose the package-level slice")
	}
	if Categories("UNKNOWN") != nil {
		t.Error("expected nil categories for unknown kind")
	}
}

func TestTransactionRecord_JSON(t *testing.T) {
	raw := `{"id":"t1","kind":"EXPENSE","amount":12.5,"category":"Food","occurredOn":"2024-03-05"}`

	var rec TransactionRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if !rec.Amount.Equal(decimal.RequireFromString("12.5")) {
		t.Errorf("amount = %s, want 12.5", rec.Amount)
	}
	if rec.OccurredOn != (civil.Date{Year: 2024, Month: 3, Day: 5}) {
		t.Errorf("occurredOn = %v, want 2024-03-05", rec.OccurredOn)
	}
	if err := rec.Validate(); err != nil {
		t.Errorf("expected decoded record to be valid, got %v", err)
	}
}
