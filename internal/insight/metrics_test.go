package insight

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/shopspring/decimal"
)

func march(day int) civil.Date {
	return civil.Date{Year: 2024, Month: 3, Day: day}
}

func income(id string, amount int64, day int) domain.TransactionRecord {
	return domain.TransactionRecord{ID: id, Kind: domain.KindIncome, Amount: decimal.NewFromInt(amount), Category: domain.CategorySalary, OccurredOn: march(day)}
}

func expense(id string, amount int64, cat domain.Category, day int) domain.TransactionRecord {
	return domain.TransactionRecord{ID: id, Kind: domain.KindExpense, Amount: decimal.NewFromInt(amount), Category: cat, OccurredOn: march(day)}
}

func TestAggregate_Empty(t *testing.T) {
	s := Aggregate(nil)

	if !s.TotalIncome.IsZero() || !s.TotalExpense.IsZero() || !s.NetBalance.IsZero() {
		t.Errorf("expected zero totals, got income=%s expense=%s net=%s", s.TotalIncome, s.TotalExpense, s.NetBalance)
	}
	if s.SavingsRate != 0 {
		t.Errorf("SavingsRate = %v, want 0", s.SavingsRate)
	}
	if len(s.CategoryTotals) != 0 {
		t.Errorf("expected no category totals, got %v", s.CategoryTotals)
	}
	if s.ElapsedDays != 0 || s.PeriodDays != 0 {
		t.Errorf("expected empty period, got elapsed=%d period=%d", s.ElapsedDays, s.PeriodDays)
	}
}

func TestAggregate_Scenario(t *testing.T) {
	txs := []domain.TransactionRecord{
		income("i1", 50000, 1),
		expense("e1", 20000, domain.CategoryFood, 5),
		expense("e2", 5000, domain.CategoryEntertainment, 10),
	}

	s := Aggregate(txs)

	checks := []struct {
		name string
		got  decimal.Decimal
		want int64
	}{
		{"TotalIncome", s.TotalIncome, 50000},
		{"TotalExpense", s.TotalExpense, 25000},
		{"NetBalance", s.NetBalance, 25000},
	}
	for _, c := range checks {
		if !c.got.Equal(decimal.NewFromInt(c.want)) {
			t.Errorf("%s = %s, want %d", c.name, c.got, c.want)
		}
	}

	if s.SavingsRate != 0.5 {
		t.Errorf("SavingsRate = %v, want 0.5", s.SavingsRate)
	}
	if len(s.CategoryTotals) != 2 {
		t.Fatalf("expected 2 category totals, got %d", len(s.CategoryTotals))
	}
	if s.CategoryTotals[0].Category != domain.CategoryFood || s.CategoryTotals[1].Category != domain.CategoryEntertainment {
		t.Errorf("category totals not sorted descending: %+v", s.CategoryTotals)
	}
	if s.AsOf != march(10) || s.PeriodStart != march(1) {
		t.Errorf("period = %v..%v, want 2024-03-01..2024-03-10", s.PeriodStart, s.AsOf)
	}
	if s.ElapsedDays != 10 || s.PeriodDays != 31 {
		t.Errorf("elapsed/period = %d/%d, want 10/31", s.ElapsedDays, s.PeriodDays)
	}
}

func TestAggregate_NoIncome(t *testing.T) {
	s := Aggregate([]domain.TransactionRecord{expense("e1", 1000, domain.CategoryFood, 3)})

	if s.SavingsRate != 0 {
		t.Errorf("SavingsRate = %v, want 0 without income", s.SavingsRate)
	}
	if !s.NetBalance.Equal(decimal.NewFromInt(-1000)) {
		t.Errorf("NetBalance = %s, want -1000", s.NetBalance)
	}
}

func TestAggregate_SkipsInvalidAndDoesNotMutate(t *testing.T) {
	txs := []domain.TransactionRecord{
		income("i1", 1000, 2),
		{ID: "bad-amount", Kind: domain.KindExpense, Amount: decimal.Zero, Category: domain.CategoryFood, OccurredOn: march(3)},
		{ID: "bad-category", Kind: domain.KindExpense, Amount: decimal.NewFromInt(10), Category: domain.CategorySalary, OccurredOn: march(3)},
		expense("e1", 100, domain.CategoryHousing, 4),
	}
	before := make([]domain.TransactionRecord, len(txs))
	copy(before, txs)

	s := Aggregate(txs)

	if s.Skipped != 2 || s.TransactionCount != 2 {
		t.Errorf("skipped/count = %d/%d, want 2/2", s.Skipped, s.TransactionCount)
	}
	for i := range txs {
		if txs[i].ID != before[i].ID || !txs[i].Amount.Equal(before[i].Amount) {
			t.Errorf("input record %d was modified", i)
		}
	}
}

func TestAggregate_OmitsIncomeCategoriesAndTieBreaks(t *testing.T) {
	txs := []domain.TransactionRecord{
		income("i1", 100, 1),
		expense("e1", 50, domain.CategoryTransport, 1),
		expense("e2", 50, domain.CategoryFood, 1),
	}

	s := Aggregate(txs)

	if len(s.CategoryTotals) != 2 {
		t.Fatalf("expected only expense categories, got %+v", s.CategoryTotals)
	}
	if s.CategoryTotals[0].Category != domain.CategoryFood {
		t.Errorf("equal amounts should sort by name, got %+v", s.CategoryTotals)
	}
}

func TestDaysInMonth(t *testing.T) {
	tests := []struct {
		year  int
		month time.Month
		want  int
	}{
		{2024, time.February, 29},
		{2023, time.February, 28},
		{2024, time.April, 30},
		{2024, time.December, 31},
	}
	for _, tt := range tests {
		if got := daysInMonth(tt.year, tt.month); got != tt.want {
			t.Errorf("daysInMonth(%d, %s) = %d, want %d", tt.year, tt.month, got, tt.want)
		}
	}
}
