package domain

import (
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Kind is the direction of a transaction record.
type Kind string

const (
	KindIncome  Kind = "INCOME"
	KindExpense Kind = "EXPENSE"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

// ParseKind normalizes a user supplied kind ("income", " EXPENSE ").
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToUpper(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("invalid kind %q", s)
	}
	return k, nil
}

// TransactionRecord is one income or expense entry, owned by the persistence
// collaborator. The insight pipeline only reads it.
type TransactionRecord struct {
	ID         string          `json:"id"`
	Kind       Kind            `json:"kind"`
	Amount     decimal.Decimal `json:"amount"`     // always positive, direction is carried by Kind
	Category   Category        `json:"category"`   // drawn from the set valid for Kind
	OccurredOn civil.Date      `json:"occurredOn"` // calendar date, "YYYY-MM-DD"
	Note       string          `json:"note,omitempty"`
}

// Validate checks the record invariants: positive amount, known kind,
// category from the kind's set and a real calendar date.
func (t TransactionRecord) Validate() error {
	if !t.Kind.Valid() {
		return fmt.Errorf("transaction %q: invalid kind %q", t.ID, t.Kind)
	}
	if !t.Amount.IsPositive() {
		return fmt.Errorf("transaction %q: amount must be > 0, got %s", t.ID, t.Amount.String())
	}
	if !t.Category.ValidFor(t.Kind) {
		return fmt.Errorf("transaction %q: category %q is not valid for %s", t.ID, t.Category, t.Kind)
	}
	if !t.OccurredOn.IsValid() {
		return fmt.Errorf("transaction %q: invalid date %v", t.ID, t.OccurredOn)
	}
	return nil
}
