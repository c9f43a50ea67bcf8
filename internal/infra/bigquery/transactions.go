package bigquery

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/dvloznov/finance-insights/internal/logger"
	"github.com/shopspring/decimal"
	"google.golang.org/api/iterator"
)

const transactionsTable = "transactions"

// TransactionRow is the subset of finance.transactions the insight
// pipeline reads.
type TransactionRow struct {
	TransactionID   string              `bigquery:"transaction_id"`   // REQUIRED
	UserID          bigquery.NullString `bigquery:"user_id"`          // NULLABLE
	TransactionDate civil.Date          `bigquery:"transaction_date"` // REQUIRED
	Amount          *big.Rat            `bigquery:"amount"`           // REQUIRED NUMERIC, signed
	Currency        string              `bigquery:"currency"`         // REQUIRED
	Direction       bigquery.NullString `bigquery:"direction"`        // NULLABLE
	RawDescription  string              `bigquery:"raw_description"`  // REQUIRED
	CategoryName    bigquery.NullString `bigquery:"category_name"`    // NULLABLE
}

// ToRecord maps a warehouse row onto a domain record. Direction wins over
// the amount's sign when it is set; warehouse category names are mapped
// onto the fixed category set.
func (row *TransactionRow) ToRecord() (domain.TransactionRecord, error) {
	if row.Amount == nil {
		return domain.TransactionRecord{}, fmt.Errorf("ToRecord: transaction %q has no amount", row.TransactionID)
	}
	amount, err := decimal.NewFromString(row.Amount.FloatString(9))
	if err != nil {
		return domain.TransactionRecord{}, fmt.Errorf("ToRecord: transaction %q: %w", row.TransactionID, err)
	}

	kind := domain.KindIncome
	if amount.IsNegative() {
		kind = domain.KindExpense
	}
	if row.Direction.Valid {
		switch strings.ToUpper(strings.TrimSpace(row.Direction.StringVal)) {
		case "IN", "CREDIT":
			kind = domain.KindIncome
		case "OUT", "DEBIT":
			kind = domain.KindExpense
		}
	}

	category := ""
	if row.CategoryName.Valid {
		category = row.CategoryName.StringVal
	}

	return domain.TransactionRecord{
		ID:         row.TransactionID,
		Kind:       kind,
		Amount:     amount.Abs(),
		Category:   domain.NormalizeCategory(kind, category),
		OccurredOn: row.TransactionDate,
		Note:       row.RawDescription,
	}, nil
}

// ListTransactions returns a user's transactions dated within [from, to].
// Rows that cannot be mapped are logged and skipped.
func (r *Repository) ListTransactions(ctx context.Context, userID string, from, to civil.Date) ([]domain.TransactionRecord, error) {
	log := logger.FromContext(ctx)

	q := r.client.Query(`
		SELECT
			t.transaction_id,
			t.user_id,
			t.transaction_date,
			t.amount,
			t.currency,
			t.direction,
			t.raw_description,
			t.category_name
		FROM ` + r.table(transactionsTable) + ` t
		WHERE t.user_id = @user_id
		  AND t.transaction_date >= @start_date
		  AND t.transaction_date <= @end_date
		ORDER BY t.transaction_date, t.transaction_id
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
		{Name: "start_date", Value: from},
		{Name: "end_date", Value: to},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListTransactions: query read: %w", err)
	}

	var records []domain.TransactionRecord
	for {
		var row TransactionRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListTransactions: iter next: %w", err)
		}

		rec, err := row.ToRecord()
		if err != nil {
			log.Warn().Err(err).Str("transaction_id", row.TransactionID).Msg("Skipping unmappable transaction row")
			continue
		}
		records = append(records, rec)
	}

	return records, nil
}
