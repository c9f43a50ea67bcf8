package bigquery

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/finance-insights/internal/insight"
	"github.com/google/uuid"
)

const insightRunsTable = "insight_runs"

// InsightRunRow is one audit record in finance.insight_runs.
type InsightRunRow struct {
	RunID             string              `bigquery:"run_id"`             // REQUIRED
	UserID            bigquery.NullString `bigquery:"user_id"`            // NULLABLE
	CreatedTS         time.Time           `bigquery:"created_ts"`         // REQUIRED
	Source            string              `bigquery:"source"`             // REQUIRED
	HealthScore       int64               `bigquery:"health_score"`       // REQUIRED
	Tier              string              `bigquery:"tier"`               // REQUIRED
	DegradationReason bigquery.NullString `bigquery:"degradation_reason"` // NULLABLE
	TransactionCount  int64               `bigquery:"transaction_count"`  // REQUIRED
	Fingerprint       string              `bigquery:"fingerprint"`        // REQUIRED
	InsightJSON       bigquery.NullJSON   `bigquery:"insight_json"`       // NULLABLE JSON
}

// NewInsightRunRow builds an audit row for a computed insight. userID may
// be empty for ad-hoc requests.
func NewInsightRunRow(userID, fingerprint string, transactionCount int, in insight.Insight, now time.Time) (*InsightRunRow, error) {
	payload, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("NewInsightRunRow: marshal insight: %w", err)
	}
	return &InsightRunRow{
		RunID:             uuid.NewString(),
		UserID:            bigquery.NullString{StringVal: userID, Valid: userID != ""},
		CreatedTS:         now.UTC(),
		Source:            string(in.Source),
		HealthScore:       int64(in.HealthScore),
		Tier:              string(in.Tier),
		DegradationReason: bigquery.NullString{StringVal: in.DegradationReason, Valid: in.DegradationReason != ""},
		TransactionCount:  int64(transactionCount),
		Fingerprint:       fingerprint,
		InsightJSON:       bigquery.NullJSON{JSONVal: string(payload), Valid: true},
	}, nil
}

// InsertInsightRun appends row to finance.insight_runs. Uses DML INSERT to
// avoid streaming buffer issues.
func (r *Repository) InsertInsightRun(ctx context.Context, row *InsightRunRow) error {
	q := r.client.Query(`
		INSERT INTO ` + r.table(insightRunsTable) + ` (
			run_id, user_id, created_ts,
			source, health_score, tier,
			degradation_reason, transaction_count, fingerprint,
			insight_json
		)
		VALUES (
			@run_id, @user_id, @created_ts,
			@source, @health_score, @tier,
			@degradation_reason, @transaction_count, @fingerprint,
			@insight_json
		)
	`)

	q.Parameters = []bigquery.QueryParameter{
		{Name: "run_id", Value: row.RunID},
		{Name: "user_id", Value: row.UserID},
		{Name: "created_ts", Value: row.CreatedTS},
		{Name: "source", Value: row.Source},
		{Name: "health_score", Value: row.HealthScore},
		{Name: "tier", Value: row.Tier},
		{Name: "degradation_reason", Value: row.DegradationReason},
		{Name: "transaction_count", Value: row.TransactionCount},
		{Name: "fingerprint", Value: row.Fingerprint},
		{Name: "insight_json", Value: row.InsightJSON},
	}

	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("InsertInsightRun: running insert query: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("InsertInsightRun: waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("InsertInsightRun: job error: %w", err)
	}

	return nil
}
