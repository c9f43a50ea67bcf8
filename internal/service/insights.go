// Package service wires the insight pipeline to the snapshot warehouse and
// the audit log. It is shared by the HTTP handlers and the job worker.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/finance-insights/internal/domain"
	infraBQ "github.com/dvloznov/finance-insights/internal/infra/bigquery"
	"github.com/dvloznov/finance-insights/internal/insight"
	"github.com/dvloznov/finance-insights/internal/jobs"
	"github.com/dvloznov/finance-insights/internal/logger"
	"github.com/dvloznov/finance-insights/internal/pipeline"
)

// ErrWarehouseDisabled is returned by range operations when no BigQuery
// repository is configured.
var ErrWarehouseDisabled = errors.New("transaction warehouse is not configured")

// InsightService computes insights and records each one in the audit log.
type InsightService struct {
	generator pipeline.Generator
	repo      infraBQ.InsightRepository
	now       func() time.Time
}

// NewInsightService creates the service. repo may be nil, in which case
// range queries fail with ErrWarehouseDisabled and nothing is audited.
func NewInsightService(generator pipeline.Generator, repo infraBQ.InsightRepository) *InsightService {
	return &InsightService{
		generator: generator,
		repo:      repo,
		now:       time.Now,
	}
}

// WarehouseEnabled reports whether range operations are available.
func (s *InsightService) WarehouseEnabled() bool {
	return s.repo != nil
}

// Generate computes an insight for an explicit snapshot. userID may be
// empty for anonymous requests.
func (s *InsightService) Generate(ctx context.Context, userID string, txs []domain.TransactionRecord) insight.Insight {
	result := s.generator.Generate(ctx, txs)
	s.record(ctx, userID, txs, result)
	return result
}

// GenerateForRange loads the user's transactions dated within [from, to]
// and computes an insight over them.
func (s *InsightService) GenerateForRange(ctx context.Context, userID string, from, to civil.Date) (insight.Insight, error) {
	if s.repo == nil {
		return insight.Insight{}, ErrWarehouseDisabled
	}
	if to.Before(from) {
		return insight.Insight{}, fmt.Errorf("GenerateForRange: range ends before it starts: %s > %s", from, to)
	}

	txs, err := s.repo.ListTransactions(ctx, userID, from, to)
	if err != nil {
		return insight.Insight{}, fmt.Errorf("GenerateForRange: %w", err)
	}

	return s.Generate(ctx, userID, txs), nil
}

// HandleJob is a jobs.JobHandler that fills in job.Result.
func (s *InsightService) HandleJob(ctx context.Context, job *jobs.InsightJob) error {
	log := logger.FromContext(ctx).With().
		Str("job_id", job.JobID).
		Str("user_id", job.UserID).
		Logger()
	log.Info().Msg("Processing insight job")

	result, err := s.GenerateForRange(logger.WithContext(ctx, log), job.UserID, job.From, job.To)
	if err != nil {
		log.Error().Err(err).Msg("Insight job failed")
		return err
	}

	job.Result = &result
	log.Info().
		Str("source", string(result.Source)).
		Int("health_score", result.HealthScore).
		Msg("Insight job completed")
	return nil
}

// record appends an audit row. The caller already has its insight, so
// failures are only logged.
func (s *InsightService) record(ctx context.Context, userID string, txs []domain.TransactionRecord, result insight.Insight) {
	if s.repo == nil {
		return
	}
	log := logger.FromContext(ctx)

	row, err := infraBQ.NewInsightRunRow(userID, pipeline.Fingerprint(txs), len(txs), result, s.now())
	if err != nil {
		log.Warn().Err(err).Msg("Failed to build insight audit row")
		return
	}
	if err := s.repo.InsertInsightRun(ctx, row); err != nil {
		log.Warn().Err(err).Str("run_id", row.RunID).Msg("Failed to record insight run")
		return
	}
	log.Debug().Str("run_id", row.RunID).Msg("Recorded insight run")
}
