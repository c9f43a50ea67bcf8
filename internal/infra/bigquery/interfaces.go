package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/dvloznov/finance-insights/internal/domain"
)

// InsightRepository is the warehouse surface used by the API. Repository
// implements it; tests substitute a mock.
type InsightRepository interface {
	ListTransactions(ctx context.Context, userID string, from, to civil.Date) ([]domain.TransactionRecord, error)
	InsertInsightRun(ctx context.Context, row *InsightRunRow) error
}

// Repository holds a shared BigQuery client to avoid creating a new
// connection for each operation.
type Repository struct {
	client    *bigquery.Client
	projectID string
	datasetID string
}

// NewRepository creates a repository for projectID.datasetID.
func NewRepository(ctx context.Context, projectID, datasetID string) (*Repository, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewRepository: creating client: %w", err)
	}
	return &Repository{
		client:    client,
		projectID: projectID,
		datasetID: datasetID,
	}, nil
}

// Close closes the BigQuery client connection. This should be called when
// the repository is no longer needed to release resources.
func (r *Repository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// table returns the fully qualified, backtick-quoted table name.
func (r *Repository) table(name string) string {
	return "`" + r.projectID + "." + r.datasetID + "." + name + "`"
}
