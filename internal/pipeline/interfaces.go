package pipeline

import (
	"context"

	"github.com/dvloznov/finance-insights/internal/augment"
	"github.com/dvloznov/finance-insights/internal/credentials"
	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/dvloznov/finance-insights/internal/insight"
)

// Scorer produces the deterministic local insight. insight.Scorer
// implements it.
type Scorer interface {
	Score(summary insight.MetricsSummary) insight.Insight
}

// CredentialResolver locates the remote credential. *credentials.Resolver
// implements it.
type CredentialResolver interface {
	Resolve() (credentials.Credential, bool)
}

// Augmenter performs one remote augmentation attempt. *augment.Client
// implements it.
type Augmenter interface {
	ProviderName() string
	Augment(ctx context.Context, txs []domain.TransactionRecord, cred credentials.Credential, summary insight.MetricsSummary) (*augment.RemoteInsight, error)
}

// Generator turns a transaction snapshot into an insight. It never fails.
type Generator interface {
	Generate(ctx context.Context, txs []domain.TransactionRecord) insight.Insight
}
