// Package app assembles the insight pipeline from configuration.
package app

import (
	"os"

	"github.com/dvloznov/finance-insights/internal/augment"
	"github.com/dvloznov/finance-insights/internal/config"
	"github.com/dvloznov/finance-insights/internal/credentials"
	"github.com/dvloznov/finance-insights/internal/insight"
	"github.com/dvloznov/finance-insights/internal/pipeline"
)

// NewGenerator builds the orchestrator described by cfg. Credentials are
// read from the process environment on every request, so rotated keys are
// picked up without a restart.
func NewGenerator(cfg *config.Config) pipeline.Generator {
	return newGenerator(cfg, os.LookupEnv)
}

func newGenerator(cfg *config.Config, lookup credentials.LookupFunc) pipeline.Generator {
	opts := []pipeline.Option{
		pipeline.WithScorer(insight.Scorer{CurrencySymbol: cfg.CurrencySymbol}),
	}

	if provider := newProvider(cfg); provider != nil {
		client := augment.NewClient(provider,
			augment.WithTimeout(cfg.Timeout),
			augment.WithMaxTransactions(cfg.MaxTransactions),
			augment.WithCurrencySymbol(cfg.CurrencySymbol),
		)
		opts = append(opts, pipeline.WithRemote(credentials.ForProvider(cfg.Provider, lookup), client))
	}

	var gen pipeline.Generator = pipeline.NewOrchestrator(opts...)
	if cfg.Coalesce {
		gen = pipeline.NewCoalescer(gen, cfg.Timeout)
	}
	return gen
}

// newProvider returns nil when remote augmentation is disabled.
func newProvider(cfg *config.Config) augment.Provider {
	switch cfg.Provider {
	case config.ProviderGemini:
		return augment.NewGeminiProvider(cfg.Model)
	case config.ProviderAnthropic:
		return augment.NewAnthropicProvider(cfg.Model)
	default:
		return nil
	}
}
