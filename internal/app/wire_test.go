package app

import (
	"context"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/finance-insights/internal/config"
	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/dvloznov/finance-insights/internal/insight"
	"github.com/dvloznov/finance-insights/internal/pipeline"
	"github.com/shopspring/decimal"
)

func noEnv(string) (string, bool) { return "", false }

func testConfig(provider string, coalesce bool) *config.Config {
	return &config.Config{
		Provider:        provider,
		Timeout:         2 * time.Second,
		MaxTransactions: 10,
		CurrencySymbol:  "£",
		Coalesce:        coalesce,
	}
}

func TestNewGenerator(t *testing.T) {
	txs := []domain.TransactionRecord{
		{ID: "e1", Kind: domain.KindExpense, Amount: decimal.NewFromInt(40), Category: domain.CategoryEntertainment, OccurredOn: civil.Date{Year: 2024, Month: 3, Day: 1}},
	}

	tests := []struct {
		name         string
		provider     string
		coalesce     bool
		wantCoalesce bool
		wantReason   string
	}{
		{name: "remote disabled", provider: config.ProviderNone, wantReason: pipeline.ReasonRemoteDisabled},
		{name: "gemini without key", provider: config.ProviderGemini, wantReason: pipeline.ReasonNoCredential},
		{name: "anthropic without key", provider: config.ProviderAnthropic, wantReason: pipeline.ReasonNoCredential},
		{name: "coalesced", provider: config.ProviderNone, coalesce: true, wantCoalesce: true, wantReason: pipeline.ReasonRemoteDisabled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := newGenerator(testConfig(tt.provider, tt.coalesce), noEnv)

			if _, ok := gen.(*pipeline.Coalescer); ok != tt.wantCoalesce {
				t.Errorf("coalescer wrapping = %v, want %v", ok, tt.wantCoalesce)
			}

			got := gen.Generate(context.Background(), txs)
			if got.Source != insight.SourceLocal {
				t.Errorf("Source = %q, want LOCAL", got.Source)
			}
			if got.DegradationReason != tt.wantReason {
				t.Errorf("DegradationReason = %q, want %q", got.DegradationReason, tt.wantReason)
			}
			if got.SavingsPotential != "£10.00" {
				t.Errorf("SavingsPotential = %q, want configured currency symbol", got.SavingsPotential)
			}
		})
	}
}

func TestNewProvider(t *testing.T) {
	tests := []struct {
		provider string
		wantName string
	}{
		{config.ProviderGemini, "gemini"},
		{config.ProviderAnthropic, "anthropic"},
		{config.ProviderNone, ""},
	}
	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			p := newProvider(&config.Config{Provider: tt.provider, Model: "test-model"})
			if tt.wantName == "" {
				if p != nil {
					t.Errorf("expected no provider, got %s", p.Name())
				}
				return
			}
			if p == nil || p.Name() != tt.wantName {
				t.Errorf("expected %s provider, got %v", tt.wantName, p)
			}
		})
	}
}
