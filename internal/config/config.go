// Package config loads service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dvloznov/finance-insights/internal/augment"
	"github.com/dvloznov/finance-insights/internal/credentials"
	"github.com/dvloznov/finance-insights/internal/insight"
	"github.com/dvloznov/finance-insights/internal/logger"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Supported INSIGHT_PROVIDER values.
const (
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
	ProviderNone      = "none"
)

// Timeout bounds accepted for INSIGHT_TIMEOUT.
const (
	MinTimeout = time.Second
	MaxTimeout = 60 * time.Second
)

// Config holds application configuration
type Config struct {
	// Server
	Port     string
	LogLevel zerolog.Level

	// Insight pipeline
	Provider        string
	Model           string
	Timeout         time.Duration
	MaxTransactions int
	CurrencySymbol  string
	Coalesce        bool

	// BigQuery; empty project disables warehouse features.
	BigQueryProject string
	BigQueryDataset string
}

// Load reads an optional .env file and then the process environment.
// Values in the real environment take precedence over .env.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("Load: reading env file: %w", err)
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from lookup without touching files.
func FromLookup(lookup credentials.LookupFunc) (*Config, error) {
	get := func(key, def string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return def
	}

	var errs []error

	level, err := logger.ParseLevel(get("LOG_LEVEL", "info"))
	if err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}

	cfg := &Config{
		Port:            get("PORT", "8080"),
		LogLevel:        level,
		Provider:        strings.ToLower(get("INSIGHT_PROVIDER", ProviderGemini)),
		CurrencySymbol:  get("INSIGHT_CURRENCY_SYMBOL", insight.DefaultCurrencySymbol),
		BigQueryProject: get("BIGQUERY_PROJECT", ""),
		BigQueryDataset: get("BIGQUERY_DATASET", "finance"),
	}

	switch cfg.Provider {
	case ProviderGemini:
		cfg.Model = get("INSIGHT_MODEL", augment.DefaultGeminiModel)
	case ProviderAnthropic:
		cfg.Model = get("INSIGHT_MODEL", augment.DefaultAnthropicModel)
	case ProviderNone:
	default:
		errs = append(errs, fmt.Errorf("INSIGHT_PROVIDER: unknown provider %q", cfg.Provider))
	}

	timeout, err := time.ParseDuration(get("INSIGHT_TIMEOUT", augment.DefaultTimeout.String()))
	switch {
	case err != nil:
		errs = append(errs, fmt.Errorf("INSIGHT_TIMEOUT: %w", err))
	case timeout < MinTimeout || timeout > MaxTimeout:
		errs = append(errs, fmt.Errorf("INSIGHT_TIMEOUT: %s outside %s..%s", timeout, MinTimeout, MaxTimeout))
	}
	cfg.Timeout = timeout

	maxTx, err := strconv.Atoi(get("INSIGHT_MAX_TRANSACTIONS", strconv.Itoa(augment.DefaultMaxTransactions)))
	switch {
	case err != nil:
		errs = append(errs, fmt.Errorf("INSIGHT_MAX_TRANSACTIONS: %w", err))
	case maxTx <= 0:
		errs = append(errs, fmt.Errorf("INSIGHT_MAX_TRANSACTIONS: must be positive, got %d", maxTx))
	}
	cfg.MaxTransactions = maxTx

	coalesce, err := strconv.ParseBool(get("INSIGHT_COALESCE", "false"))
	if err != nil {
		errs = append(errs, fmt.Errorf("INSIGHT_COALESCE: %w", err))
	}
	cfg.Coalesce = coalesce

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("FromLookup: invalid configuration: %w", err)
	}
	return cfg, nil
}

// RemoteEnabled reports whether a remote provider is configured.
func (c *Config) RemoteEnabled() bool {
	return c.Provider != ProviderNone
}

// BigQueryEnabled reports whether warehouse features are available.
func (c *Config) BigQueryEnabled() bool {
	return c.BigQueryProject != ""
}
