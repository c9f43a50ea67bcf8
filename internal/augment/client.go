// Package augment asks a remote text-generation service for a richer insight
// and validates what comes back. Providers are swappable adapters behind the
// Provider interface; every failure is reported as a *Failure.
package augment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dvloznov/finance-insights/internal/credentials"
	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/dvloznov/finance-insights/internal/insight"
)

// Defaults used by NewClient.
const (
	DefaultTimeout         = 10 * time.Second
	DefaultMaxTransactions = 40
)

// Request is the provider-agnostic prompt: an instruction, the JSON data the
// instruction refers to, and the reply contract.
type Request struct {
	Instruction string
	Data        []byte
	Schema      []Field
}

// Provider is one remote text-generation service. Generate returns the raw
// reply text; errors should already be classified into a *Failure where the
// adapter can tell what went wrong.
type Provider interface {
	Name() string
	Generate(ctx context.Context, cred credentials.Credential, req Request) (string, error)
}

// Client shapes input, calls a Provider exactly once under a deadline and
// validates the reply.
type Client struct {
	provider        Provider
	timeout         time.Duration
	maxTransactions int
	currencySymbol  string
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds a single remote call.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithMaxTransactions caps how many records are sent to the provider.
func WithMaxTransactions(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxTransactions = n
		}
	}
}

// WithCurrencySymbol sets the symbol used when a numeric savings figure has
// to be formatted.
func WithCurrencySymbol(symbol string) Option {
	return func(c *Client) {
		if symbol != "" {
			c.currencySymbol = symbol
		}
	}
}

// NewClient wraps provider with the given options.
func NewClient(provider Provider, opts ...Option) *Client {
	c := &Client{
		provider:        provider,
		timeout:         DefaultTimeout,
		maxTransactions: DefaultMaxTransactions,
		currencySymbol:  insight.DefaultCurrencySymbol,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ProviderName names the underlying provider.
func (c *Client) ProviderName() string {
	return c.provider.Name()
}

type generateResult struct {
	text string
	err  error
}

// Augment sends a shaped view of txs and summary to the provider and
// returns the validated reply. It returns no later than the configured
// timeout even if the provider ignores cancellation.
func (c *Client) Augment(ctx context.Context, txs []domain.TransactionRecord, cred credentials.Credential, summary insight.MetricsSummary) (*RemoteInsight, error) {
	name := c.provider.Name()
	if cred.Value == "" {
		return nil, newFailure(KindCredentialMissing, name, "no credential supplied")
	}

	req, err := c.buildRequest(txs, summary)
	if err != nil {
		return nil, newFailure(KindProviderUnavailable, name, "Augment: build request: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	done := make(chan generateResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- generateResult{err: newFailure(KindProviderUnavailable, name, "provider panic: %v", r)}
			}
		}()
		text, err := c.provider.Generate(callCtx, cred, req)
		done <- generateResult{text: text, err: err}
	}()

	var res generateResult
	select {
	case res = <-done:
	case <-callCtx.Done():
		return nil, c.contextFailure(ctx, callCtx.Err())
	}

	if res.err != nil {
		if callCtx.Err() != nil {
			return nil, c.contextFailure(ctx, callCtx.Err())
		}
		return nil, c.asFailure(res.err)
	}

	remote, err := ParseReply(res.text, c.currencySymbol)
	if err != nil {
		return nil, c.asFailure(err)
	}
	return remote, nil
}

// contextFailure distinguishes the caller going away from our own deadline.
func (c *Client) contextFailure(parent context.Context, err error) *Failure {
	name := c.provider.Name()
	if parent.Err() != nil && errors.Is(parent.Err(), context.Canceled) {
		return &Failure{Kind: KindCanceled, Provider: name, Err: parent.Err()}
	}
	return &Failure{Kind: KindTimeout, Provider: name, Err: fmt.Errorf("no reply within %s: %w", c.timeout, err)}
}

func (c *Client) asFailure(err error) *Failure {
	var f *Failure
	if errors.As(err, &f) {
		if f.Provider == "" {
			f.Provider = c.provider.Name()
		}
		return f
	}
	return &Failure{Kind: KindOf(err), Provider: c.provider.Name(), Err: err}
}
