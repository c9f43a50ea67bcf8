// Package pipeline composes local scoring, credential lookup and remote
// augmentation into a single operation that always yields an insight.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/dvloznov/finance-insights/internal/augment"
	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/dvloznov/finance-insights/internal/insight"
	"github.com/dvloznov/finance-insights/internal/logger"
	"github.com/rs/zerolog"
)

// Orchestrator runs the insight state machine. It is safe for concurrent
// use; each call to Generate owns its own PipelineState.
type Orchestrator struct {
	scorer    Scorer
	resolver  CredentialResolver
	augmenter Augmenter
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithScorer replaces insight.DefaultScorer.
func WithScorer(s Scorer) Option {
	return func(o *Orchestrator) {
		if s != nil {
			o.scorer = s
		}
	}
}

// WithRemote enables remote augmentation.
func WithRemote(resolver CredentialResolver, augmenter Augmenter) Option {
	return func(o *Orchestrator) {
		o.resolver = resolver
		o.augmenter = augmenter
	}
}

// NewOrchestrator builds an orchestrator. Without WithRemote every result
// is LOCAL.
func NewOrchestrator(opts ...Option) *Orchestrator {
	o := &Orchestrator{scorer: insight.DefaultScorer}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Generate never fails: every error is converted into a degraded but
// well-formed insight. The caller's slice is not modified.
func (o *Orchestrator) Generate(ctx context.Context, txs []domain.TransactionRecord) insight.Insight {
	start := time.Now()
	log := logger.FromContext(ctx).With().Str("component", "insight_pipeline").Logger()

	state := &PipelineState{Phase: PhaseStart, Transactions: txs}
	for state.Phase != PhaseDone {
		next := o.runStep(ctx, log, state)
		log.Debug().
			Str("from", string(state.Phase)).
			Str("to", string(next)).
			Msg("Phase transition")
		state.Phase = next
	}

	event := log.Info()
	if state.Failure != nil {
		event = log.Warn().Err(state.Failure).Str("failure_kind", string(augment.KindOf(state.Failure)))
		var failure *augment.Failure
		if errors.As(state.Failure, &failure) {
			event = event.
				Str("failure_class", string(failure.Class())).
				Bool("retryable", failure.Retryable())
		}
	}
	event.
		Int("transactions", len(txs)).
		Int("skipped", state.Summary.Skipped).
		Str("source", string(state.Result.Source)).
		Int("health_score", state.Result.HealthScore).
		Str("degradation_reason", state.Result.DegradationReason).
		Dur("duration", time.Since(start)).
		Msg("Insight generated")

	return state.Result
}

// runStep executes the step for the current phase and turns a panic into a
// degraded transition.
func (o *Orchestrator) runStep(ctx context.Context, log zerolog.Logger, state *PipelineState) (next Phase) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		log.Error().
			Str("phase", string(state.Phase)).
			Interface("panic", r).
			Bytes("stack", debug.Stack()).
			Msg("Insight step panicked")

		if state.Phase == PhaseStart {
			state.Failure = fmt.Errorf("local scoring panicked: %v", r)
			state.Result = insight.Static(ReasonInternalError)
			next = PhaseDone
			return
		}
		state.Failure = &augment.Failure{Kind: augment.KindProviderUnavailable, Err: fmt.Errorf("remote step panicked: %v", r)}
		state.Result = state.Local.Clone()
		state.Result.Source = insight.SourceLocal
		state.Result.DegradationReason = ReasonUnavailable
		next = PhaseDegraded
	}()

	switch state.Phase {
	case PhaseStart:
		return o.computeLocal(ctx, state)
	case PhaseLocalComputed:
		return o.checkCredential(ctx, state)
	case PhaseCredentialCheck:
		log.Debug().
			Str("provider", o.augmenter.ProviderName()).
			Str("credential_source", state.Credential.Source).
			Msg("Attempting remote augmentation")
		return o.attemptRemote(ctx, state)
	case PhaseRemoteAttempted:
		return o.resolveRemote(ctx, state)
	default:
		return PhaseDone
	}
}
