package pipeline

import (
	"context"

	"github.com/dvloznov/finance-insights/internal/augment"
	"github.com/dvloznov/finance-insights/internal/credentials"
	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/dvloznov/finance-insights/internal/insight"
)

// PipelineState holds the per-request state shared by the steps.
type PipelineState struct {
	Phase        Phase
	Transactions []domain.TransactionRecord
	Summary      insight.MetricsSummary
	Local        insight.Insight
	Credential   credentials.Credential
	Remote       *augment.RemoteInsight
	Failure      error
	Result       insight.Insight
}

// computeLocal: START -> LOCAL_COMPUTED.
func (o *Orchestrator) computeLocal(_ context.Context, state *PipelineState) Phase {
	state.Summary = insight.Aggregate(state.Transactions)
	state.Local = o.scorer.Score(state.Summary)
	state.Result = state.Local.Clone()
	return PhaseLocalComputed
}

// checkCredential: LOCAL_COMPUTED -> CREDENTIAL_CHECK, or DONE when no
// remote attempt is possible.
func (o *Orchestrator) checkCredential(_ context.Context, state *PipelineState) Phase {
	if o.augmenter == nil || o.resolver == nil {
		state.Result.DegradationReason = ReasonRemoteDisabled
		return PhaseDone
	}

	cred, ok := o.resolver.Resolve()
	if !ok {
		state.Failure = &augment.Failure{Kind: augment.KindCredentialMissing, Provider: o.augmenter.ProviderName()}
		state.Result.DegradationReason = ReasonNoCredential
		return PhaseDone
	}
	state.Credential = cred
	return PhaseCredentialCheck
}

// attemptRemote: CREDENTIAL_CHECK -> REMOTE_ATTEMPTED. Exactly one call,
// no retries.
func (o *Orchestrator) attemptRemote(ctx context.Context, state *PipelineState) Phase {
	if err := ctx.Err(); err != nil {
		state.Failure = &augment.Failure{Kind: augment.KindOf(err), Provider: o.augmenter.ProviderName(), Err: err}
		return PhaseRemoteAttempted
	}

	remote, err := o.augmenter.Augment(ctx, state.Transactions, state.Credential, state.Summary)
	if err != nil {
		state.Failure = err
		return PhaseRemoteAttempted
	}
	state.Remote = remote
	return PhaseRemoteAttempted
}

// resolveRemote: REMOTE_ATTEMPTED -> MERGED or DEGRADED.
func (o *Orchestrator) resolveRemote(_ context.Context, state *PipelineState) Phase {
	if state.Failure != nil || state.Remote == nil {
		state.Result = state.Local.Clone()
		state.Result.Source = insight.SourceLocal
		state.Result.DegradationReason = ReasonFor(augment.KindOf(state.Failure))
		return PhaseDegraded
	}
	state.Result = merge(state.Local, state.Remote)
	return PhaseMerged
}

// merge overlays every validated remote field onto the local insight. The
// tier always follows the final score.
func merge(local insight.Insight, remote *augment.RemoteInsight) insight.Insight {
	out := local.Clone()
	if remote.HealthScore != nil {
		out.HealthScore = *remote.HealthScore
	}
	if remote.Analysis != "" {
		out.Analysis = remote.Analysis
	}
	if remote.Forecast != "" {
		out.Forecast = remote.Forecast
	}
	if len(remote.Recommendations) == insight.RecommendationCount {
		out.Recommendations = append([]string(nil), remote.Recommendations...)
	}
	if remote.SavingsPotential != "" {
		out.SavingsPotential = remote.SavingsPotential
	}
	out.Tier = insight.Classify(out.HealthScore)

	if remote.Partial() {
		out.Source = insight.SourceRemoteDegraded
		out.DegradationReason = invalidFieldsReason(remote.InvalidFields)
	} else {
		out.Source = insight.SourceRemote
		out.DegradationReason = ""
	}
	return out
}
