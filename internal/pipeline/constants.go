package pipeline

import (
	"strings"

	"github.com/dvloznov/finance-insights/internal/augment"
)

// Phase is a state of the per-request state machine.
type Phase string

const (
	PhaseStart           Phase = "START"
	PhaseLocalComputed   Phase = "LOCAL_COMPUTED"
	PhaseCredentialCheck Phase = "CREDENTIAL_CHECK"
	PhaseRemoteAttempted Phase = "REMOTE_ATTEMPTED"
	PhaseMerged          Phase = "MERGED"
	PhaseDegraded        Phase = "DEGRADED"
	PhaseDone            Phase = "DONE"
)

// Caller-presentable degradation reasons.
const (
	ReasonNoCredential      = "no credential"
	ReasonCredentialInvalid = "credential rejected by the AI service"
	ReasonRateLimited       = "AI service is busy, try again shortly"
	ReasonTimeout           = "AI service timed out"
	ReasonEmptyResponse     = "AI service returned an empty reply"
	ReasonMalformedResponse = "AI service returned an unreadable reply"
	ReasonUnavailable       = "AI service is unavailable"
	ReasonCanceled          = "request was cancelled"
	ReasonRemoteDisabled    = "remote augmentation disabled"
	ReasonInternalError     = "insight could not be computed"

	invalidFieldsPrefix = "AI reply had invalid fields: "
)

// ReasonFor maps a failure kind onto its degradation reason.
func ReasonFor(kind augment.Kind) string {
	switch kind {
	case augment.KindCredentialMissing:
		return ReasonNoCredential
	case augment.KindCredentialInvalid:
		return ReasonCredentialInvalid
	case augment.KindRateLimited:
		return ReasonRateLimited
	case augment.KindTimeout:
		return ReasonTimeout
	case augment.KindEmptyResponse:
		return ReasonEmptyResponse
	case augment.KindMalformedResponse:
		return ReasonMalformedResponse
	case augment.KindCanceled:
		return ReasonCanceled
	default:
		return ReasonUnavailable
	}
}

func invalidFieldsReason(fields []string) string {
	return invalidFieldsPrefix + strings.Join(fields, ", ")
}
