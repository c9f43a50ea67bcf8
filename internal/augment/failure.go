package augment

import (
	"context"
	"errors"
	"fmt"
)

// Kind tags why a remote augmentation attempt failed.
type Kind string

const (
	KindCredentialMissing   Kind = "CREDENTIAL_MISSING"
	KindCredentialInvalid   Kind = "CREDENTIAL_INVALID"
	KindRateLimited         Kind = "RATE_LIMITED"
	KindTimeout             Kind = "TIMEOUT"
	KindEmptyResponse       Kind = "EMPTY_RESPONSE"
	KindMalformedResponse   Kind = "MALFORMED_RESPONSE"
	KindProviderUnavailable Kind = "PROVIDER_UNAVAILABLE"
	KindCanceled            Kind = "CANCELED"
)

// Class groups kinds by how a caller should react to them.
type Class string

const (
	ClassConfiguration     Class = "ConfigurationError"
	ClassAuthorization     Class = "AuthorizationError"
	ClassThrottling        Class = "ThrottlingError"
	ClassTransport         Class = "TransportError"
	ClassContractViolation Class = "ContractViolation"
)

// Failure is the only error type Client.Augment returns.
type Failure struct {
	Kind     Kind
	Provider string
	Err      error
}

func (f *Failure) Error() string {
	msg := string(f.Kind)
	if f.Provider != "" {
		msg = f.Provider + ": " + msg
	}
	if f.Err != nil {
		msg += ": " + f.Err.Error()
	}
	return msg
}

func (f *Failure) Unwrap() error { return f.Err }

// Class maps the failure kind onto its error class.
func (f *Failure) Class() Class {
	switch f.Kind {
	case KindCredentialMissing:
		return ClassConfiguration
	case KindCredentialInvalid:
		return ClassAuthorization
	case KindRateLimited:
		return ClassThrottling
	case KindEmptyResponse, KindMalformedResponse:
		return ClassContractViolation
	default:
		return ClassTransport
	}
}

// Retryable reports whether the same request may succeed if the user tries
// again later. The client itself never retries.
func (f *Failure) Retryable() bool {
	switch f.Kind {
	case KindRateLimited, KindTimeout, KindProviderUnavailable:
		return true
	}
	return false
}

func newFailure(kind Kind, provider string, format string, args ...any) *Failure {
	return &Failure{Kind: kind, Provider: provider, Err: fmt.Errorf(format, args...)}
}

// KindOf extracts the failure kind from an error chain. Context errors are
// mapped directly; anything else unrecognised counts as the provider being
// unavailable.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.Is(err, context.Canceled):
		return KindCanceled
	}
	return KindProviderUnavailable
}
