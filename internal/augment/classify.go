package augment

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// classifyStatus maps an HTTP status returned by a provider onto a Failure.
func classifyStatus(provider string, status int, message string, err error) *Failure {
	kind := KindProviderUnavailable
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		kind = KindCredentialInvalid
	case status == http.StatusBadRequest && mentionsAPIKey(message):
		// Gemini reports a bad key as 400 INVALID_ARGUMENT.
		kind = KindCredentialInvalid
	case status == http.StatusTooManyRequests:
		kind = KindRateLimited
	case status == http.StatusRequestTimeout:
		kind = KindTimeout
	}
	return &Failure{Kind: kind, Provider: provider, Err: err}
}

func mentionsAPIKey(message string) bool {
	m := strings.ToLower(message)
	return strings.Contains(m, "api key") || strings.Contains(m, "api_key")
}

// classifyTransport handles errors that never produced an HTTP status.
func classifyTransport(provider string, err error) *Failure {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &Failure{Kind: KindTimeout, Provider: provider, Err: err}
	case errors.Is(err, context.Canceled):
		return &Failure{Kind: KindCanceled, Provider: provider, Err: err}
	}
	return &Failure{Kind: KindProviderUnavailable, Provider: provider, Err: err}
}
