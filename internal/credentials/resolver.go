// Package credentials locates the API key used for remote augmentation.
//
// Absence is a normal outcome: Resolve reports it with ok == false rather
// than an error.
package credentials

import (
	"os"
	"strings"
)

// Well-known environment variables.
const (
	EnvInsightAPIKey   = "INSIGHT_API_KEY"
	EnvGeminiAPIKey    = "GEMINI_API_KEY"
	EnvGoogleAPIKey    = "GOOGLE_API_KEY"
	EnvAnthropicAPIKey = "ANTHROPIC_API_KEY"
)

// Credential is an API key together with the name of the source it came from.
type Credential struct {
	Value  string
	Source string
}

// String never prints the key itself.
func (c Credential) String() string {
	if c.Value == "" {
		return "credential(absent)"
	}
	return "credential(" + c.Source + ", " + redact(c.Value) + ")"
}

func redact(v string) string {
	if len(v) <= 8 {
		return "****"
	}
	return v[:4] + "****"
}

// LookupFunc reads a named value. os.LookupEnv satisfies it.
type LookupFunc func(name string) (string, bool)

// Resolver checks an ordered list of sources and returns the first
// non-empty value.
type Resolver struct {
	sources []string
	lookup  LookupFunc
}

// NewResolver builds a resolver over the given source names. A nil lookup
// reads the process environment.
func NewResolver(lookup LookupFunc, sources ...string) *Resolver {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	return &Resolver{
		sources: append([]string(nil), sources...),
		lookup:  lookup,
	}
}

// ForProvider returns a resolver with the source order used for the named
// provider: INSIGHT_API_KEY first, then the provider's own variables.
func ForProvider(provider string, lookup LookupFunc) *Resolver {
	sources := []string{EnvInsightAPIKey}
	switch strings.ToLower(provider) {
	case "gemini":
		sources = append(sources, EnvGeminiAPIKey, EnvGoogleAPIKey)
	case "anthropic":
		sources = append(sources, EnvAnthropicAPIKey)
	}
	return NewResolver(lookup, sources...)
}

// Sources returns the source names in lookup order.
func (r *Resolver) Sources() []string {
	return append([]string(nil), r.sources...)
}

// Resolve returns the first non-blank credential. Whitespace-only values
// count as absent.
func (r *Resolver) Resolve() (Credential, bool) {
	for _, name := range r.sources {
		v, ok := r.lookup(name)
		if !ok {
			continue
		}
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		return Credential{Value: v, Source: name}, true
	}
	return Credential{}, false
}
