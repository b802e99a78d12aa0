package config

import "github.com/go-playground/validator/v10"

var superConfigValidator = validator.New()

// ValidateSuperConfig runs go-playground/validator's struct-tag checks over
// cfg: every profile must declare at least one provider in its priority
// list, every retryPolicy.kind (when set) must be "none" or
// "circuit-breaker", and every backoff.kind (when set) must be
// "exponential". Cross-field structural checks that validator tags cannot
// express — priority naming a provider absent from cfg.Providers — are a
// config-layer concern external to this package, per spec.md §7 item 1.
func ValidateSuperConfig(cfg *SuperConfig) error {
	return superConfigValidator.Struct(cfg)
}

// SuperConfig is the parsed shape of a super.json configuration, per
// spec.md §6: a set of named profiles, each with a provider priority order
// and per-use-case defaults, plus the provider declarations (security
// schemes) shared across profiles.
type SuperConfig struct {
	Profiles  map[string]ProfileConfig       `json:"profiles" mapstructure:"profiles" validate:"required,min=1,dive"`
	Providers map[string]ProviderDeclaration `json:"providers" mapstructure:"providers" validate:"dive"`
}

// ProfileConfig configures one profile: which providers it can use, in
// what order, and what each use case defaults to.
type ProfileConfig struct {
	Version   string                           `json:"version" mapstructure:"version"`
	File      string                           `json:"file" mapstructure:"file"`
	Priority  []string                         `json:"priority" mapstructure:"priority" validate:"required,min=1"`
	Defaults  map[string]UseCaseDefaults       `json:"defaults" mapstructure:"defaults" validate:"dive"`
	Providers map[string]ProviderProfileEntry  `json:"providers" mapstructure:"providers" validate:"dive"`
}

// ProviderProfileEntry holds the per-use-case overrides a profile applies
// for one specific provider, layered over ProfileConfig.Defaults.
type ProviderProfileEntry struct {
	Defaults map[string]UseCaseDefaults `json:"defaults" mapstructure:"defaults" validate:"dive"`
}

// UseCaseDefaults configures one use case's default input, retry policy,
// and whether a failed attempt is allowed to fail over to another provider.
type UseCaseDefaults struct {
	ProviderFailover bool              `json:"providerFailover" mapstructure:"providerFailover" default:"true"`
	Input            map[string]any    `json:"input" mapstructure:"input"`
	RetryPolicy      RetryPolicyConfig `json:"retryPolicy" mapstructure:"retryPolicy"`
}

// RetryPolicyConfig describes which resilience.Policy a provider gets and
// how it is tuned. Kind "none" builds an AbortPolicy; "circuit-breaker"
// builds a CircuitBreakerPolicy. Zero values fall back to spec.md §6's
// defaults via Resolved.
type RetryPolicyConfig struct {
	Kind                 string        `json:"kind" mapstructure:"kind" validate:"omitempty,oneof=none circuit-breaker"`
	MaxContiguousRetries int           `json:"maxContiguousRetries" mapstructure:"maxContiguousRetries" validate:"omitempty,min=1"`
	RequestTimeoutMS     int           `json:"requestTimeout" mapstructure:"requestTimeout" validate:"omitempty,min=1"`
	ResetTimeoutMS       int           `json:"resetTimeout" mapstructure:"resetTimeout" validate:"omitempty,min=1"`
	Backoff              BackoffConfig `json:"backoff" mapstructure:"backoff"`
}

// BackoffConfig describes an exponential backoff schedule in milliseconds.
type BackoffConfig struct {
	Kind   string  `json:"kind" mapstructure:"kind" validate:"omitempty,oneof=exponential"`
	Start  int     `json:"start" mapstructure:"start" validate:"omitempty,min=0"`
	Factor float64 `json:"factor" mapstructure:"factor" validate:"omitempty,min=1"`
}

// ProviderDeclaration names the security schemes a provider's profile
// entries may reference. The list is parsed and validated here only:
// boundprovider.Classify does not look at it, and sdk.Client.Perform
// builds its cache-key identity from the provider name alone.
type ProviderDeclaration struct {
	Security []string `json:"security" mapstructure:"security"`
}

// Defaults applied when a RetryPolicyConfig field is left at its zero
// value, per spec.md §6.
const (
	DefaultMaxContiguousRetries = 5
	DefaultRequestTimeoutMS     = 30_000
	DefaultResetTimeoutMS       = 30_000
	DefaultBackoffStartMS       = 2000
	DefaultBackoffFactor        = 2.0
)

// Resolved returns a copy of r with every zero-valued field replaced by its
// spec.md §6 default.
func (r RetryPolicyConfig) Resolved() RetryPolicyConfig {
	if r.Kind == "" {
		r.Kind = "none"
	}
	if r.MaxContiguousRetries == 0 {
		r.MaxContiguousRetries = DefaultMaxContiguousRetries
	}
	if r.RequestTimeoutMS == 0 {
		r.RequestTimeoutMS = DefaultRequestTimeoutMS
	}
	if r.ResetTimeoutMS == 0 {
		r.ResetTimeoutMS = DefaultResetTimeoutMS
	}
	if r.Backoff.Kind == "" {
		r.Backoff.Kind = "exponential"
	}
	if r.Backoff.Start == 0 {
		r.Backoff.Start = DefaultBackoffStartMS
	}
	if r.Backoff.Factor == 0 {
		r.Backoff.Factor = DefaultBackoffFactor
	}
	return r
}

// GetOption retrieves a typed value from a use case's Input/Options map. It
// returns the value and true if key is present and its value's dynamic
// type matches T, or the zero value of T and false otherwise.
//
// Usage:
//
//	timeout, ok := config.GetOption[float64](useCase.Input, "timeoutMs")
func GetOption[T any](options map[string]any, key string) (T, bool) {
	var zero T
	if options == nil {
		return zero, false
	}
	v, ok := options[key]
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}
