package sdk

import "strings"

// Safety classifies how repeatable a use case's side effects are, per
// spec.md §3.
type Safety string

// Safety values.
const (
	SafetySafe       Safety = "safe"
	SafetyUnsafe     Safety = "unsafe"
	SafetyIdempotent Safety = "idempotent"
)

// UseCaseID identifies one use case within one profile: (profileId,
// useCaseName). profileId is either "scope/name" or bare "name".
type UseCaseID struct {
	ProfileID string
	UseCase   string
}

// ProfileIdentity carries the identity fields of a bound profile
// configuration that feed its cache key.
type ProfileIdentity struct {
	ProfileID string
	Version   string
}

func (p ProfileIdentity) cacheKey() string {
	return p.ProfileID + "@" + p.Version
}

// ProviderIdentity carries the identity fields of a bound provider
// configuration that feed its cache key.
type ProviderIdentity struct {
	Name            string
	SecuritySchemes []string
}

func (p ProviderIdentity) cacheKey() string {
	if len(p.SecuritySchemes) == 0 {
		return p.Name
	}
	return p.Name + "#" + strings.Join(p.SecuritySchemes, ",")
}

// FingerprintCacheKey builds the bound-provider cache key described in
// spec.md §3: the concatenation of the profile's cache key and the
// provider's cache key. Equal cache keys imply interchangeable bound
// artifacts.
func FingerprintCacheKey(profile ProfileIdentity, provider ProviderIdentity) string {
	return profile.cacheKey() + "|" + provider.cacheKey()
}
