package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/onesdk/go-sdk/boundprovider"
	"github.com/onesdk/go-sdk/cache"
	_ "github.com/onesdk/go-sdk/cache/providers/inmemory"
	"github.com/onesdk/go-sdk/config"
	"github.com/onesdk/go-sdk/core"
	"github.com/onesdk/go-sdk/resilience"
	"github.com/onesdk/go-sdk/router"
	"github.com/onesdk/go-sdk/sdk"
	"github.com/onesdk/go-sdk/transport"
)

// providerMap is the on-disk shape of one profile's map file: provider name
// to the use cases that provider supports, per the "Map" glossary entry —
// the real map-language interpreter is out of scope, so this is the
// runtime's own declarative stand-in.
type providerMap map[string]map[string]boundprovider.UseCase

func loadProviderMap(path string) (providerMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("onesdk: read map file %s: %w", path, err)
	}
	var m providerMap
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("onesdk: parse map file %s: %w", path, err)
	}
	return m, nil
}

// buildClient wires a sdk.Client for one profile out of its SuperConfig
// entry and map file: an inmemory-backed BoundCache, a JSONMap artifact
// factory per provider, and a Router whose policy-per-provider comes from
// the use case's retryPolicy default.
func buildClient(superPath, profileID string, super config.SuperConfig) (*sdk.Client, error) {
	profile, ok := super.Profiles[profileID]
	if !ok {
		return nil, core.NewError("onesdk.buildClient", core.ErrConfig, fmt.Sprintf("unknown profile %q", profileID), nil)
	}
	if len(profile.Priority) == 0 {
		return nil, core.NewError("onesdk.buildClient", core.ErrConfig, fmt.Sprintf("profile %q has an empty priority list", profileID), nil)
	}

	mapPath := profile.File
	if !filepath.IsAbs(mapPath) {
		mapPath = filepath.Join(filepath.Dir(superPath), mapPath)
	}
	pmap, err := loadProviderMap(mapPath)
	if err != nil {
		return nil, err
	}

	backend, err := cache.New("inmemory", cache.Config{TTL: 5 * time.Minute})
	if err != nil {
		return nil, fmt.Errorf("onesdk: build cache: %w", err)
	}
	boundCache := sdk.NewBoundCache(backend, 5*time.Minute)
	transportClient := transport.New(nil)

	var client *sdk.Client
	artifacts := func(_ context.Context, _ sdk.ProfileIdentity, provider sdk.ProviderIdentity) (sdk.Artifact, error) {
		useCases, ok := pmap[provider.Name]
		if !ok {
			return nil, core.NewError("onesdk.buildClient", core.ErrBinding, fmt.Sprintf("no map entry for provider %q", provider.Name), nil)
		}
		return boundprovider.New(provider.Name, useCases, transportClient, client.Engine()), nil
	}

	routerFor := func(id sdk.UseCaseID) (*router.Router, error) {
		policy := profile.Defaults[id.UseCase].RetryPolicy.Resolved()
		instantiate := func(string) resilience.Policy {
			return policyFromConfig(policy)
		}
		return router.New(instantiate, profile.Priority), nil
	}

	client = sdk.NewClient(boundCache, artifacts, routerFor, sdk.WithFetchClassify(boundprovider.Classify))
	return client, nil
}

// policyFromConfig builds the Policy a RetryPolicyConfig describes. "none"
// means abort-on-first-failure; "circuit-breaker" wraps a RetryPolicy with
// the configured contiguous-failure threshold and reset timeout.
func policyFromConfig(cfg config.RetryPolicyConfig) resilience.Policy {
	backoff := resilience.NewExponentialBackoff(
		time.Duration(cfg.Backoff.Start)*time.Millisecond,
		resilience.WithFactor(cfg.Backoff.Factor),
	)
	timeout := time.Duration(cfg.RequestTimeoutMS) * time.Millisecond

	switch cfg.Kind {
	case "circuit-breaker":
		return resilience.NewCircuitBreakerPolicy(
			cfg.MaxContiguousRetries,
			time.Duration(cfg.ResetTimeoutMS)*time.Millisecond,
			backoff,
			resilience.WithRetryTimeout(timeout),
		)
	default:
		return resilience.NewAbortPolicy(timeout)
	}
}
