package sdk

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/onesdk/go-sdk/core"
	"github.com/onesdk/go-sdk/interceptor"
	"github.com/onesdk/go-sdk/resilience"
	"github.com/onesdk/go-sdk/router"
	"github.com/onesdk/go-sdk/transport"
)

// ArtifactFactory binds a profile/provider pair into a performable Artifact.
// The factory owns whatever it needs to do that (map interpreter, transport
// client, interceptor engine reference) — this package only calls it on a
// cache miss.
type ArtifactFactory func(ctx context.Context, profile ProfileIdentity, provider ProviderIdentity) (Artifact, error)

// RouterFactory builds the Router for one (profileId, useCaseName) pair,
// typically from a parsed super-config's priority list and retry policy
// settings. It is called at most once per UseCaseID; the Client caches the
// result for its own lifetime, so router state carries over between Perform
// calls.
type RouterFactory func(id UseCaseID) (*router.Router, error)

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithMaxIterations overrides the per-invocation cap on switch-provider/
// recache loop iterations. Default is 10.
func WithMaxIterations(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.maxIterations = n
		}
	}
}

// WithFetchClassify overrides how fetch-level errors are classified into
// resilience.ExecutionFailure. Defaults to transport.Classify.
func WithFetchClassify(classify interceptor.Classify) ClientOption {
	return func(c *Client) { c.classify = classify }
}

// WithBindClassify overrides how a binding failure (cache initializer
// error) is classified before being handed to the router, per spec.md §7
// item 2. Defaults to treating every binding failure as network/reject.
func WithBindClassify(classify func(error) resilience.ExecutionFailure) ClientOption {
	return func(c *Client) { c.bindClassify = classify }
}

// Client is the perform driver (component C5's driving half). It owns one
// shared Engine (so callers can register custom handlers once, with
// Client.Engine().On(...)) and one BoundCache, and builds a Router lazily
// per use case via routerFactory.
type Client struct {
	engine    *interceptor.Engine
	cache     *BoundCache
	artifacts ArtifactFactory
	routerFor RouterFactory

	classify      interceptor.Classify
	bindClassify  func(error) resilience.ExecutionFailure
	maxIterations int

	// sessionID identifies this Client instance across every Perform call it
	// ever makes, for correlating log lines from a single long-lived
	// process. It is carried on every Perform's context via
	// core.WithSessionID.
	sessionID string

	routers map[UseCaseID]*router.Router
}

// NewClient builds a Client. cache holds bound artifacts; artifacts binds a
// profile/provider pair on a cache miss; routerFor builds the per-use-case
// Router on first use.
func NewClient(cache *BoundCache, artifacts ArtifactFactory, routerFor RouterFactory, opts ...ClientOption) *Client {
	c := &Client{
		engine:        interceptor.NewEngine(),
		cache:         cache,
		artifacts:     artifacts,
		routerFor:     routerFor,
		classify:      transport.Classify,
		bindClassify:  func(error) resilience.ExecutionFailure { return resilience.NewNetworkFailure(resilience.NetworkReject) },
		maxIterations: 10,
		sessionID:     uuid.NewString(),
		routers:       make(map[UseCaseID]*router.Router),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Engine returns the shared event interceptor engine so callers can
// register their own pre/post/notify handlers (logging, metrics, custom
// failover variants) before issuing any Perform calls.
func (c *Client) Engine() *interceptor.Engine {
	return c.engine
}

func (c *Client) routerForUseCase(id UseCaseID) (*router.Router, error) {
	if r, ok := c.routers[id]; ok {
		return r, nil
	}
	r, err := c.routerFor(id)
	if err != nil {
		return nil, err
	}
	c.routers[id] = r
	return r, nil
}

// PerformRequest names the use case to invoke and its input. Provider, if
// set, pins execution to that provider and disables failover for this
// invocation only, per spec.md §4.5 step 2. RequestID, if set, is used for
// log/trace correlation instead of a freshly generated one — useful when the
// caller already has an inbound request ID to propagate.
type PerformRequest struct {
	Profile        string
	ProfileVersion string
	UseCase        string
	Provider       string
	Input          any
	RequestID      string
}

// performConfig holds the per-call settings applied by a Perform call's
// core.Option arguments. It is never exported directly; callers build it
// only through WithMetadata.
type performConfig struct {
	metadata map[string]string
}

// WithMetadata attaches a key/value pair to a single Perform call's
// interceptor.Context, for handlers (logging, metrics) that tag entries with
// caller-supplied context a fixed PerformRequest field wouldn't anticipate —
// a tenant name, a feature flag, a calling subsystem. Passing the same key
// twice keeps the last value.
func WithMetadata(key, value string) core.Option {
	return core.OptionFunc(func(target any) {
		cfg := target.(*performConfig)
		if cfg.metadata == nil {
			cfg.metadata = make(map[string]string)
		}
		cfg.metadata[key] = value
	})
}

// Perform runs the seven-step algorithm of spec.md §4.5: resolve a
// provider, resolve its bound artifact from cache, emit pre-perform, invoke
// the artifact within bind-and-perform, emit post-perform, act on whatever
// switch-provider/recache actions the fetch-level handlers queued, and emit
// a terminal success or failure event.
func (c *Client) Perform(ctx context.Context, req PerformRequest, opts ...core.Option) Result[any] {
	cfg := &performConfig{}
	core.ApplyOptions(cfg, opts...)

	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.NewString()
	}
	ctx = core.WithSessionID(ctx, c.sessionID)
	ctx = core.WithRequestID(ctx, requestID)

	id := UseCaseID{ProfileID: req.Profile, UseCase: req.UseCase}
	r, err := c.routerForUseCase(id)
	if err != nil {
		return Err[any](NewPerformError(ErrUnexpected, "could not build router", err))
	}

	// Step 1 & 2: resolve provider choice and the failover gate.
	if req.Provider != "" {
		r.SetCurrentProvider(req.Provider)
		r.SetAllowFailover(false)
	} else {
		r.SetAllowFailover(true)
	}

	queue := &interceptor.ActionQueue{}
	unregister := interceptor.RegisterFailoverAdapter(c.engine, r, c.classify, func(interceptor.Context) *interceptor.ActionQueue {
		return queue
	})
	defer unregister()

	newIctx := func(provider string) interceptor.Context {
		return interceptor.Context{
			Profile:   req.Profile,
			UseCase:   req.UseCase,
			Provider:  provider,
			Time:      time.Now(),
			SessionID: c.sessionID,
			RequestID: requestID,
			Metadata:  cfg.metadata,
		}
	}

	input := req.Input

	for iteration := 0; ; iteration++ {
		if iteration >= c.maxIterations {
			err := core.NewError("sdk.perform", core.ErrProgrammer, "iteration cap exceeded", nil)
			ictx := newIctx(r.GetCurrentProvider())
			c.engine.Notify("failure", ictx, err)
			return Err[any](NewPerformError(ErrUnexpected, "too many switch-provider/recache iterations", err))
		}

		provider := r.GetCurrentProvider()
		ictx := newIctx(provider)

		// Step 3: resolve the bound artifact (single-flight, TTL).
		key := FingerprintCacheKey(
			ProfileIdentity{ProfileID: req.Profile, Version: req.ProfileVersion},
			ProviderIdentity{Name: provider},
		)
		artifact, bindErr := c.cache.Get(ctx, key, func(ctx context.Context) (Artifact, error) {
			return c.artifacts(ctx, ProfileIdentity{ProfileID: req.Profile, Version: req.ProfileVersion}, ProviderIdentity{Name: provider})
		})
		if bindErr != nil {
			res := r.AfterFailure(resilience.ExecutionInfo{Time: ictx.Time}, c.bindClassify(bindErr))
			switch res.Kind {
			case resilience.ResolutionSwitchProvider:
				c.engine.Notify("provider-switch", ictx, res.Provider)
				continue
			case resilience.ResolutionRetry, resilience.ResolutionContinue:
				continue
			}
			result := Err[any](NewPerformError(ErrPolicyAbort, "binding failed", bindErr))
			c.engine.Notify("failure", ictx, result)
			return result
		}

		// Step 4: pre-perform may rewrite input.
		outcome, err := c.engine.Wrap(ictx, "perform", input, 0, func(ictx interceptor.Context, args any) (any, error) {
			// Step 5: the actual bind-and-perform call.
			return c.engine.Wrap(ictx, "bind-and-perform", args, 0, func(ictx interceptor.Context, args any) (any, error) {
				return artifact.Perform(ctx, req.UseCase, args)
			})
		})

		// Step 6: act on anything the fetch-level handlers queued.
		actions := queue.Drain()
		var again bool
		for _, action := range actions {
			switch action.Kind {
			case interceptor.ActionSwitchProvider:
				c.engine.Notify("provider-switch", ictx, action.Provider)
				again = true
			case interceptor.ActionRecache:
				_ = c.cache.Invalidate(ctx, key)
				again = true
			}
		}
		if again {
			continue
		}

		// Step 7: terminal outcome.
		if err != nil {
			result := Err[any](NewPerformError(ErrUnexpected, "use case failed", err))
			c.engine.Notify("failure", ictx, result)
			return result
		}
		result := Ok[any](outcome)
		c.engine.Notify("success", ictx, result)
		return result
	}
}
