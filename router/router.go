package router

import (
	"sync"

	"github.com/onesdk/go-sdk/core"
	"github.com/onesdk/go-sdk/resilience"
)

// PolicyFactory instantiates the failure policy configured for a single
// provider. The router calls it at most once per provider name, the first
// time that provider's policy is needed: when it becomes current (including
// via SetCurrentProvider) or is consulted as a failover or restore
// candidate.
type PolicyFactory func(providerName string) resilience.Policy

// Router is the policy router (component C3). It holds one Policy per
// provider plus the priority order those providers were configured in, and
// coordinates failover (moving to a lower-priority provider after an abort)
// and failover restore (moving back to a higher-priority provider once it
// has recovered).
//
// A Router is safe for concurrent use; all state mutation and the
// delegation below it are serialized by a single mutex.
type Router struct {
	instantiate PolicyFactory

	mu            sync.Mutex
	priority      []string
	current       string
	allowFailover bool
	policies      map[string]resilience.Policy
}

// New creates a Router for the given priority-ordered provider names,
// instantiating policies on demand via instantiate. Failover is allowed by
// default. priority must not be empty.
func New(instantiate PolicyFactory, priority []string) *Router {
	r := &Router{
		instantiate:   instantiate,
		priority:      append([]string(nil), priority...),
		allowFailover: true,
		policies:      make(map[string]resilience.Policy),
	}
	if len(r.priority) > 0 {
		r.current = r.priority[0]
	}
	return r
}

// policyFor returns the policy for name, instantiating it on first use.
// Callers must hold r.mu.
func (r *Router) policyFor(name string) resilience.Policy {
	p, ok := r.policies[name]
	if !ok {
		p = r.instantiate(name)
		r.policies[name] = p
	}
	return p
}

// priorityIndex returns name's position in the priority list, or -1 if it is
// not present (e.g. it was only ever set via SetCurrentProvider). Callers
// must hold r.mu.
func (r *Router) priorityIndex(name string) int {
	for i, p := range r.priority {
		if p == name {
			return i
		}
	}
	return -1
}

// SetCurrentProvider sets the active provider, instantiating its policy on
// demand if this is the first time it has been seen.
func (r *Router) SetCurrentProvider(provider string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.policyFor(provider)
	r.current = provider
}

// SetAllowFailover sets the failover gate. With failover disabled, an abort
// from the current provider's policy surfaces directly with no attempt to
// find an alternate.
func (r *Router) SetAllowFailover(allow bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.allowFailover = allow
}

// GetCurrentProvider returns the currently active provider name.
func (r *Router) GetCurrentProvider() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Reset sets the current provider back to the highest-priority one and
// resets every policy instantiated so far.
func (r *Router) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.priority) > 0 {
		r.current = r.priority[0]
	}
	for _, p := range r.policies {
		p.Reset()
	}
}

// BeforeExecution delegates to the current provider's policy, first
// checking for a failover restore opportunity when info.CheckFailoverRestore
// is set. It panics if no current provider has been set — calling it before
// SetCurrentProvider or construction with a non-empty priority is a
// programmer error.
func (r *Router) BeforeExecution(info resilience.ExecutionInfo) resilience.Resolution {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current == "" {
		panic(core.NewError("router.beforeExecution", core.ErrProgrammer, "current provider not set", nil))
	}

	if info.CheckFailoverRestore && r.allowFailover {
		if res, ok := r.attemptRestoreLocked(info); ok {
			return res
		}
	}

	res := r.policyFor(r.current).BeforeExecution(info)
	if res.Kind == resilience.ResolutionAbort {
		return r.attemptFailoverLocked(info, res.Reason)
	}
	return res
}

// attemptRestoreLocked searches providers strictly higher priority than
// current, in priority order, skipping AbortPolicy providers (they cannot
// supply a functioning recovery path). The first to return continue becomes
// current. Callers must hold r.mu.
func (r *Router) attemptRestoreLocked(info resilience.ExecutionInfo) (resilience.Resolution, bool) {
	curIdx := r.priorityIndex(r.current)
	if curIdx <= 0 {
		return resilience.Resolution{}, false
	}
	for _, candidate := range r.priority[:curIdx] {
		policy := r.policyFor(candidate)
		if _, isAbort := policy.(*resilience.AbortPolicy); isAbort {
			continue
		}
		if res := policy.BeforeExecution(info); res.Kind == resilience.ResolutionContinue {
			r.current = candidate
			return switchProvider(candidate, "Provider failover restore"), true
		}
	}
	return resilience.Resolution{}, false
}

// attemptFailoverLocked searches providers strictly lower priority than
// current, in priority order (closest first), for the first whose policy
// returns continue. Callers must hold r.mu.
func (r *Router) attemptFailoverLocked(info resilience.ExecutionInfo, reason string) resilience.Resolution {
	if r.allowFailover {
		curIdx := r.priorityIndex(r.current)
		if curIdx >= 0 {
			for _, candidate := range r.priority[curIdx+1:] {
				policy := r.policyFor(candidate)
				if res := policy.BeforeExecution(info); res.Kind == resilience.ResolutionContinue {
					r.current = candidate
					return switchProvider(candidate, "Provider failover")
				}
			}
		}
	}
	return resilience.Abort(resilience.PrefixReason("No backup provider available", reason))
}

// AfterFailure delegates to the current provider's policy. If it aborts,
// the router attempts failover exactly as in BeforeExecution, except
// failover restore is never reconsidered here — restore is only checked
// before an attempt, never after one has already failed.
func (r *Router) AfterFailure(info resilience.ExecutionInfo, failure resilience.ExecutionFailure) resilience.Resolution {
	r.mu.Lock()
	defer r.mu.Unlock()

	info.CheckFailoverRestore = false
	res := r.policyFor(r.current).AfterFailure(info, failure)
	if res.Kind == resilience.ResolutionAbort {
		return r.attemptFailoverLocked(info, res.Reason)
	}
	return res
}

// AfterSuccess delegates to the current provider's policy with no
// router-level modification.
func (r *Router) AfterSuccess(info resilience.ExecutionInfo) resilience.Resolution {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.policyFor(r.current).AfterSuccess(info)
}

// switchProvider builds the one Resolution kind resilience.Policy
// implementations never produce — only the router is in a position to know
// there's an alternate provider to switch to.
func switchProvider(provider, reason string) resilience.Resolution {
	return resilience.Resolution{
		Kind:     resilience.ResolutionSwitchProvider,
		Provider: provider,
		Reason:   reason,
	}
}
