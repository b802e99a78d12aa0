package resilience

import (
	"sync"
	"time"

	"github.com/onesdk/go-sdk/core"
)

// BreakerState is the observable state of a CircuitBreakerPolicy.
type BreakerState int32

// Breaker states.
const (
	BreakerClosed BreakerState = iota
	BreakerOpen
	BreakerHalfOpen
)

// String implements fmt.Stringer.
func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreakerPolicy is a Policy (component C2) that delegates retry
// decisions to an embedded RetryPolicy configured with
// maxContiguousRetries = failureThreshold - 1, and opens only when that
// embedded policy itself gives up. While open, every attempt is aborted
// without delegating to the inner policy. Once resetTimeout has elapsed
// since the breaker opened, the next BeforeExecution call transitions to
// half-open and allows a single trial attempt through; that attempt's
// outcome either closes the breaker (success) or reopens it (failure).
type CircuitBreakerPolicy struct {
	resetTimeout time.Duration
	inner        *RetryPolicy

	mu       sync.Mutex
	state    BreakerState
	openedAt time.Time
}

// NewCircuitBreakerPolicy creates a breaker that opens after failureThreshold
// contiguous failures and stays open for resetTimeout before probing again.
// failureThreshold must be at least 1.
func NewCircuitBreakerPolicy(failureThreshold int, resetTimeout time.Duration, backoff Backoff, opts ...RetryOption) *CircuitBreakerPolicy {
	if failureThreshold < 1 {
		failureThreshold = 1
	}
	return &CircuitBreakerPolicy{
		resetTimeout: resetTimeout,
		inner:        NewRetryPolicy(failureThreshold-1, backoff, opts...),
		state:        BreakerClosed,
	}
}

// State reports the breaker's current state.
func (p *CircuitBreakerPolicy) State() BreakerState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// BeforeExecution delegates to the inner retry policy while closed, probes
// once resetTimeout has elapsed while open, and allows the single half-open
// trial through.
func (p *CircuitBreakerPolicy) BeforeExecution(info ExecutionInfo) Resolution {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.state {
	case BreakerOpen:
		if info.Time.Sub(p.openedAt) < p.resetTimeout {
			return Abort("circuit breaker open")
		}
		p.state = BreakerHalfOpen
		return Continue(p.inner.RequestTimeout())
	case BreakerHalfOpen:
		return Continue(p.inner.RequestTimeout())
	default:
		return p.inner.BeforeExecution(info)
	}
}

// AfterSuccess closes the breaker from half-open, or delegates to the inner
// policy while closed.
func (p *CircuitBreakerPolicy) AfterSuccess(info ExecutionInfo) Resolution {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == BreakerHalfOpen {
		p.state = BreakerClosed
		p.inner.Reset()
		return Continue(p.inner.RequestTimeout())
	}
	return p.inner.AfterSuccess(info)
}

// AfterFailure reopens the breaker from half-open, opens it when the inner
// retry policy aborts, or delegates otherwise. AfterFailure while open is
// unreachable by construction: BeforeExecution never lets an attempt through
// while open, so no attempt can report back to this state. Being called
// anyway means a caller invoked AfterFailure without a matching
// BeforeExecution, and that is a programmer error, not a resilience
// decision this policy can make.
func (p *CircuitBreakerPolicy) AfterFailure(info ExecutionInfo, failure ExecutionFailure) Resolution {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.state {
	case BreakerOpen:
		panic(core.NewError("resilience.circuitbreaker.afterFailure", core.ErrProgrammer, "afterFailure called while breaker is open", nil))
	case BreakerHalfOpen:
		p.state = BreakerOpen
		p.openedAt = info.Time
		return Abort(failure.String())
	}

	res := p.inner.AfterFailure(info, failure)
	if res.Kind == ResolutionAbort {
		p.state = BreakerOpen
		p.openedAt = info.Time
		return Abort(PrefixReason("circuit breaker open", res.Reason))
	}
	return res
}

// Reset closes the breaker and resets the inner retry policy.
func (p *CircuitBreakerPolicy) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.state = BreakerClosed
	p.inner.Reset()
}

// RequestTimeout returns the inner policy's configured per-attempt timeout.
func (p *CircuitBreakerPolicy) RequestTimeout() time.Duration {
	return p.inner.RequestTimeout()
}
