package resilience

import "time"

// AbortPolicy is the simplest Policy (component C2): it never retries. The
// first failure on a given attempt is surfaced to the caller as an Abort.
type AbortPolicy struct {
	timeout time.Duration
}

// NewAbortPolicy creates an AbortPolicy that applies timeout to every
// attempt. A zero timeout means DefaultRequestTimeout.
func NewAbortPolicy(timeout time.Duration) *AbortPolicy {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &AbortPolicy{timeout: timeout}
}

// BeforeExecution always continues with the configured timeout.
func (p *AbortPolicy) BeforeExecution(ExecutionInfo) Resolution {
	return Continue(p.timeout)
}

// AfterSuccess is a no-op; there is no state to clear.
func (p *AbortPolicy) AfterSuccess(ExecutionInfo) Resolution {
	return Continue(p.timeout)
}

// AfterFailure always aborts, citing the failure that triggered it.
func (p *AbortPolicy) AfterFailure(_ ExecutionInfo, failure ExecutionFailure) Resolution {
	return Abort(failure.String())
}

// Reset is a no-op; AbortPolicy is stateless.
func (p *AbortPolicy) Reset() {}

// RequestTimeout returns the configured per-attempt timeout.
func (p *AbortPolicy) RequestTimeout() time.Duration {
	return p.timeout
}
