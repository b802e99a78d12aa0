package resilience

import (
	"sync"
	"time"
)

// RetryPolicy is a Policy (component C2) that tolerates up to MaxRetries
// contiguous failures before aborting. Each failure raises its Backoff; a
// success lowers it by one step, not straight back to the starting value, so
// healing from a long failure streak takes a matching run of successes
// rather than a single lucky response flipping straight back to full speed.
//
// A streak is broken only by success, never by the passage of time: a
// provider that fails once, succeeds, then keeps failing retries through
// MaxRetries failures in a row and aborts on the next one, not sooner.
//
// balance counts unmatched Backoff.Up calls: it goes negative on failure and
// climbs back toward zero one success at a time. While balance is negative,
// BeforeExecution discounts the backoff delay by however much wall-clock
// time has already passed since lastCallTime, so a caller that was slow to
// come back around (retrying a different provider, say) doesn't sleep for a
// delay that's already elapsed.
type RetryPolicy struct {
	maxRetries int
	backoff    Backoff
	timeout    time.Duration

	mu           sync.Mutex
	streak       int
	balance      int
	lastCallTime time.Time
}

// RetryOption configures a NewRetryPolicy call.
type RetryOption func(*RetryPolicy)

// WithRetryTimeout overrides the default per-attempt timeout.
func WithRetryTimeout(timeout time.Duration) RetryOption {
	return func(p *RetryPolicy) { p.timeout = timeout }
}

// NewRetryPolicy creates a RetryPolicy that tolerates maxRetries contiguous
// failures, backing off according to backoff between attempts.
func NewRetryPolicy(maxRetries int, backoff Backoff, opts ...RetryOption) *RetryPolicy {
	if maxRetries < 0 {
		maxRetries = 0
	}
	p := &RetryPolicy{
		maxRetries: maxRetries,
		backoff:    backoff,
		timeout:    DefaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// BeforeExecution continues immediately while balance is non-negative (no
// outstanding backoff owed), or after the current backoff delay, discounted
// by the wall-clock time already elapsed since lastCallTime, once a failure
// has pushed balance negative.
func (p *RetryPolicy) BeforeExecution(info ExecutionInfo) Resolution {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.balance >= 0 {
		return Continue(p.timeout)
	}
	delay := p.backoff.Current() - info.Time.Sub(p.lastCallTime)
	if delay < 0 {
		delay = 0
	}
	return BackoffThen(delay, p.timeout)
}

// AfterSuccess extends (or starts) a positive streak. If there's no
// outstanding backoff owed it just continues; otherwise it repays one unit
// of balance and lowers the backoff by one step, leaving the rest of the
// debt for the next success to repay.
func (p *RetryPolicy) AfterSuccess(info ExecutionInfo) Resolution {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.streak < 0 {
		p.streak = 1
	} else {
		p.streak++
	}
	p.lastCallTime = info.Time

	if p.balance >= 0 {
		return Continue(p.timeout)
	}
	p.balance++
	p.backoff.Down()
	return Continue(p.timeout)
}

// AfterFailure extends (or starts) a negative streak and raises the backoff.
// Once the streak's magnitude exceeds maxRetries, it aborts instead of
// retrying.
func (p *RetryPolicy) AfterFailure(info ExecutionInfo, failure ExecutionFailure) Resolution {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.streak > 0 {
		p.streak = -1
	} else {
		p.streak--
	}
	p.lastCallTime = info.Time

	if -p.streak > p.maxRetries {
		return Abort(failure.String())
	}
	p.balance--
	p.backoff.Up()
	return Retry()
}

// Reset clears the failure streak and lastCallTime, and winds the backoff
// down one step per unit of outstanding balance until balance reaches zero
// — the same graduated recovery a run of real successes would produce, run
// to completion immediately.
func (p *RetryPolicy) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.streak = 0
	p.lastCallTime = time.Time{}
	for p.balance < 0 {
		p.backoff.Down()
		p.balance++
	}
}

// RequestTimeout returns the configured per-attempt timeout.
func (p *RetryPolicy) RequestTimeout() time.Duration {
	return p.timeout
}

// Streak reports the current signed run length: positive for a run of
// successes, negative for a run of failures. CircuitBreakerPolicy does not
// read it; the breaker acts on its embedded RetryPolicy's resolutions.
func (p *RetryPolicy) Streak() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.streak
}

// Balance reports the current count of unmatched Backoff.Up calls: zero once
// the policy has fully recovered from its last failure streak, negative
// while recovery is still owed.
func (p *RetryPolicy) Balance() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.balance
}
