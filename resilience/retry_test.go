package resilience

import (
	"testing"
	"time"
)

func TestRetryPolicy_SucceedsFirstAttempt(t *testing.T) {
	p := NewRetryPolicy(3, NewExponentialBackoff(time.Millisecond))
	now := time.Now()

	res := p.BeforeExecution(ExecutionInfo{Time: now})
	if res.Kind != ResolutionContinue {
		t.Fatalf("BeforeExecution() kind = %v, want continue", res.Kind)
	}

	res = p.AfterSuccess(ExecutionInfo{Time: now})
	if res.Kind != ResolutionContinue {
		t.Fatalf("AfterSuccess() kind = %v, want continue", res.Kind)
	}
	if p.Streak() != 1 {
		t.Errorf("Streak() = %d, want 1 (a success streak of one)", p.Streak())
	}
}

func TestRetryPolicy_RetriesThenSucceeds(t *testing.T) {
	p := NewRetryPolicy(3, NewExponentialBackoff(time.Millisecond))
	now := time.Now()
	failure := NewHTTPFailure(503)

	for i := 0; i < 2; i++ {
		res := p.AfterFailure(ExecutionInfo{Time: now}, failure)
		if res.Kind != ResolutionRetry {
			t.Fatalf("AfterFailure() #%d kind = %v, want retry", i, res.Kind)
		}
	}

	before := p.BeforeExecution(ExecutionInfo{Time: now})
	if before.Kind != ResolutionBackoff {
		t.Fatalf("BeforeExecution() after failures kind = %v, want backoff", before.Kind)
	}
	if before.Backoff <= 0 {
		t.Errorf("Backoff = %v, want > 0", before.Backoff)
	}

	res := p.AfterSuccess(ExecutionInfo{Time: now})
	if res.Kind != ResolutionContinue {
		t.Fatalf("AfterSuccess() kind = %v, want continue", res.Kind)
	}
	if p.Streak() != 1 {
		t.Errorf("Streak() after success = %d, want 1 (the failure streak flips to a success streak)", p.Streak())
	}
}

func TestRetryPolicy_AbortsAfterMaxRetries(t *testing.T) {
	p := NewRetryPolicy(2, NewExponentialBackoff(time.Millisecond))
	now := time.Now()
	failure := NewHTTPFailure(500)

	for i := 0; i < 2; i++ {
		res := p.AfterFailure(ExecutionInfo{Time: now}, failure)
		if res.Kind != ResolutionRetry {
			t.Fatalf("AfterFailure() #%d kind = %v, want retry", i, res.Kind)
		}
	}

	res := p.AfterFailure(ExecutionInfo{Time: now}, failure)
	if res.Kind != ResolutionAbort {
		t.Fatalf("AfterFailure() final kind = %v, want abort", res.Kind)
	}
	if res.Reason == "" {
		t.Error("abort Resolution should carry a Reason")
	}
}

func TestRetryPolicy_BackoffGrows(t *testing.T) {
	backoff := NewExponentialBackoff(10 * time.Millisecond)
	p := NewRetryPolicy(5, backoff)
	now := time.Now()
	failure := NewHTTPFailure(500)

	p.AfterFailure(ExecutionInfo{Time: now}, failure)
	first := p.BeforeExecution(ExecutionInfo{Time: now}).Backoff

	p.AfterFailure(ExecutionInfo{Time: now}, failure)
	second := p.BeforeExecution(ExecutionInfo{Time: now}).Backoff

	if second <= first {
		t.Errorf("second backoff %v should exceed first %v", second, first)
	}
}

func TestRetryPolicy_SuccessResetsStreakAcrossSubsequentFailures(t *testing.T) {
	p := NewRetryPolicy(1, NewExponentialBackoff(time.Millisecond))
	now := time.Now()
	failure := NewHTTPFailure(500)

	if res := p.AfterFailure(ExecutionInfo{Time: now}, failure); res.Kind != ResolutionRetry {
		t.Fatalf("first failure kind = %v, want retry", res.Kind)
	}
	p.AfterSuccess(ExecutionInfo{Time: now})

	// The streak was reset by the success, so this is again the first failure
	// of a new streak, not the second of the old one.
	if res := p.AfterFailure(ExecutionInfo{Time: now}, failure); res.Kind != ResolutionRetry {
		t.Fatalf("failure after reset kind = %v, want retry", res.Kind)
	}
}

func TestRetryPolicy_Reset(t *testing.T) {
	backoff := NewExponentialBackoff(time.Millisecond)
	p := NewRetryPolicy(3, backoff)
	now := time.Now()

	p.AfterFailure(ExecutionInfo{Time: now}, NewHTTPFailure(500))
	p.AfterFailure(ExecutionInfo{Time: now}, NewHTTPFailure(500))
	p.Reset()

	if p.Streak() != 0 {
		t.Errorf("Streak() after Reset = %d, want 0", p.Streak())
	}
	if res := p.BeforeExecution(ExecutionInfo{Time: now}); res.Kind != ResolutionContinue {
		t.Errorf("BeforeExecution() after Reset kind = %v, want continue", res.Kind)
	}
}

func TestRetryPolicy_RequestTimeout(t *testing.T) {
	p := NewRetryPolicy(3, NewExponentialBackoff(time.Millisecond), WithRetryTimeout(5*time.Second))
	if p.RequestTimeout() != 5*time.Second {
		t.Errorf("RequestTimeout() = %v, want 5s", p.RequestTimeout())
	}
}

func TestRetryPolicy_RecoveryIsGraduated(t *testing.T) {
	p := NewRetryPolicy(5, NewExponentialBackoff(10*time.Millisecond))
	now := time.Now()
	failure := NewHTTPFailure(500)

	// Three contiguous failures leave balance at -3.
	for i := 0; i < 3; i++ {
		p.AfterFailure(ExecutionInfo{Time: now}, failure)
	}
	if p.Balance() != -3 {
		t.Fatalf("Balance() after 3 failures = %d, want -3", p.Balance())
	}

	// A single success only repays one unit of balance, not the whole debt:
	// BeforeExecution should still report an outstanding backoff afterward.
	p.AfterSuccess(ExecutionInfo{Time: now})
	if p.Balance() != -2 {
		t.Fatalf("Balance() after 1 success = %d, want -2 (graduated recovery)", p.Balance())
	}
	if res := p.BeforeExecution(ExecutionInfo{Time: now}); res.Kind != ResolutionBackoff {
		t.Fatalf("BeforeExecution() kind = %v, want backoff (still owed two more successes)", res.Kind)
	}

	// Two more successes fully repay the debt.
	p.AfterSuccess(ExecutionInfo{Time: now})
	p.AfterSuccess(ExecutionInfo{Time: now})
	if p.Balance() != 0 {
		t.Fatalf("Balance() after full recovery = %d, want 0", p.Balance())
	}
	if res := p.BeforeExecution(ExecutionInfo{Time: now}); res.Kind != ResolutionContinue {
		t.Fatalf("BeforeExecution() kind = %v, want continue (fully recovered)", res.Kind)
	}
}

func TestRetryPolicy_BeforeExecutionDiscountsElapsedWallTime(t *testing.T) {
	// Factor 1 keeps Up() from moving the backoff off its starting value, so
	// the math below stays simple.
	backoff := NewExponentialBackoff(100*time.Millisecond, WithFactor(1))
	p := NewRetryPolicy(5, backoff)
	now := time.Now()

	p.AfterFailure(ExecutionInfo{Time: now}, NewHTTPFailure(500))

	// A beforeExecution that lands well after the failure should sleep less,
	// discounted by the wall time that already passed.
	later := now.Add(60 * time.Millisecond)
	res := p.BeforeExecution(ExecutionInfo{Time: later})
	if res.Kind != ResolutionBackoff {
		t.Fatalf("BeforeExecution() kind = %v, want backoff", res.Kind)
	}
	want := 40 * time.Millisecond
	if res.Backoff != want {
		t.Errorf("Backoff = %v, want %v (100ms current minus 60ms elapsed)", res.Backoff, want)
	}
}

func TestRetryPolicy_BeforeExecutionNeverDiscountsBelowZero(t *testing.T) {
	backoff := NewExponentialBackoff(10 * time.Millisecond)
	p := NewRetryPolicy(5, backoff)
	now := time.Now()

	p.AfterFailure(ExecutionInfo{Time: now}, NewHTTPFailure(500))

	later := now.Add(time.Hour)
	res := p.BeforeExecution(ExecutionInfo{Time: later})
	if res.Backoff != 0 {
		t.Errorf("Backoff = %v, want 0 (elapsed time far exceeds current backoff)", res.Backoff)
	}
}

func TestRetryPolicy_KFailuresThenKSuccessesFullyRecover(t *testing.T) {
	backoff := NewExponentialBackoff(5 * time.Millisecond)
	p := NewRetryPolicy(10, backoff)
	now := time.Now()
	failure := NewHTTPFailure(500)
	start := backoff.Current()

	const k = 4
	for i := 0; i < k; i++ {
		p.AfterFailure(ExecutionInfo{Time: now}, failure)
	}
	for i := 0; i < k; i++ {
		p.AfterSuccess(ExecutionInfo{Time: now})
	}

	if p.Balance() != 0 {
		t.Errorf("Balance() = %d, want 0", p.Balance())
	}
	if backoff.Current() != start {
		t.Errorf("backoff.Current() = %v, want %v (back to starting value)", backoff.Current(), start)
	}
}

func TestRetryPolicy_ResetWindsDownGraduallyRatherThanSnapping(t *testing.T) {
	backoff := NewExponentialBackoff(5 * time.Millisecond)
	p := NewRetryPolicy(10, backoff)
	now := time.Now()
	failure := NewHTTPFailure(500)
	start := backoff.Current()

	p.AfterFailure(ExecutionInfo{Time: now}, failure)
	p.AfterFailure(ExecutionInfo{Time: now}, failure)
	if backoff.Current() == start {
		t.Fatal("backoff did not grow after failures")
	}

	p.Reset()
	if p.Balance() != 0 {
		t.Errorf("Balance() after Reset() = %d, want 0", p.Balance())
	}
	if backoff.Current() != start {
		t.Errorf("backoff.Current() after Reset() = %v, want %v", backoff.Current(), start)
	}
}

func TestRetryPolicy_ZeroMaxRetriesAbortsImmediately(t *testing.T) {
	p := NewRetryPolicy(0, NewExponentialBackoff(time.Millisecond))
	now := time.Now()

	res := p.AfterFailure(ExecutionInfo{Time: now}, NewHTTPFailure(500))
	if res.Kind != ResolutionAbort {
		t.Fatalf("AfterFailure() kind = %v, want abort", res.Kind)
	}
}
