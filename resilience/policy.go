package resilience

import (
	"fmt"
	"time"
)

// FailureKind identifies the top-level category of an ExecutionFailure.
type FailureKind string

const (
	// FailureNetwork is a transport-level failure: DNS, TLS, or a rejected
	// connection.
	FailureNetwork FailureKind = "network"

	// FailureRequest is a failure of the request itself: it timed out or was
	// aborted before a response arrived.
	FailureRequest FailureKind = "request"

	// FailureHTTP is a successfully completed HTTP exchange whose status
	// code the caller treats as a failure.
	FailureHTTP FailureKind = "http"
)

// NetworkIssue enumerates the sub-kinds of a FailureNetwork.
type NetworkIssue string

// Network issue values, per spec.md §3.
const (
	NetworkDNS         NetworkIssue = "dns"
	NetworkTimeout     NetworkIssue = "timeout"
	NetworkUnsignedSSL NetworkIssue = "unsigned-ssl"
	NetworkReject      NetworkIssue = "reject"
)

// RequestIssue enumerates the sub-kinds of a FailureRequest.
type RequestIssue string

// Request issue values, per spec.md §3.
const (
	RequestTimeout RequestIssue = "timeout"
	RequestAbort   RequestIssue = "abort"
)

// ExecutionFailure is the tagged variant describing why one HTTP attempt
// failed. Exactly one of the Issue fields is meaningful, selected by Kind.
type ExecutionFailure struct {
	Kind FailureKind

	// NetworkIssue is set when Kind == FailureNetwork.
	NetworkIssue NetworkIssue

	// RequestIssue is set when Kind == FailureRequest.
	RequestIssue RequestIssue

	// StatusCode is set when Kind == FailureHTTP.
	StatusCode int
}

// NewNetworkFailure builds an ExecutionFailure for a transport-level error.
func NewNetworkFailure(issue NetworkIssue) ExecutionFailure {
	return ExecutionFailure{Kind: FailureNetwork, NetworkIssue: issue}
}

// NewRequestFailure builds an ExecutionFailure for a request-level error.
func NewRequestFailure(issue RequestIssue) ExecutionFailure {
	return ExecutionFailure{Kind: FailureRequest, RequestIssue: issue}
}

// NewHTTPFailure builds an ExecutionFailure for an HTTP status the caller
// treats as an error.
func NewHTTPFailure(statusCode int) ExecutionFailure {
	return ExecutionFailure{Kind: FailureHTTP, StatusCode: statusCode}
}

// String renders a short, human-readable description used to compose policy
// abort reasons.
func (f ExecutionFailure) String() string {
	switch f.Kind {
	case FailureNetwork:
		return fmt.Sprintf("network/%s", f.NetworkIssue)
	case FailureRequest:
		return fmt.Sprintf("request/%s", f.RequestIssue)
	case FailureHTTP:
		return fmt.Sprintf("http/%d", f.StatusCode)
	default:
		return "failure/unknown"
	}
}

// ExecutionInfo accompanies every call into a Policy. Time is used by the
// circuit breaker to compare against an absolute reset deadline, so it must
// be wall-clock; RegistryCacheAge is advisory (spec.md §9 — no built-in
// policy consults it today).
type ExecutionInfo struct {
	Time             time.Time
	RegistryCacheAge time.Duration

	// CheckFailoverRestore is read only by the router (resilience.Policy
	// implementations ignore it); it is threaded through ExecutionInfo so
	// the router can pass one value down BeforeExecution calls on every
	// candidate provider's policy.
	CheckFailoverRestore bool
}

// ResolutionKind identifies what a Policy or Router wants the caller to do
// next.
type ResolutionKind string

// Resolution kinds, per spec.md §3.
const (
	ResolutionContinue       ResolutionKind = "continue"
	ResolutionBackoff        ResolutionKind = "backoff"
	ResolutionAbort          ResolutionKind = "abort"
	ResolutionRetry          ResolutionKind = "retry"
	ResolutionSwitchProvider ResolutionKind = "switch-provider"
)

// Resolution is the small tagged result returned by BeforeExecution,
// AfterSuccess, and AfterFailure. Only the fields relevant to Kind are
// meaningful; see spec.md §3's resolution table.
type Resolution struct {
	Kind ResolutionKind

	// Timeout is set on Continue and Backoff: the per-attempt request
	// deadline to use.
	Timeout time.Duration

	// Backoff is set on Backoff: how long to sleep before proceeding.
	Backoff time.Duration

	// Reason is set on Abort and SwitchProvider.
	Reason string

	// Provider is set on SwitchProvider only; resilience.Policy
	// implementations never set it (invariant: only the router issues
	// switch-provider resolutions).
	Provider string
}

// Continue builds a Resolution telling the caller to proceed with the given
// per-attempt timeout.
func Continue(timeout time.Duration) Resolution {
	return Resolution{Kind: ResolutionContinue, Timeout: timeout}
}

// BackoffThen builds a Resolution telling the caller to sleep for delay and
// then proceed with the given per-attempt timeout.
func BackoffThen(delay, timeout time.Duration) Resolution {
	return Resolution{Kind: ResolutionBackoff, Backoff: delay, Timeout: timeout}
}

// Abort builds a Resolution telling the caller to stop and surface reason.
func Abort(reason string) Resolution {
	return Resolution{Kind: ResolutionAbort, Reason: reason}
}

// Retry builds a Resolution telling the caller to repeat the same attempt.
func Retry() Resolution {
	return Resolution{Kind: ResolutionRetry}
}

// PrefixReason composes an abort reason the way the router's failover search
// does: "<prefix>: <reason>".
func PrefixReason(prefix, reason string) string {
	if reason == "" {
		return prefix
	}
	return fmt.Sprintf("%s: %s", prefix, reason)
}

// DefaultRequestTimeout is applied by every policy unless overridden.
const DefaultRequestTimeout = 30 * time.Second

// Policy is the shared interface of the three failure policies (component
// C2): AbortPolicy, RetryPolicy, and CircuitBreakerPolicy. Implementations
// never perform I/O and never panic on ordinary failure paths — a caller
// violating an invariant (e.g. calling AfterFailure while the breaker is
// open) is free to panic, since that is a programmer error, not data.
type Policy interface {
	// BeforeExecution is called exactly once per physical HTTP attempt,
	// before it is made.
	BeforeExecution(info ExecutionInfo) Resolution

	// AfterSuccess is called when an attempt completed with a usable
	// response.
	AfterSuccess(info ExecutionInfo) Resolution

	// AfterFailure is called when an attempt failed to produce a usable
	// response.
	AfterFailure(info ExecutionInfo, failure ExecutionFailure) Resolution

	// Reset returns the policy to its initial state.
	Reset()

	// RequestTimeout returns the per-attempt deadline the policy currently
	// wants applied. It is the same value most recently returned via
	// Resolution.Timeout from BeforeExecution.
	RequestTimeout() time.Duration
}
