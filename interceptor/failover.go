package interceptor

import (
	"sync"
	"time"

	"github.com/onesdk/go-sdk/core"
	"github.com/onesdk/go-sdk/resilience"
	"github.com/onesdk/go-sdk/router"
)

// FetchArgs is the args value threaded through pre-fetch/post-fetch
// handlers: one physical HTTP attempt.
type FetchArgs struct {
	URL     string
	Timeout time.Duration

	// CheckFailoverRestore is set by the perform driver on the first fetch
	// of a use-case invocation (never on a same-invocation retry).
	CheckFailoverRestore bool
}

// ActionKind identifies a deferred action queued by the pre-fetch/post-fetch
// failover handlers for the perform driver to act on between use-case
// iterations.
type ActionKind string

// Action kinds.
const (
	ActionSwitchProvider ActionKind = "switch-provider"
	ActionRecache        ActionKind = "recache"
)

// Action is a deferred effect queued by a pre-fetch/post-fetch handler; the
// perform driver drains it after post-perform.
type Action struct {
	Kind     ActionKind
	Provider string
}

// ActionQueue accumulates Actions over the course of a single use-case
// invocation. It is safe for concurrent use, though in practice one queue
// belongs to exactly one in-flight invocation.
type ActionQueue struct {
	mu      sync.Mutex
	actions []Action
}

// Push appends an action.
func (q *ActionQueue) Push(a Action) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.actions = append(q.actions, a)
}

// Drain removes and returns every queued action, in order.
func (q *ActionQueue) Drain() []Action {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.actions
	q.actions = nil
	return out
}

// HasPending reports whether any action is queued.
func (q *ActionQueue) HasPending() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.actions) > 0
}

// Classify maps a fetch error to the resilience failure taxonomy.
// transport.Classify tells transport-level failures apart (a DNS failure
// from a rejected TLS handshake, a refused connection, a timeout);
// boundprovider.Classify additionally maps an HTTP error status to
// http/<code>.
type Classify func(err error) resilience.ExecutionFailure

// RegisterFailoverAdapter wires the canonical pre-fetch/post-fetch handlers
// described in spec.md §4.4: consult the router before every attempt, feed
// the outcome back after every attempt, and queue a switch-provider action
// for the perform driver whenever the router reassigns the current
// provider. Handlers are registered at priority 1, matching the spec's
// "canonical handlers" placement. The returned Unregister removes both
// registrations, letting a caller scope one adapter (and the ActionQueue its
// queue func closes over) to a single use-case invocation on a shared
// Engine.
func RegisterFailoverAdapter(engine *Engine, r *router.Router, classify Classify, queue func(ctx Context) *ActionQueue) Unregister {
	unregPre := engine.On("pre-fetch", Options{Priority: 1}, HandlerFunc(func(ctx Context, args any, _ *Outcome) HandlerResult {
		fa := args.(FetchArgs)
		info := resilience.ExecutionInfo{Time: ctx.Time, CheckFailoverRestore: fa.CheckFailoverRestore}

		res := r.BeforeExecution(info)
		switch res.Kind {
		case resilience.ResolutionContinue:
			fa.Timeout = res.Timeout
			return HandlerResult{Kind: HandlerModify, NewArgs: fa}
		case resilience.ResolutionBackoff:
			time.Sleep(res.Backoff)
			fa.Timeout = res.Timeout
			return HandlerResult{Kind: HandlerModify, NewArgs: fa}
		case resilience.ResolutionSwitchProvider:
			// The router reassigned current before this attempt ever left the
			// gate. The artifact this handler's call is bound to still points
			// at the old provider, so let the call go is wrong: queue the
			// switch and abort this attempt outright rather than spend a real
			// HTTP round trip on a provider the router already moved past.
			// post-fetch sees the pending action and leaves this outcome
			// alone; the driver's next iteration resolves the new current
			// provider and fetches against it instead.
			queue(ctx).Push(Action{Kind: ActionSwitchProvider, Provider: res.Provider})
			return HandlerResult{Kind: HandlerAbort, NewOutcome: &Outcome{
				Err: core.NewError("interceptor.pre-fetch", core.ErrAbort, res.Reason, nil),
			}}
		default: // abort
			return HandlerResult{Kind: HandlerAbort, NewOutcome: &Outcome{
				Err: core.NewError("interceptor.pre-fetch", core.ErrAbort, res.Reason, nil),
			}}
		}
	}))

	unregPost := engine.On("post-fetch", Options{Priority: 1}, HandlerFunc(func(ctx Context, _ any, outcome *Outcome) HandlerResult {
		if queue(ctx).HasPending() {
			return HandlerResult{Kind: HandlerContinue}
		}

		info := resilience.ExecutionInfo{Time: ctx.Time}
		if outcome.Err == nil {
			r.AfterSuccess(info)
			return HandlerResult{Kind: HandlerContinue}
		}

		res := r.AfterFailure(info, classify(outcome.Err))
		switch res.Kind {
		case resilience.ResolutionRetry:
			return HandlerResult{Kind: HandlerRetry}
		case resilience.ResolutionSwitchProvider:
			queue(ctx).Push(Action{Kind: ActionSwitchProvider, Provider: res.Provider})
			return HandlerResult{Kind: HandlerContinue}
		case resilience.ResolutionContinue:
			return HandlerResult{Kind: HandlerContinue}
		default: // abort
			return HandlerResult{Kind: HandlerAbort, NewOutcome: &Outcome{
				Err: core.NewError("interceptor.post-fetch", core.ErrAbort, res.Reason, outcome.Err),
			}}
		}
	}))

	return func() {
		unregPre()
		unregPost()
	}
}
