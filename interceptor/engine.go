package interceptor

import (
	"sort"
	"sync"
	"time"

	"github.com/onesdk/go-sdk/core"
)

// Context accompanies every event dispatched through an Engine.
type Context struct {
	Profile  string
	UseCase  string
	Provider string
	Time     time.Time

	// SessionID and RequestID are the correlation IDs carried on the
	// triggering ctx.Context via core.WithSessionID/core.WithRequestID, if
	// any were set. Handlers that log should include both.
	SessionID string
	RequestID string

	// Metadata carries whatever the caller attached to this Perform call via
	// sdk.WithMetadata options. It is nil, not an empty map, when the caller
	// attached nothing.
	Metadata map[string]string
}

// Outcome is the result of a wrapped call: either a value or an error, never
// both populated meaningfully.
type Outcome struct {
	Result any
	Err    error
}

// HandlerKind identifies what a pre/post handler wants the engine to do
// next.
type HandlerKind string

// Handler resolution kinds, per spec.md §4.4.
const (
	HandlerContinue HandlerKind = "continue"
	HandlerModify   HandlerKind = "modify"
	HandlerRetry    HandlerKind = "retry"
	HandlerAbort    HandlerKind = "abort"
)

// HandlerResult is returned by a HandlerFunc to tell the engine what to do
// next. Only the fields relevant to Kind are meaningful.
type HandlerResult struct {
	Kind HandlerKind

	// NewArgs is set on Modify: subsequent handlers and the wrapped call see
	// this value instead of the args they were invoked with.
	NewArgs any

	// NewOutcome is set on Abort (pre or post) and optionally on a post
	// Modify: downstream sees this Outcome instead of the wrapped call's.
	NewOutcome *Outcome
}

// HandlerFunc is invoked for pre-<op> and post-<op> events. outcome is nil
// for pre-<op> invocations and non-nil for post-<op> invocations.
type HandlerFunc func(ctx Context, args any, outcome *Outcome) HandlerResult

// NotifyFunc is invoked for plain notification events (success, failure,
// provider-switch, and any other event name an Engine.On caller chooses).
// It has no return value: notify handlers observe, they do not steer.
type NotifyFunc func(ctx Context, payload any)

// Filter decides whether a registered handler applies to a given Context.
// A nil Filter always applies.
type Filter func(ctx Context) bool

// Options configures a single On registration.
type Options struct {
	// Priority orders handlers on the same event; lower fires first.
	// Registrations with equal Priority fire in the order they were added.
	Priority int

	// Filter, if set, is consulted before invoking the handler; a handler
	// whose Filter returns false is skipped entirely for that dispatch.
	Filter Filter
}

type registration struct {
	seq      int
	priority int
	filter   Filter
	handler  HandlerFunc
	notify   NotifyFunc
}

// Unregister removes a handler previously returned by Engine.On.
type Unregister func()

// Engine is the event interceptor engine (component C4). It is safe for
// concurrent use: registration and deregistration take a write lock, but
// handler invocation itself never holds the lock, so a handler is free to
// perform I/O or register further handlers.
type Engine struct {
	mu       sync.RWMutex
	handlers map[string][]*registration
	seq      int
}

// NewEngine creates an empty Engine.
func NewEngine() *Engine {
	return &Engine{handlers: make(map[string][]*registration)}
}

// On registers handler for event. Pass a HandlerFunc for pre-<op>/post-<op>
// events consumed by Wrap, or a NotifyFunc for plain events consumed by
// Notify. The returned Unregister removes this one registration.
func (e *Engine) On(event string, opts Options, handler any) Unregister {
	e.mu.Lock()
	e.seq++
	reg := &registration{seq: e.seq, priority: opts.Priority, filter: opts.Filter}
	switch h := handler.(type) {
	case HandlerFunc:
		reg.handler = h
	case func(Context, any, *Outcome) HandlerResult:
		reg.handler = h
	case NotifyFunc:
		reg.notify = h
	case func(Context, any):
		reg.notify = h
	default:
		e.mu.Unlock()
		panic(core.NewError("interceptor.on", core.ErrProgrammer, "handler must be a HandlerFunc or NotifyFunc", nil))
	}
	e.handlers[event] = append(e.handlers[event], reg)
	e.sortLocked(event)
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		regs := e.handlers[event]
		for i, r := range regs {
			if r == reg {
				e.handlers[event] = append(regs[:i], regs[i+1:]...)
				break
			}
		}
	}
}

// sortLocked stably orders event's handlers by priority, then by
// registration order. Callers must hold e.mu for writing.
func (e *Engine) sortLocked(event string) {
	regs := e.handlers[event]
	sort.SliceStable(regs, func(i, j int) bool {
		if regs[i].priority != regs[j].priority {
			return regs[i].priority < regs[j].priority
		}
		return regs[i].seq < regs[j].seq
	})
}

// snapshot returns a copy of event's current handlers under a read lock, so
// invocation never holds the lock.
func (e *Engine) snapshot(event string) []*registration {
	e.mu.RLock()
	defer e.mu.RUnlock()
	regs := e.handlers[event]
	out := make([]*registration, len(regs))
	copy(out, regs)
	return out
}

// Notify invokes every handler registered on event, in priority order,
// skipping any whose Filter rejects ctx. Handler return values (if any
// HandlerFunc was mistakenly registered here) are ignored.
func (e *Engine) Notify(event string, ctx Context, payload any) {
	for _, reg := range e.snapshot(event) {
		if reg.filter != nil && !reg.filter(ctx) {
			continue
		}
		if reg.notify != nil {
			reg.notify(ctx, payload)
		}
	}
}

// runPre executes op's pre-<op> handlers in order, threading args through
// every Modify. An Abort stops immediately; its NewOutcome (nil-able) is
// returned alongside aborted=true.
func (e *Engine) runPre(op string, ctx Context, args any) (newArgs any, outcome *Outcome, aborted bool) {
	for _, reg := range e.snapshot("pre-" + op) {
		if reg.handler == nil {
			continue
		}
		if reg.filter != nil && !reg.filter(ctx) {
			continue
		}
		res := reg.handler(ctx, args, nil)
		switch res.Kind {
		case HandlerModify:
			args = res.NewArgs
		case HandlerAbort:
			return args, res.NewOutcome, true
		}
	}
	return args, nil, false
}

// runPost executes op's post-<op> handlers in order against outcome. It
// returns the (possibly rewritten) outcome, whether any handler asked for a
// retry, and whether a handler aborted (in which case outcome is final).
func (e *Engine) runPost(op string, ctx Context, args any, outcome Outcome) (final Outcome, retry bool, aborted bool) {
	for _, reg := range e.snapshot("post-" + op) {
		if reg.handler == nil {
			continue
		}
		if reg.filter != nil && !reg.filter(ctx) {
			continue
		}
		res := reg.handler(ctx, args, &outcome)
		switch res.Kind {
		case HandlerModify:
			if res.NewOutcome != nil {
				outcome = *res.NewOutcome
			}
		case HandlerRetry:
			retry = true
		case HandlerAbort:
			if res.NewOutcome != nil {
				outcome = *res.NewOutcome
			}
			return outcome, false, true
		}
	}
	return outcome, retry, false
}

// Wrap runs the pre-<op> → call → post-<op> cycle for op, honoring modify,
// abort, and retry resolutions from registered handlers. maxRetries bounds
// the number of times a post handler may force a rerun; exceeding it aborts
// with "retry limit exceeded", per spec.md §4.4.
func (e *Engine) Wrap(ctx Context, op string, args any, maxRetries int, call func(ctx Context, args any) (any, error)) (any, error) {
	if maxRetries < 0 {
		maxRetries = 0
	}

	for attempt := 0; ; attempt++ {
		if attempt > maxRetries {
			err := core.NewError("interceptor.wrap", core.ErrAbort, "retry limit exceeded", nil)
			return nil, err
		}

		newArgs, preOutcome, aborted := e.runPre(op, ctx, args)
		args = newArgs

		var outcome Outcome
		if aborted {
			if preOutcome != nil {
				outcome = *preOutcome
			}
		} else {
			result, err := call(ctx, args)
			outcome = Outcome{Result: result, Err: err}
		}

		final, retry, postAborted := e.runPost(op, ctx, args, outcome)
		if postAborted || !retry {
			return final.Result, final.Err
		}
	}
}
