package interceptor

import (
	"errors"
	"testing"
	"time"
)

func TestEngine_WrapNoHandlersCallsThrough(t *testing.T) {
	e := NewEngine()
	called := false
	result, err := e.Wrap(Context{}, "fetch", "args", 0, func(Context, any) (any, error) {
		called = true
		return "ok", nil
	})
	if !called {
		t.Fatal("wrapped call was not invoked")
	}
	if err != nil || result != "ok" {
		t.Errorf("result=%v err=%v, want ok/nil", result, err)
	}
}

func TestEngine_PreHandlerModify(t *testing.T) {
	e := NewEngine()
	e.On("pre-fetch", Options{}, HandlerFunc(func(_ Context, args any, _ *Outcome) HandlerResult {
		return HandlerResult{Kind: HandlerModify, NewArgs: args.(string) + "-modified"}
	}))

	var seenArgs string
	_, _ = e.Wrap(Context{}, "fetch", "original", 0, func(_ Context, args any) (any, error) {
		seenArgs = args.(string)
		return nil, nil
	})

	if seenArgs != "original-modified" {
		t.Errorf("seenArgs = %q, want %q", seenArgs, "original-modified")
	}
}

func TestEngine_PreHandlerAbortSkipsCall(t *testing.T) {
	e := NewEngine()
	e.On("pre-fetch", Options{}, HandlerFunc(func(_ Context, _ any, _ *Outcome) HandlerResult {
		return HandlerResult{Kind: HandlerAbort, NewOutcome: &Outcome{Result: "aborted"}}
	}))

	called := false
	result, err := e.Wrap(Context{}, "fetch", nil, 0, func(Context, any) (any, error) {
		called = true
		return nil, nil
	})

	if called {
		t.Error("wrapped call should not run after a pre-handler abort")
	}
	if result != "aborted" || err != nil {
		t.Errorf("result=%v err=%v, want aborted/nil", result, err)
	}
}

func TestEngine_PriorityOrdering(t *testing.T) {
	e := NewEngine()
	var order []int
	e.On("pre-fetch", Options{Priority: 5}, HandlerFunc(func(_ Context, args any, _ *Outcome) HandlerResult {
		order = append(order, 5)
		return HandlerResult{Kind: HandlerContinue}
	}))
	e.On("pre-fetch", Options{Priority: 1}, HandlerFunc(func(_ Context, args any, _ *Outcome) HandlerResult {
		order = append(order, 1)
		return HandlerResult{Kind: HandlerContinue}
	}))
	e.On("pre-fetch", Options{Priority: 3}, HandlerFunc(func(_ Context, args any, _ *Outcome) HandlerResult {
		order = append(order, 3)
		return HandlerResult{Kind: HandlerContinue}
	}))

	_, _ = e.Wrap(Context{}, "fetch", nil, 0, func(Context, any) (any, error) { return nil, nil })

	if len(order) != 3 || order[0] != 1 || order[1] != 3 || order[2] != 5 {
		t.Errorf("order = %v, want [1 3 5]", order)
	}
}

func TestEngine_PostHandlerRetry(t *testing.T) {
	e := NewEngine()
	attempts := 0
	retried := false
	e.On("post-fetch", Options{}, HandlerFunc(func(_ Context, _ any, _ *Outcome) HandlerResult {
		if !retried {
			retried = true
			return HandlerResult{Kind: HandlerRetry}
		}
		return HandlerResult{Kind: HandlerContinue}
	}))

	result, err := e.Wrap(Context{}, "fetch", nil, 3, func(Context, any) (any, error) {
		attempts++
		return "done", nil
	})

	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
	if err != nil || result != "done" {
		t.Errorf("result=%v err=%v, want done/nil", result, err)
	}
}

func TestEngine_RetryLimitExceeded(t *testing.T) {
	e := NewEngine()
	e.On("post-fetch", Options{}, HandlerFunc(func(_ Context, _ any, _ *Outcome) HandlerResult {
		return HandlerResult{Kind: HandlerRetry}
	}))

	attempts := 0
	_, err := e.Wrap(Context{}, "fetch", nil, 2, func(Context, any) (any, error) {
		attempts++
		return nil, nil
	})

	if err == nil {
		t.Fatal("expected retry-limit-exceeded error")
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3 (initial + 2 retries)", attempts)
	}
}

func TestEngine_PostHandlerAbortOverridesOutcome(t *testing.T) {
	e := NewEngine()
	e.On("post-fetch", Options{}, HandlerFunc(func(_ Context, _ any, _ *Outcome) HandlerResult {
		return HandlerResult{Kind: HandlerAbort, NewOutcome: &Outcome{Err: errors.New("rejected")}}
	}))

	_, err := e.Wrap(Context{}, "fetch", nil, 0, func(Context, any) (any, error) {
		return "would have succeeded", nil
	})

	if err == nil || err.Error() != "rejected" {
		t.Errorf("err = %v, want rejected", err)
	}
}

func TestEngine_FilterSkipsNonMatchingHandlers(t *testing.T) {
	e := NewEngine()
	called := false
	e.On("pre-fetch", Options{Filter: func(ctx Context) bool { return ctx.Provider == "only-this" }}, HandlerFunc(func(_ Context, args any, _ *Outcome) HandlerResult {
		called = true
		return HandlerResult{Kind: HandlerContinue}
	}))

	_, _ = e.Wrap(Context{Provider: "other"}, "fetch", nil, 0, func(Context, any) (any, error) { return nil, nil })
	if called {
		t.Error("filtered-out handler should not run")
	}

	_, _ = e.Wrap(Context{Provider: "only-this"}, "fetch", nil, 0, func(Context, any) (any, error) { return nil, nil })
	if !called {
		t.Error("matching handler should run")
	}
}

func TestEngine_Unregister(t *testing.T) {
	e := NewEngine()
	called := false
	unreg := e.On("pre-fetch", Options{}, HandlerFunc(func(_ Context, args any, _ *Outcome) HandlerResult {
		called = true
		return HandlerResult{Kind: HandlerContinue}
	}))
	unreg()

	_, _ = e.Wrap(Context{}, "fetch", nil, 0, func(Context, any) (any, error) { return nil, nil })
	if called {
		t.Error("unregistered handler should not run")
	}
}

func TestEngine_Notify(t *testing.T) {
	e := NewEngine()
	var got string
	e.On("success", Options{}, NotifyFunc(func(_ Context, payload any) {
		got = payload.(string)
	}))

	e.Notify("success", Context{Time: time.Now()}, "it worked")
	if got != "it worked" {
		t.Errorf("got = %q, want %q", got, "it worked")
	}
}

func TestEngine_OnPanicsOnBadHandlerType(t *testing.T) {
	e := NewEngine()
	defer func() {
		if recover() == nil {
			t.Error("On() with an invalid handler type should panic")
		}
	}()
	e.On("pre-fetch", Options{}, 42)
}
