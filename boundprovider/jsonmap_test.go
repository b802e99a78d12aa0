package boundprovider

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/onesdk/go-sdk/interceptor"
	"github.com/onesdk/go-sdk/resilience"
	"github.com/onesdk/go-sdk/router"
	"github.com/onesdk/go-sdk/transport"
)

func TestJSONMap_SingleStepSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"hello"}`))
	}))
	defer srv.Close()

	engine := interceptor.NewEngine()
	m := New("p1", map[string]UseCase{
		"greet": {Steps: []Step{{
			Method:      http.MethodGet,
			URLTemplate: srv.URL,
			ResponseMap: map[string]string{"greeting": "message"},
		}}},
	}, transport.New(nil), engine)

	out, err := m.Perform(t.Context(), "greet", map[string]any{})
	if err != nil {
		t.Fatalf("Perform() error = %v", err)
	}
	vars := out.(map[string]any)
	if vars["greeting"] != "hello" {
		t.Errorf("greeting = %v, want hello", vars["greeting"])
	}
}

func TestJSONMap_ChainsStepOutputIntoNextStepURL(t *testing.T) {
	var secondURL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users":
			w.Write([]byte(`{"id":7}`))
		default:
			secondURL = r.URL.Path
			w.Write([]byte(`{"ok":true}`))
		}
	}))
	defer srv.Close()

	engine := interceptor.NewEngine()
	m := New("p1", map[string]UseCase{
		"fetch-user-posts": {Steps: []Step{
			{
				Method:      http.MethodGet,
				URLTemplate: srv.URL + "/users",
				ResponseMap: map[string]string{"userID": "id"},
			},
			{
				Method:      http.MethodGet,
				URLTemplate: srv.URL + "/users/{userID}/posts",
				ResponseMap: map[string]string{"ok": "ok"},
			},
		}},
	}, transport.New(nil), engine)

	_, err := m.Perform(t.Context(), "fetch-user-posts", map[string]any{})
	if err != nil {
		t.Fatalf("Perform() error = %v", err)
	}
	if secondURL != "/users/7/posts" {
		t.Errorf("second request path = %q, want /users/7/posts", secondURL)
	}
}

func TestJSONMap_UnexpectedStatusFiresUnhandledHTTPAndFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer srv.Close()

	engine := interceptor.NewEngine()
	var notified bool
	engine.On("pre-unhandled-http", interceptor.Options{}, interceptor.NotifyFunc(func(interceptor.Context, any) {
		notified = true
	}))

	m := New("p1", map[string]UseCase{
		"op": {Steps: []Step{{Method: http.MethodGet, URLTemplate: srv.URL}}},
	}, transport.New(nil), engine)

	_, err := m.Perform(t.Context(), "op", map[string]any{})
	if err == nil {
		t.Fatal("expected an error for an unmatched status code")
	}
	if !notified {
		t.Error("expected pre-unhandled-http to fire")
	}
}

func TestJSONMap_UnknownUseCase(t *testing.T) {
	m := New("p1", map[string]UseCase{}, transport.New(nil), interceptor.NewEngine())
	_, err := m.Perform(t.Context(), "missing", nil)
	if err == nil {
		t.Fatal("expected an error for an unknown use case")
	}
}

func TestJSONMap_FailoverAdapterSwitchesProviderOnRepeatedFailures(t *testing.T) {
	var aHits, bHits int
	srvA := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		aHits++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srvA.Close()
	srvB := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bHits++
		w.Write([]byte(`{"message":"hello from B"}`))
	}))
	defer srvB.Close()

	urls := map[string]string{"A": srvA.URL, "B": srvB.URL}
	engine := interceptor.NewEngine()
	r := router.New(func(name string) resilience.Policy {
		if name == "A" {
			return resilience.NewCircuitBreakerPolicy(2, 30*time.Second, resilience.NewExponentialBackoff(100*time.Millisecond))
		}
		return resilience.NewAbortPolicy(time.Second)
	}, []string{"A", "B"})

	queue := &interceptor.ActionQueue{}
	interceptor.RegisterFailoverAdapter(engine, r, Classify, func(interceptor.Context) *interceptor.ActionQueue { return queue })

	client := transport.New(nil)
	perform := func() (any, error) {
		provider := r.GetCurrentProvider()
		m := New(provider, map[string]UseCase{
			"greet": {Steps: []Step{{Method: http.MethodGet, URLTemplate: urls[provider], ResponseMap: map[string]string{"greeting": "message"}}}},
		}, client, engine)
		return m.Perform(t.Context(), "greet", map[string]any{})
	}

	// Drive two failed attempts against A to trip its breaker, then let the
	// router switch to B on the second failure's attemptFailover.
	if _, err := perform(); err == nil {
		t.Fatal("expected the first call against A to fail")
	}
	for queue.HasPending() {
		queue.Drain()
	}

	if _, err := perform(); err != nil {
		t.Fatalf("expected failover to B to succeed, got %v", err)
	}
	if r.GetCurrentProvider() != "B" {
		t.Errorf("GetCurrentProvider() = %q, want B", r.GetCurrentProvider())
	}
	if aHits != 2 {
		t.Errorf("aHits = %d, want 2 (breaker trips after threshold=2)", aHits)
	}
	if bHits != 1 {
		t.Errorf("bHits = %d, want 1", bHits)
	}
}
