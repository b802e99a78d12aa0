package boundprovider

import (
	"context"
	"encoding/json"
	"time"

	"github.com/onesdk/go-sdk/core"
	"github.com/onesdk/go-sdk/interceptor"
	"github.com/onesdk/go-sdk/resilience"
	"github.com/onesdk/go-sdk/transport"
)

// Step describes one HTTP call within a use case: where to send it, how to
// build it from the accumulated input/output variables, and which response
// fields to extract for later steps and the final result.
type Step struct {
	Method string `json:"method"`

	// URLTemplate and BodyTemplate may reference any variable accumulated
	// so far (the original input fields plus every prior step's
	// ResponseMap outputs) as "{name}".
	URLTemplate  string            `json:"url"`
	BodyTemplate string            `json:"body,omitempty"`
	Headers      map[string]string `json:"headers,omitempty"`

	// ResponseMap maps an output variable name to a dot-separated path
	// into the decoded JSON response body.
	ResponseMap map[string]string `json:"responseMap,omitempty"`

	// ExpectedStatus lists acceptable status codes. Empty means any 2xx.
	// A response outside this set fires pre-unhandled-http and fails the
	// step.
	ExpectedStatus []int `json:"expectedStatus,omitempty"`
}

// UseCase is one named operation's step sequence.
type UseCase struct {
	Steps []Step `json:"steps"`
}

// JSONMap is a declarative, provider-bound sequence of HTTP calls per use
// case — this module's stand-in for a real map interpreter. It satisfies
// sdk.Artifact.
type JSONMap struct {
	Provider string
	UseCases map[string]UseCase

	transport *transport.Client
	engine    *interceptor.Engine

	// MaxFetchRetries bounds how many times a post-fetch handler may force
	// a retry of one physical call, per spec.md §4.4. Defaults to 5.
	MaxFetchRetries int
}

// New builds a JSONMap bound to one provider, performing its fetches
// through client and routing them through engine's pre-fetch/post-fetch
// events (where the failover adapter and any user handlers live).
func New(provider string, useCases map[string]UseCase, client *transport.Client, engine *interceptor.Engine) *JSONMap {
	return &JSONMap{
		Provider:        provider,
		UseCases:        useCases,
		transport:       client,
		engine:          engine,
		MaxFetchRetries: 5,
	}
}

// Perform executes useCaseName's step sequence against input, threading
// each step's extracted response fields into the variables later steps (and
// the final result) can reference.
func (m *JSONMap) Perform(ctx context.Context, useCaseName string, input any) (any, error) {
	useCase, ok := m.UseCases[useCaseName]
	if !ok {
		return nil, core.NewError("boundprovider.perform", core.ErrConfig, "unknown use case "+useCaseName, nil)
	}

	vars := map[string]any{}
	if in, ok := input.(map[string]any); ok {
		for k, v := range in {
			vars[k] = v
		}
	}

	for i, step := range useCase.Steps {
		body, err := m.runStep(ctx, useCaseName, i, step, vars)
		if err != nil {
			return nil, err
		}
		for name, path := range step.ResponseMap {
			if v, found := extractPath(body, path); found {
				vars[name] = v
			}
		}
	}
	return vars, nil
}

func (m *JSONMap) runStep(ctx context.Context, useCaseName string, index int, step Step, vars map[string]any) (any, error) {
	url := renderTemplate(step.URLTemplate, vars)
	var rawBody []byte
	if step.BodyTemplate != "" {
		rawBody = []byte(renderTemplate(step.BodyTemplate, vars))
	}

	fa := interceptor.FetchArgs{
		URL:                  url,
		Timeout:              resilience.DefaultRequestTimeout,
		CheckFailoverRestore: index == 0,
	}
	ictx := interceptor.Context{UseCase: useCaseName, Provider: m.Provider, Time: time.Now()}

	outcome, err := m.engine.Wrap(ictx, "fetch", fa, m.MaxFetchRetries, func(ictx interceptor.Context, args any) (any, error) {
		fa := args.(interceptor.FetchArgs)
		resp, err := m.transport.Fetch(ctx, fa.URL, transport.Options{
			Method:  step.Method,
			Headers: step.Headers,
			Body:    rawBody,
			Timeout: fa.Timeout,
		})
		if err != nil {
			return nil, err
		}
		if !statusExpected(resp.StatusCode, step.ExpectedStatus) {
			m.engine.Notify("pre-unhandled-http", ictx, resp)
			return nil, &HTTPStatusError{StatusCode: resp.StatusCode}
		}
		return decodeJSON(resp.Body), nil
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

func statusExpected(status int, expected []int) bool {
	if len(expected) == 0 {
		return status >= 200 && status < 300
	}
	for _, s := range expected {
		if s == status {
			return true
		}
	}
	return false
}

func decodeJSON(body []byte) any {
	if len(body) == 0 {
		return map[string]any{}
	}
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return map[string]any{}
	}
	return v
}
