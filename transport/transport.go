// Package transport implements the HTTP contract from spec.md §6:
// fetch(url, options) -> {statusCode, headers, body}, with failures
// classified into the tagged ExecutionFailure variants the failure policies
// consume. Retrying a failed fetch is the failure policy's job, not this
// package's — Fetch always makes exactly one physical HTTP attempt.
package transport

import (
	"bytes"
	"context"
	"crypto/x509"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/onesdk/go-sdk/resilience"
)

// Options configures a single HTTP attempt.
type Options struct {
	Method  string
	Headers map[string]string
	Body    []byte
	Timeout time.Duration
}

// Response is the result of a completed HTTP exchange. A non-2xx status is
// still a normal Response; only transport-level failures (DNS, TLS, refused
// connections, timeouts) are returned as errors.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Client performs single-attempt HTTP fetches. The zero value uses
// http.DefaultClient's transport with no base URL or default headers.
type Client struct {
	http *http.Client
}

// New creates a Client. A nil inner http.Client defaults to one with no
// client-wide timeout — per-attempt deadlines come from Options.Timeout.
func New(inner *http.Client) *Client {
	if inner == nil {
		inner = &http.Client{}
	}
	return &Client{http: inner}
}

// Fetch performs one HTTP request. Timeout, if positive, bounds this single
// attempt via the context; it does not retry.
func (c *Client) Fetch(ctx context.Context, url string, opts Options) (Response, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if opts.Body != nil {
		body = bytes.NewReader(opts.Body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return Response{}, err
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	hc := c.http
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return Response{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, err
	}

	return Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

// Classify maps a Fetch error to the tagged failure variants spec.md §3
// defines. A nil err is not a valid input. HTTP status codes are classified
// separately by the caller via NewHTTPFailure since Fetch does not treat
// them as errors.
func Classify(err error) resilience.ExecutionFailure {
	if errors.Is(err, context.DeadlineExceeded) {
		return resilience.NewRequestFailure(resilience.RequestTimeout)
	}
	if errors.Is(err, context.Canceled) {
		return resilience.NewRequestFailure(resilience.RequestAbort)
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return resilience.NewNetworkFailure(resilience.NetworkDNS)
	}

	var certErr x509.UnknownAuthorityError
	var hostErr x509.HostnameError
	if errors.As(err, &certErr) || errors.As(err, &hostErr) {
		return resilience.NewNetworkFailure(resilience.NetworkUnsignedSSL)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return resilience.NewNetworkFailure(resilience.NetworkTimeout)
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && strings.Contains(opErr.Err.Error(), "refused") {
		return resilience.NewNetworkFailure(resilience.NetworkReject)
	}

	return resilience.NewNetworkFailure(resilience.NetworkReject)
}
