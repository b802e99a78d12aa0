// Package resilience implements the failure-policy layer that governs a
// single (provider, use-case) execution path: a monotone backoff generator,
// and the three failure policies (abort, retry, circuit breaker) that decide
// what happens before an HTTP attempt, after it succeeds, and after it
// fails.
//
// Policies never perform I/O and never raise; they answer three questions —
// BeforeExecution, AfterSuccess, AfterFailure — by returning a Resolution
// that tells the caller to continue, sleep and continue, retry, or abort.
// The policy router (package router) consumes these resolutions to decide
// whether to fail over to another provider.
package resilience
