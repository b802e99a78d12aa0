// Package sdk implements the bound-provider cache and perform driver
// (component C5): the seven-step algorithm that resolves a provider,
// resolves its bound artifact from a single-flight cache, drives it through
// the event interceptor engine, and converts the outcome into a
// Result[Output]/PerformError pair.
package sdk
