// Package transport performs single-attempt HTTP exchanges and classifies
// the ways they can fail. It has no retry logic of its own: resilience and
// router decide whether and how to retry, and interceptor drives the
// pre-fetch/post-fetch cycle around each attempt this package makes.
package transport
