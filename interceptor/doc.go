// Package interceptor implements the event interceptor engine (component
// C4): a priority-ordered, named-event registry wrapping lifecycle points
// such as pre-fetch/post-fetch and pre-perform/post-perform, plus plain
// notification events such as success/failure/provider-switch.
//
// A handler registered on a "pre-<op>" or "post-<op>" event participates in
// Engine.Wrap's around-semantics: it can let the call continue, rewrite its
// arguments, force a retry of the whole pre→call→post cycle, or abort with a
// substitute outcome. A handler registered on any other event name is a
// plain observer invoked by Engine.Notify with no return value.
package interceptor
