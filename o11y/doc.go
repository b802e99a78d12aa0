// Package o11y provides structured logging for the SDK runtime via a thin
// wrapper around log/slog.
//
// [NewLogger] builds a Logger with a configurable level and output format:
//
//	logger := o11y.NewLogger(
//	    o11y.WithLogLevel("debug"),
//	    o11y.WithJSON(),
//	)
//	logger.Info(ctx, "use case performed",
//	    "useCase", "send",
//	    "provider", "openai",
//	)
//
// [WithLogger] and [FromContext] propagate a Logger through a context.Context
// so that interceptor handlers and the perform pipeline can log without
// threading a logger through every call. [Logger.With] attaches fixed
// key-value attributes (profile, use case, provider) to every subsequent
// entry from the returned Logger.
package o11y
