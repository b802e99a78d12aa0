package core

// Option is a functional option for a single call, as opposed to a
// *ClientOption-style construction-time setting: sdk.Client.Perform takes
// ...Option so a caller can attach per-call extras (see sdk.WithMetadata)
// without PerformRequest growing a field for every handler-specific extra
// that never applies to most calls. The target parameter receives the
// call's private config struct to modify.
type Option interface {
	Apply(target any)
}

// OptionFunc is an adapter that turns a plain function into an Option.
type OptionFunc func(target any)

// Apply calls the underlying function with target.
func (f OptionFunc) Apply(target any) {
	f(target)
}

// ApplyOptions applies a slice of Options to the given target, in order —
// an option applied later overwrites whatever an earlier one set on the same
// field.
func ApplyOptions(target any, opts ...Option) {
	for _, o := range opts {
		o.Apply(target)
	}
}
