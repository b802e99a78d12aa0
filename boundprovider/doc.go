// Package boundprovider stands in for the external "profile provider
// binder" and map interpreter spec.md §4.5 explicitly puts out of scope as
// a general map language. JSONMap is a minimal, declarative sequence of
// HTTP calls — method, URL template, response field extraction — good
// enough to drive the pre-fetch/post-fetch event cycle and return a value
// sdk.Client can wrap in a Result[Output].
package boundprovider
