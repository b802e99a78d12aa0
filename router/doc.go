// Package router implements the policy router (component C3): the
// per-(profile, use-case) coordinator that holds one failure policy per
// configured provider plus a priority order, and realizes failover and
// failover restore on top of the resolutions returned by package resilience.
//
// A Router never talks to a provider directly; it is consulted by the
// perform pipeline (package sdk) before and after every HTTP attempt and
// answers with a resilience.Resolution, occasionally one of kind
// switch-provider — the one Resolution kind resilience policies themselves
// never produce.
package router
