// Package api defines the public types of the onboard engine: the
// question schema, the profile, flow state, the presenter and observer
// collaborator interfaces, and the pure parse helpers schemas are built
// from.
//
// Most users never import this package directly; the root onboard
// package re-exports everything relevant.
package api
