// Package compute defines the computation boundary between the problem
// models and the solvers.
//
// Requests and responses are plain JSON-tagged structs so that the same
// values cross the HTTP API unchanged. A [Backend] either runs the solvers
// in-process ([Local]) or forwards to a server (api.Client).
package compute
