// Package api defines the wire types and header conventions shared by
// the registry HTTP server and its clients.
//
// Caller identity is carried in the X-Registry-Identity header. The
// transport is host-authenticated: the server trusts the header as-is
// and only compares it against the registry's admin identity, matching
// the registry core's collaborator model. Deploy behind an
// authenticating proxy.
//
// The X-Registry-Timestamp header optionally overrides the evaluation
// time (seconds since epoch) for deterministic clients; when absent the
// server samples its own clock at the edge.
package api
