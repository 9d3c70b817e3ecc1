// Package httpserver exposes the attestation registry over HTTP.
//
// The server wires a chi router with request logging, health and drain
// endpoints, optional pprof, and a separate Prometheus metrics
// listener. The Handler translates registry operations to routes and
// maps the registry's typed errors to HTTP statuses.
//
// Attestation public keys are opaque strings supplied by callers, so
// they travel in query parameters and JSON bodies rather than URL path
// segments.
package httpserver
