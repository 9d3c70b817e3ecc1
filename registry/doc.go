// Package registry implements the attestation registry core: an
// admin-gated collection of TEE attestations keyed by public key,
// persisted through a pluggable key-value store.
//
// The registry maintains three pieces of durable state:
//
//   - the primary record for each public key
//   - the ordered set of all registered keys
//   - a per-owner index mapping owners to their keys
//
// All three are updated together under a single writer lock, so the
// owner index never references a missing record. Records are stored
// under plain composite keys ("attestation:<key>", "owner:<owner>")
// so any backend that can round-trip opaque byte keys works.
//
// Every operation takes the current time as a parameter. The registry
// never reads a system clock; expiration is evaluated lazily against
// the caller-supplied time, which keeps tests deterministic and leaves
// clock policy to the host.
//
// Public keys are never reusable: once registered, a key stays in the
// key set forever, and re-registration fails with AlreadyExists even
// after revocation.
package registry
