// Package attestation implements the TEE attestation entity and its
// lifecycle.
//
// An Attestation is a signed claim binding a public key to a specific TEE
// instance, with expiration and revocable validity. The validating
// constructor New enforces all creation invariants: non-empty
// cryptographic material, a non-zero TTL, and the required metadata for
// the TEE type. After creation, attestations mutate only through Revoke
// (one-way, not idempotent), ExtendExpiration (additive, active-only) and
// UpdateMetadata (wholesale replace, revalidated, active-only).
//
// The current time is always supplied by the caller as seconds since
// epoch; the package never reads a system clock, which keeps validity
// checks deterministic and testable.
package attestation
