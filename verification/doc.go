// Package verification implements signature verification for attestation
// reports across all supported TEE types.
//
// Verify is a pure, stateless dispatcher: it routes to a scheme-specific
// verifier based on the TEE type, keeping the attestation entity and the
// registry agnostic of cryptographic detail. Adding a TEE type means one
// new scheme branch plus one required-metadata table row.
//
// Supported schemes:
//
//   - Intel SGX, AMD SEV, ARM TrustZone, Azure Attestation, AWS Nitro:
//     ECDSA P-256 over the SHA-256 digest of the report bytes. Public keys
//     are uncompressed SEC1 points; signatures are ASN.1/DER with a
//     64-byte compact (r||s) fallback.
//   - Google Asylo: Ed25519 over the raw report bytes (32-byte key,
//     64-byte signature, no separate hash step).
//   - Other: the signature_algorithm metadata key selects the scheme.
//     ECDSA-P256 and Ed25519 are implemented; ECDSA-P384 and RSA-PSS are
//     declared extension points that return an explicit error rather than
//     silently reporting success.
//
// Public keys, reports and signatures arrive base64-encoded. Required
// metadata is checked before any decoding, so a missing field
// short-circuits without touching cryptography.
package verification
