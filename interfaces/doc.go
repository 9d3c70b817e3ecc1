// Package interfaces defines the core types and contracts shared by the
// TEE attestation registry components. It provides the TEE type taxonomy,
// the structured error taxonomy, caller identity, and the key-value storage
// abstraction the registry persists into, without any implementation
// details.
//
// # TEE Types
//
// TeeType is a closed variant set covering the supported attestation
// schemes (SGX, SEV, TrustZone, Asylo, Azure Attestation, AWS Nitro) plus
// an open-ended Other variant for custom environments. Each type carries a
// table-driven required-metadata field set, so adding a TEE type is a data
// change rather than scattered switch edits.
//
// # Errors
//
// All expected failures surface as *AttestationError values with a Kind
// and structured context (public key, field name, timestamps, caller).
// Callers match kinds with errors.Is against the exported kind sentinels:
//
//	if errors.Is(err, interfaces.ErrNotFound) { ... }
//
// # Storage
//
// KVStore is a minimal get/set/contains abstraction over opaque byte keys.
// The registry is agnostic to the storage engine; backends live in the
// storage package.
package interfaces
