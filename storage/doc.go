// Package storage provides durable key-value backends for registry state.
//
// The registry persists attestation records, the key enumeration set, the
// per-owner index and its own pause state through the interfaces.KVStore
// abstraction. Keys are opaque byte strings built by the registry as plain
// composite keys (namespace prefix plus identifier); values are
// JSON-serialized records. The registry is agnostic to the engine behind
// the interface.
//
// # Backends
//
// Backends are selected by URI through StorageBackendFactory:
//
//   - memory:// - In-process map, the default for tests and single-node
//     development
//   - file:///var/lib/registry/ - Local filesystem, one file per key
//   - s3://bucket/prefix/?region=us-west-2 - Amazon S3 or compatible
//     object storage
//   - vault://vault.example.com:8200/secret/registry - HashiCorp Vault
//     KV v2
//
// # Error Handling
//
// All backends return interfaces.ErrKeyNotFound for absent keys and wrap
// connectivity failures with interfaces.ErrBackendUnavailable, so callers
// can distinguish "no such record" from "storage is down" with errors.Is.
package storage
