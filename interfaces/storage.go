package interfaces

import (
	"context"
	"errors"
)

var (
	// ErrKeyNotFound is returned when a key is absent from the storage
	// backend.
	ErrKeyNotFound = errors.New("key not found")

	// ErrBackendUnavailable is returned when a storage backend is not
	// accessible. This could be due to network issues, authentication
	// failures, or service outages.
	ErrBackendUnavailable = errors.New("storage backend unavailable")

	// ErrInvalidLocationURI is returned when a storage location URI is
	// malformed or unsupported. URIs follow the format:
	// [scheme]://[auth@]host[:port][/path][?params]
	ErrInvalidLocationURI = errors.New("invalid storage location URI")
)

// KVStore provides durable keyed storage for registry state. Keys are
// opaque byte strings; the registry builds them as plain composite keys
// (namespace prefix plus identifier).
type KVStore interface {
	// Get retrieves the value stored under key. Returns ErrKeyNotFound if
	// the key is absent.
	Get(ctx context.Context, key []byte) ([]byte, error)

	// Set stores value under key, overwriting any previous value.
	Set(ctx context.Context, key []byte, value []byte) error

	// Has reports whether key is present.
	Has(ctx context.Context, key []byte) (bool, error)

	// Available checks if the backend is accessible.
	Available(ctx context.Context) bool

	// Name returns an identifier for logging.
	Name() string

	// LocationURI returns the URI identifying this backend.
	LocationURI() string
}
