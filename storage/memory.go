package storage

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ruteri/tee-attestation-registry/interfaces"
)

// MemoryBackend implements an in-process key-value store. It is the
// default backend for tests and single-node development deployments.
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[string][]byte
	log  *slog.Logger
}

// NewMemoryBackend creates an empty in-memory store.
func NewMemoryBackend(log *slog.Logger) *MemoryBackend {
	return &MemoryBackend{
		data: make(map[string][]byte),
		log:  log,
	}
}

// Get retrieves the value stored under key.
func (b *MemoryBackend) Get(ctx context.Context, key []byte) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	value, ok := b.data[string(key)]
	if !ok {
		return nil, interfaces.ErrKeyNotFound
	}

	// Copy so callers cannot mutate stored state.
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// Set stores value under key, overwriting any previous value.
func (b *MemoryBackend) Set(ctx context.Context, key []byte, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)
	b.data[string(key)] = stored
	return nil
}

// Has reports whether key is present.
func (b *MemoryBackend) Has(ctx context.Context, key []byte) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	_, ok := b.data[string(key)]
	return ok, nil
}

// Available always reports true for the in-memory backend.
func (b *MemoryBackend) Available(ctx context.Context) bool {
	return true
}

// Name returns a unique identifier for this storage backend.
func (b *MemoryBackend) Name() string {
	return "memory"
}

// LocationURI returns the URI that identifies this storage backend.
func (b *MemoryBackend) LocationURI() string {
	return "memory://"
}
