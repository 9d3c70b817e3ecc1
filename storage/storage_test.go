package storage

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruteri/tee-attestation-registry/interfaces"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMemoryBackend(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend(discardLogger())

	assert.True(t, backend.Available(ctx))
	assert.Equal(t, "memory", backend.Name())
	assert.Equal(t, "memory://", backend.LocationURI())

	key := []byte("attestation:test-key")
	value := []byte(`{"public_key":"test-key"}`)

	// Missing key
	_, err := backend.Get(ctx, key)
	assert.ErrorIs(t, err, interfaces.ErrKeyNotFound)

	has, err := backend.Has(ctx, key)
	require.NoError(t, err)
	assert.False(t, has)

	// Store and retrieve
	require.NoError(t, backend.Set(ctx, key, value))

	got, err := backend.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, value, got)

	has, err = backend.Has(ctx, key)
	require.NoError(t, err)
	assert.True(t, has)

	// Overwrite
	updated := []byte(`{"public_key":"test-key","is_active":false}`)
	require.NoError(t, backend.Set(ctx, key, updated))

	got, err = backend.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, updated, got)
}

func TestMemoryBackendCopiesValues(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend(discardLogger())

	key := []byte("k")
	value := []byte("original")
	require.NoError(t, backend.Set(ctx, key, value))

	// Mutating the caller's slice must not affect the stored value
	value[0] = 'X'

	got, err := backend.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), got)

	// Mutating a returned slice must not affect subsequent reads
	got[0] = 'Y'
	again, err := backend.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), again)
}

func TestFileBackend(t *testing.T) {
	ctx := context.Background()
	backend, err := NewFileBackend(t.TempDir(), discardLogger())
	require.NoError(t, err)

	assert.True(t, backend.Available(ctx))

	key := []byte("attestation:file-key")
	value := []byte("payload")

	_, err = backend.Get(ctx, key)
	assert.ErrorIs(t, err, interfaces.ErrKeyNotFound)

	require.NoError(t, backend.Set(ctx, key, value))

	got, err := backend.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, value, got)

	has, err := backend.Has(ctx, key)
	require.NoError(t, err)
	assert.True(t, has)

	// Overwrite is atomic and visible
	require.NoError(t, backend.Set(ctx, key, []byte("replaced")))
	got, err = backend.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("replaced"), got)
}

func TestStorageBackendFor(t *testing.T) {
	log := discardLogger()

	tests := []struct {
		name    string
		uri     string
		wantErr bool
	}{
		{name: "memory", uri: "memory://"},
		{name: "file", uri: "file://" + t.TempDir()},
		{name: "s3 with region", uri: "s3://my-bucket/registry?region=eu-west-1"},
		{name: "vault", uri: "vault://127.0.0.1:8200/secret/registry?token=dev"},
		{name: "file without path", uri: "file://", wantErr: true},
		{name: "s3 without bucket", uri: "s3:///prefix", wantErr: true},
		{name: "vault without mount", uri: "vault://127.0.0.1:8200/onlymount", wantErr: true},
		{name: "unknown scheme", uri: "redis://localhost", wantErr: true},
		{name: "garbage", uri: "://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend, err := StorageBackendFor(tt.uri, log)
			if tt.wantErr {
				assert.ErrorIs(t, err, interfaces.ErrInvalidLocationURI)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, backend.Name())
			assert.NotEmpty(t, backend.LocationURI())
		})
	}
}
