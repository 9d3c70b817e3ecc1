package storage

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	vault "github.com/hashicorp/vault/api"

	"github.com/ruteri/tee-attestation-registry/interfaces"
)

// VaultBackend implements a key-value backend using HashiCorp Vault's
// KV v2 secrets engine. Values are base64-encoded inside the secret
// data to survive Vault's JSON round trip.
type VaultBackend struct {
	client      *vault.Client
	mountPath   string
	secretPath  string
	log         *slog.Logger
	locationURI string
}

// NewVaultBackend creates a new Vault storage backend. The token may be
// empty if the client environment provides one (VAULT_TOKEN).
func NewVaultBackend(address, token, mountPath, secretPath string, log *slog.Logger) (*VaultBackend, error) {
	uri := fmt.Sprintf("vault://%s/%s/%s", address, mountPath, secretPath)

	config := vault.DefaultConfig()
	config.Address = address

	client, err := vault.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vault client: %w", err)
	}
	if token != "" {
		client.SetToken(token)
	}

	return &VaultBackend{
		client:      client,
		mountPath:   mountPath,
		secretPath:  secretPath,
		log:         log,
		locationURI: uri,
	}, nil
}

// Get retrieves the value stored under key. Returns ErrKeyNotFound if no
// secret exists at the derived path.
func (b *VaultBackend) Get(ctx context.Context, key []byte) ([]byte, error) {
	start := time.Now()
	secretPath := b.dataPath(key)

	secret, err := b.client.Logical().ReadWithContext(ctx, secretPath)
	if err != nil {
		b.log.Error("Failed to read secret from Vault",
			slog.String("path", secretPath),
			"err", err,
			slog.Duration("duration", time.Since(start)))
		return nil, fmt.Errorf("%w: %v", interfaces.ErrBackendUnavailable, err)
	}
	if secret == nil || secret.Data == nil {
		return nil, interfaces.ErrKeyNotFound
	}

	// KV v2 nests the payload under "data"
	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return nil, interfaces.ErrKeyNotFound
	}

	encoded, ok := data["value"].(string)
	if !ok {
		return nil, fmt.Errorf("unexpected secret format at %s", secretPath)
	}

	value, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode secret value: %w", err)
	}

	b.log.Debug("Fetched value from Vault",
		slog.String("path", secretPath),
		slog.Int("size", len(value)),
		slog.Duration("duration", time.Since(start)))

	return value, nil
}

// Set stores value under key, overwriting any previous version.
func (b *VaultBackend) Set(ctx context.Context, key []byte, value []byte) error {
	secretPath := b.dataPath(key)

	_, err := b.client.Logical().WriteWithContext(ctx, secretPath, map[string]interface{}{
		"data": map[string]interface{}{
			"value": base64.StdEncoding.EncodeToString(value),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to write secret to Vault: %w", err)
	}

	b.log.Debug("Stored value in Vault",
		slog.String("path", secretPath),
		slog.Int("size", len(value)))

	return nil
}

// Has reports whether key is present.
func (b *VaultBackend) Has(ctx context.Context, key []byte) (bool, error) {
	secret, err := b.client.Logical().ReadWithContext(ctx, b.dataPath(key))
	if err != nil {
		return false, fmt.Errorf("%w: %v", interfaces.ErrBackendUnavailable, err)
	}
	return secret != nil && secret.Data != nil, nil
}

// Available checks if the Vault backend is accessible via its health
// endpoint.
func (b *VaultBackend) Available(ctx context.Context) bool {
	health, err := b.client.Sys().HealthWithContext(ctx)
	if err != nil {
		b.log.Warn("Vault backend unavailable", "err", err)
		return false
	}
	return health.Initialized && !health.Sealed
}

// Name returns a unique identifier for this storage backend.
func (b *VaultBackend) Name() string {
	return fmt.Sprintf("vault-%s", b.mountPath)
}

// LocationURI returns the URI that identifies this storage backend.
func (b *VaultBackend) LocationURI() string {
	return b.locationURI
}

func (b *VaultBackend) dataPath(key []byte) string {
	return fmt.Sprintf("%s/data/%s/%s", b.mountPath, b.secretPath, hex.EncodeToString(key))
}
