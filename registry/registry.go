package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/ruteri/tee-attestation-registry/attestation"
	"github.com/ruteri/tee-attestation-registry/interfaces"
)

// MaxPageSize caps the limit parameter of the paginated listing
// operations.
const MaxPageSize = 100

// Storage key layout. Keys are plain composite strings, namespaced by
// prefix, so records remain inspectable in any backend.
const (
	attestationKeyPrefix = "attestation:"
	ownerKeyPrefix       = "owner:"
	keySetKey            = "attestation-keys"
	stateKey             = "registry-state"
)

// registryState is the persisted admin/paused pair.
type registryState struct {
	Admin  interfaces.Identity `json:"admin"`
	Paused bool                `json:"paused"`
}

// Registry is an admin-gated attestation registry backed by a KVStore.
// All mutations are serialized behind a single writer lock; reads go to
// the store directly.
type Registry struct {
	store interfaces.KVStore
	log   *slog.Logger

	mu sync.Mutex
}

// NewRegistry opens a registry on top of store. If the store holds no
// registry state yet, admin becomes the registry's admin identity and
// the registry starts unpaused. If state already exists, the stored
// admin wins and the argument is ignored.
func NewRegistry(ctx context.Context, store interfaces.KVStore, admin interfaces.Identity, log *slog.Logger) (*Registry, error) {
	r := &Registry{
		store: store,
		log:   log,
	}

	_, err := r.loadState(ctx)
	if err == nil {
		return r, nil
	}
	if !errors.Is(err, interfaces.ErrKeyNotFound) {
		return nil, fmt.Errorf("failed to load registry state: %w", err)
	}

	if admin == "" {
		return nil, errors.New("admin identity required to initialize a new registry")
	}
	if err := r.saveState(ctx, registryState{Admin: admin}); err != nil {
		return nil, fmt.Errorf("failed to initialize registry state: %w", err)
	}

	log.Info("Initialized new registry", slog.String("admin", admin.String()), slog.String("storage", store.Name()))
	return r, nil
}

// Admin returns the registry's admin identity.
func (r *Registry) Admin(ctx context.Context) (interfaces.Identity, error) {
	state, err := r.loadState(ctx)
	if err != nil {
		return "", interfaces.NewInternalError(err.Error())
	}
	return state.Admin, nil
}

// IsPaused reports whether registrations and mutations are currently
// suspended.
func (r *Registry) IsPaused(ctx context.Context) (bool, error) {
	state, err := r.loadState(ctx)
	if err != nil {
		return false, interfaces.NewInternalError(err.Error())
	}
	return state.Paused, nil
}

// Register creates and stores a new attestation under publicKey, owned
// by the caller. The caller must be the admin and the registry must not
// be paused. Keys are never reusable: any previously registered key,
// including revoked ones, is rejected with AlreadyExists.
func (r *Registry) Register(ctx context.Context, caller interfaces.Identity, teeType interfaces.TeeType, publicKey, report, signature string, ttlSeconds uint64, metadata interfaces.Metadata, now uint64) (*attestation.Attestation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.requireAdminActive(ctx, caller); err != nil {
		return nil, err
	}

	exists, err := r.store.Has(ctx, []byte(attestationKeyPrefix+publicKey))
	if err != nil {
		return nil, interfaces.NewInternalError(err.Error())
	}
	if exists {
		return nil, interfaces.NewAlreadyExistsError(publicKey)
	}

	att, err := attestation.New(teeType, publicKey, report, signature, caller, ttlSeconds, attestation.DefaultVersion, metadata, now)
	if err != nil {
		return nil, err
	}

	// Prepare both index updates before any write so a validation
	// failure cannot leave a partial insert.
	keys, err := r.loadKeyList(ctx, keySetKey)
	if err != nil {
		return nil, interfaces.NewInternalError(err.Error())
	}
	ownerKeys, err := r.loadKeyList(ctx, ownerKeyPrefix+caller.String())
	if err != nil {
		return nil, interfaces.NewInternalError(err.Error())
	}

	if err := r.saveAttestation(ctx, att); err != nil {
		return nil, err
	}
	if err := r.saveKeyList(ctx, keySetKey, append(keys, publicKey)); err != nil {
		return nil, err
	}
	if err := r.saveKeyList(ctx, ownerKeyPrefix+caller.String(), append(ownerKeys, publicKey)); err != nil {
		return nil, err
	}

	r.log.Info("Registered attestation",
		slog.String("public_key", publicKey),
		slog.String("tee_type", teeType.String()),
		slog.String("owner", caller.String()),
		slog.Uint64("expires_at", att.ExpiresAt))

	return att, nil
}

// Revoke permanently deactivates the attestation under publicKey.
// Revocation is one-way and not idempotent: revoking an already-revoked
// attestation returns a Revoked error.
func (r *Registry) Revoke(ctx context.Context, caller interfaces.Identity, publicKey string, now uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.requireAdminActive(ctx, caller); err != nil {
		return err
	}

	att, err := r.getAttestation(ctx, publicKey)
	if err != nil {
		return err
	}
	if err := att.Revoke(now); err != nil {
		return err
	}
	if err := r.saveAttestation(ctx, att); err != nil {
		return err
	}

	r.log.Info("Revoked attestation", slog.String("public_key", publicKey), slog.Uint64("revoked_at", now))
	return nil
}

// ExtendExpiration pushes the attestation's expiration forward by
// additionalSeconds. The attestation must be active.
func (r *Registry) ExtendExpiration(ctx context.Context, caller interfaces.Identity, publicKey string, additionalSeconds, now uint64) (*attestation.Attestation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.requireAdminActive(ctx, caller); err != nil {
		return nil, err
	}

	att, err := r.getAttestation(ctx, publicKey)
	if err != nil {
		return nil, err
	}
	if err := att.ExtendExpiration(additionalSeconds, now); err != nil {
		return nil, err
	}
	if err := r.saveAttestation(ctx, att); err != nil {
		return nil, err
	}

	r.log.Info("Extended attestation",
		slog.String("public_key", publicKey),
		slog.Uint64("expires_at", att.ExpiresAt))
	return att, nil
}

// UpdateMetadata replaces the attestation's metadata wholesale. The new
// metadata must satisfy the attestation's TEE type requirements and the
// attestation must be active.
func (r *Registry) UpdateMetadata(ctx context.Context, caller interfaces.Identity, publicKey string, metadata interfaces.Metadata, now uint64) (*attestation.Attestation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.requireAdminActive(ctx, caller); err != nil {
		return nil, err
	}

	att, err := r.getAttestation(ctx, publicKey)
	if err != nil {
		return nil, err
	}
	if err := att.UpdateMetadata(metadata, now); err != nil {
		return nil, err
	}
	if err := r.saveAttestation(ctx, att); err != nil {
		return nil, err
	}

	r.log.Info("Updated attestation metadata", slog.String("public_key", publicKey))
	return att, nil
}

// Pause suspends all mutating operations except Unpause. Pausing an
// already-paused registry is an error.
func (r *Registry) Pause(ctx context.Context, caller interfaces.Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, err := r.requireAdmin(ctx, caller)
	if err != nil {
		return err
	}
	if state.Paused {
		return interfaces.NewPausedError()
	}

	state.Paused = true
	if err := r.saveState(ctx, state); err != nil {
		return interfaces.NewInternalError(err.Error())
	}

	r.log.Warn("Registry paused", slog.String("caller", caller.String()))
	return nil
}

// Unpause resumes mutating operations. Unpausing a registry that is not
// paused is an error.
func (r *Registry) Unpause(ctx context.Context, caller interfaces.Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, err := r.requireAdmin(ctx, caller)
	if err != nil {
		return err
	}
	if !state.Paused {
		return interfaces.NewNotPausedError()
	}

	state.Paused = false
	if err := r.saveState(ctx, state); err != nil {
		return interfaces.NewInternalError(err.Error())
	}

	r.log.Info("Registry unpaused", slog.String("caller", caller.String()))
	return nil
}

// Get returns the attestation stored under publicKey, or a NotFound
// error.
func (r *Registry) Get(ctx context.Context, publicKey string) (*attestation.Attestation, error) {
	return r.getAttestation(ctx, publicKey)
}

// IsValid reports whether an active, unexpired attestation exists under
// publicKey at the given time. Missing keys are simply invalid, never
// an error.
func (r *Registry) IsValid(ctx context.Context, publicKey string, now uint64) bool {
	att, err := r.getAttestation(ctx, publicKey)
	if err != nil {
		return false
	}
	return att.IsValid(now)
}

// VerifyAttestation runs full validation of the attestation under
// publicKey, optionally including cryptographic signature verification.
// It returns true on success and an error otherwise; it never returns
// false without an error.
func (r *Registry) VerifyAttestation(ctx context.Context, publicKey string, now uint64, verifySignature bool) (bool, error) {
	att, err := r.getAttestation(ctx, publicKey)
	if err != nil {
		return false, err
	}
	if err := att.Validate(now, verifySignature); err != nil {
		return false, err
	}
	return true, nil
}

// ListKeys returns a page of registered public keys in insertion order,
// starting at fromIndex. The limit is capped at MaxPageSize.
func (r *Registry) ListKeys(ctx context.Context, fromIndex, limit uint64) ([]string, error) {
	keys, err := r.loadKeyList(ctx, keySetKey)
	if err != nil {
		return nil, interfaces.NewInternalError(err.Error())
	}
	return paginate(keys, fromIndex, limit), nil
}

// ListByOwner returns a page of owner's attestations in registration
// order, starting at fromIndex. The limit is capped at MaxPageSize.
func (r *Registry) ListByOwner(ctx context.Context, owner interfaces.Identity, fromIndex, limit uint64) ([]*attestation.Attestation, error) {
	keys, err := r.loadKeyList(ctx, ownerKeyPrefix+owner.String())
	if err != nil {
		return nil, interfaces.NewInternalError(err.Error())
	}

	page := paginate(keys, fromIndex, limit)
	attestations := make([]*attestation.Attestation, 0, len(page))
	for _, key := range page {
		att, err := r.getAttestation(ctx, key)
		if err != nil {
			return nil, err
		}
		attestations = append(attestations, att)
	}
	return attestations, nil
}

func paginate(keys []string, fromIndex, limit uint64) []string {
	limit = min(limit, MaxPageSize)
	if fromIndex >= uint64(len(keys)) {
		return []string{}
	}
	end := min(fromIndex+limit, uint64(len(keys)))
	return slices.Clone(keys[fromIndex:end])
}

// requireAdmin checks the caller against the stored admin identity and
// returns the current state.
func (r *Registry) requireAdmin(ctx context.Context, caller interfaces.Identity) (registryState, error) {
	state, err := r.loadState(ctx)
	if err != nil {
		return registryState{}, interfaces.NewInternalError(err.Error())
	}
	if caller != state.Admin {
		return registryState{}, interfaces.NewUnauthorizedError(caller, "admin")
	}
	return state, nil
}

// requireAdminActive additionally rejects the call while the registry
// is paused.
func (r *Registry) requireAdminActive(ctx context.Context, caller interfaces.Identity) (registryState, error) {
	state, err := r.requireAdmin(ctx, caller)
	if err != nil {
		return registryState{}, err
	}
	if state.Paused {
		return registryState{}, interfaces.NewPausedError()
	}
	return state, nil
}

func (r *Registry) loadState(ctx context.Context) (registryState, error) {
	raw, err := r.store.Get(ctx, []byte(stateKey))
	if err != nil {
		return registryState{}, err
	}
	var state registryState
	if err := json.Unmarshal(raw, &state); err != nil {
		return registryState{}, fmt.Errorf("corrupt registry state: %w", err)
	}
	return state, nil
}

func (r *Registry) saveState(ctx context.Context, state registryState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, []byte(stateKey), raw)
}

func (r *Registry) getAttestation(ctx context.Context, publicKey string) (*attestation.Attestation, error) {
	raw, err := r.store.Get(ctx, []byte(attestationKeyPrefix+publicKey))
	if err != nil {
		if errors.Is(err, interfaces.ErrKeyNotFound) {
			return nil, interfaces.NewNotFoundError(publicKey)
		}
		return nil, interfaces.NewInternalError(err.Error())
	}
	var att attestation.Attestation
	if err := json.Unmarshal(raw, &att); err != nil {
		return nil, interfaces.NewInternalError(fmt.Sprintf("corrupt attestation record for %s: %v", publicKey, err))
	}
	return &att, nil
}

func (r *Registry) saveAttestation(ctx context.Context, att *attestation.Attestation) error {
	raw, err := json.Marshal(att)
	if err != nil {
		return interfaces.NewInternalError(err.Error())
	}
	if err := r.store.Set(ctx, []byte(attestationKeyPrefix+att.PublicKey), raw); err != nil {
		return interfaces.NewInternalError(err.Error())
	}
	return nil
}

func (r *Registry) loadKeyList(ctx context.Context, key string) ([]string, error) {
	raw, err := r.store.Get(ctx, []byte(key))
	if err != nil {
		if errors.Is(err, interfaces.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	var keys []string
	if err := json.Unmarshal(raw, &keys); err != nil {
		return nil, fmt.Errorf("corrupt key list %s: %w", key, err)
	}
	return keys, nil
}

func (r *Registry) saveKeyList(ctx context.Context, key string, keys []string) error {
	raw, err := json.Marshal(keys)
	if err != nil {
		return interfaces.NewInternalError(err.Error())
	}
	if err := r.store.Set(ctx, []byte(key), raw); err != nil {
		return interfaces.NewInternalError(err.Error())
	}
	return nil
}
