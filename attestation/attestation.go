package attestation

import (
	"github.com/ruteri/tee-attestation-registry/interfaces"
	"github.com/ruteri/tee-attestation-registry/verification"
)

// DefaultVersion is the attestation format version stamped on new records.
const DefaultVersion = "1.0.0"

// Attestation is one claim binding a public key to a TEE instance. All
// byte-valued fields (public key, report, signature) are opaque
// base64-encoded strings; timestamps are seconds since epoch.
type Attestation struct {
	TeeType   interfaces.TeeType   `json:"tee_type"`
	PublicKey string               `json:"public_key"`
	Report    string               `json:"report"`
	Signature string               `json:"signature"`
	IssuedAt  uint64               `json:"issued_at"`
	ExpiresAt uint64               `json:"expires_at"`
	Owner     interfaces.Identity  `json:"owner"`
	Version   string               `json:"version"`
	Metadata  interfaces.Metadata  `json:"metadata"`
	UpdatedAt uint64               `json:"updated_at"`
	IsActive  bool                 `json:"is_active"`
}

// New creates an active attestation, validating every creation invariant:
// non-empty public key, report and signature; a non-zero TTL; and complete
// required metadata for the TEE type. The signature itself is not verified
// here; callers request cryptographic verification explicitly through
// Validate.
func New(teeType interfaces.TeeType, publicKey, report, signature string, owner interfaces.Identity, ttlSeconds uint64, version string, metadata interfaces.Metadata, now uint64) (*Attestation, error) {
	if publicKey == "" {
		return nil, interfaces.NewInvalidReportError("public key cannot be empty")
	}
	if report == "" {
		return nil, interfaces.NewInvalidReportError("report cannot be empty")
	}
	if signature == "" {
		return nil, interfaces.NewInvalidSignatureError(publicKey, "signature cannot be empty")
	}
	if ttlSeconds == 0 {
		return nil, interfaces.NewInvalidExpirationError(now, now)
	}

	expiresAt := now + ttlSeconds
	if expiresAt < now {
		return nil, interfaces.NewInternalError("expiration overflow at creation")
	}

	if metadata == nil {
		metadata = interfaces.Metadata{}
	}
	if err := interfaces.ValidateMetadata(teeType, metadata); err != nil {
		return nil, err
	}

	if version == "" {
		version = DefaultVersion
	}

	return &Attestation{
		TeeType:   teeType,
		PublicKey: publicKey,
		Report:    report,
		Signature: signature,
		IssuedAt:  now,
		ExpiresAt: expiresAt,
		Owner:     owner,
		Version:   version,
		Metadata:  metadata.Clone(),
		UpdatedAt: now,
		IsActive:  true,
	}, nil
}

// Validate checks the attestation against the supplied current time:
// NotActive if revoked, Expired if past expiry, and optionally full
// cryptographic signature verification through the dispatcher.
func (a *Attestation) Validate(now uint64, verifySignature bool) error {
	if !a.IsActive {
		return interfaces.NewNotActiveError(a.PublicKey)
	}

	if now > a.ExpiresAt {
		return interfaces.NewExpiredError(a.PublicKey, a.ExpiresAt, now)
	}

	if verifySignature {
		return verification.Verify(a.TeeType, a.PublicKey, a.Report, a.Signature, a.Metadata)
	}

	return nil
}

// IsValid is the cheap hot-path predicate: active and not expired, no
// cryptography.
func (a *Attestation) IsValid(now uint64) bool {
	return a.IsActive && now <= a.ExpiresAt
}

// IsExpired reports whether the attestation is past its expiry.
func (a *Attestation) IsExpired(now uint64) bool {
	return now > a.ExpiresAt
}

// Revoke deactivates the attestation. Revocation is one-way and not
// idempotent: a second call returns Revoked so double revocations surface
// for auditing.
func (a *Attestation) Revoke(now uint64) error {
	if !a.IsActive {
		return interfaces.NewRevokedError(a.PublicKey, a.UpdatedAt)
	}

	a.IsActive = false
	a.UpdatedAt = now
	return nil
}

// ExtendExpiration pushes the expiry forward by additionalSeconds. Only
// active attestations can be extended; an overflowing addition is an
// Internal error rather than silent wraparound.
func (a *Attestation) ExtendExpiration(additionalSeconds, now uint64) error {
	if !a.IsActive {
		return interfaces.NewNotActiveError(a.PublicKey)
	}

	newExpiresAt := a.ExpiresAt + additionalSeconds
	if newExpiresAt < a.ExpiresAt {
		return interfaces.NewInternalError("expiration overflow on extension")
	}

	a.ExpiresAt = newExpiresAt
	a.UpdatedAt = now
	return nil
}

// UpdateMetadata replaces the metadata wholesale after revalidating it
// against the required-field table. Only active attestations can be
// updated.
func (a *Attestation) UpdateMetadata(newMetadata interfaces.Metadata, now uint64) error {
	if !a.IsActive {
		return interfaces.NewNotActiveError(a.PublicKey)
	}

	if newMetadata == nil {
		newMetadata = interfaces.Metadata{}
	}
	if err := interfaces.ValidateMetadata(a.TeeType, newMetadata); err != nil {
		return err
	}

	a.Metadata = newMetadata.Clone()
	a.UpdatedAt = now
	return nil
}
