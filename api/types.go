package api

import (
	"github.com/ruteri/tee-attestation-registry/attestation"
	"github.com/ruteri/tee-attestation-registry/interfaces"
)

// IdentityHeader carries the host-authenticated caller identity.
const IdentityHeader = "X-Registry-Identity"

// TimestampHeader optionally overrides the evaluation time in seconds
// since epoch.
const TimestampHeader = "X-Registry-Timestamp"

// RegisterRequest is the body of POST /api/attestations.
type RegisterRequest struct {
	TeeType    string              `json:"tee_type"`
	PublicKey  string              `json:"public_key"`
	Report     string              `json:"report"`
	Signature  string              `json:"signature"`
	TTLSeconds uint64              `json:"ttl_seconds"`
	Metadata   interfaces.Metadata `json:"metadata"`
}

// RevokeRequest is the body of POST /api/attestations/revoke.
type RevokeRequest struct {
	PublicKey string `json:"public_key"`
}

// ExtendRequest is the body of POST /api/attestations/extend.
type ExtendRequest struct {
	PublicKey         string `json:"public_key"`
	AdditionalSeconds uint64 `json:"additional_seconds"`
}

// UpdateMetadataRequest is the body of POST /api/attestations/metadata.
// Metadata replaces the stored map wholesale.
type UpdateMetadataRequest struct {
	PublicKey string              `json:"public_key"`
	Metadata  interfaces.Metadata `json:"metadata"`
}

// ValidResponse reports the cheap validity predicate for one key.
type ValidResponse struct {
	PublicKey string `json:"public_key"`
	Valid     bool   `json:"valid"`
	CheckedAt uint64 `json:"checked_at"`
}

// VerifyResponse reports a successful full verification. Failures are
// returned as an ErrorResponse instead, never as valid=false.
type VerifyResponse struct {
	PublicKey string `json:"public_key"`
	Valid     bool   `json:"valid"`
	CheckedAt uint64 `json:"checked_at"`
}

// KeyListResponse is one page of registered public keys.
type KeyListResponse struct {
	Keys      []string `json:"keys"`
	FromIndex uint64   `json:"from_index"`
	Count     int      `json:"count"`
}

// AttestationListResponse is one page of an owner's attestations.
type AttestationListResponse struct {
	Attestations []*attestation.Attestation `json:"attestations"`
	FromIndex    uint64                     `json:"from_index"`
	Count        int                        `json:"count"`
}

// StatusResponse describes the registry's administrative state.
type StatusResponse struct {
	Admin  string `json:"admin"`
	Paused bool   `json:"paused"`
}

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}
