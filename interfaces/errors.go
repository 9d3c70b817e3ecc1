package interfaces

import "fmt"

// ErrorKind enumerates the closed set of expected failure classes shared by
// all registry components.
type ErrorKind uint8

const (
	// KindExpired means the attestation's expiry is in the past.
	KindExpired ErrorKind = iota + 1
	// KindInvalidSignature means cryptographic material failed to decode,
	// parse or verify.
	KindInvalidSignature
	// KindInvalidReport means the evidence blob is malformed.
	KindInvalidReport
	// KindNotFound means no attestation exists under the given key.
	KindNotFound
	// KindRevoked means the attestation was revoked.
	KindRevoked
	// KindUnauthorized means the caller is not the registry admin.
	KindUnauthorized
	// KindPaused means the registry rejects mutations while paused.
	KindPaused
	// KindNotPaused means unpause was called on a running registry.
	KindNotPaused
	// KindAlreadyExists means the public key was registered before,
	// possibly by a since-revoked attestation.
	KindAlreadyExists
	// KindInvalidTeeType means the TEE type string did not parse.
	KindInvalidTeeType
	// KindMissingMetadata means a required metadata field is absent.
	KindMissingMetadata
	// KindInvalidMetadata means a metadata value has the wrong format.
	KindInvalidMetadata
	// KindNotActive means the operation requires an active attestation.
	KindNotActive
	// KindInvalidExpiration means the TTL or expiry is unusable.
	KindInvalidExpiration
	// KindInternal marks an invariant violation. Still returned, never a
	// panic.
	KindInternal
)

// String returns the kind's stable wire name.
func (k ErrorKind) String() string {
	switch k {
	case KindExpired:
		return "expired"
	case KindInvalidSignature:
		return "invalid_signature"
	case KindInvalidReport:
		return "invalid_report"
	case KindNotFound:
		return "not_found"
	case KindRevoked:
		return "revoked"
	case KindUnauthorized:
		return "unauthorized"
	case KindPaused:
		return "paused"
	case KindNotPaused:
		return "not_paused"
	case KindAlreadyExists:
		return "already_exists"
	case KindInvalidTeeType:
		return "invalid_tee_type"
	case KindMissingMetadata:
		return "missing_metadata"
	case KindInvalidMetadata:
		return "invalid_metadata"
	case KindNotActive:
		return "not_active"
	case KindInvalidExpiration:
		return "invalid_expiration"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// ParseErrorKind is the inverse of ErrorKind.String. Unknown names map
// to KindInternal.
func ParseErrorKind(s string) ErrorKind {
	for k := KindExpired; k <= KindInternal; k++ {
		if k.String() == s {
			return k
		}
	}
	return KindInternal
}

// AttestationError is the structured error type for every expected failure
// in the registry core. Only the fields relevant to the Kind are populated.
type AttestationError struct {
	Kind ErrorKind

	PublicKey   string
	Field       string
	TeeType     string
	Value       string
	Expected    string
	Caller      Identity
	Required    string
	ExpiredAt   uint64
	CurrentTime uint64
	RevokedAt   uint64
	Details     string
}

// Kind sentinels for errors.Is matching. Only the Kind participates in
// comparison; context fields are ignored.
var (
	ErrExpired           = &AttestationError{Kind: KindExpired}
	ErrInvalidSignature  = &AttestationError{Kind: KindInvalidSignature}
	ErrInvalidReport     = &AttestationError{Kind: KindInvalidReport}
	ErrNotFound          = &AttestationError{Kind: KindNotFound}
	ErrRevoked           = &AttestationError{Kind: KindRevoked}
	ErrUnauthorized      = &AttestationError{Kind: KindUnauthorized}
	ErrPaused            = &AttestationError{Kind: KindPaused}
	ErrNotPaused         = &AttestationError{Kind: KindNotPaused}
	ErrAlreadyExists     = &AttestationError{Kind: KindAlreadyExists}
	ErrInvalidTeeType    = &AttestationError{Kind: KindInvalidTeeType}
	ErrMissingMetadata   = &AttestationError{Kind: KindMissingMetadata}
	ErrInvalidMetadata   = &AttestationError{Kind: KindInvalidMetadata}
	ErrNotActive         = &AttestationError{Kind: KindNotActive}
	ErrInvalidExpiration = &AttestationError{Kind: KindInvalidExpiration}
	ErrInternal          = &AttestationError{Kind: KindInternal}
)

// Error implements the error interface with a message per kind.
func (e *AttestationError) Error() string {
	switch e.Kind {
	case KindExpired:
		return fmt.Sprintf("attestation %s expired at %d (current time: %d)", e.PublicKey, e.ExpiredAt, e.CurrentTime)
	case KindInvalidSignature:
		return fmt.Sprintf("invalid signature for attestation %s: %s", e.PublicKey, e.Details)
	case KindInvalidReport:
		return fmt.Sprintf("invalid attestation report: %s", e.Details)
	case KindNotFound:
		return fmt.Sprintf("attestation not found: %s", e.PublicKey)
	case KindRevoked:
		return fmt.Sprintf("attestation %s was revoked at %d", e.PublicKey, e.RevokedAt)
	case KindUnauthorized:
		return fmt.Sprintf("unauthorized: %s is not authorized (required: %s)", e.Caller, e.Required)
	case KindPaused:
		return "attestation registry is paused"
	case KindNotPaused:
		return "attestation registry is not paused"
	case KindAlreadyExists:
		return fmt.Sprintf("attestation already exists: %s", e.PublicKey)
	case KindInvalidTeeType:
		return fmt.Sprintf("invalid TEE type: %s", e.TeeType)
	case KindMissingMetadata:
		return fmt.Sprintf("missing required metadata field %q for TEE type %q", e.Field, e.TeeType)
	case KindInvalidMetadata:
		return fmt.Sprintf("invalid metadata value for field %q: got %q, expected %s", e.Field, e.Value, e.Expected)
	case KindNotActive:
		return fmt.Sprintf("attestation is not active: %s", e.PublicKey)
	case KindInvalidExpiration:
		return fmt.Sprintf("invalid expiration time %d (current time: %d)", e.ExpiredAt, e.CurrentTime)
	case KindInternal:
		return fmt.Sprintf("internal attestation error: %s", e.Details)
	default:
		return "unknown attestation error"
	}
}

// Is matches any AttestationError of the same kind, so the exported kind
// sentinels work with errors.Is regardless of context fields.
func (e *AttestationError) Is(target error) bool {
	t, ok := target.(*AttestationError)
	return ok && t.Kind == e.Kind
}

// NewExpiredError reports an attestation past its expiry.
func NewExpiredError(publicKey string, expiredAt, currentTime uint64) *AttestationError {
	return &AttestationError{Kind: KindExpired, PublicKey: publicKey, ExpiredAt: expiredAt, CurrentTime: currentTime}
}

// NewInvalidSignatureError reports malformed or unverifiable signature
// material.
func NewInvalidSignatureError(publicKey, details string) *AttestationError {
	return &AttestationError{Kind: KindInvalidSignature, PublicKey: publicKey, Details: details}
}

// NewInvalidReportError reports a malformed evidence blob.
func NewInvalidReportError(details string) *AttestationError {
	return &AttestationError{Kind: KindInvalidReport, Details: details}
}

// NewNotFoundError reports a missing attestation.
func NewNotFoundError(publicKey string) *AttestationError {
	return &AttestationError{Kind: KindNotFound, PublicKey: publicKey}
}

// NewRevokedError reports an attestation revoked at the given time.
func NewRevokedError(publicKey string, revokedAt uint64) *AttestationError {
	return &AttestationError{Kind: KindRevoked, PublicKey: publicKey, RevokedAt: revokedAt}
}

// NewUnauthorizedError reports a caller lacking the required role.
func NewUnauthorizedError(caller Identity, required string) *AttestationError {
	return &AttestationError{Kind: KindUnauthorized, Caller: caller, Required: required}
}

// NewPausedError reports a mutation attempted on a paused registry.
func NewPausedError() *AttestationError {
	return &AttestationError{Kind: KindPaused}
}

// NewNotPausedError reports a redundant unpause.
func NewNotPausedError() *AttestationError {
	return &AttestationError{Kind: KindNotPaused}
}

// NewAlreadyExistsError reports a duplicate registration. Keys are never
// reusable, so this also covers previously revoked keys.
func NewAlreadyExistsError(publicKey string) *AttestationError {
	return &AttestationError{Kind: KindAlreadyExists, PublicKey: publicKey}
}

// NewInvalidTeeTypeError reports an unparseable TEE type string.
func NewInvalidTeeTypeError(teeType string) *AttestationError {
	return &AttestationError{Kind: KindInvalidTeeType, TeeType: teeType}
}

// NewMissingMetadataError reports an absent required metadata field.
func NewMissingMetadataError(field, teeType string) *AttestationError {
	return &AttestationError{Kind: KindMissingMetadata, Field: field, TeeType: teeType}
}

// NewInvalidMetadataError reports a metadata value with the wrong format.
func NewInvalidMetadataError(field, value, expected string) *AttestationError {
	return &AttestationError{Kind: KindInvalidMetadata, Field: field, Value: value, Expected: expected}
}

// NewNotActiveError reports an operation on a revoked attestation.
func NewNotActiveError(publicKey string) *AttestationError {
	return &AttestationError{Kind: KindNotActive, PublicKey: publicKey}
}

// NewInvalidExpirationError reports an unusable TTL or expiry.
func NewInvalidExpirationError(expiresAt, currentTime uint64) *AttestationError {
	return &AttestationError{Kind: KindInvalidExpiration, ExpiredAt: expiresAt, CurrentTime: currentTime}
}

// NewInternalError reports an invariant violation as a returned error.
func NewInternalError(details string) *AttestationError {
	return &AttestationError{Kind: KindInternal, Details: details}
}
