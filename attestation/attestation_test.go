package attestation

import (
	"math"
	"testing"

	"github.com/ruteri/tee-attestation-registry/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testNow uint64 = 1_700_000_000

func sgxMetadata() interfaces.Metadata {
	return interfaces.Metadata{
		"mr_enclave":  "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		"mr_signer":   "test-signer",
		"isv_prod_id": "1",
		"isv_svn":     "1",
	}
}

func newTestAttestation(t *testing.T) *Attestation {
	t.Helper()
	att, err := New(interfaces.TeeTypeSGX, "test-public-key", "dGVzdC1yZXBvcnQ=", "dGVzdC1zaWduYXR1cmU=",
		"owner-a", 3600, "", sgxMetadata(), testNow)
	require.NoError(t, err)
	return att
}

func TestNewSetsLifecycleFields(t *testing.T) {
	att := newTestAttestation(t)

	assert.Equal(t, testNow, att.IssuedAt)
	assert.Equal(t, testNow+3600, att.ExpiresAt)
	assert.Equal(t, testNow, att.UpdatedAt)
	assert.Equal(t, DefaultVersion, att.Version)
	assert.Equal(t, interfaces.Identity("owner-a"), att.Owner)
	assert.True(t, att.IsActive)
}

func TestNewRejectsEmptyFields(t *testing.T) {
	_, err := New(interfaces.TeeTypeSGX, "", "report", "sig", "owner-a", 3600, "", sgxMetadata(), testNow)
	assert.ErrorIs(t, err, interfaces.ErrInvalidReport)

	_, err = New(interfaces.TeeTypeSGX, "pk", "", "sig", "owner-a", 3600, "", sgxMetadata(), testNow)
	assert.ErrorIs(t, err, interfaces.ErrInvalidReport)

	_, err = New(interfaces.TeeTypeSGX, "pk", "report", "", "owner-a", 3600, "", sgxMetadata(), testNow)
	assert.ErrorIs(t, err, interfaces.ErrInvalidSignature)
}

func TestNewRejectsZeroTTL(t *testing.T) {
	_, err := New(interfaces.TeeTypeSGX, "pk", "report", "sig", "owner-a", 0, "", sgxMetadata(), testNow)
	assert.ErrorIs(t, err, interfaces.ErrInvalidExpiration)
}

func TestNewValidatesMetadataPerType(t *testing.T) {
	cases := []struct {
		teeType  interfaces.TeeType
		metadata interfaces.Metadata
	}{
		{interfaces.TeeTypeSGX, sgxMetadata()},
		{interfaces.TeeTypeSEV, interfaces.Metadata{"policy": "0x01", "family_id": "f", "image_id": "i"}},
		{interfaces.TeeTypeTrustZone, interfaces.Metadata{"secure_version": "2", "non_secure_version": "1"}},
		{interfaces.TeeTypeAsylo, interfaces.Metadata{"enclave_hash": "h", "enclave_version": "1"}},
		{interfaces.TeeTypeAzureAttestation, interfaces.Metadata{"tenant_id": "t", "client_id": "c"}},
		{interfaces.TeeTypeAWSNitro, interfaces.Metadata{"pcr0": "a", "pcr1": "b", "pcr2": "c"}},
		{interfaces.OtherTeeType("custom"), interfaces.Metadata{}},
	}

	for _, tc := range cases {
		// Complete metadata succeeds.
		_, err := New(tc.teeType, "pk", "report", "sig", "owner-a", 3600, "", tc.metadata, testNow)
		require.NoError(t, err, "tee type %s", tc.teeType)

		// Removing any required key fails naming exactly that key.
		for _, field := range tc.teeType.RequiredMetadataFields() {
			incomplete := tc.metadata.Clone()
			delete(incomplete, field)

			_, err := New(tc.teeType, "pk", "report", "sig", "owner-a", 3600, "", incomplete, testNow)
			require.ErrorIs(t, err, interfaces.ErrMissingMetadata, "tee type %s field %s", tc.teeType, field)

			var attErr *interfaces.AttestationError
			require.ErrorAs(t, err, &attErr)
			assert.Equal(t, field, attErr.Field)
			assert.Equal(t, tc.teeType.String(), attErr.TeeType)
		}
	}
}

func TestNewRejectsMalformedMrEnclave(t *testing.T) {
	md := sgxMetadata()
	md["mr_enclave"] = "not-hex"

	_, err := New(interfaces.TeeTypeSGX, "pk", "report", "sig", "owner-a", 3600, "", md, testNow)
	require.ErrorIs(t, err, interfaces.ErrInvalidMetadata)
}

func TestValidateLifecycle(t *testing.T) {
	att := newTestAttestation(t)

	require.NoError(t, att.Validate(testNow+100, false))

	// Expired exactly when now > expires_at.
	require.NoError(t, att.Validate(att.ExpiresAt, false))
	err := att.Validate(att.ExpiresAt+1, false)
	assert.ErrorIs(t, err, interfaces.ErrExpired)

	// Revoked attestations fail with NotActive before any expiry check.
	require.NoError(t, att.Revoke(testNow+200))
	err = att.Validate(testNow+300, false)
	assert.ErrorIs(t, err, interfaces.ErrNotActive)
}

func TestIsValid(t *testing.T) {
	att := newTestAttestation(t)

	assert.True(t, att.IsValid(testNow+100))
	assert.True(t, att.IsValid(att.ExpiresAt))
	assert.False(t, att.IsValid(att.ExpiresAt+1))

	require.NoError(t, att.Revoke(testNow+10))
	assert.False(t, att.IsValid(testNow+100))
}

func TestRevokeNotIdempotent(t *testing.T) {
	att := newTestAttestation(t)

	require.NoError(t, att.Revoke(testNow+50))
	assert.False(t, att.IsActive)

	err := att.Revoke(testNow + 60)
	require.ErrorIs(t, err, interfaces.ErrRevoked)
	assert.False(t, att.IsActive)
	// UpdatedAt reflects the first revocation, not the failed second one.
	assert.Equal(t, testNow+50, att.UpdatedAt)
}

func TestExtendExpiration(t *testing.T) {
	att := newTestAttestation(t)
	before := att.ExpiresAt

	require.NoError(t, att.ExtendExpiration(600, testNow+10))
	assert.Equal(t, before+600, att.ExpiresAt)
	assert.Equal(t, testNow+10, att.UpdatedAt)
}

func TestExtendExpirationRejectedWhenInactive(t *testing.T) {
	att := newTestAttestation(t)
	require.NoError(t, att.Revoke(testNow))

	err := att.ExtendExpiration(600, testNow+10)
	assert.ErrorIs(t, err, interfaces.ErrNotActive)
}

func TestExtendExpirationOverflow(t *testing.T) {
	att := newTestAttestation(t)

	err := att.ExtendExpiration(math.MaxUint64, testNow+10)
	require.ErrorIs(t, err, interfaces.ErrInternal)
	// Expiry unchanged on failure.
	assert.Equal(t, testNow+3600, att.ExpiresAt)
}

func TestUpdateMetadataReplacesWholesale(t *testing.T) {
	att := newTestAttestation(t)

	updated := sgxMetadata()
	updated["isv_svn"] = "2"
	updated["extra"] = "value"

	require.NoError(t, att.UpdateMetadata(updated, testNow+20))
	assert.Equal(t, "2", att.Metadata["isv_svn"])
	assert.Equal(t, "value", att.Metadata["extra"])
	assert.Equal(t, testNow+20, att.UpdatedAt)

	// The replacement is revalidated: dropping a required key fails and
	// leaves the previous metadata in place.
	incomplete := interfaces.Metadata{"mr_signer": "s"}
	err := att.UpdateMetadata(incomplete, testNow+30)
	require.ErrorIs(t, err, interfaces.ErrMissingMetadata)
	assert.Equal(t, "2", att.Metadata["isv_svn"])
}

func TestUpdateMetadataRejectedWhenInactive(t *testing.T) {
	att := newTestAttestation(t)
	require.NoError(t, att.Revoke(testNow))

	err := att.UpdateMetadata(sgxMetadata(), testNow+10)
	assert.ErrorIs(t, err, interfaces.ErrNotActive)
}

func TestMetadataIsCopied(t *testing.T) {
	md := sgxMetadata()
	att, err := New(interfaces.TeeTypeSGX, "pk", "report", "sig", "owner-a", 3600, "", md, testNow)
	require.NoError(t, err)

	md["mr_signer"] = "mutated"
	assert.Equal(t, "test-signer", att.Metadata["mr_signer"])
}
