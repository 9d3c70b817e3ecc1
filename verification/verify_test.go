package verification

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"github.com/ruteri/tee-attestation-registry/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sgxMetadata() interfaces.Metadata {
	return interfaces.Metadata{
		"mr_enclave":  "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		"mr_signer":   "test-signer",
		"isv_prod_id": "1",
		"isv_svn":     "1",
	}
}

func asyloMetadata() interfaces.Metadata {
	return interfaces.Metadata{
		"enclave_hash":    "deadbeef",
		"enclave_version": "1",
	}
}

// p256Attestation signs SHA-256(report) with a fresh P-256 key and returns
// base64-encoded wire inputs (uncompressed SEC1 key, DER signature).
func p256Attestation(t *testing.T, report []byte) (publicKey, reportB64, signature string) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	keyBytes := make([]byte, 65)
	keyBytes[0] = 0x04
	key.X.FillBytes(keyBytes[1:33])
	key.Y.FillBytes(keyBytes[33:])

	digest := sha256.Sum256(report)
	sigBytes, err := ecdsa.SignASN1(rand.Reader, key, digest[:])
	require.NoError(t, err)

	return base64.StdEncoding.EncodeToString(keyBytes),
		base64.StdEncoding.EncodeToString(report),
		base64.StdEncoding.EncodeToString(sigBytes)
}

func ed25519Attestation(t *testing.T, report []byte) (publicKey, reportB64, signature string) {
	t.Helper()

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	sigBytes := ed25519.Sign(priv, report)

	return base64.StdEncoding.EncodeToString(pub),
		base64.StdEncoding.EncodeToString(report),
		base64.StdEncoding.EncodeToString(sigBytes)
}

func TestVerifySGXValidSignature(t *testing.T) {
	publicKey, report, signature := p256Attestation(t, []byte("sgx attestation report"))

	err := Verify(interfaces.TeeTypeSGX, publicKey, report, signature, sgxMetadata())
	require.NoError(t, err)
}

func TestVerifySGXTamperedSignature(t *testing.T) {
	publicKey, report, signature := p256Attestation(t, []byte("sgx attestation report"))

	sigBytes, err := base64.StdEncoding.DecodeString(signature)
	require.NoError(t, err)
	sigBytes[len(sigBytes)-1] ^= 0x01
	tampered := base64.StdEncoding.EncodeToString(sigBytes)

	err = Verify(interfaces.TeeTypeSGX, publicKey, report, tampered, sgxMetadata())
	assert.ErrorIs(t, err, interfaces.ErrInvalidSignature)
}

func TestVerifySGXTamperedReport(t *testing.T) {
	publicKey, _, signature := p256Attestation(t, []byte("sgx attestation report"))
	otherReport := base64.StdEncoding.EncodeToString([]byte("a different report"))

	err := Verify(interfaces.TeeTypeSGX, publicKey, otherReport, signature, sgxMetadata())
	assert.ErrorIs(t, err, interfaces.ErrInvalidSignature)
}

func TestVerifyCompactSignatureFallback(t *testing.T) {
	report := []byte("report signed with compact encoding")

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	keyBytes := make([]byte, 65)
	keyBytes[0] = 0x04
	key.X.FillBytes(keyBytes[1:33])
	key.Y.FillBytes(keyBytes[33:])

	digest := sha256.Sum256(report)
	r, s, err := ecdsa.Sign(rand.Reader, key, digest[:])
	require.NoError(t, err)

	sigBytes := make([]byte, 64)
	r.FillBytes(sigBytes[:32])
	s.FillBytes(sigBytes[32:])

	err = Verify(interfaces.TeeTypeSEV,
		base64.StdEncoding.EncodeToString(keyBytes),
		base64.StdEncoding.EncodeToString(report),
		base64.StdEncoding.EncodeToString(sigBytes),
		interfaces.Metadata{"policy": "0x01", "family_id": "fam", "image_id": "img"})
	require.NoError(t, err)
}

func TestVerifyMissingMetadataShortCircuits(t *testing.T) {
	// Inputs are not even valid base64; the metadata check must fire first.
	err := Verify(interfaces.TeeTypeSGX, "!!!", "!!!", "!!!", interfaces.Metadata{})
	require.ErrorIs(t, err, interfaces.ErrMissingMetadata)

	var attErr *interfaces.AttestationError
	require.ErrorAs(t, err, &attErr)
	assert.Equal(t, "mr_enclave", attErr.Field)
	assert.Equal(t, "sgx", attErr.TeeType)
}

func TestVerifyDecodeErrors(t *testing.T) {
	md := sgxMetadata()

	err := Verify(interfaces.TeeTypeSGX, "not-base64!", "cmVwb3J0", "c2ln", md)
	assert.ErrorIs(t, err, interfaces.ErrInvalidSignature)

	err = Verify(interfaces.TeeTypeSGX, "cHVibGlj", "not-base64!", "c2ln", md)
	assert.ErrorIs(t, err, interfaces.ErrInvalidReport)

	err = Verify(interfaces.TeeTypeSGX, "cHVibGlj", "cmVwb3J0", "not-base64!", md)
	assert.ErrorIs(t, err, interfaces.ErrInvalidSignature)
}

func TestVerifyEmptyInputs(t *testing.T) {
	err := Verify(interfaces.TeeTypeSGX, "", "cmVwb3J0", "c2ln", sgxMetadata())
	assert.ErrorIs(t, err, interfaces.ErrInvalidSignature)

	err = Verify(interfaces.TeeTypeSGX, "cHVibGlj", "cmVwb3J0", "", sgxMetadata())
	assert.ErrorIs(t, err, interfaces.ErrInvalidSignature)
}

func TestVerifyInvalidP256Point(t *testing.T) {
	// Correct length, but not a point on the curve.
	keyBytes := make([]byte, 65)
	keyBytes[0] = 0x04
	for i := 1; i < len(keyBytes); i++ {
		keyBytes[i] = 0xff
	}

	err := Verify(interfaces.TeeTypeTrustZone,
		base64.StdEncoding.EncodeToString(keyBytes),
		base64.StdEncoding.EncodeToString([]byte("report")),
		base64.StdEncoding.EncodeToString([]byte("signature")),
		interfaces.Metadata{"secure_version": "2", "non_secure_version": "1"})
	assert.ErrorIs(t, err, interfaces.ErrInvalidSignature)
}

func TestVerifyAsyloEd25519(t *testing.T) {
	publicKey, report, signature := ed25519Attestation(t, []byte("asylo report"))

	err := Verify(interfaces.TeeTypeAsylo, publicKey, report, signature, asyloMetadata())
	require.NoError(t, err)

	// Tampered report fails.
	otherReport := base64.StdEncoding.EncodeToString([]byte("tampered"))
	err = Verify(interfaces.TeeTypeAsylo, publicKey, otherReport, signature, asyloMetadata())
	assert.ErrorIs(t, err, interfaces.ErrInvalidSignature)
}

func TestVerifyAsyloKeySizes(t *testing.T) {
	shortKey := base64.StdEncoding.EncodeToString([]byte("short"))
	report := base64.StdEncoding.EncodeToString([]byte("report"))
	sig := base64.StdEncoding.EncodeToString(make([]byte, 64))

	err := Verify(interfaces.TeeTypeAsylo, shortKey, report, sig, asyloMetadata())
	require.ErrorIs(t, err, interfaces.ErrInvalidSignature)
	assert.Contains(t, err.Error(), "32 bytes")

	validKey := base64.StdEncoding.EncodeToString(make([]byte, 32))
	shortSig := base64.StdEncoding.EncodeToString(make([]byte, 16))
	err = Verify(interfaces.TeeTypeAsylo, validKey, report, shortSig, asyloMetadata())
	require.ErrorIs(t, err, interfaces.ErrInvalidSignature)
	assert.Contains(t, err.Error(), "64 bytes")
}

func TestVerifyOtherRequiresAlgorithm(t *testing.T) {
	publicKey, report, signature := ed25519Attestation(t, []byte("custom tee report"))

	// No signature_algorithm key.
	err := Verify(interfaces.OtherTeeType("custom"), publicKey, report, signature, interfaces.Metadata{})
	require.ErrorIs(t, err, interfaces.ErrInvalidMetadata)

	// Unknown algorithm.
	err = Verify(interfaces.OtherTeeType("custom"), publicKey, report, signature,
		interfaces.Metadata{"signature_algorithm": "HS256"})
	require.ErrorIs(t, err, interfaces.ErrInvalidMetadata)

	// Declared algorithm verifies.
	err = Verify(interfaces.OtherTeeType("custom"), publicKey, report, signature,
		interfaces.Metadata{"signature_algorithm": "Ed25519"})
	require.NoError(t, err)
}

func TestVerifyOtherECDSAP256(t *testing.T) {
	publicKey, report, signature := p256Attestation(t, []byte("custom tee report"))

	err := Verify(interfaces.OtherTeeType("custom"), publicKey, report, signature,
		interfaces.Metadata{"signature_algorithm": "ECDSA-P256"})
	require.NoError(t, err)
}

func TestVerifyOtherExtensionPointsNeverSucceed(t *testing.T) {
	publicKey, report, signature := p256Attestation(t, []byte("report"))

	for _, algorithm := range []string{"ECDSA-P384", "RSA-PSS"} {
		err := Verify(interfaces.OtherTeeType("custom"), publicKey, report, signature,
			interfaces.Metadata{"signature_algorithm": algorithm})
		require.Error(t, err, "algorithm %s must not silently succeed", algorithm)
		assert.ErrorIs(t, err, interfaces.ErrInvalidSignature)
	}
}
