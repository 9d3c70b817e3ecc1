package verification

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/sha256"
	"math/big"

	"github.com/ruteri/tee-attestation-registry/interfaces"
)

const (
	// sec1UncompressedLen is the length of an uncompressed P-256 SEC1
	// point: 0x04 prefix plus two 32-byte coordinates.
	sec1UncompressedLen = 65

	// compactSignatureLen is the length of a fixed-width r||s signature.
	compactSignatureLen = 64
)

// verifyECDSAP256 verifies an ECDSA P-256 signature over the SHA-256
// digest of the report bytes. The public key must be an uncompressed SEC1
// point; the signature is parsed as ASN.1/DER first, then as fixed-width
// compact form.
func verifyECDSAP256(publicKey, report, signature string) error {
	keyBytes, reportBytes, sigBytes, err := decodeInputs(publicKey, report, signature)
	if err != nil {
		return err
	}

	verifyingKey, err := parseP256PublicKey(publicKey, keyBytes)
	if err != nil {
		return err
	}

	digest := sha256.Sum256(reportBytes)

	if ecdsa.VerifyASN1(verifyingKey, digest[:], sigBytes) {
		return nil
	}

	// DER signatures are never exactly 64 bytes, so a compact attempt
	// cannot shadow a DER verification failure.
	if len(sigBytes) == compactSignatureLen {
		r := new(big.Int).SetBytes(sigBytes[:32])
		s := new(big.Int).SetBytes(sigBytes[32:])
		if ecdsa.Verify(verifyingKey, digest[:], r, s) {
			return nil
		}
	}

	return interfaces.NewInvalidSignatureError(publicKey, "ECDSA P-256 signature verification failed")
}

// parseP256PublicKey parses an uncompressed NIST P-256 SEC1 point.
func parseP256PublicKey(publicKey string, keyBytes []byte) (*ecdsa.PublicKey, error) {
	if len(keyBytes) != sec1UncompressedLen || keyBytes[0] != 0x04 {
		return nil, interfaces.NewInvalidSignatureError(publicKey, "invalid P-256 public key encoding")
	}

	curve := elliptic.P256()
	x := new(big.Int).SetBytes(keyBytes[1:33])
	y := new(big.Int).SetBytes(keyBytes[33:])
	if !curve.IsOnCurve(x, y) {
		return nil, interfaces.NewInvalidSignatureError(publicKey, "invalid P-256 public key point")
	}

	return &ecdsa.PublicKey{Curve: curve, X: x, Y: y}, nil
}
