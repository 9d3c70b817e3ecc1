package verification

import (
	"crypto/ed25519"

	"github.com/ruteri/tee-attestation-registry/interfaces"
)

// verifyEd25519 verifies an Ed25519 signature over the raw report bytes.
// There is no separate hash step; Ed25519 hashes internally.
func verifyEd25519(publicKey, report, signature string) error {
	keyBytes, reportBytes, sigBytes, err := decodeInputs(publicKey, report, signature)
	if err != nil {
		return err
	}

	if len(keyBytes) != ed25519.PublicKeySize {
		return interfaces.NewInvalidSignatureError(publicKey, "Ed25519 public key must be 32 bytes")
	}
	if len(sigBytes) != ed25519.SignatureSize {
		return interfaces.NewInvalidSignatureError(publicKey, "Ed25519 signature must be 64 bytes")
	}

	if !ed25519.Verify(ed25519.PublicKey(keyBytes), reportBytes, sigBytes) {
		return interfaces.NewInvalidSignatureError(publicKey, "Ed25519 signature verification failed")
	}

	return nil
}
