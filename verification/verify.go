package verification

import (
	"encoding/base64"

	"github.com/ruteri/tee-attestation-registry/interfaces"
)

// Verify checks the attestation signature over the report for the given
// TEE type. It is pure and performs no I/O. Required metadata for the type
// is validated before any cryptographic work; a missing field returns
// MissingMetadata without decoding the inputs.
//
// Returns nil only when the signature verifies. Every failure is an
// *interfaces.AttestationError.
func Verify(teeType interfaces.TeeType, publicKey, report, signature string, metadata interfaces.Metadata) error {
	if publicKey == "" || signature == "" {
		return interfaces.NewInvalidSignatureError(publicKey, "public key and signature cannot be empty")
	}

	if err := interfaces.ValidateMetadata(teeType, metadata); err != nil {
		return err
	}

	switch {
	case teeType.IsOther():
		return verifyGeneric(publicKey, report, signature, metadata)
	case teeType.UsesEd25519():
		return verifyEd25519(publicKey, report, signature)
	default:
		return verifyECDSAP256(publicKey, report, signature)
	}
}

// genericVerifiers maps the signature_algorithm metadata value for the
// Other variant to its verifier. Entries with a nil function are declared
// extension points: accepted algorithm names whose implementation is
// pending, and which must fail verification rather than pass silently.
var genericVerifiers = map[string]func(publicKey, report, signature string) error{
	"ECDSA-P256": verifyECDSAP256,
	"Ed25519":    verifyEd25519,
	"ECDSA-P384": nil,
	"RSA-PSS":    nil,
}

func verifyGeneric(publicKey, report, signature string, metadata interfaces.Metadata) error {
	algorithm, ok := metadata["signature_algorithm"]
	if !ok {
		return interfaces.NewInvalidMetadataError("signature_algorithm", "not specified",
			"ECDSA-P256, ECDSA-P384, RSA-PSS, or Ed25519")
	}

	verifier, ok := genericVerifiers[algorithm]
	if !ok {
		return interfaces.NewInvalidMetadataError("signature_algorithm", algorithm,
			"ECDSA-P256, ECDSA-P384, RSA-PSS, or Ed25519")
	}
	if verifier == nil {
		return interfaces.NewInvalidSignatureError(publicKey, algorithm+" verification is not implemented")
	}

	return verifier(publicKey, report, signature)
}

// decodeInputs base64-decodes the three wire-encoded inputs. Key and
// signature decode failures are InvalidSignature; a report decode failure
// is InvalidReport.
func decodeInputs(publicKey, report, signature string) (keyBytes, reportBytes, sigBytes []byte, err error) {
	keyBytes, decodeErr := base64.StdEncoding.DecodeString(publicKey)
	if decodeErr != nil {
		return nil, nil, nil, interfaces.NewInvalidSignatureError(publicKey, "invalid base64 encoding in public key")
	}

	sigBytes, decodeErr = base64.StdEncoding.DecodeString(signature)
	if decodeErr != nil {
		return nil, nil, nil, interfaces.NewInvalidSignatureError(publicKey, "invalid base64 encoding in signature")
	}

	reportBytes, decodeErr = base64.StdEncoding.DecodeString(report)
	if decodeErr != nil {
		return nil, nil, nil, interfaces.NewInvalidReportError("invalid base64 encoding in report")
	}

	return keyBytes, reportBytes, sigBytes, nil
}
