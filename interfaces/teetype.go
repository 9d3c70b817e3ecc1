package interfaces

import (
	"fmt"
	"strings"
)

type teeKind uint8

const (
	teeKindInvalid teeKind = iota
	teeKindSGX
	teeKindSEV
	teeKindTrustZone
	teeKindAsylo
	teeKindAzureAttestation
	teeKindAWSNitro
	teeKindOther
)

// TeeType identifies a trusted execution environment scheme. The zero value
// is invalid; use the exported variants or ParseTeeType.
type TeeType struct {
	kind teeKind
	name string // suffix for the Other variant, empty otherwise
}

var (
	// TeeTypeSGX is Intel Software Guard Extensions.
	TeeTypeSGX = TeeType{kind: teeKindSGX}
	// TeeTypeSEV is AMD Secure Encrypted Virtualization.
	TeeTypeSEV = TeeType{kind: teeKindSEV}
	// TeeTypeTrustZone is ARM TrustZone.
	TeeTypeTrustZone = TeeType{kind: teeKindTrustZone}
	// TeeTypeAsylo is Google Asylo.
	TeeTypeAsylo = TeeType{kind: teeKindAsylo}
	// TeeTypeAzureAttestation is Microsoft Azure Attestation.
	TeeTypeAzureAttestation = TeeType{kind: teeKindAzureAttestation}
	// TeeTypeAWSNitro is AWS Nitro Enclaves.
	TeeTypeAWSNitro = TeeType{kind: teeKindAWSNitro}
)

// OtherTeeType returns the open-ended variant for a custom environment name.
func OtherTeeType(name string) TeeType {
	return TeeType{kind: teeKindOther, name: name}
}

// ParseTeeType parses the canonical string form of a TEE type. Matching is
// case-insensitive and accepts the aliases trust_zone, azure and nitro.
// The form "other:<suffix>" decodes to the Other variant.
func ParseTeeType(s string) (TeeType, error) {
	switch strings.ToLower(s) {
	case "sgx":
		return TeeTypeSGX, nil
	case "sev":
		return TeeTypeSEV, nil
	case "trustzone", "trust_zone":
		return TeeTypeTrustZone, nil
	case "asylo":
		return TeeTypeAsylo, nil
	case "azure_attestation", "azure":
		return TeeTypeAzureAttestation, nil
	case "aws_nitro", "nitro":
		return TeeTypeAWSNitro, nil
	}
	if suffix, ok := strings.CutPrefix(s, "other:"); ok {
		return OtherTeeType(suffix), nil
	}
	return TeeType{}, NewInvalidTeeTypeError(s)
}

// String returns the canonical form, the exact inverse of ParseTeeType.
func (t TeeType) String() string {
	switch t.kind {
	case teeKindSGX:
		return "sgx"
	case teeKindSEV:
		return "sev"
	case teeKindTrustZone:
		return "trustzone"
	case teeKindAsylo:
		return "asylo"
	case teeKindAzureAttestation:
		return "azure_attestation"
	case teeKindAWSNitro:
		return "aws_nitro"
	case teeKindOther:
		return "other:" + t.name
	default:
		return "invalid"
	}
}

// IsProductionReady reports whether the TEE type is considered
// production-ready hardware.
func (t TeeType) IsProductionReady() bool {
	switch t.kind {
	case teeKindSGX, teeKindSEV, teeKindTrustZone:
		return true
	default:
		return false
	}
}

// IsCloudBased reports whether the TEE type is a cloud provider attestation
// service rather than directly attested hardware.
func (t TeeType) IsCloudBased() bool {
	return t.kind == teeKindAzureAttestation || t.kind == teeKindAWSNitro
}

// IsOther reports whether this is the open-ended variant.
func (t TeeType) IsOther() bool {
	return t.kind == teeKindOther
}

// Equal compares two TEE types, including the Other suffix.
func (t TeeType) Equal(other TeeType) bool {
	return t == other
}

// MarshalText implements encoding.TextMarshaler using the canonical form.
func (t TeeType) MarshalText() ([]byte, error) {
	if t.kind == teeKindInvalid {
		return nil, fmt.Errorf("cannot marshal invalid TEE type")
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *TeeType) UnmarshalText(text []byte) error {
	parsed, err := ParseTeeType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// requiredMetadata is the canonical required-field table per TEE type.
// The Other variant has no inherent requirements; its verifier demands a
// signature_algorithm key instead.
var requiredMetadata = map[teeKind][]string{
	teeKindSGX:              {"mr_enclave", "mr_signer", "isv_prod_id", "isv_svn"},
	teeKindSEV:              {"policy", "family_id", "image_id"},
	teeKindTrustZone:        {"secure_version", "non_secure_version"},
	teeKindAsylo:            {"enclave_hash", "enclave_version"},
	teeKindAzureAttestation: {"tenant_id", "client_id"},
	teeKindAWSNitro:         {"pcr0", "pcr1", "pcr2"},
}

// RequiredMetadataFields returns the metadata keys an attestation of this
// type must carry. The returned slice must not be modified.
func (t TeeType) RequiredMetadataFields() []string {
	return requiredMetadata[t.kind]
}

// UsesEd25519 reports whether this type's reports are signed with Ed25519
// over the raw report bytes instead of ECDSA P-256 over a SHA-256 digest.
func (t TeeType) UsesEd25519() bool {
	return t.kind == teeKindAsylo
}
