package interfaces

import "maps"

// Identity is an authenticated caller identity supplied by the host layer.
// The core never authenticates identities itself; it only compares them
// against the registry admin.
type Identity string

// String returns the identity as a string.
func (id Identity) String() string {
	return string(id)
}

// Metadata holds TEE-specific attestation fields as a string map. Required
// keys per TEE type come from TeeType.RequiredMetadataFields.
type Metadata map[string]string

// Clone returns an independent copy of the metadata map. A nil map clones
// to nil.
func (m Metadata) Clone() Metadata {
	return maps.Clone(m)
}
