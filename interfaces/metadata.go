package interfaces

// ValidateMetadata checks the metadata map against the required-field table
// for the given TEE type. Beyond presence, SGX's mr_enclave must be a
// 64-character hex string. Returns MissingMetadata naming the first absent
// field, or InvalidMetadata for a malformed value.
func ValidateMetadata(t TeeType, m Metadata) error {
	for _, field := range t.RequiredMetadataFields() {
		if _, ok := m[field]; !ok {
			return NewMissingMetadataError(field, t.String())
		}
	}

	if t.Equal(TeeTypeSGX) {
		if v := m["mr_enclave"]; !isHex64(v) {
			return NewInvalidMetadataError("mr_enclave", v, "64-character hex string")
		}
	}

	return nil
}

func isHex64(s string) bool {
	if len(s) != 64 {
		return false
	}
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
