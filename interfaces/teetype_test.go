package interfaces

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTeeType(t *testing.T) {
	cases := map[string]TeeType{
		"sgx":               TeeTypeSGX,
		"SGX":               TeeTypeSGX,
		"sev":               TeeTypeSEV,
		"SeV":               TeeTypeSEV,
		"trustzone":         TeeTypeTrustZone,
		"trust_zone":        TeeTypeTrustZone,
		"TRUSTZONE":         TeeTypeTrustZone,
		"asylo":             TeeTypeAsylo,
		"azure_attestation": TeeTypeAzureAttestation,
		"azure":             TeeTypeAzureAttestation,
		"aws_nitro":         TeeTypeAWSNitro,
		"nitro":             TeeTypeAWSNitro,
		"other:custom":      OtherTeeType("custom"),
	}

	for input, want := range cases {
		got, err := ParseTeeType(input)
		require.NoError(t, err, "parse %q", input)
		assert.Equal(t, want, got, "parse %q", input)
	}
}

func TestParseTeeTypeInvalid(t *testing.T) {
	_, err := ParseTeeType("invalid")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidTeeType)
}

func TestTeeTypeRoundTrip(t *testing.T) {
	variants := []TeeType{
		TeeTypeSGX,
		TeeTypeSEV,
		TeeTypeTrustZone,
		TeeTypeAsylo,
		TeeTypeAzureAttestation,
		TeeTypeAWSNitro,
		OtherTeeType("x"),
	}

	for _, v := range variants {
		parsed, err := ParseTeeType(v.String())
		require.NoError(t, err, "round trip %q", v.String())
		assert.True(t, parsed.Equal(v), "round trip %q", v.String())
	}
}

func TestTeeTypeString(t *testing.T) {
	assert.Equal(t, "sgx", TeeTypeSGX.String())
	assert.Equal(t, "sev", TeeTypeSEV.String())
	assert.Equal(t, "trustzone", TeeTypeTrustZone.String())
	assert.Equal(t, "azure_attestation", TeeTypeAzureAttestation.String())
	assert.Equal(t, "aws_nitro", TeeTypeAWSNitro.String())
	assert.Equal(t, "other:custom", OtherTeeType("custom").String())
}

func TestTeeTypePredicates(t *testing.T) {
	assert.True(t, TeeTypeSGX.IsProductionReady())
	assert.True(t, TeeTypeSEV.IsProductionReady())
	assert.True(t, TeeTypeTrustZone.IsProductionReady())
	assert.False(t, TeeTypeAsylo.IsProductionReady())
	assert.False(t, TeeTypeAzureAttestation.IsProductionReady())
	assert.False(t, OtherTeeType("x").IsProductionReady())

	assert.True(t, TeeTypeAzureAttestation.IsCloudBased())
	assert.True(t, TeeTypeAWSNitro.IsCloudBased())
	assert.False(t, TeeTypeSGX.IsCloudBased())
}

func TestTeeTypeJSON(t *testing.T) {
	data, err := json.Marshal(TeeTypeAWSNitro)
	require.NoError(t, err)
	assert.Equal(t, `"aws_nitro"`, string(data))

	var parsed TeeType
	require.NoError(t, json.Unmarshal([]byte(`"other:enarx"`), &parsed))
	assert.Equal(t, OtherTeeType("enarx"), parsed)

	var invalid TeeType
	err = json.Unmarshal([]byte(`"bogus"`), &invalid)
	assert.ErrorIs(t, err, ErrInvalidTeeType)
}

func TestRequiredMetadataFields(t *testing.T) {
	assert.Equal(t, []string{"mr_enclave", "mr_signer", "isv_prod_id", "isv_svn"}, TeeTypeSGX.RequiredMetadataFields())
	assert.Equal(t, []string{"policy", "family_id", "image_id"}, TeeTypeSEV.RequiredMetadataFields())
	assert.Equal(t, []string{"secure_version", "non_secure_version"}, TeeTypeTrustZone.RequiredMetadataFields())
	assert.Equal(t, []string{"enclave_hash", "enclave_version"}, TeeTypeAsylo.RequiredMetadataFields())
	assert.Equal(t, []string{"tenant_id", "client_id"}, TeeTypeAzureAttestation.RequiredMetadataFields())
	assert.Equal(t, []string{"pcr0", "pcr1", "pcr2"}, TeeTypeAWSNitro.RequiredMetadataFields())
	assert.Empty(t, OtherTeeType("x").RequiredMetadataFields())
}
