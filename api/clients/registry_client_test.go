package clients

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruteri/tee-attestation-registry/api"
	"github.com/ruteri/tee-attestation-registry/attestation"
	"github.com/ruteri/tee-attestation-registry/interfaces"
)

func TestRegistryClientHeaders(t *testing.T) {
	var gotIdentity, gotTimestamp string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotIdentity = r.Header.Get(api.IdentityHeader)
		gotTimestamp = r.Header.Get(api.TimestampHeader)
		require.Equal(t, "/api/attestations/valid", r.URL.Path)
		require.Equal(t, "K1", r.URL.Query().Get("key"))
		json.NewEncoder(w).Encode(api.ValidResponse{PublicKey: "K1", Valid: true, CheckedAt: 42})
	}))
	defer ts.Close()

	client := &RegistryClient{ServerAddr: ts.URL, Identity: "admin.test"}
	valid, err := client.IsValid("K1", 42)
	require.NoError(t, err)
	assert.True(t, valid)
	assert.Equal(t, "admin.test", gotIdentity)
	assert.Equal(t, "42", gotTimestamp)
}

func TestRegistryClientRegister(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/attestations", r.URL.Path)

		var req api.RegisterRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "sgx", req.TeeType)

		w.WriteHeader(http.StatusCreated)
		// The record must carry a valid TEE type; the zero value does not
		// marshal.
		json.NewEncoder(w).Encode(attestation.Attestation{
			TeeType:   interfaces.TeeTypeSGX,
			PublicKey: req.PublicKey,
			IsActive:  true,
		})
	}))
	defer ts.Close()

	client := &RegistryClient{ServerAddr: ts.URL, Identity: "admin.test"}
	att, err := client.Register(api.RegisterRequest{TeeType: "sgx", PublicKey: "K1"})
	require.NoError(t, err)
	assert.Equal(t, "K1", att.PublicKey)
	assert.Equal(t, interfaces.TeeTypeSGX, att.TeeType)
	assert.True(t, att.IsActive)
}

func TestRegistryClientTypedErrors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(api.ErrorResponse{Kind: "not_found", Message: "attestation not found: K1"})
	}))
	defer ts.Close()

	client := &RegistryClient{ServerAddr: ts.URL}
	_, err := client.Get("K1")
	require.Error(t, err)
	// Error kinds survive the wire round trip
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}

func TestRegistryClientOpaqueKeysEscaped(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// base64 keys with / and + must arrive intact
		require.Equal(t, "a/b+c=", r.URL.Query().Get("key"))
		json.NewEncoder(w).Encode(api.ValidResponse{Valid: false})
	}))
	defer ts.Close()

	client := &RegistryClient{ServerAddr: ts.URL}
	_, err := client.IsValid("a/b+c=", 1)
	require.NoError(t, err)
}
