// Package clients provides typed HTTP clients for the registry API.
package clients

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/stretchr/testify/mock"

	"github.com/ruteri/tee-attestation-registry/api"
	"github.com/ruteri/tee-attestation-registry/attestation"
	"github.com/ruteri/tee-attestation-registry/interfaces"
)

// RegistryProvider abstracts the registry API for consumers that want to
// swap the HTTP client for a mock.
type RegistryProvider interface {
	Register(req api.RegisterRequest) (*attestation.Attestation, error)
	Get(publicKey string) (*attestation.Attestation, error)
	IsValid(publicKey string, at uint64) (bool, error)
	Verify(publicKey string, at uint64, verifySignature bool) (bool, error)
	Revoke(publicKey string, at uint64) error
	Extend(publicKey string, additionalSeconds, at uint64) (*attestation.Attestation, error)
	UpdateMetadata(publicKey string, metadata interfaces.Metadata, at uint64) (*attestation.Attestation, error)
	ListKeys(fromIndex, limit uint64) ([]string, error)
	ListByOwner(owner interfaces.Identity, fromIndex, limit uint64) ([]*attestation.Attestation, error)
	Status() (*api.StatusResponse, error)
	Pause() error
	Unpause() error
}

// RegistryClient is an HTTP client for the registry server.
type RegistryClient struct {
	// ServerAddr is the base URL of the registry server.
	ServerAddr string

	// Identity is sent as the caller identity header on every request.
	Identity interfaces.Identity

	// Timestamp, when non-zero, pins the evaluation time of every
	// request. Useful for deterministic tests; production callers leave
	// it zero and let the server sample its clock.
	Timestamp uint64

	// HTTPClient defaults to http.DefaultClient.
	HTTPClient *http.Client
}

func (c *RegistryClient) Register(req api.RegisterRequest) (*attestation.Attestation, error) {
	var att attestation.Attestation
	if err := c.do(http.MethodPost, "/api/attestations", 0, req, &att); err != nil {
		return nil, err
	}
	return &att, nil
}

func (c *RegistryClient) Get(publicKey string) (*attestation.Attestation, error) {
	var att attestation.Attestation
	path := "/api/attestations/record?key=" + url.QueryEscape(publicKey)
	if err := c.do(http.MethodGet, path, 0, nil, &att); err != nil {
		return nil, err
	}
	return &att, nil
}

func (c *RegistryClient) IsValid(publicKey string, at uint64) (bool, error) {
	var resp api.ValidResponse
	path := "/api/attestations/valid?key=" + url.QueryEscape(publicKey)
	if err := c.do(http.MethodGet, path, at, nil, &resp); err != nil {
		return false, err
	}
	return resp.Valid, nil
}

func (c *RegistryClient) Verify(publicKey string, at uint64, verifySignature bool) (bool, error) {
	var resp api.VerifyResponse
	path := fmt.Sprintf("/api/attestations/verify?key=%s&signature=%t", url.QueryEscape(publicKey), verifySignature)
	if err := c.do(http.MethodGet, path, at, nil, &resp); err != nil {
		return false, err
	}
	return resp.Valid, nil
}

func (c *RegistryClient) Revoke(publicKey string, at uint64) error {
	return c.do(http.MethodPost, "/api/attestations/revoke", at, api.RevokeRequest{PublicKey: publicKey}, nil)
}

func (c *RegistryClient) Extend(publicKey string, additionalSeconds, at uint64) (*attestation.Attestation, error) {
	var att attestation.Attestation
	req := api.ExtendRequest{PublicKey: publicKey, AdditionalSeconds: additionalSeconds}
	if err := c.do(http.MethodPost, "/api/attestations/extend", at, req, &att); err != nil {
		return nil, err
	}
	return &att, nil
}

func (c *RegistryClient) UpdateMetadata(publicKey string, metadata interfaces.Metadata, at uint64) (*attestation.Attestation, error) {
	var att attestation.Attestation
	req := api.UpdateMetadataRequest{PublicKey: publicKey, Metadata: metadata}
	if err := c.do(http.MethodPost, "/api/attestations/metadata", at, req, &att); err != nil {
		return nil, err
	}
	return &att, nil
}

func (c *RegistryClient) ListKeys(fromIndex, limit uint64) ([]string, error) {
	var resp api.KeyListResponse
	path := fmt.Sprintf("/api/attestations/keys?from_index=%d&limit=%d", fromIndex, limit)
	if err := c.do(http.MethodGet, path, 0, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Keys, nil
}

func (c *RegistryClient) ListByOwner(owner interfaces.Identity, fromIndex, limit uint64) ([]*attestation.Attestation, error) {
	var resp api.AttestationListResponse
	path := fmt.Sprintf("/api/attestations/owner?owner=%s&from_index=%d&limit=%d", url.QueryEscape(owner.String()), fromIndex, limit)
	if err := c.do(http.MethodGet, path, 0, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Attestations, nil
}

func (c *RegistryClient) Status() (*api.StatusResponse, error) {
	var resp api.StatusResponse
	if err := c.do(http.MethodGet, "/api/status", 0, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *RegistryClient) Pause() error {
	return c.do(http.MethodPost, "/api/admin/pause", 0, nil, nil)
}

func (c *RegistryClient) Unpause() error {
	return c.do(http.MethodPost, "/api/admin/unpause", 0, nil, nil)
}

func (c *RegistryClient) do(method, path string, at uint64, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, c.ServerAddr+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Identity != "" {
		req.Header.Set(api.IdentityHeader, c.Identity.String())
	}
	if at == 0 {
		at = c.Timestamp
	}
	if at != 0 {
		req.Header.Set(api.TimestampHeader, strconv.FormatUint(at, 10))
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("could not reach registry server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var errResp api.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
			return fmt.Errorf("registry server returned %d", resp.StatusCode)
		}
		// Reconstruct a typed error so errors.Is works across the wire
		return &interfaces.AttestationError{
			Kind:    interfaces.ParseErrorKind(errResp.Kind),
			Details: errResp.Message,
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("could not parse registry response: %w", err)
	}
	return nil
}

// MockRegistryProvider implements RegistryProvider for testing.
type MockRegistryProvider struct {
	mock.Mock
}

func (m *MockRegistryProvider) Register(req api.RegisterRequest) (*attestation.Attestation, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*attestation.Attestation), args.Error(1)
}

func (m *MockRegistryProvider) Get(publicKey string) (*attestation.Attestation, error) {
	args := m.Called(publicKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*attestation.Attestation), args.Error(1)
}

func (m *MockRegistryProvider) IsValid(publicKey string, at uint64) (bool, error) {
	args := m.Called(publicKey, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockRegistryProvider) Verify(publicKey string, at uint64, verifySignature bool) (bool, error) {
	args := m.Called(publicKey, at, verifySignature)
	return args.Bool(0), args.Error(1)
}

func (m *MockRegistryProvider) Revoke(publicKey string, at uint64) error {
	return m.Called(publicKey, at).Error(0)
}

func (m *MockRegistryProvider) Extend(publicKey string, additionalSeconds, at uint64) (*attestation.Attestation, error) {
	args := m.Called(publicKey, additionalSeconds, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*attestation.Attestation), args.Error(1)
}

func (m *MockRegistryProvider) UpdateMetadata(publicKey string, metadata interfaces.Metadata, at uint64) (*attestation.Attestation, error) {
	args := m.Called(publicKey, metadata, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*attestation.Attestation), args.Error(1)
}

func (m *MockRegistryProvider) ListKeys(fromIndex, limit uint64) ([]string, error) {
	args := m.Called(fromIndex, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockRegistryProvider) ListByOwner(owner interfaces.Identity, fromIndex, limit uint64) ([]*attestation.Attestation, error) {
	args := m.Called(owner, fromIndex, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*attestation.Attestation), args.Error(1)
}

func (m *MockRegistryProvider) Status() (*api.StatusResponse, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*api.StatusResponse), args.Error(1)
}

func (m *MockRegistryProvider) Pause() error {
	return m.Called().Error(0)
}

func (m *MockRegistryProvider) Unpause() error {
	return m.Called().Error(0)
}
