package storage

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/ruteri/tee-attestation-registry/interfaces"
)

// StorageBackendFor creates a storage backend from a location URI.
// Supported schemes:
//
//	memory://
//	file:///path/to/dir
//	s3://bucket/prefix?region=us-east-1&endpoint=...&access_key=...&secret_key=...
//	vault://host:8200/mount/secret-path?token=...
func StorageBackendFor(locationURI string, log *slog.Logger) (interfaces.KVStore, error) {
	parsed, err := url.Parse(locationURI)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", interfaces.ErrInvalidLocationURI, err)
	}

	switch parsed.Scheme {
	case "memory":
		return NewMemoryBackend(log), nil

	case "file":
		if parsed.Path == "" {
			return nil, fmt.Errorf("%w: file URI requires a path", interfaces.ErrInvalidLocationURI)
		}
		return NewFileBackend(parsed.Path, log)

	case "s3":
		bucket := parsed.Host
		if bucket == "" {
			return nil, fmt.Errorf("%w: s3 URI requires a bucket", interfaces.ErrInvalidLocationURI)
		}
		query := parsed.Query()
		region := query.Get("region")
		if region == "" {
			region = "us-east-1"
		}
		prefix := strings.TrimPrefix(parsed.Path, "/")
		return NewS3Backend(bucket, prefix, region, query.Get("endpoint"), query.Get("access_key"), query.Get("secret_key"), log)

	case "vault":
		if parsed.Host == "" {
			return nil, fmt.Errorf("%w: vault URI requires a host", interfaces.ErrInvalidLocationURI)
		}
		parts := strings.SplitN(strings.TrimPrefix(parsed.Path, "/"), "/", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("%w: vault URI requires /mount/secret-path", interfaces.ErrInvalidLocationURI)
		}
		address := fmt.Sprintf("http://%s", parsed.Host)
		return NewVaultBackend(address, parsed.Query().Get("token"), parts[0], parts[1], log)

	default:
		return nil, fmt.Errorf("%w: unsupported scheme %q", interfaces.ErrInvalidLocationURI, parsed.Scheme)
	}
}
