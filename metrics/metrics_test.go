package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultipleServersCoexist(t *testing.T) {
	// A second server in the same process must not collide on metric
	// registration.
	m1, err := New("registry_test", "127.0.0.1:0")
	require.NoError(t, err)
	m2, err := New("registry_test", "127.0.0.1:0")
	require.NoError(t, err)

	m1.RecordRegistration()
	m1.RecordRegistration()
	m2.RecordRegistration()

	assert.Equal(t, float64(2), testutil.ToFloat64(m1.registrations))
	assert.Equal(t, float64(1), testutil.ToFloat64(m2.registrations))
}

func TestCounters(t *testing.T) {
	m, err := New("registry_test", "127.0.0.1:0")
	require.NoError(t, err)

	m.RecordRevocation()
	m.RecordVerification("valid")
	m.RecordVerification("invalid")
	m.RecordVerification("invalid")
	m.RecordOperationError("register", "already_exists")

	assert.Equal(t, float64(1), testutil.ToFloat64(m.revocations))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.verifications.WithLabelValues("valid")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.verifications.WithLabelValues("invalid")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.operationError.WithLabelValues("register", "already_exists")))
}
