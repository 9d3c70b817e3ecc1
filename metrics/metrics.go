// Package metrics exposes Prometheus metrics for the registry service
// on a dedicated listener.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsServer serves the Prometheus registry over HTTP and owns the
// service's metric collectors.
type MetricsServer struct {
	srv *http.Server

	registrations  prometheus.Counter
	revocations    prometheus.Counter
	verifications  *prometheus.CounterVec
	operationError *prometheus.CounterVec
}

// New creates a metrics server listening on addr. The namespace prefixes
// every metric name. Each server owns its own registry, so multiple
// instances can coexist in one process.
func New(namespace, addr string) (*MetricsServer, error) {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	m := &MetricsServer{
		registrations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Number of successfully registered attestations.",
		}),
		revocations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "revocations_total",
			Help:      "Number of revoked attestations.",
		}),
		verifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verifications_total",
			Help:      "Number of attestation verifications by result.",
		}, []string{"result"}),
		operationError: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_errors_total",
			Help:      "Number of failed registry operations by error kind.",
		}, []string{"operation", "kind"}),
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	m.srv = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	return m, nil
}

// ListenAndServe blocks serving the metrics endpoint.
func (m *MetricsServer) ListenAndServe() error {
	return m.srv.ListenAndServe()
}

// Shutdown gracefully stops the metrics listener.
func (m *MetricsServer) Shutdown(ctx context.Context) error {
	return m.srv.Shutdown(ctx)
}

// RecordRegistration counts a successful registration.
func (m *MetricsServer) RecordRegistration() { m.registrations.Inc() }

// RecordRevocation counts a successful revocation.
func (m *MetricsServer) RecordRevocation() { m.revocations.Inc() }

// RecordVerification counts a verification attempt by result label
// ("valid" or "invalid").
func (m *MetricsServer) RecordVerification(result string) {
	m.verifications.WithLabelValues(result).Inc()
}

// RecordOperationError counts a failed operation by error kind.
func (m *MetricsServer) RecordOperationError(operation, kind string) {
	m.operationError.WithLabelValues(operation, kind).Inc()
}
