// Package metrics exposes the Prometheus instrumentation for the dispatch
// core: per-procedure request counts, auth failures, active sessions, and
// the handle bridge's outstanding reference count.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry groups the counters and gauges the dispatch core updates. A nil
// *Registry is valid and every method on it is a no-op, so callers that run
// with metrics disabled don't need to branch on every call site.
type Registry struct {
	requestsTotal     *prometheus.CounterVec
	requestErrors     *prometheus.CounterVec
	authFailuresTotal prometheus.Counter
	activeSessions    prometheus.Gauge
	openHandles       *prometheus.GaugeVec
}

// NewRegistry creates and registers the dispatch core's metrics against reg.
// Pass prometheus.NewRegistry() for an isolated registry, or
// prometheus.DefaultRegisterer to use the global one.
func NewRegistry(reg prometheus.Registerer) *Registry {
	factory := promauto.With(reg)
	return &Registry{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "virtd",
			Subsystem: "dispatch",
			Name:      "requests_total",
			Help:      "Total number of RPC requests dispatched, by procedure name and outcome.",
		}, []string{"procedure", "outcome"}),
		requestErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "virtd",
			Subsystem: "dispatch",
			Name:      "request_errors_total",
			Help:      "Total number of RPC requests that failed, by procedure name and error domain.",
		}, []string{"procedure", "domain"}),
		authFailuresTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "virtd",
			Subsystem: "auth",
			Name:      "failures_total",
			Help:      "Total number of failed SASL/GSSAPI authentication attempts.",
		}),
		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "virtd",
			Subsystem: "dispatch",
			Name:      "active_sessions",
			Help:      "Number of currently open client connections.",
		}),
		openHandles: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "virtd",
			Subsystem: "handle",
			Name:      "open_total",
			Help:      "Number of outstanding handle bridge references, by resource kind (domain, network).",
		}, []string{"kind"}),
	}
}

// ObserveRequest records one dispatched procedure call and its outcome
// ("success", "driver_error", "dispatch_error").
func (r *Registry) ObserveRequest(procedure, outcome string) {
	if r == nil {
		return
	}
	r.requestsTotal.WithLabelValues(procedure, outcome).Inc()
}

// ObserveRequestError records a failed procedure call's error domain (e.g.
// "driver", "dispatch").
func (r *Registry) ObserveRequestError(procedure, domain string) {
	if r == nil {
		return
	}
	r.requestErrors.WithLabelValues(procedure, domain).Inc()
}

// ObserveAuthFailure increments the authentication-failure counter.
func (r *Registry) ObserveAuthFailure() {
	if r == nil {
		return
	}
	r.authFailuresTotal.Inc()
}

// SessionOpened increments the active-sessions gauge.
func (r *Registry) SessionOpened() {
	if r == nil {
		return
	}
	r.activeSessions.Inc()
}

// SessionClosed decrements the active-sessions gauge.
func (r *Registry) SessionClosed() {
	if r == nil {
		return
	}
	r.activeSessions.Dec()
}

// HandleAcquired increments the open-handle gauge for kind ("domain" or
// "network").
func (r *Registry) HandleAcquired(kind string) {
	if r == nil {
		return
	}
	r.openHandles.WithLabelValues(kind).Inc()
}

// HandleReleased decrements the open-handle gauge for kind.
func (r *Registry) HandleReleased(kind string) {
	if r == nil {
		return
	}
	r.openHandles.WithLabelValues(kind).Dec()
}
