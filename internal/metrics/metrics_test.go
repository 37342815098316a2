package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_ObserveRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewRegistry(reg)

	m.ObserveRequest("DomainLookupByName", "success")
	m.ObserveRequest("DomainLookupByName", "success")
	m.ObserveRequest("DomainDestroy", "driver_error")

	families, err := reg.Gather()
	require.NoError(t, err)

	metric := findMetric(t, families, "virtd_dispatch_requests_total", map[string]string{
		"procedure": "DomainLookupByName", "outcome": "success",
	})
	assert.Equal(t, float64(2), metric.GetCounter().GetValue())
}

func TestRegistry_SessionGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewRegistry(reg)

	m.SessionOpened()
	m.SessionOpened()
	m.SessionClosed()

	families, err := reg.Gather()
	require.NoError(t, err)

	metric := findMetric(t, families, "virtd_dispatch_active_sessions", nil)
	assert.Equal(t, float64(1), metric.GetGauge().GetValue())
}

func TestRegistry_NilIsNoOp(t *testing.T) {
	var m *Registry
	assert.NotPanics(t, func() {
		m.ObserveRequest("x", "success")
		m.ObserveRequestError("x", "driver")
		m.ObserveAuthFailure()
		m.SessionOpened()
		m.SessionClosed()
		m.HandleAcquired("domain")
		m.HandleReleased("domain")
	})
}

func findMetric(t *testing.T, families []*dto.MetricFamily, name string, labels map[string]string) *dto.Metric {
	t.Helper()
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			if labelsMatch(metric, labels) {
				return metric
			}
		}
	}
	t.Fatalf("metric %s with labels %v not found", name, labels)
	return nil
}

func labelsMatch(metric *dto.Metric, want map[string]string) bool {
	if len(want) == 0 {
		return true
	}
	got := make(map[string]string, len(metric.GetLabel()))
	for _, lp := range metric.GetLabel() {
		got[lp.GetName()] = lp.GetValue()
	}
	for k, v := range want {
		if got[k] != v {
			return false
		}
	}
	return true
}
