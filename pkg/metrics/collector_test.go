package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoOpCollector(t *testing.T) {
	c := NewNoOpCollector()
	c.IncrementCounter("validations_total", "mode", "strict")
	c.RecordHistogram("validation_duration_seconds", 0.1)
	c.RecordGauge("active_policies", 3)

	timer := c.StartTimer("noop_timer")
	assert.GreaterOrEqual(t, timer.Stop(), 0.0)
}

func TestPrometheusCollector_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewPrometheusCollectorWith(reg)

	c.IncrementCounter("decisions_total", "mode", "strict", "reason", "policy_violation")
	c.IncrementCounter("decisions_total", "mode", "strict", "reason", "policy_violation")
	c.IncrementCounter("decisions_total", "mode", "moderate", "reason", "none")

	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	assert.Equal(t, "decisions_total", families[0].GetName())
	assert.Len(t, families[0].GetMetric(), 2)
}

func TestPrometheusCollector_TimerRecordsHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewPrometheusCollectorWith(reg)

	timer := c.StartTimer("validation_duration_seconds")
	elapsed := timer.Stop()
	assert.GreaterOrEqual(t, elapsed, 0.0)

	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	assert.Equal(t, "validation_duration_seconds", families[0].GetName())
}

func TestPrometheusCollector_Gauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewPrometheusCollectorWith(reg)

	c.RecordGauge("known_roles", 4)
	c.RecordGauge("known_roles", 5)

	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	assert.Equal(t, 5.0, families[0].GetMetric()[0].GetGauge().GetValue())
}
