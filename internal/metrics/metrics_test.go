package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RegistersCollectors(t *testing.T) {
	m := New()
	reg := prometheus.NewRegistry()
	require.NotPanics(t, func() { m.MustRegister(reg) })

	m.ObserveBuild(0.01, "success")
	m.ObservePhase("init", 0.001)
	m.ActionApplied()
	m.ActionApplied()
	m.ActionUnresolved()
	m.Instantiated("context-independent")
	m.Fetched("not_found")
	m.CacheLookup("hit")

	assert.Equal(t, 1, testutil.CollectAndCount(m.builds))
	assert.Equal(t, 2, testutil.CollectAndCount(m.actions))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.actions.WithLabelValues("applied")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.fetches.WithLabelValues("not_found")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.phaseDuration))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveBuild(1, "error")
		m.ObservePhase("init", 1)
		m.ActionApplied()
		m.ActionUnresolved()
		m.Instantiated("declared-copy")
		m.Fetched("success")
		m.CacheLookup("miss")
	})
}
