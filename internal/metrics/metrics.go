// Package metrics provides Prometheus instrumentation for reactor builds.
//
// A nil *Metrics is valid and records nothing, so the reactor can be used
// without a registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "stmtreactor"
	subsystem = "build"
)

// Metrics holds the collectors of one process.
type Metrics struct {
	builds        *prometheus.CounterVec
	buildDuration *prometheus.HistogramVec
	phaseDuration *prometheus.HistogramVec
	actions       *prometheus.CounterVec
	copies        *prometheus.CounterVec
	fetches       *prometheus.CounterVec
	cache         *prometheus.CounterVec
}

// New creates an unregistered set of collectors.
func New() *Metrics {
	return &Metrics{
		builds: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "total",
				Help:      "Builds run, by result.",
			},
			[]string{"result"}, // "success", "unresolved" or "error"
		),
		buildDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "duration_seconds",
				Help:      "Wall time of a whole build in seconds.",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10), // 100µs to ~26s
			},
			[]string{"result"},
		),
		phaseDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "phase_duration_seconds",
				Help:      "Wall time of one phase across every source of a build.",
				Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
			[]string{"phase"},
		),
		actions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "inference_actions_total",
				Help:      "Inference actions, by outcome.",
			},
			[]string{"outcome"}, // "applied" or "unresolved"
		),
		copies: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "instantiations_total",
				Help:      "Statements instantiated by the copy engine, by copy policy.",
			},
			[]string{"policy"},
		),
		fetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "source_fetches_total",
				Help:      "Lazy source fetches, by result.",
			},
			[]string{"result"}, // "success", "not_found" or "error"
		),
		cache: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "model_cache",
				Name:      "lookups_total",
				Help:      "Shared model cache lookups, by result.",
			},
			[]string{"result"}, // "hit", "shared", "miss" or "abandoned"
		),
	}
}

// MustRegister registers the metrics with the given Prometheus registry.
func (m *Metrics) MustRegister(registry prometheus.Registerer) {
	registry.MustRegister(m.builds, m.buildDuration, m.phaseDuration, m.actions, m.copies, m.fetches, m.cache)
}

// ObserveBuild records a finished build. result is "success", "unresolved"
// or "error".
func (m *Metrics) ObserveBuild(durationSeconds float64, result string) {
	if m == nil {
		return
	}
	m.builds.WithLabelValues(result).Inc()
	m.buildDuration.WithLabelValues(result).Observe(durationSeconds)
}

// ObservePhase records the duration of one phase.
func (m *Metrics) ObservePhase(phase string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.phaseDuration.WithLabelValues(phase).Observe(durationSeconds)
}

// ActionApplied counts an inference action that ran.
func (m *Metrics) ActionApplied() {
	if m == nil {
		return
	}
	m.actions.WithLabelValues("applied").Inc()
}

// ActionUnresolved counts an inference action that missed its deadline.
func (m *Metrics) ActionUnresolved() {
	if m == nil {
		return
	}
	m.actions.WithLabelValues("unresolved").Inc()
}

// Instantiated counts one statement produced by the copy engine.
func (m *Metrics) Instantiated(policy string) {
	if m == nil {
		return
	}
	m.copies.WithLabelValues(policy).Inc()
}

// Fetched counts one lazy source fetch.
func (m *Metrics) Fetched(result string) {
	if m == nil {
		return
	}
	m.fetches.WithLabelValues(result).Inc()
}

// CacheLookup counts one shared model cache lookup.
func (m *Metrics) CacheLookup(result string) {
	if m == nil {
		return
	}
	m.cache.WithLabelValues(result).Inc()
}
