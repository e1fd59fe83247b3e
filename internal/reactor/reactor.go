package reactor

import (
	"context"

	"github.com/specialistvlad/stmtreactor/internal/metrics"
	"github.com/specialistvlad/stmtreactor/internal/model"
	"github.com/specialistvlad/stmtreactor/internal/phase"
	"github.com/specialistvlad/stmtreactor/internal/registry"
	"github.com/specialistvlad/stmtreactor/internal/source"
	"github.com/specialistvlad/stmtreactor/internal/stmtid"
)

const defaultFetchLimit = 8

// Reactor is the immutable configuration shared by builds.
type Reactor struct {
	registry   *registry.Registry
	provider   source.Provider
	metrics    *metrics.Metrics
	target     phase.Phase
	fetchLimit int
	// features is nil when every feature is supported.
	features map[stmtid.QName]bool
}

// Option configures a Reactor.
type Option func(*Reactor)

// WithProvider sets the provider used to fetch sources that are requested
// but were not added to the build.
func WithProvider(p source.Provider) Option {
	return func(r *Reactor) {
		r.provider = p
	}
}

// WithMetrics enables instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Reactor) {
		r.metrics = m
	}
}

// WithTargetPhase stops builds after the given phase. Only FullDeclaration
// (a declared-only model) and EffectiveModel are valid.
func WithTargetPhase(p phase.Phase) Option {
	return func(r *Reactor) {
		r.target = p
	}
}

// WithFetchLimit bounds the number of concurrent provider fetches.
func WithFetchLimit(n int) Option {
	return func(r *Reactor) {
		if n > 0 {
			r.fetchLimit = n
		}
	}
}

// WithSupportedFeatures limits the features builds support. Statements
// whose if-feature conditions do not hold are left out of the effective
// model. Features match by namespace and name, whatever the revision.
// Without this option every feature is supported.
func WithSupportedFeatures(features ...stmtid.QName) Option {
	return func(r *Reactor) {
		r.features = make(map[stmtid.QName]bool, len(features))
		for _, f := range features {
			r.features[featureKey(f)] = true
		}
	}
}

func featureKey(q stmtid.QName) stmtid.QName {
	return stmtid.NewQName(stmtid.NewModule(q.Module.Namespace, ""), q.Local)
}

func (r *Reactor) supportsFeature(q stmtid.QName) bool {
	return r.features == nil || r.features[featureKey(q)]
}

// New creates a reactor over a validated registry.
func New(reg *registry.Registry, opts ...Option) *Reactor {
	r := &Reactor{
		registry:   reg,
		target:     phase.EffectiveModel,
		fetchLimit: defaultFetchLimit,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// TargetPhase returns the phase builds stop after.
func (r *Reactor) TargetPhase() phase.Phase {
	return r.target
}

// Build runs a single build over the given trees.
func (r *Reactor) Build(ctx context.Context, trees ...*source.Tree) (*model.Model, error) {
	b := r.NewBuild()
	for _, t := range trees {
		if err := b.AddSource(t); err != nil {
			return nil, err
		}
	}
	return b.Run(ctx)
}
