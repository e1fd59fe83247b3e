package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/specialistvlad/stmtreactor/internal/ctxlog"
	"github.com/specialistvlad/stmtreactor/internal/model"
	"github.com/specialistvlad/stmtreactor/internal/modelcache"
	"github.com/specialistvlad/stmtreactor/internal/reactor"
	"github.com/specialistvlad/stmtreactor/internal/source"
)

// Run executes the main application logic based on the configuration given
// to NewApp: it builds the source documents and renders the result. A failed
// build is rendered as a diagnostic before its error is returned.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.config.MetricsPort > 0 {
		if err := a.startMetricsServer(ctx); err != nil {
			return err
		}
		defer a.closeMetricsServer(ctx)
	}

	trees, err := a.loadSources(ctx)
	if err != nil {
		return fmt.Errorf("failed to load sources: %w", err)
	}
	if len(trees) == 0 {
		return fmt.Errorf("no source documents found in %v", a.config.SourcePaths)
	}

	start := time.Now()
	models, err := a.build(ctx, trees)
	if err != nil {
		a.renderError(err)
		return fmt.Errorf("build failed: %w", err)
	}
	a.logger.Info("All builds finished.", "builds", len(models), "duration", time.Since(start))

	a.mu.Lock()
	a.models = models
	a.mu.Unlock()

	if err := a.render(models); err != nil {
		return fmt.Errorf("failed to render model: %w", err)
	}
	a.logger.Debug("App.Run method finished.")
	return nil
}

func (a *App) newReactor(provider source.Provider) *reactor.Reactor {
	target, _ := a.config.target()
	opts := []reactor.Option{
		reactor.WithProvider(provider),
		reactor.WithMetrics(a.metrics),
		reactor.WithTargetPhase(target),
		reactor.WithFetchLimit(a.config.FetchWorkers),
	}
	if len(a.config.Features) > 0 {
		features, _ := a.config.features()
		opts = append(opts, reactor.WithSupportedFeatures(features...))
	}
	return reactor.New(a.registry, opts...)
}

// build runs one build over every tree, or in isolate mode one build per
// module with the remaining documents available on request.
func (a *App) build(ctx context.Context, trees []*source.Tree) ([]*model.Model, error) {
	lib := a.libraryProvider()
	if !a.config.Isolate {
		r := a.newReactor(lib)
		m, err := a.cache.GetOrBuild(ctx, a.cacheKey(r, trees...), func(ctx context.Context) (*model.Model, error) {
			return r.Build(ctx, trees...)
		})
		if err != nil {
			return nil, err
		}
		return []*model.Model{m}, nil
	}

	var provider source.Provider = source.NewMapProvider(trees...)
	if lib != nil {
		provider = source.Chain{provider, lib}
	}
	r := a.newReactor(provider)

	var roots []*source.Tree
	for _, t := range trees {
		if t.Root.Keyword == "module" {
			roots = append(roots, t)
		}
	}
	if len(roots) == 0 {
		return nil, errors.New("isolate mode needs at least one module document")
	}

	models := make([]*model.Model, len(roots))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.config.FetchWorkers)
	for i, root := range roots {
		g.Go(func() error {
			bctx := ctxlog.With(gctx, "root", root.ID.String())
			m, err := a.cache.GetOrBuild(bctx, a.cacheKey(r, root), func(ctx context.Context) (*model.Model, error) {
				return r.Build(ctx, root)
			})
			if err != nil {
				return fmt.Errorf("building %s: %w", root.ID, err)
			}
			models[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return models, nil
}

func (a *App) cacheKey(r *reactor.Reactor, trees ...*source.Tree) modelcache.Key {
	ids := make([]source.Identifier, len(trees))
	for i, t := range trees {
		ids[i] = t.ID
	}
	return modelcache.NewKey(r.TargetPhase(), ids...)
}
