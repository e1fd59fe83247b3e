package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/specialistvlad/stmtreactor/internal/ctxlog"
	"github.com/specialistvlad/stmtreactor/internal/metrics"
	"github.com/specialistvlad/stmtreactor/internal/model"
	"github.com/specialistvlad/stmtreactor/internal/modelcache"
	"github.com/specialistvlad/stmtreactor/internal/registry"
	"github.com/specialistvlad/stmtreactor/internal/stmt"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	registry *registry.Registry
	metrics  *metrics.Metrics
	gatherer *prometheus.Registry
	cache    *modelcache.Cache

	httpServer *http.Server

	mu     sync.Mutex
	models []*model.Model
}

// NewApp is the constructor for the main application. Rendered models go to
// outW and logs to logW. modules replaces the default extension bundles; the
// built-in statements are always installed.
//
// An invalid registry is a programming error and panics.
func NewApp(outW, logW io.Writer, cfg *Config, modules ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	if len(modules) == 0 {
		modules = coreModules
	}
	reg, err := registry.NewBuilder().
		Install(stmt.Bundle{Lenient: cfg.Lenient}).
		Install(modules...).
		Build()
	if err != nil {
		panic(fmt.Errorf("invalid statement registry: %w", err))
	}
	ctxlog.FromContext(ctx).Debug("Statement registry built.", "modules", len(modules), "lenient", cfg.Lenient)

	m := metrics.New()
	gatherer := prometheus.NewRegistry()
	m.MustRegister(gatherer)

	return &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		registry: reg,
		metrics:  m,
		gatherer: gatherer,
		cache:    modelcache.New(m),
	}
}

// Registry returns the application's statement registry.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Gatherer exposes the application's metrics.
func (a *App) Gatherer() prometheus.Gatherer {
	return a.gatherer
}

// Models returns the models published by the last successful Run, one per
// build.
func (a *App) Models() []*model.Model {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]*model.Model(nil), a.models...)
}
