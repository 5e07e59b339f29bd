package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/atlanticdynamic/hostbridge/internal/annotation"
	"github.com/atlanticdynamic/hostbridge/internal/config"
	"github.com/atlanticdynamic/hostbridge/internal/engines"
	"github.com/atlanticdynamic/hostbridge/internal/engines/polyscript"
	"github.com/atlanticdynamic/hostbridge/internal/engines/registry"
	"github.com/atlanticdynamic/hostbridge/internal/hostinfo"
	"github.com/atlanticdynamic/hostbridge/internal/metrics"
	"github.com/atlanticdynamic/hostbridge/internal/resolver"
	"github.com/atlanticdynamic/hostbridge/internal/shutter"
)

// bridge wires the registry, the polyscript engines and the visibility policy for one
// command invocation.
type bridge struct {
	cfg      *config.Config
	logger   *slog.Logger
	prom     *prometheus.Registry
	metrics  *metrics.Metrics
	markers  *annotation.Catalog
	shutter  shutter.Shutter
	watcher  *shutter.Watcher
	resolver []resolver.Option
	registry *registry.Registry
}

type bridgeOptions struct {
	// allowAll grants every exported member structurally, ignoring the allow-list.
	allowAll bool
	onReload func(*shutter.AllowList)
}

func newBridge(cfg *config.Config, opts bridgeOptions) (*bridge, error) {
	logger := slog.Default()
	b := &bridge{
		cfg:     cfg,
		logger:  logger,
		prom:    prometheus.NewRegistry(),
		markers: annotation.NewCatalog(),
		shutter: shutter.Default{},
	}
	b.metrics = metrics.New(b.prom)

	if err := hostinfo.Register(b.markers); err != nil {
		return nil, fmt.Errorf("failed to register host types: %w", err)
	}

	switch {
	case opts.allowAll:
		b.shutter = shutter.All{}
	case cfg.AllowList != "":
		w, err := shutter.NewWatcher(cfg.AllowList,
			shutter.WithWatcherLogger(logger.WithGroup("shutter")),
			shutter.WithOnReload(opts.onReload),
		)
		if err != nil {
			return nil, err
		}
		b.watcher = w
		b.shutter = w
	}

	b.resolver = []resolver.Option{
		resolver.WithCache(resolver.NewCache()),
		resolver.WithLogHandler(logger.Handler()),
		resolver.WithMetrics(b.metrics),
	}

	catalog := &engines.Catalog{}
	if err := polyscript.AnnounceTo(catalog,
		polyscript.WithLogHandler(logger.Handler()),
		polyscript.WithMarkers(b.markers),
		polyscript.WithShutter(b.shutter),
		polyscript.WithResolverOptions(b.resolver...),
	); err != nil {
		return nil, err
	}

	reg, err := registry.New(
		registry.WithLogHandler(logger.Handler()),
		registry.WithDiscoverer(catalog),
		registry.WithPrefix(polyscript.Prefix),
		registry.WithInjectors(cfg.Injectors(Version)...),
		registry.WithMetrics(b.metrics),
	)
	if err != nil {
		return nil, err
	}
	b.registry = reg
	return b, nil
}

// engine returns a new engine for mimeType configured from the config file.
func (b *bridge) engine(ctx context.Context, mimeType string) (engines.Engine, error) {
	return b.registry.Get(ctx, mimeType, b.cfg.EngineSettings(mimeType))
}

// resolverFor returns a resolver bound to eng sharing the bridge's cache and metrics.
func (b *bridge) resolverFor(eng engines.Engine) *resolver.Factory {
	return resolver.NewFactory(eng, b.shutter, b.resolver...)
}

// follow runs the allow-list watcher, if any, until ctx is done. The returned function stops
// it and waits for it to exit.
func (b *bridge) follow(ctx context.Context) (stop func()) {
	if b.watcher == nil {
		return func() {}
	}
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Go(func() {
		if err := b.watcher.Run(ctx); err != nil {
			b.logger.Warn("Allow-list watcher stopped", "error", err)
		}
	})
	return func() {
		cancel()
		wg.Wait()
	}
}
