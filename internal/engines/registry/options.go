package registry

import (
	"log/slog"

	"github.com/atlanticdynamic/hostbridge/internal/engines"
	"github.com/atlanticdynamic/hostbridge/internal/metrics"
)

// Option represents a functional option for configuring a Registry.
type Option func(*Registry)

// WithLogHandler sets a custom slog handler for the Registry.
func WithLogHandler(handler slog.Handler) Option {
	return func(r *Registry) {
		if handler != nil {
			r.logger = slog.New(handler).WithGroup("registry.Registry")
		}
	}
}

// WithLogger sets a logger for the Registry.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithDiscoverer replaces the process-wide engines catalog as the source of factories.
func WithDiscoverer(d engines.Discoverer) Option {
	return func(r *Registry) {
		if d != nil {
			r.discoverer = d
		}
	}
}

// WithPrefix sets the discovery prefix.
func WithPrefix(prefix string) Option {
	return func(r *Registry) {
		if prefix != "" {
			r.prefix = prefix
		}
	}
}

// WithFactories registers factories ahead of anything discovered.
func WithFactories(factories ...engines.Factory) Option {
	return func(r *Registry) {
		r.explicit = append(r.explicit, factories...)
	}
}

// WithInjectors adds injectors run once before the first engine is created.
func WithInjectors(injectors ...engines.Injector) Option {
	return func(r *Registry) {
		r.injectors = append(r.injectors, injectors...)
	}
}

// WithGlobalContext sets the context injectors write into.
func WithGlobalContext(g *engines.GlobalContext) Option {
	return func(r *Registry) {
		if g != nil {
			r.globals = g
		}
	}
}

// WithMetrics records engine requests and injector runs.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Registry) {
		r.metrics = m
	}
}
