package resolver

import (
	"log/slog"

	"github.com/atlanticdynamic/hostbridge/internal/metrics"
)

// Option represents a functional option for configuring a Factory.
type Option func(*Factory)

// WithLogHandler sets a custom slog handler for the Factory.
func WithLogHandler(handler slog.Handler) Option {
	return func(f *Factory) {
		if handler != nil {
			f.logger = slog.New(handler).WithGroup("resolver.Factory")
		}
	}
}

// WithLogger sets a logger for the Factory.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Factory) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithCache replaces the process-wide cache, mostly useful to isolate tests.
func WithCache(c *Cache) Option {
	return func(f *Factory) {
		if c != nil {
			f.cache = c
		}
	}
}

// WithMetrics records cache lookups.
func WithMetrics(m *metrics.Metrics) Option {
	return func(f *Factory) {
		f.metrics = m
	}
}
