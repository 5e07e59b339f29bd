package polyscript

import (
	"log/slog"

	"github.com/atlanticdynamic/hostbridge/internal/annotation"
	"github.com/atlanticdynamic/hostbridge/internal/resolver"
	"github.com/atlanticdynamic/hostbridge/internal/shutter"
)

// Option represents a functional option for configuring a Factory.
type Option func(*Factory)

// WithLogHandler sets a custom slog handler for the Factory and its engines.
func WithLogHandler(handler slog.Handler) Option {
	return func(f *Factory) {
		if handler != nil {
			f.logger = slog.New(handler).WithGroup("polyscript." + f.name)
		}
	}
}

// WithMarkers sets the annotation fallback used when exposing host objects.
func WithMarkers(m annotation.Markers) Option {
	return func(f *Factory) {
		if m != nil {
			f.markers = m
		}
	}
}

// WithShutter sets the visibility policy used when exposing host objects.
func WithShutter(sh shutter.Shutter) Option {
	return func(f *Factory) {
		if sh != nil {
			f.shutter = sh
		}
	}
}

// WithResolverOptions passes options to every resolver the engines create.
func WithResolverOptions(opts ...resolver.Option) Option {
	return func(f *Factory) {
		f.resolverOps = append(f.resolverOps, opts...)
	}
}
