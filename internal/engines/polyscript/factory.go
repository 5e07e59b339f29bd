// Package polyscript serves script engines backed by go-polyscript evaluators.
package polyscript

import (
	"log/slog"
	"slices"

	"github.com/robbyt/go-polyscript/engines/risor"
	"github.com/robbyt/go-polyscript/engines/starlark"
	"github.com/robbyt/go-polyscript/platform"
	"github.com/robbyt/go-polyscript/platform/script/loader"

	"github.com/atlanticdynamic/hostbridge/internal/annotation"
	"github.com/atlanticdynamic/hostbridge/internal/engines"
	"github.com/atlanticdynamic/hostbridge/internal/resolver"
	"github.com/atlanticdynamic/hostbridge/internal/shutter"
)

const (
	RisorName    = "risor"
	StarlarkName = "starlark"
)

var (
	RisorMIMETypes    = []string{"application/x-risor", "text/x-risor"}
	StarlarkMIMETypes = []string{"application/x-starlark", "text/x-starlark"}
)

type compileFunc func(handler slog.Handler, ldr loader.Loader) (platform.Evaluator, error)

func compileRisor(handler slog.Handler, ldr loader.Loader) (platform.Evaluator, error) {
	ev, err := risor.FromRisorLoader(handler, ldr)
	if err != nil {
		return nil, err
	}
	return ev, nil
}

func compileStarlark(handler slog.Handler, ldr loader.Loader) (platform.Evaluator, error) {
	ev, err := starlark.FromStarlarkLoader(handler, ldr)
	if err != nil {
		return nil, err
	}
	return ev, nil
}

var _ engines.Factory = (*Factory)(nil)

// Factory creates engines of one go-polyscript family.
type Factory struct {
	name        string
	mimeTypes   []string
	compile     compileFunc
	logger      *slog.Logger
	markers     annotation.Markers
	shutter     shutter.Shutter
	resolverOps []resolver.Option

	// callables is set for families whose runtime wraps Go funcs as script functions.
	callables bool
}

// NewRisorFactory returns the factory for Risor scripts.
func NewRisorFactory(opts ...Option) *Factory {
	f := newFactory(RisorName, RisorMIMETypes, compileRisor, opts...)
	f.callables = true
	return f
}

// NewStarlarkFactory returns the factory for Starlark scripts.
func NewStarlarkFactory(opts ...Option) *Factory {
	return newFactory(StarlarkName, StarlarkMIMETypes, compileStarlark, opts...)
}

func newFactory(name string, mimeTypes []string, compile compileFunc, opts ...Option) *Factory {
	f := &Factory{
		name:      name,
		mimeTypes: mimeTypes,
		compile:   compile,
		logger:    slog.Default().WithGroup("polyscript." + name),
		markers:   annotation.Default,
		shutter:   shutter.Default{},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Prefix is the discovery prefix the factories are announced under.
const Prefix = engines.DefaultPrefix + ".polyscript"

// Announce adds the Risor and Starlark factories to the process-wide engines catalog.
func Announce(opts ...Option) error {
	return AnnounceTo(engines.DefaultCatalog(), opts...)
}

// AnnounceTo adds the Risor and Starlark factories to c.
func AnnounceTo(c *engines.Catalog, opts ...Option) error {
	if err := c.Announce(Prefix, NewRisorFactory(opts...)); err != nil {
		return err
	}
	return c.Announce(Prefix, NewStarlarkFactory(opts...))
}

// Name returns the engine family name.
func (f *Factory) Name() string { return f.name }

// MIMETypes returns the served MIME types.
func (f *Factory) MIMETypes() []string { return slices.Clone(f.mimeTypes) }

// NewEngine creates an engine. Settings are validated here so a bad timeout fails early.
func (f *Factory) NewEngine(settings engines.Settings) (engines.Engine, error) {
	return newEngine(f, settings)
}
