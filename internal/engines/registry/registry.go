// Package registry maps MIME types to script engine factories.
//
// A Registry is lazy: factory discovery runs on first use, and the injectors run once on the
// first Get that finds a factory. Both steps happen at most once under a mutex; once the
// factory table is published it is read without locking.
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/atlanticdynamic/hostbridge/internal/engines"
	"github.com/atlanticdynamic/hostbridge/internal/engines/finitestate"
	"github.com/atlanticdynamic/hostbridge/internal/metrics"
)

// Registry hands out script engines by MIME type.
type Registry struct {
	logger     *slog.Logger
	discoverer engines.Discoverer
	prefix     string
	explicit   []engines.Factory
	injectors  []engines.Injector
	globals    *engines.GlobalContext
	metrics    *metrics.Metrics
	fsm        finitestate.Machine

	mu         sync.Mutex
	discovered atomic.Bool
	injected   atomic.Bool
	factories  atomic.Pointer[map[string]engines.Factory]
}

// New creates a Registry. Nothing is discovered until the first lookup.
func New(opts ...Option) (*Registry, error) {
	r := &Registry{
		logger:     slog.Default().WithGroup("registry.Registry"),
		discoverer: engines.DefaultCatalog(),
		prefix:     engines.DefaultPrefix,
		globals:    engines.NewGlobalContext(),
	}
	for _, opt := range opts {
		opt(r)
	}

	machine, err := finitestate.New(r.logger.Handler())
	if err != nil {
		return nil, fmt.Errorf("failed to create registry state machine: %w", err)
	}
	r.fsm = machine
	return r, nil
}

var defaultRegistry = sync.OnceValues(func() (*Registry, error) {
	return New()
})

// Default returns the process-wide registry backed by the default engines catalog.
func Default() (*Registry, error) {
	return defaultRegistry()
}

// State returns the lifecycle state.
func (r *Registry) State() string {
	return r.fsm.GetState()
}

// Globals returns the context injectors write into.
func (r *Registry) Globals() *engines.GlobalContext {
	return r.globals
}

// MIMETypes returns the registered MIME types in sorted order.
func (r *Registry) MIMETypes() []string {
	return slices.Sorted(maps.Keys(r.table()))
}

// Has reports whether a factory serves mimeType.
func (r *Registry) Has(mimeType string) bool {
	_, ok := r.Factory(mimeType)
	return ok
}

// Factory returns the factory serving mimeType.
func (r *Registry) Factory(mimeType string) (engines.Factory, bool) {
	key, err := engines.NormalizeMIMEType(mimeType)
	if err != nil {
		return nil, false
	}
	f, ok := r.table()[key]
	return f, ok
}

// Get creates a new engine for mimeType, passing settings to its factory unmodified. The
// engine starts with every value of the global context. Unknown MIME types return
// engines.ErrNotFound.
func (r *Registry) Get(ctx context.Context, mimeType string, settings engines.Settings) (engines.Engine, error) {
	key, err := engines.NormalizeMIMEType(mimeType)
	if err != nil {
		r.metrics.EngineRequest(metrics.EngineNotFound)
		return nil, fmt.Errorf("%w: %w", engines.ErrNotFound, err)
	}

	factory, ok := r.table()[key]
	if !ok {
		r.metrics.EngineRequest(metrics.EngineNotFound)
		return nil, fmt.Errorf("%w: %s", engines.ErrNotFound, key)
	}

	r.ensureInjected()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	engine, err := factory.NewEngine(settings)
	if err != nil {
		r.metrics.EngineRequest(metrics.EngineError)
		return nil, fmt.Errorf("factory %s failed to create engine for %s: %w", factory.Name(), key, err)
	}

	globals := r.globals.Snapshot()
	for _, name := range slices.Sorted(maps.Keys(globals)) {
		if err := engine.Inject(name, globals[name]); err != nil {
			r.metrics.EngineRequest(metrics.EngineError)
			return nil, fmt.Errorf("failed to inject global %s into %s engine: %w", name, factory.Name(), err)
		}
	}

	r.metrics.EngineRequest(metrics.EngineCreated)
	r.logger.Debug("Created script engine", "mime", key, "engine", engine.Name(), "id", engine.ID())
	return engine, nil
}

// table returns the published factory table, discovering it first if needed.
func (r *Registry) table() map[string]engines.Factory {
	if r.discovered.Load() {
		return *r.factories.Load()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.discovered.Load() {
		r.discover()
	}
	return *r.factories.Load()
}

// discover builds the factory table. Callers hold r.mu.
func (r *Registry) discover() {
	candidates := make([]any, 0, len(r.explicit))
	for _, f := range r.explicit {
		candidates = append(candidates, f)
	}
	candidates = append(candidates, r.discoverer.Discover(r.prefix)...)

	table := make(map[string]engines.Factory)
	for _, c := range candidates {
		factory, ok := c.(engines.Factory)
		if !ok {
			r.logger.Debug("Skipping discovery candidate", "type", fmt.Sprintf("%T", c))
			continue
		}
		for _, mt := range factory.MIMETypes() {
			key, err := engines.NormalizeMIMEType(mt)
			if err != nil {
				r.logger.Warn("Ignoring invalid MIME type", "factory", factory.Name(), "error", err)
				continue
			}
			if existing, dup := table[key]; dup {
				r.logger.Warn("Ignoring duplicate factory for MIME type",
					"mime", key,
					"factory", factory.Name(),
					"registered", existing.Name(),
				)
				continue
			}
			table[key] = factory
		}
	}

	r.factories.Store(&table)
	r.discovered.Store(true)
	r.metrics.SetFactories(len(table))
	r.transition(finitestate.StatusUninitialized, finitestate.StatusFactoriesRegistered)
	r.logger.Debug("Registered script engine factories", "prefix", r.prefix, "count", len(table))
}

// ensureInjected runs every injector once.
func (r *Registry) ensureInjected() {
	if r.injected.Load() {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.injected.Load() {
		return
	}

	for _, inj := range r.injectors {
		if err := inj.RegisterInto(r.globals); err != nil {
			r.metrics.InjectorRun(inj.Name(), metrics.InjectorError)
			r.logger.Error("Injector failed", "injector", inj.Name(), "error", err)
			continue
		}
		r.metrics.InjectorRun(inj.Name(), metrics.InjectorOK)
	}
	r.transition(finitestate.StatusFactoriesRegistered, finitestate.StatusInjectorsRegistered)
	r.transition(finitestate.StatusInjectorsRegistered, finitestate.StatusReady)
	r.injected.Store(true)
}

func (r *Registry) transition(from, to string) {
	if err := r.fsm.TransitionIfCurrentState(from, to); err != nil {
		r.logger.Error("Invalid registry state transition", "from", from, "to", to, "error", err)
	}
}
