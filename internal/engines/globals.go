package engines

import (
	"fmt"
	"maps"
	"slices"
	"sync"
)

// GlobalContext holds the values every engine created by a registry starts with.
type GlobalContext struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewGlobalContext returns an empty context.
func NewGlobalContext() *GlobalContext {
	return &GlobalContext{values: make(map[string]any)}
}

// Set defines name. Names are write-once.
func (g *GlobalContext) Set(name string, value any) error {
	if name == "" {
		return ErrEmptyGlobalName
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.values[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateGlobal, name)
	}
	g.values[name] = value
	return nil
}

// Get returns the value for name.
func (g *GlobalContext) Get(name string) (any, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	v, ok := g.values[name]
	return v, ok
}

// Names returns the defined names in sorted order.
func (g *GlobalContext) Names() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return slices.Sorted(maps.Keys(g.values))
}

// Len returns the number of defined names.
func (g *GlobalContext) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.values)
}

// Snapshot returns a copy of the current values.
func (g *GlobalContext) Snapshot() map[string]any {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return maps.Clone(g.values)
}

// Injector augments a GlobalContext. Registries run every injector at most once.
type Injector interface {
	Name() string
	RegisterInto(g *GlobalContext) error
}

// InjectorFunc adapts a function into an Injector.
type InjectorFunc struct {
	ID string
	Fn func(g *GlobalContext) error
}

func (f InjectorFunc) Name() string                        { return f.ID }
func (f InjectorFunc) RegisterInto(g *GlobalContext) error { return f.Fn(g) }
