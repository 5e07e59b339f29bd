// Package hostinfo holds the sample host types the CLI exposes to scripts. Each type shows a
// different way of declaring script members.
package hostinfo

import (
	"errors"
	"fmt"
	"maps"
	"reflect"
	"runtime"
	"slices"
	"time"

	"github.com/atlanticdynamic/hostbridge/internal/annotation"
	"github.com/atlanticdynamic/hostbridge/internal/engines/polyscript"
)

// ErrUnknownSetting is returned by Settings.Lookup for keys that were never set.
var ErrUnknownSetting = errors.New("unknown setting")

// Point is a mutable coordinate. Its accessors are declared through a registered table.
type Point struct {
	x, y int
}

// NewPoint returns a point at x, y.
func NewPoint(x, y int) *Point { return &Point{x: x, y: y} }

func (p *Point) GetX() int  { return p.x }
func (p *Point) SetX(x int) { p.x = x }
func (p *Point) GetY() int  { return p.y }
func (p *Point) SetY(y int) { p.y = y }

// Reset moves the point back to the origin.
func (p *Point) Reset() { p.x, p.y = 0, 0 }

// String implements fmt.Stringer.
func (p *Point) String() string { return fmt.Sprintf("(%d, %d)", p.x, p.y) }

// Runtime describes the Go runtime. Fields are declared with struct tags.
type Runtime struct {
	GOOS      string `script:"goos"`
	GOARCH    string `script:"goarch"`
	CPUs      int    `script:"cpus"`
	GoVersion string `script:"go_version,noenum"`

	started time.Time
}

// NewRuntime captures the current runtime.
func NewRuntime() *Runtime {
	return &Runtime{
		GOOS:      runtime.GOOS,
		GOARCH:    runtime.GOARCH,
		CPUs:      runtime.NumCPU(),
		GoVersion: runtime.Version(),
		started:   time.Now(),
	}
}

// NumGoroutine returns the current goroutine count.
func (r *Runtime) NumGoroutine() int { return runtime.NumGoroutine() }

// Uptime returns the time since the runtime was captured.
func (r *Runtime) Uptime() string { return time.Since(r.started).Round(time.Millisecond).String() }

// GC runs a garbage collection.
func (r *Runtime) GC() { runtime.GC() }

// Settings is a read-only key/value bag. It declares its own annotations.
type Settings struct {
	values map[string]any
}

var _ annotation.Annotated = Settings{}

// NewSettings copies values into a new bag.
func NewSettings(values map[string]any) *Settings {
	return &Settings{values: maps.Clone(values)}
}

// Lookup returns the value stored under key.
func (s *Settings) Lookup(key string) (any, error) {
	v, ok := s.values[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSetting, key)
	}
	return v, nil
}

// Len returns the number of keys.
func (s *Settings) Len() int { return len(s.values) }

// Keys returns the sorted keys.
func (s *Settings) Keys() []string { return slices.Sorted(maps.Keys(s.values)) }

// ScriptAnnotations declares Lookup as the object getter.
func (Settings) ScriptAnnotations() annotation.Table {
	return annotation.Table{
		Members: map[string]annotation.Member{
			"Lookup": {Role: annotation.RoleObjectGetter},
			"Len":    {Role: annotation.RoleGetter, Name: "size"},
			"Keys":   {Role: annotation.RoleFunction},
		},
	}
}

// Register adds the Point and Runtime tables to c. Settings is picked up from its hook.
func Register(c *annotation.Catalog) error {
	return errors.Join(
		c.Register(reflect.TypeFor[Point](), annotation.Table{
			Properties: true,
			Members: map[string]annotation.Member{
				"Reset": {Role: annotation.RoleFunction},
			},
			Constructors: []annotation.Constructor{
				{Name: "NewPoint", Func: NewPoint},
			},
		}),
		c.Register(reflect.TypeFor[Runtime](), annotation.Table{
			Members: map[string]annotation.Member{
				"NumGoroutine": {Role: annotation.RoleGetter, Name: "goroutines", Options: []string{annotation.OptNotEnumerable}},
				"Uptime":       {Role: annotation.RoleGetter},
				"GC":           {Role: annotation.RoleFunction, Name: "gc", Engines: []string{polyscript.RisorName}},
			},
		}),
	)
}

// Samples returns one instance of every sample type keyed by the name the CLI exposes it under.
func Samples(settings map[string]any) map[string]any {
	return map[string]any{
		"point":    NewPoint(3, 4),
		"runtime":  NewRuntime(),
		"settings": NewSettings(settings),
	}
}

// Types returns the sample types in display order.
func Types() []reflect.Type {
	return []reflect.Type{
		reflect.TypeFor[Point](),
		reflect.TypeFor[Runtime](),
		reflect.TypeFor[Settings](),
	}
}
