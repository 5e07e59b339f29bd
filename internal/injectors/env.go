package injectors

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/atlanticdynamic/hostbridge/internal/engines"
	"github.com/atlanticdynamic/hostbridge/internal/interpolation"
)

var _ engines.Injector = (*Env)(nil)

// EnvGlobal is the global defined by Env.
const EnvGlobal = "env"

// Env defines an "env" map holding selected environment variables. Nothing else from the
// environment is visible to scripts.
type Env struct {
	// Allow lists variables copied as-is when set.
	Allow []string
	// Vars maps script-visible names to ${VAR:default} templates.
	Vars map[string]string

	lookup interpolation.LookupFunc
}

// NewEnv returns an Env reading the process environment.
func NewEnv(allow []string, vars map[string]string) *Env {
	return &Env{Allow: allow, Vars: vars, lookup: os.LookupEnv}
}

// Name returns "env".
func (e *Env) Name() string { return EnvGlobal }

// RegisterInto defines the env map. A template referencing an unset variable without a
// default fails the whole injector.
func (e *Env) RegisterInto(g *engines.GlobalContext) error {
	lookup := e.lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}

	out := make(map[string]any, len(e.Allow)+len(e.Vars))
	for _, name := range e.Allow {
		if v, ok := lookup(name); ok {
			out[name] = v
		}
	}

	var errs []error
	for _, name := range slices.Sorted(maps.Keys(e.Vars)) {
		v, err := interpolation.Expand(e.Vars[name], lookup)
		if err != nil {
			errs = append(errs, fmt.Errorf("env %s: %w", name, err))
			continue
		}
		out[name] = v
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return g.Set(EnvGlobal, out)
}
