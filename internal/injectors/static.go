// Package injectors provides the built-in global-context injectors.
package injectors

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/atlanticdynamic/hostbridge/internal/engines"
)

var _ engines.Injector = Static{}

// Static defines one global per entry of Data.
type Static struct {
	Data map[string]any
}

// Name returns "static".
func (Static) Name() string { return "static" }

// RegisterInto defines every entry; all failures are reported together.
func (s Static) RegisterInto(g *engines.GlobalContext) error {
	var errs []error
	for _, name := range slices.Sorted(maps.Keys(s.Data)) {
		if err := g.Set(name, s.Data[name]); err != nil {
			errs = append(errs, fmt.Errorf("static %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}
