package config

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/atlanticdynamic/hostbridge/internal/engines"
	"github.com/atlanticdynamic/hostbridge/internal/injectors"
)

// reserved are the globals defined by the built-in injectors.
var reserved = []string{injectors.HostGlobal, injectors.EnvGlobal, injectors.LocationGlobal}

// Validate performs comprehensive validation of the configuration
func (c *Config) Validate() error {
	if c.Version == "" {
		c.Version = VersionLatest
	}
	if c.Version != VersionLatest {
		return fmt.Errorf("%w: %s", ErrUnsupportedConfigVer, c.Version)
	}

	var errz []error

	if err := c.Logging.Validate(); err != nil {
		errz = append(errz, fmt.Errorf("logging: %w", err))
	}

	seen := make(map[string]string, len(c.Engines))
	for _, key := range slices.Sorted(maps.Keys(c.Engines)) {
		mt, err := engines.NormalizeMIMEType(key)
		if err != nil {
			errz = append(errz, fmt.Errorf("%w: %q", ErrInvalidMIMEType, key))
			continue
		}
		if prev, ok := seen[mt]; ok {
			errz = append(errz, fmt.Errorf("%w: %q and %q are the same type", ErrInvalidMIMEType, prev, key))
			continue
		}
		seen[mt] = key
		if _, err := c.Engines[key].Timeout(); err != nil {
			errz = append(errz, fmt.Errorf("%w for %s: %w", ErrInvalidSettings, key, err))
		}
	}

	for name := range c.Globals {
		switch {
		case name == "":
			errz = append(errz, fmt.Errorf("globals: %w", ErrEmptyName))
		case slices.Contains(reserved, name):
			errz = append(errz, fmt.Errorf("%w: %s", ErrReservedGlobal, name))
		}
	}

	for _, name := range c.Env.Allow {
		if name == "" {
			errz = append(errz, fmt.Errorf("env.allow: %w", ErrEmptyName))
		}
	}
	for name := range c.Env.Vars {
		if name == "" {
			errz = append(errz, fmt.Errorf("env.vars: %w", ErrEmptyName))
		}
	}

	if c.Location != "" {
		if _, err := injectors.Location(c.Location); err != nil {
			errz = append(errz, fmt.Errorf("%w: %w", ErrInvalidLocation, err))
		}
	}

	return errors.Join(errz...)
}
