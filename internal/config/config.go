// Package config loads the hostbridge TOML configuration and turns it into engine settings
// and global-context injectors.
package config

import (
	"maps"
	"slices"

	"github.com/atlanticdynamic/hostbridge/internal/config/logs"
	"github.com/atlanticdynamic/hostbridge/internal/engines"
	"github.com/atlanticdynamic/hostbridge/internal/injectors"
)

const (
	VersionLatest  = "v1"
	VersionUnknown = "unknown"
)

// Config is the root of the configuration file.
type Config struct {
	Version string      `toml:"version"`
	Logging logs.Config `toml:"logging" env_interpolation:"yes"`
	// AllowList is the path of a shutter allow-list file. Empty means nothing is granted
	// structurally.
	AllowList string `toml:"allowlist" env_interpolation:"yes"`
	// Location is the base URL published as the "location" global.
	Location string `toml:"location" env_interpolation:"yes"`
	// Engines holds per-MIME-type settings passed to the engine factories.
	Engines map[string]engines.Settings `toml:"engines"`
	// Globals is static data published to every engine.
	Globals map[string]any `toml:"globals" env_interpolation:"yes"`
	Env     Env            `toml:"env"`
}

// Env selects what scripts see of the process environment.
type Env struct {
	Allow []string `toml:"allow"`
	// Vars maps script-visible names to ${VAR:default} templates, expanded when the
	// injector runs.
	Vars map[string]string `toml:"vars"`
}

// EngineSettings returns a copy of the settings configured for mimeType. MIME types are
// compared after normalization, so "Text/X-Risor; charset=utf-8" finds "text/x-risor".
func (c *Config) EngineSettings(mimeType string) engines.Settings {
	want, err := engines.NormalizeMIMEType(mimeType)
	if err != nil {
		return engines.Settings{}
	}
	for _, key := range slices.Sorted(maps.Keys(c.Engines)) {
		if got, err := engines.NormalizeMIMEType(key); err == nil && got == want {
			return c.Engines[key].Clone()
		}
	}
	return engines.Settings{}
}

// Injectors returns the injectors described by the configuration. The host injector is
// always present.
func (c *Config) Injectors(version string) []engines.Injector {
	out := []engines.Injector{injectors.NewHost(version)}
	if len(c.Globals) > 0 {
		out = append(out, injectors.Static{Data: maps.Clone(c.Globals)})
	}
	if len(c.Env.Allow) > 0 || len(c.Env.Vars) > 0 {
		out = append(out, injectors.NewEnv(slices.Clone(c.Env.Allow), maps.Clone(c.Env.Vars)))
	}
	if c.Location != "" {
		out = append(out, &injectors.URL{Base: c.Location})
	}
	return out
}
