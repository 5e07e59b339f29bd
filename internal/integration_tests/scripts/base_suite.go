package scripts

import (
	"github.com/stretchr/testify/suite"

	"github.com/atlanticdynamic/hostbridge/internal/annotation"
	"github.com/atlanticdynamic/hostbridge/internal/config"
	"github.com/atlanticdynamic/hostbridge/internal/engines"
	"github.com/atlanticdynamic/hostbridge/internal/engines/polyscript"
	"github.com/atlanticdynamic/hostbridge/internal/engines/registry"
	"github.com/atlanticdynamic/hostbridge/internal/hostinfo"
	"github.com/atlanticdynamic/hostbridge/internal/shutter"
)

// ScriptIntegrationTestSuite is a base test suite for running scripts through a registry built
// from a configuration file.
type ScriptIntegrationTestSuite struct {
	suite.Suite
	cfg      *config.Config
	registry *registry.Registry
}

// SetupWithEmbeddedConfig loads and validates configuration from embedded bytes
func (s *ScriptIntegrationTestSuite) SetupWithEmbeddedConfig(configBytes []byte) *config.Config {
	cfg, err := config.NewConfigFromBytes(configBytes)
	s.Require().NoError(err, "Should load config from embedded bytes")
	s.Require().NotNil(cfg, "Config should not be nil")
	s.cfg = cfg
	return cfg
}

// SetupRegistry builds a registry over the risor and starlark factories, with the hostinfo
// annotations and sh deciding structural visibility.
func (s *ScriptIntegrationTestSuite) SetupRegistry(sh shutter.Shutter) *registry.Registry {
	s.Require().NotNil(s.cfg, "SetupWithEmbeddedConfig must run first")

	markers := annotation.NewCatalog()
	s.Require().NoError(hostinfo.Register(markers))

	catalog := &engines.Catalog{}
	s.Require().NoError(polyscript.AnnounceTo(catalog,
		polyscript.WithMarkers(markers),
		polyscript.WithShutter(sh),
	))

	reg, err := registry.New(
		registry.WithDiscoverer(catalog),
		registry.WithInjectors(s.cfg.Injectors("suite")...),
	)
	s.Require().NoError(err)
	s.registry = reg
	return reg
}

// Engine returns a fresh engine for mimeType configured from the loaded settings.
func (s *ScriptIntegrationTestSuite) Engine(mimeType string) engines.Engine {
	s.Require().NotNil(s.registry, "SetupRegistry must run first")
	eng, err := s.registry.Get(s.T().Context(), mimeType, s.cfg.EngineSettings(mimeType))
	s.Require().NoError(err, "Should create engine for %s", mimeType)
	return eng
}

// AssertExec runs script on eng and compares the result with want using EqualValues, since
// engines are free to pick their own integer width.
func (s *ScriptIntegrationTestSuite) AssertExec(eng engines.Engine, script string, want any) {
	got, err := eng.Exec(s.T().Context(), script)
	s.Require().NoError(err, "Script should run: %s", script)
	s.EqualValues(want, got, "Script result mismatch: %s", script)
}
