package scripts

import (
	_ "embed"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/atlanticdynamic/hostbridge/internal/engines"
	"github.com/atlanticdynamic/hostbridge/internal/engines/finitestate"
	"github.com/atlanticdynamic/hostbridge/internal/engines/polyscript"
	"github.com/atlanticdynamic/hostbridge/internal/hostinfo"
	"github.com/atlanticdynamic/hostbridge/internal/shutter"
)

//go:embed testdata/scripts.toml
var scriptsConfig []byte

type ScriptsTestSuite struct {
	ScriptIntegrationTestSuite
}

func (s *ScriptsTestSuite) SetupTest() {
	cfg := s.SetupWithEmbeddedConfig(scriptsConfig)
	timeout, err := cfg.EngineSettings(polyscript.RisorMIMETypes[0]).Timeout()
	s.Require().NoError(err)
	s.Equal(5*time.Second, timeout)
	s.SetupRegistry(shutter.Default{})
}

func (s *ScriptsTestSuite) TestRisorGlobals() {
	eng := s.Engine("application/x-risor")

	s.AssertExec(eng, `ctx.get("service", "")`, "billing")
	s.AssertExec(eng, `ctx.get("replicas", 0) * 2`, 6)
	s.AssertExec(eng, `ctx.get("location", {}).get("hostname", "")`, "scripts.example.com")
	s.AssertExec(eng, `ctx.get("location", {}).get("query", {}).get("view", "")`, "summary")
	s.AssertExec(eng, `ctx.get("host", {}).get("version", "")`, "suite")
}

func (s *ScriptsTestSuite) TestStarlarkGlobalObject() {
	eng := s.Engine("text/x-starlark")

	s.AssertExec(eng, `_ = ctx.get("hb", {}).get("service", "")`, "billing")
	s.AssertExec(eng, `_ = ctx.get("service", "unset")`, "unset")
}

func (s *ScriptsTestSuite) TestHostObjectsAreReadAtExec() {
	eng := s.Engine("text/x-starlark")
	point := hostinfo.NewPoint(5, 6)
	s.Require().NoError(eng.Expose("point", point))

	script := `_ = ctx.get("hb", {}).get("point", {}).get("x", 0)`
	s.AssertExec(eng, script, 5)

	point.SetX(10)
	s.AssertExec(eng, script, 10)
}

func (s *ScriptsTestSuite) TestRisorCallsHostFunctions() {
	eng := s.Engine("application/x-risor")
	point := hostinfo.NewPoint(5, 6)
	s.Require().NoError(eng.Expose("point", point))

	s.AssertExec(eng, `ctx.point.reset()`, nil)
	s.Equal(0, point.GetX())
	s.Equal(0, point.GetY())
	s.AssertExec(eng, `ctx.point.x + ctx.point.y`, 0)

	s.AssertExec(eng, `ctx.point.newPoint(7, 8).y`, 8)
	s.Equal("(0, 0)", point.String(), "constructing leaves the exposed point alone")
}

func (s *ScriptsTestSuite) TestStarlarkSeesDataOnly() {
	eng := s.Engine("text/x-starlark")
	s.Require().NoError(eng.Expose("point", hostinfo.NewPoint(1, 2)))

	s.AssertExec(eng, `_ = "reset" in ctx.get("hb", {}).get("point", {})`, false)
}

func (s *ScriptsTestSuite) TestEngineRestrictedMembers() {
	risor := s.Engine("application/x-risor")
	s.Require().NoError(risor.Expose("runtime", hostinfo.NewRuntime()))
	s.AssertExec(risor, `ctx.get("runtime", {}).get("goos", "")`, runtime.GOOS)

	obj, ok := risor.(*polyscript.Engine).Object("runtime")
	s.Require().True(ok)
	_, ok = obj.Handle("gc")
	s.True(ok, "gc is a risor function")

	starlark := s.Engine("text/x-starlark")
	s.Require().NoError(starlark.Expose("runtime", hostinfo.NewRuntime()))
	s.AssertExec(starlark, `_ = ctx.get("hb", {}).get("runtime", {}).get("cpus", 0)`, runtime.NumCPU())

	obj, ok = starlark.(*polyscript.Engine).Object("runtime")
	s.Require().True(ok)
	_, ok = obj.Handle("gc")
	s.False(ok, "gc is not offered to starlark")
}

func (s *ScriptsTestSuite) TestEnginesAreIsolated() {
	first := s.Engine("application/x-risor")
	second := s.Engine("application/x-risor")
	s.NotEqual(first.ID(), second.ID())

	s.Require().NoError(first.Expose("point", hostinfo.NewPoint(1, 2)))
	s.AssertExec(second, `ctx.get("point", "missing")`, "missing")
	s.ErrorIs(first.Inject("point", 1), engines.ErrDuplicateGlobal)
}

func (s *ScriptsTestSuite) TestRegistryState() {
	s.Equal(finitestate.StatusUninitialized, s.registry.State())
	s.Contains(s.registry.MIMETypes(), "text/x-starlark")
	s.Equal(finitestate.StatusFactoriesRegistered, s.registry.State(), "injectors wait for the first engine")

	s.Engine("text/x-starlark")
	s.Equal(finitestate.StatusReady, s.registry.State())

	_, err := s.registry.Get(s.T().Context(), "text/vbscript", nil)
	s.ErrorIs(err, engines.ErrNotFound)
}

func TestScriptsTestSuite(t *testing.T) {
	suite.Run(t, new(ScriptsTestSuite))
}
