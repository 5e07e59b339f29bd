//go:build e2e

package reload

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlanticdynamic/hostbridge/internal/annotation"
	"github.com/atlanticdynamic/hostbridge/internal/engines"
	"github.com/atlanticdynamic/hostbridge/internal/engines/polyscript"
	"github.com/atlanticdynamic/hostbridge/internal/engines/registry"
	"github.com/atlanticdynamic/hostbridge/internal/resolver"
	"github.com/atlanticdynamic/hostbridge/internal/shutter"
	"github.com/atlanticdynamic/hostbridge/internal/testutil"
)

type Sensor struct {
	Name    string
	Reading float64
	Serial  string
}

const sensorType = "github.com/atlanticdynamic/hostbridge/test/e2e/reload.Sensor"

func writeAllowList(t *testing.T, path string, fields string) {
	t.Helper()
	doc := "[[grant]]\ntype = \"" + sensorType + "\"\nfields = [" + fields + "]\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
}

// TestAllowListReload edits the allow-list while the watcher runs and checks that engines
// created afterwards expose the new grants.
func TestAllowListReload(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping allow-list reload test in short mode")
	}

	path := filepath.Join(t.TempDir(), "allowlist.toml")
	writeAllowList(t, path, `"Name"`)

	var logBuf testutil.ThreadSafeBuffer
	reloads := make(chan struct{}, 4)
	watcher, err := shutter.NewWatcher(path,
		shutter.WithWatcherLogger(logBuf.Logger()),
		shutter.WithDebounce(50*time.Millisecond),
		shutter.WithOnReload(func(*shutter.AllowList) { reloads <- struct{}{} }),
	)
	require.NoError(t, err)
	<-reloads

	catalog := &engines.Catalog{}
	require.NoError(t, polyscript.AnnounceTo(catalog,
		polyscript.WithMarkers(annotation.NewCatalog()),
		polyscript.WithShutter(watcher),
		polyscript.WithResolverOptions(resolver.WithCache(resolver.NewCache())),
	))
	reg, err := registry.New(registry.WithDiscoverer(catalog))
	require.NoError(t, err)

	expose := func() map[string]any {
		eng, err := reg.Get(t.Context(), "application/x-risor", nil)
		require.NoError(t, err)
		require.NoError(t, eng.Expose("sensor", &Sensor{Name: "boiler", Reading: 71.5, Serial: "X1"}))
		got, err := eng.Exec(t.Context(), `ctx.get("sensor", {})`)
		require.NoError(t, err)
		out, ok := got.(map[string]any)
		require.True(t, ok, "got %T", got)
		return out
	}

	before := expose()
	assert.Equal(t, "boiler", before["name"])
	assert.NotContains(t, before, "reading")

	ctx := t.Context()
	done := make(chan error, 1)
	go func() { done <- watcher.Run(ctx) }()

	// fsnotify needs the watch in place before the edit lands.
	time.Sleep(100 * time.Millisecond)
	writeAllowList(t, path, `"Name", "Reading"`)

	select {
	case <-reloads:
	case <-time.After(5 * time.Second):
		t.Fatal("allow-list was not reloaded")
	}

	assert.Contains(t, logBuf.String(), "generation=2")

	after := expose()
	assert.Equal(t, "boiler", after["name"])
	assert.InDelta(t, 71.5, after["reading"], 0.001)
	assert.NotContains(t, after, "serial")
}
