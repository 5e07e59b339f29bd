package shutter

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type point struct {
	X, Y int
}

func (p *point) GetX() int { return p.X }
func (p *point) Norm() int { return p.X*p.X + p.Y*p.Y }

var pointType = reflect.TypeFor[point]()

const pointName = "github.com/atlanticdynamic/hostbridge/internal/shutter.point"

func field(t *testing.T, name string) reflect.StructField {
	t.Helper()
	f, ok := pointType.FieldByName(name)
	require.True(t, ok)
	return f
}

func method(t *testing.T, name string) reflect.Method {
	t.Helper()
	m, ok := reflect.PointerTo(pointType).MethodByName(name)
	require.True(t, ok)
	return m
}

func TestTypeName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, pointName, TypeName(pointType))
	assert.Equal(t, pointName, TypeName(reflect.PointerTo(pointType)))
	assert.Equal(t, "[]int", TypeName(reflect.TypeFor[[]int]()))
	assert.Equal(t, "int", TypeName(reflect.TypeFor[int]()))
}

func TestStaticShutters(t *testing.T) {
	t.Parallel()

	x, getX := field(t, "X"), method(t, "GetX")

	var d Default
	assert.False(t, d.FieldVisible(pointType, x))
	assert.False(t, d.MethodVisible(pointType, getX))
	assert.False(t, d.ConstructorVisible(pointType, "newPoint", nil))

	var a All
	assert.True(t, a.FieldVisible(pointType, x))
	assert.True(t, a.MethodVisible(pointType, getX))
	assert.True(t, a.ConstructorVisible(pointType, "newPoint", nil))

	f := Funcs{
		ID:     "only-getx",
		Method: func(_ reflect.Type, m reflect.Method) bool { return m.Name == "GetX" },
	}
	assert.True(t, f.MethodVisible(pointType, getX))
	assert.False(t, f.MethodVisible(pointType, method(t, "Norm")))
	assert.False(t, f.FieldVisible(pointType, x))
	assert.False(t, f.ConstructorVisible(pointType, "newPoint", nil))
	assert.Equal(t, "only-getx", f.Identity())
}

func TestAllowList(t *testing.T) {
	t.Parallel()

	t.Run("named and wildcard grants", func(t *testing.T) {
		list, err := NewAllowList(
			Grant{Type: pointName, Fields: []string{"X"}},
			Grant{Type: pointName, Methods: []string{Wildcard}, Constructors: []string{"newPoint"}},
		)
		require.NoError(t, err)

		assert.True(t, list.FieldVisible(pointType, field(t, "X")))
		assert.False(t, list.FieldVisible(pointType, field(t, "Y")))
		assert.True(t, list.MethodVisible(pointType, method(t, "GetX")))
		assert.True(t, list.MethodVisible(pointType, method(t, "Norm")))
		assert.True(t, list.ConstructorVisible(pointType, "newPoint", nil))
		assert.False(t, list.ConstructorVisible(pointType, "other", nil))
		assert.False(t, list.FieldVisible(reflect.TypeFor[struct{ X int }](), field(t, "X")))
		assert.Equal(t, []string{pointName}, list.Types())
	})

	t.Run("rejects grants without a type", func(t *testing.T) {
		_, err := NewAllowList(Grant{Fields: []string{"X"}})
		require.ErrorIs(t, err, ErrEmptyTypeName)
	})

	t.Run("nil list grants nothing", func(t *testing.T) {
		var list *AllowList
		assert.False(t, list.FieldVisible(pointType, field(t, "X")))
	})
}

func TestParse(t *testing.T) {
	t.Parallel()

	tomlDoc := `
[[grant]]
type = "` + pointName + `"
fields = ["X"]
methods = ["GetX"]
`
	yamlDoc := `
grants:
  - type: ` + pointName + `
    fields: [X]
    methods: [GetX]
`
	for _, tc := range []struct {
		format string
		data   string
	}{
		{".toml", tomlDoc},
		{"yaml", yamlDoc},
		{".yml", yamlDoc},
	} {
		t.Run(tc.format, func(t *testing.T) {
			list, err := Parse([]byte(tc.data), tc.format)
			require.NoError(t, err)
			assert.True(t, list.FieldVisible(pointType, field(t, "X")))
			assert.True(t, list.MethodVisible(pointType, method(t, "GetX")))
			assert.False(t, list.MethodVisible(pointType, method(t, "Norm")))
		})
	}

	t.Run("unsupported format", func(t *testing.T) {
		_, err := Parse([]byte(`{}`), ".json")
		require.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("malformed document", func(t *testing.T) {
		_, err := Parse([]byte(`[[grant`), ".toml")
		require.Error(t, err)
	})
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "allow.toml")
	require.NoError(t, os.WriteFile(path, []byte("[[grant]]\ntype = \""+pointName+"\"\nfields = [\"*\"]\n"), 0o600))

	list, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, list.Source())
	assert.True(t, list.FieldVisible(pointType, field(t, "Y")))

	_, err = LoadFile(filepath.Join(dir, "missing.toml"))
	require.Error(t, err)
}

func TestWatcher(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "allow.yaml")
	write := func(fields string) {
		doc := "grants:\n  - type: " + pointName + "\n    fields: [" + fields + "]\n"
		require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
	}
	write("X")

	var reloads atomic.Int32
	w, err := NewWatcher(path,
		WithDebounce(20*time.Millisecond),
		WithOnReload(func(*AllowList) { reloads.Add(1) }),
	)
	require.NoError(t, err)
	assert.Equal(t, int32(1), reloads.Load())
	assert.True(t, w.FieldVisible(pointType, field(t, "X")))
	assert.False(t, w.FieldVisible(pointType, field(t, "Y")))
	firstIdentity := w.Identity()

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// wait until the watcher is running before editing
	require.Eventually(t, func() bool {
		w.mu.Lock()
		defer w.mu.Unlock()
		return w.running
	}, time.Second, 5*time.Millisecond)
	require.ErrorIs(t, w.Run(ctx), ErrWatcherRunning)

	require.EventuallyWithT(t, func(c *assert.CollectT) {
		write("X, Y")
		assert.True(c, w.FieldVisible(pointType, field(t, "Y")))
	}, 5*time.Second, 100*time.Millisecond)
	assert.NotEqual(t, firstIdentity, w.Identity())

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestNewWatcherMissingFile(t *testing.T) {
	t.Parallel()

	_, err := NewWatcher(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}
