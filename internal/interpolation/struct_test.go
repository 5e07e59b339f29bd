package interpolation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type leaf struct {
	Name string `env_interpolation:"yes"`
	Code string `env_interpolation:"no"`
}

type tree struct {
	Host    string            `env_interpolation:"yes"`
	Script  string            // untagged fields are never touched
	Labels  map[string]string `env_interpolation:"yes"`
	Data    map[string]any    `env_interpolation:"yes"`
	Paths   []string          `env_interpolation:"yes"`
	Leaf    leaf              `env_interpolation:"yes"`
	LeafPtr *leaf             `env_interpolation:"yes"`
	Leaves  []leaf            `env_interpolation:"yes"`
	NilPtr  *leaf             `env_interpolation:"yes"`
	private string
}

var vars = mapLookup(map[string]string{"HOST": "example.com", "NAME": "svc"})

func TestInterpolateStruct(t *testing.T) {
	t.Parallel()

	cfg := &tree{
		Host:    "${HOST}",
		Script:  "${HOST}",
		Labels:  map[string]string{"env": "${ENV:dev}"},
		Data:    map[string]any{"name": "${NAME}", "count": 3},
		Paths:   []string{"/srv/${NAME}", ""},
		Leaf:    leaf{Name: "${NAME}", Code: "${NAME}"},
		LeafPtr: &leaf{Name: "${HOST}"},
		Leaves:  []leaf{{Name: "${NAME}-0"}},
		private: "${HOST}",
	}
	require.NoError(t, InterpolateStructWith(cfg, vars))

	assert.Equal(t, "example.com", cfg.Host)
	assert.Equal(t, "${HOST}", cfg.Script)
	assert.Equal(t, map[string]string{"env": "dev"}, cfg.Labels)
	assert.Equal(t, map[string]any{"name": "svc", "count": 3}, cfg.Data)
	assert.Equal(t, []string{"/srv/svc", ""}, cfg.Paths)
	assert.Equal(t, leaf{Name: "svc", Code: "${NAME}"}, cfg.Leaf)
	assert.Equal(t, "example.com", cfg.LeafPtr.Name)
	assert.Equal(t, "svc-0", cfg.Leaves[0].Name)
	assert.Nil(t, cfg.NilPtr)
	assert.Equal(t, "${HOST}", cfg.private)
}

func TestInterpolateStructErrors(t *testing.T) {
	t.Parallel()

	t.Run("missing variables are collected", func(t *testing.T) {
		cfg := &tree{
			Host:   "${MISSING_A}",
			Labels: map[string]string{"k": "${MISSING_B}"},
			Leaf:   leaf{Name: "${MISSING_C}"},
		}
		err := InterpolateStructWith(cfg, vars)
		require.ErrorIs(t, err, ErrUndefinedVariable)
		assert.Contains(t, err.Error(), "field Host: ")
		assert.Contains(t, err.Error(), "field Labels[k]: ")
		assert.Contains(t, err.Error(), "MISSING_C")
	})

	t.Run("not a struct", func(t *testing.T) {
		s := "x"
		require.Error(t, InterpolateStruct(&s))
	})

	t.Run("struct value", func(t *testing.T) {
		require.Error(t, InterpolateStruct(tree{}))
	})

	t.Run("nil", func(t *testing.T) {
		require.NoError(t, InterpolateStruct(nil))
		var cfg *tree
		require.NoError(t, InterpolateStruct(cfg))
	})
}
