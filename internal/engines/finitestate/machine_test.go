package finitestate

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	m, err := New(slog.Default().Handler())
	require.NoError(t, err)
	assert.Equal(t, StatusUninitialized, m.GetState())
}

func TestRegistryLifecycle(t *testing.T) {
	t.Parallel()

	m, err := New(slog.Default().Handler())
	require.NoError(t, err)

	require.NoError(t, m.Transition(StatusFactoriesRegistered))
	require.NoError(t, m.Transition(StatusInjectorsRegistered))
	require.NoError(t, m.Transition(StatusReady))
	assert.Equal(t, StatusReady, m.GetState())

	require.Error(t, m.Transition(StatusUninitialized), "the lifecycle never goes back")
	assert.Equal(t, StatusReady, m.GetState())
}

func TestSkippingStatesFails(t *testing.T) {
	t.Parallel()

	m, err := New(slog.Default().Handler())
	require.NoError(t, err)

	require.Error(t, m.Transition(StatusReady))
	require.Error(t, m.TransitionIfCurrentState(StatusFactoriesRegistered, StatusInjectorsRegistered))
	assert.Equal(t, StatusUninitialized, m.GetState())
}

func TestTransitionsAreForwardOnly(t *testing.T) {
	t.Parallel()

	order := []string{StatusUninitialized, StatusFactoriesRegistered, StatusInjectorsRegistered, StatusReady}
	for i, from := range order {
		targets, ok := RegistryTransitions[from]
		require.True(t, ok, from)
		if i == len(order)-1 {
			assert.Empty(t, targets)
			continue
		}
		assert.Equal(t, []string{order[i+1]}, targets)
	}
}
