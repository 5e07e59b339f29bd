package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/atlanticdynamic/hostbridge/internal/annotation"
)

func TestThreadSafeBuffer(t *testing.T) {
	var buf ThreadSafeBuffer
	logger := buf.Logger()

	var wg sync.WaitGroup
	for range 8 {
		wg.Go(func() { logger.Info("reloaded") })
	}
	wg.Wait()

	assert.Contains(t, buf.String(), "msg=reloaded")
	buf.Reset()
	assert.Empty(t, buf.String())
}

func TestEngine(t *testing.T) {
	e := NewEngine("risor")
	assert.Equal(t, "risor", e.Name())
	assert.IsType(t, &annotation.Catalog{}, e.Markers())

	assert.Equal(t, annotation.None{}, Engine{EngineName: "bare"}.Markers())
}
