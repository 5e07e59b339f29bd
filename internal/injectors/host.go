package injectors

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/atlanticdynamic/hostbridge/internal/engines"
)

var _ engines.Injector = (*Host)(nil)

// HostGlobal is the global defined by Host.
const HostGlobal = "host"

// Host defines a "host" object describing the running process.
type Host struct {
	Version string

	// hostname and now are swapped in tests.
	hostname func() (string, error)
	now      func() time.Time
}

// NewHost returns a Host reporting version.
func NewHost(version string) *Host {
	return &Host{Version: version, hostname: os.Hostname, now: time.Now}
}

// Name returns "host".
func (h *Host) Name() string { return HostGlobal }

// RegisterInto defines the host object.
func (h *Host) RegisterInto(g *engines.GlobalContext) error {
	hostname, err := h.hostname()
	if err != nil {
		return fmt.Errorf("failed to read hostname: %w", err)
	}
	instance, err := uuid.NewV4()
	if err != nil {
		return fmt.Errorf("failed to generate instance id: %w", err)
	}

	return g.Set(HostGlobal, map[string]any{
		"hostname":   hostname,
		"pid":        os.Getpid(),
		"instance":   instance.String(),
		"version":    h.Version,
		"go_version": runtime.Version(),
		"started_at": h.now().UTC().Format(time.RFC3339),
	})
}
