package engines

import (
	"strings"
	"sync"
)

// DefaultPrefix is the discovery prefix used by registries that are not given one.
const DefaultPrefix = "hostbridge"

// Discoverer enumerates factory candidates announced under a prefix. Candidates that do not
// implement Factory are ignored by the registry.
type Discoverer interface {
	Discover(prefix string) []any
}

// DiscovererFunc adapts a function into a Discoverer.
type DiscovererFunc func(prefix string) []any

func (f DiscovererFunc) Discover(prefix string) []any { return f(prefix) }

type announcement struct {
	prefix    string
	candidate any
}

// Catalog collects announced factory candidates.
type Catalog struct {
	mu    sync.Mutex
	items []announcement
}

var defaultCatalog = &Catalog{}

// DefaultCatalog returns the process-wide catalog filled by Announce.
func DefaultCatalog() *Catalog { return defaultCatalog }

// Announce adds candidate to the process-wide catalog under prefix.
func Announce(prefix string, candidate any) error {
	return defaultCatalog.Announce(prefix, candidate)
}

// Announce adds candidate under prefix. Announcement order is preserved.
func (c *Catalog) Announce(prefix string, candidate any) error {
	if candidate == nil {
		return ErrNilCandidate
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, announcement{prefix: prefix, candidate: candidate})
	return nil
}

// Discover returns every candidate whose announcement prefix equals prefix or is nested
// under it ("hostbridge" matches "hostbridge" and "hostbridge.polyscript").
func (c *Catalog) Discover(prefix string) []any {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []any
	for _, a := range c.items {
		if a.prefix == prefix || strings.HasPrefix(a.prefix, prefix+".") {
			out = append(out, a.candidate)
		}
	}
	return out
}

// Len returns the number of announcements.
func (c *Catalog) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
