package resolver

import (
	"reflect"
	"sync"

	"github.com/atlanticdynamic/hostbridge/internal/annotation"
	"github.com/atlanticdynamic/hostbridge/internal/members"
	"github.com/atlanticdynamic/hostbridge/internal/shutter"
)

var defaultCache = NewCache()

// DefaultCache returns the process-wide cache shared by factories built without WithCache.
func DefaultCache() *Cache {
	return defaultCache
}

// Cache holds resolved member sets keyed by host type, shutter identity, engine name and
// markers identity. Entries are never evicted.
type Cache struct {
	sets sync.Map
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{}
}

type cacheKey struct {
	host    reflect.Type
	shutter any
	engine  string
	markers any
}

// identityString keeps Identifier values from colliding with comparable shutter values.
type identityString string

// identityOf returns the cache identity of v, or false when v cannot be used as a key.
func identityOf(v any) (any, bool) {
	if id, ok := v.(shutter.Identifier); ok {
		s := id.Identity()
		return identityString(s), s != ""
	}
	if v == nil {
		return nil, true
	}
	if !reflect.ValueOf(v).Comparable() {
		return nil, false
	}
	return v, true
}

func newCacheKey(host reflect.Type, sh shutter.Shutter, engine string, markers annotation.Markers) (cacheKey, bool) {
	shID, ok := identityOf(sh)
	if !ok {
		return cacheKey{}, false
	}
	markersID, ok := identityOf(markers)
	if !ok {
		return cacheKey{}, false
	}
	return cacheKey{host: host, shutter: shID, engine: engine, markers: markersID}, true
}

func (c *Cache) load(key cacheKey) (*members.Set, bool) {
	v, ok := c.sets.Load(key)
	if !ok {
		return nil, false
	}
	return v.(*members.Set), true
}

// store keeps the first set stored under key and returns it.
func (c *Cache) store(key cacheKey, set *members.Set) *members.Set {
	actual, _ := c.sets.LoadOrStore(key, set)
	return actual.(*members.Set)
}

// Len returns the number of cached sets.
func (c *Cache) Len() int {
	n := 0
	c.sets.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Clear drops every cached set.
func (c *Cache) Clear() {
	c.sets.Clear()
}
