// Package metrics exposes Prometheus instruments for member resolution, the engine registry
// and global-context injectors.
//
// Metrics:
//   - hostbridge_resolver_lookups_total: resolver cache lookups by result (hit, miss, uncached)
//   - hostbridge_registry_engine_requests_total: engine requests by result (created, not_found, error)
//   - hostbridge_registry_injector_runs_total: injector runs by injector and result (ok, error)
//   - hostbridge_registry_factories: number of registered MIME types
//
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const Namespace = "hostbridge"

// Label values.
const (
	CacheHit      = "hit"
	CacheMiss     = "miss"
	CacheUncached = "uncached"

	EngineCreated  = "created"
	EngineNotFound = "not_found"
	EngineError    = "error"

	InjectorOK    = "ok"
	InjectorError = "error"
)

// Metrics holds the module's collectors.
type Metrics struct {
	resolverLookups *prometheus.CounterVec
	engineRequests  *prometheus.CounterVec
	injectorRuns    *prometheus.CounterVec
	factories       prometheus.Gauge
}

// New creates the collectors and registers them with registry. A nil registry leaves them
// unregistered, which is convenient in tests.
func New(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		resolverLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "resolver",
				Name:      "lookups_total",
				Help:      "Member set cache lookups by result",
			},
			[]string{"result"},
		),
		engineRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "registry",
				Name:      "engine_requests_total",
				Help:      "Script engine requests by result",
			},
			[]string{"result"},
		),
		injectorRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "registry",
				Name:      "injector_runs_total",
				Help:      "Global-context injector runs by injector and result",
			},
			[]string{"injector", "result"},
		),
		factories: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Subsystem: "registry",
				Name:      "factories",
				Help:      "Number of MIME types with a registered engine factory",
			},
		),
	}

	if registry != nil {
		registry.MustRegister(
			m.resolverLookups,
			m.engineRequests,
			m.injectorRuns,
			m.factories,
		)
	}
	return m
}

// ResolverLookup counts one resolver cache lookup.
func (m *Metrics) ResolverLookup(result string) {
	if m == nil {
		return
	}
	m.resolverLookups.WithLabelValues(result).Inc()
}

// EngineRequest counts one registry Get call.
func (m *Metrics) EngineRequest(result string) {
	if m == nil {
		return
	}
	m.engineRequests.WithLabelValues(result).Inc()
}

// InjectorRun counts one injector run.
func (m *Metrics) InjectorRun(injector, result string) {
	if m == nil {
		return
	}
	m.injectorRuns.WithLabelValues(injector, result).Inc()
}

// SetFactories records the number of registered MIME types.
func (m *Metrics) SetFactories(n int) {
	if m == nil {
		return
	}
	m.factories.Set(float64(n))
}

// Collectors returns every collector, for callers that register them on their own.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.resolverLookups, m.engineRequests, m.injectorRuns, m.factories}
}
