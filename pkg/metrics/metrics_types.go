package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dd0wney/plexnet/pkg/config"
	"github.com/dd0wney/plexnet/pkg/validation"
)

// DefaultNamespace prefixes every metric name unless a registry is created
// with another one.
const DefaultNamespace = "plexnet"

// Registry holds all metrics for the application
type Registry struct {
	// Network metrics
	FamiliesTotal        prometheus.Gauge
	SpeciesTotal         prometheus.Gauge
	ReactionsTotal       *prometheus.CounterVec
	NotificationsTotal   *prometheus.CounterVec
	QueueHighWater       prometheus.Gauge
	GeneratorErrorsTotal *prometheus.CounterVec
	IncrementDuration    prometheus.Histogram

	// Recognizer metrics
	RecognitionsTotal *prometheus.CounterVec
	IsoSearchDuration prometheus.Histogram

	// Process metrics
	GoRoutines       prometheus.Gauge
	MemoryAllocBytes prometheus.Gauge

	namespace string
	registry  *prometheus.Registry
	mu        sync.Mutex
	highWater int
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a registry under DefaultNamespace.
func NewRegistry() *Registry {
	return NewRegistryWithNamespace(DefaultNamespace)
}

// NewRegistryWithNamespace creates a registry whose metric names start with
// namespace.
func NewRegistryWithNamespace(namespace string) *Registry {
	r := &Registry{
		namespace: namespace,
		registry:  prometheus.NewRegistry(),
	}

	r.initNetworkMetrics()
	r.initRecognizerMetrics()
	r.initSystemMetrics()

	return r
}

// FromConfig creates a registry under the configured namespace, falling back
// to DefaultNamespace.
func FromConfig(cfg config.MetricsConfig) *Registry {
	return NewRegistryWithNamespace(validation.DefaultOr(cfg.Namespace, DefaultNamespace))
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
