package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initNetworkMetrics() {
	r.FamiliesTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: r.namespace,
			Name:      "families",
			Help:      "Number of structurally distinct complex families",
		},
	)

	r.SpeciesTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: r.namespace,
			Name:      "species",
			Help:      "Number of species in the network",
		},
	)

	r.ReactionsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: r.namespace,
			Name:      "reactions_total",
			Help:      "Reactions recorded, by generator kind",
		},
		[]string{"generator"},
	)

	r.NotificationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: r.namespace,
			Name:      "notifications_total",
			Help:      "Species notifications processed, by whether products were expanded",
		},
		[]string{"expand"},
	)

	r.QueueHighWater = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: r.namespace,
			Name:      "queue_high_water",
			Help:      "Largest notification queue length seen",
		},
	)

	r.GeneratorErrorsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: r.namespace,
			Name:      "generator_errors_total",
			Help:      "Generator failures, by generator kind and error class",
		},
		[]string{"generator", "class"},
	)

	r.IncrementDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: r.namespace,
			Name:      "increment_duration_seconds",
			Help:      "Time spent expanding a species into the network",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		},
	)
}
