package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initRecognizerMetrics() {
	r.RecognitionsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: r.namespace,
			Name:      "recognitions_total",
			Help:      "Plex recognitions, by result (cached, hit, new)",
		},
		[]string{"result"},
	)

	r.IsoSearchDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: r.namespace,
			Name:      "iso_search_duration_seconds",
			Help:      "Duration of single isomorphism searches",
			Buckets:   prometheus.ExponentialBuckets(0.000001, 4, 10),
		},
	)
}
