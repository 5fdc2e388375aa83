package metrics

import (
	"runtime"
	"strconv"
	"time"
)

// ObserveRecognition counts one recognizer result.
func (r *Registry) ObserveRecognition(result string) {
	r.RecognitionsTotal.WithLabelValues(result).Inc()
}

// ObserveSearch records the duration of one isomorphism search.
func (r *Registry) ObserveSearch(d time.Duration) {
	r.IsoSearchDuration.Observe(d.Seconds())
}

// RecordReaction counts a reaction recorded by a generator of the given kind.
func (r *Registry) RecordReaction(generator string) {
	r.ReactionsTotal.WithLabelValues(generator).Inc()
}

// RecordNotification counts a processed notification. expand reports whether
// the products of the notification were queued for expansion.
func (r *Registry) RecordNotification(expand bool) {
	r.NotificationsTotal.WithLabelValues(strconv.FormatBool(expand)).Inc()
}

// RecordGeneratorError counts a generator failure.
func (r *Registry) RecordGeneratorError(generator, class string) {
	r.GeneratorErrorsTotal.WithLabelValues(generator, class).Inc()
}

// ObserveQueueLength raises the queue high-water mark if n exceeds it.
func (r *Registry) ObserveQueueLength(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n > r.highWater {
		r.highWater = n
		r.QueueHighWater.Set(float64(n))
	}
}

// UpdateNetworkSize sets the family and species gauges.
func (r *Registry) UpdateNetworkSize(families, species int) {
	r.FamiliesTotal.Set(float64(families))
	r.SpeciesTotal.Set(float64(species))
}

// ObserveIncrement records the duration of one network increment.
func (r *Registry) ObserveIncrement(d time.Duration) {
	r.IncrementDuration.Observe(d.Seconds())
}

// UpdateSystemMetrics samples goroutine count and heap usage.
func (r *Registry) UpdateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	r.GoRoutines.Set(float64(runtime.NumGoroutine()))
	r.MemoryAllocBytes.Set(float64(m.Alloc))
}
