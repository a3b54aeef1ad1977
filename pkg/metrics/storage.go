package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StorageMetrics records per-operation outcomes for the storage adapters.
type StorageMetrics struct {
	duration *prometheus.HistogramVec
	failure  *prometheus.CounterVec
}

// NewStorageMetrics registers the storage metrics on the provided registerer.
func NewStorageMetrics(reg prometheus.Registerer) *StorageMetrics {
	if reg == nil {
		return &StorageMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storage_op_duration_seconds",
		Help:    "Duration of storage adapter operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"backend", "collection", "op"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storage_op_failure",
		Help: "Failed storage adapter operations.",
	}, []string{"backend", "collection", "op"})
	reg.MustRegister(duration, failure)
	return &StorageMetrics{
		duration: duration,
		failure:  failure,
	}
}

// ObserveDuration records the duration for one operation.
func (m *StorageMetrics) ObserveDuration(backend, collection, op string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(backend), normalizeLabel(collection), normalizeLabel(op)).Observe(duration.Seconds())
}

// IncFailure increments the failure counter for one operation.
func (m *StorageMetrics) IncFailure(backend, collection, op string) {
	if m == nil || m.failure == nil {
		return
	}
	m.failure.WithLabelValues(normalizeLabel(backend), normalizeLabel(collection), normalizeLabel(op)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
