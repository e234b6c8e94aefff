package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	AnalysisLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "kankolens",
			Subsystem: "analysis",
			Name:      "latency_seconds",
			Help:      "Latency of analysis endpoints",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	AnalysisErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kankolens",
			Subsystem: "analysis",
			Name:      "errors_total",
			Help:      "Errors by analysis endpoint",
		},
		[]string{"endpoint"},
	)

	ResponseCacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kankolens",
			Subsystem: "analysis",
			Name:      "response_cache_hits_total",
			Help:      "Response cache hits by endpoint",
		},
		[]string{"endpoint"},
	)

	ResponseCacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kankolens",
			Subsystem: "analysis",
			Name:      "response_cache_misses_total",
			Help:      "Response cache misses by endpoint",
		},
		[]string{"endpoint"},
	)
)

func Register() {
	once.Do(func() {
		prometheus.MustRegister(AnalysisLatency, AnalysisErrors, ResponseCacheHits, ResponseCacheMisses)
	})
}
