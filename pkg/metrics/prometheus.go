package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	rowsIngested *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
	lastRate     *prometheus.GaugeVec
	latency      *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		rowsIngested: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kankolens_rows_ingested_total",
				Help: "Total number of allocation rows ingested into storage",
			},
			[]string{"sink", "prefecture"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kankolens_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastRate: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "kankolens_last_fx_rate",
				Help: "Last observed FX rate for a currency pair",
			},
			[]string{"pair"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "kankolens_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordIngested records allocation rows written to a sink.
func (r *Recorder) RecordIngested(sink, prefecture string) {
	r.rowsIngested.WithLabelValues(sink, prefecture).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastRate records the last FX rate for a currency pair.
func (r *Recorder) RecordLastRate(pair string, rate float64) {
	r.lastRate.WithLabelValues(pair).Set(rate)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
