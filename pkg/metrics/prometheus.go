package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	forecasts     *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	latency       *prometheus.HistogramVec
	avgPrediction prometheus.Gauge
	historyRows   prometheus.Gauge
	eventsSent    *prometheus.CounterVec
}

// New registers the recorder's collectors on the default registry.
func New() *Recorder {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers the recorder's collectors on reg.
func NewWithRegistry(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		forecasts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "livestock_forecasts_total",
				Help: "Total number of forecasts served, by target status",
			},
			[]string{"status"},
		),
		errorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "livestock_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"kind"},
		),
		latency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "livestock_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		avgPrediction: factory.NewGauge(prometheus.GaugeOpts{
			Name: "livestock_last_avg_prediction",
			Help: "Average projected revenue of the most recent forecast",
		}),
		historyRows: factory.NewGauge(prometheus.GaugeOpts{
			Name: "livestock_history_rows",
			Help: "Rows currently held in the history ledger",
		}),
		eventsSent: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "livestock_events_sent_total",
				Help: "Forecast events delivered to a sink backend",
			},
			[]string{"backend"},
		),
	}
}

func (r *Recorder) RecordForecast(status string) {
	r.forecasts.WithLabelValues(status).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

func (r *Recorder) RecordAvgPrediction(value float64) {
	r.avgPrediction.Set(value)
}

func (r *Recorder) RecordHistoryRows(n int) {
	r.historyRows.Set(float64(n))
}

func (r *Recorder) RecordEventSent(backend string) {
	r.eventsSent.WithLabelValues(backend).Inc()
}

// Nop discards every measurement.
type Nop struct{}

func (Nop) RecordForecast(string)         {}
func (Nop) RecordError(string)            {}
func (Nop) RecordLatency(string, float64) {}
func (Nop) RecordAvgPrediction(float64)   {}
func (Nop) RecordHistoryRows(int)         {}
func (Nop) RecordEventSent(string)        {}
