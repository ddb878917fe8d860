package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	trainingRuns     *prometheus.CounterVec
	trainingDuration *prometheus.HistogramVec
	pointsWritten    prometheus.Counter
	ordersIngested   prometheus.Counter
	errorsTotal      *prometheus.CounterVec
	lastMAPE         *prometheus.GaugeVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		trainingRuns: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "demandcast_training_runs_total",
				Help: "Total number of model training runs",
			},
			[]string{"strategy", "result"},
		),
		trainingDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "demandcast_training_duration_seconds",
				Help:    "Duration of train+predict+persist per scope",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"strategy"},
		),
		pointsWritten: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "demandcast_forecast_points_written_total",
				Help: "Total forecast points persisted",
			},
		),
		ordersIngested: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "demandcast_orders_ingested_total",
				Help: "Total order events written to the sales ledger",
			},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "demandcast_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastMAPE: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "demandcast_last_mape",
				Help: "MAPE of the most recent evaluated model per place",
			},
			[]string{"place"},
		),
	}
}

// RecordTrainingRun records a completed training attempt.
func (r *Recorder) RecordTrainingRun(strategy, result string) {
	r.trainingRuns.WithLabelValues(strategy, result).Inc()
}

// RecordTrainingDuration records train+persist latency in seconds.
func (r *Recorder) RecordTrainingDuration(strategy string, seconds float64) {
	r.trainingDuration.WithLabelValues(strategy).Observe(seconds)
}

// RecordPointsWritten records persisted forecast points.
func (r *Recorder) RecordPointsWritten(n int) {
	r.pointsWritten.Add(float64(n))
}

// RecordOrdersIngested records ledger writes.
func (r *Recorder) RecordOrdersIngested(n int) {
	r.ordersIngested.Add(float64(n))
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordMAPE records the latest evaluated MAPE for a place.
func (r *Recorder) RecordMAPE(place string, mape float64) {
	r.lastMAPE.WithLabelValues(place).Set(mape)
}
