package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Prediction metrics
	Predictions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verdant_predictions_total",
			Help: "Total number of prediction requests",
		},
		[]string{"crop", "disease", "status"}, // status: success|validation_error|model_error
	)

	PredictionLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "verdant_prediction_latency_seconds",
			Help:    "End-to-end prediction latency in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"crop"},
	)

	EncodeWarnings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verdant_encode_warnings_total",
			Help: "Total number of soft-range and consistency warnings raised during encoding",
		},
		[]string{"field"},
	)

	FallbackLookups = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "verdant_treatment_fallback_lookups_total",
			Help: "Total number of treatment lookups resolved to the fallback entry",
		},
	)

	ModelReloads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verdant_model_reloads_total",
			Help: "Total number of model bundle reloads",
		},
		[]string{"status"}, // status: success|error
	)

	// Database metrics
	DBQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verdant_db_queries_total",
			Help: "Total number of record store queries",
		},
		[]string{"backend", "operation", "status"},
	)

	DBQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "verdant_db_query_duration_seconds",
			Help:    "Record store query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2},
		},
		[]string{"backend", "operation"},
	)

	// Worker metrics
	WorkerExecutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verdant_worker_executions_total",
			Help: "Total number of worker executions",
		},
		[]string{"worker", "status"}, // status: success|error
	)

	WorkerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "verdant_worker_duration_seconds",
			Help:    "Worker execution duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"worker"},
	)
)

// Init registers all metrics with Prometheus
func Init() {
	prometheus.MustRegister(Predictions)
	prometheus.MustRegister(PredictionLatency)
	prometheus.MustRegister(EncodeWarnings)
	prometheus.MustRegister(FallbackLookups)
	prometheus.MustRegister(ModelReloads)
	prometheus.MustRegister(DBQueries)
	prometheus.MustRegister(DBQueryDuration)
	prometheus.MustRegister(WorkerExecutions)
	prometheus.MustRegister(WorkerDuration)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordPrediction records one prediction request outcome
func RecordPrediction(crop, disease, status string, latency time.Duration) {
	Predictions.WithLabelValues(crop, disease, status).Inc()
	PredictionLatency.WithLabelValues(crop).Observe(latency.Seconds())
}

// RecordDBQuery records one record store query outcome
func RecordDBQuery(backend, operation string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	DBQueries.WithLabelValues(backend, operation, status).Inc()
	DBQueryDuration.WithLabelValues(backend, operation).Observe(duration.Seconds())
}

// RecordWorkerExecution records a worker execution
func RecordWorkerExecution(worker string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	WorkerExecutions.WithLabelValues(worker, status).Inc()
	WorkerDuration.WithLabelValues(worker).Observe(duration.Seconds())
}
