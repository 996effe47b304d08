package infrastructure

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus metrics for the application.
type Metrics struct {
	// Ingestion metrics
	RowsAccepted      prometheus.Counter
	RowsRejected      prometheus.Counter
	LoadedRecords     prometheus.Gauge
	LastLoadTimestamp prometheus.Gauge

	// Query metrics
	RequestsTotal     *prometheus.CounterVec
	PredictionsServed *prometheus.CounterVec
	PredictionErrors  *prometheus.CounterVec
}

// NewMetrics creates a Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "palaypulse"
	}

	return &Metrics{
		RowsAccepted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "rows_accepted_total",
			Help:      "Total number of source rows accepted into the dataset",
		}),
		RowsRejected: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "rows_rejected_total",
			Help:      "Total number of malformed source rows rejected",
		}),
		LoadedRecords: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "dataset",
			Name:      "loaded_records",
			Help:      "Number of records currently held in the dataset store",
		}),
		LastLoadTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "dataset",
			Name:      "last_load_timestamp",
			Help:      "Unix timestamp of the last successful dataset load",
		}),
		RequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of API requests by operation",
		}, []string{"operation"}),
		PredictionsServed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "forecast",
			Name:      "predictions_served_total",
			Help:      "Total number of predictions served by trend label",
		}, []string{"trend"}),
		PredictionErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "forecast",
			Name:      "prediction_errors_total",
			Help:      "Total number of failed prediction requests by reason",
		}, []string{"reason"}),
	}
}

// MetricsHandler returns an HTTP handler for the /metrics endpoint.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
