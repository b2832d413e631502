// Package metrics provides Prometheus metrics collection for the
// prediction service: request outcomes, prediction latency, the
// distribution of returned probabilities, and model age. The collectors
// are exposed on the /metrics endpoint of the API server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors for the service.
type Metrics struct {
	PredictionsTotal        prometheus.Counter   // Successful predictions served
	ValidationFailures      prometheus.Counter   // Requests rejected as malformed
	ModelFailures           prometheus.Counter   // Requests failed on the model path
	PredictLatency          prometheus.Histogram // End-to-end handler latency in seconds
	PredictionProbabilities prometheus.Histogram // Distribution of returned probabilities
	ModelAge                prometheus.Gauge     // Age of the parameter file in seconds
	StreamConnections       prometheus.Gauge     // Open WebSocket prediction streams
}

// New creates and registers all metrics on the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates metrics with a custom registry, which keeps test
// runs isolated from the global Prometheus state.
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		PredictionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "predictions_total",
			Help: "Total number of successful predictions served",
		}),
		ValidationFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "validation_failures_total",
			Help: "Total number of requests rejected as malformed",
		}),
		ModelFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "model_failures_total",
			Help: "Total number of requests failed on the model path",
		}),
		PredictLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "predict_latency_seconds",
			Help:    "End-to-end prediction handler latency in seconds",
			Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
		}),
		PredictionProbabilities: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "prediction_probabilities",
			Help:    "Distribution of probabilities returned to clients",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		}),
		ModelAge: factory.NewGauge(prometheus.GaugeOpts{
			Name: "model_age_seconds",
			Help: "Age of the loaded model parameter file in seconds",
		}),
		StreamConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name: "stream_connections",
			Help: "Number of open WebSocket prediction streams",
		}),
	}
}
