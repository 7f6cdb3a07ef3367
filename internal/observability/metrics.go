package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "lowflow"

// Metrics holds the Prometheus counters, histograms, and gauges for the Q7,10 service.
type Metrics struct {
	RequestsConsumed prometheus.Counter
	ResultsProduced  *prometheus.CounterVec // labels: status={ok,failed}
	TransformErrors  prometheus.Counter
	PipelineRunning  prometheus.Gauge

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Computation metrics.
	ComputationFailures *prometheus.CounterVec // labels: reason
	InfeasibleFits      *prometheus.CounterVec // labels: distribution
	SelectedFits        *prometheus.CounterVec // labels: distribution
	ComputeDuration     prometheus.Histogram
	CacheLookups        *prometheus.CounterVec // labels: result={hit,miss}
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RequestsConsumed,
		m.ResultsProduced,
		m.TransformErrors,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.ComputationFailures,
		m.InfeasibleFits,
		m.SelectedFits,
		m.ComputeDuration,
		m.CacheLookups,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RequestsConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_consumed_total",
			Help:      "Total flow requests read from the source topic.",
		}),
		ResultsProduced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "results_produced_total",
			Help:      "Total result messages written to the sink topic, by status.",
		}, []string{"status"}),
		TransformErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transform_errors_total",
			Help:      "Total messages skipped because they could not be parsed or serialized.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of requests per batch extracted from Kafka.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-compute-load cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		ComputationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "computation_failures_total",
			Help:      "Q7,10 computations that stopped on a fatal condition, by reason.",
		}, []string{"reason"}),
		InfeasibleFits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "infeasible_fits_total",
			Help:      "Candidate distributions excluded as infeasible, by distribution.",
		}, []string{"distribution"}),
		SelectedFits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "selected_fits_total",
			Help:      "Distributions selected as best fit, by distribution.",
		}, []string{"distribution"}),
		ComputeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "compute_duration_seconds",
			Help:      "Duration of one Q7,10 computation.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "result_cache_total",
			Help:      "Result cache lookups by result.",
		}, []string{"result"}),
	}
}
