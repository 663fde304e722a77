package engine

import (
	"github.com/prometheus/client_golang/prometheus"
)

// executorMetrics holds the Prometheus instruments for workflow executions.
// They live on an executor-owned registry so embedding hosts decide whether
// and where to expose them.
type executorMetrics struct {
	registry *prometheus.Registry

	// Executions by workflow and final status
	runs *prometheus.CounterVec

	// Per-stage wall time in seconds, by stage name and kind
	stageDuration *prometheus.HistogramVec

	// Fields produced per stage, by stage name and kind
	stageFields *prometheus.CounterVec
}

// newExecutorMetrics creates and registers the execution metrics on a fresh
// registry.
func newExecutorMetrics() *executorMetrics {
	m := &executorMetrics{
		registry: prometheus.NewRegistry(),

		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "anemoi",
			Subsystem: "transform",
			Name:      "runs_total",
			Help:      "Total number of workflow executions",
		}, []string{"workflow", "status"}),

		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "anemoi",
			Subsystem: "transform",
			Name:      "stage_duration_seconds",
			Help:      "Stage execution duration in seconds",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1.0, 5.0, 30.0},
		}, []string{"stage", "kind"}),

		stageFields: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "anemoi",
			Subsystem: "transform",
			Name:      "stage_fields_total",
			Help:      "Total number of fields produced per stage",
		}, []string{"stage", "kind"}),
	}

	m.registry.MustRegister(m.runs, m.stageDuration, m.stageFields)
	return m
}

// observeStage records one completed stage.
func (m *executorMetrics) observeStage(stage, kind string, fieldsOut int, seconds float64) {
	m.stageDuration.WithLabelValues(stage, kind).Observe(seconds)
	m.stageFields.WithLabelValues(stage, kind).Add(float64(fieldsOut))
}

// observeRun records one finished execution.
func (m *executorMetrics) observeRun(workflowName, status string) {
	m.runs.WithLabelValues(workflowName, status).Inc()
}
