// Package metrics provides Prometheus metrics for the frequency optimizer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/smartcity/transit-optimizer/internal/domain"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Registry is the Prometheus registry for this metrics instance
	Registry *prometheus.Registry

	// Analysis metrics
	AnalysisRunsTotal     *prometheus.CounterVec
	AnalysisDuration      prometheus.Histogram
	RejectedEntitiesTotal *prometheus.CounterVec
	RecommendationsTotal  *prometheus.CounterVec
	ExcludedLinesTotal    prometheus.Counter
	CriticalLines         prometheus.Gauge
	WaitReductionMinutes  prometheus.Gauge

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New creates and registers all application metrics with a new registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		Registry: registry,
		AnalysisRunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "optimizer_analysis_runs_total",
				Help: "Total number of analysis runs by outcome",
			},
			[]string{"outcome"},
		),
		AnalysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "optimizer_analysis_duration_seconds",
			Help:    "Analysis run latency distribution",
			Buckets: prometheus.DefBuckets,
		}),
		RejectedEntitiesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "optimizer_rejected_entities_total",
				Help: "Lines and ridership records rejected at validation",
			},
			[]string{"entity"},
		),
		RecommendationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "optimizer_recommendations_total",
				Help: "Recommendations emitted by rationale",
			},
			[]string{"rationale"},
		),
		ExcludedLinesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "optimizer_excluded_lines_total",
			Help: "Catalog lines skipped for lack of ridership data",
		}),
		CriticalLines: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "optimizer_critical_lines",
			Help: "Critical lines found by the last analysis run",
		}),
		WaitReductionMinutes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "optimizer_wait_reduction_minutes",
			Help: "Estimated network wait-time reduction of the last analysis run",
		}),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "optimizer_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "optimizer_http_request_duration_seconds",
				Help:    "HTTP request latency distribution",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}

	// Register all metrics with the custom registry
	registry.MustRegister(
		m.AnalysisRunsTotal,
		m.AnalysisDuration,
		m.RejectedEntitiesTotal,
		m.RecommendationsTotal,
		m.ExcludedLinesTotal,
		m.CriticalLines,
		m.WaitReductionMinutes,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
	)

	return m
}

// ObserveReport records the outcome of a successful analysis run.
// It is safe to call on a nil receiver.
func (m *Metrics) ObserveReport(report domain.AnalysisReport, seconds float64) {
	if m == nil {
		return
	}

	m.AnalysisRunsTotal.WithLabelValues("success").Inc()
	m.AnalysisDuration.Observe(seconds)
	m.RejectedEntitiesTotal.WithLabelValues("line").Add(float64(report.Validation.RejectedLines))
	m.RejectedEntitiesTotal.WithLabelValues("record").Add(float64(report.Validation.RejectedRecords))
	for _, r := range report.Recommendations {
		m.RecommendationsTotal.WithLabelValues(string(r.Rationale)).Inc()
	}
	m.ExcludedLinesTotal.Add(float64(len(report.ExcludedLines)))
	m.CriticalLines.Set(float64(len(report.CriticalLines)))
	m.WaitReductionMinutes.Set(report.Impact.TotalWaitReductionMin)
}

// ObserveFailure records a failed analysis run
func (m *Metrics) ObserveFailure(summary domain.ValidationSummary) {
	if m == nil {
		return
	}

	m.AnalysisRunsTotal.WithLabelValues("failure").Inc()
	m.RejectedEntitiesTotal.WithLabelValues("line").Add(float64(summary.RejectedLines))
	m.RejectedEntitiesTotal.WithLabelValues("record").Add(float64(summary.RejectedRecords))
}
