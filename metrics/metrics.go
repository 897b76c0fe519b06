// Package metrics provides Prometheus metrics collection for the PSUR
// generator. It exports HTTP server metrics:
//   - http_request_total: Counter with method, path, and status labels
//   - http_request_duration_seconds: Histogram with method and path labels
//   - http_request_in_flight: Gauge for concurrent requests
//
// and report generation metrics:
//   - report_generation_total: Counter with trigger and result labels
//   - report_generation_duration_seconds: Histogram per trigger
//   - report_section_status_total: Counter with section and status labels
//   - report_size_bytes: Gauge for the latest document size
//
// All metrics are automatically registered with the Prometheus default
// registry during package initialization.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/openpv/psur-generator/interfaces"
)

var (
	HTTPRequestTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	HTTPRequestInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_request_in_flight",
			Help: "Current in-flight requests",
		},
	)

	RateLimiterBucketsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rate_limiter_buckets_total",
			Help: "Total number of rate limiter buckets (idle IPs are pruned every 30 minutes)",
		},
	)

	ReportGenerationTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "report_generation_total",
			Help: "Total report generation runs",
		},
		[]string{"trigger", "result"},
	)

	ReportGenerationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "report_generation_duration_seconds",
			Help:    "Report generation latency",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"trigger"},
	)

	ReportSectionStatusTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "report_section_status_total",
			Help: "Section outcomes per generation run",
		},
		[]string{"section", "status"},
	)

	ReportSizeBytes = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "report_size_bytes",
			Help: "Size of the latest generated document",
		},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestTotals)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestInFlight)
	prometheus.MustRegister(RateLimiterBucketsTotal)
	prometheus.MustRegister(ReportGenerationTotal)
	prometheus.MustRegister(ReportGenerationDuration)
	prometheus.MustRegister(ReportSectionStatusTotal)
	prometheus.MustRegister(ReportSizeBytes)
}

// RecordGeneration records the outcome of one generation run.
func RecordGeneration(trigger string, report *interfaces.GenerationReport, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	ReportGenerationTotal.WithLabelValues(trigger, result).Inc()

	if report == nil {
		return
	}

	ReportGenerationDuration.WithLabelValues(trigger).Observe(report.Duration.Seconds())
	ReportSizeBytes.Set(float64(report.SizeBytes))

	for _, section := range report.Sections {
		ReportSectionStatusTotal.WithLabelValues(section.ID, section.Status).Inc()
	}
}
