package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kirillkom/document-classifier/internal/core/domain"
)

// PipelineMetrics counts extraction and classification outcomes and the
// retry/breaker activity around external calls.
type PipelineMetrics struct {
	service string

	extractionFailures *prometheus.CounterVec
	classifications    *prometheus.CounterVec
	fallbacks          *prometheus.CounterVec
	reclassified       *prometheus.CounterVec
	retries            *prometheus.CounterVec
	breakerState       *prometheus.GaugeVec
}

func newPipelineMetrics(service string, registry prometheus.Registerer) *PipelineMetrics {
	m := &PipelineMetrics{
		service: service,
		extractionFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "extraction",
				Name:      "failures_total",
				Help:      "Uploads whose text could not be extracted, by content type.",
			},
			[]string{"service", "content_type"},
		),
		classifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "classifier",
				Name:      "runs_total",
				Help:      "Classification runs by method.",
			},
			[]string{"service", "method"},
		),
		fallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "classifier",
				Name:      "fallback_total",
				Help:      "Classification runs that returned the fallback distribution.",
			},
			[]string{"service", "method"},
		),
		reclassified: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "reclassify",
				Name:      "documents_total",
				Help:      "Documents handled by reclassification runs, by outcome.",
			},
			[]string{"service", "outcome"},
		),
		retries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "resilience",
				Name:      "retry_attempts_total",
				Help:      "Retried external calls by operation.",
			},
			[]string{"service", "operation"},
		),
		breakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "resilience",
				Name:      "breaker_open",
				Help:      "1 while the circuit breaker of an operation is not closed.",
			},
			[]string{"service", "operation"},
		),
	}
	registry.MustRegister(
		m.extractionFailures,
		m.classifications,
		m.fallbacks,
		m.reclassified,
		m.retries,
		m.breakerState,
	)
	return m
}

func (m *PipelineMetrics) ExtractionFailed(contentType string) {
	if contentType == "" {
		contentType = "unknown"
	}
	m.extractionFailures.WithLabelValues(m.service, contentType).Inc()
}

func (m *PipelineMetrics) Classified(method domain.ClassificationMethod, fallback bool) {
	m.classifications.WithLabelValues(m.service, string(method)).Inc()
	if fallback {
		m.fallbacks.WithLabelValues(m.service, string(method)).Inc()
	}
}

func (m *PipelineMetrics) Reclassified(stats domain.ReclassifyStats) {
	m.reclassified.WithLabelValues(m.service, "updated").Add(float64(stats.Updated))
	m.reclassified.WithLabelValues(m.service, "skipped").Add(float64(stats.Skipped))
	m.reclassified.WithLabelValues(m.service, "failed").Add(float64(stats.Failed))
}

func (m *PipelineMetrics) RetryAttempt(operation string) {
	m.retries.WithLabelValues(m.service, operation).Inc()
}

func (m *PipelineMetrics) BreakerStateChanged(operation, state string) {
	value := 0.0
	if state != "closed" {
		value = 1
	}
	m.breakerState.WithLabelValues(m.service, operation).Set(value)
}
