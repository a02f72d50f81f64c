// Package metrics defines the Prometheus metrics exported by the advisor.
// All Record* methods are safe to call on a nil *Metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Pipeline metrics
	QueriesTotal     *prometheus.CounterVec
	ExtractionTotal  *prometheus.CounterVec
	SynthesisTotal   *prometheus.CounterVec
	PipelineDuration prometheus.Histogram

	// Classifier metrics
	ClassifyDuration   *prometheus.HistogramVec
	ClassifierFailures *prometheus.CounterVec
	ClassifierInflight prometheus.Gauge
	ClassifierShared   prometheus.Counter
	ModelLoadDuration  *prometheus.HistogramVec

	// LLM metrics
	LLMTotal           *prometheus.CounterVec
	LLMDuration        *prometheus.HistogramVec
	LLMFallbackTotal   *prometheus.CounterVec
	LLMFallbackLatency *prometheus.HistogramVec

	// HTTP metrics
	HTTPRequestsTotal *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec

	// Webhook metrics
	WebhookEventsTotal *prometheus.CounterVec

	// Rate limiter metrics
	RateLimiterDropped *prometheus.CounterVec
	RateLimiterKeys    *prometheus.GaugeVec
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	f := promauto.With(registry)
	return &Metrics{
		QueriesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agri_queries_total",
				Help: "Total processed queries by predicted intent and crop presence",
			},
			[]string{"intent", "crop"}, // crop: found, absent
		),
		ExtractionTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agri_crop_extraction_total",
				Help: "Crop extraction outcomes by pass",
			},
			[]string{"pass"}, // pass: exact, fuzzy, none
		),
		SynthesisTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agri_synthesis_total",
				Help: "Advice synthesis outcomes",
			},
			[]string{"outcome"}, // outcome: entry, clarify, legacy, default, control, fallback
		),
		PipelineDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "agri_pipeline_duration_seconds",
				Help:    "End-to-end query processing duration",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
			},
		),

		ClassifyDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "agri_classify_duration_seconds",
				Help:    "Intent classification duration by strategy and outcome",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
			},
			[]string{"strategy", "outcome"}, // outcome: success, failure
		),
		ClassifierFailures: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agri_classifier_failures_total",
				Help: "Classifier failures degraded to the unknown intent, by reason",
			},
			[]string{"strategy", "reason"}, // reason: load, runtime, timeout, malformed, invalid_input
		),
		ClassifierInflight: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "agri_classifier_inflight",
				Help: "Inferences currently holding a worker slot",
			},
		),
		ClassifierShared: f.NewCounter(
			prometheus.CounterOpts{
				Name: "agri_classifier_shared_total",
				Help: "Classifications answered by an identical in-flight inference",
			},
		),
		ModelLoadDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "agri_model_load_duration_seconds",
				Help:    "Classifier initialization duration by strategy and status",
				Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 15, 30, 60, 120},
			},
			[]string{"strategy", "status"},
		),

		LLMTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agri_llm_total",
				Help: "LLM scoring calls by provider and status",
			},
			[]string{"provider", "status"}, // status: success, rate_limit, quota, timeout, canceled, server_error, auth_error, client_error, malformed, transient_error, error
		),
		LLMDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "agri_llm_duration_seconds",
				Help:    "LLM scoring call duration by provider",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 15},
			},
			[]string{"provider"},
		),
		LLMFallbackTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agri_llm_fallback_total",
				Help: "Successful provider fallbacks",
			},
			[]string{"from", "to"},
		),
		LLMFallbackLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "agri_llm_fallback_latency_seconds",
				Help:    "Total latency of requests answered by a fallback provider",
				Buckets: []float64{0.5, 1, 2, 4, 8, 15},
			},
			[]string{"from", "to"},
		),

		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agri_http_requests_total",
				Help: "HTTP requests by route and status code class",
			},
			[]string{"route", "status"},
		),
		HTTPDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "agri_http_duration_seconds",
				Help:    "HTTP request duration by route",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
			},
			[]string{"route"},
		),

		WebhookEventsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agri_webhook_events_total",
				Help: "LINE webhook events by type and status",
			},
			[]string{"event_type", "status"},
		),

		RateLimiterDropped: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agri_rate_limiter_dropped_total",
				Help: "Total number of requests dropped by rate limiter",
			},
			[]string{"limiter"}, // limiter: client, line_user
		),
		RateLimiterKeys: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "agri_rate_limiter_active_keys",
				Help: "Keys currently tracked by a keyed rate limiter",
			},
			[]string{"limiter"},
		),
	}
}

func (m *Metrics) RecordQuery(intent string, cropFound bool, duration float64) {
	if m == nil {
		return
	}
	c := "absent"
	if cropFound {
		c = "found"
	}
	m.QueriesTotal.WithLabelValues(intent, c).Inc()
	m.PipelineDuration.Observe(duration)
}

func (m *Metrics) RecordExtraction(pass string) {
	if m == nil {
		return
	}
	m.ExtractionTotal.WithLabelValues(pass).Inc()
}

func (m *Metrics) RecordSynthesis(outcome string) {
	if m == nil {
		return
	}
	m.SynthesisTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordClassification(strategy, outcome string, duration float64) {
	if m == nil {
		return
	}
	m.ClassifyDuration.WithLabelValues(strategy, outcome).Observe(duration)
}

func (m *Metrics) RecordClassifierFailure(strategy, reason string) {
	if m == nil {
		return
	}
	m.ClassifierFailures.WithLabelValues(strategy, reason).Inc()
}

// TrackInflight adjusts the in-flight inference gauge by delta.
func (m *Metrics) TrackInflight(delta float64) {
	if m == nil {
		return
	}
	m.ClassifierInflight.Add(delta)
}

func (m *Metrics) RecordSharedClassification() {
	if m == nil {
		return
	}
	m.ClassifierShared.Inc()
}

func (m *Metrics) RecordModelLoad(strategy, status string, duration float64) {
	if m == nil {
		return
	}
	m.ModelLoadDuration.WithLabelValues(strategy, status).Observe(duration)
}

func (m *Metrics) RecordLLM(provider, status string, duration float64) {
	if m == nil {
		return
	}
	m.LLMTotal.WithLabelValues(provider, status).Inc()
	if status == "success" {
		m.LLMDuration.WithLabelValues(provider).Observe(duration)
	}
}

func (m *Metrics) RecordLLMFallback(from, to string, total float64) {
	if m == nil {
		return
	}
	m.LLMFallbackTotal.WithLabelValues(from, to).Inc()
	m.LLMFallbackLatency.WithLabelValues(from, to).Observe(total)
}

func (m *Metrics) RecordHTTPRequest(route, status string, duration float64) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(route, status).Inc()
	m.HTTPDuration.WithLabelValues(route).Observe(duration)
}

func (m *Metrics) RecordWebhook(eventType, status string) {
	if m == nil {
		return
	}
	m.WebhookEventsTotal.WithLabelValues(eventType, status).Inc()
}

func (m *Metrics) RecordRateLimiterDrop(limiter string) {
	if m == nil {
		return
	}
	m.RateLimiterDropped.WithLabelValues(limiter).Inc()
}

func (m *Metrics) SetRateLimiterKeys(limiter string, count int) {
	if m == nil {
		return
	}
	m.RateLimiterKeys.WithLabelValues(limiter).Set(float64(count))
}
