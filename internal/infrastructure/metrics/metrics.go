package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "jan"
	subsystem = "proposal_api"
)

// Proposal API metrics
var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status", "stream"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"method", "endpoint", "status"},
	)

	GenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "generations_total",
			Help:      "Generation pipeline outcomes by mode",
		},
		[]string{"mode", "stream", "outcome"},
	)

	QuotaRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "quota_rejections_total",
			Help:      "Requests rejected because the mode quota is exhausted",
		},
		[]string{"mode"},
	)

	FinalizeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "finalize_total",
			Help:      "Streaming finalize outcomes",
		},
		[]string{"outcome"},
	)

	UsageIncrementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "usage_increments_total",
			Help:      "Quota counter increments by result (applied, guarded, failed)",
		},
		[]string{"mode", "result"},
	)

	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "generation_duration_seconds",
			Help:      "Upstream generation duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"model", "stream"},
	)

	FirstChunkDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "first_chunk_seconds",
			Help:      "Time to first streamed chunk",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"model"},
	)

	TokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "tokens_total",
			Help:      "Tokens consumed by type",
		},
		[]string{"model", "type"},
	)

	ActiveStreams = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "active_streams",
			Help:      "Streaming generations whose producer has not finished",
		},
	)

	PendingBacklog = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "pending_backlog",
			Help:      "Artifacts still pending past the reconciliation age",
		},
	)

	RateLimitedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter",
		},
		[]string{"backend"},
	)

	AuthRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "auth_requests_total",
			Help:      "Total authentication attempts",
		},
		[]string{"auth_mode", "status"},
	)
)

// RecordRequest records an HTTP request with all relevant labels
func RecordRequest(method, endpoint, status string, stream bool, durationSec float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status, boolLabel(stream)).Inc()
	RequestDuration.WithLabelValues(method, endpoint, status).Observe(durationSec)
}

// RecordGeneration records the outcome of one pipeline run.
func RecordGeneration(mode string, stream bool, outcome string) {
	GenerationsTotal.WithLabelValues(labelOrUnknown(mode), boolLabel(stream), outcome).Inc()
}

// RecordQuotaRejection records a 403 for mode.
func RecordQuotaRejection(mode string) {
	QuotaRejectionsTotal.WithLabelValues(labelOrUnknown(mode)).Inc()
}

// RecordFinalize records a streaming finalize outcome.
func RecordFinalize(outcome string) {
	FinalizeTotal.WithLabelValues(outcome).Inc()
}

// RecordUsageIncrement records the result of a quota counter increment.
func RecordUsageIncrement(mode, result string) {
	UsageIncrementsTotal.WithLabelValues(labelOrUnknown(mode), result).Inc()
}

// RecordGenerationDuration records the duration of an upstream generation call
func RecordGenerationDuration(model string, stream bool, durationSec float64) {
	GenerationDuration.WithLabelValues(labelOrUnknown(model), boolLabel(stream)).Observe(durationSec)
}

// RecordFirstChunk records time to first chunk for streaming
func RecordFirstChunk(model string, durationSec float64) {
	FirstChunkDuration.WithLabelValues(labelOrUnknown(model)).Observe(durationSec)
}

// RecordTokens records token usage for a generation
func RecordTokens(model string, promptTokens, completionTokens int) {
	TokensTotal.WithLabelValues(labelOrUnknown(model), "prompt").Add(float64(promptTokens))
	TokensTotal.WithLabelValues(labelOrUnknown(model), "completion").Add(float64(completionTokens))
}

// RecordAuth records an authentication attempt
func RecordAuth(mode, status string) {
	AuthRequestsTotal.WithLabelValues(labelOrUnknown(mode), status).Inc()
}

// RecordRateLimited records a rejected request
func RecordRateLimited(backend string) {
	RateLimitedTotal.WithLabelValues(labelOrUnknown(backend)).Inc()
}

func boolLabel(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

func labelOrUnknown(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "unknown"
	}
	return v
}
