package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	transcriptPublishTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transcript_publish_total",
			Help: "Total number of transcript publishes",
		},
		[]string{"language"},
	)

	srtImportTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "srt_import_total",
			Help: "Total number of SRT imports",
		},
		[]string{"language"},
	)

	llmChatCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_chat_calls_total",
			Help: "Total number of LLM proxy chat calls",
		},
		[]string{"status"},
	)

	llmChatDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "llm_chat_duration_seconds",
			Help:    "LLM proxy chat call duration in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		},
	)
)

// MetricsMiddleware collects Prometheus metrics for every HTTP request.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		httpRequestsInFlight.Inc()

		// Route pattern, not the concrete URL, so label cardinality stays bounded
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unknown"
		}

		c.Next()

		httpRequestsInFlight.Dec()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		httpRequestsTotal.WithLabelValues(c.Request.Method, endpoint, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(duration)
	}
}

// RecordTranscriptPublish records a publish of a transcript in the given language.
func RecordTranscriptPublish(language string) {
	transcriptPublishTotal.WithLabelValues(language).Inc()
}

// RecordSRTImport records an SRT import for the given language.
func RecordSRTImport(language string) {
	srtImportTotal.WithLabelValues(language).Inc()
}

// RecordLLMChatCall records an LLM proxy chat call.
func RecordLLMChatCall(success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "error"
	}
	llmChatCallsTotal.WithLabelValues(status).Inc()
	llmChatDuration.Observe(duration.Seconds())
}
