package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the HTTP API
type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	ReviewsCreated   prometheus.Counter
	UpdatesAppended  prometheus.Counter
	EditWindowDenied prometheus.Counter
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics() *Metrics {
	return &Metrics{
		RequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "reviewhub_http_requests_total",
			Help: "Total number of HTTP requests by method, path and status",
		}, []string{"method", "path", "status"}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "reviewhub_http_request_duration_seconds",
			Help:    "HTTP request latency by method and path",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		ReviewsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "reviewhub_reviews_created_total",
			Help: "Total number of original reviews created",
		}),
		UpdatesAppended: promauto.NewCounter(prometheus.CounterOpts{
			Name: "reviewhub_review_updates_total",
			Help: "Total number of review updates appended",
		}),
		EditWindowDenied: promauto.NewCounter(prometheus.CounterOpts{
			Name: "reviewhub_edit_window_denied_total",
			Help: "Total number of edits rejected because the window had closed",
		}),
	}
}

// Nil-safe increment helpers so handlers work with metrics disabled.

func (m *Metrics) IncReviewsCreated() {
	if m != nil {
		m.ReviewsCreated.Inc()
	}
}

func (m *Metrics) IncUpdatesAppended() {
	if m != nil {
		m.UpdatesAppended.Inc()
	}
}

func (m *Metrics) IncEditWindowDenied() {
	if m != nil {
		m.EditWindowDenied.Inc()
	}
}

// Instrument records request counts and latencies per route
func (m *Metrics) Instrument() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		// use the route template, not the raw URL, to keep cardinality bounded
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		m.RequestsTotal.WithLabelValues(
			c.Request.Method, path, strconv.Itoa(c.Writer.Status()),
		).Inc()
		m.RequestDuration.WithLabelValues(
			c.Request.Method, path,
		).Observe(time.Since(start).Seconds())
	}
}
