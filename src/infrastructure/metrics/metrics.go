package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	searchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "resumatch",
		Name:      "searches_total",
		Help:      "Search requests by outcome (cached, fresh, empty, error).",
	}, []string{"outcome"})

	stageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "resumatch",
		Name:      "pipeline_stage_duration_seconds",
		Help:      "Duration of each search pipeline stage.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"stage"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "resumatch",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method, path, and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
)

// CountSearch records the outcome of one search request.
func CountSearch(outcome string) {
	searchesTotal.WithLabelValues(outcome).Inc()
}

// ObserveStage records how long a pipeline stage took. Meant to be used as
// `defer metrics.ObserveStage("retrieve", time.Now())`.
func ObserveStage(stage string, start time.Time) {
	stageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// GinMiddleware measures HTTP request latency per route.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpDuration.WithLabelValues(
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
		).Observe(time.Since(start).Seconds())
	}
}
