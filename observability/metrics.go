package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "kindertube"

var (
	// VideoRequests counts submitted requests.
	// Labels: requested_by (parent, child)
	VideoRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "video_requests_total",
		Help:      "Total video requests submitted",
	}, []string{"requested_by"})

	// RequestResolutions counts parent decisions.
	// Labels: action (approve, reject), outcome (changed, unchanged, error)
	RequestResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "request_resolutions_total",
		Help:      "Total parent decisions on video requests",
	}, []string{"action", "outcome"})

	ApprovalRevocations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "approval_revocations_total",
		Help:      "Total revoked approvals",
	})

	// HistoryEvents counts recorded and cleared history entries.
	// Labels: kind (search, watch, clear_search, clear_watch)
	HistoryEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "history_events_total",
		Help:      "Total history tracker events",
	}, []string{"kind"})

	VersionConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "version_conflicts_total",
		Help:      "Child profile saves rejected by the version check",
	})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// Middleware records request latency labelled by the matched route pattern.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpDuration.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the default registry.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
