// Package metrics exposes Prometheus collectors for slug assignment and HTTP traffic.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wheelhub/internal/slug"
)

const namespace = "wheelhub"

const (
	OutcomeAssigned     = "assigned"
	OutcomeInvalidTitle = "invalid_title"
	OutcomeExhausted    = "exhausted"
	OutcomeError        = "error"
)

var (
	initOnce           sync.Once
	slugAssignments    *prometheus.CounterVec
	slugAttempts       *prometheus.HistogramVec
	httpRequestsTotal  *prometheus.CounterVec
	httpRequestSeconds *prometheus.HistogramVec
)

func initMetrics() {
	initOnce.Do(func() {
		slugAssignments = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "slug",
			Name:      "assignments_total",
			Help:      "Slug assignments by table and outcome",
		}, []string{"table", "outcome"})

		slugAttempts = promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "slug",
			Name:      "attempts",
			Help:      "Uniqueness lookups needed per slug assignment",
			Buckets:   []float64{1, 2, 3, 5, 10, 25, 100, 1000},
		}, []string{"table"})

		httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"})

		httpRequestSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"})
	})
}

// Outcome classifies an assignment error for the outcome label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeAssigned
	case errors.Is(err, slug.ErrInvalidTitle):
		return OutcomeInvalidTitle
	case errors.Is(err, slug.ErrSlugExhausted):
		return OutcomeExhausted
	default:
		return OutcomeError
	}
}

// ObserveSlugAssignment records one finished assignment for table.
func ObserveSlugAssignment(table string, attempts int, err error) {
	initMetrics()
	slugAssignments.WithLabelValues(table, Outcome(err)).Inc()
	if attempts > 0 {
		slugAttempts.WithLabelValues(table).Observe(float64(attempts))
	}
}

// Middleware counts requests per matched route.
func Middleware() gin.HandlerFunc {
	initMetrics()
	return func(c *gin.Context) {
		timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
			httpRequestSeconds.WithLabelValues(routeLabel(c)).Observe(v)
		}))
		c.Next()
		timer.ObserveDuration()
		httpRequestsTotal.WithLabelValues(c.Request.Method, routeLabel(c), strconv.Itoa(c.Writer.Status())).Inc()
	}
}

// Handler serves the default registry.
func Handler() http.Handler {
	initMetrics()
	return promhttp.Handler()
}

func routeLabel(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return "unmatched"
}
