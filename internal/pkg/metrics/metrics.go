package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "weathermap",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "weathermap",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "weathermap",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Weather provider metrics
	WeatherFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "weathermap",
		Subsystem: "weather",
		Name:      "fetches_total",
		Help:      "Total weather provider requests by outcome",
	}, []string{"provider", "result"})

	WeatherFetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "weathermap",
		Subsystem: "weather",
		Name:      "fetch_duration_seconds",
		Help:      "Latency of weather provider requests",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"provider"})

	AlertsSent = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "weathermap",
		Subsystem: "weather",
		Name:      "alerts_sent_total",
		Help:      "Total fetch failure alerts shown to users",
	})

	// Map session metrics
	RefreshCycles = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "weathermap",
		Subsystem: "session",
		Name:      "refresh_cycles_total",
		Help:      "Total completed refresh cycles by outcome (applied, stale)",
	}, []string{"outcome"})

	RefreshDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "weathermap",
		Subsystem: "session",
		Name:      "refresh_duration_seconds",
		Help:      "Duration of refresh cycles from bounds change to rendered markers",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	})

	MarkersRendered = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "weathermap",
		Subsystem: "session",
		Name:      "markers_rendered_total",
		Help:      "Total markers added to maps",
	})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "weathermap",
		Subsystem: "ws",
		Name:      "active_sessions",
		Help:      "Current number of connected map sessions",
	})

	ActiveRelayClients = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "weathermap",
		Subsystem: "ws",
		Name:      "active_relay_clients",
		Help:      "Current number of refresh event relay connections",
	})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "weathermap",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "weathermap",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)
		httpResponseSize.WithLabelValues(method, path).Observe(float64(len(c.Response().Body())))

		return err
	}
}

// Handler returns a Fiber handler serving Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}
