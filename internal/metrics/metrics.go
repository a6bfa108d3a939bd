// Package metrics holds the Prometheus collectors of the grocery service.
package metrics

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// StoreOps counts store calls by backend, operation and outcome.
	StoreOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "grocery",
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Key-value store operations.",
		},
		[]string{"op", "family", "result"},
	)

	// DecodeFailures counts stored blobs that failed to decode or validate
	// and were replaced by the caller default.
	DecodeFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "grocery",
			Subsystem: "store",
			Name:      "decode_failures_total",
			Help:      "Stored values that could not be decoded.",
		},
		[]string{"family"},
	)

	EventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "grocery",
			Subsystem: "events",
			Name:      "published_total",
			Help:      "Change notifications published on the bus.",
		},
		[]string{"topic", "remote"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "grocery",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

// Registry is the registry served on /metrics.
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(collectors.NewGoCollector())
	Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	Registry.MustRegister(StoreOps, DecodeFailures, EventsPublished, RequestDuration)
}

// Handler exposes the registry as a fiber handler.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(Registry, promhttp.HandlerOpts{}))
}

// ObserveRequest records one served request.
func ObserveRequest(method, path string, status int, elapsed time.Duration) {
	RequestDuration.WithLabelValues(method, path, statusClass(status)).Observe(elapsed.Seconds())
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
