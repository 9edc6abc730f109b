package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
)

// InitMetrics builds the HTTP metrics collector. A nil registry uses the
// process-wide default, which also exposes the domain counters.
func InitMetrics(serviceName string, registry prometheus.Registerer) *fiberprometheus.FiberPrometheus {
	if registry == nil {
		return fiberprometheus.New(serviceName)
	}
	return fiberprometheus.NewWithRegistry(registry, serviceName, "http", "", nil)
}

// MetricsMiddleware records request counts and latencies.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
