package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkpost_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// CacheLookups counts cache-aside lookups by entity and outcome (hit, miss, error).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkpost_cache_lookups_total",
		Help: "Cache-aside lookups by entity and outcome",
	}, []string{"entity", "outcome"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inkpost_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// ValidationFailures counts rejected inputs by schema and attempted branch.
	ValidationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkpost_validation_failures_total",
		Help: "Inputs rejected by validation",
	}, []string{"schema", "branch"})

	// DanglingReferences counts read-time lookups that found no target row.
	DanglingReferences = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkpost_dangling_references_total",
		Help: "Foreign references resolved to an absent row",
	}, []string{"kind"})

	// ConstraintViolations counts writes rejected for referencing a missing row.
	ConstraintViolations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkpost_constraint_violations_total",
		Help: "Writes rejected by foreign key constraints",
	}, []string{"table"})
)

// DatabaseMetrics records query latency.
type DatabaseMetrics struct{}

// NewDatabaseMetrics returns a new DatabaseMetrics instance.
func NewDatabaseMetrics() *DatabaseMetrics {
	return &DatabaseMetrics{}
}

// ObserveQuery records the latency of a database query.
func (*DatabaseMetrics) ObserveQuery(operation, table string, start time.Time) {
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func (m *DatabaseMetrics) TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		m.ObserveQuery(operation, table, start)
	}
}

// RecordValidationFailure increments the validation failure counter.
func RecordValidationFailure(schema, branch string) {
	if branch == "" {
		branch = "none"
	}
	ValidationFailures.WithLabelValues(schema, branch).Inc()
}

// RecordDangling increments the dangling reference counter for kind.
func RecordDangling(kind string, n int) {
	if n > 0 {
		DanglingReferences.WithLabelValues(kind).Add(float64(n))
	}
}
