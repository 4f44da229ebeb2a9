package metrics

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisor_http_requests_total",
			Help: "Total number of HTTP requests by service, method, route and status",
		},
		[]string{"service", "method", "route", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "advisor_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "route"},
	)

	InternalRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "lfd_internal_requests_in_flight",
			Help: "Number of /internal requests currently holding a request context",
		},
	)

	UnauthorizedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lfd_unauthorized_requests_total",
			Help: "Requests rejected by the header gate by missing header",
		},
		[]string{"header"},
	)

	// Stored procedure metrics
	ProcedureCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lfd_procedure_calls_total",
			Help: "Stored procedure calls by procedure, mode and outcome",
		},
		[]string{"procedure", "mode", "outcome"},
	)

	ProcedureDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lfd_procedure_duration_seconds",
			Help:    "Stored procedure call duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"procedure", "mode"},
	)

	// Pool metrics
	ConnectionAcquireDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lfd_connection_acquire_duration_seconds",
			Help:    "Time spent waiting for a pooled connection",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .5, 1, 5, 20},
		},
		[]string{"pool"},
	)

	ConnectionLeaksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lfd_connection_leaks_total",
			Help: "Connections held longer than the leak detection threshold",
		},
		[]string{"pool"},
	)

	StatementCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lfd_statement_cache_total",
			Help: "Prepared statement cache lookups by result",
		},
		[]string{"pool", "result"},
	)

	// Upstream metrics
	UpstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "domain_upstream_requests_total",
			Help: "Calls to the LFD service by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	UpstreamRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "domain_upstream_request_duration_seconds",
			Help:    "LFD call duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// Cache metrics
	CacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "domain_cache_lookups_total",
			Help: "Cache lookups by cache family and result",
		},
		[]string{"cache", "result"},
	)

	CacheEntries = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "domain_cache_entries",
			Help: "Live entries per cache family",
		},
		[]string{"cache"},
	)

	// Worker pool metrics
	WorkerTasksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_tasks_total",
			Help: "Tasks submitted to worker pools by pool and disposition",
		},
		[]string{"pool", "disposition"},
	)

	WorkersActive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_pool_workers",
			Help: "Running workers per pool",
		},
		[]string{"pool"},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(InternalRequestsInFlight)
	prometheus.MustRegister(UnauthorizedTotal)
	prometheus.MustRegister(ProcedureCallsTotal)
	prometheus.MustRegister(ProcedureDuration)
	prometheus.MustRegister(ConnectionAcquireDuration)
	prometheus.MustRegister(ConnectionLeaksTotal)
	prometheus.MustRegister(StatementCacheTotal)
	prometheus.MustRegister(UpstreamRequestsTotal)
	prometheus.MustRegister(UpstreamRequestDuration)
	prometheus.MustRegister(CacheLookupsTotal)
	prometheus.MustRegister(CacheEntries)
	prometheus.MustRegister(WorkerTasksTotal)
	prometheus.MustRegister(WorkersActive)
}

func Handler() http.Handler {
	return promhttp.Handler()
}

// RegisterDBStats exports database/sql pool statistics for db under the given name.
// Registering the same name twice is not an error.
func RegisterDBStats(db *sql.DB, name string) error {
	err := prometheus.Register(collectors.NewDBStatsCollector(db, name))
	var already prometheus.AlreadyRegisteredError
	if errors.As(err, &already) {
		return nil
	}
	return err
}

// Timer observes elapsed seconds into a histogram when stopped.
type Timer struct {
	start    time.Time
	observer prometheus.Observer
}

func NewTimer(observer prometheus.Observer) *Timer {
	return &Timer{start: time.Now(), observer: observer}
}

func (t *Timer) ObserveDuration() time.Duration {
	d := time.Since(t.start)
	t.observer.Observe(d.Seconds())
	return d
}
