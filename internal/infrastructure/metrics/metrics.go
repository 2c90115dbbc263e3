package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/iho/coffre/internal/domain"
	"github.com/iho/coffre/internal/usecase"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Balance metrics
	BalanceComputeDuration prometheus.Histogram
	BalanceComputeErrors   prometheus.Counter
	BalanceCacheRequests   *prometheus.CounterVec

	// Ledger write metrics
	MovementsRecorded   *prometheus.CounterVec
	MovementsDeleted    prometheus.Counter
	InventoriesRecorded prometheus.Counter

	// API metrics
	HTTPRequests         *prometheus.CounterVec
	HTTPDuration         *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Authentication metrics
	AuthFailures *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits prometheus.Counter

	// Idempotency metrics
	IdempotentReplays prometheus.Counter
}

// New creates and registers all Prometheus metrics on the default registerer.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates and registers all Prometheus metrics on reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// Balance metrics
		BalanceComputeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "coffre_balance_compute_duration_seconds",
			Help:    "Duration of balance computations against the ledger store",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}),
		BalanceComputeErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "coffre_balance_compute_errors_total",
			Help: "Total number of failed balance computations",
		}),
		BalanceCacheRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coffre_balance_cache_requests_total",
				Help: "Balance cache lookups by result",
			},
			[]string{"result"},
		),

		// Ledger write metrics
		MovementsRecorded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coffre_movements_recorded_total",
				Help: "Total number of movements recorded by type",
			},
			[]string{"type"},
		),
		MovementsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "coffre_movements_deleted_total",
			Help: "Total number of movements soft deleted",
		}),
		InventoriesRecorded: factory.NewCounter(prometheus.CounterOpts{
			Name: "coffre_inventories_recorded_total",
			Help: "Total number of inventories recorded",
		}),

		// API metrics
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coffre_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "coffre_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "coffre_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		}),

		// Authentication metrics
		AuthFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coffre_auth_failures_total",
				Help: "Total authentication failures",
			},
			[]string{"reason"},
		),

		// Rate limiting metrics
		RateLimitHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "coffre_rate_limit_hits_total",
			Help: "Total requests rejected by the rate limiter",
		}),

		// Idempotency metrics
		IdempotentReplays: factory.NewCounter(prometheus.CounterOpts{
			Name: "coffre_idempotent_replays_total",
			Help: "Total responses replayed from idempotency keys",
		}),
	}
}

// ObserveBalanceComputation implements usecase.BalanceObserver.
func (m *Metrics) ObserveBalanceComputation(d time.Duration, err error) {
	m.BalanceComputeDuration.Observe(d.Seconds())
	if err != nil {
		m.BalanceComputeErrors.Inc()
	}
}

// ObserveCacheLookup implements usecase.BalanceObserver.
func (m *Metrics) ObserveCacheLookup(result usecase.CacheResult) {
	m.BalanceCacheRequests.WithLabelValues(string(result)).Inc()
}

// MovementRecorded counts a recorded movement by type.
func (m *Metrics) MovementRecorded(t domain.MovementType) {
	m.MovementsRecorded.WithLabelValues(string(t)).Inc()
}

// MovementDeleted counts a soft-deleted movement.
func (m *Metrics) MovementDeleted() {
	m.MovementsDeleted.Inc()
}

// InventoryRecorded counts a recorded inventory.
func (m *Metrics) InventoryRecorded() {
	m.InventoriesRecorded.Inc()
}

var _ usecase.BalanceObserver = (*Metrics)(nil)
