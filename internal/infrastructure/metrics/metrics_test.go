package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/iho/coffre/internal/domain"
	"github.com/iho/coffre/internal/usecase"
)

func TestNewRegistersMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()

	m := NewWithRegisterer(registry)

	if m.BalanceComputeDuration == nil || m.HTTPRequests == nil || m.BalanceCacheRequests == nil {
		t.Fatalf("expected key metrics to be initialized: %+v", m)
	}

	m.HTTPRequests.WithLabelValues("GET", "/health", "200").Inc()
	m.ObserveCacheLookup(usecase.CacheMiss)

	metricFamilies, err := registry.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	if len(metricFamilies) == 0 {
		t.Fatalf("expected registered metrics, got none")
	}
}

func TestNewWithRegistererRejectsDuplicates(t *testing.T) {
	registry := prometheus.NewRegistry()
	NewWithRegisterer(registry)

	defer func() {
		if recover() == nil {
			t.Fatalf("expected duplicate registration to panic")
		}
	}()

	NewWithRegisterer(registry)
}

func TestObserveCacheLookup(t *testing.T) {
	m := NewWithRegisterer(prometheus.NewRegistry())

	m.ObserveCacheLookup(usecase.CacheHit)
	m.ObserveCacheLookup(usecase.CacheHit)
	m.ObserveCacheLookup(usecase.CacheSharedHit)
	m.ObserveCacheLookup(usecase.CacheMiss)

	if got := testutil.ToFloat64(m.BalanceCacheRequests.WithLabelValues("hit")); got != 2 {
		t.Fatalf("expected 2 hits, got %v", got)
	}
	if got := testutil.ToFloat64(m.BalanceCacheRequests.WithLabelValues("shared_hit")); got != 1 {
		t.Fatalf("expected 1 shared hit, got %v", got)
	}
	if got := testutil.ToFloat64(m.BalanceCacheRequests.WithLabelValues("miss")); got != 1 {
		t.Fatalf("expected 1 miss, got %v", got)
	}
}

func TestObserveBalanceComputation(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewWithRegisterer(registry)

	m.ObserveBalanceComputation(10*time.Millisecond, nil)
	m.ObserveBalanceComputation(20*time.Millisecond, errors.New("store down"))

	if got := testutil.ToFloat64(m.BalanceComputeErrors); got != 1 {
		t.Fatalf("expected 1 compute error, got %v", got)
	}

	if n := testutil.CollectAndCount(m.BalanceComputeDuration); n != 1 {
		t.Fatalf("expected a single histogram series, got %d", n)
	}

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	for _, mf := range families {
		if mf.GetName() == "coffre_balance_compute_duration_seconds" {
			if count := mf.GetMetric()[0].GetHistogram().GetSampleCount(); count != 2 {
				t.Fatalf("expected 2 observations, got %d", count)
			}
			return
		}
	}

	t.Fatalf("histogram not gathered")
}

func TestLedgerWriteCounters(t *testing.T) {
	m := NewWithRegisterer(prometheus.NewRegistry())

	m.MovementRecorded(domain.MovementTypeEntry)
	m.MovementRecorded(domain.MovementTypeExit)
	m.MovementRecorded(domain.MovementTypeExit)
	m.MovementDeleted()
	m.InventoryRecorded()

	if got := testutil.ToFloat64(m.MovementsRecorded.WithLabelValues("EXIT")); got != 2 {
		t.Fatalf("expected 2 exits, got %v", got)
	}
	if got := testutil.ToFloat64(m.MovementsDeleted); got != 1 {
		t.Fatalf("expected 1 deletion, got %v", got)
	}
	if got := testutil.ToFloat64(m.InventoriesRecorded); got != 1 {
		t.Fatalf("expected 1 inventory, got %v", got)
	}
}
