package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/iho/coffre/internal/usecase"
)

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	mu         sync.Mutex
	Committed  bool
	RolledBack bool

	CommitFunc func(ctx context.Context) error
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Committed = true
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.Committed {
		m.RolledBack = true
	}
	return nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	mu  sync.Mutex
	Txs []*MockTransaction

	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	tx := &MockTransaction{}
	m.Txs = append(m.Txs, tx)
	return tx, nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string
	counter      int
	mu           sync.Mutex
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("mock-id-%d", m.counter)
}

// MockRetrier runs the operation up to Attempts times while it fails.
type MockRetrier struct {
	Attempts int
	Calls    int
	// Ops lists the ledger operations found in the contexts passed to Retry.
	Ops []usecase.LedgerOp
}

func (m *MockRetrier) Retry(ctx context.Context, operation func() error) error {
	if op, ok := usecase.LedgerOpFromContext(ctx); ok {
		m.Ops = append(m.Ops, op)
	}
	attempts := m.Attempts
	if attempts <= 0 {
		attempts = 1
	}
	var err error
	for i := 0; i < attempts; i++ {
		m.Calls++
		if err = operation(); err == nil {
			return nil
		}
	}
	return err
}

// FakeClock is a manually advanced Clock.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewFakeClock(now time.Time) *FakeClock {
	return &FakeClock{now: now}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// MockBalanceObserver counts observations.
type MockBalanceObserver struct {
	mu           sync.Mutex
	Computations int
	Failures     int
	Lookups      map[usecase.CacheResult]int
}

func NewMockBalanceObserver() *MockBalanceObserver {
	return &MockBalanceObserver{Lookups: make(map[usecase.CacheResult]int)}
}

func (m *MockBalanceObserver) ObserveBalanceComputation(d time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Computations++
	if err != nil {
		m.Failures++
	}
}

func (m *MockBalanceObserver) ObserveCacheLookup(result usecase.CacheResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Lookups[result]++
}

// LookupCount returns the number of lookups with the given result.
func (m *MockBalanceObserver) LookupCount(result usecase.CacheResult) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Lookups[result]
}
