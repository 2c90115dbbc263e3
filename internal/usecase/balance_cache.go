package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/iho/coffre/internal/domain"
)

// ComputeFunc computes the balance of one vault.
type ComputeFunc func(ctx context.Context) (*domain.BalanceInfo, error)

type cacheEntry struct {
	value     *domain.BalanceInfo
	expiresAt time.Time
}

// sharedEntry is the payload stored in the shared tier. It carries the
// absolute expiry so a shared hit never outlives the original TTL.
type sharedEntry struct {
	Value     *domain.BalanceInfo `json:"value"`
	ExpiresAt time.Time           `json:"expires_at"`
}

// BalanceCache memoizes computed balances per vault for a fixed TTL.
// Entries are never invalidated by writes; callers needing a read that
// reflects their own write use Refresh.
type BalanceCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry

	ttl            time.Duration
	computeTimeout time.Duration
	clock          Clock
	flight         *singleflight.Group
	shared         Cache
	prefix         string
	observer       BalanceObserver
	logger         zerolog.Logger
}

// CacheOption configures a BalanceCache.
type CacheOption func(*BalanceCache)

// WithTTL sets the entry lifetime.
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *BalanceCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock sets the time source.
func WithClock(clock Clock) CacheOption {
	return func(c *BalanceCache) { c.clock = clock }
}

// WithComputeTimeout bounds a coalesced computation once it no longer
// follows the context of the caller that started it.
func WithComputeTimeout(d time.Duration) CacheOption {
	return func(c *BalanceCache) {
		if d > 0 {
			c.computeTimeout = d
		}
	}
}

// WithSingleFlight coalesces concurrent misses for the same vault into one computation.
func WithSingleFlight() CacheOption {
	return func(c *BalanceCache) { c.flight = &singleflight.Group{} }
}

// WithSharedCache adds a second tier shared between processes.
func WithSharedCache(shared Cache) CacheOption {
	return func(c *BalanceCache) { c.shared = shared }
}

// WithCacheObserver records hit and miss counts.
func WithCacheObserver(o BalanceObserver) CacheOption {
	return func(c *BalanceCache) { c.observer = o }
}

// WithCacheLogger sets the cache logger.
func WithCacheLogger(l zerolog.Logger) CacheOption {
	return func(c *BalanceCache) { c.logger = l }
}

// NewBalanceCache creates a BalanceCache with a five minute TTL unless configured otherwise.
func NewBalanceCache(opts ...CacheOption) *BalanceCache {
	c := &BalanceCache{
		entries:        make(map[string]cacheEntry),
		ttl:            DefaultBalanceCacheTTL,
		computeTimeout: DefaultBalanceComputeTimeout,
		clock:          SystemClock{},
		prefix:         "balance:",
		observer:       noopObserver{},
		logger:         zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TTL returns the configured entry lifetime.
func (c *BalanceCache) TTL() time.Duration {
	return c.ttl
}

// GetCachedBalance returns the cached balance of the vault while it is fresh,
// otherwise calls compute and caches its result. Errors are never cached.
func (c *BalanceCache) GetCachedBalance(ctx context.Context, vaultID string, compute ComputeFunc) (*domain.BalanceInfo, error) {
	if v, ok := c.lookup(vaultID); ok {
		c.observer.ObserveCacheLookup(CacheHit)
		return v, nil
	}

	if c.flight == nil {
		return c.load(ctx, vaultID, compute)
	}

	// The flight runs detached from the caller that started it and is bounded
	// by computeTimeout; each caller stops waiting when its own ctx is done.
	ch := c.flight.DoChan(vaultID, func() (any, error) {
		// A flight that finished just before this one may have filled the entry.
		if v, ok := c.lookup(vaultID); ok {
			c.observer.ObserveCacheLookup(CacheHit)
			return v, nil
		}

		flightCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.computeTimeout)
		defer cancel()

		return c.load(flightCtx, vaultID, compute)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*domain.BalanceInfo).Clone(), nil
	}
}

// Refresh recomputes the balance regardless of cache state and stores the result.
func (c *BalanceCache) Refresh(ctx context.Context, vaultID string, compute ComputeFunc) (*domain.BalanceInfo, error) {
	info, err := compute(ctx)
	if err != nil {
		return nil, err
	}

	c.store(ctx, vaultID, info, c.clock.Now().Add(c.ttl))

	return info.Clone(), nil
}

// Invalidate drops the vault entry from every tier.
func (c *BalanceCache) Invalidate(ctx context.Context, vaultID string) {
	c.mu.Lock()
	delete(c.entries, vaultID)
	c.mu.Unlock()

	if c.shared != nil {
		if err := c.shared.Delete(ctx, c.prefix+vaultID); err != nil {
			c.logger.Warn().Err(err).Str("vault_id", vaultID).Msg("shared balance cache delete failed")
		}
	}
}

// Purge removes expired entries from the local tier and returns how many were dropped.
func (c *BalanceCache) Purge() int {
	now := c.clock.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for id, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of local entries, fresh or not.
func (c *BalanceCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *BalanceCache) lookup(vaultID string) (*domain.BalanceInfo, bool) {
	now := c.clock.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[vaultID]
	if !ok || !now.Before(e.expiresAt) {
		return nil, false
	}
	return e.value.Clone(), true
}

func (c *BalanceCache) load(ctx context.Context, vaultID string, compute ComputeFunc) (*domain.BalanceInfo, error) {
	if v, ok := c.lookupShared(ctx, vaultID); ok {
		c.observer.ObserveCacheLookup(CacheSharedHit)
		return v, nil
	}

	c.observer.ObserveCacheLookup(CacheMiss)

	info, err := compute(ctx)
	if err != nil {
		return nil, err
	}

	c.store(ctx, vaultID, info, c.clock.Now().Add(c.ttl))

	return info.Clone(), nil
}

func (c *BalanceCache) store(ctx context.Context, vaultID string, info *domain.BalanceInfo, expiresAt time.Time) {
	c.mu.Lock()
	c.entries[vaultID] = cacheEntry{value: info.Clone(), expiresAt: expiresAt}
	c.mu.Unlock()

	if c.shared == nil {
		return
	}

	payload, err := json.Marshal(sharedEntry{Value: info, ExpiresAt: expiresAt})
	if err != nil {
		c.logger.Warn().Err(err).Str("vault_id", vaultID).Msg("failed to encode balance for shared cache")
		return
	}

	ttl := expiresAt.Sub(c.clock.Now())
	if ttl <= 0 {
		return
	}

	if err := c.shared.Set(ctx, c.prefix+vaultID, payload, ttl); err != nil {
		c.logger.Warn().Err(err).Str("vault_id", vaultID).Msg("shared balance cache write failed")
	}
}

func (c *BalanceCache) lookupShared(ctx context.Context, vaultID string) (*domain.BalanceInfo, bool) {
	if c.shared == nil {
		return nil, false
	}

	raw, err := c.shared.Get(ctx, c.prefix+vaultID)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			c.logger.Warn().Err(err).Str("vault_id", vaultID).Msg("shared balance cache read failed")
		}
		return nil, false
	}

	var entry sharedEntry
	if err := json.Unmarshal(raw, &entry); err != nil || entry.Value == nil {
		c.logger.Warn().Err(err).Str("vault_id", vaultID).Msg("discarding malformed shared balance entry")
		return nil, false
	}

	if !c.clock.Now().Before(entry.ExpiresAt) {
		return nil, false
	}

	c.mu.Lock()
	c.entries[vaultID] = cacheEntry{value: entry.Value, expiresAt: entry.ExpiresAt}
	c.mu.Unlock()

	return entry.Value.Clone(), true
}
