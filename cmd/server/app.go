package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	httpAdapter "github.com/iho/coffre/internal/adapter/http"
	"github.com/iho/coffre/internal/adapter/http/handler"
	"github.com/iho/coffre/internal/adapter/http/middleware"
	"github.com/iho/coffre/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/coffre/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/coffre/internal/adapter/repository/redis"
	"github.com/iho/coffre/internal/infrastructure/auth"
	"github.com/iho/coffre/internal/infrastructure/config"
	"github.com/iho/coffre/internal/infrastructure/metrics"
	"github.com/iho/coffre/internal/infrastructure/postgres"
	"github.com/iho/coffre/internal/infrastructure/redis"
	"github.com/iho/coffre/internal/usecase"
)

// rateLimiterIdle is how long a client bucket survives without requests.
const rateLimiterIdle = 10 * time.Minute

// storage bundles the persistence adapters selected by STORAGE_DRIVER.
type storage struct {
	ledger      usecase.LedgerStore
	snapshotter usecase.LedgerSnapshotter
	txManager   usecase.TransactionManager
	vaults      usecase.VaultRepository
	movements   usecase.MovementRepository
	inventories usecase.InventoryRepository
	audit       usecase.AuditRepository
	checks      []handler.HealthCheck
	close       func()
}

// app is the wired service.
type app struct {
	handler http.Handler
	cache   *usecase.BalanceCache
	limiter *middleware.RateLimiter
	logger  zerolog.Logger
	closers []func()
}

func newApp(ctx context.Context, cfg *config.Config, log zerolog.Logger, reg prometheus.Registerer, gatherer prometheus.Gatherer) (*app, error) {
	a := &app{logger: log}

	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, store.close)

	checks := store.checks

	var (
		sharedCache usecase.Cache
		idempotency usecase.IdempotencyStore
	)
	if cfg.RedisURL != "" {
		redisClient, err := redis.NewClient(ctx, cfg.RedisURL, log)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.closers = append(a.closers, func() { redisClient.Close() })

		sharedCache = redisRepo.NewCache(redisClient)
		idempotency = redisRepo.NewIdempotencyStore(redisClient)
		checks = append(checks, handler.HealthCheck{Name: "redis", Ping: redisPing(redisClient)})
	}

	m := metrics.NewWithRegisterer(reg)
	clock := usecase.SystemClock{}
	idGen := postgresRepo.NewULIDGenerator(clock)
	retrier := postgresRepo.NewRetrier(log)
	access := usecase.NewVaultAccess(store.vaults)

	engineOpts := []usecase.EngineOption{
		usecase.WithEngineObserver(m),
		usecase.WithEngineLogger(log),
	}
	if cfg.BalanceSnapshotReads && store.snapshotter != nil {
		engineOpts = append(engineOpts, usecase.WithSnapshotReads(store.snapshotter))
	}
	engine := usecase.NewBalanceEngine(store.ledger, engineOpts...)

	cacheOpts := []usecase.CacheOption{
		usecase.WithTTL(cfg.BalanceCacheTTL),
		usecase.WithClock(clock),
		usecase.WithCacheObserver(m),
		usecase.WithCacheLogger(log),
	}
	if cfg.BalanceSingleFlight {
		cacheOpts = append(cacheOpts, usecase.WithSingleFlight(), usecase.WithComputeTimeout(cfg.BalanceComputeTimeout))
	}
	if sharedCache != nil {
		cacheOpts = append(cacheOpts, usecase.WithSharedCache(sharedCache))
	}
	a.cache = usecase.NewBalanceCache(cacheOpts...)

	vaultUC := usecase.NewVaultUseCase(store.txManager, retrier, store.vaults, store.audit, access, idGen)
	balanceUC := usecase.NewBalanceUseCase(engine, a.cache, access)
	movementUC := usecase.NewMovementUseCase(store.txManager, retrier, store.vaults, store.movements, store.audit, access, idGen, clock)
	inventoryUC := usecase.NewInventoryUseCase(store.txManager, retrier, store.vaults, store.inventories, store.audit, access, idGen, clock)

	routerCfg := httpAdapter.RouterConfig{
		VaultHandler:     handler.NewVaultHandler(vaultUC),
		BalanceHandler:   handler.NewBalanceHandler(balanceUC),
		MovementHandler:  handler.NewMovementHandler(movementUC, m),
		InventoryHandler: handler.NewInventoryHandler(inventoryUC, m),
		HealthHandler:    handler.NewHealthHandler(checks...),
		Logger:           log,
		Metrics:          m,
		MetricsHandler:   promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}),
	}

	if cfg.RateLimitRPS > 0 {
		a.limiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, m)
		routerCfg.RateLimiter = a.limiter
	}

	if cfg.AuthEnabled {
		routerCfg.TokenVerifier = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	} else {
		log.Warn().Msg("authentication disabled; every caller has full access")
	}

	if idempotency != nil {
		routerCfg.Idempotency = middleware.NewIdempotencyMiddleware(idempotency, cfg.IdempotencyTTL, log, m)
	}

	a.handler = httpAdapter.NewRouter(routerCfg)

	return a, nil
}

func openStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*storage, error) {
	switch cfg.StorageDriver {
	case config.StorageDriverMemory:
		log.Warn().Msg("using in-memory storage; data is lost on restart")
		store := memory.NewStore()
		return &storage{
			ledger:      store,
			snapshotter: store,
			txManager:   store,
			vaults:      store,
			movements:   store.MovementRepository(),
			inventories: store.InventoryRepository(),
			audit:       store.AuditRepository(),
			close:       func() {},
		}, nil

	case config.StorageDriverPostgres:
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log); err != nil {
			return nil, err
		}

		pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
			DatabaseURL:    cfg.DatabaseURL,
			MaxConns:       cfg.DatabaseMaxConns,
			MinConns:       cfg.DatabaseMinConns,
			ConnectTimeout: cfg.DatabaseTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		log.Info().Msg("connected to postgres")

		ledger := postgresRepo.NewLedgerStore(pool)
		return &storage{
			ledger:      ledger,
			snapshotter: ledger,
			txManager:   postgresRepo.NewTxManager(pool),
			vaults:      postgresRepo.NewVaultRepository(pool),
			movements:   postgresRepo.NewMovementRepository(pool),
			inventories: postgresRepo.NewInventoryRepository(pool),
			audit:       postgresRepo.NewAuditRepository(pool),
			checks:      []handler.HealthCheck{{Name: "postgres", Ping: pool.Ping}},
			close:       pool.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

func redisPing(client *goredis.Client) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}

// runMaintenance drops expired cache entries and idle rate limiter buckets
// until ctx is done.
func (a *app) runMaintenance(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.maintain()
		}
	}
}

func (a *app) maintain() {
	purged := a.cache.Purge()
	var dropped int
	if a.limiter != nil {
		dropped = a.limiter.CleanupLimiters(rateLimiterIdle)
	}
	if purged > 0 || dropped > 0 {
		a.logger.Debug().Int("cache_entries", purged).Int("rate_limiters", dropped).Msg("maintenance")
	}
}

// Close releases every resource in reverse acquisition order.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
