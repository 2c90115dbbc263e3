package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/coffre/internal/adapter/http/handler"
	"github.com/iho/coffre/internal/adapter/http/middleware"
	"github.com/iho/coffre/internal/domain"
	"github.com/iho/coffre/internal/infrastructure/metrics"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	VaultHandler     *handler.VaultHandler
	BalanceHandler   *handler.BalanceHandler
	MovementHandler  *handler.MovementHandler
	InventoryHandler *handler.InventoryHandler
	HealthHandler    *handler.HealthHandler

	Logger zerolog.Logger

	// Optional collaborators; nil disables the feature.
	Metrics        *metrics.Metrics
	MetricsHandler http.Handler
	RateLimiter    *middleware.RateLimiter
	TokenVerifier  middleware.TokenVerifier
	Idempotency    *middleware.IdempotencyMiddleware
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.TokenVerifier != nil {
			r.Use(middleware.AuthMiddleware(cfg.TokenVerifier, cfg.Metrics))
		}

		// Idempotency middleware for mutating requests
		if cfg.Idempotency != nil {
			r.Use(cfg.Idempotency.Wrap)
		}

		manage := middleware.RequireRole(domain.Role.CanManageVaults)
		record := middleware.RequireRole(domain.Role.CanRecord)
		remove := middleware.RequireRole(domain.Role.CanDelete)
		audit := middleware.RequireRole(domain.Role.CanReadAudit)

		r.Route("/vaults", func(r chi.Router) {
			r.Get("/", cfg.VaultHandler.List)
			r.With(manage).Post("/", cfg.VaultHandler.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", cfg.VaultHandler.Get)
				r.With(manage).Post("/members", cfg.VaultHandler.AddMember)

				r.Get("/balance", cfg.BalanceHandler.Get)

				r.Get("/movements", cfg.MovementHandler.List)
				r.With(record).Post("/movements", cfg.MovementHandler.Create)
				r.With(remove).Delete("/movements/{movementID}", cfg.MovementHandler.Delete)
				r.With(audit).Get("/movements/{movementID}/audit", cfg.MovementHandler.Audit)

				r.Get("/inventories", cfg.InventoryHandler.List)
				r.With(record).Post("/inventories", cfg.InventoryHandler.Create)
			})
		})
	})

	return r
}
