package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/gowallet/internal/adapter/http/handler"
	"github.com/iho/gowallet/internal/adapter/http/middleware"
	"github.com/iho/gowallet/internal/infrastructure/metrics"
	"github.com/iho/gowallet/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	WalletHandler     *handler.WalletHandler
	WalletItemHandler *handler.WalletItemHandler
	UserHandler       *handler.UserHandler
	HealthHandler     *handler.HealthHandler

	Logger zerolog.Logger

	// Optional
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	RateLimiter      *middleware.RateLimiter
	Metrics          *metrics.Metrics
	MetricsHandler   http.Handler
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)

	metricsHandler := cfg.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chimiddleware.AllowContentType("application/json"))

		if cfg.IdempotencyStore != nil {
			r.Use(middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL).Wrap)
		}

		// Users
		r.Route("/users", func(r chi.Router) {
			r.Post("/", cfg.UserHandler.Create)
			r.Get("/{id}", cfg.UserHandler.Get)
			r.Get("/{id}/wallets", cfg.UserHandler.ListWallets)
		})
		r.Post("/user-wallets", cfg.UserHandler.CreateWalletLink)

		// Wallets
		r.Route("/wallets", func(r chi.Router) {
			r.Post("/", cfg.WalletHandler.Create)
			r.Get("/", cfg.WalletHandler.List)
			r.Get("/{id}", cfg.WalletHandler.Get)
			r.Put("/{id}/value", cfg.WalletHandler.SetValue)
			r.Get("/{id}/items", cfg.WalletItemHandler.ListByDateRange)
			r.Get("/{id}/items/type/{type}", cfg.WalletItemHandler.ListByType)
			r.Get("/{id}/total", cfg.WalletItemHandler.Total)
			r.Get("/{id}/reconcile", cfg.WalletHandler.Reconcile)
			r.Post("/{id}/reconcile", cfg.WalletHandler.Repair)
		})

		// Wallet items
		r.Route("/wallet-items", func(r chi.Router) {
			r.Post("/", cfg.WalletItemHandler.Create)
			r.Get("/{id}", cfg.WalletItemHandler.Get)
			r.Put("/{id}", cfg.WalletItemHandler.Update)
			r.Delete("/{id}", cfg.WalletItemHandler.Delete)
		})
	})

	return r
}
