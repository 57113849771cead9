package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	httpAdapter "github.com/iho/gowallet/internal/adapter/http"
	"github.com/iho/gowallet/internal/adapter/http/handler"
	"github.com/iho/gowallet/internal/adapter/http/middleware"
	"github.com/iho/gowallet/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/gowallet/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/gowallet/internal/adapter/repository/redis"
	"github.com/iho/gowallet/internal/infrastructure/amqp"
	"github.com/iho/gowallet/internal/infrastructure/config"
	"github.com/iho/gowallet/internal/infrastructure/eventpublisher"
	applogger "github.com/iho/gowallet/internal/infrastructure/logger"
	"github.com/iho/gowallet/internal/infrastructure/metrics"
	"github.com/iho/gowallet/internal/infrastructure/postgres"
	"github.com/iho/gowallet/internal/infrastructure/redis"
	"github.com/iho/gowallet/internal/usecase"
)

const rateLimiterCleanupInterval = time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := applogger.New(applogger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server stopped with error")
	}

	logger.Info().Msg("server stopped")
}

// repositories is one storage backend with its readiness checks.
type repositories struct {
	txManager   usecase.TransactionManager
	wallets     usecase.WalletRepository
	items       usecase.WalletItemRepository
	users       usecase.UserRepository
	userWallets usecase.UserWalletRepository
	outbox      usecase.OutboxRepository
	checks      map[string]handler.Checker
	close       func()
}

// app is the wired service, ready to serve.
type app struct {
	handler     http.Handler
	publisher   *eventpublisher.EventPublisher
	rateLimiter *middleware.RateLimiter
	close       func()
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	a, err := newApp(ctx, cfg, logger, metrics.New())
	if err != nil {
		return err
	}
	defer a.close()

	return serve(ctx, cfg, logger, a)
}

// serve runs the HTTP server and background workers until ctx is done or one
// of them fails.
func serve(ctx context.Context, cfg *config.Config, logger zerolog.Logger, a *app) error {
	server := newServer(cfg, a.handler)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().Str("port", cfg.HTTPPort).Str("backend", cfg.StorageBackend).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		if err := a.publisher.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	if a.rateLimiter != nil {
		g.Go(func() error {
			return a.rateLimiter.Run(gctx, rateLimiterCleanupInterval)
		})
	}

	return g.Wait()
}

func newApp(ctx context.Context, cfg *config.Config, logger zerolog.Logger, m *metrics.Metrics) (*app, error) {
	repos, err := newRepositories(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	closers := []func(){repos.close}
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var idempotencyStore usecase.IdempotencyStore
	if cfg.IdempotencyEnabled {
		client, err := redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		closers = append(closers, func() { client.Close() })
		idempotencyStore = redisRepo.NewIdempotencyStore(client)
		repos.checks["redis"] = handler.CheckerFunc(func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
		logger.Info().Msg("connected to redis")
	}

	publisher, closePublisher, err := newPublisher(cfg, logger)
	if err != nil {
		closeAll()
		return nil, err
	}
	closers = append(closers, closePublisher)

	idGen := postgresRepo.NewULIDGenerator()

	walletUC := usecase.NewWalletUseCase(repos.txManager, repos.wallets, repos.items, repos.outbox, idGen, m)
	itemUC := usecase.NewWalletItemUseCase(repos.txManager, repos.wallets, repos.items, repos.outbox, idGen, m)
	reconcileUC := usecase.NewReconciliationUseCase(repos.txManager, repos.wallets, repos.items, repos.outbox, m)
	userUC := usecase.NewUserUseCase(repos.users, idGen)
	userWalletUC := usecase.NewUserWalletUseCase(repos.users, repos.wallets, repos.userWallets, idGen)

	var rateLimiter *middleware.RateLimiter
	if cfg.RateLimitRPS > 0 {
		rateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).
			OnLimit(m.RateLimitHits.Inc)
	}

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		WalletHandler:     handler.NewWalletHandler(walletUC, reconcileUC),
		WalletItemHandler: handler.NewWalletItemHandler(itemUC),
		UserHandler:       handler.NewUserHandler(userUC, userWalletUC),
		HealthHandler:     handler.NewHealthHandler(repos.checks),
		Logger:            logger,
		IdempotencyStore:  idempotencyStore,
		IdempotencyTTL:    cfg.IdempotencyTTL,
		RateLimiter:       rateLimiter,
		Metrics:           m,
	})

	return &app{
		handler: router,
		publisher: eventpublisher.NewEventPublisher(eventpublisher.Config{
			OutboxRepo: repos.outbox,
			Publisher:  publisher,
			Observer:   m,
			Logger:     logger,
			BatchSize:  cfg.OutboxBatchSize,
			Interval:   cfg.OutboxInterval,
		}),
		rateLimiter: rateLimiter,
		close:       closeAll,
	}, nil
}

func newRepositories(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*repositories, error) {
	if !cfg.UsesPostgres() {
		logger.Warn().Msg("using in-memory storage; data is lost on restart")

		store := memory.NewStore()
		return &repositories{
			txManager:   memory.NewTxManager(store),
			wallets:     memory.NewWalletRepository(store),
			items:       memory.NewWalletItemRepository(store),
			users:       memory.NewUserRepository(store),
			userWallets: memory.NewUserWalletRepository(store),
			outbox:      memory.NewOutboxRepository(store),
			checks:      map[string]handler.Checker{},
			close:       func() {},
		}, nil
	}

	var pool *pgxpool.Pool
	err := postgresRepo.NewRetrier(logger).Retry(ctx, func() error {
		var err error
		pool, err = postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
			DatabaseURL:    cfg.DatabaseURL,
			MaxConns:       cfg.DatabaseMaxConns,
			MinConns:       cfg.DatabaseMinConns,
			ConnectTimeout: cfg.DatabaseConnectTimeout,
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info().Msg("connected to postgres")

	if cfg.MigrateOnStart {
		if err := postgres.RunMigrations(cfg.DatabaseURL, logger); err != nil {
			pool.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}

	return &repositories{
		txManager:   postgresRepo.NewTxManager(pool),
		wallets:     postgresRepo.NewWalletRepository(pool),
		items:       postgresRepo.NewWalletItemRepository(pool),
		users:       postgresRepo.NewUserRepository(pool),
		userWallets: postgresRepo.NewUserWalletRepository(pool),
		outbox:      postgresRepo.NewOutboxRepository(pool),
		checks:      map[string]handler.Checker{"postgres": pool},
		close:       pool.Close,
	}, nil
}

// newPublisher returns the AMQP publisher when AMQP_URL is set and a log
// publisher otherwise.
func newPublisher(cfg *config.Config, logger zerolog.Logger) (eventpublisher.Publisher, func(), error) {
	if cfg.AMQPURL == "" {
		return eventpublisher.NewLogPublisher(logger), func() {}, nil
	}

	p, err := amqp.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to amqp: %w", err)
	}
	logger.Info().Str("exchange", cfg.AMQPExchange).Msg("connected to amqp")

	return p, func() { _ = p.Close() }, nil
}

func newServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      h,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}
}
