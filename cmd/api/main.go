package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"wallet-service/config"
	httpHandler "wallet-service/internal/adapter/http/handler"
	"wallet-service/internal/adapter/http/middleware"
	memStorage "wallet-service/internal/adapter/storage/memory"
	pgStorage "wallet-service/internal/adapter/storage/postgres"
	redisStorage "wallet-service/internal/adapter/storage/redis"
	"wallet-service/internal/core/domain"
	"wallet-service/internal/core/ports"
	"wallet-service/internal/service"
	"wallet-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// storage bundles the ports served by one storage driver.
type storage struct {
	repo       ports.WalletRepository
	transactor ports.DBTransactor
	health     ports.HealthChecker
	close      func()
}

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)
	gin.SetMode(cfg.Server.Mode)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Str("driver", cfg.Database.Driver).
		Int("port", cfg.Server.Port).
		Msg("Starting Wallet Service")

	ctx := context.Background()

	store, err := openStorage(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open storage")
	}
	defer store.close()

	minAmount, err := cfg.Wallet.MinAmount()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid minimum operation amount")
	}
	walletSvc := service.NewWalletService(store.repo, store.transactor, domain.NewStrategySet(minAmount), log)

	healthCheckers := []ports.HealthChecker{store.health}

	// Redis backs rate limiting only; the service runs without it.
	var rateLimitStore *redisStorage.RateLimitStore
	if cfg.Redis.Enabled {
		rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()

		healthCheckers = append(healthCheckers, redisStorage.NewHealthCheck(rdb))
		if cfg.RateLimit.Enabled {
			rateLimitStore = redisStorage.NewRateLimitStore(rdb)
		}
	} else if cfg.RateLimit.Enabled {
		log.Warn().Msg("Rate limiting enabled but Redis is disabled, requests will not be limited")
	}

	drain := middleware.NewDrain(log)

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		WalletSvc:      walletSvc,
		RateLimitStore: rateLimitStore,
		RateLimitRule: middleware.RateLimitRule{
			Limit:  cfg.RateLimit.Limit,
			Window: cfg.RateLimit.Window,
		},
		HealthCheckers: healthCheckers,
		Drain:          drain,
		Logger:         log,
	})

	srv := &http.Server{
		Addr:    cfg.Server.Addr(),
		Handler: router,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Let in-flight wallet operations commit before connections close.
	if err := drain.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Int64("active_requests", drain.Active()).Msg("Requests still in flight")
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

func openStorage(ctx context.Context, cfg config.DatabaseConfig, log zerolog.Logger) (*storage, error) {
	if cfg.Driver == config.DriverMemory {
		store := memStorage.NewStore(memStorage.WithLockTimeout(cfg.LockTimeout))
		log.Warn().Msg("Using in-memory storage, wallets are lost on restart")
		return &storage{
			repo:       store,
			transactor: store,
			health:     store,
			close:      func() {},
		}, nil
	}

	pool, err := pgStorage.NewPool(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if cfg.AutoMigrate {
		if err := pgStorage.Migrate(ctx, pool, log); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
	}

	return &storage{
		repo:       pgStorage.NewWalletRepo(pool),
		transactor: pgStorage.NewTransactor(pool),
		health:     pgStorage.NewHealthCheck(pool),
		close:      pool.Close,
	}, nil
}
