package handler

import (
	"wallet-service/internal/adapter/http/middleware"
	redisStore "wallet-service/internal/adapter/storage/redis"
	"wallet-service/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const maxBodyBytes = 1 << 20

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	WalletSvc      ports.WalletService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	RateLimitRule  middleware.RateLimitRule
	HealthCheckers []ports.HealthChecker
	Drain          *middleware.Drain // nil = no request draining
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(maxBodyBytes))
	if deps.Drain != nil {
		r.Use(deps.Drain.Middleware())
	}

	r.NoRoute(middleware.NoRoute())

	// Health check (deep: pings storage and Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	swagger := r.Group("/swagger")
	{
		swagger.GET("", SwaggerUI)
		swagger.GET("/spec", SwaggerSpec)
	}

	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, deps.RateLimitRule, deps.Logger)
	}

	walletHandler := NewWalletHandler(deps.WalletSvc)

	v1 := r.Group("/api/v1")
	wallets := v1.Group("/wallets")
	{
		wallets.POST("", rl("wallet_create"), walletHandler.CreateWallet)
		wallets.POST("/:wallet_id/operation", rl("wallet_operation"), walletHandler.PerformOperation)
		wallets.GET("/:wallet_id/balance", walletHandler.GetBalance)
	}

	return r
}
