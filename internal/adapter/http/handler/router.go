package handler

import (
	"marketplace-wallet/internal/adapter/http/middleware"
	redisStore "marketplace-wallet/internal/adapter/storage/redis"
	"marketplace-wallet/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	WalletSvc      ports.WalletService
	LedgerSvc      ports.LedgerService
	FreezeSvc      ports.FreezeService
	CreditSvc      ports.CreditService
	NoteSvc        ports.NoteService
	ReportingSvc   ports.ReportingService
	ReconcileSvc   ports.ReconcileService
	LedgerRepo     ports.LedgerRepository
	TokenSvc       ports.TokenService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	adminAuth := middleware.AdminAuth(deps.TokenSvc, deps.Logger)
	walletHandler := NewWalletHandler(
		deps.WalletSvc,
		deps.LedgerSvc,
		deps.FreezeSvc,
		deps.CreditSvc,
		deps.NoteSvc,
		deps.ReportingSvc,
		deps.ReconcileSvc,
		deps.LedgerRepo,
	)

	v1 := r.Group("/api/v1")
	wallets := v1.Group("/wallets", adminAuth)
	{
		wallets.POST("", rl("wallet_mutate"), walletHandler.EnsureWallet)
		wallets.POST("/unfreeze", rl("wallet_mutate"), walletHandler.Unfreeze)
		wallets.POST("/credit-limit", rl("wallet_mutate"), walletHandler.SetCreditLimitByUser)

		wallets.GET("/:id/details", rl("wallet_read"), walletHandler.GetDetails)
		wallets.GET("/:id/transactions", rl("wallet_read"), walletHandler.ListTransactions)
		wallets.GET("/:id/reconcile", rl("reconcile"), walletHandler.Reconcile)

		wallets.POST("/:id/adjust-balance", rl("wallet_mutate"), walletHandler.AdjustBalance)
		wallets.POST("/:id/freeze", rl("wallet_mutate"), walletHandler.Freeze)
		wallets.POST("/:id/credit-limit", rl("wallet_mutate"), walletHandler.SetCreditLimit)
		wallets.POST("/:id/notes", rl("wallet_mutate"), walletHandler.AddNote)
		wallets.POST("/:id/suspend", rl("wallet_mutate"), walletHandler.Suspend)
		wallets.POST("/:id/reinstate", rl("wallet_mutate"), walletHandler.Reinstate)
	}

	return r
}
