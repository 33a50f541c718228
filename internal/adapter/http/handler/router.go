package handler

import (
	"net/http"

	"custodial-wallet/internal/adapter/http/middleware"
	"custodial-wallet/internal/core/domain"
	"custodial-wallet/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Metrics is the collector set the router reports to and serves.
type Metrics interface {
	middleware.HTTPObserver
	middleware.RateLimitObserver
	Handler() http.Handler
}

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	Identity       ports.IdentityService
	Ledger         ports.LedgerService
	TxLog          ports.TransactionLogService
	KYC            ports.KYCService
	Prices         ports.PriceService
	Admin          ports.AdminService
	Gateway        ports.SessionGateway
	RateLimiter    ports.RateLimiter                   // nil = rate limiting disabled
	RateLimitRules map[string]middleware.RateLimitRule // nil = DefaultRateLimitRules
	Metrics        Metrics                             // nil = no /metrics
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	if deps.Metrics != nil {
		r.Use(middleware.Metrics(deps.Metrics))
	}
	r.Use(middleware.MaxBodySize(middleware.DefaultMaxBodyBytes))

	health := HealthCheck(deps.HealthCheckers...)
	r.GET("/health", health)

	rules := deps.RateLimitRules
	if rules == nil {
		rules = middleware.DefaultRateLimitRules()
	}

	// rl returns the limiter for group, or a no-op when limiting is off.
	rl := func(group string) gin.HandlerFunc {
		rule, ok := rules[group]
		if deps.RateLimiter == nil || !ok {
			return func(c *gin.Context) { c.Next() }
		}
		var obs middleware.RateLimitObserver
		if deps.Metrics != nil {
			obs = deps.Metrics
		}
		return middleware.RateLimiter(deps.RateLimiter, group, rule, obs, deps.Logger)
	}

	v1 := r.Group("/api/v1")
	v1.GET("/health", health)
	if deps.Metrics != nil {
		v1.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	// --- Public routes ---
	authHandler := NewAuthHandler(deps.Identity)
	auth := v1.Group("/auth")
	{
		auth.POST("/register", rl("auth_register"), authHandler.Register)
		auth.POST("/login", rl("auth_login"), authHandler.Login)
	}
	v1.GET("/crypto/prices", NewPriceHandler(deps.Prices).Prices)

	// --- User session routes ---
	userAuth := middleware.Authenticate(deps.Gateway, domain.PrincipalUser)
	userHandler := NewUserHandler(deps.Identity, deps.KYC)
	walletHandler := NewWalletHandler(deps.Ledger, deps.TxLog)

	users := v1.Group("/users/me")
	{
		users.GET("", userAuth, userHandler.Profile)
		users.PUT("", userAuth, userHandler.UpdateProfile)
		users.GET("/status", middleware.AuthenticateAllowBlocked(deps.Gateway, domain.PrincipalUser), userHandler.Status)
	}

	wallets := v1.Group("/wallets", userAuth)
	{
		wallets.GET("", walletHandler.List)
		wallets.POST("/send", rl("wallet_send"), walletHandler.Send)
		wallets.GET("/:currency", walletHandler.Get)
	}
	v1.GET("/transactions", userAuth, walletHandler.Transactions)

	kyc := v1.Group("/kyc", userAuth)
	{
		kyc.POST("", userHandler.SubmitKYC)
		kyc.GET("/status", userHandler.KYCStatus)
	}

	// --- Admin routes ---
	adminHandler := NewAdminHandler(deps.Identity, deps.Admin)
	v1.POST("/admin/login", rl("admin_login"), adminHandler.Login)

	admin := v1.Group("/admin", middleware.Authenticate(deps.Gateway, domain.PrincipalAdmin))
	{
		admin.POST("/register", adminHandler.Register)
		admin.GET("/profile", adminHandler.Profile)
		admin.GET("/dashboard", adminHandler.Dashboard)
		admin.GET("/users", adminHandler.ListUsers)
		admin.GET("/users/:id", adminHandler.UserDetails)
		admin.POST("/users/:id/block", adminHandler.Block)
		admin.POST("/users/:id/unblock", adminHandler.Unblock)
		admin.GET("/users/:id/wallets", adminHandler.UserWallets)
		admin.GET("/wallets", adminHandler.ListWallets)
		admin.POST("/send-crypto", adminHandler.SendCrypto)
		admin.GET("/crypto-transfers", adminHandler.CryptoTransfers)
		admin.GET("/transactions", adminHandler.Transactions)
		admin.GET("/actions", adminHandler.Actions)
		admin.GET("/kyc", adminHandler.ListKYC)
		admin.POST("/kyc/:id/review", adminHandler.ReviewKYC)
	}

	return r
}
