// Package http assembles the REST API: router, middleware chain and
// server lifecycle.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/credgem/credgem/internal/adapters/http/common"
	"github.com/credgem/credgem/internal/adapters/http/handlers"
	"github.com/credgem/credgem/internal/adapters/http/middleware"
)

// RouterConfig carries everything the router needs besides use cases.
type RouterConfig struct {
	Logger         *slog.Logger
	Pool           *pgxpool.Pool
	Redis          *redis.Client
	Version        string
	BuildTime      string
	Environment    string
	AllowedOrigins []string
	// AuthTokenValidator resolves bearer tokens; nil disables auth
	// (development only).
	AuthTokenValidator func(token string) (*middleware.AuthClaims, error)
}

// DefaultRouterConfig is the development configuration.
func DefaultRouterConfig() *RouterConfig {
	return &RouterConfig{
		Logger:         slog.Default(),
		Version:        "dev",
		BuildTime:      "unknown",
		Environment:    "development",
		AllowedOrigins: []string{"*"},
	}
}

// WalletUseCases bundles the wallet handler dependencies.
type WalletUseCases struct {
	Create handlers.CreateWalletUseCase
	Get    handlers.GetWalletUseCase
	Update handlers.UpdateWalletUseCase
	Delete handlers.DeleteWalletUseCase
	List   handlers.ListWalletsUseCase
}

// CreditTypeUseCases bundles the credit type handler dependencies.
type CreditTypeUseCases struct {
	Create handlers.CreateCreditTypeUseCase
	Get    handlers.GetCreditTypeUseCase
	Update handlers.UpdateCreditTypeUseCase
	Delete handlers.DeleteCreditTypeUseCase
	List   handlers.ListCreditTypesUseCase
}

// TransactionUseCases bundles the ledger handler dependencies.
type TransactionUseCases struct {
	Deposit handlers.DepositUseCase
	Debit   handlers.DebitUseCase
	Hold    handlers.HoldUseCase
	Release handlers.ReleaseUseCase
	Adjust  handlers.AdjustUseCase
	Get     handlers.GetTransactionUseCase
	List    handlers.ListTransactionsUseCase
}

// RouterBuilder assembles the engine step by step.
type RouterBuilder struct {
	config       *RouterConfig
	wallets      *WalletUseCases
	creditTypes  *CreditTypeUseCases
	transactions *TransactionUseCases
}

// NewRouterBuilder creates a builder.
func NewRouterBuilder(config *RouterConfig) *RouterBuilder {
	if config == nil {
		config = DefaultRouterConfig()
	}
	return &RouterBuilder{config: config}
}

// WithWalletUseCases sets the wallet use cases.
func (b *RouterBuilder) WithWalletUseCases(useCases *WalletUseCases) *RouterBuilder {
	b.wallets = useCases
	return b
}

// WithCreditTypeUseCases sets the credit type use cases.
func (b *RouterBuilder) WithCreditTypeUseCases(useCases *CreditTypeUseCases) *RouterBuilder {
	b.creditTypes = useCases
	return b
}

// WithTransactionUseCases sets the ledger use cases.
func (b *RouterBuilder) WithTransactionUseCases(useCases *TransactionUseCases) *RouterBuilder {
	b.transactions = useCases
	return b
}

// Build produces the configured Gin engine.
func (b *RouterBuilder) Build() *gin.Engine {
	if b.config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Recovery first so every later middleware is covered.
	router.Use(middleware.Recovery(&middleware.RecoveryConfig{
		Logger:           b.config.Logger,
		EnableStackTrace: b.config.Environment != "production",
	}))
	router.Use(middleware.RequestID())

	if b.config.Environment == "production" {
		router.Use(middleware.CORS(middleware.ProductionCORSConfig(b.config.AllowedOrigins)))
	} else {
		router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	}

	router.Use(middleware.Logging(&middleware.LoggingConfig{
		Logger:    b.config.Logger,
		SkipPaths: []string{"/health", "/live", "/ready", "/metrics"},
	}))
	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
	router.Use(middleware.Metrics())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	healthHandler := handlers.NewHealthHandler(
		b.config.Pool,
		b.config.Redis,
		b.config.Version,
		b.config.BuildTime,
	)
	healthHandler.RegisterRoutes(router)

	v1 := router.Group("/api/v1")
	if b.config.AuthTokenValidator != nil {
		v1.Use(middleware.Auth(&middleware.AuthConfig{
			TokenValidator: b.config.AuthTokenValidator,
		}))
	}

	if b.wallets != nil {
		walletHandler := handlers.NewWalletHandler(
			b.wallets.Create,
			b.wallets.Get,
			b.wallets.Update,
			b.wallets.Delete,
			b.wallets.List,
		)
		wallets := v1.Group("/wallets")
		{
			wallets.POST("", walletHandler.CreateWallet)
			wallets.GET("", walletHandler.ListWallets)
			wallets.GET("/:id", walletHandler.GetWallet)
			wallets.PUT("/:id", walletHandler.UpdateWallet)
			wallets.DELETE("/:id", walletHandler.DeleteWallet)
		}
	}

	if b.creditTypes != nil {
		creditTypeHandler := handlers.NewCreditTypeHandler(
			b.creditTypes.Create,
			b.creditTypes.Get,
			b.creditTypes.Update,
			b.creditTypes.Delete,
			b.creditTypes.List,
		)
		creditTypes := v1.Group("/credit-types")
		{
			creditTypes.POST("", creditTypeHandler.CreateCreditType)
			creditTypes.GET("", creditTypeHandler.ListCreditTypes)
			creditTypes.GET("/:id", creditTypeHandler.GetCreditType)
			creditTypes.PUT("/:id", creditTypeHandler.UpdateCreditType)
			creditTypes.DELETE("/:id", creditTypeHandler.DeleteCreditType)
		}
	}

	if b.transactions != nil {
		txHandler := handlers.NewTransactionHandler(
			b.transactions.Deposit,
			b.transactions.Debit,
			b.transactions.Hold,
			b.transactions.Release,
			b.transactions.Adjust,
			b.transactions.Get,
			b.transactions.List,
		)

		transactions := v1.Group("/transactions")
		{
			transactions.GET("", txHandler.ListTransactions)
			transactions.GET("/:id", txHandler.GetTransaction)
		}

		// Ledger operations mutate balances and get the tighter budget.
		ledgerOps := v1.Group("/wallets")
		ledgerOps.Use(middleware.LedgerRateLimit())
		{
			ledgerOps.POST("/:id/deposit", txHandler.Deposit)
			ledgerOps.POST("/:id/debit", txHandler.Debit)
			ledgerOps.POST("/:id/hold", txHandler.Hold)
			ledgerOps.POST("/:id/release", txHandler.Release)
			ledgerOps.POST("/:id/adjust", txHandler.Adjust)
		}
		v1.GET("/wallets/:id/transactions", txHandler.ListWalletTransactions)
	}

	router.NoRoute(func(c *gin.Context) {
		common.Error(c, http.StatusNotFound, &common.APIError{
			Code:    common.ErrCodeNotFound,
			Message: "Endpoint not found",
		})
	})

	return router
}

// NewRouter builds a router from a config alone (no API routes).
func NewRouter(config *RouterConfig) *gin.Engine {
	return NewRouterBuilder(config).Build()
}
