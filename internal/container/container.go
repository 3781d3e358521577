// Package container wires the application together: configuration,
// logger, PostgreSQL pool, Redis locker, repositories, use cases and
// the HTTP server.
package container

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	httpadapter "github.com/credgem/credgem/internal/adapters/http"
	"github.com/credgem/credgem/internal/adapters/http/middleware"
	"github.com/credgem/credgem/internal/application/ports"
	"github.com/credgem/credgem/internal/application/usecases/credittype"
	"github.com/credgem/credgem/internal/application/usecases/transaction"
	"github.com/credgem/credgem/internal/application/usecases/wallet"
	"github.com/credgem/credgem/internal/config"
	"github.com/credgem/credgem/internal/infrastructure/locking"
	"github.com/credgem/credgem/internal/infrastructure/persistence/postgres"
	"github.com/credgem/credgem/internal/pkg/logger"
)

// Container holds every constructed dependency.
type Container struct {
	config *config.Config
	logger *slog.Logger

	pool        *pgxpool.Pool
	redisClient *redis.Client
	locker      ports.Locker

	walletRepo      ports.WalletRepository
	creditTypeRepo  ports.CreditTypeRepository
	balanceRepo     ports.BalanceRepository
	transactionRepo ports.TransactionRepository
	outboxRepo      ports.OutboxRepository

	uow       ports.UnitOfWork
	publisher ports.EventPublisher

	createWallet *wallet.CreateWalletUseCase
	getWallet    *wallet.GetWalletUseCase
	updateWallet *wallet.UpdateWalletUseCase
	deleteWallet *wallet.DeleteWalletUseCase
	listWallets  *wallet.ListWalletsUseCase

	createCreditType *credittype.CreateCreditTypeUseCase
	getCreditType    *credittype.GetCreditTypeUseCase
	updateCreditType *credittype.UpdateCreditTypeUseCase
	deleteCreditType *credittype.DeleteCreditTypeUseCase
	listCreditTypes  *credittype.ListCreditTypesUseCase

	deposit          *transaction.DepositUseCase
	debit            *transaction.DebitUseCase
	hold             *transaction.HoldUseCase
	release          *transaction.ReleaseUseCase
	adjust           *transaction.AdjustUseCase
	getTransaction   *transaction.GetTransactionUseCase
	listTransactions *transaction.ListTransactionsUseCase

	httpServer *httpadapter.Server

	// Test overrides installed before Initialize.
	overridePool      *pgxpool.Pool
	overrideLocker    ports.Locker
	overridePublisher ports.EventPublisher
}

// New creates an empty container for the configuration.
func New(cfg *config.Config) *Container {
	return &Container{config: cfg}
}

// Initialize constructs all dependencies in order. Partially
// initialized resources are released on failure.
func (c *Container) Initialize(ctx context.Context) error {
	c.initLogger()

	if err := c.initDatabase(ctx); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := c.initLocker(ctx); err != nil {
		c.pool.Close()
		return fmt.Errorf("failed to initialize locker: %w", err)
	}

	c.initRepositories()
	c.initUseCases()
	c.initHTTPServer()

	c.logger.Info("container initialized",
		slog.String("environment", c.config.App.Environment),
		slog.Bool("auth_enabled", c.config.Auth.Enabled),
		slog.Bool("memory_lock", c.config.Lock.UseMemory),
	)

	return nil
}

func (c *Container) initLogger() {
	if c.logger != nil {
		return
	}
	c.logger = logger.Setup(&logger.Config{
		Level:  c.config.Log.Level,
		Format: c.config.Log.Format,
	})
}

func (c *Container) initDatabase(ctx context.Context) error {
	if c.overridePool != nil {
		c.pool = c.overridePool
		return nil
	}

	pool, err := postgres.NewConnectionPool(ctx, postgres.Config{
		Host:            c.config.Database.Host,
		Port:            c.config.Database.Port,
		Database:        c.config.Database.Database,
		User:            c.config.Database.User,
		Password:        c.config.Database.Password,
		SSLMode:         c.config.Database.SSLMode,
		MaxConns:        c.config.Database.MaxConnections,
		MinConns:        c.config.Database.MinConnections,
		MaxConnLifetime: c.config.Database.MaxConnLifetime,
		MaxConnIdleTime: c.config.Database.MaxConnIdleTime,
	})
	if err != nil {
		return err
	}

	c.pool = pool
	c.logger.Info("database connection established",
		slog.String("host", c.config.Database.Host),
		slog.String("database", c.config.Database.Database),
	)
	return nil
}

func (c *Container) initLocker(ctx context.Context) error {
	if c.overrideLocker != nil {
		c.locker = c.overrideLocker
		return nil
	}

	if c.config.Lock.UseMemory {
		c.locker = locking.NewMemoryLocker(c.config.Lock.WaitFor)
		c.logger.Warn("using in-memory balance locks, do not run multiple instances")
		return nil
	}

	c.redisClient = redis.NewClient(&redis.Options{
		Addr:     c.config.Redis.Addr,
		Password: c.config.Redis.Password,
		DB:       c.config.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := c.redisClient.Ping(pingCtx).Err(); err != nil {
		_ = c.redisClient.Close()
		c.redisClient = nil
		return fmt.Errorf("failed to ping redis: %w", err)
	}

	c.locker = locking.NewRedisLocker(c.redisClient, c.config.Lock.WaitFor)
	c.logger.Info("redis lock backend connected", slog.String("addr", c.config.Redis.Addr))
	return nil
}

func (c *Container) initRepositories() {
	c.walletRepo = postgres.NewWalletRepository(c.pool)
	c.creditTypeRepo = postgres.NewCreditTypeRepository(c.pool)
	c.balanceRepo = postgres.NewBalanceRepository(c.pool)
	c.transactionRepo = postgres.NewTransactionRepository(c.pool)
	c.outboxRepo = postgres.NewOutboxRepository(c.pool)

	c.uow = postgres.NewUnitOfWork(c.pool)

	if c.overridePublisher != nil {
		c.publisher = c.overridePublisher
	} else {
		c.publisher = postgres.NewOutboxPublisher(c.outboxRepo)
	}
}

func (c *Container) initUseCases() {
	c.createWallet = wallet.NewCreateWalletUseCase(c.walletRepo, c.publisher, c.uow)
	c.getWallet = wallet.NewGetWalletUseCase(c.walletRepo, c.balanceRepo)
	c.updateWallet = wallet.NewUpdateWalletUseCase(c.walletRepo, c.balanceRepo, c.publisher, c.uow)
	c.deleteWallet = wallet.NewDeleteWalletUseCase(c.walletRepo, c.balanceRepo, c.publisher, c.uow)
	c.listWallets = wallet.NewListWalletsUseCase(c.walletRepo, c.balanceRepo)

	c.createCreditType = credittype.NewCreateCreditTypeUseCase(c.creditTypeRepo, c.publisher, c.uow)
	c.getCreditType = credittype.NewGetCreditTypeUseCase(c.creditTypeRepo)
	c.updateCreditType = credittype.NewUpdateCreditTypeUseCase(c.creditTypeRepo, c.uow)
	c.deleteCreditType = credittype.NewDeleteCreditTypeUseCase(c.creditTypeRepo, c.uow)
	c.listCreditTypes = credittype.NewListCreditTypesUseCase(c.creditTypeRepo)

	orch := transaction.NewOrchestrator(
		c.walletRepo,
		c.creditTypeRepo,
		c.balanceRepo,
		c.transactionRepo,
		c.publisher,
		c.locker,
		c.uow,
		c.logger,
	).WithLockTTL(c.config.Lock.TTL)

	c.deposit = transaction.NewDepositUseCase(orch)
	c.debit = transaction.NewDebitUseCase(orch)
	c.hold = transaction.NewHoldUseCase(orch)
	c.release = transaction.NewReleaseUseCase(orch)
	c.adjust = transaction.NewAdjustUseCase(orch)
	c.getTransaction = transaction.NewGetTransactionUseCase(c.transactionRepo)
	c.listTransactions = transaction.NewListTransactionsUseCase(c.transactionRepo)
}

func (c *Container) initHTTPServer() {
	routerConfig := &httpadapter.RouterConfig{
		Logger:         c.logger,
		Pool:           c.pool,
		Redis:          c.redisClient,
		Version:        c.config.App.Version,
		BuildTime:      c.config.App.BuildTime,
		Environment:    c.config.App.Environment,
		AllowedOrigins: c.config.CORS.AllowedOrigins,
	}
	if c.config.Auth.Enabled {
		routerConfig.AuthTokenValidator = middleware.JWTTokenValidator(c.config.Auth.JWTSecret)
	}

	router := httpadapter.NewRouterBuilder(routerConfig).
		WithWalletUseCases(&httpadapter.WalletUseCases{
			Create: c.createWallet,
			Get:    c.getWallet,
			Update: c.updateWallet,
			Delete: c.deleteWallet,
			List:   c.listWallets,
		}).
		WithCreditTypeUseCases(&httpadapter.CreditTypeUseCases{
			Create: c.createCreditType,
			Get:    c.getCreditType,
			Update: c.updateCreditType,
			Delete: c.deleteCreditType,
			List:   c.listCreditTypes,
		}).
		WithTransactionUseCases(&httpadapter.TransactionUseCases{
			Deposit: c.deposit,
			Debit:   c.debit,
			Hold:    c.hold,
			Release: c.release,
			Adjust:  c.adjust,
			Get:     c.getTransaction,
			List:    c.listTransactions,
		}).
		Build()

	c.httpServer = httpadapter.NewServer(&httpadapter.ServerConfig{
		Host:            c.config.Server.Host,
		Port:            fmt.Sprintf("%d", c.config.Server.Port),
		ReadTimeout:     c.config.Server.ReadTimeout,
		WriteTimeout:    c.config.Server.WriteTimeout,
		IdleTimeout:     c.config.Server.IdleTimeout,
		ShutdownTimeout: c.config.Server.ShutdownTimeout,
		Logger:          c.logger,
	}, router)
}

// Run serves HTTP until a shutdown signal, then releases resources.
func (c *Container) Run() error {
	serveErr := c.httpServer.Run()

	if err := c.Shutdown(context.Background()); err != nil {
		c.logger.Error("shutdown error", slog.String("error", err.Error()))
	}

	return serveErr
}

// Shutdown closes Redis and the database pool. The HTTP server has
// already drained by the time Run calls this.
func (c *Container) Shutdown(ctx context.Context) error {
	var firstErr error

	if c.redisClient != nil {
		if err := c.redisClient.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close redis client: %w", err)
		}
		c.redisClient = nil
	}

	if c.pool != nil && c.overridePool == nil {
		done := make(chan struct{})
		go func() {
			c.pool.Close()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(10 * time.Second):
			if firstErr == nil {
				firstErr = fmt.Errorf("timed out closing database pool")
			}
		}
		c.pool = nil
	}

	c.logger.Info("container shut down")
	return firstErr
}

// Logger returns the application logger.
func (c *Container) Logger() *slog.Logger { return c.logger }

// Pool returns the database pool.
func (c *Container) Pool() *pgxpool.Pool { return c.pool }

// Locker returns the balance pair locker.
func (c *Container) Locker() ports.Locker { return c.locker }

// HTTPServer returns the configured HTTP server.
func (c *Container) HTTPServer() *httpadapter.Server { return c.httpServer }

// WithPool installs an externally managed pool (tests). The container
// does not close it on shutdown.
func (c *Container) WithPool(pool *pgxpool.Pool) *Container {
	c.overridePool = pool
	return c
}

// WithLocker installs a locker, bypassing Redis setup.
func (c *Container) WithLocker(l ports.Locker) *Container {
	c.overrideLocker = l
	return c
}

// WithEventPublisher installs a publisher, bypassing the outbox.
func (c *Container) WithEventPublisher(p ports.EventPublisher) *Container {
	c.overridePublisher = p
	return c
}

// WithLogger installs a logger instead of building one from config.
func (c *Container) WithLogger(l *slog.Logger) *Container {
	c.logger = l
	return c
}
