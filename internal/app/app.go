// Package app wires configuration, storage, services and the HTTP router
// into one runnable application.
package app

import (
	"context"
	"errors"
	"fmt"

	"custodial-wallet/config"
	httpHandler "custodial-wallet/internal/adapter/http/handler"
	"custodial-wallet/internal/adapter/metrics"
	"custodial-wallet/internal/adapter/pricefeed"
	memStorage "custodial-wallet/internal/adapter/storage/memory"
	pgStorage "custodial-wallet/internal/adapter/storage/postgres"
	redisStorage "custodial-wallet/internal/adapter/storage/redis"
	"custodial-wallet/internal/chain"
	"custodial-wallet/internal/core/domain"
	"custodial-wallet/internal/core/ports"
	"custodial-wallet/internal/service"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Options overrides parts of the wiring. The zero value builds everything
// from configuration.
type Options struct {
	PriceSource ports.PriceSource     // nil = CoinGecko at price_feed.base_url
	Hasher      ports.HashService     // nil = argon2id with default parameters
	Confirmer   ports.LedgerConfirmer // nil = synthetic settlement
}

// App is a fully wired instance.
type App struct {
	Router   *gin.Engine
	Identity ports.IdentityService
	Metrics  *metrics.Metrics

	log     zerolog.Logger
	closers []func()
}

// repositories is one storage backend's implementation of every port.
type repositories struct {
	users      ports.UserRepository
	admins     ports.AdminRepository
	wallets    ports.WalletRepository
	txs        ports.TransactionRepository
	actions    ports.AdminActionRepository
	kyc        ports.KYCRepository
	transactor ports.DBTransactor
	health     ports.HealthChecker
}

// New builds the application. Close releases its connections.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger, opts Options) (*App, error) {
	a := &App{log: log, Metrics: metrics.New()}

	repos, err := a.openStorage(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	checkers := []ports.HealthChecker{repos.health}

	var (
		limiter    ports.RateLimiter
		priceCache ports.PriceCache
	)
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	switch {
	case err == nil:
		a.closers = append(a.closers, func() { rdb.Close() })
		priceCache = redisStorage.NewPriceCache(rdb)
		if cfg.RateLimit.Enabled {
			limiter = redisStorage.NewRateLimitStore(rdb)
		}
		checkers = append(checkers, redisStorage.NewHealthCheck(rdb))
	case cfg.Storage.RedisOptional:
		log.Warn().Err(err).Msg("Redis unavailable, running without rate limiting and price cache")
	default:
		a.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	currencies, err := parseCurrencies(cfg.Ledger.DefaultCurrencies)
	if err != nil {
		a.Close()
		return nil, err
	}

	encSvc, err := service.NewAESEncryptionService(cfg.AES.Key)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("initializing encryption service: %w", err)
	}
	tokenSvc, err := service.NewJWTTokenService(cfg.JWT)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("initializing token service: %w", err)
	}
	var hashSvc ports.HashService = service.NewArgon2HashService()
	if opts.Hasher != nil {
		hashSvc = opts.Hasher
	}
	var confirmer ports.LedgerConfirmer = chain.NewSyntheticConfirmer()
	if opts.Confirmer != nil {
		confirmer = opts.Confirmer
	}
	var priceSource ports.PriceSource = pricefeed.NewCoinGecko(cfg.PriceFeed)
	if opts.PriceSource != nil {
		priceSource = opts.PriceSource
	}

	auditSvc := service.NewAuditService(repos.actions, log)
	ledgerSvc := service.NewLedgerService(
		repos.users,
		repos.wallets,
		repos.txs,
		auditSvc,
		repos.transactor,
		chain.NewGenerator(&chaincfg.MainNetParams),
		encSvc,
		confirmer,
		a.Metrics,
		log,
	)
	identitySvc := service.NewIdentityService(
		repos.users,
		repos.admins,
		ledgerSvc,
		auditSvc,
		repos.transactor,
		hashSvc,
		tokenSvc,
		currencies,
		log,
	)
	txLogSvc := service.NewTransactionLogService(repos.txs)
	kycSvc := service.NewKYCService(repos.kyc, repos.users, auditSvc, repos.transactor, log)
	priceSvc := service.NewPriceService(priceSource, priceCache, cfg.PriceFeed.CacheTTL, a.Metrics, log)
	adminSvc := service.NewAdminService(
		identitySvc,
		ledgerSvc,
		txLogSvc,
		auditSvc,
		kycSvc,
		repos.users,
		repos.wallets,
		repos.txs,
		log,
	)

	a.Identity = identitySvc
	a.Router = httpHandler.SetupRouter(httpHandler.RouterDeps{
		Identity:       identitySvc,
		Ledger:         ledgerSvc,
		TxLog:          txLogSvc,
		KYC:            kycSvc,
		Prices:         priceSvc,
		Admin:          adminSvc,
		Gateway:        service.NewSessionGateway(tokenSvc, repos.users, repos.admins),
		RateLimiter:    limiter,
		Metrics:        a.Metrics,
		HealthCheckers: checkers,
		Logger:         log,
	})
	return a, nil
}

func (a *App) openStorage(ctx context.Context, cfg *config.Config) (*repositories, error) {
	switch cfg.Storage.Driver {
	case "memory":
		a.log.Warn().Msg("Using in-memory storage; data is lost on exit")
		store := memStorage.NewStore()
		return &repositories{
			users:      memStorage.NewUserRepo(store),
			admins:     memStorage.NewAdminRepo(store),
			wallets:    memStorage.NewWalletRepo(store),
			txs:        memStorage.NewTransactionRepo(store),
			actions:    memStorage.NewAdminActionRepo(store),
			kyc:        memStorage.NewKYCRepo(store),
			transactor: memStorage.NewTransactor(store),
			health:     memStorage.NewHealthCheck(),
		}, nil
	case "postgres":
		pool, err := pgStorage.NewPool(ctx, cfg.Database, a.log)
		if err != nil {
			return nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		if cfg.Storage.AutoMigrate {
			if err := pgStorage.Migrate(ctx, pool, a.log); err != nil {
				return nil, fmt.Errorf("migrating database: %w", err)
			}
		}
		return &repositories{
			users:      pgStorage.NewUserRepo(pool),
			admins:     pgStorage.NewAdminRepo(pool),
			wallets:    pgStorage.NewWalletRepo(pool),
			txs:        pgStorage.NewTransactionRepo(pool),
			actions:    pgStorage.NewAdminActionRepo(pool),
			kyc:        pgStorage.NewKYCRepo(pool),
			transactor: pgStorage.NewTransactor(pool),
			health:     pgStorage.NewHealthCheck(pool),
		}, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func parseCurrencies(raw []string) ([]domain.Currency, error) {
	if len(raw) == 0 {
		return nil, errors.New("no default currencies configured")
	}
	out := make([]domain.Currency, 0, len(raw))
	for _, s := range raw {
		c, ok := domain.ParseCurrency(s)
		if !ok {
			return nil, fmt.Errorf("ledger.default_currencies: unsupported currency %q", s)
		}
		out = append(out, c)
	}
	return out, nil
}

// Close releases connections in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
