package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/cuddly-waffle/account-api/internal/api/middleware"
	"github.com/cuddly-waffle/account-api/internal/config"
	"github.com/cuddly-waffle/account-api/internal/platform/postgres"
	"github.com/cuddly-waffle/account-api/internal/service"
	"github.com/cuddly-waffle/account-api/internal/service/auth"
	"github.com/cuddly-waffle/account-api/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const loginWindow = time.Minute

// application holds the wired dependencies and owns their shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore      store.UserStore
	jwtService     auth.JWTService
	passwordCrypto auth.PasswordCrypto
	accountService service.AccountService

	limiter  middleware.Limiter
	registry *prometheus.Registry
	metrics  *middleware.Metrics
}

// newApplication wires the Postgres-backed application.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	return newApplicationWithStore(ctx, cfg, logger, db, postgres.NewPostgresUserStore(db, logger))
}

// newApplicationWithStore wires the application around users. db may be nil,
// in which case updates run without a transaction.
func newApplicationWithStore(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
	users store.UserStore,
) (*application, error) {
	app := &application{
		config:    cfg,
		logger:    logger,
		db:        db,
		userStore: users,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, service.NewConfigError(err)
	}
	logger.Info("JWT service initialized", "token_lifetime", app.jwtService.Lifetime().String())

	app.passwordCrypto = auth.NewPasswordCrypto(cfg.Auth.Pepper, cfg.Auth.BcryptCost)

	app.accountService, err = service.NewAccountService(
		app.userStore,
		db,
		app.passwordCrypto,
		app.jwtService,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create account service: %w", err)
	}

	app.limiter = setupLimiter(ctx, cfg.RateLimit, logger)

	app.registry = prometheus.NewRegistry()
	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if db != nil {
		app.registry.MustRegister(collectors.NewDBStatsCollector(db, "accounts"))
	}
	app.metrics, err = middleware.NewMetrics(app.registry)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	logger.Info("application initialized")
	return app, nil
}

// setupLimiter prefers Redis so that limits hold across instances, and falls
// back to a process-local limiter when Redis is not configured or reachable.
func setupLimiter(ctx context.Context, cfg config.RateLimitConfig, logger *slog.Logger) middleware.Limiter {
	if cfg.LoginPerMinute <= 0 {
		logger.Info("login rate limiting disabled")
		return nil
	}
	if cfg.RedisURL != "" {
		limiter, err := middleware.NewRedisLimiter(ctx, cfg.RedisURL, logger)
		if err == nil {
			logger.Info("login rate limiting backed by redis", "per_minute", cfg.LoginPerMinute)
			return limiter
		}
		logger.Warn("redis unavailable, using in-memory rate limiter", "error", err)
	}
	logger.Info("login rate limiting in memory", "per_minute", cfg.LoginPerMinute)
	return middleware.NewMemoryLimiter()
}

// Run serves HTTP until ctx is cancelled.
func (app *application) Run(ctx context.Context) error {
	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup releases the limiter and the database pool.
func (app *application) cleanup() {
	if app.limiter != nil {
		if err := app.limiter.Close(); err != nil {
			app.logger.Error("error closing rate limiter", "error", err)
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}
	app.logger.Info("application shutdown completed")
}
