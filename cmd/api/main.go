// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/carterperez-dev/storefront-api/internal/auth"
	"github.com/carterperez-dev/storefront-api/internal/cart"
	"github.com/carterperez-dev/storefront-api/internal/catalog"
	"github.com/carterperez-dev/storefront-api/internal/config"
	"github.com/carterperez-dev/storefront-api/internal/core"
	"github.com/carterperez-dev/storefront-api/internal/health"
	"github.com/carterperez-dev/storefront-api/internal/mail"
	"github.com/carterperez-dev/storefront-api/internal/middleware"
	"github.com/carterperez-dev/storefront-api/internal/order"
	"github.com/carterperez-dev/storefront-api/internal/report"
	"github.com/carterperez-dev/storefront-api/internal/server"
	"github.com/carterperez-dev/storefront-api/internal/user"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	generateKeys := flag.Bool(
		"generate-keys",
		false,
		"write a new ES256 key pair to the configured paths and exit",
	)
	flag.Parse()

	if *generateKeys {
		if err := writeKeys(*configPath); err != nil {
			slog.Error("key generation failed", "error", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func writeKeys(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	for _, path := range []string{cfg.JWT.PrivateKeyPath, cfg.JWT.PublicKeyPath} {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return fmt.Errorf("create key directory: %w", err)
		}
	}

	if err := auth.GenerateKeyPair(cfg.JWT.PrivateKeyPath, cfg.JWT.PublicKeyPath); err != nil {
		return err
	}

	slog.Info("key pair written",
		"private", cfg.JWT.PrivateKeyPath,
		"public", cfg.JWT.PublicKeyPath,
	)
	return nil
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	if cfg.Database.AutoMigrate {
		version, migErr := core.Migrate(cfg.Database.URL)
		if migErr != nil {
			return migErr
		}
		logger.Info("database schema up to date", "version", version)
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("JWT manager initialized",
		"algorithm", "ES256",
		"key_id", jwtManager.GetKeyID(),
	)

	mailer := mail.New(cfg.Mail, cfg.App.Name, logger)
	if !cfg.Mail.Enabled() {
		logger.Warn("smtp host not configured, verification codes will be logged")
	}

	userSvc := user.NewService(user.NewRepository(db.DB))
	userHandler := user.NewHandler(userSvc)

	authSvc := auth.NewService(jwtManager, userSvc, mailer, cfg.Auth)
	authHandler := auth.NewHandler(authSvc)

	catalogHandler := catalog.NewHandler(
		catalog.NewService(catalog.NewRepository(db.DB)),
	)
	cartHandler := cart.NewHandler(cart.NewService(cart.NewRepository(db.DB)))
	orderHandler := order.NewHandler(order.NewService(order.NewRepository(db.DB)))

	healthHandler := health.NewHandler(
		health.Dependency{Name: "database", Checker: db},
		health.Dependency{Name: "redis", Checker: redis},
	)

	reportHandler := report.NewHandler(
		report.NewService(report.NewRepository(db.DB)),
		report.SystemSources{
			Checks:     healthHandler.Check,
			DBStats:    db.Stats,
			RedisStats: redis.PoolStats,
		},
	)

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Tracing)
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Metrics)
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Scope: "global",
			Limit: middleware.PerMinute(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
			),
			KeyFunc:  middleware.KeyByIP,
			FailOpen: true,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))
	if cfg.Server.RequestTimeout > 0 {
		router.Use(chimw.Timeout(cfg.Server.RequestTimeout))
	}

	healthHandler.RegisterRoutes(router)

	router.Handle("/metrics", middleware.MetricsHandler())
	router.Get("/.well-known/jwks.json", jwtManager.GetJWKSHandler())

	authLimiter := middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
		Scope: "auth",
		Limit: middleware.PerMinute(
			cfg.RateLimit.AuthRequests,
			cfg.RateLimit.AuthBurst,
		),
		KeyFunc:  middleware.KeyByIP,
		FailOpen: true,
	}).Handler

	resendLimiter := middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
		Scope: "resend",
		Limit: middleware.PerHour(
			cfg.RateLimit.ResendPerHour,
			cfg.RateLimit.ResendPerHour,
		),
		KeyFunc:  middleware.KeyByIP,
		FailOpen: true,
	}).Handler

	checkoutLimiter := middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
		Scope: "checkout",
		Limit: middleware.PerMinute(
			cfg.RateLimit.CheckoutRequests,
			cfg.RateLimit.CheckoutRequests,
		),
		KeyFunc:  middleware.KeyByUser,
		FailOpen: true,
	}).Handler

	authenticator := middleware.Authenticator(jwtManager)
	adminOnly := middleware.RequireAdmin

	router.Route("/api", func(r chi.Router) {
		authHandler.RegisterRoutes(r, authLimiter, resendLimiter)

		userHandler.RegisterRoutes(r, authenticator, adminOnly)

		catalogHandler.RegisterRoutes(r)
		catalogHandler.RegisterAdminRoutes(r, authenticator, adminOnly)

		cartHandler.RegisterRoutes(r, authenticator)

		orderHandler.RegisterRoutes(r, authenticator, checkoutLimiter)
		orderHandler.RegisterAdminRoutes(r, authenticator, adminOnly)

		reportHandler.RegisterRoutes(r, authenticator, adminOnly)
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
