// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/angelamos/localmart/internal/auth"
	"github.com/angelamos/localmart/internal/booking"
	"github.com/angelamos/localmart/internal/chat"
	"github.com/angelamos/localmart/internal/config"
	"github.com/angelamos/localmart/internal/core"
	"github.com/angelamos/localmart/internal/directory"
	"github.com/angelamos/localmart/internal/feed"
	"github.com/angelamos/localmart/internal/health"
	"github.com/angelamos/localmart/internal/jobs"
	"github.com/angelamos/localmart/internal/middleware"
	"github.com/angelamos/localmart/internal/notify"
	"github.com/angelamos/localmart/internal/ops"
	"github.com/angelamos/localmart/internal/profile"
	"github.com/angelamos/localmart/internal/realtime"
	"github.com/angelamos/localmart/internal/server"
	"github.com/angelamos/localmart/migrations"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
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

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	if err := db.Migrate(ctx, migrations.FS); err != nil {
		return err
	}
	logger.Info("database migrations applied")

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

	hub := realtime.NewHub()
	bridge := realtime.NewBridge(redis.Client, hub, logger)
	notifier := notify.NewService(bridge, logger)

	profileRepo := profile.NewRepository(db.DB)
	profileSvc := profile.NewService(profileRepo, notifier)

	authRepo := auth.NewRepository(db.DB)
	authSvc := auth.NewService(authRepo, jwtManager, profileSvc, redis.Client)
	authHandler := auth.NewHandler(authSvc)

	profileHandler := profile.NewHandler(profileSvc, authSvc)

	chatRepo := chat.NewRepository(db.DB)
	chatSvc := chat.NewService(chatRepo, bridge, cfg.Chat, logger)
	chatHandler := chat.NewHandler(chatSvc)

	realtimeHandler := realtime.NewHandler(
		hub,
		jwtManager,
		chatSvc,
		cfg.CORS,
		cfg.Chat,
		logger,
	)

	directoryRepo := directory.NewRepository(db.DB)
	directorySvc := directory.NewService(directoryRepo, chatSvc, notifier)
	directoryHandler := directory.NewHandler(directorySvc)

	bookingRepo := booking.NewRepository(redis.Client)
	bookingSvc := booking.NewService(bookingRepo, directoryRepo, notifier, cfg.Booking)
	bookingHandler := booking.NewHandler(bookingSvc)

	feedRepo := feed.NewRepository(db.DB)
	engagement := feed.NewEngagementStore(redis.Client)
	feedSvc := feed.NewService(
		feedRepo,
		engagement,
		directoryRepo,
		profileSvc,
		bridge,
		logger,
	)
	feedHandler := feed.NewHandler(feedSvc)

	healthHandler := health.NewHandler(db, redis)

	opsHandler := ops.NewHandler(ops.HandlerConfig{
		Token:      cfg.Ops.Token,
		DBStats:    db.Stats,
		RedisStats: redis.PoolStats,
		DBPing:     db.Ping,
		RedisPing:  redis.Ping,
		Hub:        hub,
	})

	jobsRunner, err := jobs.NewRunner(cfg.Redis, authRepo, logger)
	if err != nil {
		return err
	}

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(middleware.SecurityHeaders(cfg.App.Environment == "production"))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	router.Get("/.well-known/jwks.json", jwtManager.GetJWKSHandler())

	authenticator := middleware.Authenticator(jwtManager)
	optionalAuth := middleware.OptionalAuth(jwtManager)
	rateLimiter := middleware.RoleRateLimiter(
		redis.Client,
		middleware.DefaultRoleLimits,
	)

	router.Route("/v1", func(r chi.Router) {
		r.Use(rateLimiter)

		authHandler.RegisterRoutes(r, authenticator)
		profileHandler.RegisterRoutes(r, authenticator)
		chatHandler.RegisterRoutes(r, authenticator)
		directoryHandler.RegisterRoutes(r, authenticator)
		bookingHandler.RegisterRoutes(r, authenticator)
		feedHandler.RegisterRoutes(r, authenticator, optionalAuth)
		opsHandler.RegisterRoutes(r)
	})

	realtimeHandler.RegisterRoutes(router)

	go func() {
		if err := bridge.Run(ctx); err != nil &&
			!errors.Is(err, context.Canceled) {
			logger.Error("realtime bridge stopped", "error", err)
		}
	}()

	if err := jobsRunner.Start(); err != nil {
		return err
	}
	logger.Info("maintenance jobs started")

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

	jobsRunner.Shutdown()
	hub.Close()

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
