package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	_ "github.com/ghuser/itemtracker/docs/swagger"
	"github.com/ghuser/itemtracker/migrations/item"
	"github.com/ghuser/itemtracker/pkg/app"
	"github.com/ghuser/itemtracker/pkg/cache"
	"github.com/ghuser/itemtracker/pkg/clock"
	"github.com/ghuser/itemtracker/pkg/config"
	"github.com/ghuser/itemtracker/pkg/database"
	"github.com/ghuser/itemtracker/pkg/events"
	"github.com/ghuser/itemtracker/pkg/httpx"
	"github.com/ghuser/itemtracker/pkg/logger"
	"github.com/ghuser/itemtracker/pkg/migrator"
	"github.com/ghuser/itemtracker/pkg/telemetry"
	itemApi "github.com/ghuser/itemtracker/services/item/application/api"
	itemSvcs "github.com/ghuser/itemtracker/services/item/application/services"
	itemSubscribers "github.com/ghuser/itemtracker/services/item/application/subscribers"
)

// @title					Item Tracker API
// @version				1.0
// @description			Tracks named items and deletes them once they reach a minimum age.
// @license.name			MIT
// @license.url			https://opensource.org/licenses/MIT
// @host					localhost:8080
// @BasePath				/api
// @schemes				http https
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := config.ValidateForProduction(cfg); err != nil {
		slog.Error("production config validation failed", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg)

	// Telemetry: OTel tracing + metrics
	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	tel, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		log.Error("failed to setup otel", "error", err)
		os.Exit(1)
	}
	defer tel.Shutdown(context.Background()) //nolint:errcheck

	// Crash reporting: Sentry (optional — log and continue on failure)
	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("failed to setup sentry, continuing without crash reporting", "error", err)
	}
	defer telemetry.SentryFlush()

	db, err := database.Open(ctx, cfg.DatabaseDSN, log)
	if err != nil {
		log.Error("failed to open database", "error", err)
		os.Exit(1) //nolint:gocritic // intentional: startup failure, deferred flushes are best-effort
	}
	defer db.Close() //nolint:errcheck
	log.Info("database opened", "dsn", cfg.DatabaseDSN)

	if err := migrator.RunMigrations(db.DB(), item.FS); err != nil {
		log.Error("failed to run migrations", "error", err)
		os.Exit(1) //nolint:gocritic
	}

	eventBus := events.NewEventBus(log)
	defer eventBus.Close() //nolint:errcheck

	// Redis is optional: without REDIS_URL items are served from the store only.
	redisClient, err := cache.NewRedisClient(cfg)
	switch {
	case errors.Is(err, cache.ErrDisabled):
		log.Info("redis disabled, item cache off")
	case err != nil:
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1) //nolint:gocritic // intentional: startup failure
	default:
		defer redisClient.Close() //nolint:errcheck
		log.Info("redis connected")
	}

	appConfig := &app.Application{
		Db:                 db,
		Logger:             log,
		EventBus:           eventBus,
		Redis:              redisClient,
		Clock:              clock.System{},
		Metrics:            tel.Items,
		DeletionMinAgeDays: cfg.DeletionMinAgeDays,
	}

	if err := itemSubscribers.Register(ctx, appConfig); err != nil {
		log.Error("failed to register subscribers", "error", err)
		os.Exit(1) //nolint:gocritic
	}

	seeded, err := itemSvcs.New(appConfig).Item.Seed(ctx, cfg.SeedItems)
	if err != nil {
		log.Error("failed to seed items", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	log.Info("store ready", "seeded", seeded, "deletion_min_age_days", cfg.DeletionMinAgeDays)

	r := httpx.NewRouter(
		httpx.ServerConfig{
			ServiceName:        cfg.ServiceName,
			IsDevelopment:      cfg.Environment == config.EnvDevelopment,
			CORSAllowedOrigins: cfg.CORSAllowedOrigins,
			RateLimitPerMinute: cfg.RateLimitPerMinute,
		},
		logger.Middleware(log),
		logger.Recovery(log),
		telemetry.SentryMiddleware(),
		otelhttp.NewMiddleware(cfg.ServiceName),
	)

	checks := httpx.HealthChecks{Database: db, EventBus: eventBus}
	if redisClient.Enabled() {
		checks.Redis = redisClient
	}
	r.Get("/health", httpx.HealthHandler(checks))
	r.Get("/metrics", tel.MetricsHandler.ServeHTTP)
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	registerRoutes(r, appConfig)

	srv := httpx.NewServer(cfg.HTTPAddr, r)

	go func() {
		log.Info("server listening", "addr", srv.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", "error", err)
		os.Exit(1)
	}
	// Stop subscriber loops; EventBus.Close (deferred) waits for in-flight handlers.
	stop()
	log.Info("server stopped")
}

// registerRoutes mounts all service routes under /api and at the root.
// Add each new service's route function here.
func registerRoutes(r chi.Router, a *app.Application) {
	itemApi.ItemRoutes(r, a)
}
