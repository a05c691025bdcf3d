package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jam-board/internal/config"
	"jam-board/internal/delivery/router"
	"jam-board/internal/infrastructure/cache"
	"jam-board/internal/infrastructure/metrics"
	"jam-board/internal/repository"
	"jam-board/internal/service"
	"jam-board/internal/validation"
	"jam-board/pkg/database"
	"jam-board/pkg/logger"
	"jam-board/pkg/utils"

	"github.com/go-chi/chi/v5"
	redisClient "github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func main() {
	// Optional .env, same convenience the board always had.
	godotenv.Load()

	cfg := config.MustLoadConfig()

	loggers, err := logger.SetupLogger(cfg.Logger.Level)
	if err != nil {
		log.Fatalf("Failed to set up logger: %v", err)
	}
	loggers.InfoLogger.Info("Logger initialized")

	db, cleanupDB := setupDatabase(cfg, loggers)
	defer cleanupDB()

	adCache := setupCache(cfg, loggers)

	tracerProvider := setupTracer(cfg, loggers)
	defer shutdownTracer(tracerProvider, loggers)

	handlerMetrics := metrics.NewHandlerMetrics(prometheus.DefaultRegisterer)
	serviceMetrics := metrics.NewServiceMetrics(prometheus.DefaultRegisterer)
	repositoryMetrics := metrics.NewRepositoryMetrics(prometheus.DefaultRegisterer)
	loggers.InfoLogger.Info("Prometheus metrics initialized")

	adRepo := repository.NewSQLiteAdRepository(db, adCache, repositoryMetrics)
	adService := service.NewAdService(adRepo, serviceMetrics)
	validator := validation.NewValidator(cfg.Ads.PriceFloor, cfg.Ads.EnforcePriceFloor)
	loggers.InfoLogger.Info("Service and repository layers initialized")

	r := chi.NewRouter()
	router.SetupAdRoutes(r, adService, validator, loggers, handlerMetrics, cfg)
	r.Handle("/metrics", handlerMetrics.HTTPHandler())
	loggers.InfoLogger.Info("Router and routes initialized")

	server := startServer(cfg, r, loggers)

	waitForShutdown(server, loggers)
}

// setupDatabase opens the store, runs the idempotent migration and seeds
// demo ads on a fresh store. All of it completes before the listener
// starts, so no request ever races the seed's empty-check.
func setupDatabase(cfg *config.Config, loggers *logger.Loggers) (*sql.DB, func()) {
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		loggers.ErrorLogger.Error("Failed to open database", utils.Err(err))
		os.Exit(1)
	}
	loggers.InfoLogger.Info("Database opened", "path", cfg.Database.Path)

	ctx := context.Background()
	if err := database.Migrate(ctx, db); err != nil {
		loggers.ErrorLogger.Error("Failed to migrate database", utils.Err(err))
		os.Exit(1)
	}

	seeded, err := database.SeedIfEmpty(ctx, db)
	if err != nil {
		loggers.ErrorLogger.Error("Failed to seed database", utils.Err(err))
		os.Exit(1)
	}
	if seeded > 0 {
		loggers.InfoLogger.Info("Seeded demo ads", "count", seeded)
	}

	cleanup := func() {
		if err := db.Close(); err != nil {
			loggers.ErrorLogger.Error("Failed to close database connection", utils.Err(err))
		}
	}

	return db, cleanup
}

// setupCache returns a Redis-backed cache when an address is configured,
// otherwise an in-process one so the board runs without extra services.
func setupCache(cfg *config.Config, loggers *logger.Loggers) cache.Cache {
	if cfg.Redis.Addr == "" {
		loggers.InfoLogger.Info("Using in-process cache")
		return cache.NewMemoryCache()
	}

	rdb := redisClient.NewClient(&redisClient.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		loggers.ErrorLogger.Error("Failed to connect to Redis", utils.Err(err))
		os.Exit(1)
	}
	loggers.InfoLogger.Info("Connected to Redis", "addr", cfg.Redis.Addr)

	return cache.NewRedisCache(rdb)
}

func setupTracer(cfg *config.Config, loggers *logger.Loggers) *sdktrace.TracerProvider {
	tracerProvider, err := metrics.InitTracer(
		cfg.Tracing.ServiceName,
		cfg.Tracing.Environment,
		cfg.Tracing.Version,
		cfg.Tracing.Endpoint,
	)
	if err != nil {
		loggers.ErrorLogger.Error("Failed to initialize tracer", utils.Err(err))
		os.Exit(1)
	}
	loggers.InfoLogger.Info("OpenTelemetry tracer initialized")
	return tracerProvider
}

func shutdownTracer(tp *sdktrace.TracerProvider, loggers *logger.Loggers) {
	if err := tp.Shutdown(context.Background()); err != nil {
		loggers.ErrorLogger.Error("Failed to shut down tracer provider", utils.Err(err))
	}
}

func startServer(cfg *config.Config, handler http.Handler, loggers *logger.Loggers) *http.Server {
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.Timeout,
		WriteTimeout: cfg.HTTP.Timeout,
	}

	go func() {
		loggers.InfoLogger.Info("Starting server", "port", cfg.HTTP.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			loggers.ErrorLogger.Error("Failed to start server", utils.Err(err))
			os.Exit(1)
		}
	}()

	return server
}

func waitForShutdown(server *http.Server, loggers *logger.Loggers) {
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, os.Interrupt, syscall.SIGTERM)

	<-shutdownCh
	loggers.InfoLogger.Info("Shutdown signal received, shutting down gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		loggers.ErrorLogger.Error("Server forced to shutdown", utils.Err(err))
	} else {
		loggers.InfoLogger.Info("Server shutdown gracefully")
	}
}
