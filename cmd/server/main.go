package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/cohorts-backend/internal/cache"
	"github.com/stemsi/cohorts-backend/internal/config"
	"github.com/stemsi/cohorts-backend/internal/database"
	"github.com/stemsi/cohorts-backend/internal/handler"
	"github.com/stemsi/cohorts-backend/internal/logger"
	"github.com/stemsi/cohorts-backend/internal/middleware"
	"github.com/stemsi/cohorts-backend/internal/repository"
	"github.com/stemsi/cohorts-backend/internal/router"
	"github.com/stemsi/cohorts-backend/internal/service"
	"github.com/stemsi/cohorts-backend/internal/validator"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Bool("cache", cfg.CacheEnabled()).
		Msg("Starting Cohorts Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Schema ────────────────────────────────────────────────────────
	if cfg.AutoMigrate {
		if err := database.MigrateUp(cfg.DatabaseURL, log); err != nil {
			log.Fatal().Err(err).Msg("Failed to migrate schema")
		}
	}

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	checks := []handler.HealthCheck{{Name: "postgres", Ping: pool.Ping}}

	// ─── Connect to Redis (optional) ───────────────────────────────────
	cohortCache := cache.NewNoop()
	if cfg.CacheEnabled() {
		rdb, err := database.NewRedisClient(ctx, cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()

		cohortCache = cache.NewRedis(rdb)
		checks = append(checks, handler.HealthCheck{Name: "redis", Ping: redisPing(rdb)})
	}

	// ─── Initialize Services ──────────────────────────────────────────
	store := repository.NewStore(pool)
	cohortService := service.NewCohortService(store, cohortCache, cfg.CacheTTL, log)
	studentService := service.NewStudentService(store)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Cohort:  handler.NewCohortHandler(cohortService, log),
		Student: handler.NewStudentHandler(studentService, log),
		Health:  handler.NewHealthHandler(log, checks...),
	}

	var limiter *middleware.RateLimiter
	if cfg.RateLimitPerMinute > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
		limiter.StartCleanup(ctx)
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(handlers, cfg, limiter, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("Shutdown complete")
}

func redisPing(rdb *redis.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
