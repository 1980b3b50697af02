package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/stemsi/cohorts-backend/internal/config"
	"github.com/stemsi/cohorts-backend/internal/handler"
	"github.com/stemsi/cohorts-backend/internal/middleware"
	"github.com/stemsi/cohorts-backend/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Cohort  *handler.CohortHandler
	Student *handler.StudentHandler
	Health  *handler.HealthHandler
}

// SetupRouter configures the Gin engine with global middleware and routes.
// limiter may be nil, in which case requests are not rate limited.
func SetupRouter(handlers *Handlers, cfg *config.Config, limiter *middleware.RateLimiter, log zerolog.Logger) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", response.HeaderRequestID}
	corsConfig.ExposeHeaders = []string{response.HeaderRequestID}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(
		response.RequestIDMiddleware(),
		middleware.RequestLogger(log),
		middleware.SecurityHeaders(),
	)
	if cfg.MetricsEnabled {
		router.Use(middleware.Metrics())
	}
	if limiter != nil {
		router.Use(limiter.Middleware())
	}
	router.Use(
		middleware.BrotliWithConfig(middleware.BrotliConfig{
			MinLength: cfg.CompressionMinBytes,
			Skipper:   func(c *gin.Context) bool { return c.Request.URL.Path == "/metrics" },
		}),
		middleware.RequestTimeout(cfg.RequestTimeout),
	)

	router.NoRoute(func(c *gin.Context) {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	})

	router.GET("/health", handlers.Health.Health)
	if cfg.MetricsEnabled {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	noStore := middleware.CacheControl("no-store")

	// ─── Cohorts ───────────────────────────────────────────────────────
	cohorts := router.Group("/api/cohorts", noStore)
	{
		cohorts.GET("", handlers.Cohort.ListCohorts)
		cohorts.POST("", handlers.Cohort.CreateCohort)
		cohorts.GET("/:id", handlers.Cohort.GetCohort)
		cohorts.PUT("/:id", handlers.Cohort.UpdateCohort)
		cohorts.DELETE("/:id", handlers.Cohort.DeleteCohort)
		cohorts.GET("/:id/students", handlers.Cohort.ListCohortStudents)
	}

	// ─── Students ──────────────────────────────────────────────────────
	students := router.Group("/students", noStore)
	{
		students.GET("", handlers.Student.ListStudents)
		students.POST("", handlers.Student.CreateStudent)
		students.GET("/:id", handlers.Student.GetStudent)
		students.PUT("/:id", handlers.Student.UpdateStudent)
		students.DELETE("/:id", handlers.Student.DeleteStudent)
	}

	return router
}
