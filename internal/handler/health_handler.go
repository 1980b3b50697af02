package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/cohorts-backend/internal/response"
)

const healthCheckTimeout = 2 * time.Second

// HealthCheck is a named dependency probe.
type HealthCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

// HealthHandler reports the reachability of the service's dependencies.
type HealthHandler struct {
	checks []HealthCheck
	log    zerolog.Logger
}

// NewHealthHandler creates a HealthHandler running the given checks.
func NewHealthHandler(log zerolog.Logger, checks ...HealthCheck) *HealthHandler {
	return &HealthHandler{
		checks: checks,
		log:    log.With().Str("component", "health_handler").Logger(),
	}
}

// Health godoc
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	healthy := true
	results := make(map[string]string, len(h.checks))
	for _, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			h.log.Warn().Err(err).Str("check", check.Name).Msg("health check failed")
			results[check.Name] = "unavailable"
			healthy = false
			continue
		}
		results[check.Name] = "ok"
	}

	if !healthy {
		response.FailWithData(c, http.StatusServiceUnavailable, response.ErrServiceUnavailable,
			gin.H{"status": "degraded", "checks": results})
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "ok", "checks": results})
}
