package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hollmark/staffd/internal/middleware"
	"github.com/hollmark/staffd/internal/server"
)

const healthCheckTimeout = 5 * time.Second

// HealthHandler serves the liveness endpoint used by monitors and load
// balancers.
type HealthHandler struct {
	Handler
}

func NewHealthHandler(s *server.Server) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
	}
}

// CheckHealth pings the database (and Redis when the cache is enabled)
// and answers with the status envelope: 200 when the service can serve
// traffic, 503 when the database is unreachable. Check details stay in
// logs and APM events; the body never carries dependency errors.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()

	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	isHealthy := true

	ctx, cancel := context.WithTimeout(c.Request().Context(), healthCheckTimeout)
	defer cancel()

	dbStart := time.Now()

	if err := h.server.DB.Pool.Ping(ctx); err != nil {
		isHealthy = false

		logger.Error().
			Err(err).
			Dur("response_time", time.Since(dbStart)).
			Msg("database health check failed")

		h.recordHealthCheckError("database", err, time.Since(dbStart))
	} else {
		logger.Debug().
			Dur("response_time", time.Since(dbStart)).
			Msg("database health check passed")
	}

	// Redis only backs the read cache, so a failed ping is reported but
	// does not mark the service unhealthy.
	if h.server.Redis != nil {
		redisStart := time.Now()

		if err := h.server.Redis.Ping(ctx).Err(); err != nil {
			logger.Error().
				Err(err).
				Dur("response_time", time.Since(redisStart)).
				Msg("redis health check failed")

			h.recordHealthCheckError("redis", err, time.Since(redisStart))
		} else {
			logger.Debug().
				Dur("response_time", time.Since(redisStart)).
				Msg("redis health check passed")
		}
	}

	if !isHealthy {
		logger.Warn().
			Dur("total_duration", time.Since(start)).
			Msg("health check failed")

		return c.JSON(http.StatusServiceUnavailable, Response{
			Status:  "error",
			Message: "Server is not healthy",
		})
	}

	logger.Info().
		Dur("total_duration", time.Since(start)).
		Msg("health check passed")

	return c.JSON(http.StatusOK, Response{
		Status:  "success",
		Message: "Server is running",
	})
}

func (h *HealthHandler) recordHealthCheckError(checkType string, err error, elapsed time.Duration) {
	if h.server.LoggerService == nil || h.server.LoggerService.GetApplication() == nil {
		return
	}

	h.server.LoggerService.GetApplication().RecordCustomEvent(
		"HealthCheckError",
		map[string]interface{}{
			"check_type":       checkType,
			"operation":        "health_check",
			"response_time_ms": elapsed.Milliseconds(),
			"error_message":    err.Error(),
		},
	)
}
