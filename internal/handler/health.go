package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/portfolio-api/internal/middleware"
	"github.com/deppfellow/portfolio-api/internal/server"
)

// HealthHandler reports liveness. It never dials the document store, so it
// answers even while the database is unreachable.
type HealthHandler struct {
	Handler
}

func NewHealthHandler(s *server.Server) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
	}
}

type HealthResponse struct {
	Status      string    `json:"status"`
	Message     string    `json:"message"`
	Timestamp   time.Time `json:"timestamp"`
	Environment string    `json:"environment"`
	MongoStatus string    `json:"mongoStatus"`
	Database    string    `json:"database"`
	Storage     string    `json:"storage"`
}

// CheckHealth always answers 200. With health checks enabled the cached
// connection is pinged and a failure is reported as "disconnected".
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()
	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	status := h.server.DB.Status()

	if obs := h.server.Config.Observability; obs != nil && obs.HealthChecks.Enabled && h.server.DB.Connected() {
		ctx, cancel := context.WithTimeout(c.Request().Context(), obs.HealthChecks.Timeout)
		defer cancel()

		if err := h.server.DB.Ping(ctx); err != nil {
			status = "disconnected"

			logger.Error().
				Err(err).
				Dur("response_time", time.Since(start)).
				Msg("database health check failed")

			if app := h.server.LoggerService.GetApplication(); app != nil {
				app.RecordCustomEvent("HealthCheckError", map[string]any{
					"check_type":       "database",
					"operation":        "health_check",
					"error_type":       "database_unhealthy",
					"response_time_ms": time.Since(start).Milliseconds(),
					"error_message":    err.Error(),
				})
			}
		}
	}

	logger.Debug().
		Str("database", status).
		Dur("total_duration", time.Since(start)).
		Msg("health check served")

	return c.JSON(http.StatusOK, HealthResponse{
		Status:      "OK",
		Message:     "Server is running",
		Timestamp:   time.Now().UTC(),
		Environment: h.server.Config.Primary.Env,
		MongoStatus: status,
		Database:    h.server.DB.Driver(),
		Storage:     h.server.Storage.Name(),
	})
}
