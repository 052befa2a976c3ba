package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/portfolio-api/internal/server"
)

// Endpoints lists the public API surface. It is served by the index and
// repeated in 404 responses.
var Endpoints = map[string]string{
	"health":         "/api/health",
	"auth":           "/api/auth",
	"projects":       "/api/projects",
	"skills":         "/api/skills",
	"contacts":       "/api/contacts",
	"profile":        "/api/profile",
	"resume":         "/api/resume",
	"translations":   "/api/translations",
	"upload":         "/api/upload",
	"uploadDocument": "/api/upload-document",
}

type IndexHandler struct {
	Handler
}

func NewIndexHandler(s *server.Server) *IndexHandler {
	return &IndexHandler{Handler: NewHandler(s)}
}

func (h *IndexHandler) Index(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"message":     "Portfolio API Server",
		"status":      "running",
		"environment": h.server.Config.Primary.Env,
		"mongoStatus": h.server.DB.Status(),
		"endpoints":   Endpoints,
	})
}

// RouteNotFound answers unmatched routes with a hint at the real ones.
func (h *IndexHandler) RouteNotFound(c echo.Context) error {
	return c.JSON(http.StatusNotFound, map[string]any{
		"error":              "Route not found",
		"path":               c.Request().URL.Path,
		"method":             c.Request().Method,
		"message":            "The requested endpoint does not exist. Check available endpoints at /",
		"availableEndpoints": Endpoints,
	})
}
