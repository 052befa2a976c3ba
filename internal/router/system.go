package router

import (
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/portfolio-api/internal/handler"
	"github.com/deppfellow/portfolio-api/internal/server"
	"github.com/deppfellow/portfolio-api/internal/storage"
)

// registerSystemRoutes registers the index, the health check, uploaded
// files and the catch-all 404.
func registerSystemRoutes(r *echo.Echo, s *server.Server, h *handler.Handlers) {
	r.GET("/", h.Index.Index)
	r.GET("/api/health", h.Health.CheckHealth)

	// Local uploads do not persist on serverless platforms, so they are
	// only served by long-running processes.
	if local, ok := s.Storage.(*storage.Local); ok && !s.Config.Server.Serverless {
		r.Static(storage.PublicPrefix, local.Dir())
	}

	r.RouteNotFound("/*", h.Index.RouteNotFound)
}
