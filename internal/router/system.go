package router

import (
	"github.com/labstack/echo/v4"

	"github.com/hollmark/staffd/internal/handler"
	"github.com/hollmark/staffd/internal/middleware"
)

// registerSystemRoutes registers the endpoints that are not part of the
// employee domain: health, the greeting page, and the streaming and
// error demonstrations.
func registerSystemRoutes(g *echo.Group, mws *middleware.Middlewares, h *handler.Handlers) {
	g.GET("/health", h.Health.CheckHealth)
	g.GET("/index.html", h.System.Index)
	g.GET("/stream", h.System.Stream)
	g.GET("/error", h.System.Error)

	// Visible only to callers sending the exact content type; everyone
	// else sees the routing 404.
	g.GET("/resource", h.System.Resource, mws.Guard.RequireHeader("Content-Type", "text/plain"))
}
