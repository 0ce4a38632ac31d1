// Package router initializes the HTTP router (using Echo).
//
// It registers the middlewares and defines the API route groups,
// mapping specific paths to their corresponding handlers.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/hollmark/staffd/internal/handler"
	"github.com/hollmark/staffd/internal/middleware"
	"github.com/hollmark/staffd/internal/server"
)

// New assembles the echo instance: the error funnel, the global
// middleware chain, and every route group under the /api/v1 prefix.
//
// Middleware order matters: Recover is outermost so nothing escapes the
// process, the New Relic transaction must exist before the context
// enhancer stamps trace ids, and the request id must exist before both.
func New(s *server.Server, mws *middleware.Middlewares, h *handler.Handlers) *echo.Echo {
	e := echo.New()

	e.HideBanner = true
	e.HidePort = true

	e.HTTPErrorHandler = mws.Global.GlobalErrorHandler

	e.Use(mws.Global.Recover())
	e.Use(mws.Tracing.NewRelicMiddleware())
	e.Use(middleware.RequestID())
	e.Use(mws.ContextEnhancer.EnhanceContext())
	e.Use(mws.Tracing.EnhanceTracing())
	e.Use(mws.Global.RequestLogger())
	e.Use(mws.Global.Secure())
	e.Use(mws.Global.CORS())
	e.Use(mws.Global.Gzip())
	e.Use(mws.Global.DefaultContentType())

	v1 := e.Group("/api/v1")

	registerSystemRoutes(v1, mws, h)
	registerUserRoutes(v1, mws, h)
	registerEmployeeRoutes(v1, h)

	return e
}
