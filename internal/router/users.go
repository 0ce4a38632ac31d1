package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hollmark/staffd/internal/handler"
	"github.com/hollmark/staffd/internal/middleware"
)

// registerUserRoutes registers the extraction demonstration endpoints.
// The two body endpoints are gated on the JSON content type header.
func registerUserRoutes(g *echo.Group, mws *middleware.Middlewares, h *handler.Handlers) {
	g.GET("/users/q", h.Users.Query)
	g.GET("/users/:user_id/:friend", h.Users.Path)

	jsonOnly := mws.Guard.RequireHeader("Content-Type", "application/json")
	g.POST("/users/payload", h.Users.Payload, jsonOnly)
	g.POST("/users/json", handler.Handle(h.Users.Handler, h.Users.JSON, http.StatusOK), jsonOnly)
}
