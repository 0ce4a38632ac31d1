package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hollmark/staffd/internal/handler"
)

// registerEmployeeRoutes registers the employee CRUD endpoints through
// the typed handler pipeline.
func registerEmployeeRoutes(g *echo.Group, h *handler.Handlers) {
	emp := h.Employee

	g.POST("/employee", handler.Handle(emp.Handler, emp.Create, http.StatusCreated))
	g.GET("/employee/:id", handler.Handle(emp.Handler, emp.GetByID, http.StatusOK))
	g.GET("/employees", handler.Handle(emp.Handler, emp.List, http.StatusOK))
	g.PUT("/employee/:id", handler.Handle(emp.Handler, emp.UpdateByID, http.StatusOK))
	g.DELETE("/employee/:id", handler.Handle(emp.Handler, emp.DeleteByID, http.StatusOK))
}
