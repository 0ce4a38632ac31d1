package handler

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hollmark/staffd/internal/models"
	"github.com/hollmark/staffd/internal/server"
	"github.com/hollmark/staffd/internal/service"
	"github.com/hollmark/staffd/internal/validation"
)

// EmployeeHandler exposes the employee CRUD endpoints.
type EmployeeHandler struct {
	Handler
	service *service.EmployeeService
}

func NewEmployeeHandler(s *server.Server, employeeService *service.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{
		Handler: NewHandler(s),
		service: employeeService,
	}
}

// EmployeeIDRequest carries the numeric id bound from the route path.
// A non-numeric id fails binding with a 400 before the handler runs.
type EmployeeIDRequest struct {
	ID int32 `param:"id" json:"-"`
}

func (r *EmployeeIDRequest) Validate() error { return nil }

// UpdateEmployeeRequest is the update payload plus the path id. The id
// is excluded from JSON so a body cannot override the route.
type UpdateEmployeeRequest struct {
	ID        int32      `param:"id" json:"-"`
	Name      string     `json:"name" validate:"required"`
	CreatedAt *time.Time `json:"created_at"`
}

func (r *UpdateEmployeeRequest) Validate() error { return validation.Struct(r) }

// ListEmployeesRequest is empty; the list endpoint takes no input.
type ListEmployeesRequest struct{}

func (r *ListEmployeesRequest) Validate() error { return nil }

func (h *EmployeeHandler) Create(c echo.Context, req *models.NewEmployee) (models.Employee, error) {
	return h.service.Create(c.Request().Context(), *req)
}

func (h *EmployeeHandler) GetByID(c echo.Context, req *EmployeeIDRequest) (models.Employee, error) {
	return h.service.GetByID(c.Request().Context(), req.ID)
}

func (h *EmployeeHandler) List(c echo.Context, _ *ListEmployeesRequest) ([]models.Employee, error) {
	return h.service.List(c.Request().Context())
}

func (h *EmployeeHandler) UpdateByID(c echo.Context, req *UpdateEmployeeRequest) (models.Employee, error) {
	payload := models.NewEmployee{
		Name:      req.Name,
		CreatedAt: req.CreatedAt,
	}

	return h.service.UpdateByID(c.Request().Context(), req.ID, payload)
}

// DeleteByID answers with the bare count of removed rows; deleting an
// absent id is a successful 0.
func (h *EmployeeHandler) DeleteByID(c echo.Context, req *EmployeeIDRequest) (int64, error) {
	return h.service.DeleteByID(c.Request().Context(), req.ID)
}
