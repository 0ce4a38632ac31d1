package handler

import (
	"github.com/hollmark/staffd/internal/server"
	"github.com/hollmark/staffd/internal/service"
)

// Handlers groups all HTTP handlers so router setup passes one object
// around instead of many.
type Handlers struct {
	Health   *HealthHandler
	Employee *EmployeeHandler
	Users    *UsersHandler
	System   *SystemHandler
}

// NewHandlers constructs the handler container.
func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:   NewHealthHandler(s),
		Employee: NewEmployeeHandler(s, services.Employee),
		Users:    NewUsersHandler(s),
		System:   NewSystemHandler(s),
	}
}
