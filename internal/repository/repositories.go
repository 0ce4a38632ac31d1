package repository

import (
	"github.com/hollmark/staffd/internal/server"
)

// Repositories is the container for all repository instances.
type Repositories struct {
	Employee *EmployeeRepository
}

// NewRepositories constructs the repository container from the shared
// application resources.
func NewRepositories(s *server.Server) *Repositories {
	return &Repositories{
		Employee: NewEmployeeRepository(
			s.DB,
			s.Logger,
			s.Config.Observability.Logging.SlowQueryThreshold,
		),
	}
}
