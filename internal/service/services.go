package service

import (
	"time"

	"github.com/hollmark/staffd/internal/cache"
	"github.com/hollmark/staffd/internal/repository"
	"github.com/hollmark/staffd/internal/server"
)

// Services is the container for all service instances.
type Services struct {
	Employee *EmployeeService
}

// NewService constructs the service container. The employee cache is
// only wired when the container carries a live Redis client.
func NewService(s *server.Server, repos *repository.Repositories) (*Services, error) {
	var employeeCache EmployeeCache
	if s.Redis != nil {
		employeeCache = cache.NewEmployeeCache(
			s.Redis,
			time.Duration(s.Config.Redis.CacheTTL)*time.Second,
			s.Logger,
		)
	}

	employeeService := NewEmployeeService(repos.Employee, s.Executor, employeeCache, s.Logger)

	return &Services{
		Employee: employeeService,
	}, nil
}
