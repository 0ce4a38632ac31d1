package service

import (
	"context"

	"github.com/hollmark/staffd/internal/models"
	"github.com/hollmark/staffd/internal/offload"
	"github.com/hollmark/staffd/internal/sqlerr"

	"github.com/rs/zerolog"
)

// EmployeeStore is what the service needs from the data layer. It is
// satisfied by *repository.EmployeeRepository and by in-memory fakes in
// tests.
type EmployeeStore interface {
	Create(ctx context.Context, payload models.NewEmployee) (models.Employee, error)
	GetByID(ctx context.Context, id int32) (models.Employee, error)
	List(ctx context.Context) ([]models.Employee, error)
	UpdateByID(ctx context.Context, id int32, payload models.NewEmployee) (models.Employee, error)
	DeleteByID(ctx context.Context, id int32) (int64, error)
}

// EmployeeCache is the optional read cache in front of the store.
// Implementations absorb their own failures; only presence is reported.
type EmployeeCache interface {
	Get(ctx context.Context, id int32) (models.Employee, bool)
	Set(ctx context.Context, employee models.Employee)
	Invalidate(ctx context.Context, id int32)
}

// EmployeeService coordinates employee operations: cache lookups on the
// request goroutine, store calls on the offload executor, and error
// normalization on the way out.
type EmployeeService struct {
	store EmployeeStore
	exec  *offload.Executor
	cache EmployeeCache
	log   *zerolog.Logger
}

// NewEmployeeService constructs the service. cache may be nil, which
// disables caching entirely.
func NewEmployeeService(store EmployeeStore, exec *offload.Executor, cache EmployeeCache, log *zerolog.Logger) *EmployeeService {
	return &EmployeeService{
		store: store,
		exec:  exec,
		cache: cache,
		log:   log,
	}
}

// Create inserts the employee and warms the cache with the stored row.
func (s *EmployeeService) Create(ctx context.Context, payload models.NewEmployee) (models.Employee, error) {
	// Dispatched store calls run to completion even when the request is
	// abandoned mid-flight, so the task context drops cancellation.
	taskCtx := context.WithoutCancel(ctx)

	employee, err := offload.Do(ctx, s.exec, func() (models.Employee, error) {
		return s.store.Create(taskCtx, payload)
	})
	if err != nil {
		return models.Employee{}, sqlerr.HandleError(err)
	}

	if s.cache != nil {
		s.cache.Set(taskCtx, employee)
	}

	return employee, nil
}

// GetByID serves from the cache when possible and falls through to the
// store otherwise.
func (s *EmployeeService) GetByID(ctx context.Context, id int32) (models.Employee, error) {
	if s.cache != nil {
		if employee, ok := s.cache.Get(ctx, id); ok {
			return employee, nil
		}
	}

	taskCtx := context.WithoutCancel(ctx)

	employee, err := offload.Do(ctx, s.exec, func() (models.Employee, error) {
		return s.store.GetByID(taskCtx, id)
	})
	if err != nil {
		return models.Employee{}, sqlerr.HandleError(err)
	}

	if s.cache != nil {
		s.cache.Set(taskCtx, employee)
	}

	return employee, nil
}

// List returns all employees. Lists are not cached.
func (s *EmployeeService) List(ctx context.Context) ([]models.Employee, error) {
	taskCtx := context.WithoutCancel(ctx)

	employees, err := offload.Do(ctx, s.exec, func() ([]models.Employee, error) {
		return s.store.List(taskCtx)
	})
	if err != nil {
		return nil, sqlerr.HandleError(err)
	}

	return employees, nil
}

// UpdateByID updates the employee and refreshes its cache entry.
func (s *EmployeeService) UpdateByID(ctx context.Context, id int32, payload models.NewEmployee) (models.Employee, error) {
	taskCtx := context.WithoutCancel(ctx)

	employee, err := offload.Do(ctx, s.exec, func() (models.Employee, error) {
		return s.store.UpdateByID(taskCtx, id, payload)
	})
	if err != nil {
		return models.Employee{}, sqlerr.HandleError(err)
	}

	if s.cache != nil {
		s.cache.Set(taskCtx, employee)
	}

	return employee, nil
}

// DeleteByID removes the employee and drops its cache entry. The count
// reports rows removed; deleting an absent id yields zero, not an
// error.
func (s *EmployeeService) DeleteByID(ctx context.Context, id int32) (int64, error) {
	taskCtx := context.WithoutCancel(ctx)

	count, err := offload.Do(ctx, s.exec, func() (int64, error) {
		return s.store.DeleteByID(taskCtx, id)
	})
	if err != nil {
		return 0, sqlerr.HandleError(err)
	}

	if s.cache != nil {
		s.cache.Invalidate(taskCtx, id)
	}

	return count, nil
}
