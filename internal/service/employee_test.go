package service

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/hollmark/staffd/internal/errs"
	"github.com/hollmark/staffd/internal/models"
	"github.com/hollmark/staffd/internal/offload"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu        sync.Mutex
	employees map[int32]models.Employee
	nextID    int32
	calls     int

	// forcedErr, when set, is returned by every method.
	forcedErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{employees: map[int32]models.Employee{}}
}

func (f *fakeStore) Create(ctx context.Context, payload models.NewEmployee) (models.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	if f.forcedErr != nil {
		return models.Employee{}, f.forcedErr
	}

	f.nextID++
	createdAt := time.Now().UTC()
	if payload.CreatedAt != nil {
		createdAt = *payload.CreatedAt
	}

	employee := models.Employee{ID: f.nextID, Name: payload.Name, CreatedAt: createdAt}
	f.employees[employee.ID] = employee

	return employee, nil
}

func (f *fakeStore) GetByID(ctx context.Context, id int32) (models.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	if f.forcedErr != nil {
		return models.Employee{}, f.forcedErr
	}

	employee, ok := f.employees[id]
	if !ok {
		return models.Employee{}, pkgerrors.Wrap(pgx.ErrNoRows, "table:employees")
	}

	return employee, nil
}

func (f *fakeStore) List(ctx context.Context) ([]models.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	if f.forcedErr != nil {
		return nil, f.forcedErr
	}

	employees := make([]models.Employee, 0, len(f.employees))
	for _, e := range f.employees {
		employees = append(employees, e)
	}

	return employees, nil
}

func (f *fakeStore) UpdateByID(ctx context.Context, id int32, payload models.NewEmployee) (models.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	if f.forcedErr != nil {
		return models.Employee{}, f.forcedErr
	}

	employee, ok := f.employees[id]
	if !ok {
		return models.Employee{}, pkgerrors.Wrap(pgx.ErrNoRows, "table:employees")
	}

	employee.Name = payload.Name
	if payload.CreatedAt != nil {
		employee.CreatedAt = *payload.CreatedAt
	}
	f.employees[id] = employee

	return employee, nil
}

func (f *fakeStore) DeleteByID(ctx context.Context, id int32) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	if f.forcedErr != nil {
		return 0, f.forcedErr
	}

	if _, ok := f.employees[id]; !ok {
		return 0, nil
	}
	delete(f.employees, id)

	return 1, nil
}

type fakeCache struct {
	mu          sync.Mutex
	entries     map[int32]models.Employee
	sets        int
	invalidates int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[int32]models.Employee{}}
}

func (f *fakeCache) Get(ctx context.Context, id int32) (models.Employee, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	employee, ok := f.entries[id]
	return employee, ok
}

func (f *fakeCache) Set(ctx context.Context, employee models.Employee) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.sets++
	f.entries[employee.ID] = employee
}

func (f *fakeCache) Invalidate(ctx context.Context, id int32) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.invalidates++
	delete(f.entries, id)
}

func newTestService(t *testing.T, store EmployeeStore, c EmployeeCache) *EmployeeService {
	t.Helper()

	exec := offload.New(2, 8, time.Second, zerolog.Nop())
	t.Cleanup(exec.Close)

	log := zerolog.Nop()

	return NewEmployeeService(store, exec, c, &log)
}

func TestEmployeeServiceCreate(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	c := newFakeCache()
	svc := newTestService(t, store, c)

	employee, err := svc.Create(context.Background(), models.NewEmployee{Name: "Jane"})
	require.NoError(t, err)

	assert.Equal(t, int32(1), employee.ID)
	assert.Equal(t, "Jane", employee.Name)
	assert.False(t, employee.CreatedAt.IsZero())
	assert.Equal(t, 1, c.sets)
}

func TestEmployeeServiceGetByIDCacheHit(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	c := newFakeCache()
	cached := models.Employee{ID: 9, Name: "Cached", CreatedAt: time.Now().UTC()}
	c.entries[9] = cached

	svc := newTestService(t, store, c)

	employee, err := svc.GetByID(context.Background(), 9)
	require.NoError(t, err)

	assert.Equal(t, cached, employee)
	assert.Zero(t, store.calls, "cache hit must not touch the store")
}

func TestEmployeeServiceGetByIDCacheMiss(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	seeded, err := store.Create(context.Background(), models.NewEmployee{Name: "Jane"})
	require.NoError(t, err)
	store.calls = 0

	c := newFakeCache()
	svc := newTestService(t, store, c)

	employee, err := svc.GetByID(context.Background(), seeded.ID)
	require.NoError(t, err)

	assert.Equal(t, seeded, employee)
	assert.Equal(t, 1, store.calls)
	assert.Equal(t, 1, c.sets, "miss must warm the cache")
}

func TestEmployeeServiceGetByIDMissing(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newFakeStore(), nil)

	_, err := svc.GetByID(context.Background(), 404)

	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.Status)
	assert.Equal(t, "Employee not found", httpErr.Message)
}

func TestEmployeeServiceCreateConstraintViolation(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.forcedErr = &pgconn.PgError{
		Code:           "23505",
		Severity:       "ERROR",
		TableName:      "employees",
		ConstraintName: "employees_name_key",
	}

	svc := newTestService(t, store, nil)

	_, err := svc.Create(context.Background(), models.NewEmployee{Name: "Jane"})

	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.Equal(t, "EMPLOYEE_ALREADY_EXISTS", httpErr.Code)
}

func TestEmployeeServiceUpdateRefreshesCache(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	seeded, err := store.Create(context.Background(), models.NewEmployee{Name: "Jane"})
	require.NoError(t, err)

	c := newFakeCache()
	c.entries[seeded.ID] = seeded

	svc := newTestService(t, store, c)

	updated, err := svc.UpdateByID(context.Background(), seeded.ID, models.NewEmployee{Name: "Joan"})
	require.NoError(t, err)

	assert.Equal(t, "Joan", updated.Name)
	assert.Equal(t, seeded.CreatedAt, updated.CreatedAt, "update must not reset created_at")
	assert.Equal(t, "Joan", c.entries[seeded.ID].Name)
}

func TestEmployeeServiceDeleteInvalidatesCache(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	seeded, err := store.Create(context.Background(), models.NewEmployee{Name: "Jane"})
	require.NoError(t, err)

	c := newFakeCache()
	c.entries[seeded.ID] = seeded

	svc := newTestService(t, store, c)

	count, err := svc.DeleteByID(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, 1, c.invalidates)

	count, err = svc.DeleteByID(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestEmployeeServiceSaturatedExecutor(t *testing.T) {
	t.Parallel()

	store := newFakeStore()

	exec := offload.New(1, 1, 10*time.Millisecond, zerolog.Nop())
	t.Cleanup(exec.Close)

	log := zerolog.Nop()
	svc := NewEmployeeService(store, exec, nil, &log)

	started := make(chan struct{})
	release := make(chan struct{})
	defer close(release)

	// Occupy the single worker, then fill the queue behind it.
	require.NoError(t, exec.Submit(context.Background(), func() {
		close(started)
		<-release
	}))
	<-started
	require.NoError(t, exec.Submit(context.Background(), func() {}))

	_, err := svc.GetByID(context.Background(), 1)

	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusInternalServerError, httpErr.Status)
}
