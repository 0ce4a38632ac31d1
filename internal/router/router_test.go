package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hollmark/staffd/internal/config"
	"github.com/hollmark/staffd/internal/errs"
	"github.com/hollmark/staffd/internal/handler"
	"github.com/hollmark/staffd/internal/middleware"
	"github.com/hollmark/staffd/internal/models"
	"github.com/hollmark/staffd/internal/offload"
	"github.com/hollmark/staffd/internal/server"
	"github.com/hollmark/staffd/internal/service"
)

// memoryStore mirrors the repository contract, including the tagged
// no-rows errors the service maps to 404s.
type memoryStore struct {
	mu        sync.Mutex
	employees map[int32]models.Employee
	nextID    int32
}

func newMemoryStore() *memoryStore {
	return &memoryStore{employees: map[int32]models.Employee{}}
}

func (m *memoryStore) noRows() error {
	return pkgerrors.Wrap(pgx.ErrNoRows, "table:employees")
}

func (m *memoryStore) Create(_ context.Context, payload models.NewEmployee) (models.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	createdAt := time.Now().UTC()
	if payload.CreatedAt != nil {
		createdAt = *payload.CreatedAt
	}

	m.nextID++
	employee := models.Employee{ID: m.nextID, Name: payload.Name, CreatedAt: createdAt}
	m.employees[employee.ID] = employee

	return employee, nil
}

func (m *memoryStore) GetByID(_ context.Context, id int32) (models.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	employee, ok := m.employees[id]
	if !ok {
		return models.Employee{}, m.noRows()
	}

	return employee, nil
}

func (m *memoryStore) List(_ context.Context) ([]models.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]int32, 0, len(m.employees))
	for id := range m.employees {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	employees := make([]models.Employee, 0, len(ids))
	for _, id := range ids {
		employees = append(employees, m.employees[id])
	}

	return employees, nil
}

func (m *memoryStore) UpdateByID(_ context.Context, id int32, payload models.NewEmployee) (models.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	employee, ok := m.employees[id]
	if !ok {
		return models.Employee{}, m.noRows()
	}

	employee.Name = payload.Name
	if payload.CreatedAt != nil {
		employee.CreatedAt = *payload.CreatedAt
	}
	m.employees[id] = employee

	return employee, nil
}

func (m *memoryStore) DeleteByID(_ context.Context, id int32) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.employees[id]; !ok {
		return 0, nil
	}

	delete(m.employees, id)
	return 1, nil
}

// newTestApp assembles the real router around an in-memory store. The
// health route stays untested here; it needs a live database pool.
func newTestApp(t *testing.T) (*echo.Echo, *memoryStore) {
	t.Helper()

	logger := zerolog.Nop()

	cfg := &config.Config{
		Server: config.ServerConfig{
			CORSAllowedOrigins: []string{"*"},
			BodyLimit:          262144,
		},
	}

	exec := offload.New(4, 16, time.Second, logger)
	t.Cleanup(exec.Close)

	s := &server.Server{
		Config:   cfg,
		Logger:   &logger,
		Executor: exec,
	}

	store := newMemoryStore()
	services := &service.Services{
		Employee: service.NewEmployeeService(store, exec, nil, &logger),
	}

	return New(s, middleware.NewMiddlewares(s), handler.NewHandlers(s, services)), store
}

func doJSON(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func doGet(e *echo.Echo, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func doDelete(e *echo.Echo, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodDelete, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeEmployee(t *testing.T, body []byte) models.Employee {
	t.Helper()

	var employee models.Employee
	require.NoError(t, json.Unmarshal(body, &employee))
	return employee
}

func TestEmployeeLifecycle(t *testing.T) {
	t.Parallel()

	e, _ := newTestApp(t)

	rec := doJSON(e, http.MethodPost, "/api/v1/employee", `{"name":"Alice"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	created := decodeEmployee(t, rec.Body.Bytes())
	assert.Equal(t, int32(1), created.ID)
	assert.Equal(t, "Alice", created.Name)
	assert.False(t, created.CreatedAt.IsZero())

	rec = doGet(e, "/api/v1/employee/1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created, decodeEmployee(t, rec.Body.Bytes()))

	rec = doJSON(e, http.MethodPost, "/api/v1/employee", `{"name":"Bob"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doGet(e, "/api/v1/employees")
	require.Equal(t, http.StatusOK, rec.Code)

	var listed []models.Employee
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 2)
	assert.Equal(t, "Alice", listed[0].Name)
	assert.Equal(t, "Bob", listed[1].Name)

	rec = doJSON(e, http.MethodPut, "/api/v1/employee/1", `{"name":"Alice Cooper"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	updated := decodeEmployee(t, rec.Body.Bytes())
	assert.Equal(t, int32(1), updated.ID)
	assert.Equal(t, "Alice Cooper", updated.Name)
	assert.True(t, created.CreatedAt.Equal(updated.CreatedAt), "update without created_at must preserve the stored value")

	rec = doDelete(e, "/api/v1/employee/1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "1", rec.Body.String())

	rec = doGet(e, "/api/v1/employee/1")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Employee not found")

	rec = doDelete(e, "/api/v1/employee/1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "0", rec.Body.String())
}

func TestEmployeeCreateHonorsProvidedCreatedAt(t *testing.T) {
	t.Parallel()

	e, _ := newTestApp(t)

	rec := doJSON(e, http.MethodPost, "/api/v1/employee", `{"name":"Carol","created_at":"2020-05-01T10:00:00Z"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	created := decodeEmployee(t, rec.Body.Bytes())
	want := time.Date(2020, 5, 1, 10, 0, 0, 0, time.UTC)
	assert.True(t, want.Equal(created.CreatedAt))
}

func TestEmployeeValidation(t *testing.T) {
	t.Parallel()

	e, _ := newTestApp(t)

	t.Run("create without name", func(t *testing.T) {
		rec := doJSON(e, http.MethodPost, "/api/v1/employee", `{}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var httpErr errs.HTTPError
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &httpErr))
		require.Len(t, httpErr.Errors, 1)
		assert.Equal(t, "name", httpErr.Errors[0].Field)
	})

	t.Run("create with malformed JSON", func(t *testing.T) {
		rec := doJSON(e, http.MethodPost, "/api/v1/employee", `{"name":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("non-numeric id", func(t *testing.T) {
		rec := doGet(e, "/api/v1/employee/abc")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("update without name", func(t *testing.T) {
		rec := doJSON(e, http.MethodPut, "/api/v1/employee/1", `{}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("update of missing id", func(t *testing.T) {
		rec := doJSON(e, http.MethodPut, "/api/v1/employee/42", `{"name":"Nobody"}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestUserDemoRoutes(t *testing.T) {
	t.Parallel()

	e, _ := newTestApp(t)

	t.Run("path extraction", func(t *testing.T) {
		rec := doGet(e, "/api/v1/users/7/alice")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Welcome alice! user_id:7", rec.Body.String())
	})

	t.Run("path extraction rejects garbage", func(t *testing.T) {
		rec := doGet(e, "/api/v1/users/abc/alice")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("query extraction", func(t *testing.T) {
		rec := doGet(e, "/api/v1/users/q?name=carol")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Welcome carol!", rec.Body.String())
	})

	t.Run("query extraction requires name", func(t *testing.T) {
		rec := doGet(e, "/api/v1/users/q")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestPayloadRoutes(t *testing.T) {
	t.Parallel()

	e, _ := newTestApp(t)

	t.Run("payload echoes valid JSON", func(t *testing.T) {
		rec := doJSON(e, http.MethodPost, "/api/v1/users/payload", `{"user_id":7,"friend":"bob"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.JSONEq(t, `{"user_id":7,"friend":"bob"}`, rec.Body.String())
	})

	t.Run("payload over the ceiling fails before decode", func(t *testing.T) {
		oversized := `{"friend":"` + strings.Repeat("a", 262144) + `"}`
		rec := doJSON(e, http.MethodPost, "/api/v1/users/payload", oversized)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "PAYLOAD_TOO_LARGE")
	})

	t.Run("payload rejects malformed JSON", func(t *testing.T) {
		rec := doJSON(e, http.MethodPost, "/api/v1/users/payload", `{"user_id":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("payload rejects schema mismatch", func(t *testing.T) {
		rec := doJSON(e, http.MethodPost, "/api/v1/users/payload", `{"user_id":7}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("json echoes a typed bind", func(t *testing.T) {
		rec := doJSON(e, http.MethodPost, "/api/v1/users/json", `{"user_id":3,"friend":"joe"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.JSONEq(t, `{"user_id":3,"friend":"joe"}`, rec.Body.String())
	})
}

func TestHeaderGuards(t *testing.T) {
	t.Parallel()

	e, _ := newTestApp(t)

	notFoundBody := doGet(e, "/api/v1/no-such-route").Body.String()

	t.Run("payload without content type is hidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/users/payload", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, notFoundBody, rec.Body.String())
	})

	t.Run("json with wrong content type is hidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/users/json", strings.NewReader(`{}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMETextPlain)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("resource requires text plain", func(t *testing.T) {
		rec := doGet(e, "/api/v1/resource")
		assert.Equal(t, http.StatusNotFound, rec.Code)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/resource", nil)
		req.Header.Set(echo.HeaderContentType, echo.MIMETextPlain)
		rec = httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Body.String())
		assert.Equal(t, echo.MIMEApplicationJSON, rec.Header().Get(echo.HeaderContentType))
	})
}

func TestSystemRoutes(t *testing.T) {
	t.Parallel()

	e, _ := newTestApp(t)

	t.Run("index greets", func(t *testing.T) {
		rec := doGet(e, "/api/v1/index.html")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Hello world!", rec.Body.String())
	})

	t.Run("stream writes the chunk", func(t *testing.T) {
		rec := doGet(e, "/api/v1/stream")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "test", rec.Body.String())
	})

	t.Run("error answers the envelope", func(t *testing.T) {
		rec := doGet(e, "/api/v1/error")
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"status":"error","message":"my error: test error","data":null}`, rec.Body.String())
	})

	t.Run("unknown route is a 404", func(t *testing.T) {
		rec := doGet(e, "/api/v1/nope")
		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "Route not found")
	})
}
