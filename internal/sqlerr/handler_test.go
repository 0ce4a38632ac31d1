package sqlerr

import (
	"net/http"
	"testing"

	"github.com/hollmark/staffd/internal/errs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, UniqueViolation, MapCode("23505"))
	assert.Equal(t, ForeignKeyViolation, MapCode("23503"))
	assert.Equal(t, NotNullViolation, MapCode("23502"))
	assert.Equal(t, CheckViolation, MapCode("23514"))
	assert.Equal(t, Other, MapCode("42P01"))
	assert.Equal(t, Other, MapCode(""))
}

func TestErrCode(t *testing.T) {
	t.Parallel()

	pgerr := &pgconn.PgError{Code: "23505", Severity: "ERROR"}
	converted := ConvertPgError(pgerr)

	assert.Equal(t, UniqueViolation, ErrCode(converted))
	assert.Equal(t, UniqueViolation, ErrCode(pkgerrors.Wrap(converted, "insert employee")))
	assert.Equal(t, Other, ErrCode(pkgerrors.New("boom")))
}

func TestHandleErrorUniqueViolation(t *testing.T) {
	t.Parallel()

	err := HandleError(&pgconn.PgError{
		Code:           "23505",
		Severity:       "ERROR",
		TableName:      "employees",
		ConstraintName: "employees_name_key",
	})

	httpErr, ok := err.(*errs.HTTPError)
	require.True(t, ok)

	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.Equal(t, "EMPLOYEE_ALREADY_EXISTS", httpErr.Code)
	assert.Contains(t, httpErr.Message, "Name")
	assert.True(t, httpErr.Override)
}

func TestHandleErrorNotNullViolation(t *testing.T) {
	t.Parallel()

	err := HandleError(&pgconn.PgError{
		Code:       "23502",
		Severity:   "ERROR",
		TableName:  "employees",
		ColumnName: "name",
	})

	httpErr, ok := err.(*errs.HTTPError)
	require.True(t, ok)

	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.Equal(t, "EMPLOYEE_REQUIRED", httpErr.Code)
	require.Len(t, httpErr.Errors, 1)
	assert.Equal(t, "name", httpErr.Errors[0].Field)
}

func TestHandleErrorNoRows(t *testing.T) {
	t.Parallel()

	err := HandleError(pkgerrors.Wrap(pgx.ErrNoRows, "table:employees"))

	httpErr, ok := err.(*errs.HTTPError)
	require.True(t, ok)

	assert.Equal(t, http.StatusNotFound, httpErr.Status)
	assert.Equal(t, "Employee not found", httpErr.Message)
	assert.True(t, httpErr.Override)
}

func TestHandleErrorNoRowsWithoutTableHint(t *testing.T) {
	t.Parallel()

	err := HandleError(pgx.ErrNoRows)

	httpErr, ok := err.(*errs.HTTPError)
	require.True(t, ok)

	assert.Equal(t, http.StatusNotFound, httpErr.Status)
	assert.Equal(t, "Resource not found", httpErr.Message)
}

func TestHandleErrorUnknown(t *testing.T) {
	t.Parallel()

	err := HandleError(pkgerrors.New("connection reset"))

	httpErr, ok := err.(*errs.HTTPError)
	require.True(t, ok)

	assert.Equal(t, http.StatusInternalServerError, httpErr.Status)
	assert.Equal(t, http.StatusText(http.StatusInternalServerError), httpErr.Message)
}

func TestHandleErrorPassesThroughHTTPError(t *testing.T) {
	t.Parallel()

	original := errs.NewNotFoundError("Employee not found", true, nil)

	assert.Same(t, original, HandleError(original))
}
