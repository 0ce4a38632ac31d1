package repository

import (
	"context"
	"errors"
	"time"

	"github.com/hollmark/staffd/internal/database"
	"github.com/hollmark/staffd/internal/models"

	"github.com/jackc/pgx/v5"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	createEmployeeSQL = `
insert into employees (name, created_at)
values ($1, coalesce($2, now()))
returning id, name, created_at`

	getEmployeeSQL = `
select id, name, created_at
from employees
where id = $1`

	listEmployeesSQL = `
select id, name, created_at
from employees
order by id`

	updateEmployeeSQL = `
update employees
set name = $2, created_at = coalesce($3, created_at)
where id = $1
returning id, name, created_at`

	deleteEmployeeSQL = `
delete from employees
where id = $1`
)

// employeeTable tags no-rows errors so sqlerr.HandleError can phrase
// the 404 per entity.
const employeeTable = "table:employees"

// EmployeeRepository runs employee statements against pool-provided
// connections.
type EmployeeRepository struct {
	db  *database.Database
	log *zerolog.Logger

	slowQueryThreshold time.Duration
}

// NewEmployeeRepository wires the repository to the container's pool,
// logger, and slow-query threshold.
func NewEmployeeRepository(db *database.Database, log *zerolog.Logger, slowQueryThreshold time.Duration) *EmployeeRepository {
	return &EmployeeRepository{
		db:                 db,
		log:                log,
		slowQueryThreshold: slowQueryThreshold,
	}
}

func (r *EmployeeRepository) observe(start time.Time, operation string) {
	elapsed := time.Since(start)
	if r.slowQueryThreshold > 0 && elapsed > r.slowQueryThreshold {
		r.log.Warn().
			Dur("elapsed", elapsed).
			Str("operation", operation).
			Msg("slow query")
	}
}

// Create inserts the employee and returns the stored row, including the
// generated id. A missing created_at resolves to now() in the database.
func (r *EmployeeRepository) Create(ctx context.Context, payload models.NewEmployee) (models.Employee, error) {
	defer r.observe(time.Now(), "employee.create")

	conn, err := r.db.Acquire(ctx)
	if err != nil {
		return models.Employee{}, err
	}
	defer conn.Release()

	var employee models.Employee
	err = conn.QueryRow(ctx, createEmployeeSQL, payload.Name, payload.CreatedAt).
		Scan(&employee.ID, &employee.Name, &employee.CreatedAt)
	if err != nil {
		return models.Employee{}, pkgerrors.Wrap(err, "insert employee")
	}

	return employee, nil
}

// GetByID returns the employee with the given id; zero rows surface as
// a tagged no-rows error.
func (r *EmployeeRepository) GetByID(ctx context.Context, id int32) (models.Employee, error) {
	defer r.observe(time.Now(), "employee.get")

	conn, err := r.db.Acquire(ctx)
	if err != nil {
		return models.Employee{}, err
	}
	defer conn.Release()

	var employee models.Employee
	err = conn.QueryRow(ctx, getEmployeeSQL, id).
		Scan(&employee.ID, &employee.Name, &employee.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Employee{}, pkgerrors.Wrap(err, employeeTable)
		}
		return models.Employee{}, pkgerrors.Wrap(err, "get employee")
	}

	return employee, nil
}

// List returns all employees in id order. The result is never nil, so
// an empty table serializes as an empty JSON array.
func (r *EmployeeRepository) List(ctx context.Context) ([]models.Employee, error) {
	defer r.observe(time.Now(), "employee.list")

	conn, err := r.db.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, listEmployeesSQL)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "list employees")
	}

	employees, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Employee])
	if err != nil {
		return nil, pkgerrors.Wrap(err, "collect employees")
	}

	if employees == nil {
		employees = []models.Employee{}
	}

	return employees, nil
}

// UpdateByID replaces the employee's name, keeping the stored
// created_at unless the payload supplies one. Zero rows surface as a
// tagged no-rows error.
func (r *EmployeeRepository) UpdateByID(ctx context.Context, id int32, payload models.NewEmployee) (models.Employee, error) {
	defer r.observe(time.Now(), "employee.update")

	conn, err := r.db.Acquire(ctx)
	if err != nil {
		return models.Employee{}, err
	}
	defer conn.Release()

	var employee models.Employee
	err = conn.QueryRow(ctx, updateEmployeeSQL, id, payload.Name, payload.CreatedAt).
		Scan(&employee.ID, &employee.Name, &employee.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Employee{}, pkgerrors.Wrap(err, employeeTable)
		}
		return models.Employee{}, pkgerrors.Wrap(err, "update employee")
	}

	return employee, nil
}

// DeleteByID removes the employee and reports how many rows went away.
// Deleting an absent id is not an error; the count is simply zero.
func (r *EmployeeRepository) DeleteByID(ctx context.Context, id int32) (int64, error) {
	defer r.observe(time.Now(), "employee.delete")

	conn, err := r.db.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, deleteEmployeeSQL, id)
	if err != nil {
		return 0, pkgerrors.Wrap(err, "delete employee")
	}

	return tag.RowsAffected(), nil
}
