package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"corporate-gifting/internal/domain/model"
	"corporate-gifting/internal/domain/ports/repository"
)

var _ repository.EmployeeRepository = (*employeeRepo)(nil)

type employeeRepo struct{ pool *pgxpool.Pool }

func NewEmployeeRepo(pool *pgxpool.Pool) *employeeRepo {
	return &employeeRepo{pool: pool}
}

func (r *employeeRepo) ListActive(ctx context.Context, tx repository.Tx, orgID, department string) ([]*model.Employee, error) {
	const q = `
SELECT id, organization_id, name, email, designation, department, phone, active
  FROM employees
 WHERE organization_id=$1 AND active AND ($2 = '' OR department=$2)
 ORDER BY name, email;`
	rows, err := queryRows(ctx, r.pool, tx, q, orgID, department)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Employee{}
	for rows.Next() {
		var e model.Employee
		if err := rows.Scan(&e.ID, &e.OrganizationID, &e.Name, &e.Email, &e.Designation, &e.Department, &e.Phone, &e.Active); err != nil {
			return nil, scanErr(err)
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

func (r *employeeRepo) Save(ctx context.Context, tx repository.Tx, e *model.Employee) error {
	const q = `
INSERT INTO employees (id, organization_id, name, email, designation, department, phone, active)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (id) DO UPDATE SET
  organization_id=$2, name=$3, email=$4, designation=$5, department=$6, phone=$7, active=$8;`
	_, err := execSQL(ctx, r.pool, tx, q, e.ID, e.OrganizationID, e.Name, e.Email, e.Designation, e.Department, e.Phone, e.Active)
	return err
}
