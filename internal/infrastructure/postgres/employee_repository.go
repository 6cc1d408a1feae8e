package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/WENLIN-CHANG/salary-bee/internal/domain"
	"github.com/WENLIN-CHANG/salary-bee/internal/domain/entity"
	"github.com/WENLIN-CHANG/salary-bee/internal/domain/repository"
)

var _ repository.EmployeeRepository = (*EmployeeRepo)(nil)

// EmployeeRepo implements EmployeeRepository over PostgreSQL.
// Allowances and deductions are stored as JSONB maps (名目 → 金額).
type EmployeeRepo struct {
	pool *pgxpool.Pool
}

func NewEmployeeRepository(pool *pgxpool.Pool) *EmployeeRepo {
	return &EmployeeRepo{pool: pool}
}

const employeeColumns = `id, company_id, employee_id, name, id_number, email, phone, department, position, hire_date, resign_date, base_salary, allowances, deductions, active, created_at, updated_at`

func (r *EmployeeRepo) Create(e *entity.Employee) error {
	allowances, deductions, err := marshalPayItems(e)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO employees (` + employeeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err = r.pool.Exec(context.Background(), query,
		e.ID, e.CompanyID, e.EmployeeID, e.Name, nullIfEmpty(e.IDNumber),
		nullIfEmpty(e.Email), nullIfEmpty(e.Phone), nullIfEmpty(e.Department), nullIfEmpty(e.Position),
		e.HireDate, e.ResignDate, e.BaseSalary, allowances, deductions, e.Active,
		e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			// EMP 編號唯一索引：同公司不可重號
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert employee: %w", err)
	}
	return nil
}

func (r *EmployeeRepo) Update(e *entity.Employee) error {
	allowances, deductions, err := marshalPayItems(e)
	if err != nil {
		return err
	}
	query := `
		UPDATE employees
		SET name = $2, id_number = $3, email = $4, phone = $5, department = $6, position = $7,
		    hire_date = $8, resign_date = $9, base_salary = $10, allowances = $11, deductions = $12,
		    active = $13, updated_at = $14
		WHERE id = $1`
	_, err = r.pool.Exec(context.Background(), query,
		e.ID, e.Name, nullIfEmpty(e.IDNumber), nullIfEmpty(e.Email), nullIfEmpty(e.Phone),
		nullIfEmpty(e.Department), nullIfEmpty(e.Position),
		e.HireDate, e.ResignDate, e.BaseSalary, allowances, deductions,
		e.Active, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update employee: %w", err)
	}
	return nil
}

func (r *EmployeeRepo) GetByID(id string) (*entity.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`
	e, err := scanEmployee(r.pool.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get employee: %w", err)
	}
	return e, nil
}

// ListByCompany returns the whole roster, inactive employees included —
// payroll calculation covers everyone.
func (r *EmployeeRepo) ListByCompany(companyID string) ([]*entity.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE company_id = $1 ORDER BY employee_id`
	rows, err := r.pool.Query(context.Background(), query, companyID)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	var list []*entity.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

func marshalPayItems(e *entity.Employee) (allowances, deductions []byte, err error) {
	allowances, err = json.Marshal(orEmptyMap(e.Allowances))
	if err != nil {
		return nil, nil, fmt.Errorf("marshal allowances: %w", err)
	}
	deductions, err = json.Marshal(orEmptyMap(e.Deductions))
	if err != nil {
		return nil, nil, fmt.Errorf("marshal deductions: %w", err)
	}
	return allowances, deductions, nil
}

func orEmptyMap(m map[string]decimal.Decimal) map[string]decimal.Decimal {
	if m == nil {
		return map[string]decimal.Decimal{}
	}
	return m
}

func scanEmployee(row pgx.Row) (*entity.Employee, error) {
	var e entity.Employee
	var idNumber, email, phone, department, position *string
	var allowances, deductions []byte
	err := row.Scan(
		&e.ID, &e.CompanyID, &e.EmployeeID, &e.Name, &idNumber,
		&email, &phone, &department, &position,
		&e.HireDate, &e.ResignDate, &e.BaseSalary, &allowances, &deductions, &e.Active,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	deref := func(p *string) string {
		if p == nil {
			return ""
		}
		return *p
	}
	e.IDNumber = deref(idNumber)
	e.Email = deref(email)
	e.Phone = deref(phone)
	e.Department = deref(department)
	e.Position = deref(position)
	if err := json.Unmarshal(allowances, &e.Allowances); err != nil {
		return nil, fmt.Errorf("unmarshal allowances: %w", err)
	}
	if err := json.Unmarshal(deductions, &e.Deductions); err != nil {
		return nil, fmt.Errorf("unmarshal deductions: %w", err)
	}
	return &e, nil
}
