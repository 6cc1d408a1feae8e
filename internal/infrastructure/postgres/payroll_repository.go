package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/WENLIN-CHANG/salary-bee/internal/domain"
	"github.com/WENLIN-CHANG/salary-bee/internal/domain/entity"
	"github.com/WENLIN-CHANG/salary-bee/internal/domain/repository"
)

var _ repository.PayrollRepository = (*PayrollRepo)(nil)

// PayrollRepo implements PayrollRepository (usable with pool or tx).
type PayrollRepo struct {
	q Querier
}

// NewPayrollRepository builds the adapter. Pass a pool or a tx (Querier).
func NewPayrollRepository(q Querier) *PayrollRepo {
	return &PayrollRepo{q: q}
}

const payrollColumns = `id, company_id, year, month, status, total_gross_pay, total_net_pay, confirmed_at, paid_at, created_at, updated_at`

// Create persists a draft run. The unique index on (company_id, year, month)
// is the final guard against a duplicate period.
func (r *PayrollRepo) Create(p *entity.Payroll) error {
	query := `
		INSERT INTO payrolls (` + payrollColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(context.Background(), query,
		p.ID, p.CompanyID, p.Year, p.Month, p.Status,
		p.TotalGrossPay, p.TotalNetPay, p.ConfirmedAt, p.PaidAt,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicatePeriod
		}
		return fmt.Errorf("insert payroll: %w", err)
	}
	return nil
}

func (r *PayrollRepo) GetByID(id string) (*entity.Payroll, error) {
	query := `SELECT ` + payrollColumns + ` FROM payrolls WHERE id = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id))
}

func (r *PayrollRepo) GetByPeriod(companyID string, year, month int) (*entity.Payroll, error) {
	query := `SELECT ` + payrollColumns + ` FROM payrolls WHERE company_id = $1 AND year = $2 AND month = $3`
	return r.scanOne(r.q.QueryRow(context.Background(), query, companyID, year, month))
}

// ListByCompany returns the company's runs, newest period first.
func (r *PayrollRepo) ListByCompany(companyID string) ([]*entity.Payroll, error) {
	query := `SELECT ` + payrollColumns + ` FROM payrolls WHERE company_id = $1 ORDER BY year DESC, month DESC`
	rows, err := r.q.Query(context.Background(), query, companyID)
	if err != nil {
		return nil, fmt.Errorf("list payrolls: %w", err)
	}
	defer rows.Close()

	var list []*entity.Payroll
	for rows.Next() {
		var p entity.Payroll
		if err := rows.Scan(
			&p.ID, &p.CompanyID, &p.Year, &p.Month, &p.Status,
			&p.TotalGrossPay, &p.TotalNetPay, &p.ConfirmedAt, &p.PaidAt,
			&p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan payroll: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

// UpdateTotals writes only the rolled-up amounts.
func (r *PayrollRepo) UpdateTotals(p *entity.Payroll) error {
	query := `UPDATE payrolls SET total_gross_pay = $2, total_net_pay = $3, updated_at = NOW() WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, p.ID, p.TotalGrossPay, p.TotalNetPay)
	if err != nil {
		return fmt.Errorf("update payroll totals: %w", err)
	}
	return nil
}

// UpdateStatus writes the status and transition timestamps.
func (r *PayrollRepo) UpdateStatus(p *entity.Payroll) error {
	query := `UPDATE payrolls SET status = $2, confirmed_at = $3, paid_at = $4, updated_at = NOW() WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, p.ID, p.Status, p.ConfirmedAt, p.PaidAt)
	if err != nil {
		return fmt.Errorf("update payroll status: %w", err)
	}
	return nil
}

// Delete removes the run; line items go with it (ON DELETE CASCADE).
func (r *PayrollRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM payrolls WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete payroll: %w", err)
	}
	return nil
}

func (r *PayrollRepo) scanOne(row pgx.Row) (*entity.Payroll, error) {
	var p entity.Payroll
	err := row.Scan(
		&p.ID, &p.CompanyID, &p.Year, &p.Month, &p.Status,
		&p.TotalGrossPay, &p.TotalNetPay, &p.ConfirmedAt, &p.PaidAt,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payroll: %w", err)
	}
	return &p, nil
}

var _ repository.PayrollItemRepository = (*PayrollItemRepo)(nil)

// PayrollItemRepo implements PayrollItemRepository (usable with pool or tx).
type PayrollItemRepo struct {
	q Querier
}

func NewPayrollItemRepository(q Querier) *PayrollItemRepo {
	return &PayrollItemRepo{q: q}
}

// UpsertByEmployee inserts or, when the (payroll_id, employee_id) row already
// exists, overwrites its figures. Re-running a calculation never duplicates a
// line item.
func (r *PayrollItemRepo) UpsertByEmployee(item *entity.PayrollItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	query := `
		INSERT INTO payroll_items (id, payroll_id, employee_id, base_salary, total_allowances, total_deductions, total_insurance_premium, gross_pay, net_pay, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		ON CONFLICT (payroll_id, employee_id) DO UPDATE SET
			base_salary             = EXCLUDED.base_salary,
			total_allowances        = EXCLUDED.total_allowances,
			total_deductions        = EXCLUDED.total_deductions,
			total_insurance_premium = EXCLUDED.total_insurance_premium,
			gross_pay               = EXCLUDED.gross_pay,
			net_pay                 = EXCLUDED.net_pay,
			updated_at              = NOW()`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.PayrollID, item.EmployeeID,
		item.BaseSalary, item.TotalAllowances, item.TotalDeductions,
		item.TotalInsurancePremium, item.GrossPay, item.NetPay,
	)
	if err != nil {
		return fmt.Errorf("upsert payroll item: %w", err)
	}
	return nil
}

func (r *PayrollItemRepo) ListByPayroll(payrollID string) ([]*entity.PayrollItem, error) {
	query := `
		SELECT id, payroll_id, employee_id, base_salary, total_allowances, total_deductions, total_insurance_premium, gross_pay, net_pay, created_at, updated_at
		FROM payroll_items WHERE payroll_id = $1 ORDER BY created_at`
	rows, err := r.q.Query(context.Background(), query, payrollID)
	if err != nil {
		return nil, fmt.Errorf("list payroll items: %w", err)
	}
	defer rows.Close()

	var list []*entity.PayrollItem
	for rows.Next() {
		var item entity.PayrollItem
		if err := rows.Scan(
			&item.ID, &item.PayrollID, &item.EmployeeID,
			&item.BaseSalary, &item.TotalAllowances, &item.TotalDeductions,
			&item.TotalInsurancePremium, &item.GrossPay, &item.NetPay,
			&item.CreatedAt, &item.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan payroll item: %w", err)
		}
		list = append(list, &item)
	}
	return list, rows.Err()
}
