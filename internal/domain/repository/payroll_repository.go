package repository

import "github.com/WENLIN-CHANG/salary-bee/internal/domain/entity"

// PayrollRepository 薪資批次持久化 port。
type PayrollRepository interface {
	Create(payroll *entity.Payroll) error
	GetByID(id string) (*entity.Payroll, error)
	GetByPeriod(companyID string, year, month int) (*entity.Payroll, error)
	ListByCompany(companyID string) ([]*entity.Payroll, error)
	// UpdateTotals writes total_gross_pay and total_net_pay.
	UpdateTotals(payroll *entity.Payroll) error
	// UpdateStatus writes status, confirmed_at and paid_at.
	UpdateStatus(payroll *entity.Payroll) error
	// Delete removes the run; line items cascade.
	Delete(id string) error
}

// PayrollItemRepository 薪資明細持久化 port。
type PayrollItemRepository interface {
	// UpsertByEmployee inserts or overwrites the run's line item for the
	// item's employee — find-or-create-by semantics keyed on
	// (payroll_id, employee_id), which makes recalculation idempotent.
	UpsertByEmployee(item *entity.PayrollItem) error
	ListByPayroll(payrollID string) ([]*entity.PayrollItem, error)
}
