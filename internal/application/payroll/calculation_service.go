// Package payroll contains the payroll application services: the two-phase
// calculation service and the run lifecycle usecase.
package payroll

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/WENLIN-CHANG/salary-bee/internal/application/insurance"
	"github.com/WENLIN-CHANG/salary-bee/internal/domain"
	"github.com/WENLIN-CHANG/salary-bee/internal/domain/entity"
	calc "github.com/WENLIN-CHANG/salary-bee/internal/domain/payroll"
	"github.com/WENLIN-CHANG/salary-bee/internal/domain/repository"
	"github.com/WENLIN-CHANG/salary-bee/pkg/logger"
)

// EmployeeCalculation 一位員工的計算結果（尚未寫入）。
type EmployeeCalculation struct {
	Employee *entity.Employee
	Result   calc.Result
}

// NegativeNetPayError reports an employee whose deductions exceed gross pay.
// Surfaced before persist so the net_pay >= 0 storage constraint never fires.
type NegativeNetPayError struct {
	EmployeeID string // 人眼可讀的 EMP 編號
	NetPay     decimal.Decimal
}

func (e *NegativeNetPayError) Error() string {
	return fmt.Sprintf("employee %s net pay is negative (%s)", e.EmployeeID, e.NetPay)
}

func (e *NegativeNetPayError) Unwrap() error { return domain.ErrNegativeNetPay }

// PersistenceError wraps a line-item write failure with the employee context.
// Any one of these aborts and rolls back the whole batch.
type PersistenceError struct {
	EmployeeID string
	Err        error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist line item for employee %s: %v", e.EmployeeID, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// CalculationService computes a payroll run in two phases:
//
//  1. CalculateAll — pure with respect to storage: read the roster once,
//     snapshot the rate table once, compute every employee in memory.
//  2. Persist — one transaction: upsert every line item, then roll the
//     totals up onto the run.
//
// Call composes both behind the draft-only guard.
type CalculationService struct {
	employeeRepo      repository.EmployeeRepository
	cache             *insurance.Cache
	txRunner          TxRunner
	allowMissingRates bool
	log               *logger.Logger
	now               func() time.Time
}

// NewCalculationService builds the service. allowMissingRates enables the
// degraded zero-premium mode when the rate table cannot be loaded.
func NewCalculationService(
	employeeRepo repository.EmployeeRepository,
	cache *insurance.Cache,
	txRunner TxRunner,
	allowMissingRates bool,
	log *logger.Logger,
) *CalculationService {
	return &CalculationService{
		employeeRepo:      employeeRepo,
		cache:             cache,
		txRunner:          txRunner,
		allowMissingRates: allowMissingRates,
		log:               log,
		now:               time.Now,
	}
}

// rateTable fetches the cached table; one slow-store read at most, shared by
// the whole batch.
func (s *CalculationService) rateTable() (*insurance.RateTable, error) {
	table, err := s.cache.Fetch()
	if err != nil {
		if s.allowMissingRates {
			// 退化模式：級距表讀不到時以保險費 0 計算
			s.log.Warn().Err(err).Msg("insurance rate table unavailable, computing zero premiums")
			return insurance.EmptyTable(), nil
		}
		return nil, err
	}
	return table, nil
}

// CalculateAll computes every employee of the run's company — including
// inactive/resigned ones — against one rate-table snapshot. No writes.
func (s *CalculationService) CalculateAll(ctx context.Context, p *entity.Payroll) ([]EmployeeCalculation, error) {
	table, err := s.rateTable()
	if err != nil {
		return nil, err
	}
	employees, err := s.employeeRepo.ListByCompany(p.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}

	calculations := make([]EmployeeCalculation, 0, len(employees))
	for _, emp := range employees {
		result := calc.CalculateAll(emp.BaseSalary, emp.TotalAllowances(), emp.TotalDeductions(), table)
		calculations = append(calculations, EmployeeCalculation{Employee: emp, Result: result})
	}
	return calculations, nil
}

// Persist writes the batch inside one transaction: upsert each line item
// keyed by (payroll, employee), then recompute the run totals from all of its
// line items. Any failure rolls back the whole batch — zero items persisted.
func (s *CalculationService) Persist(ctx context.Context, p *entity.Payroll, calculations []EmployeeCalculation) error {
	started := s.now()
	err := s.txRunner.RunPayroll(ctx, func(
		payrollRepo repository.PayrollRepository,
		itemRepo repository.PayrollItemRepository,
	) error {
		for _, c := range calculations {
			grossPay := c.Result.GrossPay
			netPay := c.Result.NetPay
			item := &entity.PayrollItem{
				ID:                    uuid.New().String(),
				PayrollID:             p.ID,
				EmployeeID:            c.Employee.ID,
				BaseSalary:            c.Employee.BaseSalary,
				TotalAllowances:       c.Employee.TotalAllowances(),
				TotalDeductions:       c.Employee.TotalDeductions(),
				TotalInsurancePremium: c.Result.TotalInsurancePremium,
				GrossPay:              &grossPay,
				NetPay:                &netPay,
			}
			if err := itemRepo.UpsertByEmployee(item); err != nil {
				return &PersistenceError{EmployeeID: c.Employee.EmployeeID, Err: err}
			}
		}

		// 總額 rollup：同一交易內重新加總所有明細，觀察得到上面的寫入
		items, err := itemRepo.ListByPayroll(p.ID)
		if err != nil {
			return fmt.Errorf("list line items for totals: %w", err)
		}
		totalGross, totalNet := decimal.Zero, decimal.Zero
		for _, item := range items {
			if item.GrossPay != nil {
				totalGross = totalGross.Add(*item.GrossPay)
			}
			if item.NetPay != nil {
				totalNet = totalNet.Add(*item.NetPay)
			}
		}
		p.TotalGrossPay = totalGross
		p.TotalNetPay = totalNet
		return payrollRepo.UpdateTotals(p)
	})
	if err != nil {
		return err
	}

	s.log.Info().
		Str("payroll_id", p.ID).
		Int("employees", len(calculations)).
		Dur("elapsed", s.now().Sub(started)).
		Msg("payroll batch persisted")
	return nil
}

// Call runs the full flow: guard, calculate, validate, persist.
// Non-draft runs are rejected up front with ErrPayrollNotEditable.
func (s *CalculationService) Call(ctx context.Context, p *entity.Payroll) error {
	if !p.CanEdit() {
		return domain.ErrPayrollNotEditable
	}

	calculations, err := s.CalculateAll(ctx, p)
	if err != nil {
		return err
	}

	// 負數實發薪資在寫入前擋下（扣款超過應發薪資是資料問題，不該入庫）
	for _, c := range calculations {
		if c.Result.NetPay.IsNegative() {
			return &NegativeNetPayError{EmployeeID: c.Employee.EmployeeID, NetPay: c.Result.NetPay}
		}
	}

	return s.Persist(ctx, p, calculations)
}
