package payroll

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/WENLIN-CHANG/salary-bee/internal/domain"
	"github.com/WENLIN-CHANG/salary-bee/internal/domain/entity"
	calc "github.com/WENLIN-CHANG/salary-bee/internal/domain/payroll"
	"github.com/WENLIN-CHANG/salary-bee/internal/domain/repository"
	"github.com/WENLIN-CHANG/salary-bee/pkg/logger"
)

// UseCase 薪資批次生命週期：建立、查詢、計算、確認、發放。
type UseCase struct {
	payrollRepo repository.PayrollRepository
	itemRepo    repository.PayrollItemRepository
	calcService *CalculationService
	sm          *calc.StateMachine
	log         *logger.Logger
	now         func() time.Time
}

// NewUseCase builds the lifecycle usecase.
func NewUseCase(
	payrollRepo repository.PayrollRepository,
	itemRepo repository.PayrollItemRepository,
	calcService *CalculationService,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		payrollRepo: payrollRepo,
		itemRepo:    itemRepo,
		calcService: calcService,
		sm:          calc.NewStateMachine(),
		log:         log,
		now:         time.Now,
	}
}

// Create opens a draft run for (company, year, month). The period must not be
// in the future and must not already exist.
func (uc *UseCase) Create(ctx context.Context, companyID string, year, month int) (*entity.Payroll, error) {
	if companyID == "" || year <= 2000 || month < 1 || month > 12 {
		return nil, domain.ErrInvalidInput
	}

	now := uc.now()
	currentMonthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	p := &entity.Payroll{
		ID:            uuid.New().String(),
		CompanyID:     companyID,
		Year:          year,
		Month:         month,
		Status:        entity.PayrollStatusDraft,
		TotalGrossPay: decimal.Zero,
		TotalNetPay:   decimal.Zero,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if p.PeriodStart().After(currentMonthStart) {
		return nil, domain.ErrFuturePeriod
	}

	if existing, err := uc.payrollRepo.GetByPeriod(companyID, year, month); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, domain.ErrDuplicatePeriod
	}

	// 與前面的檢查之間仍可能有競爭，唯一索引是最後防線
	if err := uc.payrollRepo.Create(p); err != nil {
		return nil, err
	}
	uc.log.Info().Str("payroll_id", p.ID).Str("period", p.PeriodText()).Msg("payroll created")
	return p, nil
}

// Get loads a run with its line items, enforcing company scoping.
func (uc *UseCase) Get(ctx context.Context, companyID, id string) (*entity.Payroll, []*entity.PayrollItem, error) {
	p, err := uc.load(companyID, id)
	if err != nil {
		return nil, nil, err
	}
	items, err := uc.itemRepo.ListByPayroll(p.ID)
	if err != nil {
		return nil, nil, err
	}
	return p, items, nil
}

// List returns the company's runs, newest first.
func (uc *UseCase) List(ctx context.Context, companyID string) ([]*entity.Payroll, error) {
	return uc.payrollRepo.ListByCompany(companyID)
}

// Calculate runs the full calculate-and-persist flow for a draft run.
func (uc *UseCase) Calculate(ctx context.Context, companyID, id string) (*entity.Payroll, error) {
	p, err := uc.load(companyID, id)
	if err != nil {
		return nil, err
	}
	if err := uc.calcService.Call(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Preview computes the batch without persisting anything — the calculate-only
// mode for inspecting figures before committing them.
func (uc *UseCase) Preview(ctx context.Context, companyID, id string) ([]EmployeeCalculation, error) {
	p, err := uc.load(companyID, id)
	if err != nil {
		return nil, err
	}
	return uc.calcService.CalculateAll(ctx, p)
}

// Confirm fires the draft → confirmed transition and persists the result.
func (uc *UseCase) Confirm(ctx context.Context, companyID, id string) (*entity.Payroll, error) {
	return uc.fire(companyID, id, calc.EventConfirm)
}

// MarkAsPaid fires the confirmed → paid transition and persists the result.
func (uc *UseCase) MarkAsPaid(ctx context.Context, companyID, id string) (*entity.Payroll, error) {
	return uc.fire(companyID, id, calc.EventMarkAsPaid)
}

// Delete removes a draft run and, by cascade, its line items.
func (uc *UseCase) Delete(ctx context.Context, companyID, id string) error {
	p, err := uc.load(companyID, id)
	if err != nil {
		return err
	}
	if !p.CanEdit() {
		return domain.ErrPayrollNotEditable
	}
	return uc.payrollRepo.Delete(p.ID)
}

func (uc *UseCase) fire(companyID, id string, event calc.Event) (*entity.Payroll, error) {
	p, err := uc.load(companyID, id)
	if err != nil {
		return nil, err
	}
	items, err := uc.itemRepo.ListByPayroll(p.ID)
	if err != nil {
		return nil, err
	}
	if err := uc.sm.Fire(p, event, calc.GuardInput{Items: items}); err != nil {
		return nil, err
	}
	if err := uc.payrollRepo.UpdateStatus(p); err != nil {
		return nil, err
	}
	uc.log.Info().Str("payroll_id", p.ID).Str("status", p.Status).Msg("payroll transitioned")
	return p, nil
}

func (uc *UseCase) load(companyID, id string) (*entity.Payroll, error) {
	p, err := uc.payrollRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	if p.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return p, nil
}
